package config

import (
	"testing"
	"time"

	"registry/domain"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeVariables(t *testing.T) {
	registrar := domain.DeriveAddress(domain.ZeroAddress, []byte("registrar"))

	tests := []struct {
		name     string
		settings map[string]interface{}
		wantErr  error
	}{
		{
			name:     "memory store needs no database",
			settings: map[string]interface{}{"store": "Memory"},
		},
		{
			name:     "postgres store needs a database",
			settings: map[string]interface{}{"store": "postgres"},
			wantErr:  ErrorNoDbUri,
		},
		{
			name:     "unknown store",
			settings: map[string]interface{}{"store": "bolt"},
			wantErr:  ErrorInvalidStore,
		},
		{
			name:     "unknown network",
			settings: map[string]interface{}{"store": "memory", "network": "devnet"},
			wantErr:  ErrorInvalidNetwork,
		},
		{
			name:     "bad registrar",
			settings: map[string]interface{}{"store": "memory", "registrar_address": "nope"},
			wantErr:  ErrorInvalidRegistrarAddress,
		},
		{
			name:     "bad refresh interval",
			settings: map[string]interface{}{"store": "memory", "refresh_interval": "-1s"},
			wantErr:  ErrorInvalidRefreshInterval,
		},
		{
			name: "full",
			settings: map[string]interface{}{
				"store":             "postgres",
				"service_db_uri":    "postgres://localhost/registry//",
				"network":           "testnet",
				"registrar_address": registrar.String(),
				"refresh_interval":  "30s",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			for key, value := range tt.settings {
				viper.Set(key, value)
			}
			err := initializeVariables()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	assert.Equal(t, "postgres://localhost/registry", GetDbUri())
	assert.True(t, IsTestNet())
	assert.Equal(t, registrar, GetRegistrarAddress())
	assert.Equal(t, 30*time.Second, GetRefreshInterval())
	assert.Equal(t, 20, GetMaxDbConnections())
	assert.Equal(t, ":9100", GetMetricsAddress())
}
