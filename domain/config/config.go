package config

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"registry/domain"

	"github.com/spf13/viper"
)

const (
	MainNetwork = "mainnet"
	TestNetwork = "testnet"

	PostgresStore = "postgres"
	MemoryStore   = "memory"
)

var (
	ErrorInvalidNetwork = fmt.Errorf("network must be equal to 'mainnet' or 'testnet' only")
	ErrorInvalidStore   = fmt.Errorf("store must be equal to 'postgres' or 'memory' only")
	ErrorNoDbUri        = fmt.Errorf("service_db_uri is required by the postgres store")

	ErrorInvalidRegistrarAddress = fmt.Errorf("invalid registrar address")
	ErrorInvalidRefreshInterval  = fmt.Errorf("invalid time interval for refresh process")
	ErrorInvalidMaxConnections   = fmt.Errorf("max_db_connections must be positive")
)

var (
	TrailingSlashRE = regexp.MustCompile("/+$")
)

var (
	dbUri            string
	maxDbConnections int
	store            string
	network          string

	registrarAddress domain.Address

	refreshInterval time.Duration
	metricsAddress  string
)

func ReadConfig(filePath string) {
	viper.SetConfigFile(filePath)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("⚠️ Failed reading config file: %v\n", err.Error())
	}

	err := initializeVariables()
	if err != nil {
		log.Fatalf("Configuration error - %v\n", err.Error())
	}
}

func setDefaults() {
	viper.SetDefault("store", PostgresStore)
	viper.SetDefault("network", MainNetwork)
	viper.SetDefault("refresh_interval", "1m")
	viper.SetDefault("metrics_address", ":9100")
	viper.SetDefault("max_db_connections", 20)
}

// This method processes the configuration parameters and keeps the processed values
// in some variables for later accesses rapidly.
func initializeVariables() error {
	var err error

	setDefaults()

	// Storage stuff
	store = strings.TrimSpace(strings.ToLower(viper.GetString("store")))
	if store != PostgresStore && store != MemoryStore {
		return ErrorInvalidStore
	}

	dbUri = TrailingSlashRE.ReplaceAllString(viper.GetString("service_db_uri"), "")
	if store == PostgresStore && dbUri == "" {
		return ErrorNoDbUri
	}

	maxDbConnections = viper.GetInt("max_db_connections")
	if maxDbConnections <= 0 {
		return ErrorInvalidMaxConnections
	}

	// Network stuff
	network = strings.TrimSpace(strings.ToLower(viper.GetString("network")))
	if network != MainNetwork && network != TestNetwork {
		return ErrorInvalidNetwork
	}

	// Registrar stuff, optional until bootstrap has run
	registrarAddress = domain.ZeroAddress
	if value := strings.TrimSpace(viper.GetString("registrar_address")); value != "" {
		registrarAddress, err = domain.ParseAddress(value)
		if err != nil {
			return ErrorInvalidRegistrarAddress
		}
	}

	//---------------------------------------------------------------
	// refresh interval
	strValue := viper.GetString("refresh_interval")
	refreshInterval, err = time.ParseDuration(strValue)
	if err != nil || refreshInterval <= 0 {
		return ErrorInvalidRefreshInterval
	}

	metricsAddress = strings.TrimSpace(viper.GetString("metrics_address"))

	return nil
}

//-------------------------------------------------------------------
// Normal configuration values

func GetDbUri() string {
	return dbUri
}

func GetMaxDbConnections() int {
	return maxDbConnections
}

func GetStore() string {
	return store
}

func GetNetwork() string {
	return network
}

func GetRegistrarAddress() domain.Address {
	return registrarAddress
}

func GetRefreshInterval() time.Duration {
	return refreshInterval
}

func GetMetricsAddress() string {
	return metricsAddress
}

// -------------------------------------------------------------------
// Evaluating values

func IsTestNet() bool {
	return network == TestNetwork
}

func FormatAddress(address domain.Address) string {
	return address.Format(domain.AddrFormatBouncable, IsTestNet())
}
