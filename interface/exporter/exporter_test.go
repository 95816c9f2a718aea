package exporter

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAreNilSafeBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		IncErrorCount()
		IncOperationCount("deposit", "done")
	})
}

func TestCounters(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(GetCounter(METRIC_ERROR_COUNT))
	IncErrorCount()
	assert.Equal(t, before+1, testutil.ToFloat64(GetCounter(METRIC_ERROR_COUNT)))

	IncEntityActivationCount()
	assert.Equal(t, float64(1), testutil.ToFloat64(GetCounter(METRIC_ENTITY_ACTIVATION_COUNT)))

	IncOperationCount("stake", "done")
	IncOperationCount("stake", "done")
	assert.Equal(t, float64(2), testutil.ToFloat64(operationCounters.WithLabelValues("stake", "done")))
}
