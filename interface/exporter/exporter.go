package exporter

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	METRIC_ERROR_COUNT               = "error_count"
	METRIC_OPERATION_COUNT           = "operation_count"
	METRIC_ENTITY_ACTIVATION_COUNT   = "entity_activation_count"
	METRIC_ENTITY_DEACTIVATION_COUNT = "entity_deactivation_count"
)

var (
	once sync.Once

	counters          map[string]prometheus.Counter
	operationCounters *prometheus.CounterVec
)

func Init() {
	once.Do(initialize)
}

func initialize() {

	// --- Static Metrics: the metrics which are not depended on running configuration

	// Create metric spaces
	counters = make(map[string]prometheus.Counter)

	// Register metrics
	for name, help := range map[string]string{
		METRIC_ERROR_COUNT:               "Counts the number of failed operations",
		METRIC_ENTITY_ACTIVATION_COUNT:   "Counts the number of entity activations",
		METRIC_ENTITY_DEACTIVATION_COUNT: "Counts the number of entities becoming inactive",
	} {
		counter := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "registry",
			Subsystem: "staking",
			Name:      name,
			Help:      help,
		})
		prometheus.MustRegister(counter)
		counters[name] = counter
	}

	operationCounters = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "registry",
		Subsystem: "staking",
		Name:      METRIC_OPERATION_COUNT,
		Help:      "Counts the number of executed operations by kind and outcome",
	}, []string{"kind", "state"})
	prometheus.MustRegister(operationCounters)
}

func GetCounter(name string) prometheus.Counter {
	return counters[name]
}

func inc(name string) {
	if counter, ok := counters[name]; ok {
		counter.Inc()
	}
}

func IncErrorCount() {
	inc(METRIC_ERROR_COUNT)
}

func IncEntityActivationCount() {
	inc(METRIC_ENTITY_ACTIVATION_COUNT)
}

func IncEntityDeactivationCount() {
	inc(METRIC_ENTITY_DEACTIVATION_COUNT)
}

func IncOperationCount(kind string, state string) {
	if operationCounters != nil {
		operationCounters.WithLabelValues(kind, state).Inc()
	}
}
