package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SetupPrometheus returns a registry with build, runtime and process collectors, a
// hyrox_coach_build_info gauge labelled with version, and any extra collectors (the
// db pool collector in the service).
func SetupPrometheus(version string, extraCollectors ...prometheus.Collector) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "hyrox_coach",
		Name:        "build_info",
		Help:        "Always 1, labelled with the running version.",
		ConstLabels: prometheus.Labels{"version": version},
	})
	buildInfo.Set(1)

	promRegistry.MustRegister(
		buildInfo,
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.MetricsGC, collectors.MetricsScheduler),
		),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, c := range extraCollectors {
		promRegistry.MustRegister(c)
	}

	return promRegistry
}
