package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "versiontext"

type Metrics struct {
	ResourceResolutions *prometheus.CounterVec
	RequestCount        *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	RequestSize         *prometheus.HistogramVec
	ResponseSize        *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer, opts ...OptionsMetricsFunc) (*Metrics, error) {
	m := &Metrics{
		ResourceResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resource_resolutions_total",
				Help:      "Version resource resolutions, partitioned by identifier scheme and outcome.",
			},
			[]string{"scheme", "outcome"},
		),
	}
	// also add the default collectors
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register go collector: %w", err)
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("failed to register process collector: %w", err)
	}
	if err := reg.Register(m.ResourceResolutions); err != nil {
		return nil, fmt.Errorf("failed to register resource resolutions metric: %w", err)
	}

	for _, o := range opts {
		if err := o(m, reg); err != nil {
			return nil, err
		}
	}

	return m, nil
}
