// Package slo tracks service level indicators for the activity API and
// publishes them as Prometheus gauges.
package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Indicator names used as the indicator label.
const (
	IndicatorAvailability = "availability"
	IndicatorErrorRate    = "error_rate"
	IndicatorLatencyP95   = "latency_p95_seconds"
	IndicatorLatencyP99   = "latency_p99_seconds"
)

// Targets are the objectives of the activity API, keyed by indicator.
// Availability counts non-5xx responses.
var Targets = map[string]float64{
	IndicatorAvailability: 0.999,
	IndicatorErrorRate:    0.001,
	IndicatorLatencyP95:   0.200,
	IndicatorLatencyP99:   0.500,
}

var (
	// Current holds the indicators of the last flushed window.
	Current = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "slo_indicator",
			Help: "Service level indicator of the last window",
		},
		[]string{"indicator"},
	)

	// Target holds the objectives so alerts can compare against them.
	Target = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "slo_target",
			Help: "Service level objective per indicator",
		},
		[]string{"indicator"},
	)
)

func init() {
	for name, v := range Targets {
		Target.WithLabelValues(name).Set(v)
	}
}

func publish(s Snapshot) {
	Current.WithLabelValues(IndicatorAvailability).Set(s.Availability)
	Current.WithLabelValues(IndicatorErrorRate).Set(s.ErrorRate)
	Current.WithLabelValues(IndicatorLatencyP95).Set(s.P95.Seconds())
	Current.WithLabelValues(IndicatorLatencyP99).Set(s.P99.Seconds())
}

// Breaches returns the indicators of s that miss their target.
func Breaches(s Snapshot) []string {
	var out []string
	if s.Availability < Targets[IndicatorAvailability] {
		out = append(out, IndicatorAvailability)
	}
	if s.ErrorRate > Targets[IndicatorErrorRate] {
		out = append(out, IndicatorErrorRate)
	}
	if s.P95.Seconds() > Targets[IndicatorLatencyP95] {
		out = append(out, IndicatorLatencyP95)
	}
	if s.P99.Seconds() > Targets[IndicatorLatencyP99] {
		out = append(out, IndicatorLatencyP99)
	}
	return out
}
