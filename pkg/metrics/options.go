// Package metrics exports the service's Prometheus metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option adjusts a Manager before its metrics are registered.
type Option func(*Manager)

// WithNamespace prefixes every metric name. Empty keeps "arff".
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithHistogramBuckets replaces the latency buckets, in seconds.
func WithHistogramBuckets(b []float64) Option {
	return func(m *Manager) {
		if len(b) > 0 {
			m.histogramBuckets = b
		}
	}
}

// WithPrometheusRegistry registers into reg instead of a private registry.
// Tests pass a fresh one per case.
func WithPrometheusRegistry(reg *prometheus.Registry) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// WithGoCollectors also exports runtime and process metrics.
func WithGoCollectors() Option {
	return func(m *Manager) { m.goCollectors = true }
}
