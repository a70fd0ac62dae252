// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics implements a lightweight metrics facade. By default all
// meters are no-ops; calling InitializePrometheusMetrics switches the
// backend to prometheus.
package metrics

import "net/http"

var metrics Metrics = &noopMetrics{} // defaults to a noop implementation

// Metrics defines the backend interface of the metrics service.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter
	GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter
	GetOrCreateHandler() http.Handler
}

// HTTPHandler returns the handler exposing collected metrics, nil for the
// noop backend.
func HTTPHandler() http.Handler {
	return metrics.GetOrCreateHandler()
}

// CountMeter is a cumulative counter.
type CountMeter interface {
	Add(i int64)
}

// Counter creates or fetches the counter with the given name.
func Counter(name string) CountMeter { return metrics.GetOrCreateCountMeter(name) }

// CountVecMeter is a cumulative counter with labels.
type CountVecMeter interface {
	AddWithLabel(i int64, labels map[string]string)
}

// CounterVec creates or fetches the labeled counter with the given name.
func CounterVec(name string, labels []string) CountVecMeter {
	return metrics.GetOrCreateCountVecMeter(name, labels)
}

// GaugeMeter is a value that can go up and down.
type GaugeMeter interface {
	Add(i int64)
	Set(i int64)
}

// Gauge creates or fetches the gauge with the given name.
func Gauge(name string) GaugeMeter { return metrics.GetOrCreateGaugeMeter(name) }

// GaugeVecMeter is a gauge with labels.
type GaugeVecMeter interface {
	AddWithLabel(i int64, labels map[string]string)
	SetWithLabel(i int64, labels map[string]string)
}

// GaugeVec creates or fetches the labeled gauge with the given name.
func GaugeVec(name string, labels []string) GaugeVecMeter {
	return metrics.GetOrCreateGaugeVecMeter(name, labels)
}

// HistogramMeter observes a distribution of values.
type HistogramMeter interface {
	Observe(i int64)
}

// Histogram creates or fetches the histogram with the given name.
func Histogram(name string, buckets []int64) HistogramMeter {
	return metrics.GetOrCreateHistogramMeter(name, buckets)
}

// LazyLoad defers meter creation until first use, so that package-level
// meters pick up the backend installed at startup.
func LazyLoad[T any](f func() T) func() T {
	var cached *T
	return func() T {
		if cached == nil {
			value := f()
			cached = &value
		}
		return *cached
	}
}

// LazyLoadCounter lazily creates a counter.
func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

// LazyLoadCounterVec lazily creates a labeled counter.
func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter { return CounterVec(name, labels) })
}

// LazyLoadGauge lazily creates a gauge.
func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter { return Gauge(name) })
}
