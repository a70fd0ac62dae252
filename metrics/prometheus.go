// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/covermutual/sentinel/log"
)

const namespace = "sentinel"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics switches the metrics backend to prometheus.
// Safe to call more than once; only the first call takes effect.
func InitializePrometheusMetrics() {
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = newPrometheusMetrics()
	}
}

type prometheusMetrics struct {
	mu     sync.Mutex
	meters map[string]any
}

func newPrometheusMetrics() Metrics {
	return &prometheusMetrics{
		meters: make(map[string]any),
	}
}

func (o *prometheusMetrics) getOrCreate(name string, create func() any) any {
	o.mu.Lock()
	defer o.mu.Unlock()
	if meter, ok := o.meters[name]; ok {
		return meter
	}
	meter := create()
	o.meters[name] = meter
	return meter
}

func (o *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	return o.getOrCreate(name, func() any {
		counter := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
		})
		if err := prometheus.Register(counter); err != nil {
			logger.Warn("unable to register metric", "name", name, "error", err)
		}
		return &promCountMeter{counter}
	}).(CountMeter)
}

func (o *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	return o.getOrCreate(name, func() any {
		counter := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
		}, labels)
		if err := prometheus.Register(counter); err != nil {
			logger.Warn("unable to register metric", "name", name, "error", err)
		}
		return &promCountVecMeter{counter}
	}).(CountVecMeter)
}

func (o *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	return o.getOrCreate(name, func() any {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
		})
		if err := prometheus.Register(gauge); err != nil {
			logger.Warn("unable to register metric", "name", name, "error", err)
		}
		return &promGaugeMeter{gauge}
	}).(GaugeMeter)
}

func (o *prometheusMetrics) GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	return o.getOrCreate(name, func() any {
		gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
		}, labels)
		if err := prometheus.Register(gauge); err != nil {
			logger.Warn("unable to register metric", "name", name, "error", err)
		}
		return &promGaugeVecMeter{gauge}
	}).(GaugeVecMeter)
}

func (o *prometheusMetrics) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	return o.getOrCreate(name, func() any {
		floatBuckets := make([]float64, 0, len(buckets))
		for _, b := range buckets {
			floatBuckets = append(floatBuckets, float64(b))
		}
		histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets,
		})
		if err := prometheus.Register(histogram); err != nil {
			logger.Warn("unable to register metric", "name", name, "error", err)
		}
		return &promHistogramMeter{histogram}
	}).(HistogramMeter)
}

func (o *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.Handler()
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(i int64) {
	c.counter.Add(float64(i))
}

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (c *promGaugeMeter) Add(i int64) {
	c.gauge.Add(float64(i))
}

func (c *promGaugeMeter) Set(i int64) {
	c.gauge.Set(float64(i))
}

type promGaugeVecMeter struct {
	gauge *prometheus.GaugeVec
}

func (c *promGaugeVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.gauge.With(labels).Add(float64(i))
}

func (c *promGaugeVecMeter) SetWithLabel(i int64, labels map[string]string) {
	c.gauge.With(labels).Set(float64(i))
}

type promHistogramMeter struct {
	histogram prometheus.Histogram
}

func (c *promHistogramMeter) Observe(i int64) {
	c.histogram.Observe(float64(i))
}
