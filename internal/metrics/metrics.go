// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package metrics exposes deployment runs as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/deploygridgo/internal/executor"
	"github.com/specialistvlad/deploygridgo/internal/results"
)

const namespace = "deploygrid"

// Collector records unit and run outcomes. It implements executor.Observer.
type Collector struct {
	registry     *prometheus.Registry
	units        *prometheus.CounterVec
	unitDuration *prometheus.HistogramVec
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	reused       *prometheus.CounterVec
}

var _ executor.Observer = (*Collector)(nil)

// New creates a collector with its own registry, so several collectors can
// coexist in one process.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Deployment units that reached a terminal status.",
		}, []string{"module", "status"}),
		unitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_duration_seconds",
			Help:      "Time spent obtaining the handle of a unit.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"module", "status"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished deployment runs by outcome.",
		}, []string{"module", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of deployment runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"module"}),
		reused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_reused_total",
			Help:      "Units whose handle was taken from the state store.",
		}, []string{"module"}),
	}
	c.registry.MustRegister(c.units, c.unitDuration, c.runs, c.runDuration, c.reused)
	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// UnitFinished implements executor.Observer.
func (c *Collector) UnitFinished(_ context.Context, moduleName string, u results.UnitResult) {
	status := u.Status.String()
	c.units.WithLabelValues(moduleName, status).Inc()
	if d := u.Duration(); d > 0 {
		c.unitDuration.WithLabelValues(moduleName, status).Observe(d.Seconds())
	}
	if u.Reused {
		c.reused.WithLabelValues(moduleName).Inc()
	}
}

// RunFinished implements executor.Observer.
func (c *Collector) RunFinished(_ context.Context, r *results.Result, elapsed time.Duration) {
	outcome := "succeeded"
	if !r.Succeeded() {
		outcome = "failed"
	}
	c.runs.WithLabelValues(r.Module, outcome).Inc()
	c.runDuration.WithLabelValues(r.Module).Observe(elapsed.Seconds())
}
