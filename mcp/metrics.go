// Copyright 2025 Ansvar Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mcp

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/search"
	"github.com/ansvar-systems/automcp/tools"
)

const metricsNamespace = "automcp"

// Metrics records tool and protocol activity on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	requests     *prometheus.CounterVec
	sessions     prometheus.Gauge
	searchHits   *prometheus.HistogramVec
	invalidQuery prometheus.Counter
}

var (
	_ tools.CallObserver   = (*Metrics)(nil)
	_ RequestObserver      = (*Metrics)(nil)
	_ search.SearchMonitor = (*Metrics)(nil)
)

// NewMetrics creates and registers all collectors, including the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tool_calls_total",
			Help:      "Tool calls by tool and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Tool call latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"tool"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC messages by method.",
		}, []string{"method"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_sessions",
			Help:      "Open HTTP sessions.",
		}),
		searchHits: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "search_hits",
			Help:      "Hits per search, by family before the merge and in the merged result.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}, []string{"stage"}),
		invalidQuery: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "search_invalid_queries_total",
			Help:      "Searches the engine rejected as invalid syntax and answered with no hits.",
		}),
	}
	m.registry.MustRegister(
		m.toolCalls,
		m.toolDuration,
		m.requests,
		m.sessions,
		m.searchHits,
		m.invalidQuery,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCall implements tools.CallObserver.
func (m *Metrics) ObserveCall(tool string, elapsed time.Duration, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ObserveRequest implements RequestObserver.
func (m *Metrics) ObserveRequest(method string) {
	m.requests.WithLabelValues(method).Inc()
}

// SetSessions records the number of open HTTP sessions.
func (m *Metrics) SetSessions(n int) {
	m.sessions.Set(float64(n))
}

// Start implements search.SearchMonitor.
func (m *Metrics) Start(_, _ string) {}

// AfterRegulationSearch implements search.SearchMonitor.
func (m *Metrics) AfterRegulationSearch(hits []*core.SearchHit) {
	m.searchHits.WithLabelValues("regulation").Observe(float64(len(hits)))
}

// AfterStandardSearch implements search.SearchMonitor.
func (m *Metrics) AfterStandardSearch(hits []*core.SearchHit) {
	m.searchHits.WithLabelValues("standard").Observe(float64(len(hits)))
}

// InvalidQuery implements search.SearchMonitor.
func (m *Metrics) InvalidQuery(_ string, _ error) {
	m.invalidQuery.Inc()
}

// Finish implements search.SearchMonitor.
func (m *Metrics) Finish(results []*core.SearchHit) {
	m.searchHits.WithLabelValues("merged").Observe(float64(len(results)))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
