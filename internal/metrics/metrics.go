/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics holds the operator's Prometheus collectors. They are
// registered on the controller-runtime registry and served on the manager's
// metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

const namespace = "ipadns"

var (
	// ReconcileOutcomes counts reconciliation outcomes by source kind and outcome.
	ReconcileOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_outcomes_total",
		Help:      "Total number of binding reconciliations by source kind and outcome.",
	}, []string{"kind", "outcome"})

	// BackendCalls counts directory calls by method and result.
	BackendCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_calls_total",
		Help:      "Total number of directory calls by method and result.",
	}, []string{"method", "result"})

	// BackendCallDuration observes directory call latency.
	BackendCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_call_duration_seconds",
		Help:      "Duration of directory calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)

func init() {
	ctrlmetrics.Registry.MustRegister(ReconcileOutcomes, BackendCalls, BackendCallDuration)
}

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// ObserveOutcome records one reconciliation outcome.
func ObserveOutcome(kind, outcome string) {
	ReconcileOutcomes.WithLabelValues(kind, outcome).Inc()
}

// ObserveBackendCall records one directory call started at start.
func ObserveBackendCall(method string, start time.Time, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	BackendCalls.WithLabelValues(method, result).Inc()
	BackendCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
