// Copyright (c) 2025, StatusKit Authors.  All rights reserved.
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

package snapshotter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Aggregation pass metrics
	aggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "statuskit_aggregation_duration_seconds",
			Help:    "Time taken to assemble a complete health snapshot",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	aggregationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statuskit_aggregation_total",
			Help: "Total number of aggregation passes",
		},
		[]string{"source"}, // cache or live
	)

	collectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statuskit_collector_duration_seconds",
			Help:    "Time taken by individual provider collectors",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"collector"},
	)

	collectorPanicTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statuskit_collector_panic_total",
			Help: "Total number of recovered collector panics",
		},
		[]string{"collector"},
	)

	openAlertCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "statuskit_open_alerts",
			Help: "Number of open alerts in the last assembled snapshot",
		},
	)
)
