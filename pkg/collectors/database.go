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

package collectors

import (
	"context"
	"fmt"
	"time"

	"github.com/statuskit/statuskit/pkg/health"
	"github.com/statuskit/statuskit/pkg/timeseries"
)

// databaseLatencyDegradedMS marks the p95 latency beyond which the
// document store is considered degraded. Provisional default.
const databaseLatencyDegradedMS = 1200

// DatabaseCollector derives the health of the document database tier
// from parallel time-series queries, including a read/write latency
// pipeline pair and a permission-denied security signal.
type DatabaseCollector struct {
	Query timeseries.Querier

	now func() time.Time
}

// NewDatabaseCollector creates the document database collector.
func NewDatabaseCollector(query timeseries.Querier) *DatabaseCollector {
	return &DatabaseCollector{Query: query, now: time.Now}
}

// Name returns the provider identifier.
func (c *DatabaseCollector) Name() string { return ProviderDatabase }

// Collect never returns an error; failures appear in the status and
// metrics it produces.
func (c *DatabaseCollector) Collect(ctx context.Context) health.ProviderResult {
	now := c.now().UTC()
	svc := newStatus(ProviderDatabase, "Document Database", now)
	res := health.ProviderResult{}

	outcomes := runQueries(ctx, c.Query, []tsQuery{
		{key: "reads", req: timeseries.QueryRequest{
			Filter:  `metric.type = "firestore.googleapis.com/document/read_count"`,
			Aligner: "ALIGN_DELTA",
			Reducer: "REDUCE_SUM",
		}},
		{key: "writes", req: timeseries.QueryRequest{
			Filter:  `metric.type = "firestore.googleapis.com/document/write_count"`,
			Aligner: "ALIGN_DELTA",
			Reducer: "REDUCE_SUM",
		}},
		{key: "read_latency_p95", req: timeseries.QueryRequest{
			Filter:  `metric.type = "firestore.googleapis.com/api/request_latencies" AND metric.labels.op = "read"`,
			Aligner: "ALIGN_PERCENTILE_95",
			Reducer: "REDUCE_MEAN",
		}},
		{key: "write_latency_p95", req: timeseries.QueryRequest{
			Filter:  `metric.type = "firestore.googleapis.com/api/request_latencies" AND metric.labels.op = "write"`,
			Aligner: "ALIGN_PERCENTILE_95",
			Reducer: "REDUCE_MEAN",
		}},
		{key: "permission_denied", req: timeseries.QueryRequest{
			Filter:  `metric.type = "firestore.googleapis.com/api/request_count" AND metric.labels.status = "PERMISSION_DENIED"`,
			Aligner: "ALIGN_DELTA",
			Reducer: "REDUCE_SUM",
		}},
	})

	missingCreds, firstErr := classifyOutcomes(outcomes)
	if missingCreds {
		svc.Details = "monitoring credentials not configured"
		res.Security = append(res.Security, configurationMetric(ProviderDatabase, "monitoring-credentials",
			"monitoring credentials not configured; database telemetry unavailable", now))
		res.Service = &svc
		return res
	}

	svc.Health = health.StateOperational
	if firstErr != nil {
		svc.Health = health.StateDegraded
		svc.Details = fmt.Sprintf("database telemetry partially unavailable: %v", firstErr)
	}

	readLatency := outcomes["read_latency_p95"].res.Value
	writeLatency := outcomes["write_latency_p95"].res.Value

	worst := maxValue(readLatency, writeLatency)
	if worst != nil {
		svc.LatencyMS = worst
		if *worst > databaseLatencyDegradedMS {
			svc.Health = health.StateDegraded
			svc.Details = fmt.Sprintf("p95 operation latency %.0fms exceeds %dms", *worst, databaseLatencyDegradedMS)
		}
	}

	res.DataPipeline = append(res.DataPipeline,
		latencyMetric("database-read-latency", "Document read latency (p95)", readLatency, now),
		latencyMetric("database-write-latency", "Document write latency (p95)", writeLatency, now),
	)

	res.Utilization = append(res.Utilization,
		countMetric("database-reads", "Document reads", "ops", outcomes["reads"].res, now),
		countMetric("database-writes", "Document writes", "ops", outcomes["writes"].res, now),
	)

	denied := outcomes["permission_denied"].res.Value
	deniedSeverity := health.SeverityNormal
	switch {
	case denied == nil:
		deniedSeverity = health.SeverityUnknown
	case *denied > 0:
		deniedSeverity = health.SeverityWarning
	}
	res.Security = append(res.Security, health.Metric{
		ID:        "database-permission-denied",
		Name:      "Database permission denials",
		Value:     denied,
		Unit:      "count",
		Severity:  deniedSeverity,
		UpdatedAt: now,
		Category:  "database",
	})

	res.Service = &svc
	return res
}

// latencyMetric scores a p95 latency sample against the database
// degradation threshold.
func latencyMetric(id, name string, value *float64, now time.Time) health.Metric {
	return health.Metric{
		ID:        id,
		Name:      name,
		Value:     value,
		Unit:      "ms",
		Severity:  severityAbove(value, databaseLatencyDegradedMS/2, databaseLatencyDegradedMS),
		UpdatedAt: now,
		Category:  "pipeline",
	}
}

func maxValue(values ...*float64) *float64 {
	var max *float64
	for _, v := range values {
		if v == nil {
			continue
		}
		if max == nil || *v > *max {
			max = v
		}
	}
	return max
}
