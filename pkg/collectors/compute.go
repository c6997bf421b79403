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

// Compute thresholds. Provisional defaults pending confirmation.
const (
	computeLatencyDegradedMS = 2500
	computeErrorRatePct      = 5
	utilizationWarnPct       = 85
	utilizationCritPct       = 95
)

// ComputeCollector derives the health of the serverless compute tier
// from a batch of parallel time-series queries.
type ComputeCollector struct {
	Query timeseries.Querier

	now func() time.Time
}

// NewComputeCollector creates the compute tier collector.
func NewComputeCollector(query timeseries.Querier) *ComputeCollector {
	return &ComputeCollector{Query: query, now: time.Now}
}

// Name returns the provider identifier.
func (c *ComputeCollector) Name() string { return ProviderCompute }

// Collect never returns an error; failures appear in the status and
// metrics it produces.
func (c *ComputeCollector) Collect(ctx context.Context) health.ProviderResult {
	now := c.now().UTC()
	svc := newStatus(ProviderCompute, "Compute Services", now)
	res := health.ProviderResult{}

	outcomes := runQueries(ctx, c.Query, []tsQuery{
		{key: "latency_p95", req: timeseries.QueryRequest{
			Filter:  `metric.type = "run.googleapis.com/request_latencies" AND resource.type = "cloud_run_revision"`,
			Aligner: "ALIGN_PERCENTILE_95",
			Reducer: "REDUCE_MEAN",
		}},
		{key: "requests", req: timeseries.QueryRequest{
			Filter:  `metric.type = "run.googleapis.com/request_count" AND resource.type = "cloud_run_revision"`,
			Aligner: "ALIGN_DELTA",
			Reducer: "REDUCE_SUM",
		}},
		{key: "errors", req: timeseries.QueryRequest{
			Filter:  `metric.type = "run.googleapis.com/request_count" AND metric.labels.response_code_class = "5xx"`,
			Aligner: "ALIGN_DELTA",
			Reducer: "REDUCE_SUM",
		}},
		{key: "cpu", req: timeseries.QueryRequest{
			Filter:  `metric.type = "run.googleapis.com/container/cpu/utilizations"`,
			Aligner: "ALIGN_PERCENTILE_99",
			Reducer: "REDUCE_MEAN",
		}},
		{key: "memory", req: timeseries.QueryRequest{
			Filter:  `metric.type = "run.googleapis.com/container/memory/utilizations"`,
			Aligner: "ALIGN_PERCENTILE_99",
			Reducer: "REDUCE_MEAN",
		}},
	})

	missingCreds, firstErr := classifyOutcomes(outcomes)
	if missingCreds {
		svc.Details = "monitoring credentials not configured"
		res.Security = append(res.Security, configurationMetric(ProviderCompute, "monitoring-credentials",
			"monitoring credentials not configured; compute telemetry unavailable", now))
		res.Service = &svc
		return res
	}

	svc.Health = health.StateOperational
	if firstErr != nil {
		svc.Health = health.StateDegraded
		svc.Details = fmt.Sprintf("compute telemetry partially unavailable: %v", firstErr)
	}

	if latency := outcomes["latency_p95"].res.Value; latency != nil {
		svc.LatencyMS = latency
		if *latency > computeLatencyDegradedMS {
			svc.Health = health.StateDegraded
			svc.Details = fmt.Sprintf("p95 request latency %.0fms exceeds %dms", *latency, computeLatencyDegradedMS)
		}
	}

	requests := outcomes["requests"].res.Value
	errCount := outcomes["errors"].res.Value
	if requests != nil && *requests > 0 && errCount != nil {
		rate := *errCount / *requests * 100
		svc.ErrorRatePct = &rate
		if rate > computeErrorRatePct {
			svc.Health = health.StateDegraded
			svc.Details = fmt.Sprintf("error rate %.1f%% exceeds %d%%", rate, computeErrorRatePct)
		}
	}

	res.Utilization = append(res.Utilization,
		utilizationPercent("compute-cpu", "Compute CPU utilization", outcomes["cpu"].res, now),
		utilizationPercent("compute-memory", "Compute memory utilization", outcomes["memory"].res, now),
		countMetric("compute-requests", "Compute request volume", "requests", outcomes["requests"].res, now),
	)

	res.Service = &svc
	return res
}

// utilizationPercent converts a 0..1 utilization sample into a scored
// percentage metric.
func utilizationPercent(id, name string, r timeseries.QueryResult, now time.Time) health.Metric {
	var value *float64
	if r.Value != nil {
		pct := *r.Value * 100
		value = &pct
	}
	m := health.Metric{
		ID:        id,
		Name:      name,
		Value:     value,
		Unit:      "%",
		Severity:  severityAbove(value, utilizationWarnPct, utilizationCritPct),
		UpdatedAt: now,
		Category:  "utilization",
	}
	if r.CollectedAt != nil {
		m.UpdatedAt = *r.CollectedAt
	}
	return m
}

// countMetric wraps a raw counter sample as an informational metric.
// Counters are not thresholded; volume alone is not a problem.
func countMetric(id, name, unit string, r timeseries.QueryResult, now time.Time) health.Metric {
	severity := health.SeverityNormal
	if r.Value == nil {
		severity = health.SeverityUnknown
	}
	m := health.Metric{
		ID:        id,
		Name:      name,
		Value:     r.Value,
		Unit:      unit,
		Severity:  severity,
		UpdatedAt: now,
		Category:  "utilization",
	}
	if r.CollectedAt != nil {
		m.UpdatedAt = *r.CollectedAt
	}
	return m
}
