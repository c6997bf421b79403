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

// Hosting thresholds. Provisional defaults.
const (
	hostingLatencyDegradedMS = 2000
	hostingErrorRatePct      = 5
)

// HostingCollector derives the health of the static hosting and CDN
// tier from parallel time-series queries.
type HostingCollector struct {
	Query timeseries.Querier

	now func() time.Time
}

// NewHostingCollector creates the static hosting collector.
func NewHostingCollector(query timeseries.Querier) *HostingCollector {
	return &HostingCollector{Query: query, now: time.Now}
}

// Name returns the provider identifier.
func (c *HostingCollector) Name() string { return ProviderHosting }

// Collect never returns an error; failures appear in the status and
// metrics it produces.
func (c *HostingCollector) Collect(ctx context.Context) health.ProviderResult {
	now := c.now().UTC()
	svc := newStatus(ProviderHosting, "Static Hosting", now)
	res := health.ProviderResult{}

	outcomes := runQueries(ctx, c.Query, []tsQuery{
		{key: "requests", req: timeseries.QueryRequest{
			Filter:  `metric.type = "firebasehosting.googleapis.com/network/request_count"`,
			Aligner: "ALIGN_DELTA",
			Reducer: "REDUCE_SUM",
		}},
		{key: "errors", req: timeseries.QueryRequest{
			Filter:  `metric.type = "firebasehosting.googleapis.com/network/request_count" AND metric.labels.response_code_class = "5xx"`,
			Aligner: "ALIGN_DELTA",
			Reducer: "REDUCE_SUM",
		}},
		{key: "sent_bytes", req: timeseries.QueryRequest{
			Filter:  `metric.type = "firebasehosting.googleapis.com/network/sent_bytes_count"`,
			Aligner: "ALIGN_DELTA",
			Reducer: "REDUCE_SUM",
		}},
		{key: "latency_p95", req: timeseries.QueryRequest{
			Filter:  `metric.type = "firebasehosting.googleapis.com/network/request_latencies"`,
			Aligner: "ALIGN_PERCENTILE_95",
			Reducer: "REDUCE_MEAN",
		}},
	})

	missingCreds, firstErr := classifyOutcomes(outcomes)
	if missingCreds {
		svc.Details = "monitoring credentials not configured"
		res.Security = append(res.Security, configurationMetric(ProviderHosting, "monitoring-credentials",
			"monitoring credentials not configured; hosting telemetry unavailable", now))
		res.Service = &svc
		return res
	}

	svc.Health = health.StateOperational
	if firstErr != nil {
		svc.Health = health.StateDegraded
		svc.Details = fmt.Sprintf("hosting telemetry partially unavailable: %v", firstErr)
	}

	if latency := outcomes["latency_p95"].res.Value; latency != nil {
		svc.LatencyMS = latency
		if *latency > hostingLatencyDegradedMS {
			svc.Health = health.StateDegraded
			svc.Details = fmt.Sprintf("p95 edge latency %.0fms exceeds %dms", *latency, hostingLatencyDegradedMS)
		}
	}

	requests := outcomes["requests"].res.Value
	errCount := outcomes["errors"].res.Value
	if requests != nil && *requests > 0 && errCount != nil {
		rate := *errCount / *requests * 100
		svc.ErrorRatePct = &rate
		if rate > hostingErrorRatePct {
			svc.Health = health.StateDegraded
			svc.Details = fmt.Sprintf("error rate %.1f%% exceeds %d%%", rate, hostingErrorRatePct)
		}
	}

	res.Utilization = append(res.Utilization,
		countMetric("hosting-requests", "Hosting request volume", "requests", outcomes["requests"].res, now),
		bandwidthMetric("hosting-bandwidth", "Hosting bandwidth", outcomes["sent_bytes"].res, now),
	)

	res.Service = &svc
	return res
}

// bandwidthMetric converts a sent-bytes counter into gigabytes.
func bandwidthMetric(id, name string, r timeseries.QueryResult, now time.Time) health.Metric {
	var value *float64
	if r.Value != nil {
		gb := *r.Value / (1 << 30)
		value = &gb
	}
	severity := health.SeverityNormal
	if value == nil {
		severity = health.SeverityUnknown
	}
	m := health.Metric{
		ID:        id,
		Name:      name,
		Value:     value,
		Unit:      "GB",
		Severity:  severity,
		UpdatedAt: now,
		Category:  "utilization",
	}
	if r.CollectedAt != nil {
		m.UpdatedAt = *r.CollectedAt
	}
	return m
}
