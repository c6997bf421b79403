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
	"net/http"
	"strings"
	"time"

	"github.com/statuskit/statuskit/pkg/extract"
	"github.com/statuskit/statuskit/pkg/health"
)

// Edge protection thresholds. Provisional defaults.
const (
	edgeErrorRateDegradedPct = 10
	edgeBlockedWarn          = 500
	edgeBlockedCrit          = 2000
	edgeBotBlockWarn         = 200
	edgeBotBlockCrit         = 1000
	edgeRateLimitWarn        = 100
	edgeRateLimitCrit        = 500
)

// EdgeCollector queries the bot/security edge-protection summary
// endpoint. The response shape varies by account plan and API
// revision, so every logical value is read through an ordered list of
// candidate paths.
type EdgeCollector struct {
	APIURL     string
	APIKey     string
	HTTPClient *http.Client

	now func() time.Time
}

// NewEdgeCollector creates the edge protection collector.
func NewEdgeCollector(apiURL, apiKey string, httpClient *http.Client) *EdgeCollector {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &EdgeCollector{
		APIURL:     apiURL,
		APIKey:     apiKey,
		HTTPClient: httpClient,
		now:        time.Now,
	}
}

// Name returns the provider identifier.
func (c *EdgeCollector) Name() string { return ProviderEdge }

// Collect never returns an error; failures appear in the status and
// metrics it produces. Without an API key no network call is
// attempted.
func (c *EdgeCollector) Collect(ctx context.Context) health.ProviderResult {
	now := c.now().UTC()
	svc := newStatus(ProviderEdge, "Edge Protection", now)
	res := health.ProviderResult{}

	if c.APIKey == "" || c.APIURL == "" {
		svc.Details = "edge protection API key not configured"
		res.Security = append(res.Security, configurationMetric(ProviderEdge, "api-credentials",
			"edge protection API key not configured; threat telemetry unavailable", now))
		res.Service = &svc
		return res
	}

	var payload map[string]any
	if err := fetchJSON(ctx, c.HTTPClient, c.APIURL, c.APIKey, &payload); err != nil {
		svc.Health = health.StateDegraded
		svc.Details = fmt.Sprintf("edge summary unavailable: %v", err)
		res.Service = &svc
		return res
	}

	src := extract.Source(payload)

	total := src.Number("totals.requests", "data.total.requests", "requests.all", "total_requests")
	blocked := src.Number("totals.threats", "data.total.threats", "threats.all", "blocked_requests", "blocked")
	botBlocked := src.Number("totals.bot_blocked", "bot_management.blocked", "bots.blocked", "bot_blocks")
	rateLimited := src.Number("totals.rate_limited", "rate_limiting.blocked", "rate_limited")

	svc.Health = health.StateOperational
	if total != nil && *total > 0 && blocked != nil {
		rate := *blocked / *total * 100
		svc.ErrorRatePct = &rate
		if rate > edgeErrorRateDegradedPct {
			svc.Health = health.StateDegraded
			svc.Details = fmt.Sprintf("blocked traffic %.1f%% exceeds %d%%", rate, edgeErrorRateDegradedPct)
		}
	}

	res.Security = append(res.Security,
		edgeMetric("edge-blocked-requests", "Blocked requests", blocked, edgeBlockedWarn, edgeBlockedCrit, now),
		edgeMetric("edge-bot-blocks", "Bot blocks", botBlocked, edgeBotBlockWarn, edgeBotBlockCrit, now),
		edgeMetric("edge-rate-limited", "Rate-limited requests", rateLimited, edgeRateLimitWarn, edgeRateLimitCrit, now),
	)
	res.Security = append(res.Security, c.threatInsightMetrics(src, now)...)

	res.Service = &svc
	return res
}

func edgeMetric(id, name string, value *float64, warn, crit float64, now time.Time) health.Metric {
	return health.Metric{
		ID:        id,
		Name:      name,
		Value:     value,
		Unit:      "count",
		Severity:  severityAbove(value, warn, crit),
		UpdatedAt: now,
		Category:  "edge",
	}
}

// threatInsightMetrics maps the variable-length insight list into one
// metric per entry. Entries missing a usable name or count are
// skipped; the list is advisory.
func (c *EdgeCollector) threatInsightMetrics(src extract.Source, now time.Time) []health.Metric {
	entries := src.Slice("threat_insights", "insights", "data.insights")

	metrics := make([]health.Metric, 0, len(entries))
	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		es := extract.Source(m)

		name, ok := es.String("name", "type", "category")
		if !ok {
			continue
		}
		count := es.Number("count", "value", "total")
		if count == nil {
			continue
		}

		metrics = append(metrics, health.Metric{
			ID:        "edge-insight-" + slugify(name),
			Name:      "Threat insight: " + name,
			Value:     count,
			Unit:      "count",
			Severity:  severityAbove(count, edgeBlockedWarn, edgeBlockedCrit),
			UpdatedAt: now,
			Category:  "edge",
		})
	}
	return metrics
}

// slugify lowercases a free-text name into a stable metric id
// fragment.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '/':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
