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
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/statuskit/statuskit/pkg/extract"
	"github.com/statuskit/statuskit/pkg/health"
)

// Sign-in telemetry thresholds. Provisional defaults carried over from
// the operations runbook; tune via review, not here.
const (
	failedSignInWarn = 5
	failedSignInCrit = 15
	pendingMFAWarn   = 3
	pendingMFACrit   = 10
)

// IdentityCollector reports the health of the identity provider from
// two independent sources: the public status-page feed, and, when a
// private API secret is configured, a direct probe plus a recent
// sign-in event sample.
type IdentityCollector struct {
	FeedURL    string
	APIURL     string
	APISecret  string
	HTTPClient *http.Client

	now func() time.Time
}

// NewIdentityCollector creates the identity provider collector.
func NewIdentityCollector(feedURL, apiURL, apiSecret string, httpClient *http.Client) *IdentityCollector {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &IdentityCollector{
		FeedURL:    feedURL,
		APIURL:     strings.TrimRight(apiURL, "/"),
		APISecret:  apiSecret,
		HTTPClient: httpClient,
		now:        time.Now,
	}
}

// Name returns the provider identifier.
func (c *IdentityCollector) Name() string { return ProviderIdentity }

// Collect never returns an error; failures appear in the status and
// metrics it produces.
func (c *IdentityCollector) Collect(ctx context.Context) health.ProviderResult {
	now := c.now().UTC()
	svc := newStatus(ProviderIdentity, "Identity Provider", now)
	res := health.ProviderResult{}

	if c.FeedURL == "" {
		svc.Details = "status feed not configured"
	} else {
		c.collectStatusFeed(ctx, &svc)
	}

	if c.APISecret == "" {
		res.Security = append(res.Security, configurationMetric(ProviderIdentity, "api-credentials",
			"identity API secret not configured; sign-in telemetry unavailable", now))
	} else {
		c.probeAPI(ctx, &svc)
		res.Security = append(res.Security, c.collectSignInMetrics(ctx, now)...)
	}

	res.Service = &svc
	return res
}

// indicatorToState maps the public feed's indicator vocabulary onto
// the normalized health states. Anything unrecognized is unknown.
func indicatorToState(indicator string) health.State {
	switch strings.ToLower(indicator) {
	case "none", "operational":
		return health.StateOperational
	case "minor", "degraded":
		return health.StateDegraded
	case "major", "critical":
		return health.StateOutage
	case "maintenance":
		return health.StateMaintenance
	default:
		return health.StateUnknown
	}
}

func (c *IdentityCollector) collectStatusFeed(ctx context.Context, svc *health.ServiceStatus) {
	var payload map[string]any
	if err := fetchJSON(ctx, c.HTTPClient, c.FeedURL, "", &payload); err != nil {
		svc.Health = health.StateDegraded
		svc.Details = fmt.Sprintf("status feed unavailable: %v", err)
		slog.Warn("identity status feed fetch failed", slog.String("error", err.Error()))
		return
	}

	src := extract.Source(payload)
	indicator, _ := src.String("status.indicator", "indicator")
	svc.Health = indicatorToState(indicator)

	if desc, ok := src.String("status.description"); ok {
		svc.Details = desc
	}

	incidents := src.Slice("incidents", "active_incidents")
	count := len(incidents)
	svc.IncidentCount = &count
}

// probeAPI issues a minimal authenticated request to measure latency
// and detect auth-plane failures the status feed has not caught up to.
func (c *IdentityCollector) probeAPI(ctx context.Context, svc *health.ServiceStatus) {
	start := c.now()
	var payload any
	err := fetchJSON(ctx, c.HTTPClient, c.APIURL+"/users?limit=1", c.APISecret, &payload)
	latency := float64(time.Since(start).Milliseconds())
	svc.LatencyMS = &latency

	if err != nil {
		svc.Health = health.StateDegraded
		svc.Details = fmt.Sprintf("identity API probe failed: %v", err)
	}
}

// collectSignInMetrics samples the most recent sign-in attempts and
// scores failure and pending-MFA counts against fixed thresholds.
func (c *IdentityCollector) collectSignInMetrics(ctx context.Context, now time.Time) []health.Metric {
	var payload any
	if err := fetchJSON(ctx, c.HTTPClient, c.APIURL+"/sign_ins?limit=50", c.APISecret, &payload); err != nil {
		slog.Warn("identity sign-in sample fetch failed", slog.String("error", err.Error()))
		return []health.Metric{{
			ID:        "identity-sign-in-telemetry",
			Name:      "Sign-in telemetry",
			Severity:  health.SeverityUnknown,
			UpdatedAt: now,
			Details:   fmt.Sprintf("sign-in sample unavailable: %v", err),
			Category:  "identity",
		}}
	}

	var entries []any
	switch v := payload.(type) {
	case []any:
		entries = v
	case map[string]any:
		entries = extract.Source(v).Slice("data", "sign_ins", "events")
	}

	var failed, pendingMFA float64
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		status, _ := extract.Source(m).String("status", "state")
		switch strings.ToLower(status) {
		case "failed", "abandoned", "blocked":
			failed++
		case "needs_second_factor", "pending_mfa", "pending":
			pendingMFA++
		}
	}

	return []health.Metric{
		{
			ID:        "identity-failed-sign-ins",
			Name:      "Failed sign-ins",
			Value:     &failed,
			Unit:      "count",
			Severity:  severityAbove(&failed, failedSignInWarn, failedSignInCrit),
			UpdatedAt: now,
			Category:  "identity",
		},
		{
			ID:        "identity-pending-mfa",
			Name:      "Pending MFA challenges",
			Value:     &pendingMFA,
			Unit:      "count",
			Severity:  severityAbove(&pendingMFA, pendingMFAWarn, pendingMFACrit),
			UpdatedAt: now,
			Category:  "identity",
		},
	}
}
