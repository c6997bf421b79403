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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/statuskit/statuskit/pkg/health"
)

// Provider identifiers, also the fixed merge order in the aggregator.
const (
	ProviderIdentity    = "identity"
	ProviderCompute     = "compute"
	ProviderDatabase    = "database"
	ProviderHosting     = "hosting"
	ProviderEdge        = "edge"
	ProviderAnalytics   = "analytics"
	ProviderSearchIndex = "search-index"
)

// Collector queries one external provider and normalizes its response.
//
// Collect never returns an error: internal failure is expressed as a
// degraded or unknown service status carrying the causal message in
// its details. This non-throwing contract is what lets the aggregator
// fan out without per-provider error plumbing.
type Collector interface {
	Name() string
	Collect(ctx context.Context) health.ProviderResult
}

// newStatus returns a ServiceStatus skeleton for a provider. Health
// starts at unknown so a collector that bails early still satisfies
// the status totality invariant.
func newStatus(id, name string, now time.Time) health.ServiceStatus {
	return health.ServiceStatus{
		ID:        id,
		Name:      name,
		Health:    health.StateUnknown,
		UpdatedAt: now,
		Provider:  id,
	}
}

// configurationMetric reports a missing credential or endpoint as an
// explicit security metric instead of a silent omission. Configuration
// gaps carry warning severity so they derive a visible alert.
func configurationMetric(provider, id, details string, now time.Time) health.Metric {
	return health.Metric{
		ID:        fmt.Sprintf("%s-%s", provider, id),
		Name:      fmt.Sprintf("%s %s", provider, id),
		Value:     nil,
		Severity:  health.SeverityWarning,
		UpdatedAt: now,
		Details:   details,
		Category:  health.CategoryConfiguration,
	}
}

// severityAbove grades a value against ascending warning and critical
// thresholds. A nil value grades as unknown.
func severityAbove(value *float64, warn, crit float64) health.Severity {
	if value == nil {
		return health.SeverityUnknown
	}
	switch {
	case *value > crit:
		return health.SeverityCritical
	case *value > warn:
		return health.SeverityWarning
	default:
		return health.SeverityNormal
	}
}

// fetchJSON issues a GET with optional bearer auth and decodes the
// response body into dst. Non-2xx responses are errors; the status
// code is preserved in the message for the collector's details field.
func fetchJSON(ctx context.Context, client *http.Client, url, bearer string, dst any) error {
	return doJSON(ctx, client, http.MethodGet, url, bearer, nil, dst)
}

// postJSON issues a POST with a JSON body and optional bearer auth.
func postJSON(ctx context.Context, client *http.Client, url, bearer string, body, dst any) error {
	return doJSON(ctx, client, http.MethodPost, url, bearer, body, dst)
}

func doJSON(ctx context.Context, client *http.Client, method, url, bearer string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	return nil
}
