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
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/statuskit/statuskit/pkg/credentials"
	"github.com/statuskit/statuskit/pkg/extract"
	"github.com/statuskit/statuskit/pkg/health"
)

const (
	defaultAnalyticsAdminURL = "https://analyticsadmin.googleapis.com/v1beta"
	defaultAnalyticsDataURL  = "https://analyticsdata.googleapis.com/v1beta"
	defaultAuditURL          = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

	// AnalyticsReadScope is the permission scope for the analytics
	// admin and reporting APIs.
	AnalyticsReadScope = "https://www.googleapis.com/auth/analytics.readonly"
)

// AnalyticsCollector reports web traffic totals and page performance.
// The opaque analytics property id is resolved from the public
// measurement id by paging account, property, and stream listings; the
// resolution is memoized for the process lifetime since the mapping is
// effectively immutable. Traffic reporting and the public page
// performance audit fail independently: losing one does not abort the
// other.
type AnalyticsCollector struct {
	AdminURL      string
	DataURL       string
	AuditURL      string
	MeasurementID string
	SiteURL       string
	Tokens        credentials.TokenSource
	HTTPClient    *http.Client

	now func() time.Time

	mu         sync.Mutex
	propertyID string
}

// NewAnalyticsCollector creates the web analytics collector. Endpoint
// arguments may be empty to use the public APIs.
func NewAnalyticsCollector(adminURL, dataURL, auditURL, measurementID, siteURL string,
	tokens credentials.TokenSource, httpClient *http.Client) *AnalyticsCollector {
	if adminURL == "" {
		adminURL = defaultAnalyticsAdminURL
	}
	if dataURL == "" {
		dataURL = defaultAnalyticsDataURL
	}
	if auditURL == "" {
		auditURL = defaultAuditURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &AnalyticsCollector{
		AdminURL:      strings.TrimRight(adminURL, "/"),
		DataURL:       strings.TrimRight(dataURL, "/"),
		AuditURL:      auditURL,
		MeasurementID: measurementID,
		SiteURL:       siteURL,
		Tokens:        tokens,
		HTTPClient:    httpClient,
		now:           time.Now,
	}
}

// Name returns the provider identifier.
func (c *AnalyticsCollector) Name() string { return ProviderAnalytics }

// Collect never returns an error; failures appear in the status and
// metrics it produces.
func (c *AnalyticsCollector) Collect(ctx context.Context) health.ProviderResult {
	now := c.now().UTC()
	svc := newStatus(ProviderAnalytics, "Web Analytics", now)
	res := health.ProviderResult{}

	if c.MeasurementID == "" {
		svc.Details = "analytics measurement id not configured"
		res.Security = append(res.Security, configurationMetric(ProviderAnalytics, "measurement-id",
			"analytics measurement id not configured; traffic telemetry unavailable", now))
	} else {
		c.collectTraffic(ctx, &svc, &res, now)
	}

	// Page performance runs against the public audit API regardless of
	// how the traffic half fared.
	if c.SiteURL != "" {
		if vitals := c.collectWebVitals(ctx); vitals != nil {
			res.Seo = &health.SeoCoverage{WebVitals: vitals}
		}
	}

	res.Service = &svc
	return res
}

func (c *AnalyticsCollector) collectTraffic(ctx context.Context, svc *health.ServiceStatus,
	res *health.ProviderResult, now time.Time) {

	propertyID, err := c.resolveProperty(ctx)
	if err != nil {
		if errors.Is(err, credentials.ErrMissingCredentials) {
			svc.Details = "monitoring credentials not configured"
			res.Security = append(res.Security, configurationMetric(ProviderAnalytics, "monitoring-credentials",
				"monitoring credentials not configured; traffic telemetry unavailable", now))
			return
		}
		svc.Health = health.StateDegraded
		svc.Details = fmt.Sprintf("analytics property resolution failed: %v", err)
		return
	}

	report, err := c.runReport(ctx, propertyID)
	if err != nil {
		svc.Health = health.StateDegraded
		svc.Details = fmt.Sprintf("analytics report failed: %v", err)
		return
	}

	svc.Health = health.StateOperational
	res.Utilization = append(res.Utilization,
		trafficMetric("analytics-active-users", "Active users (7d)", report.activeUsers, now),
		trafficMetric("analytics-page-views", "Page views (7d)", report.pageViews, now),
		trafficMetric("analytics-sessions", "Sessions (7d)", report.sessions, now),
	)
}

// resolveProperty maps the public measurement id to the internal
// property id by walking account, property, and stream listings. The
// first successful resolution is memoized.
func (c *AnalyticsCollector) resolveProperty(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.propertyID != "" {
		id := c.propertyID
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	tok, err := c.Tokens.Token(ctx, AnalyticsReadScope)
	if err != nil {
		return "", err
	}

	accounts, err := c.listPaged(ctx, tok.AccessToken, c.AdminURL+"/accounts", "accounts")
	if err != nil {
		return "", fmt.Errorf("failed to list accounts: %w", err)
	}

	for _, account := range accounts {
		accountObj, ok := account.(map[string]any)
		if !ok {
			continue
		}
		accountName, ok := extract.Source(accountObj).String("name")
		if !ok {
			continue
		}

		propsURL := fmt.Sprintf("%s/properties?filter=%s", c.AdminURL,
			url.QueryEscape("parent:"+accountName))
		properties, err := c.listPaged(ctx, tok.AccessToken, propsURL, "properties")
		if err != nil {
			return "", fmt.Errorf("failed to list properties: %w", err)
		}

		for _, property := range properties {
			propertyObj, ok := property.(map[string]any)
			if !ok {
				continue
			}
			propertyName, ok := extract.Source(propertyObj).String("name")
			if !ok {
				continue
			}

			streams, err := c.listPaged(ctx, tok.AccessToken,
				fmt.Sprintf("%s/%s/dataStreams", c.AdminURL, propertyName), "dataStreams")
			if err != nil {
				return "", fmt.Errorf("failed to list data streams: %w", err)
			}

			for _, stream := range streams {
				streamObj, ok := stream.(map[string]any)
				if !ok {
					continue
				}
				measurementID, _ := extract.Source(streamObj).String(
					"webStreamData.measurementId", "measurementId")
				if measurementID == c.MeasurementID {
					c.mu.Lock()
					c.propertyID = propertyName
					c.mu.Unlock()
					slog.Debug("resolved analytics property",
						slog.String("property", propertyName),
						slog.String("measurementId", measurementID))
					return propertyName, nil
				}
			}
		}
	}

	return "", fmt.Errorf("no property matches measurement id %s", c.MeasurementID)
}

// listPaged follows pageToken pagination and concatenates the named
// collection across pages.
func (c *AnalyticsCollector) listPaged(ctx context.Context, bearer, baseURL, field string) ([]any, error) {
	var all []any
	pageToken := ""

	for {
		endpoint := baseURL
		if pageToken != "" {
			sep := "?"
			if strings.Contains(baseURL, "?") {
				sep = "&"
			}
			endpoint = baseURL + sep + "pageToken=" + url.QueryEscape(pageToken)
		}

		var payload map[string]any
		if err := fetchJSON(ctx, c.HTTPClient, endpoint, bearer, &payload); err != nil {
			return nil, err
		}

		src := extract.Source(payload)
		all = append(all, src.Slice(field)...)

		pageToken, _ = src.String("nextPageToken")
		if pageToken == "" {
			return all, nil
		}
	}
}

type trafficReport struct {
	activeUsers *float64
	pageViews   *float64
	sessions    *float64
}

// runReport requests a 7-day traffic totals report.
func (c *AnalyticsCollector) runReport(ctx context.Context, propertyID string) (*trafficReport, error) {
	tok, err := c.Tokens.Token(ctx, AnalyticsReadScope)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"dateRanges": []map[string]string{{"startDate": "7daysAgo", "endDate": "today"}},
		"metrics": []map[string]string{
			{"name": "activeUsers"},
			{"name": "screenPageViews"},
			{"name": "sessions"},
		},
	}

	var payload map[string]any
	endpoint := fmt.Sprintf("%s/%s:runReport", c.DataURL, propertyID)
	if err := postJSON(ctx, c.HTTPClient, endpoint, tok.AccessToken, body, &payload); err != nil {
		return nil, err
	}

	report := &trafficReport{}
	totals := extract.Source(payload).Slice("totals", "rows")
	if len(totals) == 0 {
		return report, nil
	}

	row, ok := totals[0].(map[string]any)
	if !ok {
		return report, nil
	}
	values := extract.Source(row).Slice("metricValues")

	read := func(i int) *float64 {
		if i >= len(values) {
			return nil
		}
		m, ok := values[i].(map[string]any)
		if !ok {
			return nil
		}
		return extract.Source(m).Number("value")
	}

	report.activeUsers = read(0)
	report.pageViews = read(1)
	report.sessions = read(2)
	return report, nil
}

// collectWebVitals fetches the page performance audit for the
// configured site. A failure here only loses the vitals; it is logged
// and otherwise ignored.
func (c *AnalyticsCollector) collectWebVitals(ctx context.Context) *health.CoreWebVitals {
	endpoint := fmt.Sprintf("%s?url=%s&strategy=mobile", c.AuditURL, url.QueryEscape(c.SiteURL))

	var payload map[string]any
	if err := fetchJSON(ctx, c.HTTPClient, endpoint, "", &payload); err != nil {
		slog.Warn("page performance audit failed", slog.String("error", err.Error()))
		return nil
	}

	src := extract.Source(payload)

	lcp := src.Number(
		"lighthouseResult.audits.largest-contentful-paint.numericValue",
		"lighthouseResult.audits.lcp.numericValue",
		"loadingExperience.metrics.LARGEST_CONTENTFUL_PAINT_MS.percentile")
	fid := src.Number(
		"lighthouseResult.audits.max-potential-fid.numericValue",
		"lighthouseResult.audits.interaction-to-next-paint.numericValue",
		"loadingExperience.metrics.FIRST_INPUT_DELAY_MS.percentile")
	cls := src.Number(
		"lighthouseResult.audits.cumulative-layout-shift.numericValue",
		"loadingExperience.metrics.CUMULATIVE_LAYOUT_SHIFT_SCORE.percentile")

	if lcp == nil && fid == nil && cls == nil {
		return nil
	}

	return &health.CoreWebVitals{
		LCPMillis: roundTo(lcp, 0),
		FIDMillis: roundTo(fid, 0),
		CLS:       roundTo(cls, 3),
	}
}

func trafficMetric(id, name string, value *float64, now time.Time) health.Metric {
	severity := health.SeverityNormal
	if value == nil {
		severity = health.SeverityUnknown
	}
	return health.Metric{
		ID:        id,
		Name:      name,
		Value:     value,
		Unit:      "count",
		Severity:  severity,
		UpdatedAt: now,
		Category:  "analytics",
	}
}

// roundTo rounds to a fixed number of decimals so vitals render in
// stable units.
func roundTo(value *float64, decimals int) *float64 {
	if value == nil {
		return nil
	}
	factor := math.Pow(10, float64(decimals))
	rounded := math.Round(*value*factor) / factor
	return &rounded
}
