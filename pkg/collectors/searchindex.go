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
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/statuskit/statuskit/pkg/credentials"
	"github.com/statuskit/statuskit/pkg/extract"
	"github.com/statuskit/statuskit/pkg/health"
)

const (
	defaultSearchIndexURL = "https://searchconsole.googleapis.com"

	// SearchIndexReadScope is the permission scope for the search
	// console inspection API.
	SearchIndexReadScope = "https://www.googleapis.com/auth/webmasters.readonly"
)

// SearchIndexCollector inspects the site's search-index coverage. It
// measures the site itself rather than a platform dependency, so it
// contributes only coverage counts and no service status.
type SearchIndexCollector struct {
	APIURL     string
	SiteURL    string
	Tokens     credentials.TokenSource
	HTTPClient *http.Client

	now func() time.Time
}

// NewSearchIndexCollector creates the search-index coverage collector.
// apiURL may be empty to use the public API.
func NewSearchIndexCollector(apiURL, siteURL string, tokens credentials.TokenSource,
	httpClient *http.Client) *SearchIndexCollector {
	if apiURL == "" {
		apiURL = defaultSearchIndexURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &SearchIndexCollector{
		APIURL:     strings.TrimRight(apiURL, "/"),
		SiteURL:    siteURL,
		Tokens:     tokens,
		HTTPClient: httpClient,
		now:        time.Now,
	}
}

// Name returns the provider identifier.
func (c *SearchIndexCollector) Name() string { return ProviderSearchIndex }

// Collect never returns an error; an inspection failure yields an
// empty coverage contribution.
func (c *SearchIndexCollector) Collect(ctx context.Context) health.ProviderResult {
	now := c.now().UTC()
	res := health.ProviderResult{}

	if c.SiteURL == "" {
		res.Security = append(res.Security, configurationMetric(ProviderSearchIndex, "site-url",
			"site URL not configured; index coverage unavailable", now))
		return res
	}

	tok, err := c.Tokens.Token(ctx, SearchIndexReadScope)
	if err != nil {
		res.Security = append(res.Security, configurationMetric(ProviderSearchIndex, "monitoring-credentials",
			"monitoring credentials not configured; index coverage unavailable", now))
		return res
	}

	body := map[string]string{
		"inspectionUrl": c.SiteURL,
		"siteUrl":       c.SiteURL,
	}

	var payload map[string]any
	endpoint := c.APIURL + "/v1/urlInspection/index:inspect"
	if err := postJSON(ctx, c.HTTPClient, endpoint, tok.AccessToken, body, &payload); err != nil {
		slog.Warn("index inspection failed", slog.String("error", err.Error()))
		return res
	}

	src := extract.Source(payload)
	coverageState, _ := src.String(
		"inspectionResult.indexStatusResult.coverageState",
		"indexStatusResult.coverageState")
	fetchState, _ := src.String(
		"inspectionResult.indexStatusResult.pageFetchState",
		"indexStatusResult.pageFetchState")

	coverage := classifyCoverage(coverageState)
	if fetchState != "" && fetchState != "SUCCESSFUL" {
		coverage.CrawlErrors = health.Int(1)
	}

	res.Seo = &coverage
	return res
}

// classifyCoverage maps the free-text coverage verdict onto the
// valid/warning/error triad. The substring rules are order sensitive:
// "not indexed" must be checked before "indexed", and explicit
// blocked/error states before the pending family, so that phrases like
// "Crawled - currently not indexed" grade as errors rather than
// matching their weaker fragments.
func classifyCoverage(state string) health.SeoCoverage {
	s := strings.ToLower(state)
	var cov health.SeoCoverage

	switch {
	case s == "":
	case strings.Contains(s, "not indexed"),
		strings.Contains(s, "blocked"),
		strings.Contains(s, "error"),
		strings.Contains(s, "redirect"):
		cov.ValidPages = health.Int(0)
		cov.WarningPages = health.Int(0)
		cov.ErrorPages = health.Int(1)
	case strings.Contains(s, "pending"),
		strings.Contains(s, "crawled"),
		strings.Contains(s, "discovered"):
		cov.ValidPages = health.Int(0)
		cov.WarningPages = health.Int(1)
		cov.ErrorPages = health.Int(0)
	case strings.Contains(s, "indexed"):
		cov.ValidPages = health.Int(1)
		cov.WarningPages = health.Int(0)
		cov.ErrorPages = health.Int(0)
	}
	return cov
}
