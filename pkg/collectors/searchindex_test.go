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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuskit/statuskit/pkg/credentials"
	"github.com/statuskit/statuskit/pkg/health"
)

// staticTokens is a TokenSource returning a fixed token, or a fixed
// error when err is set.
type staticTokens struct {
	token string
	err   error
}

func (s *staticTokens) Token(_ context.Context, _ ...string) (*credentials.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &credentials.Token{AccessToken: s.token, Expiry: time.Now().Add(time.Hour)}, nil
}

func TestClassifyCoverage(t *testing.T) {
	tests := []struct {
		state       string
		wantValid   int
		wantWarning int
		wantError   int
	}{
		{"Submitted and indexed", 1, 0, 0},
		{"Crawled - currently not indexed", 0, 0, 1},
		{"Discovered - currently not crawled", 0, 1, 0},
		{"Blocked by robots.txt", 0, 0, 1},
		{"Page with redirect", 0, 0, 1},
		{"Indexing pending", 0, 1, 0},
		{"Server error (5xx)", 0, 0, 1},
	}

	for _, tc := range tests {
		t.Run(tc.state, func(t *testing.T) {
			cov := classifyCoverage(tc.state)
			require.NotNil(t, cov.ValidPages)
			require.NotNil(t, cov.WarningPages)
			require.NotNil(t, cov.ErrorPages)
			assert.Equal(t, tc.wantValid, *cov.ValidPages)
			assert.Equal(t, tc.wantWarning, *cov.WarningPages)
			assert.Equal(t, tc.wantError, *cov.ErrorPages)
		})
	}
}

func TestClassifyCoverageUnrecognized(t *testing.T) {
	cov := classifyCoverage("")
	assert.Nil(t, cov.ValidPages)
	assert.Nil(t, cov.WarningPages)
	assert.Nil(t, cov.ErrorPages)

	cov = classifyCoverage("some novel verdict")
	assert.Nil(t, cov.ValidPages)
}

func TestSearchIndexCollect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/urlInspection/index:inspect", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.com", body["inspectionUrl"])
		assert.Equal(t, "https://example.com", body["siteUrl"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"inspectionResult": {
				"indexStatusResult": {
					"coverageState": "Submitted and indexed",
					"pageFetchState": "SUCCESSFUL"
				}
			}
		}`))
	}))
	defer srv.Close()

	c := NewSearchIndexCollector(srv.URL, "https://example.com", &staticTokens{token: "tok"}, srv.Client())
	res := c.Collect(context.Background())

	// The search index probe measures the site, not a dependency.
	assert.Nil(t, res.Service)
	require.NotNil(t, res.Seo)
	require.NotNil(t, res.Seo.ValidPages)
	assert.Equal(t, 1, *res.Seo.ValidPages)
	assert.Nil(t, res.Seo.CrawlErrors)
}

func TestSearchIndexCollectCrawlFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"inspectionResult": {
				"indexStatusResult": {
					"coverageState": "Crawled - currently not indexed",
					"pageFetchState": "SOFT_404"
				}
			}
		}`))
	}))
	defer srv.Close()

	c := NewSearchIndexCollector(srv.URL, "https://example.com", &staticTokens{token: "tok"}, srv.Client())
	res := c.Collect(context.Background())

	require.NotNil(t, res.Seo)
	require.NotNil(t, res.Seo.ErrorPages)
	assert.Equal(t, 1, *res.Seo.ErrorPages)
	require.NotNil(t, res.Seo.CrawlErrors)
	assert.Equal(t, 1, *res.Seo.CrawlErrors)
}

func TestSearchIndexCollectConfigGaps(t *testing.T) {
	t.Run("no site url", func(t *testing.T) {
		c := NewSearchIndexCollector("", "", &staticTokens{token: "tok"}, nil)
		res := c.Collect(context.Background())

		assert.Nil(t, res.Service)
		assert.Nil(t, res.Seo)
		require.Len(t, res.Security, 1)
		assert.Equal(t, health.CategoryConfiguration, res.Security[0].Category)
	})

	t.Run("no credentials", func(t *testing.T) {
		c := NewSearchIndexCollector("", "https://example.com",
			&staticTokens{err: credentials.ErrMissingCredentials}, nil)
		res := c.Collect(context.Background())

		assert.Nil(t, res.Seo)
		require.Len(t, res.Security, 1)
		assert.Contains(t, res.Security[0].Details, "credentials")
	})
}

func TestSearchIndexCollectNeverFails(t *testing.T) {
	c := NewSearchIndexCollector("http://127.0.0.1:1", "https://example.com",
		&staticTokens{token: "tok"}, nil)
	res := c.Collect(context.Background())

	assert.Nil(t, res.Service)
	assert.Nil(t, res.Seo)
	assert.Empty(t, res.Security)
}
