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

package timeseries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/statuskit/statuskit/pkg/credentials"
	apperrors "github.com/statuskit/statuskit/pkg/errors"
	"github.com/statuskit/statuskit/pkg/extract"
)

const (
	// defaultAPIURL is the monitoring query endpoint used when no
	// override is configured.
	defaultAPIURL = "https://monitoring.googleapis.com/v3"

	// MonitoringReadScope is the permission scope required for range
	// queries.
	MonitoringReadScope = "https://www.googleapis.com/auth/monitoring.read"

	defaultLookbackSeconds  = 300
	defaultAlignmentSeconds = 60
)

// QueryRequest describes one aligned, optionally reduced range query.
type QueryRequest struct {
	// Filter selects the metric and resource, in the monitoring API
	// filter syntax.
	Filter string

	// Aligner is the per-series aligner, e.g. ALIGN_PERCENTILE_95.
	Aligner string

	// Reducer optionally folds all matching series into one, e.g.
	// REDUCE_SUM.
	Reducer string

	// LookbackSeconds sets the query window [now-lookback, now].
	// Zero means the 300s default.
	LookbackSeconds int

	// AlignmentSeconds sets the alignment period. Zero means the 60s
	// default.
	AlignmentSeconds int
}

// QueryResult reduces a range query to one scalar and its collection
// time. Both fields are nil when the window held no data; "no data" is
// an expected outcome, not an error.
type QueryResult struct {
	Value       *float64
	CollectedAt *time.Time
}

// Querier issues range queries. Implemented by Client; collectors
// depend on this interface so tests can substitute fakes.
type Querier interface {
	Query(ctx context.Context, req QueryRequest) (QueryResult, error)
}

// Client queries the cloud monitoring time-series API with signed
// credentials.
type Client struct {
	baseURL    string
	projectID  string
	tokens     credentials.TokenSource
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a time-series query client. baseURL may be empty
// to use the public endpoint.
func NewClient(baseURL, projectID string, tokens credentials.TokenSource, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		projectID:  projectID,
		tokens:     tokens,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Query runs one aligned range query and reduces the response to a
// single scalar plus timestamp. Zero matching series or zero points
// yield {nil, nil} with a nil error.
func (c *Client) Query(ctx context.Context, req QueryRequest) (QueryResult, error) {
	tok, err := c.tokens.Token(ctx, MonitoringReadScope)
	if err != nil {
		return QueryResult{}, err
	}

	lookback := req.LookbackSeconds
	if lookback <= 0 {
		lookback = defaultLookbackSeconds
	}
	alignment := req.AlignmentSeconds
	if alignment <= 0 {
		alignment = defaultAlignmentSeconds
	}

	end := c.now().UTC()
	start := end.Add(-time.Duration(lookback) * time.Second)

	q := url.Values{}
	q.Set("filter", req.Filter)
	q.Set("interval.startTime", start.Format(time.RFC3339))
	q.Set("interval.endTime", end.Format(time.RFC3339))
	q.Set("aggregation.alignmentPeriod", fmt.Sprintf("%ds", alignment))
	q.Set("aggregation.perSeriesAligner", req.Aligner)
	if req.Reducer != "" {
		q.Set("aggregation.crossSeriesReducer", req.Reducer)
	}

	endpoint := fmt.Sprintf("%s/projects/%s/timeSeries?%s", c.baseURL, c.projectID, q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return QueryResult{}, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to build time-series request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return QueryResult{}, apperrors.Wrap(apperrors.ErrCodeUpstream, "time-series query failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return QueryResult{}, apperrors.Wrap(apperrors.ErrCodeUpstream, "failed to read time-series response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return QueryResult{}, apperrors.NewWithContext(apperrors.ErrCodeUpstream,
			fmt.Sprintf("time-series endpoint returned status %d", resp.StatusCode),
			map[string]any{"filter": req.Filter})
	}

	var payload struct {
		TimeSeries []struct {
			Points []struct {
				Interval struct {
					EndTime time.Time `json:"endTime"`
				} `json:"interval"`
				Value map[string]any `json:"value"`
			} `json:"points"`
		} `json:"timeSeries"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return QueryResult{}, apperrors.Wrap(apperrors.ErrCodeUpstream, "malformed time-series response", err)
	}

	if len(payload.TimeSeries) == 0 || len(payload.TimeSeries[0].Points) == 0 {
		return QueryResult{}, nil
	}

	// Points come newest first; the head of the first series is the
	// most recent sample.
	point := payload.TimeSeries[0].Points[0]
	value := CoalesceValue(point.Value)
	if value == nil {
		return QueryResult{}, nil
	}

	collectedAt := point.Interval.EndTime
	return QueryResult{Value: value, CollectedAt: &collectedAt}, nil
}

// CoalesceValue folds the monitoring API's typed point value into one
// number. Candidates are tried in precision order: doubleValue, then
// int64Value (which arrives as a decimal string), then a
// distribution's mean. Nothing usable yields nil.
func CoalesceValue(value map[string]any) *float64 {
	if value == nil {
		return nil
	}
	src := extract.Source(value)
	return src.Number("doubleValue", "int64Value", "distributionValue.mean")
}
