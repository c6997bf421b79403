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
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuskit/statuskit/pkg/credentials"
)

type staticTokens struct {
	err error
}

func (s staticTokens) Token(_ context.Context, _ ...string) (*credentials.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &credentials.Token{
		AccessToken: "test-token",
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

func newQueryServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.URL.Query().Get("filter"))
		require.NotEmpty(t, r.URL.Query().Get("interval.startTime"))
		require.NotEmpty(t, r.URL.Query().Get("interval.endTime"))
		require.NotEmpty(t, r.URL.Query().Get("aggregation.perSeriesAligner"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func TestQueryCoalescesInt64String(t *testing.T) {
	srv := newQueryServer(t, `{"timeSeries":[{"points":[
		{"interval":{"endTime":"2025-06-01T12:00:00Z"},"value":{"int64Value":"42"}}
	]}]}`)
	defer srv.Close()

	client := NewClient(srv.URL, "test-project", staticTokens{}, srv.Client())

	res, err := client.Query(context.Background(), QueryRequest{
		Filter:  `metric.type = "run.googleapis.com/request_count"`,
		Aligner: "ALIGN_DELTA",
		Reducer: "REDUCE_SUM",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Value)
	assert.Equal(t, float64(42), *res.Value)
	require.NotNil(t, res.CollectedAt)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), res.CollectedAt.UTC())
}

func TestQueryCoalescesDistributionMean(t *testing.T) {
	srv := newQueryServer(t, `{"timeSeries":[{"points":[
		{"interval":{"endTime":"2025-06-01T12:00:00Z"},"value":{"distributionValue":{"count":"10","mean":3.5}}}
	]}]}`)
	defer srv.Close()

	client := NewClient(srv.URL, "test-project", staticTokens{}, srv.Client())

	res, err := client.Query(context.Background(), QueryRequest{
		Filter:  `metric.type = "run.googleapis.com/request_latencies"`,
		Aligner: "ALIGN_PERCENTILE_95",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Value)
	assert.Equal(t, 3.5, *res.Value)
}

func TestQueryNoDataIsNotAnError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no series", `{"timeSeries":[]}`},
		{"empty body", `{}`},
		{"series without points", `{"timeSeries":[{"points":[]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newQueryServer(t, tt.body)
			defer srv.Close()

			client := NewClient(srv.URL, "test-project", staticTokens{}, srv.Client())

			res, err := client.Query(context.Background(), QueryRequest{
				Filter:  `metric.type = "x"`,
				Aligner: "ALIGN_MEAN",
			})
			require.NoError(t, err)
			assert.Nil(t, res.Value)
			assert.Nil(t, res.CollectedAt)
		})
	}
}

func TestQueryUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-project", staticTokens{}, srv.Client())

	_, err := client.Query(context.Background(), QueryRequest{Filter: "x", Aligner: "ALIGN_MEAN"})
	assert.Error(t, err)
}

func TestQueryCredentialErrorPropagates(t *testing.T) {
	wantErr := errors.New("no credentials")
	client := NewClient("", "test-project", staticTokens{err: wantErr}, nil)

	_, err := client.Query(context.Background(), QueryRequest{Filter: "x", Aligner: "ALIGN_MEAN"})
	assert.True(t, errors.Is(err, wantErr))
}

func TestCoalesceValue(t *testing.T) {
	tests := []struct {
		name  string
		value map[string]any
		want  *float64
	}{
		{"double", map[string]any{"doubleValue": 1.25}, floatPtr(1.25)},
		{"int64 string", map[string]any{"int64Value": "42"}, floatPtr(42)},
		{"distribution mean", map[string]any{"distributionValue": map[string]any{"mean": 3.5}}, floatPtr(3.5)},
		{"double preferred over distribution", map[string]any{
			"doubleValue":       2.0,
			"distributionValue": map[string]any{"mean": 9.0},
		}, floatPtr(2.0)},
		{"nothing usable", map[string]any{"boolValue": true}, nil},
		{"nil map", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoalesceValue(tt.value)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
