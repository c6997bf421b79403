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
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuskit/statuskit/pkg/credentials"
	"github.com/statuskit/statuskit/pkg/health"
	"github.com/statuskit/statuskit/pkg/timeseries"
)

// fakeQuerier answers queries by matching a substring of the filter,
// longest fragment first so the most specific rule wins. Unmatched
// filters yield the empty result.
type fakeQuerier struct {
	values map[string]float64
	errs   map[string]error
	err    error
}

func (f *fakeQuerier) Query(_ context.Context, req timeseries.QueryRequest) (timeseries.QueryResult, error) {
	if f.err != nil {
		return timeseries.QueryResult{}, f.err
	}
	for _, fragment := range byLength(keysOf(f.errs)) {
		if strings.Contains(req.Filter, fragment) {
			return timeseries.QueryResult{}, f.errs[fragment]
		}
	}
	for _, fragment := range byLength(keysOf(f.values)) {
		if strings.Contains(req.Filter, fragment) {
			value := f.values[fragment]
			return timeseries.QueryResult{Value: &value}, nil
		}
	}
	return timeseries.QueryResult{}, nil
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func byLength(keys []string) []string {
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	return keys
}

func TestComputeCollectHealthy(t *testing.T) {
	q := &fakeQuerier{values: map[string]float64{
		"request_latencies": 420,
		`response_code_class = "5xx"`: 3,
		"request_count":               1000,
		"cpu/utilizations":            0.42,
		"memory/utilizations":         0.97,
	}}

	c := NewComputeCollector(q)
	res := c.Collect(context.Background())

	require.NotNil(t, res.Service)
	assert.Equal(t, health.StateOperational, res.Service.Health)
	require.NotNil(t, res.Service.LatencyMS)
	assert.Equal(t, float64(420), *res.Service.LatencyMS)
	require.NotNil(t, res.Service.ErrorRatePct)
	assert.InDelta(t, 0.3, *res.Service.ErrorRatePct, 0.01)

	byID := metricsByID(res.Utilization)
	cpu := byID["compute-cpu"]
	require.NotNil(t, cpu.Value)
	assert.InDelta(t, 42, *cpu.Value, 0.01)
	assert.Equal(t, health.SeverityNormal, cpu.Severity)

	mem := byID["compute-memory"]
	assert.Equal(t, health.SeverityCritical, mem.Severity)
}

func TestComputeCollectDegradedOnLatency(t *testing.T) {
	q := &fakeQuerier{values: map[string]float64{
		"request_latencies": 3000,
	}}

	res := NewComputeCollector(q).Collect(context.Background())

	require.NotNil(t, res.Service)
	assert.Equal(t, health.StateDegraded, res.Service.Health)
	assert.Contains(t, res.Service.Details, "p95 request latency")
}

func TestComputeCollectMissingCredentials(t *testing.T) {
	q := &fakeQuerier{err: credentials.ErrMissingCredentials}

	res := NewComputeCollector(q).Collect(context.Background())

	require.NotNil(t, res.Service)
	assert.Equal(t, health.StateUnknown, res.Service.Health)
	require.Len(t, res.Security, 1)
	assert.Equal(t, health.CategoryConfiguration, res.Security[0].Category)
	assert.Equal(t, health.SeverityWarning, res.Security[0].Severity)
	assert.Empty(t, res.Utilization)
}

func TestComputeCollectPartialFailure(t *testing.T) {
	q := &fakeQuerier{
		values: map[string]float64{"request_latencies": 500},
		errs:   map[string]error{"cpu/utilizations": errors.New("backend unavailable")},
	}

	res := NewComputeCollector(q).Collect(context.Background())

	require.NotNil(t, res.Service)
	assert.Equal(t, health.StateDegraded, res.Service.Health)
	assert.Contains(t, res.Service.Details, "partially unavailable")

	// The successful queries still contribute their metrics.
	require.NotNil(t, res.Service.LatencyMS)
	assert.Equal(t, float64(500), *res.Service.LatencyMS)
}

func TestDatabaseCollect(t *testing.T) {
	q := &fakeQuerier{values: map[string]float64{
		"read_count":        15000,
		"write_count":       2000,
		`op = "read"`:       90,
		`op = "write"`:      240,
		"PERMISSION_DENIED": 2,
	}}

	res := NewDatabaseCollector(q).Collect(context.Background())

	require.NotNil(t, res.Service)
	assert.Equal(t, health.StateOperational, res.Service.Health)
	// Worst of the read/write latency pair.
	require.NotNil(t, res.Service.LatencyMS)
	assert.Equal(t, float64(240), *res.Service.LatencyMS)

	pipeline := metricsByID(res.DataPipeline)
	read := pipeline["database-read-latency"]
	require.NotNil(t, read.Value)
	assert.Equal(t, float64(90), *read.Value)
	assert.Equal(t, "pipeline", read.Category)

	security := metricsByID(res.Security)
	denied := security["database-permission-denied"]
	require.NotNil(t, denied.Value)
	assert.Equal(t, health.SeverityWarning, denied.Severity)
}

func TestDatabaseCollectDegradedOnWriteLatency(t *testing.T) {
	q := &fakeQuerier{values: map[string]float64{
		`op = "write"`: 1500,
	}}

	res := NewDatabaseCollector(q).Collect(context.Background())

	require.NotNil(t, res.Service)
	assert.Equal(t, health.StateDegraded, res.Service.Health)
	assert.Contains(t, res.Service.Details, "p95 operation latency")
}

func TestHostingCollect(t *testing.T) {
	q := &fakeQuerier{values: map[string]float64{
		"request_latencies": 180,
		`response_code_class = "5xx"`: 80,
		"request_count":               1000,
		"sent_bytes_count":            3 << 30,
	}}

	res := NewHostingCollector(q).Collect(context.Background())

	require.NotNil(t, res.Service)
	// 80/1000 = 8% error rate, over the 5% line.
	assert.Equal(t, health.StateDegraded, res.Service.Health)
	assert.Contains(t, res.Service.Details, "error rate")

	byID := metricsByID(res.Utilization)
	bandwidth := byID["hosting-bandwidth"]
	require.NotNil(t, bandwidth.Value)
	assert.InDelta(t, 3.0, *bandwidth.Value, 0.01)
	assert.Equal(t, "GB", bandwidth.Unit)
}

func TestClassifyOutcomes(t *testing.T) {
	transient := errors.New("boom")

	tests := []struct {
		name        string
		outcomes    map[string]tsOutcome
		wantMissing bool
		wantErr     error
	}{
		{
			name:     "all ok",
			outcomes: map[string]tsOutcome{"a": {}, "b": {}},
		},
		{
			name: "all missing credentials",
			outcomes: map[string]tsOutcome{
				"a": {err: credentials.ErrMissingCredentials},
				"b": {err: credentials.ErrMissingCredentials},
			},
			wantMissing: true,
		},
		{
			name: "mixed failures are transient",
			outcomes: map[string]tsOutcome{
				"a": {err: credentials.ErrMissingCredentials},
				"b": {err: transient},
			},
			wantErr: transient,
		},
		{
			name: "partial success with transient failure",
			outcomes: map[string]tsOutcome{
				"a": {},
				"b": {err: transient},
			},
			wantErr: transient,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			missing, err := classifyOutcomes(tc.outcomes)
			assert.Equal(t, tc.wantMissing, missing)
			assert.Equal(t, tc.wantErr, err)
		})
	}
}

func TestSeverityAbove(t *testing.T) {
	assert.Equal(t, health.SeverityUnknown, severityAbove(nil, 10, 20))
	assert.Equal(t, health.SeverityNormal, severityAbove(health.Float(5), 10, 20))
	assert.Equal(t, health.SeverityNormal, severityAbove(health.Float(10), 10, 20))
	assert.Equal(t, health.SeverityWarning, severityAbove(health.Float(15), 10, 20))
	assert.Equal(t, health.SeverityCritical, severityAbove(health.Float(25), 10, 20))
}
