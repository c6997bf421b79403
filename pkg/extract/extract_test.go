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

package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) Source {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return Source(m)
}

func TestNumberCandidateOrder(t *testing.T) {
	src := decode(t, `{"totals":{"requests":100},"requests":{"all":250}}`)

	// First matching candidate wins even when a later one also matches.
	got := src.Number("totals.requests", "requests.all")
	require.NotNil(t, got)
	assert.Equal(t, float64(100), *got)

	got = src.Number("requests.all", "totals.requests")
	require.NotNil(t, got)
	assert.Equal(t, float64(250), *got)
}

func TestNumberFallsThroughMissingCandidates(t *testing.T) {
	src := decode(t, `{"data":{"total":{"threats":12}}}`)

	got := src.Number("totals.threats", "threats.all", "data.total.threats")
	require.NotNil(t, got)
	assert.Equal(t, float64(12), *got)
}

func TestNumberCoercesStrings(t *testing.T) {
	src := decode(t, `{"count":"42","bad":"n/a"}`)

	got := src.Number("count")
	require.NotNil(t, got)
	assert.Equal(t, float64(42), *got)

	// Unparseable string falls through to the next candidate.
	got = src.Number("bad", "count")
	require.NotNil(t, got)
	assert.Equal(t, float64(42), *got)
}

func TestNumberAbsent(t *testing.T) {
	src := decode(t, `{"other":true}`)
	assert.Nil(t, src.Number("a", "b.c", "d"))
}

func TestNumberNonObjectIntermediate(t *testing.T) {
	src := decode(t, `{"totals":42}`)
	assert.Nil(t, src.Number("totals.requests"))
}

func TestInt(t *testing.T) {
	src := decode(t, `{"count":7.9}`)
	got := src.Int("count")
	require.NotNil(t, got)
	assert.Equal(t, 7, *got)
}

func TestString(t *testing.T) {
	src := decode(t, `{"status":{"indicator":"minor"},"empty":""}`)

	got, ok := src.String("status.indicator")
	assert.True(t, ok)
	assert.Equal(t, "minor", got)

	// Empty strings do not satisfy a candidate.
	_, ok = src.String("empty")
	assert.False(t, ok)

	_, ok = src.String("missing")
	assert.False(t, ok)
}

func TestSlice(t *testing.T) {
	src := decode(t, `{"insights":[{"name":"sqli","count":3}]}`)

	arr := src.Slice("threat_insights", "insights")
	require.Len(t, arr, 1)

	entry, ok := arr[0].(map[string]any)
	require.True(t, ok)
	n := Source(entry).Number("count")
	require.NotNil(t, n)
	assert.Equal(t, float64(3), *n)
}

func TestObject(t *testing.T) {
	src := decode(t, `{"data":{"total":{"requests":9}}}`)

	obj, ok := src.Object("totals", "data.total")
	require.True(t, ok)

	got := obj.Number("requests")
	require.NotNil(t, got)
	assert.Equal(t, float64(9), *got)
}
