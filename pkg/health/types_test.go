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

package health

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateNormalize(t *testing.T) {
	for _, s := range []State{StateOperational, StateDegraded, StateOutage, StateMaintenance, StateUnknown} {
		assert.True(t, s.Valid(), s.String())
		assert.Equal(t, s, s.Normalize())
	}

	assert.Equal(t, StateUnknown, State("").Normalize())
	assert.Equal(t, StateUnknown, State("partial-outage").Normalize())
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{
		GeneratedAt: now,
		Services: []ServiceStatus{{
			ID:        "api",
			Name:      "API",
			Health:    StateOperational,
			LatencyMS: Float(412.5),
			UpdatedAt: now,
			Provider:  "monitoring",
		}},
		Utilization: []Metric{{
			ID:       "cpu",
			Name:     "CPU",
			Value:    Float(42),
			Unit:     "%",
			Severity: SeverityNormal,
		}},
		Seo: &SeoCoverage{
			ValidPages: Int(10),
			WebVitals:  &CoreWebVitals{CLS: Float(0.04)},
		},
	}

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var got Snapshot
	require.NoError(t, json.Unmarshal(data, &got))

	require.Len(t, got.Services, 1)
	assert.Equal(t, StateOperational, got.Services[0].Health)
	require.NotNil(t, got.Services[0].LatencyMS)
	assert.Equal(t, 412.5, *got.Services[0].LatencyMS)
	require.NotNil(t, got.Seo)
	require.NotNil(t, got.Seo.ValidPages)
	assert.Equal(t, 10, *got.Seo.ValidPages)

	// Optional fields absent on the wire stay nil after decode.
	assert.Nil(t, got.Services[0].ErrorRatePct)
	assert.Nil(t, got.Seo.CrawlErrors)
}
