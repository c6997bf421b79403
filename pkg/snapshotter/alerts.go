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

package snapshotter

import (
	"fmt"
	"time"

	"github.com/statuskit/statuskit/pkg/health"
)

// deriveAlerts computes the alert list from the current statuses and
// metrics. Derivation is pure and idempotent: alert IDs are a function
// of their source, so the same inputs always yield the same alerts and
// nothing is carried over between passes.
//
// Rules: a degraded service raises a warning alert and an outage raises
// a critical one; every warning or critical security metric raises an
// alert of matching severity. Utilization and pipeline metrics carry
// their severity inline and do not alert.
func deriveAlerts(snap *health.Snapshot, now time.Time) []health.AlertItem {
	var alerts []health.AlertItem

	for _, svc := range snap.Services {
		var severity health.Severity
		switch svc.Health {
		case health.StateDegraded:
			severity = health.SeverityWarning
		case health.StateOutage:
			severity = health.SeverityCritical
		default:
			continue
		}

		alerts = append(alerts, health.AlertItem{
			ID:          "alert-svc-" + svc.ID,
			Source:      svc.ID,
			Title:       fmt.Sprintf("%s is %s", svc.Name, svc.Health),
			Description: svc.Details,
			Severity:    severity,
			Status:      health.AlertStatusOpen,
			CreatedAt:   now,
		})
	}

	for _, m := range snap.Security {
		if m.Severity != health.SeverityWarning && m.Severity != health.SeverityCritical {
			continue
		}

		description := m.Details
		if description == "" && m.Value != nil {
			description = fmt.Sprintf("%s at %.2f %s", m.Name, *m.Value, m.Unit)
		}

		alerts = append(alerts, health.AlertItem{
			ID:          "alert-metric-" + m.ID,
			Source:      m.ID,
			Title:       fmt.Sprintf("%s is %s", m.Name, m.Severity),
			Description: description,
			Severity:    m.Severity,
			Status:      health.AlertStatusOpen,
			CreatedAt:   now,
		})
	}

	return alerts
}
