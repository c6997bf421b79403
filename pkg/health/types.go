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

import "time"

// State represents the normalized health of one monitored dependency.
// A ServiceStatus always carries one of these values; absent or
// unparseable upstream data resolves to StateUnknown, never to an
// empty string.
type State string

const (
	StateOperational State = "operational"
	StateDegraded    State = "degraded"
	StateOutage      State = "outage"
	StateMaintenance State = "maintenance"
	StateUnknown     State = "unknown"
)

// String returns the string representation of the health State.
func (s State) String() string {
	return string(s)
}

// Valid reports whether the state is one of the five known values.
func (s State) Valid() bool {
	switch s {
	case StateOperational, StateDegraded, StateOutage, StateMaintenance, StateUnknown:
		return true
	}
	return false
}

// Normalize returns the state itself when valid, StateUnknown otherwise.
func (s State) Normalize() State {
	if s.Valid() {
		return s
	}
	return StateUnknown
}

// Severity classifies a scored metric or a derived alert.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	return string(s)
}

// ServiceStatus is the normalized up/down/degraded record for one
// monitored dependency.
type ServiceStatus struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Health        State     `json:"health" yaml:"health"`
	LatencyMS     *float64  `json:"latencyMs,omitempty" yaml:"latencyMs,omitempty"`
	ErrorRatePct  *float64  `json:"errorRatePct,omitempty" yaml:"errorRatePct,omitempty"`
	IncidentCount *int      `json:"incidentCount,omitempty" yaml:"incidentCount,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt" yaml:"updatedAt"`
	Details       string    `json:"details,omitempty" yaml:"details,omitempty"`
	Provider      string    `json:"provider,omitempty" yaml:"provider,omitempty"`
}

// Metric is a scored measurement. Utilization, security, and data
// pipeline metrics share this shape and differ only in which snapshot
// bucket they land in.
type Metric struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Value     *float64  `json:"value" yaml:"value"`
	Unit      string    `json:"unit,omitempty" yaml:"unit,omitempty"`
	Severity  Severity  `json:"severity" yaml:"severity"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
	Details   string    `json:"details,omitempty" yaml:"details,omitempty"`
	Category  string    `json:"category,omitempty" yaml:"category,omitempty"`
}

// CategoryConfiguration marks metrics that report a missing credential
// or other configuration gap rather than a measured value.
const CategoryConfiguration = "configuration"

// CoreWebVitals holds best-effort page performance measurements.
// Every field is optional; an upstream that returns nothing yields nils.
type CoreWebVitals struct {
	LCPMillis *float64 `json:"lcpMs,omitempty" yaml:"lcpMs,omitempty"`
	FIDMillis *float64 `json:"fidMs,omitempty" yaml:"fidMs,omitempty"`
	CLS       *float64 `json:"cls,omitempty" yaml:"cls,omitempty"`
}

// SeoCoverage holds search index coverage counts and optional web
// vitals for the configured site. The whole bucket may be absent.
type SeoCoverage struct {
	ValidPages   *int           `json:"validPages,omitempty" yaml:"validPages,omitempty"`
	WarningPages *int           `json:"warningPages,omitempty" yaml:"warningPages,omitempty"`
	ErrorPages   *int           `json:"errorPages,omitempty" yaml:"errorPages,omitempty"`
	CrawlErrors  *int           `json:"crawlErrors,omitempty" yaml:"crawlErrors,omitempty"`
	WebVitals    *CoreWebVitals `json:"webVitals,omitempty" yaml:"webVitals,omitempty"`
}

// AlertItem is derived from current statuses and metrics on every
// aggregation pass. Alerts are never persisted or carried over; the ID
// is stable for a given source so repeated passes over the same inputs
// produce identical alerts.
type AlertItem struct {
	ID          string    `json:"id" yaml:"id"`
	Source      string    `json:"source" yaml:"source"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Severity    Severity  `json:"severity" yaml:"severity"`
	Status      string    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

// AlertStatusOpen is the status assigned to every derived alert.
// There is no lifecycle beyond derivation; an alert disappears when the
// condition that produced it clears.
const AlertStatusOpen = "open"

// CacheInfo describes where a snapshot sits in its cache window.
type CacheInfo struct {
	IsCached   bool      `json:"isCached" yaml:"isCached"`
	TTLSeconds int       `json:"ttlSeconds" yaml:"ttlSeconds"`
	ExpiresAt  time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

// Snapshot is the complete point-in-time aggregated health record
// returned to callers. It owns every bucket by value and is rebuilt
// fresh on each aggregation pass.
type Snapshot struct {
	GeneratedAt    time.Time       `json:"generatedAt" yaml:"generatedAt"`
	GeneratedInMS  int64           `json:"generatedInMs" yaml:"generatedInMs"`
	Cache          CacheInfo       `json:"cache" yaml:"cache"`
	Services       []ServiceStatus `json:"services" yaml:"services"`
	Utilization    []Metric        `json:"utilization" yaml:"utilization"`
	Security       []Metric        `json:"security" yaml:"security"`
	DataPipeline   []Metric        `json:"dataPipeline" yaml:"dataPipeline"`
	Seo            *SeoCoverage    `json:"seo,omitempty" yaml:"seo,omitempty"`
	Alerts         []AlertItem     `json:"alerts" yaml:"alerts"`
	OpenAlertCount int             `json:"openAlertCount" yaml:"openAlertCount"`
}

// ProviderResult is the uniform output of one collector pass: the
// provider's service status plus whatever metric buckets it produced.
// Collectors never return errors; failure is expressed in the status
// and metric values themselves. Service is nil only for collectors
// that measure the site rather than a platform dependency (the search
// index probe); every service that is present carries a valid State.
type ProviderResult struct {
	Service      *ServiceStatus
	Utilization  []Metric
	Security     []Metric
	DataPipeline []Metric
	Seo          *SeoCoverage
}

// Float returns a pointer to v. Convenience for the nullable numeric
// fields used throughout the model.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
