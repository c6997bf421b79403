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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCacheTTL is the cache window applied when no override is
// configured. The underlying sampling windows are coarser (>=1 min), so
// two minutes loses no fidelity.
const DefaultCacheTTL = 2 * time.Minute

// Duration wraps time.Duration so YAML settings can use the "45s"
// notation instead of raw nanosecond counts.
type Duration time.Duration

// Std returns the wrapped standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Settings holds every external knob of the health aggregation
// service. All provider settings are optional: a missing credential
// degrades the matching collector to "unknown" with a configuration
// metric, it never fails startup.
type Settings struct {
	// Identity provider (status feed is public, the API is not).
	StatusFeedURL     string `yaml:"statusFeedUrl"`
	IdentityAPIURL    string `yaml:"identityApiUrl"`
	IdentityAPISecret string `yaml:"identityApiSecret"`

	// Signed-credential triple for the monitoring, analytics, and
	// search index APIs.
	MonitoringProjectID   string `yaml:"monitoringProjectId"`
	MonitoringClientEmail string `yaml:"monitoringClientEmail"`
	MonitoringPrivateKey  string `yaml:"monitoringPrivateKey"`
	MonitoringTokenURL    string `yaml:"monitoringTokenUrl"`
	MonitoringAPIURL      string `yaml:"monitoringApiUrl"`

	// Edge protection metrics endpoint.
	EdgeAPIURL string `yaml:"edgeApiUrl"`
	EdgeAPIKey string `yaml:"edgeApiKey"`

	// Web analytics and page performance audit.
	AnalyticsMeasurementID string `yaml:"analyticsMeasurementId"`
	AnalyticsAPIURL        string `yaml:"analyticsApiUrl"`
	AnalyticsAdminAPIURL   string `yaml:"analyticsAdminApiUrl"`
	AuditAPIURL            string `yaml:"auditApiUrl"`

	// Search index inspection.
	SearchIndexAPIURL string `yaml:"searchIndexApiUrl"`

	// Target site measured by the analytics and search collectors.
	SiteURL string `yaml:"siteUrl"`

	// Snapshot cache window.
	CacheTTL Duration `yaml:"cacheTtl"`

	// Optional shared cache backend. Empty means in-process memory.
	RedisAddr string `yaml:"redisAddr"`

	// HTTP surface.
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"logLevel"`
}

// FromEnv builds Settings from environment variables, applying
// defaults where nothing is set.
func FromEnv() *Settings {
	s := &Settings{
		StatusFeedURL:          os.Getenv("STATUS_FEED_URL"),
		IdentityAPIURL:         os.Getenv("IDENTITY_API_URL"),
		IdentityAPISecret:      os.Getenv("IDENTITY_API_SECRET"),
		MonitoringProjectID:    os.Getenv("MONITORING_PROJECT_ID"),
		MonitoringClientEmail:  os.Getenv("MONITORING_CLIENT_EMAIL"),
		MonitoringPrivateKey:   os.Getenv("MONITORING_PRIVATE_KEY"),
		MonitoringTokenURL:     os.Getenv("MONITORING_TOKEN_URL"),
		MonitoringAPIURL:       os.Getenv("MONITORING_API_URL"),
		EdgeAPIURL:             os.Getenv("EDGE_API_URL"),
		EdgeAPIKey:             os.Getenv("EDGE_API_KEY"),
		AnalyticsMeasurementID: os.Getenv("ANALYTICS_MEASUREMENT_ID"),
		AnalyticsAPIURL:        os.Getenv("ANALYTICS_API_URL"),
		AnalyticsAdminAPIURL:   os.Getenv("ANALYTICS_ADMIN_API_URL"),
		AuditAPIURL:            os.Getenv("AUDIT_API_URL"),
		SearchIndexAPIURL:      os.Getenv("SEARCH_INDEX_API_URL"),
		SiteURL:                os.Getenv("SITE_URL"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		LogLevel:               os.Getenv("LOG_LEVEL"),
		CacheTTL:               Duration(DefaultCacheTTL),
		Port:                   8080,
	}

	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			s.CacheTTL = Duration(time.Duration(secs) * time.Second)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			s.Port = port
		}
	}

	return s
}

// ApplyFile overlays settings from a YAML file. Values present in the
// file win over the environment; absent values are left untouched.
func (s *Settings) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if s.CacheTTL <= 0 {
		s.CacheTTL = Duration(DefaultCacheTTL)
	}

	return nil
}

// HasMonitoringCredentials reports whether the signed-credential
// triple is fully present. Collection itself classifies on the
// credential client's ErrMissingCredentials; this predicate exists for
// startup diagnostics, so an incomplete triple is surfaced before the
// first aggregation pass runs.
func (s *Settings) HasMonitoringCredentials() bool {
	return s.MonitoringProjectID != "" &&
		s.MonitoringClientEmail != "" &&
		s.MonitoringPrivateKey != ""
}
