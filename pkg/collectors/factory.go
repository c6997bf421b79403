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
	"net/http"

	"github.com/statuskit/statuskit/pkg/config"
	"github.com/statuskit/statuskit/pkg/credentials"
	"github.com/statuskit/statuskit/pkg/defaults"
	"github.com/statuskit/statuskit/pkg/timeseries"
)

// FromSettings builds the full collector set in its fixed merge order.
// Every collector is always constructed; missing credentials surface
// at collection time as configuration metrics, never as a shorter
// collector list.
func FromSettings(settings *config.Settings) []Collector {
	httpClient := &http.Client{Timeout: defaults.HTTPClientTimeout}

	tokens := credentials.NewClient(credentials.ServiceAccount{
		ProjectID:   settings.MonitoringProjectID,
		ClientEmail: settings.MonitoringClientEmail,
		PrivateKey:  settings.MonitoringPrivateKey,
		TokenURL:    settings.MonitoringTokenURL,
	}, httpClient)

	querier := timeseries.NewClient(settings.MonitoringAPIURL, settings.MonitoringProjectID,
		tokens, httpClient)

	return []Collector{
		NewIdentityCollector(settings.StatusFeedURL, settings.IdentityAPIURL,
			settings.IdentityAPISecret, httpClient),
		NewComputeCollector(querier),
		NewDatabaseCollector(querier),
		NewHostingCollector(querier),
		NewEdgeCollector(settings.EdgeAPIURL, settings.EdgeAPIKey, httpClient),
		NewAnalyticsCollector(settings.AnalyticsAdminAPIURL, settings.AnalyticsAPIURL,
			settings.AuditAPIURL, settings.AnalyticsMeasurementID, settings.SiteURL,
			tokens, httpClient),
		NewSearchIndexCollector(settings.SearchIndexAPIURL, settings.SiteURL,
			tokens, httpClient),
	}
}
