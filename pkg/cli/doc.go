// Package cli implements the command-line interface for the pulsed
// health aggregation service.
//
// # Commands
//
// serve - Run the HTTP aggregation service:
//
//	pulsed serve [--config FILE] [--log-level LEVEL]
//
// snapshot - Run one aggregation pass and print the result:
//
//	pulsed snapshot [--output FILE] [--format yaml|json|table]
//
// version - Print the build version:
//
//	pulsed version [--format yaml|json|table]
//
// # Global Flags
//
//	--config       Config file path (YAML, overlays environment variables)
//	--log-level    Log level: debug, info, warn, error (default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Environment Variables
//
// Provider credentials and endpoints are read from the environment;
// see pkg/config for the full list. Common ones:
//
//	STATUS_FEED_URL           Identity provider public status feed
//	IDENTITY_API_URL/SECRET   Identity provider private API
//	MONITORING_PROJECT_ID     Cloud monitoring project
//	MONITORING_CLIENT_EMAIL   Service account email
//	MONITORING_PRIVATE_KEY    Service account PEM key
//	EDGE_API_URL/KEY          Edge protection metrics endpoint
//	ANALYTICS_MEASUREMENT_ID  Web analytics stream
//	SITE_URL                  Site measured by analytics and search index
//	CACHE_TTL_SECONDS         Snapshot cache window (default: 120)
//	REDIS_ADDR                Optional shared snapshot cache
//	PORT                      HTTP port (default: 8080)
//	LOG_LEVEL                 Logging verbosity
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
//
// The CLI uses the urfave/cli/v3 framework and delegates to
// pkg/collectors, pkg/snapshotter, and pkg/server. Version information
// is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/statuskit/statuskit/pkg/version.Version=1.0.0'"
package cli
