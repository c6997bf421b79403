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

package defaults

import "time"

// Outbound timeouts for provider calls.
const (
	// HTTPClientTimeout bounds a single outbound provider request,
	// including the token exchange round-trips.
	HTTPClientTimeout = 30 * time.Second

	// AggregationTimeout bounds one full fan-out pass. Collectors run
	// in parallel, so this only needs to cover the slowest provider,
	// not the sum.
	AggregationTimeout = 45 * time.Second
)

// Server timeouts for the HTTP surface.
const (
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 60 * time.Second
	ServerIdleTimeout  = 120 * time.Second

	// ServerShutdownTimeout is the graceful shutdown grace period,
	// sized to the orchestrator's eviction window.
	ServerShutdownTimeout = 30 * time.Second
)
