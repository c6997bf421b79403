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

package cache

import (
	"context"
	"time"

	"github.com/statuskit/statuskit/pkg/health"
)

// Store memoizes aggregated snapshots under a key with a per-entry
// TTL. Implementations are constructed explicitly and injected into
// the aggregator so tests can run against isolated instances.
//
// Entries are idempotently reconstructible: a lost write costs one
// extra aggregation pass, it never corrupts state. Last writer wins.
type Store interface {
	// Get returns the cached snapshot for key, or false on a miss.
	// Expiry is evaluated lazily here; an expired entry is removed and
	// treated as a miss.
	Get(ctx context.Context, key string) (*health.Snapshot, bool)

	// Set stores a snapshot under key for the given TTL.
	Set(ctx context.Context, key string, snap *health.Snapshot, ttl time.Duration) error

	// Metadata reports the current cache window for key against the
	// clock at call time: whether an unexpired entry exists, its
	// remaining TTL in whole seconds, and its expiry instant.
	Metadata(ctx context.Context, key string) health.CacheInfo
}
