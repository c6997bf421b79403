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
	"time"

	"github.com/statuskit/statuskit/pkg/cache"
	"github.com/statuskit/statuskit/pkg/collectors"
)

// snapshotCacheKey is the single cache slot; the service aggregates
// one platform, so there is exactly one current snapshot.
const snapshotCacheKey = "health-snapshot"

// Aggregator fans out across all provider collectors, merges their
// results into one snapshot, derives alerts, and memoizes the result
// in the configured store.
type Aggregator struct {
	// Collectors, in the order their results are merged. The order is
	// fixed at construction so repeated passes are deterministic.
	Collectors []collectors.Collector

	// Store memoizes assembled snapshots. Required.
	Store cache.Store

	// TTL is the cache window for assembled snapshots.
	TTL time.Duration

	// now is the clock, injectable for tests.
	now func() time.Time
}

// New creates an aggregator over the given collector set.
func New(cs []collectors.Collector, store cache.Store, ttl time.Duration) *Aggregator {
	return &Aggregator{
		Collectors: cs,
		Store:      store,
		TTL:        ttl,
		now:        time.Now,
	}
}
