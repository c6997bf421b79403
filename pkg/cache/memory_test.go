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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuskit/statuskit/pkg/health"
)

func testSnapshot() *health.Snapshot {
	return &health.Snapshot{
		GeneratedAt: time.Now().UTC(),
		Services: []health.ServiceStatus{
			{ID: "svc-a", Name: "Service A", Health: health.StateOperational},
		},
	}
}

func TestMemoryStoreTTLMonotonicity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "snap", testSnapshot(), 50*time.Millisecond))

	time.Sleep(10 * time.Millisecond)
	_, ok := store.Get(ctx, "snap")
	assert.True(t, ok, "entry should still be live inside its TTL")

	time.Sleep(50 * time.Millisecond)
	_, ok = store.Get(ctx, "snap")
	assert.False(t, ok, "entry should have expired after its TTL")

	// The expired entry is evicted on read, so metadata sees nothing.
	info := store.Metadata(ctx, "snap")
	assert.False(t, info.IsCached)
}

func TestMemoryStoreMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, ok := store.Get(ctx, "absent")
	assert.False(t, ok)

	info := store.Metadata(ctx, "absent")
	assert.False(t, info.IsCached)
	assert.Zero(t, info.TTLSeconds)
	assert.True(t, info.ExpiresAt.IsZero())
}

func TestMemoryStoreMetadata(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "snap", testSnapshot(), 2*time.Minute))

	info := store.Metadata(ctx, "snap")
	assert.True(t, info.IsCached)
	assert.Greater(t, info.TTLSeconds, 100)
	assert.LessOrEqual(t, info.TTLSeconds, 120)
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), info.ExpiresAt, time.Second)
}

func TestMemoryStoreMetadataShrinks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Now()
	store.now = func() time.Time { return base }
	require.NoError(t, store.Set(ctx, "snap", testSnapshot(), 2*time.Minute))

	first := store.Metadata(ctx, "snap")

	store.now = func() time.Time { return base.Add(30 * time.Second) }
	second := store.Metadata(ctx, "snap")

	assert.Equal(t, 120, first.TTLSeconds)
	assert.Equal(t, 90, second.TTLSeconds)
	assert.Equal(t, first.ExpiresAt, second.ExpiresAt)
}

func TestMemoryStoreExpiredDeleteSparesFreshEntry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Now()
	store.now = func() time.Time { return base }

	stale := testSnapshot()
	require.NoError(t, store.Set(ctx, "snap", stale, time.Second))

	// Move the clock past the stale entry's expiry and have the first
	// read trigger a replacement Set before Get reaches the write
	// lock, mimicking a writer landing in the lock gap.
	fresh := testSnapshot()
	fresh.Services[0].Health = health.StateDegraded
	var replaced bool
	store.now = func() time.Time {
		if !replaced {
			replaced = true
			require.NoError(t, store.Set(ctx, "snap", fresh, time.Minute))
		}
		return base.Add(2 * time.Second)
	}

	_, ok := store.Get(ctx, "snap")
	assert.False(t, ok, "the stale read itself is a miss")

	got, ok := store.Get(ctx, "snap")
	require.True(t, ok, "the replacement entry must survive the expiry delete")
	assert.Same(t, fresh, got)
}

func TestMemoryStoreLastWriterWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := testSnapshot()
	second := testSnapshot()
	second.Services[0].Health = health.StateDegraded

	require.NoError(t, store.Set(ctx, "snap", first, time.Minute))
	require.NoError(t, store.Set(ctx, "snap", second, time.Minute))

	got, ok := store.Get(ctx, "snap")
	require.True(t, ok)
	assert.Equal(t, health.StateDegraded, got.Services[0].Health)
}
