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
	"sync"
	"time"

	"github.com/statuskit/statuskit/pkg/health"
)

type memoryEntry struct {
	snap      *health.Snapshot
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryStore is a concurrency-safe in-process snapshot store with
// lazy TTL eviction: expired entries are removed when read, there is
// no background eviction goroutine. A single instance per process is
// expected; it is not shared across deployed replicas.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

// Get returns the cached snapshot for key. An entry past its expiry is
// deleted and reported as a miss.
func (s *MemoryStore) Get(_ context.Context, key string) (*health.Snapshot, bool) {
	s.mu.RLock()
	entry, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if entry.expired(s.now()) {
		s.mu.Lock()
		// Recheck under the write lock: a Set may have replaced the
		// entry since the read, and a fresh entry must survive.
		if cur, ok := s.data[key]; ok && cur == entry {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	return entry.snap, true
}

// Set stores a snapshot under key for the given TTL.
func (s *MemoryStore) Set(_ context.Context, key string, snap *health.Snapshot, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = memoryEntry{
		snap:      snap,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Metadata reports the current cache window for key.
func (s *MemoryStore) Metadata(_ context.Context, key string) health.CacheInfo {
	s.mu.RLock()
	entry, ok := s.data[key]
	s.mu.RUnlock()

	now := s.now()
	if !ok || entry.expired(now) {
		return health.CacheInfo{}
	}

	return health.CacheInfo{
		IsCached:   true,
		TTLSeconds: int(entry.expiresAt.Sub(now).Seconds()),
		ExpiresAt:  entry.expiresAt,
	}
}
