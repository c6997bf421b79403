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
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/statuskit/statuskit/pkg/health"
)

// RedisStore keeps snapshots in a shared Redis instance so multiple
// replicas serve the same cache window. Snapshots are stored as JSON;
// expiry is enforced by Redis itself.
//
// Read or write failures degrade to a cache miss rather than failing
// the aggregation pass: the cache is an optimization, never a
// dependency.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns a store backed by the Redis instance at addr.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Get returns the cached snapshot for key, treating any Redis or
// decode failure as a miss.
func (s *RedisStore) Get(ctx context.Context, key string) (*health.Snapshot, bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("redis cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil, false
	}

	var snap health.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("redis cache entry malformed", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}

	return &snap, true
}

// Set stores a snapshot under key with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, snap *health.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		slog.Warn("redis cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Metadata reports the remaining cache window for key using the TTL
// tracked by Redis.
func (s *RedisStore) Metadata(ctx context.Context, key string) health.CacheInfo {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		return health.CacheInfo{}
	}

	return health.CacheInfo{
		IsCached:   true,
		TTLSeconds: int(ttl.Seconds()),
		ExpiresAt:  time.Now().Add(ttl),
	}
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
