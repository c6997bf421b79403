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
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/statuskit/statuskit/pkg/collectors"
	"github.com/statuskit/statuskit/pkg/health"
)

// Snapshot returns the current aggregated health snapshot, serving
// from cache when an unexpired entry exists. refresh forces a live
// aggregation pass regardless of cache state.
func (a *Aggregator) Snapshot(ctx context.Context, refresh bool) (*health.Snapshot, error) {
	start := a.clock()

	if !refresh {
		if cached, ok := a.Store.Get(ctx, snapshotCacheKey); ok {
			aggregationTotal.WithLabelValues("cache").Inc()

			// The cached snapshot is shared with every earlier caller,
			// so serve a copy. Cache metadata reflects the moment of
			// this request, not the moment the entry was written.
			snap := *cached
			snap.Cache = a.Store.Metadata(ctx, snapshotCacheKey)
			snap.GeneratedInMS = a.clock().Sub(start).Milliseconds()
			return &snap, nil
		}
	}

	snap := a.assemble(ctx, start)

	if err := a.Store.Set(ctx, snapshotCacheKey, snap, a.TTL); err != nil {
		// A failed cache write degrades the next request to a live
		// pass; it does not fail this one.
		slog.Warn("failed to cache snapshot", slog.String("error", err.Error()))
	}

	aggregationTotal.WithLabelValues("live").Inc()
	return snap, nil
}

// assemble runs one live aggregation pass: parallel fan-out, fixed
// order merge, alert derivation.
func (a *Aggregator) assemble(ctx context.Context, start time.Time) *health.Snapshot {
	defer func() {
		aggregationDuration.Observe(time.Since(start).Seconds())
	}()

	slog.Debug("starting aggregation pass", slog.Int("collectors", len(a.Collectors)))

	results := make([]health.ProviderResult, len(a.Collectors))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range a.Collectors {
		g.Go(func() error {
			collectorStart := time.Now()
			defer func() {
				collectorDuration.WithLabelValues(c.Name()).Observe(time.Since(collectorStart).Seconds())
			}()

			res := collectSafely(gctx, c)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	// Collectors never return errors, so Wait cannot fail; the group
	// exists for the shared context and bounded parallelism.
	_ = g.Wait()

	snap := &health.Snapshot{
		GeneratedAt:  start.UTC(),
		Services:     []health.ServiceStatus{},
		Utilization:  []health.Metric{},
		Security:     []health.Metric{},
		DataPipeline: []health.Metric{},
		Alerts:       []health.AlertItem{},
		Cache: health.CacheInfo{
			IsCached:   false,
			TTLSeconds: int(a.TTL.Seconds()),
			ExpiresAt:  start.Add(a.TTL).UTC(),
		},
	}

	// Merge preserves the collector declaration order, so two passes
	// over the same inputs produce identical snapshots.
	for _, res := range results {
		if res.Service != nil {
			res.Service.Health = res.Service.Health.Normalize()
			snap.Services = append(snap.Services, *res.Service)
		}
		snap.Utilization = append(snap.Utilization, res.Utilization...)
		snap.Security = append(snap.Security, res.Security...)
		snap.DataPipeline = append(snap.DataPipeline, res.DataPipeline...)
		snap.Seo = mergeSeo(snap.Seo, res.Seo)
	}

	snap.Alerts = deriveAlerts(snap, start.UTC())
	snap.OpenAlertCount = len(snap.Alerts)
	snap.GeneratedInMS = a.clock().Sub(start).Milliseconds()

	openAlertCount.Set(float64(snap.OpenAlertCount))
	slog.Debug("aggregation pass complete",
		slog.Int("services", len(snap.Services)),
		slog.Int("alerts", snap.OpenAlertCount),
		slog.Int64("elapsed_ms", snap.GeneratedInMS))

	return snap
}

// collectSafely invokes one collector, converting a panic into a
// degraded status so a single misbehaving provider integration cannot
// take down the whole pass.
func collectSafely(ctx context.Context, c collectors.Collector) (res health.ProviderResult) {
	defer func() {
		if r := recover(); r != nil {
			collectorPanicTotal.WithLabelValues(c.Name()).Inc()
			slog.Error("collector panicked",
				slog.String("collector", c.Name()),
				slog.Any("panic", r))
			res = health.ProviderResult{
				Service: &health.ServiceStatus{
					ID:        c.Name(),
					Name:      c.Name(),
					Health:    health.StateDegraded,
					UpdatedAt: time.Now().UTC(),
					Details:   fmt.Sprintf("collector failure: %v", r),
					Provider:  c.Name(),
				},
			}
		}
	}()

	return c.Collect(ctx)
}

// mergeSeo folds one collector's coverage contribution into the
// accumulated bucket field by field. Later non-nil fields win; in
// practice the analytics and search index collectors fill disjoint
// fields.
func mergeSeo(acc, next *health.SeoCoverage) *health.SeoCoverage {
	if next == nil {
		return acc
	}
	if acc == nil {
		merged := *next
		return &merged
	}
	if next.ValidPages != nil {
		acc.ValidPages = next.ValidPages
	}
	if next.WarningPages != nil {
		acc.WarningPages = next.WarningPages
	}
	if next.ErrorPages != nil {
		acc.ErrorPages = next.ErrorPages
	}
	if next.CrawlErrors != nil {
		acc.CrawlErrors = next.CrawlErrors
	}
	if next.WebVitals != nil {
		acc.WebVitals = next.WebVitals
	}
	return acc
}

// clock returns the injected clock, defaulting to the wall clock so a
// zero-value Aggregator still works.
func (a *Aggregator) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}
