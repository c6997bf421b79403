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
	"context"
	"errors"
	"sync"

	"github.com/statuskit/statuskit/pkg/credentials"
	"github.com/statuskit/statuskit/pkg/timeseries"
)

// tsQuery names one time-series query inside a collector's batch.
type tsQuery struct {
	key string
	req timeseries.QueryRequest
}

// tsOutcome is the result slot for one query in a batch.
type tsOutcome struct {
	res timeseries.QueryResult
	err error
}

// runQueries executes a batch of time-series queries in parallel and
// returns every outcome keyed by query name. Individual failures are
// captured, never propagated; the caller classifies them.
func runQueries(ctx context.Context, q timeseries.Querier, queries []tsQuery) map[string]tsOutcome {
	outcomes := make(map[string]tsOutcome, len(queries))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, query := range queries {
		wg.Add(1)
		go func(query tsQuery) {
			defer wg.Done()
			res, err := q.Query(ctx, query.req)
			mu.Lock()
			outcomes[query.key] = tsOutcome{res: res, err: err}
			mu.Unlock()
		}(query)
	}
	wg.Wait()

	return outcomes
}

// classifyOutcomes splits a batch into the configuration-gap case and
// the transient-failure case. missingCreds is true when every failure
// is a missing-credential error; firstErr carries the first transient
// failure for the status details.
func classifyOutcomes(outcomes map[string]tsOutcome) (missingCreds bool, firstErr error) {
	sawError := false
	allMissing := true
	for _, o := range outcomes {
		if o.err == nil {
			continue
		}
		sawError = true
		if errors.Is(o.err, credentials.ErrMissingCredentials) {
			continue
		}
		allMissing = false
		if firstErr == nil {
			firstErr = o.err
		}
	}
	return sawError && allMissing, firstErr
}
