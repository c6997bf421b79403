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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The budget hierarchy must hold: a provider call fits in one
// aggregation pass, and a pass fits in the server write window.
func TestTimeoutHierarchy(t *testing.T) {
	assert.Less(t, HTTPClientTimeout, AggregationTimeout)
	assert.Less(t, AggregationTimeout, ServerWriteTimeout)
}
