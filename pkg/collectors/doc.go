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

// Package collectors queries the external platform providers and
// normalizes their responses into the shared health model.
//
// Each collector owns one provider: the identity platform, the three
// monitored infrastructure tiers (compute, database, hosting), the edge
// protection layer, web analytics, and the search index. Collectors
// follow a strict non-throwing contract: Collect always returns a
// usable ProviderResult, and a provider that is unreachable,
// unconfigured, or returning garbage is reported as data (an unknown or
// degraded status, a configuration metric) rather than as an error.
package collectors
