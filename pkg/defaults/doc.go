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

// Package defaults centralizes timeout constants shared across the
// service: outbound provider calls, the aggregation pass, and the HTTP
// server surface. Keeping them in one place makes the budget hierarchy
// visible; every outbound timeout must fit inside the aggregation
// budget, which in turn must fit inside the server write timeout.
package defaults
