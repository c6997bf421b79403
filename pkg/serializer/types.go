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

package serializer

import "context"

// Serializer writes a value to some destination in a configured format.
type Serializer interface {
	// Serialize writes the given value. The context bounds any I/O the
	// destination performs.
	Serialize(ctx context.Context, v any) error
}

// Closer is implemented by serializers that hold resources, such as an
// open file handle, that must be released after the last write.
type Closer interface {
	Close() error
}
