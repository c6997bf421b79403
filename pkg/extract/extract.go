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

package extract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Source is a decoded JSON object whose shape is only loosely
// specified by the upstream. Every accessor takes an ordered list of
// dotted candidate paths and returns the first one that parses; a
// payload that matches none of the candidates yields the zero result
// rather than an error.
type Source map[string]any

// lookup walks a dotted path through nested objects.
func (s Source) lookup(path string) (any, bool) {
	var cur any = map[string]any(s)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Number returns the first candidate path holding a numeric value.
// Accepts JSON numbers, json.Number, and numeric strings.
func (s Source) Number(paths ...string) *float64 {
	for _, path := range paths {
		v, ok := s.lookup(path)
		if !ok {
			continue
		}
		if n, ok := coerceNumber(v); ok {
			return &n
		}
	}
	return nil
}

// Int returns the first candidate path holding a numeric value,
// truncated to an int.
func (s Source) Int(paths ...string) *int {
	if f := s.Number(paths...); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}

// String returns the first candidate path holding a non-empty string.
func (s Source) String(paths ...string) (string, bool) {
	for _, path := range paths {
		v, ok := s.lookup(path)
		if !ok {
			continue
		}
		if str, ok := v.(string); ok && str != "" {
			return str, true
		}
	}
	return "", false
}

// Slice returns the first candidate path holding an array.
func (s Source) Slice(paths ...string) []any {
	for _, path := range paths {
		v, ok := s.lookup(path)
		if !ok {
			continue
		}
		if arr, ok := v.([]any); ok {
			return arr
		}
	}
	return nil
}

// Object returns the first candidate path holding a nested object,
// wrapped as a Source for further extraction.
func (s Source) Object(paths ...string) (Source, bool) {
	for _, path := range paths {
		v, ok := s.lookup(path)
		if !ok {
			continue
		}
		if m, ok := v.(map[string]any); ok {
			return Source(m), true
		}
	}
	return nil, false
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
