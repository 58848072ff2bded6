// Copyright 2025 The go-delharc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package delharc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SanitizeString renders raw header bytes as printable text. Control codes
// (below 0x20), bytes at or above 0x7F, and, unless ignoreSep is set,
// platform path separators are rewritten: separators become underscores and
// other offending bytes become lowercase "%xx" escapes. With nilTerm set a
// NUL byte terminates the string and the remainder is discarded.
//
// The transformation is not reversible; it exists to keep control codes and
// separators out of text later used as a file name.
func SanitizeString(data []byte, nilTerm, ignoreSep bool) string {
	idx := -1
	for i, c := range data {
		if c < 0x20 || c >= 0x7f || (!ignoreSep && os.IsPathSeparator(c)) {
			idx = i
			break
		}
	}
	if idx < 0 {
		// ASCII printable throughout, valid UTF-8 as-is.
		return string(data)
	}
	var out strings.Builder
	out.Grow(len(data) * 3)
	out.Write(data[:idx])
	for _, c := range data[idx:] {
		switch {
		case c == 0 && nilTerm:
			return out.String()
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&out, "%%%02x", c)
		case !ignoreSep && os.IsPathSeparator(c):
			out.WriteByte('_')
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

// SanitizePath renders raw pathname bytes as a safe relative path. The bytes
// are split on any of '/', '\' and 0xFF; empty, "." and ".." components are
// dropped and the rest are sanitized with [SanitizeString] before joining.
// The result never carries an absolute prefix, regardless of leading
// separators in the input.
func SanitizePath(data []byte) string {
	var parts []string
	part := make([]byte, 0, len(data))
	flush := func() {
		switch string(part) {
		case "", ".", "..":
			// Ignore malicious and empty components.
		default:
			parts = append(parts, SanitizeString(part, false, false))
		}
		part = part[:0]
	}
	for _, c := range data {
		if c == 0xff || c == '/' || c == '\\' {
			flush()
			continue
		}
		part = append(part, c)
	}
	flush()
	return filepath.Join(parts...)
}
