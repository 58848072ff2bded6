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
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		data      []byte
		nilTerm   bool
		ignoreSep bool
		want      string
	}{
		{
			name: "empty",
			data: []byte{},
			want: "",
		},
		{
			name: "ascii passthrough",
			data: []byte("Hello World!"),
			want: "Hello World!",
		},
		{
			name: "control and delete escaped",
			data: []byte("Hello\x00World\x7f"),
			want: "Hello%00World%7f",
		},
		{
			name: "high bytes escaped",
			data: []byte("Hello\x01World\xff"),
			want: "Hello%01World%ff",
		},
		{
			name:    "nil terminated",
			data:    []byte("Hello\x00World\xff"),
			nilTerm: true,
			want:    "Hello",
		},
		{
			name:    "separator replaced before terminator",
			data:    []byte("He/llo\x00World\xff"),
			nilTerm: true,
			want:    "He_llo",
		},
		{
			name:      "separator kept",
			data:      []byte("He/llo\x00World\xff"),
			nilTerm:   true,
			ignoreSep: true,
			want:      "He/llo",
		},
		{
			name:      "separator kept without terminator",
			data:      []byte("He/llo\x00World\xff"),
			ignoreSep: true,
			want:      "He/llo%00World%ff",
		},
		{
			name: "leading separator and mixed tail",
			data: []byte("/Hello\x1fWorld\x80"),
			want: "_Hello%1fWorld%80",
		},
		{
			name: "separators replaced",
			data: []byte("/Hello/World/"),
			want: "_Hello_World_",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := SanitizeString(tc.data, tc.nilTerm, tc.ignoreSep)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("SanitizeString (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "empty",
			data: []byte{},
			want: "",
		},
		{
			name: "slash only",
			data: []byte("/"),
			want: "",
		},
		{
			name: "backslash only",
			data: []byte(`\`),
			want: "",
		},
		{
			name: "dot",
			data: []byte("."),
			want: "",
		},
		{
			name: "dot dot",
			data: []byte(".."),
			want: "",
		},
		{
			name: "traversal components dropped",
			data: []byte(`/..\./`),
			want: "",
		},
		{
			name: "traversal components dropped reversed",
			data: []byte(`\../.\`),
			want: "",
		},
		{
			name: "mixed separators",
			data: []byte(`foo/bar\baz`),
			want: filepath.Join("foo", "bar", "baz"),
		},
		{
			name: "leading and trailing separators",
			data: []byte(`\foo/bar\baz/`),
			want: filepath.Join("foo", "bar", "baz"),
		},
		{
			name: "0xff separators",
			data: []byte("foo\xffbar\xffbaz"),
			want: filepath.Join("foo", "bar", "baz"),
		},
		{
			name: "0xff separators with escaped component",
			data: []byte("\xfffoo\xffb\x91ar\xffbaz\xff"),
			want: filepath.Join("foo", "b%91ar", "baz"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := SanitizePath(tc.data)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("SanitizePath (-want, +got):\n%s", diff)
			}

			// The rendered path is always relative and re-parses to itself.
			if filepath.IsAbs(got) {
				t.Errorf("SanitizePath returned an absolute path: %q", got)
			}
			if diff := cmp.Diff(got, SanitizePath([]byte(got))); diff != "" {
				t.Errorf("SanitizePath not idempotent (-want, +got):\n%s", diff)
			}
			for _, part := range strings.Split(got, string(filepath.Separator)) {
				if part == "." || part == ".." {
					t.Errorf("SanitizePath produced traversal component %q in %q", part, got)
				}
			}
		})
	}
}
