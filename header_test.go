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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestHeader_IterExtra(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		hdr  Header
		want [][]byte
	}{
		{
			name: "no extra headers",
			hdr:  Header{},
			want: nil,
		},
		{
			name: "16-bit length fields",
			hdr: Header{
				Level:          2,
				FirstHeaderLen: 5,
				ExtraHeaders: []byte{
					0x40, 0x01, 0x00, 0x07, 0x00,
					0x54, 0xaa, 0xbb, 0xcc, 0xdd, 0x00, 0x00,
				},
			},
			want: [][]byte{
				{0x40, 0x01, 0x00},
				{0x54, 0xaa, 0xbb, 0xcc, 0xdd},
			},
		},
		{
			name: "32-bit length fields",
			hdr: Header{
				Level:          3,
				FirstHeaderLen: 7,
				ExtraHeaders: []byte{
					0x00, 0x00, 0x00, 0x06, 0x00, 0x00, 0x00,
					0x3f, 0x21, 0x00, 0x00, 0x00, 0x00,
				},
			},
			want: [][]byte{
				{0x00, 0x00, 0x00},
				{0x3f, 0x21},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got [][]byte
			iter := tc.hdr.IterExtra()
			for body, ok := iter.Next(); ok; body, ok = iter.Next() {
				got = append(got, body)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("IterExtra (-want, +got):\n%s", diff)
			}

			// Iteration is restartable.
			var again [][]byte
			iter = tc.hdr.IterExtra()
			for body, ok := iter.Next(); ok; body, ok = iter.Next() {
				again = append(again, body)
			}
			if diff := cmp.Diff(got, again); diff != "" {
				t.Errorf("IterExtra restart (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestHeader_ParseFilename(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		hdr  Header
		want string
	}{
		{
			name: "base filename",
			hdr:  Header{Filename: []byte("FOO.TXT")},
			want: "FOO.TXT",
		},
		{
			name: "base filename truncated at nil",
			hdr:  Header{Filename: []byte("FOO.TXT\x00garbage")},
			want: "FOO.TXT",
		},
		{
			name: "filename header wins",
			hdr: Header{
				Level:          2,
				Filename:       []byte("OLD.TXT"),
				FirstHeaderLen: 10,
				ExtraHeaders: []byte{
					0x01, 'n', 'e', 'w', '.', 't', 'x', 't', 0x00, 0x00,
				},
			},
			want: "new.txt",
		},
		{
			name: "control codes escaped",
			hdr:  Header{Filename: []byte("a\x01b\xffc")},
			want: "a%01b%ffc",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tc.want, tc.hdr.ParseFilename()); diff != "" {
				t.Errorf("ParseFilename (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestHeader_ParsePathname(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		hdr  Header
		want string
	}{
		{
			name: "filename only",
			hdr:  Header{Filename: []byte("FOO.TXT")},
			want: "FOO.TXT",
		},
		{
			name: "separators in base filename",
			hdr:  Header{Filename: []byte(`DIR\FOO.TXT`)},
			want: filepath.Join("DIR", "FOO.TXT"),
		},
		{
			name: "path header joined with filename header",
			hdr: Header{
				Level:          2,
				FirstHeaderLen: 11,
				ExtraHeaders: []byte{
					0x01, 'f', 'i', 'l', 'e', '.', 't', 'x', 't', 0x08, 0x00,
					0x02, 'a', 0xff, 'b', 0xff, 'c', 0x00, 0x00,
				},
			},
			want: filepath.Join("a", "b", "c", "file.txt"),
		},
		{
			name: "directory entry without filename",
			hdr: Header{
				Level:          2,
				FirstHeaderLen: 7,
				ExtraHeaders: []byte{
					0x02, 'a', 0xff, 'b', 0xff, 0x00, 0x00,
				},
			},
			want: filepath.Join("a", "b"),
		},
		{
			name: "traversal stripped",
			hdr:  Header{Filename: []byte(`..\..\evil`)},
			want: "evil",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tc.want, tc.hdr.ParsePathname()); diff != "" {
				t.Errorf("ParsePathname (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestHeader_ModTime(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		hdr  Header
		want time.Time
	}{
		{
			name: "msdos packed timestamp",
			hdr:  Header{Level: 0, LastModified: 0x07654321},
			want: time.Date(1983, time.November, 5, 8, 25, 2, 0, time.Local),
		},
		{
			name: "msdos epoch",
			hdr:  Header{Level: 1, LastModified: 0x00210000},
			want: time.Date(1980, time.January, 1, 0, 0, 0, 0, time.Local),
		},
		{
			name: "unix timestamp",
			hdr:  Header{Level: 2, LastModified: 0x58625c00},
			want: time.Unix(0x58625c00, 0),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := tc.hdr.ModTime()
			if !got.Equal(tc.want) {
				t.Errorf("ModTime: want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestHeader_Method(t *testing.T) {
	t.Parallel()

	dir := Header{Compression: [5]byte{'-', 'l', 'h', 'd', '-'}}
	if diff := cmp.Diff(MethodLhd, dir.Method()); diff != "" {
		t.Errorf("Method (-want, +got):\n%s", diff)
	}
	if !dir.IsDirectory() {
		t.Errorf("IsDirectory: want true, got false")
	}
	if dir.StoredOnly() {
		t.Errorf("StoredOnly: want false, got true")
	}

	stored := Header{Compression: [5]byte{'-', 'l', 'h', '0', '-'}}
	if stored.IsDirectory() {
		t.Errorf("IsDirectory: want false, got true")
	}
	if !stored.StoredOnly() {
		t.Errorf("StoredOnly: want true, got false")
	}

	packed := Header{Compression: [5]byte{'-', 'l', 'h', '5', '-'}}
	if packed.StoredOnly() {
		t.Errorf("StoredOnly: want false, got true")
	}
}
