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
	"errors"
	"io"
)

// Reader provides sequential access to the entries of an LHA archive. It
// does not assume control of the given [io.Reader]; it is the responsibility
// of the caller to close that reader when it is no longer used.
//
// Reader does not decompress entry payloads. [Reader.Read] streams the raw,
// still-compressed payload bytes of the current entry, which for stored
// methods (see [Header.StoredOnly]) are the file contents themselves.
type Reader struct {
	r io.Reader

	// hdr is the most recently read entry header.
	hdr *Header

	// remaining is the number of unread payload bytes of the current entry.
	remaining uint64

	// done is set once the end-of-archive marker has been seen.
	done bool
}

// NewReader returns a new archive [Reader] reading from r, positioned before
// the first entry. No seek is required; only the sequential byte stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next skips any unread payload of the current entry and reads the next
// entry header. It returns [io.EOF] once the end-of-archive marker (or a
// clean end of stream) is reached.
func (z *Reader) Next() (*Header, error) {
	if z.done {
		return nil, io.EOF
	}
	if z.remaining > 0 {
		//nolint:gosec // remaining is bounded by the validated header fields.
		if _, err := io.CopyN(io.Discard, z.r, int64(z.remaining)); err != nil {
			return nil, readErr(err)
		}
		z.remaining = 0
	}
	hdr, err := ReadHeader(z.r)
	if err != nil {
		return nil, err
	}
	if hdr == nil {
		z.done = true
		return nil, io.EOF
	}
	z.hdr = hdr
	z.remaining = hdr.CompressedSize
	return hdr, nil
}

// Read implements [io.Reader] over the current entry's raw payload. It
// returns [io.EOF] when the payload is exhausted; the next entry is then
// available through [Reader.Next].
func (z *Reader) Read(p []byte) (int, error) {
	if z.remaining == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > z.remaining {
		p = p[:z.remaining]
	}
	n, err := z.r.Read(p)
	//nolint:gosec // n is bounded by len(p) which was clamped to remaining.
	z.remaining -= uint64(n)
	if errors.Is(err, io.EOF) && z.remaining > 0 {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}
