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
	"bytes"
	"encoding/binary"
	"path/filepath"
	"time"
)

// Raw identifiers of extra headers.
const (
	// ExtHeaderCommon carries the CRC-16 of the whole header. The CRC-16
	// field is always reset to 0 in the retained extra header data; this is
	// the necessary condition to verify the header's checksum.
	ExtHeaderCommon     byte = 0x00
	ExtHeaderFilename   byte = 0x01
	ExtHeaderPath       byte = 0x02
	ExtHeaderMultiDisc  byte = 0x39
	ExtHeaderComment    byte = 0x3F
	ExtHeaderMSDOSAttrs byte = 0x40
	ExtHeaderMSDOSTime  byte = 0x41
	ExtHeaderMSDOSSize  byte = 0x42
	ExtHeaderUnixPerm   byte = 0x50
	ExtHeaderUnixUIDGID byte = 0x51
	ExtHeaderUnixGroup  byte = 0x52
	ExtHeaderUnixOwner  byte = 0x53
	ExtHeaderUnixTime   byte = 0x54

	// ExtHeaderExtAttrs is an alias layout for MS-DOS attributes.
	ExtHeaderExtAttrs byte = 0x7F

	ExtHeaderOS9 byte = 0xCC
)

// Known compression method tags.
const (
	MethodLh0 = "-lh0-" // stored
	MethodLh1 = "-lh1-"
	MethodLh4 = "-lh4-"
	MethodLh5 = "-lh5-"
	MethodLh6 = "-lh6-"
	MethodLh7 = "-lh7-"
	MethodLhd = "-lhd-" // directory entry, no payload
	MethodLz4 = "-lz4-" // stored
	MethodLzs = "-lzs-"
	MethodLz5 = "-lz5-"
	MethodPm0 = "-pm0-" // stored
	MethodPm2 = "-pm2-"
)

// Header describes a single archived file, parsed from one LHA entry header.
//
// Multi-byte numeric fields are decoded from their little-endian wire form.
// The byte string fields (Filename, ExtendedArea, ExtraHeaders) are retained
// verbatim; use [Header.ParseFilename] and [Header.ParsePathname] to obtain
// sanitized printable forms, and [Header.IterExtra] to walk the raw extra
// header records.
type Header struct {
	// Level is the header layout version, 0 to 3.
	Level byte

	// Compression is the 5-byte compression method tag, e.g. "-lh5-".
	Compression [5]byte

	// CompressedSize is the byte length of the compressed payload following
	// the header. For level 1 headers the skip size convention inflates the
	// stored value by the extra header byte count; the parser reports the
	// corrected value.
	CompressedSize uint64

	// OriginalSize is the byte length of the file before compression.
	OriginalSize uint64

	// Filename is the raw filename field. Empty for levels 2 and 3, which
	// carry the name in a Filename extra header instead.
	Filename []byte

	// OSType identifies the producing operating system. 0 for level 0
	// headers without the OS extension.
	OSType byte

	// MSDOSAttrs is the MS-DOS attribute bitfield, widened from the 8-bit
	// base field and possibly replaced by an attribute extra header.
	MSDOSAttrs uint16

	// LastModified is the modification timestamp as written by the producer:
	// an MS-DOS packed date and time for levels 0 and 1, Unix epoch seconds
	// for levels 2 and 3. See [Header.ModTime].
	LastModified uint32

	// FileCRC is the CRC-16 of the uncompressed file payload.
	FileCRC uint16

	// ExtendedArea is the raw level 0/1 extended area. Empty for levels 2
	// and 3.
	ExtendedArea []byte

	// FirstHeaderLen is the length of the first extra header record.
	// 0 means the entry has no extra headers.
	FirstHeaderLen uint32

	// ExtraHeaders is the concatenation of all raw extra header records,
	// each ending in its own next-record length field.
	ExtraHeaders []byte
}

// Method returns the compression method tag as a string.
func (h *Header) Method() string {
	return string(h.Compression[:])
}

// IsDirectory reports whether the entry is a directory.
func (h *Header) IsDirectory() bool {
	return h.Method() == MethodLhd
}

// StoredOnly reports whether the entry's payload is stored without
// compression.
func (h *Header) StoredOnly() bool {
	switch h.Method() {
	case MethodLh0, MethodLz4, MethodPm0:
		return true
	}
	return false
}

// ModTime decodes the modification timestamp. Level 0 and 1 headers store an
// MS-DOS packed date and time in the local time zone; level 2 and 3 headers
// store Unix epoch seconds.
func (h *Header) ModTime() time.Time {
	if h.Level >= 2 {
		return time.Unix(int64(h.LastModified), 0)
	}
	ts := h.LastModified
	sec := int(ts&0x1f) * 2
	min := int(ts>>5) & 0x3f
	hour := int(ts>>11) & 0x1f
	day := int(ts>>16) & 0x1f
	month := time.Month(int(ts>>21) & 0x0f)
	year := 1980 + int(ts>>25)
	return time.Date(year, month, day, hour, min, sec, 0, time.Local)
}

// splitAtNil splits data at the first NUL byte. The second return value is
// nil if no NUL byte was found.
func splitAtNil(data []byte) ([]byte, []byte) {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return data[:i], data[i+1:]
	}
	return data, nil
}

// ParseFilename resolves the entry's file name as sanitized printable text.
// The name comes from the last Filename extra header if any is present,
// otherwise from the base filename field truncated at the first NUL byte.
// Path separators in the name are replaced with underscores; use
// [Header.ParsePathname] to resolve the full relative path instead.
func (h *Header) ParseFilename() string {
	name, _ := splitAtNil(h.Filename)
	iter := h.IterExtra()
	for body, ok := iter.Next(); ok; body, ok = iter.Next() {
		if body[0] == ExtHeaderFilename {
			name = body[1:]
		}
	}
	return SanitizeString(name, false, false)
}

// ParsePathname resolves the entry's full path as a safe relative path: the
// directory part from the last Path extra header, joined with the file name.
// Separators embedded in the filename field split it into path components.
func (h *Header) ParsePathname() string {
	name, _ := splitAtNil(h.Filename)
	var dir []byte
	iter := h.IterExtra()
	for body, ok := iter.Next(); ok; body, ok = iter.Next() {
		switch body[0] {
		case ExtHeaderFilename:
			name = body[1:]
		case ExtHeaderPath:
			dir = body[1:]
		}
	}
	return filepath.Join(SanitizePath(dir), SanitizePath(name))
}

// ExtraHeaderIter iterates through the extra headers of an entry, yielding
// each record's raw content excluding the trailing next-record length field.
type ExtraHeaderIter struct {
	data      []byte
	headerLen uint32
	len32     bool
}

// IterExtra returns an iterator over the entry's extra headers. Each yielded
// record begins with the identifier byte and holds at least that one byte.
// The iterator borrows the header's retained buffer; it is restartable by
// calling IterExtra again.
func (h *Header) IterExtra() *ExtraHeaderIter {
	return &ExtraHeaderIter{
		data:      h.ExtraHeaders,
		headerLen: h.FirstHeaderLen,
		len32:     h.Level == 3,
	}
}

// Next returns the next extra header record, or ok=false when the chain is
// exhausted.
func (it *ExtraHeaderIter) Next() (record []byte, ok bool) {
	if it.headerLen == 0 {
		return nil, false
	}
	n := int(it.headerLen)
	rec := it.data[:n]
	it.data = it.data[n:]
	if it.len32 {
		it.headerLen = binary.LittleEndian.Uint32(rec[n-4:])
		return rec[:n-4], true
	}
	it.headerLen = uint32(binary.LittleEndian.Uint16(rec[n-2:]))
	return rec[:n-2], true
}
