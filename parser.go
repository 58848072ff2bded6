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
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sigurn/crc16"
)

var (
	// errDelharc is the base error for all go-delharc errors.
	errDelharc = errors.New("delharc")

	// ErrTruncated indicates that the stream ended in the middle of a header.
	ErrTruncated = fmt.Errorf("%w: truncated header", errDelharc)

	// ErrHeader indicates a malformed header prolog.
	ErrHeader = fmt.Errorf("%w: invalid header", errDelharc)

	// ErrHeaderLevel indicates an unsupported header level.
	ErrHeaderLevel = fmt.Errorf("%w: unknown header level", errDelharc)

	// ErrHeaderSize indicates that a header length field does not cover the
	// header's contents.
	ErrHeaderSize = fmt.Errorf("%w: wrong header size", errDelharc)

	// ErrHeaderChecksum indicates a level 0/1 byte-sum checksum mismatch.
	ErrHeaderChecksum = fmt.Errorf("%w: invalid header level checksum", errDelharc)

	// ErrHeaderCRC indicates a header CRC-16 checksum mismatch.
	ErrHeaderCRC = fmt.Errorf("%w: wrong header CRC-16 checksum", errDelharc)

	// ErrExtraHeaderSize indicates an extra header record too short to hold
	// its identifier and next-record length field.
	ErrExtraHeaderSize = fmt.Errorf("%w: wrong extra header size", errDelharc)

	// ErrDoubleCommonHeader indicates more than one Common extra header.
	ErrDoubleCommonHeader = fmt.Errorf("%w: double common CRC-16 header", errDelharc)

	// ErrHeaderLength indicates that the announced long header length does
	// not match the parsed header.
	ErrHeaderLength = fmt.Errorf("%w: wrong length of headers", errDelharc)

	// ErrSkipSize indicates a level 1 compressed size smaller than the extra
	// header byte count it is supposed to cover.
	ErrSkipSize = fmt.Errorf("%w: wrong length of skip size", errDelharc)
)

// crcTable parameterizes the CRC-16 used by LHA headers (the ARC polynomial
// 0x8005 reflected, initial value 0).
var crcTable = crc16.MakeTable(crc16.CRC16_ARC)

// readErr wraps errors from the underlying reader. A short read mid-header
// becomes ErrTruncated.
func readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return fmt.Errorf("%w: %w", errDelharc, err)
}

// parser wraps the byte source for the duration of one header read. Every
// byte pulled through it is counted and fed to the rolling CRC-16 digest;
// bytes read through readExact and readLimit additionally update the 8-bit
// wrapping sum used by level 0 and 1 checksums.
type parser struct {
	r    io.Reader
	crc  uint16
	csum uint8
	n    int
}

func newParser(r io.Reader) *parser {
	return &parser{r: r, crc: crc16.Init(crcTable)}
}

// bumpDigest updates the byte counter and the CRC-16 digest.
func (p *parser) bumpDigest(buf []byte) {
	p.n += len(buf)
	p.crc = crc16.Update(p.crc, buf, crcTable)
}

// bumpAll additionally updates the wrapping sum.
func (p *parser) bumpAll(buf []byte) {
	p.bumpDigest(buf)
	for _, b := range buf {
		p.csum += b
	}
}

// readByteOrEOF reads a single byte, reporting ok=false on a clean EOF.
// The wrapping sum is not updated: the first header byte is outside its
// scope.
func (p *parser) readByteOrEOF() (byte, bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, false, nil
		}
		return 0, false, readErr(err)
	}
	p.bumpDigest(buf[:])
	return buf[0], true, nil
}

func (p *parser) readByte() (byte, error) {
	var buf [1]byte
	if err := p.readExact(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (p *parser) readUint16() (uint16, error) {
	var buf [2]byte
	if err := p.readExact(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (p *parser) readUint32() (uint32, error) {
	var buf [4]byte
	if err := p.readExact(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// readExact fills buf and feeds it to every accumulator.
func (p *parser) readExact(buf []byte) error {
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return readErr(err)
	}
	p.bumpAll(buf)
	return nil
}

// readLimit reads exactly n bytes and feeds them to every accumulator.
func (p *parser) readLimit(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return nil, readErr(err)
	}
	p.bumpAll(buf)
	return buf, nil
}

// appendRaw reads exactly n bytes onto dst without touching the
// accumulators. Extra header records must be digested only after the Common
// header's CRC-16 field has been cleared in the retained copy.
func (p *parser) appendRaw(dst []byte, n int) ([]byte, error) {
	off := len(dst)
	dst = append(dst, make([]byte, n)...)
	if _, err := io.ReadFull(p.r, dst[off:]); err != nil {
		return nil, readErr(err)
	}
	return dst, nil
}

// ReadHeader reads and validates a single LHA entry header from r. It
// returns (nil, nil) when the end-of-archive marker (a zero byte) or a clean
// EOF is encountered in place of the first header byte.
//
// All length and checksum fields of the header are validated, but extra
// headers are not interpreted except:
//   - the Common header, for validating the header's CRC-16 checksum,
//   - the MS-DOS Attributes and Extended Attributes headers, for the
//     attribute bitfield,
//   - the MS-DOS Size header, for 64-bit file sizes (levels 2 and 3).
//
// All extra data stays available as raw bytes and can be walked with
// [Header.IterExtra]. On error no header is returned; the stream position is
// wherever the failed read left it.
func ReadHeader(r io.Reader) (*Header, error) {
	p := newParser(r)

	headerLen8, ok, err := p.readByteOrEOF()
	if err != nil {
		return nil, err
	}
	if !ok || headerLen8 == 0 {
		return nil, nil
	}
	csum, err := p.readByte()
	if err != nil {
		return nil, err
	}
	// The wrapping sum does not include the first 2 bytes.
	p.csum = 0

	var base [19]byte
	if err := p.readExact(base[:]); err != nil {
		return nil, err
	}
	level := base[18]
	if level > 3 {
		return nil, ErrHeaderLevel
	}
	headerLen := int(headerLen8)

	// Filename, level 0 and 1 only.
	var filename []byte
	if level < 2 {
		nameLen, err := p.readByte()
		if err != nil {
			return nil, err
		}
		if headerLen < p.n+int(nameLen) {
			return nil, ErrHeaderSize
		}
		filename, err = p.readLimit(int(nameLen))
		if err != nil {
			return nil, err
		}
	}

	fileCRC, err := p.readUint16()
	if err != nil {
		return nil, err
	}

	var osType byte
	if level > 0 {
		osType, err = p.readByte()
		if err != nil {
			return nil, err
		}
	}

	// Extended area, level 0 and 1 only.
	var extendedArea []byte
	if level < 2 {
		minLen := p.n
		if level == 0 {
			// Level 0 has no extra headers and no trailing next-record
			// length field.
			minLen -= 2
		}
		if headerLen < minLen {
			return nil, ErrHeaderSize
		}
		extendedLen := headerLen - minLen
		if extendedLen != 0 && level == 0 {
			// The first extended area byte of a level 0 header is the OS
			// type.
			extendedLen--
			osType, err = p.readByte()
			if err != nil {
				return nil, err
			}
		}
		if extendedLen != 0 {
			extendedArea, err = p.readLimit(extendedLen)
			if err != nil {
				return nil, err
			}
		}
	}

	// Establish the first extra header length and, for levels 2 and 3, the
	// long header length announced in the prolog.
	var longHeaderLen uint32
	var firstHeaderLen uint32
	switch level {
	case 1:
		v, err := p.readUint16()
		if err != nil {
			return nil, err
		}
		firstHeaderLen = uint32(v)
	case 2:
		// The two prolog bytes double as the long header length in LE order.
		longHeaderLen = uint32(headerLen8) | uint32(csum)<<8
		v, err := p.readUint16()
		if err != nil {
			return nil, err
		}
		firstHeaderLen = uint32(v)
	case 3:
		longHeaderLen, err = p.readUint32()
		if err != nil {
			return nil, err
		}
		firstHeaderLen, err = p.readUint32()
		if err != nil {
			return nil, err
		}
		if headerLen8 != 4 || csum != 0 {
			return nil, ErrHeader
		}
	}

	// Validate the level 0 and 1 header checksum.
	if level < 2 {
		if csum != p.csum {
			return nil, ErrHeaderChecksum
		}
	} else if longHeaderLen < uint32(p.n)+firstHeaderLen {
		return nil, ErrHeaderSize
	}

	msdosAttrs := uint16(base[17])
	compressedSize := uint64(binary.LittleEndian.Uint32(base[5:9]))
	originalSize := uint64(binary.LittleEndian.Uint32(base[9:13]))
	var headerCRC uint16
	var hasHeaderCRC bool

	// Walk the extra header chain.
	minRecord := 3
	if level == 3 {
		// 1-byte identifier plus a 32-bit next-record length field.
		minRecord = 5
	}
	var extraHeaders []byte
	extraLen := int(firstHeaderLen)
	for extraLen != 0 {
		if extraLen < minRecord {
			return nil, ErrExtraHeaderSize
		}
		if longHeaderLen != 0 {
			// The last record's next-record length field may have no
			// follow-on bytes.
			if int(longHeaderLen) < p.n+extraLen-2 {
				return nil, ErrHeaderSize
			}
		} else if compressedSize < uint64(len(extraHeaders)+extraLen) {
			// Level 1: the skip size must cover the extra headers.
			return nil, ErrHeaderSize
		}
		extraHeaders, err = p.appendRaw(extraHeaders, extraLen)
		if err != nil {
			return nil, err
		}
		record := extraHeaders[len(extraHeaders)-extraLen:]
		switch record[0] {
		case ExtHeaderCommon:
			// Extract the CRC-16 from the record and clear it in the
			// retained buffer before digesting.
			if hasHeaderCRC {
				return nil, ErrDoubleCommonHeader
			}
			if len(record) >= 3 {
				headerCRC = binary.LittleEndian.Uint16(record[1:3])
				hasHeaderCRC = true
				record[1], record[2] = 0, 0
			}
		case ExtHeaderMSDOSAttrs, ExtHeaderExtAttrs:
			if len(record) >= 3 {
				msdosAttrs = binary.LittleEndian.Uint16(record[1:3])
			}
		case ExtHeaderMSDOSSize:
			if level >= 2 && len(record) >= 17 {
				compressedSize = binary.LittleEndian.Uint64(record[1:9])
				originalSize = binary.LittleEndian.Uint64(record[9:17])
			}
		}
		p.bumpDigest(record)
		if level == 3 {
			extraLen = int(binary.LittleEndian.Uint32(record[len(record)-4:]))
		} else {
			extraLen = int(binary.LittleEndian.Uint16(record[len(record)-2:]))
		}
	}

	// Validate the announced long header length (levels 2 and 3).
	if longHeaderLen != 0 && longHeaderLen != uint32(p.n) {
		switch {
		case level == 2 && longHeaderLen == uint32(p.n)+1:
			// The header was rounded to an even length with one padding
			// byte.
			if _, err := p.readByte(); err != nil {
				return nil, err
			}
		case level == 2 && longHeaderLen+2 == uint32(p.n):
			// Some packers (Osk) don't include the initial length field in
			// the header length.
		default:
			return nil, ErrHeaderLength
		}
	}

	// Validate the header CRC-16 if a Common header was seen.
	if hasHeaderCRC && headerCRC != crc16.Complete(p.crc, crcTable) {
		return nil, ErrHeaderCRC
	}

	// Adjust the compressed size for level 1.
	if level == 1 {
		if uint64(len(extraHeaders)) > compressedSize {
			return nil, ErrSkipSize
		}
		compressedSize -= uint64(len(extraHeaders))
	}

	h := &Header{
		Level:          level,
		CompressedSize: compressedSize,
		OriginalSize:   originalSize,
		Filename:       filename,
		OSType:         osType,
		MSDOSAttrs:     msdosAttrs,
		LastModified:   binary.LittleEndian.Uint32(base[13:17]),
		FileCRC:        fileCRC,
		ExtendedArea:   extendedArea,
		FirstHeaderLen: firstHeaderLen,
		ExtraHeaders:   extraHeaders,
	}
	copy(h.Compression[:], base[0:5])
	return h, nil
}
