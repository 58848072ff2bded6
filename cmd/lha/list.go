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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rodaine/table"
	"github.com/sirupsen/logrus"

	"github.com/kosumosu/go-delharc"
)

type list struct {
	path string
}

func (l *list) Run() error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("%w: opening file: %w", ErrLha, err)
	}
	defer f.Close()

	z := delharc.NewReader(f)

	tbl := table.New("level", "method", "date", "time", "packed", "size", "ratio", "crc", "name")
	for {
		hdr, err := z.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: reading archive: %w", ErrLha, err)
		}

		logrus.Debugf("entry %q: level %d, os type %#02x, %d extra header bytes",
			hdr.ParsePathname(), hdr.Level, hdr.OSType, len(hdr.ExtraHeaders))

		ratio := "-----"
		if hdr.OriginalSize > 0 {
			ratio = fmt.Sprintf("%.1f%%", float64(hdr.CompressedSize)/float64(hdr.OriginalSize)*100)
		}
		tbl.AddRow(
			hdr.Level,
			hdr.Method(),
			hdr.ModTime().Format("2006-01-02"),
			hdr.ModTime().Format("15:04:05"),
			hdr.CompressedSize,
			hdr.OriginalSize,
			ratio,
			fmt.Sprintf("%04x", hdr.FileCRC),
			hdr.ParsePathname(),
		)
	}
	tbl.Print()

	return nil
}
