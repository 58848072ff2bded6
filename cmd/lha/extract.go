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
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/kosumosu/go-delharc"
)

type extract struct {
	path  string
	force bool
}

// Run extracts the archive's entries into the current directory. Entry paths
// are already sanitized relative paths, so the output cannot escape the
// destination. Only stored (uncompressed) entries are supported.
func (x *extract) Run() error {
	from, err := os.Open(x.path)
	if err != nil {
		return fmt.Errorf("%w: opening file: %w", ErrLha, err)
	}
	defer from.Close()

	z := delharc.NewReader(from)
	for {
		hdr, err := z.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: reading archive: %w", ErrLha, err)
		}

		name := hdr.ParsePathname()
		if name == "" {
			logrus.Debugf("skipping unnamed entry")
			continue
		}

		if hdr.IsDirectory() {
			if err := os.MkdirAll(name, 0o755); err != nil {
				return fmt.Errorf("%w: creating directory: %w", ErrLha, err)
			}
			continue
		}

		if !hdr.StoredOnly() {
			return fmt.Errorf("%w: compression method %q", ErrUnsupported, hdr.Method())
		}

		if err := x.writeFile(name, z); err != nil {
			return err
		}
		logrus.Infof("extracted %q (%d bytes)", name, hdr.OriginalSize)
	}
}

func (x *extract) writeFile(name string, r io.Reader) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: creating directory: %w", ErrLha, err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !x.force {
		// Do not overwrite existing files unless --force is specified.
		flags |= os.O_EXCL
	}
	dst, err := os.OpenFile(name, flags, 0o644)
	if err != nil {
		return fmt.Errorf("%w: opening target file: %w", ErrLha, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("%w: extracting %q: %w", ErrLha, name, err)
	}
	return nil
}
