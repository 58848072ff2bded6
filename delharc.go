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

// Package delharc parses headers of LHA/LZH archive files.
// LHA is a legacy archive format with four mutually incompatible header
// layouts (levels 0 to 3). The parser accepts all four, validates their
// length and checksum disciplines, and exposes the per-entry metadata
// together with the raw extra header records.
// See: https://web.archive.org/web/20021005080911/http://www.osirusoft.com/joejared/lzhformat.html
//
// Unless otherwise informed clients should not assume implementations in this
// package are safe for parallel execution.
package delharc
