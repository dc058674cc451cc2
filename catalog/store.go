// Copyright 2025 Zintix Labs
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

package catalog

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/chainlab/errs"
)

// Save 把所有紀錄寫成一個 JSON 陣列 [{"seed":..,"win":..},...]
func (c *Catalog) Save(w io.Writer) error {
	b, err := json.Marshal(c.records)
	if err != nil {
		return errs.Wrap(err, "catalog save: marshal json")
	}
	if _, err := w.Write(b); err != nil {
		return errs.Wrap(err, "catalog save: write")
	}
	return nil
}

// Load 讀取 JSON 陣列並重建目錄
func Load(r io.Reader) (*Catalog, error) {
	var rs []SeedRecord
	if err := json.NewDecoder(r).Decode(&rs); err != nil {
		return nil, errs.Wrap(err, "catalog load: decode json")
	}
	return FromRecords(rs), nil
}

// SaveFile 寫入檔案；副檔名為 .zst 時以 zstd 壓縮
func (c *Catalog) SaveFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrap(err, "catalog save: mkdir output dir")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "catalog save: create "+path)
	}
	defer func() { _ = f.Close() }()

	if !isZstd(path) {
		if err := c.Save(f); err != nil {
			return err
		}
		return f.Close()
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return errs.Wrap(err, "catalog save: create zstd writer")
	}
	if err := c.Save(zw); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return errs.Wrap(err, "catalog save: close zstd writer")
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(err, "catalog save: close "+path)
	}
	return nil
}

// LoadFile 讀取 SaveFile 寫出的檔案
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, "catalog load: open "+path)
	}
	defer func() { _ = f.Close() }()

	if !isZstd(path) {
		return Load(f)
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, errs.Wrap(err, "catalog load: create zstd reader")
	}
	defer zr.Close()
	return Load(zr)
}

func isZstd(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zst")
}
