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

// Package perf 以 runtime/pprof 包住命令列的主要工作，輸出可供 go tool pprof 與 PGO 使用的檔案。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/zintix-labs/chainlab/errs"
)

// DefaultDir pprof 檔案預設寫入路徑
const DefaultDir = "build/profiling"

// Mode profiling 種類
type Mode string

const (
	ModeOff    Mode = ""
	ModeCPU    Mode = "cpu"
	ModeHeap   Mode = "heap"
	ModeAllocs Mode = "allocs"
)

// ParseMode 不分大小寫；空字串代表不開 profiling
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeOff, ModeCPU, ModeHeap, ModeAllocs:
		return m, nil
	default:
		return ModeOff, errs.Warnf("unknown pprof mode %q (want cpu|heap|allocs)", s)
	}
}

// Run 依 mode 包住 exe 執行，profile 寫到 dir/<mode>.pprof。
// exe 的錯誤優先回傳；profile 寫檔失敗時回傳包裝後的錯誤。
//
// Usage like:
//
//	go run ./cmd/sim -p cpu
func Run(dir string, mode Mode, exe func() error) error {
	if mode == ModeOff {
		return exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(err, "create profiling dir")
	}
	path := filepath.Join(dir, string(mode)+".pprof")
	switch mode {
	case ModeCPU:
		return cpu(path, exe)
	case ModeHeap:
		return snapshot(path, "heap", exe)
	case ModeAllocs:
		return snapshot(path, "allocs", exe)
	default:
		return errs.Warnf("unknown pprof mode %q", mode)
	}
}

func cpu(path string, exe func() error) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create "+path)
	}
	defer func() { _ = f.Close() }()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	runErr := exe()
	pprof.StopCPUProfile()
	if runErr != nil {
		return runErr
	}
	return f.Close()
}

// snapshot 先跑完 exe 再寫一次快照；heap 快照前先 GC，讓 live objects 貼近最新狀態
func snapshot(path, name string, exe func() error) error {
	if err := exe(); err != nil {
		return err
	}
	if name == "heap" {
		runtime.GC()
	}
	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.NewFatal("no such profile: " + name)
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create "+path)
	}
	defer func() { _ = f.Close() }()
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+name+" profile")
	}
	return f.Close()
}
