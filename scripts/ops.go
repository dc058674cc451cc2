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

// ops 取代 Makefile 的跨平台任務腳本。
//
// Usage like:
//
//	go run ./scripts test
//	go run ./scripts pgo
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ANSI 顏色代碼（Windows 10+ 的 cmd/powershell 皆支援）
const (
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

func printColor(color, msg string) { fmt.Printf("%s%s%s\n", color, msg, colorReset) }

type task struct {
	desc string
	run  func() error
}

var tasks = map[string]task{
	"test":        {"go test ./... -cover -count=1，只列出 ok/FAIL", runTest},
	"test-detail": {"go test ./... -v -count=1，略過沒有測試檔的套件", runTestDetail},
	"sim":         {"bfs/dfs 各跑一百萬回合並輸出統計表", runSim},
	"curate":      {"以內建設定篩選 10000 筆 seed 到 build/seeds.json.zst", runCurate},
	"pgo":         {"以 cpu profile 產生 cmd/sim/default.pgo", runPGO},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	t, ok := tasks[os.Args[1]]
	if !ok {
		printColor(colorYellow, "Unknown task: "+os.Args[1])
		usage()
		os.Exit(1)
	}
	if err := t.run(); err != nil {
		printColor(colorRed, err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: go run ./scripts [task]")
	for name, t := range tasks {
		fmt.Printf("  %-12s %s\n", name, t.desc)
	}
}

// goCmd 直接把輸出接到終端
func goCmd(args ...string) error {
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go %s: %w", strings.Join(args, " "), err)
	}
	return nil
}

// goFiltered 合併 stdout/stderr 後逐行交給 filter，filter 回傳空字串代表略過
func goFiltered(filter func(line string) string, args ...string) error {
	cmd := exec.Command("go", args...)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start go %s: %w", args[0], err)
	}
	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		done <- err
	}()
	sc := bufio.NewScanner(pr)
	for sc.Scan() {
		if out := filter(sc.Text()); out != "" {
			fmt.Println(out)
		}
	}
	if err := <-done; err != nil {
		return fmt.Errorf("go %s finished with errors", args[0])
	}
	return nil
}

func colorize(line string) string {
	switch {
	case strings.HasPrefix(line, "ok"):
		return colorGreen + line + colorReset
	case strings.HasPrefix(line, "FAIL"):
		return colorRed + line + colorReset
	}
	return line
}

func runTest() error {
	printColor(colorGreen, "running tests")
	if err := goCmd("clean", "-testcache"); err != nil {
		return err
	}
	return goFiltered(func(line string) string {
		// 編譯錯誤不會以 ok/FAIL 開頭，仍要顯示
		if strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL") ||
			strings.Contains(line, "build failed") || strings.Contains(line, "setup failed") {
			return colorize(line)
		}
		return ""
	}, "test", "./...", "-cover", "-count=1")
}

func runTestDetail() error {
	printColor(colorGreen, "running tests (detail)")
	if err := goCmd("clean", "-testcache"); err != nil {
		return err
	}
	return goFiltered(func(line string) string {
		if strings.Contains(line, "[no test files]") {
			return ""
		}
		return colorize(line)
	}, "test", "./...", "-v", "-count=1")
}

func runSim() error {
	for _, p := range []string{"bfs", "dfs"} {
		if err := goCmd("run", "./cmd/sim", "-policy", p, "-rounds", "250000", "-worker", "4", "-seed", "1000"); err != nil {
			return err
		}
	}
	return nil
}

func runCurate() error {
	return goCmd("run", "./cmd/curate", "-count", "10000", "-out", filepath.Join("build", "seeds.json.zst"))
}

func runPGO() error {
	printColor(colorGreen, "profiling cmd/sim")
	if err := goCmd("run", "./cmd/sim", "-rounds", "2000000", "-worker", "4", "-p", "cpu"); err != nil {
		return err
	}
	src := filepath.Join("build", "profiling", "cpu.pprof")
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	dst := filepath.Join("cmd", "sim", "default.pgo")
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	printColor(colorGreen, "wrote "+dst)
	return nil
}
