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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/zintix-labs/chainlab"
	"github.com/zintix-labs/chainlab/catalog"
	"github.com/zintix-labs/chainlab/configs"
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/optimizer"
	"github.com/zintix-labs/chainlab/sdk/calc"
	"github.com/zintix-labs/chainlab/server/logger"
	"github.com/zintix-labs/chainlab/spec"
	"gopkg.in/yaml.v3"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

type options struct {
	gameFile   string
	curateFile string
	count      int
	policy     string
	out        string
	seed       int64
	workers    int
	maxScans   int64
	logMode    string
	progress   bool
}

// parseArgs 旗標優先解析，其後的位置參數 count policy [output] 覆寫對應欄位
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	o := new(options)
	fset := flag.NewFlagSet("curate", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.StringVar(&o.gameFile, "config", "", "game setting yaml/json path (default: embedded)")
	fset.StringVar(&o.curateFile, "curate", "", "curate setting yaml path (default: embedded)")
	fset.IntVar(&o.count, "count", 0, "catalog size; 0 keeps the curate setting")
	fset.StringVar(&o.policy, "policy", "", "chain policy bfs|dfs; empty keeps the curate setting")
	fset.StringVar(&o.out, "out", "", "output file (.json or .json.zst)")
	fset.Int64Var(&o.seed, "seed", 0, "base seed; 0 keeps the curate setting (0 there means now)")
	fset.IntVar(&o.workers, "workers", 0, "parallel workers; 0 keeps the curate setting")
	fset.Int64Var(&o.maxScans, "max-scans", 0, "scan limit; 0 keeps the curate setting")
	fset.StringVar(&o.logMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	fset.BoolVar(&o.progress, "pb", true, "show progress bar")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	rest := fset.Args()
	if len(rest) > 3 {
		return nil, errs.NewWarn("usage: curate [flags] [count policy [output]]")
	}
	if len(rest) >= 1 {
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return nil, errs.Warnf("count must be an integer, got %q", rest[0])
		}
		o.count = n
	}
	if len(rest) >= 2 {
		o.policy = rest[1]
	}
	if len(rest) == 3 {
		o.out = rest[2]
	}
	if o.policy != "" {
		if _, err := calc.ParsePolicy(o.policy); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// curateSetting 讀入設定後以命令列覆寫；base_seed 為 0 時取當下 Unix 秒
func (o *options) curateSetting(now time.Time) (*spec.CurateSetting, error) {
	var (
		cs  *spec.CurateSetting
		err error
	)
	if o.curateFile == "" {
		cs, err = spec.LoadCurateSetting(configs.FS, configs.CurateFile)
	} else {
		dir, base := splitPath(o.curateFile)
		cs, err = spec.LoadCurateSetting(os.DirFS(dir), base)
	}
	if err != nil {
		return nil, err
	}
	if o.count > 0 {
		cs.Count = o.count
		// 掃描上限跟著筆數重算
		cs.MaxScans = 0
	}
	if o.policy != "" {
		cs.Policy = o.policy
	}
	if o.out != "" {
		cs.Output = o.out
	}
	if o.seed != 0 {
		cs.BaseSeed = o.seed
	}
	if o.workers > 0 {
		cs.Workers = o.workers
	}
	if o.maxScans > 0 {
		cs.MaxScans = o.maxScans
	}
	if cs.BaseSeed == 0 {
		cs.BaseSeed = now.Unix()
	}
	if err := cs.Init(); err != nil {
		return nil, err
	}
	return cs, nil
}

func (o *options) lab(policy string) (*chainlab.Lab, error) {
	p, err := calc.ParsePolicy(policy)
	if err != nil {
		return nil, err
	}
	if o.gameFile == "" {
		return chainlab.NewFromFS(configs.FS, configs.GameFile, p)
	}
	dir, base := splitPath(o.gameFile)
	return chainlab.NewFromFS(os.DirFS(dir), base, p)
}

func splitPath(p string) (dir, base string) {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return filepath.Dir(p), filepath.Base(p)
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseArgs(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		if _, ok := errs.AsErr(err); ok {
			return exitFail
		}
		return exitUsage
	}
	mode, err := logger.ParseLogMode(o.logMode)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	log, ah := logger.NewAsyncTo(stderr, 1024, mode)
	defer ah.Close()

	cs, err := o.curateSetting(time.Now())
	if err != nil {
		log.Error("curate.setting", slog.Any("err", err))
		return exitFail
	}
	lab, err := o.lab(cs.Policy)
	if err != nil {
		log.Error("curate.lab", slog.Any("err", err))
		return exitFail
	}
	cur, err := lab.NewCurator(cs, optimizer.WithLogger(log), optimizer.WithProgress(o.progress))
	if err != nil {
		log.Error("curate.new", slog.Any("err", err))
		return exitFail
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cat, rep, err := cur.Run(ctx)
	if err != nil {
		// 先排空日誌，部分報告才不會和日誌交錯
		ah.Close()
		partial := struct {
			Error  string            `yaml:"error"`
			Report *optimizer.Report `yaml:"report"`
		}{err.Error(), rep}
		enc := yaml.NewEncoder(stderr)
		enc.SetIndent(2)
		_ = enc.Encode(partial)
		_ = enc.Close()
		return exitFail
	}
	if err := cat.SaveFile(cs.Output); err != nil {
		log.Error("curate.save", slog.String("output", cs.Output), slog.Any("err", err))
		return exitFail
	}

	out := struct {
		Output  string            `yaml:"output"`
		Report  *optimizer.Report `yaml:"report"`
		Summary catalog.Summary   `yaml:"summary"`
	}{cs.Output, rep, catalog.Summarize(cat, lab.Setting().Bet)}
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		log.Error("curate.report", slog.Any("err", err))
		return exitFail
	}
	_ = enc.Close()
	return exitOK
}
