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
	"os"
	"path/filepath"

	"github.com/zintix-labs/chainlab"
	"github.com/zintix-labs/chainlab/configs"
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/sdk/calc"
	"github.com/zintix-labs/chainlab/sdk/perf"
	"github.com/zintix-labs/chainlab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type config struct {
	config string
	policy calc.Policy
	worker int
	rounds int
	seed   int64
	format string
	pprof  perf.Mode
}

func bindVar(args []string) (*config, error) {
	cfg := new(config)
	fset := flag.NewFlagSet("sim", flag.ContinueOnError)
	var policy, pmode string
	fset.StringVar(&cfg.config, "config", "", "game setting yaml/json path (default: embedded chain_lightning.yaml)")
	fset.StringVar(&policy, "policy", "bfs", "chain policy: bfs|dfs")
	fset.IntVar(&cfg.worker, "worker", 1, "number of workers")
	fset.IntVar(&cfg.rounds, "rounds", 1_000_000, "rounds per worker")
	fset.Int64Var(&cfg.seed, "seed", -1, "first seed; negative means random")
	fset.StringVar(&cfg.format, "format", "table", "output: table|json|yaml")
	fset.StringVar(&pmode, "p", "", "pprof: '', cpu, heap, allocs")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	p, err := calc.ParsePolicy(policy)
	if err != nil {
		return nil, err
	}
	cfg.policy = p
	if cfg.pprof, err = perf.ParseMode(pmode); err != nil {
		return nil, err
	}
	if cfg.worker < 1 {
		return nil, errs.NewWarn("value err : worker must > 0")
	}
	if cfg.rounds < 1 {
		return nil, errs.NewWarn("value err : rounds must > 0")
	}
	switch cfg.format {
	case "table", "json", "yaml":
	default:
		return nil, errs.Warnf("value err : unknown format %q", cfg.format)
	}
	if cfg.seed < 0 {
		if cfg.seed, err = chainlab.RandomSeed(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (cfg *config) lab() (*chainlab.Lab, error) {
	if cfg.config == "" {
		return chainlab.NewFromFS(configs.FS, configs.GameFile, cfg.policy)
	}
	abs, err := filepath.Abs(cfg.config)
	if err != nil {
		return nil, errs.Wrap(err, "resolve config path")
	}
	return chainlab.NewFromFS(os.DirFS(filepath.Dir(abs)), filepath.Base(abs), cfg.policy)
}

func (cfg *config) execute() error {
	lab, err := cfg.lab()
	if err != nil {
		return err
	}
	sim, err := lab.NewSimulator(cfg.policy)
	if err != nil {
		return err
	}
	table := cfg.format == "table"
	if table {
		green := "\033[1;32m"
		reset := "\033[0m"
		p := message.NewPrinter(language.English)
		p.Printf("%s[GAME:%s] [POLICY:%s] [WORKERS:%d] [ROUNDS:%d] [SEED:%d]%s\n",
			green, sim.GameName, cfg.policy, cfg.worker, cfg.worker*cfg.rounds, cfg.seed, reset)
	}
	st, used, err := sim.SimMP(context.Background(), cfg.seed, cfg.rounds, cfg.worker, table)
	if err != nil {
		return err
	}
	switch cfg.format {
	case "json":
		return st.WriteWith(os.Stdout, &stats.JsonStatReportRender{})
	case "yaml":
		return st.WriteWith(os.Stdout, &stats.YAMLStatReportRender{})
	default:
		st.StdOut(used)
		return nil
	}
}
