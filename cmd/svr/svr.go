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

// svr 啟動 HTTP 服務：回放、模擬與目錄查詢。
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zintix-labs/chainlab"
	"github.com/zintix-labs/chainlab/catalog"
	"github.com/zintix-labs/chainlab/configs"
	"github.com/zintix-labs/chainlab/sdk/calc"
	"github.com/zintix-labs/chainlab/server"
	"github.com/zintix-labs/chainlab/server/logger"
	"github.com/zintix-labs/chainlab/server/svrcfg"
)

func main() {
	sCfg, closeLog, err := loadConfigFromFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	err = server.Run(sCfg)
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

type config struct {
	Addr     string
	LogMode  string
	PoolSize int
	Config   string
	Catalog  string
	Policy   string
	Verify   bool
	Shutdown time.Duration
}

func loadConfigFromFlags(args []string) (*svrcfg.SvrCfg, func(), error) {
	cfg := new(config)
	fset := flag.NewFlagSet("svr", flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "addr", ":5808", "listen address")
	fset.StringVar(&cfg.LogMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	fset.IntVar(&cfg.PoolSize, "buf", 3, "round simulators per policy")
	fset.StringVar(&cfg.Config, "config", "", "game setting yaml/json path (default: embedded)")
	fset.StringVar(&cfg.Catalog, "catalog", "", "curated catalog (.json or .json.zst)")
	fset.StringVar(&cfg.Policy, "policy", "bfs", "default chain policy: bfs|dfs")
	fset.BoolVar(&cfg.Verify, "verify", false, "replay the whole catalog before serving")
	fset.DurationVar(&cfg.Shutdown, "shutdown-timeout", 5*time.Second, "graceful shutdown timeout")
	if err := fset.Parse(args); err != nil {
		return nil, nil, err
	}

	mode, err := logger.ParseLogMode(cfg.LogMode)
	if err != nil {
		return nil, nil, err
	}
	policy, err := calc.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, nil, err
	}
	var lab *chainlab.Lab
	if cfg.Config == "" {
		lab, err = chainlab.NewFromFS(configs.FS, configs.GameFile, policy)
	} else {
		abs, aerr := filepath.Abs(cfg.Config)
		if aerr != nil {
			return nil, nil, aerr
		}
		lab, err = chainlab.NewFromFS(os.DirFS(filepath.Dir(abs)), filepath.Base(abs), policy)
	}
	if err != nil {
		return nil, nil, err
	}
	var cat *catalog.Catalog
	if cfg.Catalog != "" {
		if cat, err = catalog.LoadFile(cfg.Catalog); err != nil {
			return nil, nil, err
		}
	}

	log, ah := logger.NewAsync(4096, mode)
	sCfg := &svrcfg.SvrCfg{
		Log:             log,
		Addr:            cfg.Addr,
		PoolSize:        cfg.PoolSize,
		ShutdownTimeout: cfg.Shutdown,
		Lab:             lab,
		Catalog:         cat,
		VerifyCatalog:   cfg.Verify,
	}
	return sCfg, ah.Close, nil
}
