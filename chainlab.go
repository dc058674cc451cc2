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

// Package chainlab 提供連鎖閃電回合模擬的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Lab 把三個必需的地基組合起來：
//  1. GameSetting：已驗證的遊戲設定（盤面、權重、閃電、wild 模式、賠付表）。
//  2. Policy：預設的連鎖追蹤策略（bfs 雲狀擴散 / dfs 最長路徑）。
//  3. PRNGFactory：亂數核心工廠，保證同一 seed 必得同一回合。
//
// 由 Lab 可以建出：
//   - RoundSimulator：單一 goroutine 使用的回合工作站。
//   - Simulator：以連續 seed 做大量模擬並產出統計報表。
//   - Curator：依目標 RTP 篩選 seed 目錄。
//   - Runtime：對外服務用的模擬器池（回放、模擬、目錄查詢）。
//
// Lab 本身不綁定任何檔案路徑：設定檔來源一律以 fs.FS 注入。
package chainlab

import (
	"io/fs"

	"github.com/zintix-labs/chainlab/catalog"
	"github.com/zintix-labs/chainlab/dto"
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/optimizer"
	"github.com/zintix-labs/chainlab/sdk/calc"
	"github.com/zintix-labs/chainlab/sdk/core"
	"github.com/zintix-labs/chainlab/sdk/slot"
	"github.com/zintix-labs/chainlab/spec"
)

// Lab 組裝器，建立後唯讀，可被多個 goroutine 共用
type Lab struct {
	gs      *spec.GameSetting
	policy  calc.Policy
	factory core.PRNGFactory
}

// New 以已載入的設定建立 Lab，會再跑一次驗證
func New(gs *spec.GameSetting, policy calc.Policy) (*Lab, error) {
	return NewWithPRNG(gs, policy, core.Default())
}

// NewWithPRNG 與 New 相同，但由呼叫端指定 PRNG 工廠
func NewWithPRNG(gs *spec.GameSetting, policy calc.Policy, factory core.PRNGFactory) (*Lab, error) {
	if gs == nil {
		return nil, errs.NewFatal("game setting required")
	}
	if factory == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if err := gs.Init(); err != nil {
		return nil, err
	}
	if _, err := calc.NewTracer(policy, spec.WildSymbol); err != nil {
		return nil, err
	}
	return &Lab{gs: gs, policy: policy, factory: factory}, nil
}

// NewFromFS 由 fs.FS 內的設定檔（.yaml/.yml/.json）建立 Lab
func NewFromFS(fsys fs.FS, name string, policy calc.Policy) (*Lab, error) {
	gs, err := spec.LoadGameSetting(fsys, name)
	if err != nil {
		return nil, err
	}
	return New(gs, policy)
}

func (l *Lab) Setting() *spec.GameSetting {
	return l.gs
}

func (l *Lab) Policy() calc.Policy {
	return l.policy
}

// NewRoundSimulator 以 policy 建立一個新的回合工作站（非並行安全）
func (l *Lab) NewRoundSimulator(policy calc.Policy) (*slot.RoundSimulator, error) {
	tr, err := calc.NewTracer(policy, spec.WildSymbol)
	if err != nil {
		return nil, err
	}
	return slot.NewRoundSimulatorWithPRNG(l.gs, tr, l.factory)
}

// Replay 以預設策略回放 seed，回傳可外發的對外結構
func (l *Lab) Replay(seed int64) (dto.Round, error) {
	return l.ReplayWith(seed, l.policy)
}

// ReplayWith 以指定策略回放 seed
func (l *Lab) ReplayWith(seed int64, policy calc.Policy) (dto.Round, error) {
	rs, err := l.NewRoundSimulator(policy)
	if err != nil {
		return dto.Round{}, err
	}
	return playRound(rs, seed)
}

// NewSimulator 建立以連續 seed 模擬的統計器
func (l *Lab) NewSimulator(policy calc.Policy) (*Simulator, error) {
	if _, err := calc.NewTracer(policy, spec.WildSymbol); err != nil {
		return nil, err
	}
	return newSimulator(l, policy), nil
}

// NewCurator 建立篩選器；策略取自 set.Policy
func (l *Lab) NewCurator(set *spec.CurateSetting, opts ...optimizer.Option) (*optimizer.Curator, error) {
	return optimizer.New(l.gs, set, opts...)
}

// VerifyCatalog 以 policy 逐筆回放目錄，回傳第一筆不一致
func (l *Lab) VerifyCatalog(c *catalog.Catalog, policy calc.Policy) error {
	if c == nil {
		return errs.NewWarn("catalog is nil")
	}
	rs, err := l.NewRoundSimulator(policy)
	if err != nil {
		return err
	}
	return catalog.Verify(c, rs.Win)
}

// BuildRuntime 建立對外服務用的 Runtime：bfs/dfs 各一個大小為 poolSize 的模擬器池。
// cat 可為 nil，代表不提供目錄相關查詢。
func (l *Lab) BuildRuntime(poolSize int, cat *catalog.Catalog) (*Runtime, error) {
	rt := &Runtime{
		lab:      l,
		cat:      cat,
		pools:    make(map[calc.Policy]*SimulatorPool, 2),
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")
	for _, p := range []calc.Policy{calc.PolicyCloud, calc.PolicyLongest} {
		sp, err := newSimulatorPool(rt.poolSize, l, p)
		if err != nil {
			return nil, err
		}
		rt.pools[p] = sp
	}
	return rt, nil
}

func playRound(rs *slot.RoundSimulator, seed int64) (dto.Round, error) {
	rr := rs.Play(seed)
	after, err := rs.Snapshot()
	if err != nil {
		return dto.Round{}, errs.Wrap(err, "snapshot prng")
	}
	return dto.NewRound(rr, rs.Setting(), rs.Tracer().Policy().String(), after)
}
