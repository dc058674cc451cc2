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

// Package slot 負責解析單一回合：生成盤面、判定模式、追蹤連鎖並累計派彩。
package slot

import (
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/sdk/buf"
	"github.com/zintix-labs/chainlab/sdk/calc"
	"github.com/zintix-labs/chainlab/sdk/core"
	"github.com/zintix-labs/chainlab/sdk/gen"
	"github.com/zintix-labs/chainlab/sdk/sampler"
	"github.com/zintix-labs/chainlab/spec"
)

// RoundSimulator 是回合解析的工作站。
//
// 你可以把它理解成：
//   - **GridGenerator**：以 seed 重設 PRNG 並產生盤面
//   - **Tracer**：依策略（BFS/DFS）追蹤連鎖
//   - **PayTable**：查表算分
//   - **RoundResult**：本局可寫的結果 buffer（可重用）
//
// 一個回合的流程：
//  1. Gen(seed) 生成盤面，PRNG 停在盤面之後的位置。
//  2. wild 數量 >= min_wilds：進入 wild 模式，依掃描順序以每個尚未使用的 wild 為錨點，
//     從它每個未使用的非 wild 鄰格追蹤，取最長者；可派彩則乘上 wild 加成並標記使用。
//  3. 否則為閃電模式：依序打 strikes_per_spin 道閃電，每道以 NextInt(rows)、NextInt(cols)
//     抽落點，落在已用格就重抽，嘗試次數達上限則放棄該道閃電。
//
// ### 合約
//   - **非並行安全**：一個 RoundSimulator 只能在單一 goroutine 使用，並行請各自建立。
//   - **同一 seed 必得同一結果**：回合之間不保留任何狀態。
//   - Play 回傳的 *buf.RoundResult 是可重用 buffer，下一次 Play 會覆寫，要保留請 Clone。
type RoundSimulator struct {
	gs     *spec.GameSetting
	gen    *gen.GridGenerator
	tracer calc.Tracer
	pay    *calc.PayTable

	minWilds    int
	wildMult    int
	strikes     int
	maxAttempts int

	round  round
	result *buf.RoundResult
}

// round 單一回合的暫存狀態，每次開局重置
type round struct {
	grid      *gen.Grid
	used      calc.CellSet
	wilds     []int
	exhausted int
	total     int
}

// NewRoundSimulator 依遊戲設定與追蹤策略建立回合模擬器，gs 需已通過驗證。
func NewRoundSimulator(gs *spec.GameSetting, tracer calc.Tracer) (*RoundSimulator, error) {
	return NewRoundSimulatorWithPRNG(gs, tracer, core.Default())
}

// NewRoundSimulatorWithPRNG 允許替換 PRNG 工廠（測試或稽核用）
func NewRoundSimulatorWithPRNG(gs *spec.GameSetting, tracer calc.Tracer, factory core.PRNGFactory) (*RoundSimulator, error) {
	if gs == nil || tracer == nil || factory == nil {
		return nil, errs.NewFatal("round simulator: nil dependency")
	}
	if gs.Grid.Size() > spec.MaxGridCells {
		return nil, errs.Invalidf("round simulator: grid has %d cells, limit is %d", gs.Grid.Size(), spec.MaxGridCells)
	}
	lut, err := sampler.BuildQuantizedLUT(gs.Symbols.Weights, gs.Symbols.Scale)
	if err != nil {
		return nil, errs.Wrap(err, "round simulator: build lut")
	}
	smp, err := sampler.NewSymbolSampler(lut, gs.Symbols.WildProb, spec.WildSymbol)
	if err != nil {
		return nil, errs.Wrap(err, "round simulator: build sampler")
	}
	pay, err := calc.NewPayTable(gs)
	if err != nil {
		return nil, errs.Wrap(err, "round simulator: build pay table")
	}
	geo := gen.NewGeometry(gs.Grid.Rows, gs.Grid.Cols)
	rs := &RoundSimulator{
		gs:          gs,
		gen:         gen.NewGridGenerator(core.New(factory.New(0)), geo, smp),
		tracer:      tracer,
		pay:         pay,
		minWilds:    gs.WildMode.MinWilds,
		wildMult:    gs.WildMode.Multiplier,
		strikes:     gs.Lightning.StrikesPerSpin,
		maxAttempts: gs.Lightning.MaxStrikeAttempts,
		round:       round{wilds: make([]int, 0, geo.Size())},
		result:      buf.NewRoundResult(gs.Grid.Rows, gs.Grid.Cols),
	}
	return rs, nil
}

// Play 解析一個回合並回傳完整結果（可重用 buffer）
func (rs *RoundSimulator) Play(seed int64) *buf.RoundResult {
	rr := rs.result
	rr.Reset(seed)
	rs.run(seed, rr)
	rr.SetGrid(rs.round.grid.Cells)
	rr.WildCount = len(rs.round.wilds)
	rr.WildMode = rr.WildCount >= rs.minWilds
	rr.Exhausted = rs.round.exhausted
	return rr
}

// Win 只回傳總贏分，不記錄細項（篩選熱路徑）
func (rs *RoundSimulator) Win(seed int64) int {
	rs.run(seed, nil)
	return rs.round.total
}

// Tracer 回傳使用中的追蹤器
func (rs *RoundSimulator) Tracer() calc.Tracer {
	return rs.tracer
}

// PayTable 回傳賠付表
func (rs *RoundSimulator) PayTable() *calc.PayTable {
	return rs.pay
}

// Snapshot 回傳上一次 Play 結束時的 PRNG 狀態，供稽核比對
func (rs *RoundSimulator) Snapshot() ([]byte, error) {
	return rs.gen.Core().Snapshot()
}

// Setting 回傳遊戲設定（唯讀）
func (rs *RoundSimulator) Setting() *spec.GameSetting {
	return rs.gs
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

// run rr 為 nil 時不記錄細項
func (rs *RoundSimulator) run(seed int64, rr *buf.RoundResult) {
	rd := &rs.round
	rd.grid = rs.gen.Gen(seed)
	rd.used = 0
	rd.exhausted = 0
	rd.total = 0
	rd.wilds = rd.wilds[:0]
	for i, s := range rd.grid.Cells {
		if s == spec.WildSymbol {
			rd.wilds = append(rd.wilds, i)
		}
	}

	if len(rd.wilds) >= rs.minWilds {
		rs.resolveWilds(rr)
		return
	}
	rs.resolveStrikes(rr)
}

// resolveWilds wild 模式：錨點 wild 與連鎖格一起標記為已用
func (rs *RoundSimulator) resolveWilds(rr *buf.RoundResult) {
	rd := &rs.round
	g := rd.grid
	for _, w := range rd.wilds {
		if rd.used.Has(w) {
			continue
		}
		var best calc.Chain
		for _, n := range g.Neighbors(w) {
			if rd.used.Has(n) || g.Cells[n] == spec.WildSymbol {
				continue
			}
			if c := rs.tracer.Trace(g, n, rd.used); c.Length > best.Length {
				best = c
			}
		}
		if !best.Eligible() {
			continue
		}
		win := rs.pay.ChainWin(best, rs.wildMult)
		rd.total += win
		rd.used.Add(w)
		rd.used.AddAll(best.Path)
		if rr != nil {
			rr.AppendChain(rs.chainWin(best, rs.wildMult, win, w))
		}
	}
}

// resolveStrikes 閃電模式
func (rs *RoundSimulator) resolveStrikes(rr *buf.RoundResult) {
	rd := &rs.round
	c := rs.gen.Core()
	for range rs.strikes {
		start, ok := rs.placeStrike(c)
		if !ok {
			rd.exhausted++
			continue
		}
		if rr != nil {
			rr.Strikes = append(rr.Strikes, start)
		}
		ch := rs.tracer.Trace(rd.grid, start, rd.used)
		if !ch.Eligible() {
			continue
		}
		win := rs.pay.ChainWin(ch, 1)
		rd.total += win
		rd.used.AddAll(ch.Path)
		if rr != nil {
			rr.AppendChain(rs.chainWin(ch, 1, win, buf.NoAnchor))
		}
	}
}

// placeStrike 嘗試次數達上限即放棄，即使最後一次抽到的是未用格
func (rs *RoundSimulator) placeStrike(c *core.Core) (int, bool) {
	rd := &rs.round
	rows, cols := rd.grid.Rows, rd.grid.Cols
	for attempts := 1; ; attempts++ {
		r := c.NextInt(rows)
		col := c.NextInt(cols)
		if attempts >= rs.maxAttempts {
			return -1, false
		}
		if idx := r*cols + col; !rd.used.Has(idx) {
			return idx, true
		}
	}
}

func (rs *RoundSimulator) chainWin(c calc.Chain, bonus, win, anchor int) buf.ChainWin {
	return buf.ChainWin{
		Symbol:   c.Symbol,
		Length:   c.Length,
		BasePay:  rs.pay.BasePay(c.Symbol, c.Length),
		Mult:     rs.pay.Multiplier(c.Length),
		WildMult: bonus,
		Win:      win,
		Path:     c.Path,
		Anchor:   anchor,
	}
}
