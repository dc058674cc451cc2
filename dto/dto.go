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

// Package dto 定義對外輸出的 JSON 視圖，與內部可重用 buffer 脫鉤。
package dto

import (
	"cmp"
	"slices"

	"github.com/zintix-labs/chainlab/catalog"
	"github.com/zintix-labs/chainlab/corefmt"
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/sdk/buf"
	"github.com/zintix-labs/chainlab/sdk/core"
	"github.com/zintix-labs/chainlab/spec"
)

// Round 單一回合的對外結構
type Round struct {
	GameName  string     `json:"game"`
	Seed      int64      `json:"seed"`
	Policy    string     `json:"policy"`
	Bet       int        `json:"bet"`
	TotalWin  int        `json:"win"`
	WildMode  bool       `json:"wild_mode"`
	WildCount int        `json:"wild_count"`
	Grid      [][]int16  `json:"grid"`
	Symbols   [][]string `json:"symbols"`
	Strikes   []Cell     `json:"strikes,omitempty"`
	Exhausted int        `json:"exhausted,omitempty"`
	Chains    []Chain    `json:"chains,omitempty"`
	State     RoundState `json:"state"`
}

// Cell 格子位置，Index 為列優先索引
type Cell struct {
	Index int `json:"index"`
	Row   int `json:"row"`
	Col   int `json:"col"`
}

// Chain 派彩連鎖
type Chain struct {
	Symbol     int16  `json:"symbol"`
	SymbolName string `json:"symbol_name"`
	Length     int    `json:"length"`
	BasePay    int    `json:"base_pay"`
	Mult       int    `json:"mult"`
	WildMult   int    `json:"wild_mult"`
	Win        int    `json:"win"`
	Path       []Cell `json:"path"`
	Anchor     *Cell  `json:"anchor,omitempty"`
}

// RoundState PRNG 前後狀態（base64url），可用來稽核回放
type RoundState struct {
	StartB64U string `json:"start_b64u"`
	AfterB64U string `json:"after_b64u,omitempty"`
}

// NewRound 轉換 RoundResult；after 為回合結束時的 PRNG 快照，可為 nil
func NewRound(rr *buf.RoundResult, gs *spec.GameSetting, policy string, after []byte) (Round, error) {
	if rr == nil {
		return Round{}, errs.NewWarn("round result is nil")
	}
	if gs == nil {
		return Round{}, errs.NewWarn("game setting is nil")
	}
	start, err := core.NewJavaRandom(rr.Seed).Snapshot()
	if err != nil {
		return Round{}, errs.Wrap(err, "snapshot start state")
	}

	out := Round{
		GameName:  gs.GameName,
		Seed:      rr.Seed,
		Policy:    policy,
		Bet:       gs.Bet,
		TotalWin:  rr.TotalWin,
		WildMode:  rr.WildMode,
		WildCount: rr.WildCount,
		Exhausted: rr.Exhausted,
		State:     RoundState{StartB64U: corefmt.EncodeBase64URL(start)},
	}
	if after != nil {
		out.State.AfterB64U = corefmt.EncodeBase64URL(after)
	}

	out.Grid = make([][]int16, rr.Rows)
	out.Symbols = make([][]string, rr.Rows)
	for r := range rr.Rows {
		out.Grid[r] = make([]int16, rr.Cols)
		out.Symbols[r] = make([]string, rr.Cols)
		for c := range rr.Cols {
			s := rr.Grid[r*rr.Cols+c]
			out.Grid[r][c] = s
			out.Symbols[r][c] = gs.SymbolName(s)
		}
	}

	if len(rr.Strikes) > 0 {
		out.Strikes = make([]Cell, len(rr.Strikes))
		for i, idx := range rr.Strikes {
			out.Strikes[i] = cellOf(idx, rr.Cols)
		}
	}
	if len(rr.Chains) > 0 {
		out.Chains = make([]Chain, len(rr.Chains))
		for i, cw := range rr.Chains {
			out.Chains[i] = newChain(cw, gs, rr.Cols)
		}
	}
	return out, nil
}

func newChain(cw buf.ChainWin, gs *spec.GameSetting, cols int) Chain {
	ch := Chain{
		Symbol:     cw.Symbol,
		SymbolName: gs.SymbolName(cw.Symbol),
		Length:     cw.Length,
		BasePay:    cw.BasePay,
		Mult:       cw.Mult,
		WildMult:   cw.WildMult,
		Win:        cw.Win,
		Path:       make([]Cell, len(cw.Path)),
	}
	for i, idx := range cw.Path {
		ch.Path[i] = cellOf(idx, cols)
	}
	if cw.Anchor != buf.NoAnchor {
		a := cellOf(cw.Anchor, cols)
		ch.Anchor = &a
	}
	return ch
}

func cellOf(idx, cols int) Cell {
	return Cell{Index: idx, Row: idx / cols, Col: idx % cols}
}

// CatalogInfo 目錄總覽
type CatalogInfo struct {
	Bet     int                 `json:"bet"`
	Summary catalog.Summary     `json:"summary"`
	Top     []catalog.FreqEntry `json:"top,omitempty"` // 出現次數由多到少
}

// NewCatalogInfo 產生目錄總覽，top 為列出的高頻 win 值數量
func NewCatalogInfo(c *catalog.Catalog, bet int, top int) CatalogInfo {
	info := CatalogInfo{Bet: bet, Summary: catalog.Summarize(c, bet)}
	freq := c.Frequencies()
	slices.SortStableFunc(freq, func(a, b catalog.FreqEntry) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if n := min(max(top, 0), len(freq)); n > 0 {
		info.Top = freq[:n]
	}
	return info
}

// RecordsPage 目錄分頁
type RecordsPage struct {
	Offset  int                  `json:"offset"`
	Limit   int                  `json:"limit"`
	Total   int                  `json:"total"`
	Records []catalog.SeedRecord `json:"records"`
}

func NewRecordsPage(c *catalog.Catalog, offset, limit int) RecordsPage {
	recs := c.Page(offset, limit)
	if recs == nil {
		recs = []catalog.SeedRecord{}
	}
	return RecordsPage{Offset: offset, Limit: limit, Total: c.Len(), Records: recs}
}

// RecordReplay 目錄第 Index 筆回放的結果，Match 表示回放贏分與紀錄一致
type RecordReplay struct {
	Index  int                `json:"index"`
	Record catalog.SeedRecord `json:"record"`
	Match  bool               `json:"match"`
	Round  Round              `json:"round"`
}
