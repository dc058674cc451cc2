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

// Package spec 定義遊戲與篩選流程的設定結構，並負責載入與驗證。
//
// 所有驗證都發生在第一個回合開始之前，驗證失敗一律回傳 errs.Fatal 等級錯誤
// （可用 errors.Is 比對 errs.ErrInvalidConfig）。
package spec

import (
	"fmt"
	"math"

	"github.com/zintix-labs/chainlab/errs"
)

// MaxGridCells 盤面格數上限，calc.CellSet 以 uint64 位元集合表示已用格子
const MaxGridCells = 64

// WildSymbol wild 的符號代碼固定為 0
const WildSymbol int16 = 0

// GameSetting 包含模擬一個連鎖閃電回合所需的所有設定。
type GameSetting struct {
	GameName  string           `yaml:"game_name"  json:"game_name"`
	Bet       int              `yaml:"bet"        json:"bet"`
	Grid      GridSetting      `yaml:"grid"       json:"grid"`
	Symbols   SymbolSetting    `yaml:"symbols"    json:"symbols"`
	Lightning LightningSetting `yaml:"lightning"  json:"lightning"`
	WildMode  WildModeSetting  `yaml:"wild_mode"  json:"wild_mode"`
	PayTable  map[int16][]int  `yaml:"pay_table"  json:"pay_table"`
}

// GridSetting 盤面尺寸
type GridSetting struct {
	Rows int `yaml:"rows"  json:"rows"`
	Cols int `yaml:"cols"  json:"cols"`
}

// Size 回傳格數
func (g GridSetting) Size() int {
	return g.Rows * g.Cols
}

// SymbolSetting 符號名稱、權重與 wild 機率。
//
// Names 與 Weights 以符號代碼為索引，索引 0 為 wild，其權重不參與建表。
type SymbolSetting struct {
	Names    []string  `yaml:"names"      json:"names"`
	Weights  []float64 `yaml:"weights"    json:"weights"`
	WildProb float64   `yaml:"wild_prob"  json:"wild_prob"`
	// Scale 權重量化倍率，預設 10
	Scale float64 `yaml:"scale"      json:"scale"`
}

// LightningSetting 一般模式的閃電設定
type LightningSetting struct {
	StrikesPerSpin    int   `yaml:"strikes_per_spin"     json:"strikes_per_spin"`
	Multipliers       []int `yaml:"multipliers"          json:"multipliers"`
	MaxStrikeAttempts int   `yaml:"max_strike_attempts"  json:"max_strike_attempts"`
}

// WildModeSetting wild 模式門檻與加成
type WildModeSetting struct {
	MinWilds   int `yaml:"min_wilds"   json:"min_wilds"`
	Multiplier int `yaml:"multiplier"  json:"multiplier"`
}

const (
	defaultScale             = 10
	defaultMaxStrikeAttempts = 30
)

// init 補上預設值後驗證
func (gs *GameSetting) init() error {
	if gs.Symbols.Scale == 0 {
		gs.Symbols.Scale = defaultScale
	}
	if gs.Lightning.MaxStrikeAttempts == 0 {
		gs.Lightning.MaxStrikeAttempts = defaultMaxStrikeAttempts
	}
	return gs.valid()
}

// Init 供程式內組裝的設定使用（YAML/JSON 載入時已自動呼叫）
func (gs *GameSetting) Init() error {
	return gs.init()
}

// valid 執行設定檔檢查
func (gs *GameSetting) valid() error {
	name := gs.GameName
	if gs.Bet < 1 {
		return errs.Invalidf("game_name: %s err: bet must be >= 1, got %d", name, gs.Bet)
	}

	// 盤面
	g := gs.Grid
	if g.Rows <= 0 || g.Cols <= 0 {
		return errs.Invalidf("game_name: %s err: invalid grid dimensions rows=%d cols=%d", name, g.Rows, g.Cols)
	}
	if g.Size() > MaxGridCells {
		return errs.Invalidf("game_name: %s err: grid has %d cells, limit is %d", name, g.Size(), MaxGridCells)
	}

	// 符號
	s := gs.Symbols
	if len(s.Weights) < 2 {
		return errs.Invalidf("game_name: %s err: weights need wild slot plus at least one symbol", name)
	}
	if len(s.Names) != 0 && len(s.Names) != len(s.Weights) {
		return errs.Invalidf("game_name: %s err: len(names)=%d != len(weights)=%d", name, len(s.Names), len(s.Weights))
	}
	pool := 0.0
	for i, w := range s.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return errs.Invalidf("game_name: %s err: invalid weight %v at symbol %d", name, w, i)
		}
		if i > 0 {
			pool += math.Round(w * s.Scale)
		}
	}
	if pool < 1 {
		return errs.Invalidf("game_name: %s err: symbol pool is empty", name)
	}
	if math.IsNaN(s.WildProb) || s.WildProb < 0 || s.WildProb >= 1 {
		return errs.Invalidf("game_name: %s err: wild_prob must be in [0,1), got %v", name, s.WildProb)
	}
	if !(s.Scale > 0) {
		return errs.Invalidf("game_name: %s err: scale must be positive", name)
	}

	// 閃電
	l := gs.Lightning
	if l.StrikesPerSpin < 0 {
		return errs.Invalidf("game_name: %s err: strikes_per_spin must be >= 0", name)
	}
	if l.MaxStrikeAttempts < 1 {
		return errs.Invalidf("game_name: %s err: max_strike_attempts must be >= 1", name)
	}
	if len(l.Multipliers) == 0 {
		return errs.Invalidf("game_name: %s err: empty multipliers", name)
	}
	for _, m := range l.Multipliers {
		if m < 1 {
			return errs.Invalidf("game_name: %s err: multiplier must be >= 1, got %d", name, m)
		}
	}

	// wild 模式
	if gs.WildMode.MinWilds < 1 {
		return errs.Invalidf("game_name: %s err: wild_mode.min_wilds must be >= 1", name)
	}
	if gs.WildMode.Multiplier < 1 {
		return errs.Invalidf("game_name: %s err: wild_mode.multiplier must be >= 1", name)
	}

	// 賠付表
	if len(gs.PayTable) == 0 {
		return errs.Invalidf("game_name: %s err: empty pay_table", name)
	}
	rowLen := -1
	for sym, row := range gs.PayTable {
		if sym <= WildSymbol || int(sym) >= len(s.Weights) {
			return errs.Invalidf("game_name: %s err: pay_table has unknown symbol %d", name, sym)
		}
		if len(row) == 0 {
			return errs.Invalidf("game_name: %s err: empty pay row for symbol %d", name, sym)
		}
		if rowLen == -1 {
			rowLen = len(row)
		} else if rowLen != len(row) {
			return errs.Invalidf("game_name: %s err: pay rows must share one length", name)
		}
		for _, p := range row {
			if p < 0 {
				return errs.Invalidf("game_name: %s err: negative pay for symbol %d", name, sym)
			}
		}
	}
	for i := 1; i < len(s.Weights); i++ {
		if s.Weights[i] == 0 {
			continue
		}
		if _, ok := gs.PayTable[int16(i)]; !ok {
			return errs.Invalidf("game_name: %s err: symbol %d has weight but no pay row", name, i)
		}
	}
	return nil
}

// SymbolName 回傳代碼對應的名稱，未設定名稱時以代碼表示
func (gs *GameSetting) SymbolName(sym int16) string {
	if int(sym) >= 0 && int(sym) < len(gs.Symbols.Names) {
		return gs.Symbols.Names[sym]
	}
	if sym == WildSymbol {
		return "WILD"
	}
	return fmt.Sprintf("S%d", sym)
}

// SymbolCount 回傳符號代碼數（含 wild）
func (gs *GameSetting) SymbolCount() int {
	return len(gs.Symbols.Weights)
}
