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

package calc

import (
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/spec"
)

// PayTable 賠付表：依符號與連鎖長度查基礎賠付，再乘上長度倍率。
//
// 賠付列以每 100 籌碼押注為單位，basePay = bet * row[k] / 100（整數除法）。
type PayTable struct {
	bet      int
	rowLen   int
	payFlat  []int // 平坦化的派彩表，符號 s 的列位於 [s*rowLen, (s+1)*rowLen)
	hasRow   []bool
	mults    []int
	wildMult int
}

// NewPayTable 由遊戲設定建立賠付表，設定需已通過驗證
func NewPayTable(gs *spec.GameSetting) (*PayTable, error) {
	if len(gs.PayTable) == 0 || len(gs.Lightning.Multipliers) == 0 {
		return nil, errs.Invalidf("pay table: empty pay rows or multipliers")
	}
	maxSym := 0
	rowLen := 0
	for s, row := range gs.PayTable {
		if s <= 0 {
			return nil, errs.Invalidf("pay table: invalid symbol %d", s)
		}
		maxSym = max(maxSym, int(s))
		rowLen = len(row)
	}
	pt := &PayTable{
		bet:      gs.Bet,
		rowLen:   rowLen,
		payFlat:  make([]int, (maxSym+1)*rowLen),
		hasRow:   make([]bool, maxSym+1),
		mults:    append([]int(nil), gs.Lightning.Multipliers...),
		wildMult: gs.WildMode.Multiplier,
	}
	for s, row := range gs.PayTable {
		if len(row) != rowLen {
			return nil, errs.Invalidf("pay table: ragged row for symbol %d", s)
		}
		copy(pt.payFlat[int(s)*rowLen:], row)
		pt.hasRow[s] = true
	}
	return pt, nil
}

// BasePay 長度不足 3 或符號沒有賠付列時為 0，超過列長以最後一欄計
func (pt *PayTable) BasePay(symbol int16, length int) int {
	if length < MinChainLength || symbol <= 0 || int(symbol) >= len(pt.hasRow) || !pt.hasRow[symbol] {
		return 0
	}
	k := min(length-MinChainLength, pt.rowLen-1)
	return pt.bet * pt.payFlat[int(symbol)*pt.rowLen+k] / 100
}

// Multiplier 長度倍率，超過表長以最後一個計
func (pt *PayTable) Multiplier(length int) int {
	if length < 1 {
		return 0
	}
	return pt.mults[min(length-1, len(pt.mults)-1)]
}

// ChainWin 單條連鎖的派彩 basePay * mult * bonus
func (pt *PayTable) ChainWin(c Chain, bonus int) int {
	return pt.BasePay(c.Symbol, c.Length) * pt.Multiplier(c.Length) * bonus
}

// WildMultiplier wild 模式加成
func (pt *PayTable) WildMultiplier() int {
	return pt.wildMult
}

// Bet 押注單位
func (pt *PayTable) Bet() int {
	return pt.bet
}
