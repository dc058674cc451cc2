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

// Package buf 定義回合結果緩衝與外部請求的解碼。
package buf

import "slices"

// NoAnchor 閃電模式的連鎖沒有 wild 錨點
const NoAnchor = -1

// ChainWin 單條派彩連鎖的細項
type ChainWin struct {
	Symbol   int16 `json:"symbol"`
	Length   int   `json:"length"`
	BasePay  int   `json:"base_pay"`
	Mult     int   `json:"mult"`
	WildMult int   `json:"wild_mult"`
	Win      int   `json:"win"`
	Path     []int `json:"path"`
	Anchor   int   `json:"anchor"` // wild 模式的錨點格，閃電模式為 NoAnchor
}

// RoundResult 保存單一回合的完整結果（盤面快照、模式、各連鎖細項與總贏分）。
type RoundResult struct {
	Seed      int64      `json:"seed"`
	Rows      int        `json:"rows"`
	Cols      int        `json:"cols"`
	Grid      []int16    `json:"grid"`
	WildMode  bool       `json:"wild_mode"`
	WildCount int        `json:"wild_count"`
	Strikes   []int      `json:"strikes"`   // 閃電落點（依序），被放棄的不列入
	Exhausted int        `json:"exhausted"` // 達到嘗試上限而放棄的閃電數
	Chains    []ChainWin `json:"chains"`
	TotalWin  int        `json:"total_win"`
}

// NewRoundResult 預先配置盤面快照容量
func NewRoundResult(rows, cols int) *RoundResult {
	return &RoundResult{
		Rows:    rows,
		Cols:    cols,
		Grid:    make([]int16, 0, rows*cols),
		Strikes: make([]int, 0, 4),
		Chains:  make([]ChainWin, 0, 4),
	}
}

// Reset 重置累積資料，保留已配置的內部切片容量。
func (r *RoundResult) Reset(seed int64) {
	r.Seed = seed
	r.Grid = r.Grid[:0]
	r.WildMode = false
	r.WildCount = 0
	r.Strikes = r.Strikes[:0]
	r.Exhausted = 0
	r.Chains = r.Chains[:0]
	r.TotalWin = 0
}

// SetGrid 複製盤面快照
func (r *RoundResult) SetGrid(cells []int16) {
	r.Grid = append(r.Grid[:0], cells...)
}

// AppendChain 累積一條派彩連鎖
func (r *RoundResult) AppendChain(cw ChainWin) {
	r.TotalWin += cw.Win
	r.Chains = append(r.Chains, cw)
}

// Clone 深拷貝，外發前使用以免緩衝被下一回合覆寫
func (r *RoundResult) Clone() *RoundResult {
	out := *r
	out.Grid = append([]int16(nil), r.Grid...)
	out.Strikes = append([]int(nil), r.Strikes...)
	out.Chains = make([]ChainWin, len(r.Chains))
	for i, c := range r.Chains {
		c.Path = append([]int(nil), c.Path...)
		out.Chains[i] = c
	}
	return &out
}

// Used 本回合被連鎖占用的格子數
func (r *RoundResult) Used() int {
	n := 0
	for _, c := range r.Chains {
		n += len(c.Path)
		if c.Anchor != NoAnchor && !slices.Contains(c.Path, c.Anchor) {
			n++
		}
	}
	return n
}
