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
	"slices"

	"github.com/zintix-labs/chainlab/sdk/gen"
)

// LongestTracer 深度優先追蹤。
//
// 窮舉從起點出發的所有簡單路徑，回傳最長的一條；長度相同時保留
// 依鄰格順序最先找到的那條。每個分支持有自己的 visited 快照，
// 同一格可以出現在不同分支上。最壞情況為指數時間，盤面上限 64 格。
// best 達到可達格數上限時立即停止。
type LongestTracer struct {
	wild  int16
	stack []int // 當前路徑 (重複使用)
	best  []int
	grid  *gen.Grid
	used  CellSet
	limit int // 任何路徑長度的上限
	q     []int
}

// NewLongestTracer 建立 DFS 追蹤器
func NewLongestTracer(wild int16) *LongestTracer {
	return &LongestTracer{
		wild:  wild,
		stack: make([]int, 0, 64),
		best:  make([]int, 0, 64),
		q:     make([]int, 0, 64),
	}
}

// Policy 滿足合約
func (t *LongestTracer) Policy() Policy {
	return PolicyLongest
}

// Trace 回傳最長路徑；連鎖符號取路徑上第一個非 wild 格
func (t *LongestTracer) Trace(g *gen.Grid, start int, used CellSet) Chain {
	t.grid, t.used = g, used
	sym := g.Cells[start]
	if sym == t.wild {
		sym = unresolved
	}

	t.stack = append(t.stack[:0], start)
	t.best = append(t.best[:0], start)
	t.limit = t.reachBound(start, sym)
	t.extend(start, CellSet(0).With(start), sym)
	t.grid = nil

	path := make([]int, len(t.best))
	copy(path, t.best)

	chainSym := int16(0)
	for _, c := range path {
		if s := g.Cells[c]; s != t.wild {
			chainSym = s
			break
		}
	}
	return Chain{Path: path, Symbol: chainSym, Length: len(path)}
}

// extend 前序走訪；只有嚴格更長時才覆寫 best
func (t *LongestTracer) extend(curr int, visited CellSet, sym int16) {
	cells := t.grid.Cells
	for _, next := range t.grid.Neighbors(curr) {
		if len(t.best) >= t.limit {
			return
		}
		if visited.Has(next) || t.used.Has(next) {
			continue
		}
		ns := cells[next]
		nextSym := sym
		switch {
		case ns == t.wild:
		case sym == unresolved:
			nextSym = ns
		case ns != sym:
			continue
		}
		t.stack = append(t.stack, next)
		if len(t.stack) > len(t.best) {
			t.best = append(t.best[:0], t.stack...)
		}
		t.extend(next, visited.With(next), nextSym)
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// reachBound 路徑長度上限：起點所在、只含 wild 與單一符號的連通格數。
// 起點符號未定時，對 wild 區塊周邊的每個候選符號各算一次取最大。
func (t *LongestTracer) reachBound(start int, sym int16) int {
	if sym != unresolved {
		return t.flood(start, sym).Len()
	}
	wilds := t.flood(start, unresolved)
	bound := wilds.Len()
	seen := make([]int16, 0, 8)
	for _, c := range wilds.Cells() {
		for _, next := range t.grid.Neighbors(c) {
			ns := t.grid.Cells[next]
			if ns == t.wild || t.used.Has(next) || slices.Contains(seen, ns) {
				continue
			}
			seen = append(seen, ns)
			if n := t.flood(start, ns).Len(); n > bound {
				bound = n
			}
		}
	}
	return bound
}

// flood 回傳由 start 出發、只經過 wild 或 sym 的未使用格；sym 為 unresolved 時只走 wild
func (t *LongestTracer) flood(start int, sym int16) CellSet {
	cells := t.grid.Cells
	reach := CellSet(0).With(start)
	t.q = append(t.q[:0], start)
	for head := 0; head < len(t.q); head++ {
		for _, next := range t.grid.Neighbors(t.q[head]) {
			if reach.Has(next) || t.used.Has(next) {
				continue
			}
			if ns := cells[next]; ns != t.wild && ns != sym {
				continue
			}
			reach.Add(next)
			t.q = append(t.q, next)
		}
	}
	return reach
}
