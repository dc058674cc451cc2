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

import "github.com/zintix-labs/chainlab/sdk/gen"

// CloudTracer 廣度優先追蹤。
//
// 從起點向外擴散，wild 一律可進入；連鎖符號由第一個遇到的非 wild 格決定，
// 之後只收同符號格。每格最多收一次，結果為一片雲而非一條線。
type CloudTracer struct {
	wild int16
	q    []int // BFS 佇列 (重複使用)
}

// NewCloudTracer 建立 BFS 追蹤器
func NewCloudTracer(wild int16) *CloudTracer {
	return &CloudTracer{wild: wild, q: make([]int, 0, 64)}
}

// Policy 滿足合約
func (t *CloudTracer) Policy() Policy {
	return PolicyCloud
}

// Trace 依佇列順序收集格子
func (t *CloudTracer) Trace(g *gen.Grid, start int, used CellSet) Chain {
	cells := g.Cells
	sym := cells[start]
	if sym == t.wild {
		sym = unresolved
	}

	path := make([]int, 1, 8)
	path[0] = start
	visited := CellSet(0).With(start)

	t.q = append(t.q[:0], start)
	for head := 0; head < len(t.q); head++ {
		curr := t.q[head]
		for _, next := range g.Neighbors(curr) {
			if visited.Has(next) || used.Has(next) {
				continue
			}
			ns := cells[next]
			switch {
			case ns == t.wild:
			case sym == unresolved:
				sym = ns
			case ns != sym:
				continue
			}
			visited.Add(next)
			path = append(path, next)
			t.q = append(t.q, next)
		}
	}

	if sym == unresolved {
		sym = 0
	}
	return Chain{Path: path, Symbol: sym, Length: len(path)}
}
