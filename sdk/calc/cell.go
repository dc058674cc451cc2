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

import "math/bits"

// CellSet 以 uint64 位元集合記錄格子，bit i 代表索引 i 的格子。
// 值語意：複製即快照，DFS 每個分支各自持有一份 visited。
type CellSet uint64

// Has 是否包含 idx
func (s CellSet) Has(idx int) bool {
	return (s>>uint(idx))&1 != 0
}

// With 回傳加入 idx 後的新集合
func (s CellSet) With(idx int) CellSet {
	return s | 1<<uint(idx)
}

// Add 就地加入 idx
func (s *CellSet) Add(idx int) {
	*s |= 1 << uint(idx)
}

// AddAll 就地加入多個格子
func (s *CellSet) AddAll(cells []int) {
	for _, c := range cells {
		*s |= 1 << uint(c)
	}
}

// Len 集合大小
func (s CellSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Cells 依索引遞增列出所有格子
func (s CellSet) Cells() []int {
	out := make([]int, 0, s.Len())
	for v := uint64(s); v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros64(v))
	}
	return out
}
