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

package gen

import (
	"github.com/zintix-labs/chainlab/sdk/core"
	"github.com/zintix-labs/chainlab/sdk/sampler"
)

// GridGenerator 保存生成盤面所需的所有狀態。
// 會快取幾何與輸出緩衝，以避免重複配置與計算。
//
// 非併發安全：每個 goroutine 各持一個。
type GridGenerator struct {
	core    *core.Core
	sampler *sampler.SymbolSampler
	geo     *Geometry
	grid    *Grid
}

// NewGridGenerator 根據幾何、抽樣器與核心亂數器建立生成器
func NewGridGenerator(c *core.Core, geo *Geometry, s *sampler.SymbolSampler) *GridGenerator {
	return &GridGenerator{
		core:    c,
		sampler: s,
		geo:     geo,
		grid:    &Grid{Geometry: geo, Cells: make([]int16, geo.Size())},
	}
}

// Gen 生成盤面熱路徑函數
//
// 以 seed 重設 PRNG 後依列優先每格抽一次。回傳的盤面是重用緩衝，
// 下一次 Gen 會覆寫，需要保留請 Clone。
// PRNG 在 Gen 之後保持狀態，回合可以接著用同一條序列抽閃電落點。
func (g *GridGenerator) Gen(seed int64) *Grid {
	g.core.SetSeed(seed)
	s := g.grid.Cells
	_ = s[len(s)-1] // BCE hint
	for i := range s {
		s[i] = g.sampler.Draw(g.core)
	}
	return g.grid
}

// Core 回傳生成器使用的亂數核心
func (g *GridGenerator) Core() *core.Core {
	return g.core
}

// Geometry 回傳盤面幾何
func (g *GridGenerator) Geometry() *Geometry {
	return g.geo
}
