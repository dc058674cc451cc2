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

package sampler

import (
	"math"

	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/sdk/core"
)

// SymbolSampler 每次抽一格：先以 wildProb 判定 wild，否則查表。
//
// 每格固定消耗一次 NextDouble，非 wild 時再消耗一次 NextInt。
type SymbolSampler struct {
	lut      LUT
	wildProb float64
	wild     int16
}

// NewSymbolSampler 建立抽樣器，wildProb 必須在 [0,1)
func NewSymbolSampler(lut LUT, wildProb float64, wild int16) (*SymbolSampler, error) {
	if len(lut) == 0 {
		return nil, errs.Invalidf("sampler: empty lut")
	}
	if math.IsNaN(wildProb) || wildProb < 0 || wildProb >= 1 {
		return nil, errs.Invalidf("sampler: wild_prob must be in [0,1), got %v", wildProb)
	}
	return &SymbolSampler{lut: lut, wildProb: wildProb, wild: wild}, nil
}

// Draw 抽出一個符號代碼
func (s *SymbolSampler) Draw(c *core.Core) int16 {
	if c.NextDouble() < s.wildProb {
		return s.wild
	}
	return int16(s.lut.Pick(c))
}

// PoolSize 回傳查找表長度
func (s *SymbolSampler) PoolSize() int {
	return len(s.lut)
}

// WildProb 回傳 wild 機率
func (s *SymbolSampler) WildProb() float64 {
	return s.wildProb
}
