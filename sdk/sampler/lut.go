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

// Package sampler 提供盤面符號的加權抽樣。
//
// 抽樣採用查找表 (Look-Up Table)：建表時把權重量化後展開成長陣列，
// 抽樣時只做一次 NextInt，為 O(1)。
//
// 量化後的表長直接決定 NextInt 的 bound，bound 不同則同一個 seed
// 抽出的符號不同，所以量化規則（四捨五入、scale）屬於可重現性的一部分。
package sampler

import (
	"fmt"
	"math"

	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/sdk/core"
)

const maxLUTCap = 10_000_000

// Floaters 定義所有底層實現為浮點數型別的集合
type Floaters interface {
	~float32 | ~float64
}

// LUT 查找表，元素為符號代碼
//
// 舉例：權重 [_, 0.3, 0.5]、scale 10
//
// 展開 -> [1,1,1,2,2,2,2,2]，直接從切片取一個值即符合抽樣
type LUT []int

// BuildQuantizedLUT 依權重建立查找表。
//
// weights[0] 保留給 wild，不進表；symbol i 重複 round(weights[i]*scale) 次。
// 權重為負、NaN/Inf 或展開後為空時回傳錯誤。
func BuildQuantizedLUT[F Floaters](weights []F, scale float64) (LUT, error) {
	if len(weights) < 2 {
		return nil, errs.Invalidf("lut: need at least one non-wild weight, got %d entries", len(weights))
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, errs.Invalidf("lut: scale must be positive, got %v", scale)
	}

	reps := make([]int, len(weights))
	acc := 0
	for i := 1; i < len(weights); i++ {
		w := float64(weights[i])
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, errs.Invalidf("lut: weight of symbol %d is invalid: %v", i, w)
		}
		n := int(math.Round(w * scale))
		if acc > maxLUTCap-n {
			return nil, errs.Invalidf("lut: total size exceeds limit %d", maxLUTCap)
		}
		reps[i] = n
		acc += n
	}
	if acc == 0 {
		return nil, errs.Invalidf("lut: symbol pool is empty after quantization (scale %v)", scale)
	}

	lut := make(LUT, 0, acc)
	for sym := 1; sym < len(reps); sym++ {
		for j := 0; j < reps[sym]; j++ {
			lut = append(lut, sym)
		}
	}
	return lut, nil
}

// Pick 會透過 Core 的 RNG 從 LUT 中隨機位置取一個值
// 若 lut 為空，回傳 -1
func (l LUT) Pick(c *core.Core) int {
	return c.Pick(l)
}

// Share 回傳 symbol 在表中的占比，供報表使用
func (l LUT) Share(symbol int) float64 {
	if len(l) == 0 {
		return 0
	}
	n := 0
	for _, v := range l {
		if v == symbol {
			n++
		}
	}
	return float64(n) / float64(len(l))
}

func (l LUT) String() string {
	return fmt.Sprintf("LUT(len=%d)", len(l))
}
