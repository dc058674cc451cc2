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

package stats

import "sync"

const (
	// 只建到 2000 倍押注的反查表
	maxLutMult int = 2000
	maxMult    int = 10000
)

// WinBuckets 贏倍區間定義與各押注單位的反查表快取
type WinBuckets struct {
	mu           sync.Mutex
	winBucket    []int
	winBucketStr []string
	winBucketMap map[int]*WinBucket
}

// WinBucket 單一押注單位的反查表
type WinBucket struct {
	maxCheckWin      int
	lutMaxWin        int
	winBucketByScore []int
	winBucketLUT     []int
	justOverIdx      int
	maxIdx           int
}

// Buckets
//
// 用來快速定位得分 -> 區間位置 O(1)
//
// 請勿修改預設值
//   - win區間: 贏倍區間 [0,0], (0,1), [1,2), [2,5), ..., [2000,10000), [10000, +inf)
var Buckets *WinBuckets = &WinBuckets{
	winBucket:    []int{0, 1, 2, 5, 10, 20, 50, 100, 300, 500, 1000, 2000, 10000},
	winBucketStr: []string{"[0,0]", "(0,1)", "[1,2)", "[2,5)", "[5,10)", "[10,20)", "[20,50)", "[50,100)", "[100,300)", "[300,500)", "[500,1000)", "[1000,2000)", "[2000,10000)", "[10000,+inf)"},
	winBucketMap: make(map[int]*WinBucket),
}

func (b *WinBuckets) WinBucketStr() []string {
	return b.winBucketStr
}

// GetBucketByBet 取得（必要時建立）押注為 bet 的反查表，可併發呼叫
func (b *WinBuckets) GetBucketByBet(bet int) *WinBucket {
	b.mu.Lock()
	defer b.mu.Unlock()
	result, exist := b.winBucketMap[bet]
	if !exist {
		result = b.buildBucket(bet)
		b.winBucketMap[bet] = result
	}
	return result
}

func (b *WinBuckets) buildBucket(bet int) *WinBucket {
	maxLut := bet * maxLutMult
	maxcheckwin := bet * maxMult

	// 把「倍數邊界」轉成「贏分邊界」
	winGp := make([]int, len(b.winBucket))
	for i, v := range b.winBucket {
		winGp[i] = bet * v
	}

	// lut[win] = idx，由 (0,1) 這個區間開始
	lut := make([]int, maxLut)
	idx := 1
	last := len(winGp) - 1
	for i := 1; i < maxLut; i++ {
		for idx < last && i >= winGp[idx] {
			idx++
		}
		lut[i] = idx
	}

	return &WinBucket{
		maxCheckWin:      maxcheckwin,
		lutMaxWin:        maxLut,
		winBucketByScore: winGp,
		winBucketLUT:     lut,
		justOverIdx:      len(winGp) - 1,
		maxIdx:           len(winGp),
	}
}

// Index 贏分所屬區間
func (wb *WinBucket) Index(win int) int {
	if win >= wb.lutMaxWin {
		if win >= wb.maxCheckWin {
			return wb.maxIdx
		}
		return wb.justOverIdx
	}
	return wb.winBucketLUT[win]
}
