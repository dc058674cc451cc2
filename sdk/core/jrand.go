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

package core

import (
	"encoding/binary"
	"math"

	"github.com/zintix-labs/chainlab/errs"
)

const (
	jrandMultiplier uint64 = 0x5DEECE66D
	jrandAddend     uint64 = 0xB
	jrandMask       uint64 = (1 << 48) - 1
	jrandDoubleUnit        = 1.0 / (1 << 53)
)

// JavaRandom 為 48-bit 線性同餘產生器，輸出與 java.util.Random 逐位元一致。
//
// 目錄中保存的 seed 只有在這個產生器下才能回放出相同盤面，
// 因此任何常數、位移或整數寬度都不可更動。
type JavaRandom struct {
	seed uint64
}

// NewJavaRandom 以指定 seed 建立產生器
func NewJavaRandom(seed int64) *JavaRandom {
	r := &JavaRandom{}
	r.SetSeed(seed)
	return r
}

// SetSeed 重設內部狀態：(seed XOR multiplier) AND mask
func (r *JavaRandom) SetSeed(seed int64) {
	r.seed = (uint64(seed) ^ jrandMultiplier) & jrandMask
}

// Next 推進狀態並回傳高位 bits 個位元（1 <= bits <= 32）。
// bits == 32 時結果可能為負，與 Java 相同。
func (r *JavaRandom) Next(bits int) int32 {
	r.seed = (r.seed*jrandMultiplier + jrandAddend) & jrandMask
	return int32(r.seed >> (48 - bits))
}

// Int32 對應 Java nextInt()
func (r *JavaRandom) Int32() int32 {
	return r.Next(32)
}

// NextInt 回傳 [0,bound) 的整數；bound <= 0 或超出 int32 時回傳 -1。
//
// 拒絕取樣的條件 bits-val+(bound-1) < 0 依賴 int32 溢位繞回，
// Go 的有號整數溢位是定義行為，這裡刻意保持 int32 運算。
func (r *JavaRandom) NextInt(bound int) int {
	if bound <= 0 || bound > math.MaxInt32 {
		return -1
	}
	b := int32(bound)
	if b&(-b) == b {
		return int((int64(b) * int64(r.Next(31))) >> 31)
	}
	for {
		bits := r.Next(31)
		val := bits % b
		if bits-val+(b-1) >= 0 {
			return int(val)
		}
	}
}

// NextDouble 回傳 [0,1) 的 53-bit 精度浮點亂數
func (r *JavaRandom) NextDouble() float64 {
	hi := int64(r.Next(26))
	lo := int64(r.Next(27))
	return float64((hi<<27)+lo) * jrandDoubleUnit
}

// Snapshot 取得當下 48-bit 狀態（8 bytes, big-endian）
func (r *JavaRandom) Snapshot() ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, r.seed)
	return b, nil
}

// Restore 由 Snapshot 的結果還原狀態
func (r *JavaRandom) Restore(data []byte) error {
	if len(data) != 8 {
		return errs.Warnf("jrand restore: want 8 bytes, got %d", len(data))
	}
	s := binary.BigEndian.Uint64(data)
	if s > jrandMask {
		return errs.NewWarn("jrand restore: state exceeds 48 bits")
	}
	r.seed = s
	return nil
}
