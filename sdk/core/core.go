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

// Package core 提供可重現的亂數核心。
//
// 回合模擬與目錄回放都要求「同一個 seed 必得同一個盤面」，
// 因此 core 只暴露可重設種子的 PRNG，不提供任何無種子的建構方式。
package core

// PRNG 定義回合模擬所需的亂數來源。
type PRNG interface {
	RAND
	Restorable
	// SetSeed 以 seed 重設內部狀態，之後的輸出序列只由 seed 決定。
	SetSeed(int64)
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	Snapshot() ([]byte, error)
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
type RAND interface {
	// NextInt 回傳 [0,bound) 的整數，bound <= 0 回傳 -1。
	NextInt(int) int
	// NextDouble 回傳 [0,1) 的浮點亂數。
	NextDouble() float64
}

// PRNGFactory 以指定 seed 建立 PRNG，相同 seed 必須產生相同序列。
type PRNGFactory interface {
	New(int64) PRNG
}

// DefaultPRNG 預設工廠：Java 相容 LCG
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return NewJavaRandom(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG，並提供常用取樣工具。
type Core struct {
	PRNG
}

// New 允許使用外部 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
// 熱路徑中只使用哨兵值回傳
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	return src[c.NextInt(len(src))]
}
