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

// Package catalog 保存篩選出的 (seed, win) 目錄與各 win 值的出現次數。
//
// 目錄只記錄 seed 與贏分，盤面與連鎖細節一律以 seed 回放取得。
package catalog

import (
	"slices"
	"sort"
)

// SeedRecord 目錄中的一筆資料
type SeedRecord struct {
	Seed int64 `json:"seed"`
	Win  int   `json:"win"`
}

// Catalog 依接受順序保存紀錄，並同步維護 win 頻率表與累計贏分。
//
// 非併發安全，由單一篩選流程寫入。
type Catalog struct {
	records []SeedRecord
	freq    map[int]int
	total   int64
}

// New 建立空目錄，capacity 為預期筆數
func New(capacity int) *Catalog {
	return &Catalog{
		records: make([]SeedRecord, 0, max(capacity, 0)),
		freq:    make(map[int]int),
	}
}

// FromRecords 由既有紀錄重建目錄（頻率表與總和一併重算）
func FromRecords(rs []SeedRecord) *Catalog {
	c := New(len(rs))
	for _, r := range rs {
		c.Append(r)
	}
	return c
}

// Append 加入一筆紀錄
func (c *Catalog) Append(r SeedRecord) {
	c.records = append(c.records, r)
	c.freq[r.Win]++
	c.total += int64(r.Win)
}

// Len 筆數
func (c *Catalog) Len() int {
	return len(c.records)
}

// At 第 i 筆紀錄
func (c *Catalog) At(i int) (SeedRecord, bool) {
	if i < 0 || i >= len(c.records) {
		return SeedRecord{}, false
	}
	return c.records[i], true
}

// Records 回傳紀錄的複本
func (c *Catalog) Records() []SeedRecord {
	return slices.Clone(c.records)
}

// Page 分頁取得紀錄複本，超出範圍回傳空切片
func (c *Catalog) Page(offset, limit int) []SeedRecord {
	if offset < 0 || offset >= len(c.records) || limit <= 0 {
		return []SeedRecord{}
	}
	end := min(offset+limit, len(c.records))
	return slices.Clone(c.records[offset:end])
}

// Count win 值已被接受的次數
func (c *Catalog) Count(win int) int {
	return c.freq[win]
}

// TotalWin 累計贏分
func (c *Catalog) TotalWin() int64 {
	return c.total
}

// RTP 目前的返還率（百分比），空目錄為 0
func (c *Catalog) RTP(bet int) float64 {
	if len(c.records) == 0 || bet <= 0 {
		return 0
	}
	return float64(c.total) / (float64(len(c.records)) * float64(bet)) * 100
}

// Distinct 不同 win 值的個數
func (c *Catalog) Distinct() int {
	return len(c.freq)
}

// MaxFrequency 出現最多次的 win 值與次數，同次數取較小的 win
func (c *Catalog) MaxFrequency() (win int, count int) {
	win = 0
	for w, n := range c.freq {
		if n > count || (n == count && w < win) {
			win, count = w, n
		}
	}
	return win, count
}

// FreqEntry 頻率表的一列
type FreqEntry struct {
	Win   int `json:"win"`
	Count int `json:"count"`
}

// Frequencies 依 win 遞增列出頻率表
func (c *Catalog) Frequencies() []FreqEntry {
	out := make([]FreqEntry, 0, len(c.freq))
	for w, n := range c.freq {
		out = append(out, FreqEntry{Win: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Win < out[j].Win })
	return out
}
