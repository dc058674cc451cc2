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

package catalog

import (
	"github.com/zintix-labs/chainlab/errs"
	"gonum.org/v1/gonum/stat"
)

// Summary 目錄的摘要統計
type Summary struct {
	Count      int     `json:"count"       yaml:"count"`
	Distinct   int     `json:"distinct"    yaml:"distinct"`
	MaxFreqWin int     `json:"max_freq_win" yaml:"max_freq_win"`
	MaxFreq    int     `json:"max_freq"    yaml:"max_freq"`
	TotalWin   int64   `json:"total_win"   yaml:"total_win"`
	MaxWin     int     `json:"max_win"     yaml:"max_win"`
	RTP        float64 `json:"rtp"         yaml:"rtp"`
	Mean       float64 `json:"mean"        yaml:"mean"`
	StdDev     float64 `json:"std_dev"     yaml:"std_dev"`
	ZeroShare  float64 `json:"zero_share"  yaml:"zero_share"`
}

// Summarize 計算摘要；StdDev 為母體標準差（以 bet 為單位）
func Summarize(c *Catalog, bet int) Summary {
	s := Summary{
		Count:    c.Len(),
		Distinct: c.Distinct(),
		TotalWin: c.TotalWin(),
		RTP:      c.RTP(bet),
	}
	s.MaxFreqWin, s.MaxFreq = c.MaxFrequency()
	if s.Count == 0 || bet <= 0 {
		return s
	}
	xs := make([]float64, s.Count)
	zeros := 0
	for i, r := range c.records {
		xs[i] = float64(r.Win) / float64(bet)
		s.MaxWin = max(s.MaxWin, r.Win)
		if r.Win == 0 {
			zeros++
		}
	}
	s.Mean, s.StdDev = stat.PopMeanStdDev(xs, nil)
	s.ZeroShare = float64(zeros) / float64(s.Count)
	return s
}

// Verify 以 replay 逐筆回放，回傳第一筆不一致的錯誤
func Verify(c *Catalog, replay func(seed int64) int) error {
	for i, r := range c.records {
		if got := replay(r.Seed); got != r.Win {
			return errs.Warnf("catalog verify: record %d seed %d stored win %d, replay %d", i, r.Seed, r.Win, got)
		}
	}
	return nil
}

// CheckCap 確認沒有任何 win 值超過 limit 次
func CheckCap(c *Catalog, limit int) error {
	for w, n := range c.freq {
		if n > limit {
			return errs.Warnf("catalog cap: win %d appears %d times, limit %d", w, n, limit)
		}
	}
	return nil
}
