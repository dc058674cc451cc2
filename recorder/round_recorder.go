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

package recorder

import (
	"fmt"

	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/sdk/buf"
	"github.com/zintix-labs/chainlab/spec"
	"github.com/zintix-labs/chainlab/stats"
)

// RoundRecorder 回合紀錄員
//
// RoundRecorder 負責紀錄回合結果，並透過 Done 輸出統計報表。
// 非並行安全，並行模擬請每個 worker 各持一個，最後以 MergeRoundRecorder 合併。
type RoundRecorder struct {
	GameName    string
	Policy      string
	Bet         int
	Cells       int
	SymbolNames []string
	Basic       *BasicRecord
	Dist        *DistRecord
	Chain       *ChainRecord
}

// BasicRecord 基本遊戲資料紀錄
type BasicRecord struct {
	FirstSeed      int64
	TotalBet       int
	TotalWin       int
	StrikeWin      int
	WildWin        int
	TotalWinSqSum  int // 平方和
	StrikeWinSqSum int // 平方和
	WildWinSqSum   int // 平方和
	MaxWin         int
	MaxWinSeed     int64
	WildRounds     int
	Exhausted      int
	Rounds         int
}

// DistRecord 分數區間落點統計
//
// 紀錄時紀錄int資訊
type DistRecord struct {
	Bucket           *stats.WinBucket
	TotalWinCollect  []int
	StrikeWinCollect []int
	WildWinCollect   []int
}

// ChainRecord 連鎖長度、符號與 wild 數量統計
type ChainRecord struct {
	Chains           int
	LengthCollect    []int
	SymbolHits       []int
	SymbolWins       []int
	WildCountCollect []int
}

func NewRoundRecorder(gs *spec.GameSetting, policy string) (*RoundRecorder, error) {
	s := new(RoundRecorder)
	if gs == nil {
		return s, errs.NewFatal("game setting is nil")
	}
	if gs.Bet <= 0 {
		return s, errs.NewFatal(fmt.Sprintf("bet must be positive, got: %d", gs.Bet))
	}
	cells := gs.Grid.Size()
	if cells <= 0 {
		return s, errs.NewFatal(fmt.Sprintf("grid size err %dx%d", gs.Grid.Rows, gs.Grid.Cols))
	}
	// 通過valid
	s.GameName = gs.GameName
	s.Policy = policy
	s.Bet = gs.Bet
	s.Cells = cells
	s.SymbolNames = gs.Symbols.Names
	s.Basic = &BasicRecord{FirstSeed: -1, MaxWinSeed: -1}
	s.Dist = newDistRecord(s.Bet)
	s.Chain = newChainRecord(cells, len(s.SymbolNames))
	return s, nil
}

func MergeRoundRecorder(r []*RoundRecorder) (*RoundRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge round record err : empty input")
	}
	r0 := r[0]
	s := &RoundRecorder{
		GameName:    r0.GameName,
		Policy:      r0.Policy,
		Bet:         r0.Bet,
		Cells:       r0.Cells,
		SymbolNames: r0.SymbolNames,
		Basic:       &BasicRecord{FirstSeed: -1, MaxWinSeed: -1},
		Dist:        newDistRecord(r0.Bet),
		Chain:       newChainRecord(r0.Cells, len(r0.SymbolNames)),
	}
	for _, v := range r {
		if v.GameName != r0.GameName {
			return s, errs.NewFatal("merge round record err : different game name")
		}
		if v.Policy != r0.Policy {
			return s, errs.NewFatal("merge round record err : different policy")
		}
		if v.Bet != r0.Bet || v.Cells != r0.Cells || len(v.SymbolNames) != len(r0.SymbolNames) {
			return s, errs.NewFatal("merge round record err : different game shape")
		}
		if v.Basic.Rounds == 0 {
			continue
		}
		b := s.Basic
		if b.FirstSeed < 0 || (v.Basic.FirstSeed >= 0 && v.Basic.FirstSeed < b.FirstSeed) {
			b.FirstSeed = v.Basic.FirstSeed
		}
		if b.MaxWinSeed < 0 || v.Basic.MaxWin > b.MaxWin || (v.Basic.MaxWin == b.MaxWin && v.Basic.MaxWinSeed < b.MaxWinSeed) {
			b.MaxWin = v.Basic.MaxWin
			b.MaxWinSeed = v.Basic.MaxWinSeed
		}
		b.TotalBet += v.Basic.TotalBet
		b.TotalWin += v.Basic.TotalWin
		b.StrikeWin += v.Basic.StrikeWin
		b.WildWin += v.Basic.WildWin
		b.TotalWinSqSum += v.Basic.TotalWinSqSum
		b.StrikeWinSqSum += v.Basic.StrikeWinSqSum
		b.WildWinSqSum += v.Basic.WildWinSqSum
		b.WildRounds += v.Basic.WildRounds
		b.Exhausted += v.Basic.Exhausted
		b.Rounds += v.Basic.Rounds

		// 整合Dist
		for i := range len(v.Dist.TotalWinCollect) {
			s.Dist.TotalWinCollect[i] += v.Dist.TotalWinCollect[i]
			s.Dist.StrikeWinCollect[i] += v.Dist.StrikeWinCollect[i]
			s.Dist.WildWinCollect[i] += v.Dist.WildWinCollect[i]
		}
		// 整合Chain
		s.Chain.Chains += v.Chain.Chains
		addInto(s.Chain.LengthCollect, v.Chain.LengthCollect)
		addInto(s.Chain.SymbolHits, v.Chain.SymbolHits)
		addInto(s.Chain.SymbolWins, v.Chain.SymbolWins)
		addInto(s.Chain.WildCountCollect, v.Chain.WildCountCollect)
	}
	return s, nil
}

// Record 以單次 RoundResult 更新統計
func (s *RoundRecorder) Record(rr *buf.RoundResult) {
	s.recordBasic(rr)
	s.recordDist(rr)
	s.recordChain(rr)
}

func (s *RoundRecorder) Done() *stats.StatReport {
	bfloat := float64(s.Bet)
	bb := bfloat * bfloat
	b := s.Basic
	rounds := b.Rounds

	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:    s.GameName,
			Policy:      s.Policy,
			FirstSeed:   b.FirstSeed,
			Bet:         s.Bet,
			TotalBet:    b.TotalBet,
			TotalWin:    b.TotalWin,
			StrikeWin:   b.StrikeWin,
			WildWin:     b.WildWin,
			MaxWin:      b.MaxWin,
			MaxWinSeed:  b.MaxWinSeed,
			WildRounds:  b.WildRounds,
			WildRate:    ratio(b.WildRounds, rounds),
			NoWinRounds: s.Dist.TotalWinCollect[0],
			HitRate:     1.0 - ratio(s.Dist.TotalWinCollect[0], rounds),
			Exhausted:   b.Exhausted,
			Rounds:      rounds,
		},
		Mult: &stats.MultReport{
			TotalWinMult:       float64(b.TotalWin) / bfloat,
			StrikeWinMult:      float64(b.StrikeWin) / bfloat,
			WildWinMult:        float64(b.WildWin) / bfloat,
			TotalWinMultSqSum:  float64(b.TotalWinSqSum) / bb,
			StrikeWinMultSqSum: float64(b.StrikeWinSqSum) / bb,
			WildWinMultSqSum:   float64(b.WildWinSqSum) / bb,
		},
		Dist: &stats.DistReport{
			WinBucket:        stats.Buckets.WinBucketStr(),
			TotalWinCollect:  s.Dist.TotalWinCollect,
			StrikeWinCollect: s.Dist.StrikeWinCollect,
			WildWinCollect:   s.Dist.WildWinCollect,
			TotalWinDist:     toDist(s.Dist.TotalWinCollect, rounds),
			StrikeWinDist:    toDist(s.Dist.StrikeWinCollect, rounds),
			WildWinDist:      toDist(s.Dist.WildWinCollect, rounds),
		},
		Chain: &stats.ChainReport{
			Chains:           s.Chain.Chains,
			LengthCollect:    s.Chain.LengthCollect,
			SymbolNames:      s.SymbolNames,
			SymbolHits:       s.Chain.SymbolHits,
			SymbolWins:       s.Chain.SymbolWins,
			WildCountCollect: s.Chain.WildCountCollect,
		},
	}
	if rounds == 0 {
		report.Summary.HitRate = 0
	}
	report.Done()
	return report
}

func (s *RoundRecorder) recordBasic(rr *buf.RoundResult) {
	b := s.Basic
	w := rr.TotalWin
	sw, ww := w, 0
	if rr.WildMode {
		sw, ww = 0, w
		b.WildRounds++
	}

	if b.Rounds == 0 || rr.Seed < b.FirstSeed {
		b.FirstSeed = rr.Seed
	}
	if b.MaxWinSeed < 0 || w > b.MaxWin || (w == b.MaxWin && rr.Seed < b.MaxWinSeed) {
		b.MaxWin = w
		b.MaxWinSeed = rr.Seed
	}
	b.TotalBet += s.Bet
	b.TotalWin += w
	b.StrikeWin += sw
	b.WildWin += ww
	b.TotalWinSqSum += w * w
	b.StrikeWinSqSum += sw * sw
	b.WildWinSqSum += ww * ww
	b.Exhausted += rr.Exhausted
	b.Rounds++
}

func (s *RoundRecorder) recordDist(rr *buf.RoundResult) {
	d := s.Dist
	bk := d.Bucket
	tw := rr.TotalWin
	sw, ww := tw, 0
	if rr.WildMode {
		sw, ww = 0, tw
	}
	d.TotalWinCollect[bk.Index(tw)]++
	d.StrikeWinCollect[bk.Index(sw)]++
	d.WildWinCollect[bk.Index(ww)]++
}

func (s *RoundRecorder) recordChain(rr *buf.RoundResult) {
	c := s.Chain
	if rr.WildCount < len(c.WildCountCollect) {
		c.WildCountCollect[rr.WildCount]++
	}
	for _, cw := range rr.Chains {
		c.Chains++
		if cw.Length < len(c.LengthCollect) {
			c.LengthCollect[cw.Length]++
		}
		if sym := int(cw.Symbol); sym >= 0 && sym < len(c.SymbolHits) {
			c.SymbolHits[sym]++
			c.SymbolWins[sym] += cw.Win
		}
	}
}

func newDistRecord(bet int) *DistRecord {
	n := len(stats.Buckets.WinBucketStr())
	return &DistRecord{
		Bucket:           stats.Buckets.GetBucketByBet(bet),
		TotalWinCollect:  make([]int, n),
		StrikeWinCollect: make([]int, n),
		WildWinCollect:   make([]int, n),
	}
}

func newChainRecord(cells, symbols int) *ChainRecord {
	return &ChainRecord{
		LengthCollect:    make([]int, cells+1),
		SymbolHits:       make([]int, symbols),
		SymbolWins:       make([]int, symbols),
		WildCountCollect: make([]int, cells+1),
	}
}

func addInto(dst, src []int) {
	for i := range min(len(dst), len(src)) {
		dst[i] += src[i]
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func toDist(collect []int, rounds int) []float64 {
	out := make([]float64, len(collect))
	for i, c := range collect {
		out[i] = ratio(c, rounds)
	}
	return out
}
