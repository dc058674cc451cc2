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

// Package optimizer 從連續 seed 中篩選出目錄，使目錄回放的 RTP 收斂到目標值，
// 同時限制任一 win 值的出現次數。
//
// 篩選是線上貪婪流程：每個 seed 只看一次，依序套用頻率上限與 RTP 收斂規則，
// 接受後即寫入目錄，不回頭。結果只由設定決定，與並行度無關。
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"github.com/zintix-labs/chainlab/catalog"
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/sdk/calc"
	"github.com/zintix-labs/chainlab/sdk/slot"
	"github.com/zintix-labs/chainlab/spec"
)

// batchPerWorker 每個 worker 每批預先模擬的 seed 數
const batchPerWorker = 256

// State 篩選狀態
type State uint8

const (
	Scanning State = iota
	Accepted
	RejectedByCap
	RejectedByBalance
	Done
)

var stateNames = map[State]string{
	Scanning:          "scanning",
	Accepted:          "accepted",
	RejectedByCap:     "rejected_by_cap",
	RejectedByBalance: "rejected_by_balance",
	Done:              "done",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Step 每個被檢視的 seed 回報一次
type Step struct {
	Offset   int64
	Seed     int64
	Win      int
	State    State
	RTP      float64 // 判定當下（接受前）的 RTP
	Accepted int
}

// Report 篩選結果摘要
type Report struct {
	RunID             string        `json:"run_id"              yaml:"run_id"`
	Policy            string        `json:"policy"              yaml:"policy"`
	Comparator        string        `json:"comparator"          yaml:"comparator"`
	BaseSeed          int64         `json:"base_seed"           yaml:"base_seed"`
	StartOffset       int64         `json:"start_offset"        yaml:"start_offset"`
	NextOffset        int64         `json:"next_offset"         yaml:"next_offset"`
	Scanned           int64         `json:"scanned"             yaml:"scanned"`
	Accepted          int           `json:"accepted"            yaml:"accepted"`
	RejectedByCap     int64         `json:"rejected_by_cap"     yaml:"rejected_by_cap"`
	RejectedByBalance int64         `json:"rejected_by_balance" yaml:"rejected_by_balance"`
	CapLimit          int           `json:"cap_limit"           yaml:"cap_limit"`
	TargetRTP         float64       `json:"target_rtp"          yaml:"target_rtp"`
	RTP               float64       `json:"rtp"                 yaml:"rtp"`
	Elapsed           time.Duration `json:"elapsed"             yaml:"elapsed"`
}

// Option 調整 Curator 行為
type Option func(*Curator)

// WithLogger 設定結構化日誌，預設丟棄
func WithLogger(l *slog.Logger) Option {
	return func(c *Curator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithProgress 是否顯示進度條
func WithProgress(show bool) Option {
	return func(c *Curator) { c.showpb = show }
}

// WithObserver 每個 seed 判定後回呼（在篩選 goroutine 上同步執行）
func WithObserver(fn func(Step)) Option {
	return func(c *Curator) { c.observe = fn }
}

// Curator 篩選狀態機。
//
// 非併發安全：Run 期間不可從其他 goroutine 呼叫任何方法。
type Curator struct {
	set      *spec.CurateSetting
	bet      int
	capLimit int
	policy   calc.Policy

	sims  []*slot.RoundSimulator
	cat   *catalog.Catalog
	state State

	log     *slog.Logger
	showpb  bool
	observe func(Step)
	report  Report
}

// New 建立 Curator，每個 worker 各自持有一個 RoundSimulator。
func New(gs *spec.GameSetting, set *spec.CurateSetting, opts ...Option) (*Curator, error) {
	if gs == nil || set == nil {
		return nil, errs.NewFatal("curator: nil setting")
	}
	if err := set.Init(); err != nil {
		return nil, err
	}
	p, err := calc.ParsePolicy(set.Policy)
	if err != nil {
		return nil, err
	}
	c := &Curator{
		set:      set,
		bet:      gs.Bet,
		capLimit: set.CapLimit(),
		policy:   p,
		cat:      catalog.New(set.Count),
		state:    Scanning,
		log:      slog.New(slog.DiscardHandler),
	}
	for range set.Workers {
		tr, err := calc.NewTracer(p, spec.WildSymbol)
		if err != nil {
			return nil, err
		}
		rs, err := slot.NewRoundSimulator(gs, tr)
		if err != nil {
			return nil, errs.Wrap(err, "curator: build round simulator")
		}
		c.sims = append(c.sims, rs)
	}
	for _, opt := range opts {
		opt(c)
	}
	c.report = Report{
		RunID:       uuid.NewString(),
		Policy:      p.String(),
		Comparator:  string(set.Comparator),
		BaseSeed:    set.BaseSeed,
		StartOffset: set.StartOffset,
		NextOffset:  set.StartOffset,
		CapLimit:    c.capLimit,
		TargetRTP:   set.TargetRTP,
	}
	return c, nil
}

// Decide 以目前目錄判定 win 的去留，不修改任何狀態。
//
// 順序：頻率上限 → 第一筆必收 → RTP 偏低收高於 RTP 者 → RTP 偏高收低於 RTP 者
// → 接近目標時只收落在 [target-band, target+band] 的值。
func (c *Curator) Decide(win int) State {
	if c.cat.Count(win) >= c.capLimit {
		return RejectedByCap
	}
	if c.cat.Len() == 0 {
		return Accepted
	}
	rtp := c.cat.RTP(c.bet)
	target := c.set.TargetRTP
	x := c.measure(win)
	switch {
	case rtp < target && x > rtp:
		return Accepted
	case rtp > target && x < rtp:
		return Accepted
	case math.Abs(rtp-target) < c.set.AcceptTolerance():
		if band := c.set.AcceptBand(); x >= target-band && x <= target+band {
			return Accepted
		}
	}
	return RejectedByBalance
}

// measure literal 直接拿 win 與百分比比較，bet_relative 先換算成 win/bet*100
func (c *Curator) measure(win int) float64 {
	if c.set.Comparator == spec.CompareBetRelative {
		return float64(win) / float64(c.bet) * 100
	}
	return float64(win)
}

// Offer 判定並在接受時寫入目錄
func (c *Curator) Offer(offset int64, win int) State {
	seed := c.set.BaseSeed + offset
	rtp := c.cat.RTP(c.bet)
	st := c.Decide(win)
	switch st {
	case Accepted:
		c.cat.Append(catalog.SeedRecord{Seed: seed, Win: win})
	case RejectedByCap:
		c.report.RejectedByCap++
	case RejectedByBalance:
		c.report.RejectedByBalance++
	}
	c.report.Scanned++
	c.report.NextOffset = offset + 1
	if c.observe != nil {
		c.observe(Step{Offset: offset, Seed: seed, Win: win, State: st, RTP: rtp, Accepted: c.cat.Len()})
	}
	if c.cat.Len() >= c.set.Count {
		c.state = Done
	}
	return st
}

// State 目前狀態
func (c *Curator) State() State {
	return c.state
}

// Catalog 目前的目錄（Run 結束後即為最終結果）
func (c *Curator) Catalog() *catalog.Catalog {
	return c.cat
}

// Run 從 base_seed+start_offset 開始依序掃描直到湊滿 count 筆。
//
// 掃描數達 max_scans 仍未湊滿時回傳包裝 errs.ErrNonConvergence 的錯誤，
// ctx 取消時回傳包裝 ctx.Err() 的錯誤；兩者都會附上部分目錄與報告。
func (c *Curator) Run(ctx context.Context) (*catalog.Catalog, *Report, error) {
	start := time.Now()
	set := c.set
	c.log.Info("curation started",
		"run_id", c.report.RunID,
		"policy", c.report.Policy,
		"comparator", c.report.Comparator,
		"count", set.Count,
		"cap_limit", c.capLimit,
		"target_rtp", set.TargetRTP,
		"base_seed", set.BaseSeed,
		"workers", len(c.sims),
	)

	bar := pb.StartNew(set.Count)
	if !c.showpb {
		bar.SetWriter(io.Discard)
	}
	defer bar.Finish()

	wins := make([]int, batchPerWorker*len(c.sims))
	offset := c.report.NextOffset
	lastPct := -1
	var err error
	for c.state != Done {
		if e := ctx.Err(); e != nil {
			err = errs.Wrap(e, "curation canceled")
			break
		}
		remaining := set.MaxScans - c.report.Scanned
		if remaining <= 0 {
			err = errs.WrapWithExtra(errs.ErrNonConvergence, "curation stopped at max_scans",
				fmt.Sprintf("accepted %d of %d after %d scans", c.cat.Len(), set.Count, c.report.Scanned))
			break
		}
		n := int(min(int64(len(wins)), remaining))
		c.simulate(set.BaseSeed+offset, wins[:n])
		for i := 0; i < n && c.state != Done; i++ {
			if c.Offer(offset, wins[i]) == Accepted {
				bar.Increment()
				if pct := c.cat.Len() * 100 / set.Count; pct != lastPct && pct%5 == 0 {
					lastPct = pct
					c.log.Info("curation progress",
						"run_id", c.report.RunID,
						"percent", pct,
						"accepted", c.cat.Len(),
						"scanned", c.report.Scanned,
						"rtp", c.cat.RTP(c.bet),
					)
				}
			}
			offset++
		}
	}

	c.report.Accepted = c.cat.Len()
	c.report.RTP = c.cat.RTP(c.bet)
	c.report.Elapsed = time.Since(start)
	rep := c.report
	if err != nil {
		lv := slog.LevelWarn
		if errors.Is(err, errs.ErrNonConvergence) {
			lv = slog.LevelError
		}
		c.log.Log(ctx, lv, "curation aborted", "run_id", rep.RunID, "scanned", rep.Scanned, "accepted", rep.Accepted, "err", err)
		return c.cat, &rep, err
	}
	c.log.Info("curation done",
		"run_id", rep.RunID,
		"scanned", rep.Scanned,
		"accepted", rep.Accepted,
		"rtp", rep.RTP,
		"elapsed", rep.Elapsed,
	)
	return c.cat, &rep, nil
}

// simulate 平行計算 first, first+1, ... 的贏分；結果依 seed 順序寫入 wins
func (c *Curator) simulate(first int64, wins []int) {
	mp := len(c.sims)
	if mp == 1 || len(wins) < mp {
		rs := c.sims[0]
		for i := range wins {
			wins[i] = rs.Win(first + int64(i))
		}
		return
	}
	wg := new(sync.WaitGroup)
	wg.Add(mp)
	for w := 0; w < mp; w++ {
		go func(w int) {
			defer wg.Done()
			rs := c.sims[w]
			for i := w; i < len(wins); i += mp {
				wins[i] = rs.Win(first + int64(i))
			}
		}(w)
	}
	wg.Wait()
}
