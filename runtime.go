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

package chainlab

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/chainlab/catalog"
	"github.com/zintix-labs/chainlab/dto"
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/recorder"
	"github.com/zintix-labs/chainlab/sdk/buf"
	"github.com/zintix-labs/chainlab/sdk/calc"
	"github.com/zintix-labs/chainlab/sdk/slot"
	"github.com/zintix-labs/chainlab/stats"
)

// MaxSimRounds 單一 HTTP 模擬請求的回合上限（rounds*worker）
const MaxSimRounds = 10_000_000

// MaxStatSeeds 單一統計請求可指定的 seed 數上限
const MaxStatSeeds = 100_000

// Runtime 對外服務的資料面：每種策略一個模擬器池，加上一份唯讀目錄
type Runtime struct {
	lab   *Lab
	cat   *catalog.Catalog
	pools map[calc.Policy]*SimulatorPool

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	poolSize int
}

func (rt *Runtime) Lab() *Lab {
	return rt.lab
}

// Catalog 可能為 nil
func (rt *Runtime) Catalog() *catalog.Catalog {
	return rt.cat
}

// policy 空字串使用 Lab 的預設策略
func (rt *Runtime) policy(s string) (calc.Policy, error) {
	if strings.TrimSpace(s) == "" {
		return rt.lab.policy, nil
	}
	p, err := calc.ParsePolicy(s)
	if e, ok := errs.AsErr(err); ok {
		// 使用者輸入錯誤，降級為 Warn
		return p, errs.NewWarn(e.Message)
	}
	return p, err
}

func (rt *Runtime) check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errs.NewWarn("request canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		rt.closed.Store(true)
		return errs.NewFatal("runtime closed: " + rt.ClosedReason())
	default:
		return nil
	}
}

// Replay 以 seed 回放一個回合
func (rt *Runtime) Replay(ctx context.Context, req *buf.ReplayRequest) (dto.Round, error) {
	if req == nil {
		return dto.Round{}, errs.NewWarn("nil replay request")
	}
	if err := rt.check(ctx); err != nil {
		return dto.Round{}, err
	}
	p, err := rt.policy(req.Policy)
	if err != nil {
		return dto.Round{}, err
	}
	return rt.pools[p].Replay(ctx, req.Seed)
}

// Sim 以連續 seed 模擬並回傳統計報表
func (rt *Runtime) Sim(ctx context.Context, req *buf.SimRequest) (*stats.StatReport, error) {
	if req == nil {
		return nil, errs.NewWarn("nil sim request")
	}
	if err := rt.check(ctx); err != nil {
		return nil, err
	}
	if req.Rounds < 1 || req.Worker < 1 {
		return nil, errs.NewWarn("rounds and worker must be >= 1")
	}
	if req.Rounds > MaxSimRounds/req.Worker {
		return nil, errs.Warnf("rounds*worker must be <= %d", MaxSimRounds)
	}
	p, err := rt.policy(req.Policy)
	if err != nil {
		return nil, err
	}
	sim := newSimulator(rt.lab, p)
	rep, _, err := sim.SimMP(ctx, req.Seed, req.Rounds, req.Worker, false)
	return rep, err
}

// Stat 回放任意 seed 清單並彙整成統計報表，seed 不需連續
func (rt *Runtime) Stat(ctx context.Context, req *buf.StatRequest) (*stats.StatReport, error) {
	if req == nil {
		return nil, errs.NewWarn("nil stat request")
	}
	if err := rt.check(ctx); err != nil {
		return nil, err
	}
	if n := len(req.Seeds); n == 0 || n > MaxStatSeeds {
		return nil, errs.Warnf("seeds count must be in [1,%d], got %d", MaxStatSeeds, n)
	}
	p, err := rt.policy(req.Policy)
	if err != nil {
		return nil, err
	}
	rec, err := recorder.NewRoundRecorder(rt.lab.gs, p.String())
	if err != nil {
		return nil, err
	}
	err = rt.pools[p].with(ctx, func(rs *slot.RoundSimulator) error {
		for i, seed := range req.Seeds {
			if i%ctxCheckEvery == 0 && ctx.Err() != nil {
				return errs.NewWarn("stat canceled/timeout: " + ctx.Err().Error())
			}
			rec.Record(rs.Play(seed))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec.Done(), nil
}

// CatalogInfo 目錄總覽
func (rt *Runtime) CatalogInfo(top int) (dto.CatalogInfo, error) {
	if rt.cat == nil {
		return dto.CatalogInfo{}, errs.NewWarn("no catalog loaded")
	}
	return dto.NewCatalogInfo(rt.cat, rt.lab.gs.Bet, top), nil
}

// Records 目錄分頁
func (rt *Runtime) Records(req *buf.RecordsRequest) (dto.RecordsPage, error) {
	if rt.cat == nil {
		return dto.RecordsPage{}, errs.NewWarn("no catalog loaded")
	}
	if req == nil {
		return dto.RecordsPage{}, errs.NewWarn("nil records request")
	}
	return dto.NewRecordsPage(rt.cat, req.Offset, req.Limit), nil
}

// CatalogReplay 回放目錄第 index 筆並比對贏分
func (rt *Runtime) CatalogReplay(ctx context.Context, index int, policy string) (dto.RecordReplay, error) {
	if rt.cat == nil {
		return dto.RecordReplay{}, errs.NewWarn("no catalog loaded")
	}
	rec, ok := rt.cat.At(index)
	if !ok {
		return dto.RecordReplay{}, errs.Warnf("index %d out of range [0,%d)", index, rt.cat.Len())
	}
	r, err := rt.Replay(ctx, &buf.ReplayRequest{Seed: rec.Seed, Policy: policy})
	if err != nil {
		return dto.RecordReplay{}, err
	}
	return dto.RecordReplay{Index: index, Record: rec, Match: r.TotalWin == rec.Win, Round: r}, nil
}

// Metrics 各策略池的觀測快照（bfs 在前）
func (rt *Runtime) Metrics() []SimulatorPoolMetrics {
	out := make([]SimulatorPoolMetrics, 0, len(rt.pools))
	for _, p := range []calc.Policy{calc.PolicyCloud, calc.PolicyLongest} {
		if sp, ok := rt.pools[p]; ok {
			out = append(out, sp.Metrics())
		}
	}
	return out
}

// Close 可重複呼叫
func (rt *Runtime) Close() {
	rt.closeWithReason("closed")
}

func (rt *Runtime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		for _, sp := range rt.pools {
			sp.closeWithReason(reason)
		}
		close(rt.done)
	})
}

func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

func (rt *Runtime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
