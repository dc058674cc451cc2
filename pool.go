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
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/chainlab/dto"
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/sdk/calc"
	"github.com/zintix-labs/chainlab/sdk/slot"
)

// SimulatorPool 管理「某一種策略」的所有 RoundSimulator 實例。
// 它透過兩個通道管理實例生命週期：
//  1. pool：健康且可用的實例，供 Replay() 借出 / 歸還。
//  2. broken：在運作過程中 panic 的壞實例，送往此通道以便後續檢查或丟棄。
//
// 若某個實例於回放期間發生 panic 或 fatal error，會被送至 broken，並立即補上一個新實例以維持容量。
type SimulatorPool struct {
	lab           *Lab
	policy        calc.Policy
	pool          chan *slot.RoundSimulator // 可用實例
	broken        chan *slot.RoundSimulator // 壞掉的實例
	done          chan struct{}             // 關閉訊號：關閉後不再允許借出/歸還/補充
	closeOnce     sync.Once
	poolsize      int
	rebuild       atomic.Int32 // 補充次數
	inflight      atomic.Int32 // 使用中
	panics        atomic.Int32 // panic 次數
	fatals        atomic.Int32 // fatal 次數（實例狀態不可信）
	served        atomic.Int64 // 成功完成的借用次數
	closeReason   atomic.Value // string: 關閉原因
	closeInflight atomic.Int32 // 關閉當下 inflight（快照）
	closeAvail    atomic.Int32 // 關閉當下 pool 可用數量（快照）
}

// newSimulatorPool 預先建立 n 個實例放入 pool
func newSimulatorPool(n int, lab *Lab, policy calc.Policy) (*SimulatorPool, error) {
	n = max(1, n)
	p := &SimulatorPool{
		lab:      lab,
		policy:   policy,
		pool:     make(chan *slot.RoundSimulator, n),
		broken:   make(chan *slot.RoundSimulator, 100),
		done:     make(chan struct{}),
		poolsize: n,
	}
	p.closeReason.Store("")
	p.closeInflight.Store(-1)
	p.closeAvail.Store(-1)

	for range n {
		rs, err := lab.NewRoundSimulator(policy)
		if err != nil {
			return nil, err
		}
		p.pool <- rs
	}
	return p, nil
}

// Close 進入關閉狀態，之後的 Replay() 直接回 error
func (p *SimulatorPool) Close() {
	p.closeWithReason("closed")
}

func (p *SimulatorPool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// closeWithReason reason 只會被寫入一次
func (p *SimulatorPool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.closeReason.Store(reason)
		p.closeInflight.Store(p.inflight.Load())
		p.closeAvail.Store(int32(len(p.pool)))
		close(p.done)
	})
}

// isFatalErr 只有錯誤本身宣告 Fatal 才淘汰實例，request 類錯誤不淘汰
func isFatalErr(err error) bool {
	if e, ok := errs.AsErr(err); ok {
		return e.ErrLv == errs.Fatal
	}
	return false
}

// Replay 借出一個實例回放 seed
func (p *SimulatorPool) Replay(ctx context.Context, seed int64) (dto.Round, error) {
	var out dto.Round
	err := p.with(ctx, func(rs *slot.RoundSimulator) error {
		r, err := playRound(rs, seed)
		out = r
		return err
	})
	return out, err
}

// Win 借出一個實例只計算 seed 的贏分
func (p *SimulatorPool) Win(ctx context.Context, seed int64) (int, error) {
	win := 0
	err := p.with(ctx, func(rs *slot.RoundSimulator) error {
		win = rs.Win(seed)
		return nil
	})
	return win, err
}

func (p *SimulatorPool) with(ctx context.Context, fn func(rs *slot.RoundSimulator) error) (err error) {
	var rs *slot.RoundSimulator
	select {
	case <-p.done:
		return errs.NewFatal("simulator pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return errs.NewWarn("replay canceled/timeout: " + ctx.Err().Error())
	case rs = <-p.pool:
		p.inflight.Add(1)
	}
	if rs == nil {
		return errs.NewFatal("simulator pool got nil simulator")
	}

	var isPanic bool
	defer func() {
		p.inflight.Add(-1)
		if r := recover(); r != nil {
			isPanic = true
			p.panics.Add(1)
			err = errs.NewFatal(fmt.Sprintf("simulator %s panic : %v", p.policy, r))
		}
		if p.Closed() {
			return
		}
		if isPanic || isFatalErr(err) {
			if !isPanic {
				p.fatals.Add(1)
			}
			select {
			case p.broken <- rs:
			default:
				// broken 滿了代表連續故障，交由上層接管
				p.closeWithReason("overwhelmed_by_failures")
				return
			}
			fresh, buildErr := p.lab.NewRoundSimulator(p.policy)
			p.rebuild.Add(1)
			if buildErr != nil {
				err = errs.NewFatal(fmt.Sprintf("simulator %s can not build", p.policy))
				p.closeWithReason("rebuild_failed")
				return
			}
			select {
			case <-p.done:
			case p.pool <- fresh:
			}
			return
		}
		select {
		case <-p.done:
		case p.pool <- rs:
		}
	}()

	err = fn(rs)
	if err == nil {
		p.served.Add(1)
	}
	return err
}

func (p *SimulatorPool) PoolSize() int {
	return p.poolsize
}

func (p *SimulatorPool) ClosedReason() string {
	if v := p.closeReason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SimulatorPoolMetrics 拉取式的觀測快照，不綁任何 metrics SDK。
// Available/BrokenBacklog 來自 len(chan)，高併發下為近似值。
type SimulatorPoolMetrics struct {
	Policy        string `json:"policy"`
	PoolSize      int    `json:"pool_size"`
	Available     int    `json:"available"`
	Inflight      int    `json:"inflight"`
	BrokenBacklog int    `json:"broken_backlog"`
	Rebuild       int    `json:"rebuild"`
	Panics        int    `json:"panics"`
	Fatals        int    `json:"fatals"`
	Served        int64  `json:"served"`
	Closed        bool   `json:"closed"`
	CloseReason   string `json:"close_reason"`
	CloseInflight int    `json:"close_inflight"` // -1 表示尚未關閉
	CloseAvail    int    `json:"close_avail"`    // -1 表示尚未關閉
}

func (p *SimulatorPool) Metrics() SimulatorPoolMetrics {
	return SimulatorPoolMetrics{
		Policy:        p.policy.String(),
		PoolSize:      p.poolsize,
		Available:     len(p.pool),
		Inflight:      int(p.inflight.Load()),
		BrokenBacklog: len(p.broken),
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		Served:        p.served.Load(),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: int(p.closeInflight.Load()),
		CloseAvail:    int(p.closeAvail.Load()),
	}
}
