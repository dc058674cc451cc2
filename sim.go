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
	"crypto/rand"
	"io"
	"math"
	"math/big"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/recorder"
	"github.com/zintix-labs/chainlab/sdk/calc"
	"github.com/zintix-labs/chainlab/sdk/slot"
	"github.com/zintix-labs/chainlab/stats"
)

const capPrepare int = 16

// ctxCheckEvery 每跑這麼多回合檢查一次 ctx
const ctxCheckEvery = 4096

// Simulator 以連續 seed 模擬回合，可建立多個 RoundSimulator 平行紀錄統計。
//
// 同一段 seed 範圍不論 worker 數，合併後的統計結果都相同。
type Simulator struct {
	GameName string
	lab      *Lab
	policy   calc.Policy
	sBuf     []*slot.RoundSimulator    // 併發執行的回合工作站
	rBuf     []*recorder.RoundRecorder // 併發遊戲紀錄員
}

func newSimulator(lab *Lab, policy calc.Policy) *Simulator {
	return &Simulator{
		GameName: lab.gs.GameName,
		lab:      lab,
		policy:   policy,
		sBuf:     make([]*slot.RoundSimulator, 0, capPrepare),
		rBuf:     make([]*recorder.RoundRecorder, 0, capPrepare),
	}
}

// RandomSeed 以 crypto/rand 產生非負的起始 seed
func RandomSeed() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.Wrap(err, "random seed")
	}
	return n.Int64(), nil
}

// Sim 單線模擬器：seed 由 first 起連續跑 rounds 回合，回傳統計結果與用時
func (s *Simulator) Sim(first int64, rounds int, showpb bool) (*stats.StatReport, time.Duration, error) {
	return s.SimMP(context.Background(), first, rounds, 1, showpb)
}

// SimMP 平行模擬：共 rounds*mp 回合，seed 範圍為 [first, first+rounds*mp)，
// 第 i 個 worker 負責 [first+i*rounds, first+(i+1)*rounds)。合併統計結果後回傳統計結果與用時。
func (s *Simulator) SimMP(ctx context.Context, first int64, rounds int, mp int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	if first < 0 || first > math.MaxInt64-int64(rounds)*int64(mp) {
		return nil, 0, errs.NewWarn("seed range overflows int64")
	}
	for len(s.sBuf) < mp {
		rs, err := s.lab.NewRoundSimulator(s.policy)
		if err != nil {
			return nil, 0, err
		}
		s.sBuf = append(s.sBuf, rs)
	}
	for len(s.rBuf) < mp {
		r, err := recorder.NewRoundRecorder(s.lab.gs, s.policy.String())
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(rounds * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			g := s.sBuf[i]
			st := s.rBuf[i]
			base := first + int64(i)*int64(rounds)
			for r := 0; r < rounds; r++ {
				if r%ctxCheckEvery == 0 && ctx.Err() != nil {
					return
				}
				st.Record(g.Play(base + int64(r)))
				bar.Increment()
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err := ctx.Err(); err != nil {
		return nil, used, errs.NewWarn("sim canceled/timeout: " + err.Error())
	}

	st, err := recorder.MergeRoundRecorder(s.rBuf[:mp])
	if err != nil {
		return nil, used, err
	}
	return st.Done(), used, nil
}

// reset 紀錄員每次模擬都重建，回合工作站保留重用
func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}
