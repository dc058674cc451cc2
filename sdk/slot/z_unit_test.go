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

package slot_test

import (
	"slices"
	"testing"

	"github.com/zintix-labs/chainlab/configs"
	"github.com/zintix-labs/chainlab/sdk/buf"
	"github.com/zintix-labs/chainlab/sdk/calc"
	"github.com/zintix-labs/chainlab/sdk/slot"
	"github.com/zintix-labs/chainlab/spec"
)

func newSim(t *testing.T, p calc.Policy) *slot.RoundSimulator {
	t.Helper()
	gs, err := configs.DefaultGameSetting()
	if err != nil {
		t.Fatalf("load default setting: %v", err)
	}
	tr, err := calc.NewTracer(p, spec.WildSymbol)
	if err != nil {
		t.Fatalf("new tracer: %v", err)
	}
	rs, err := slot.NewRoundSimulator(gs, tr)
	if err != nil {
		t.Fatalf("new round simulator: %v", err)
	}
	return rs
}

func TestPlayStrikeRound(t *testing.T) {
	for _, p := range []calc.Policy{calc.PolicyCloud, calc.PolicyLongest} {
		rs := newSim(t, p)
		rr := rs.Play(3)
		if rr.WildMode || rr.WildCount != 0 {
			t.Fatalf("%s: seed 3 should be a strike round: %+v", p, rr)
		}
		if !slices.Equal(rr.Strikes, []int{4, 28, 29}) {
			t.Fatalf("%s: unexpected strikes %v", p, rr.Strikes)
		}
		if len(rr.Chains) != 1 {
			t.Fatalf("%s: expected one chain, got %+v", p, rr.Chains)
		}
		c := rr.Chains[0]
		want := buf.ChainWin{Symbol: 6, Length: 4, BasePay: 12, Mult: 4, WildMult: 1, Win: 48, Path: []int{28, 21, 14, 15}, Anchor: buf.NoAnchor}
		if c.Symbol != want.Symbol || c.Length != want.Length || c.BasePay != want.BasePay ||
			c.Mult != want.Mult || c.WildMult != want.WildMult || c.Win != want.Win ||
			c.Anchor != want.Anchor || !slices.Equal(c.Path, want.Path) {
			t.Fatalf("%s: got %+v want %+v", p, c, want)
		}
		if rr.TotalWin != 48 || rs.Win(3) != 48 {
			t.Fatalf("%s: unexpected total %d", p, rr.TotalWin)
		}
		if rr.Grid[0] != 3 || rr.Grid[29] != 8 || len(rr.Grid) != 30 {
			t.Fatalf("%s: unexpected grid snapshot %v", p, rr.Grid)
		}
	}
}

func TestPlaySecondStrikeSeed(t *testing.T) {
	rs := newSim(t, calc.PolicyCloud)
	rr := rs.Play(13)
	if rr.TotalWin != 60 || len(rr.Chains) != 1 || !slices.Equal(rr.Chains[0].Path, []int{21, 15, 22, 23}) {
		t.Fatalf("unexpected round %+v", rr)
	}
}

func TestPlayWildRound(t *testing.T) {
	for _, p := range []calc.Policy{calc.PolicyCloud, calc.PolicyLongest} {
		rs := newSim(t, p)
		rr := rs.Play(55174)
		if !rr.WildMode || rr.WildCount != 3 {
			t.Fatalf("%s: expected wild mode with 3 wilds, got %+v", p, rr)
		}
		if len(rr.Strikes) != 0 {
			t.Fatalf("%s: wild round must not strike", p)
		}
		if len(rr.Chains) != 1 {
			t.Fatalf("%s: expected one chain, got %+v", p, rr.Chains)
		}
		c := rr.Chains[0]
		// 錨點 wild 也可以出現在路徑中
		if c.Symbol != 9 || c.Anchor != 24 || c.WildMult != 5 || c.Win != 30 || !slices.Equal(c.Path, []int{18, 24, 25}) {
			t.Fatalf("%s: unexpected chain %+v", p, c)
		}
		if rr.TotalWin != 30 {
			t.Fatalf("%s: unexpected total %d", p, rr.TotalWin)
		}
	}
}

func TestPoliciesDiverge(t *testing.T) {
	if got := newSim(t, calc.PolicyCloud).Win(89851); got != 150 {
		t.Fatalf("bfs win = %d, want 150", got)
	}
	if got := newSim(t, calc.PolicyLongest).Win(89851); got != 180 {
		t.Fatalf("dfs win = %d, want 180", got)
	}
}

func TestSeedRangeTotals(t *testing.T) {
	cases := []struct {
		p       calc.Policy
		sum     int
		nonZero int
	}{
		{calc.PolicyCloud, 503828, 1331},
		{calc.PolicyLongest, 302850, 1257},
	}
	for _, tc := range cases {
		rs := newSim(t, tc.p)
		sum, nonZero, wildRounds := 0, 0, 0
		for seed := int64(1000); seed < 3000; seed++ {
			rr := rs.Play(seed)
			sum += rr.TotalWin
			if rr.TotalWin > 0 {
				nonZero++
			}
			if rr.WildMode {
				wildRounds++
			}
		}
		if sum != tc.sum || nonZero != tc.nonZero || wildRounds != 29 {
			t.Fatalf("%s: sum=%d nonzero=%d wild=%d", tc.p, sum, nonZero, wildRounds)
		}
	}
}

func TestRoundInvariants(t *testing.T) {
	for _, p := range []calc.Policy{calc.PolicyCloud, calc.PolicyLongest} {
		rs := newSim(t, p)
		pt := rs.PayTable()
		for seed := int64(0); seed < 1500; seed++ {
			rr := rs.Play(seed)
			seen := map[int]bool{}
			sum := 0
			for _, c := range rr.Chains {
				if c.Length < calc.MinChainLength || c.Symbol <= 0 {
					t.Fatalf("%s seed %d: ineligible chain paid: %+v", p, seed, c)
				}
				for _, idx := range c.Path {
					if seen[idx] {
						t.Fatalf("%s seed %d: cell %d used twice", p, seed, idx)
					}
					seen[idx] = true
				}
				if c.Anchor != buf.NoAnchor && !slices.Contains(c.Path, c.Anchor) {
					if seen[c.Anchor] {
						t.Fatalf("%s seed %d: anchor %d reused", p, seed, c.Anchor)
					}
					seen[c.Anchor] = true
				}
				if c.Win != pt.BasePay(c.Symbol, c.Length)*pt.Multiplier(c.Length)*c.WildMult {
					t.Fatalf("%s seed %d: win formula broken: %+v", p, seed, c)
				}
				sum += c.Win
			}
			if sum != rr.TotalWin {
				t.Fatalf("%s seed %d: chain sum %d != total %d", p, seed, sum, rr.TotalWin)
			}
			total := rr.TotalWin
			if again := rs.Win(seed); again != total {
				t.Fatalf("%s seed %d: replay mismatch %d vs %d", p, seed, again, total)
			}
		}
	}
}

func TestExhaustedStrikes(t *testing.T) {
	gs := &spec.GameSetting{
		GameName:  "tiny",
		Bet:       100,
		Grid:      spec.GridSetting{Rows: 1, Cols: 3},
		Symbols:   spec.SymbolSetting{Weights: []float64{0, 1}, WildProb: 0},
		Lightning: spec.LightningSetting{StrikesPerSpin: 3, Multipliers: []int{1, 2, 3}},
		WildMode:  spec.WildModeSetting{MinWilds: 1, Multiplier: 5},
		PayTable:  map[int16][]int{1: {10}},
	}
	if err := gs.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	rs, err := slot.NewRoundSimulator(gs, calc.NewCloudTracer(spec.WildSymbol))
	if err != nil {
		t.Fatalf("new round simulator: %v", err)
	}
	rr := rs.Play(1)
	// 第一道閃電吃掉整排，其餘兩道找不到落點
	if rr.TotalWin != 30 || rr.Exhausted != 2 || len(rr.Strikes) != 1 {
		t.Fatalf("unexpected round %+v", rr)
	}
}
