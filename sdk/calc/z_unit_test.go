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

package calc

import (
	"slices"
	"testing"
	"time"

	"github.com/zintix-labs/chainlab/sdk/gen"
	"github.com/zintix-labs/chainlab/spec"
)

func buildGrid(t *testing.T, rows, cols int, cells ...int16) *gen.Grid {
	t.Helper()
	g, err := gen.NewGrid(gen.NewGeometry(rows, cols), cells)
	if err != nil {
		t.Fatalf("build grid: %v", err)
	}
	return g
}

func tracers() []Tracer {
	return []Tracer{NewCloudTracer(0), NewLongestTracer(0)}
}

func TestCellSet(t *testing.T) {
	var s CellSet
	s.Add(3)
	s.AddAll([]int{0, 63})
	s2 := s.With(10)
	if !s.Has(63) || s.Has(10) || !s2.Has(10) {
		t.Fatalf("unexpected membership: %b", s2)
	}
	if s2.Len() != 4 {
		t.Fatalf("expected 4 cells, got %d", s2.Len())
	}
	if got := s2.Cells(); !slices.Equal(got, []int{0, 3, 10, 63}) {
		t.Fatalf("unexpected cells %v", got)
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"bfs": PolicyCloud, "CLOUD": PolicyCloud, "dfs": PolicyLongest, " longest ": PolicyLongest} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("astar"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
	if PolicyCloud.String() != "bfs" || PolicyLongest.String() != "dfs" {
		t.Fatalf("unexpected policy names")
	}
}

func TestLineChainSamePolicies(t *testing.T) {
	// 一條不分岔的 5 格直線，從端點出發兩種策略必須相同
	g := buildGrid(t, 3, 5,
		7, 7, 7, 7, 7,
		1, 2, 1, 2, 1,
		3, 4, 3, 4, 3,
	)
	var got []Chain
	for _, tr := range tracers() {
		got = append(got, tr.Trace(g, 0, 0))
	}
	want := []int{0, 1, 2, 3, 4}
	for i, c := range got {
		if !slices.Equal(c.Path, want) || c.Symbol != 7 || c.Length != 5 {
			t.Fatalf("tracer %d: unexpected chain %+v", i, c)
		}
	}
}

func TestCloudCollectsBranches(t *testing.T) {
	g := buildGrid(t, 3, 3,
		5, 1, 5,
		2, 5, 3,
		5, 4, 6,
	)
	c := NewCloudTracer(0).Trace(g, 4, 0)
	if c.Symbol != 5 || c.Length != 4 {
		t.Fatalf("unexpected chain %+v", c)
	}
	if !slices.Equal(c.Path, []int{4, 0, 2, 6}) {
		t.Fatalf("unexpected bfs order %v", c.Path)
	}
	// DFS 只能走一條：中心到任一角落
	d := NewLongestTracer(0).Trace(g, 4, 0)
	if d.Length != 2 || !slices.Equal(d.Path, []int{4, 0}) {
		t.Fatalf("unexpected dfs chain %+v", d)
	}
}

func TestWildStartResolvesSymbol(t *testing.T) {
	g := buildGrid(t, 2, 3,
		0, 4, 4,
		9, 9, 9,
	)
	// BFS 由第一個鄰格決定符號
	c := NewCloudTracer(0).Trace(g, 0, 0)
	if c.Symbol != 4 || !slices.Equal(c.Path, []int{0, 1, 2}) {
		t.Fatalf("bfs: unexpected chain %+v", c)
	}
	// DFS 各分支各自決定符號，取最長
	d := NewLongestTracer(0).Trace(g, 0, 0)
	if d.Symbol != 9 || !slices.Equal(d.Path, []int{0, 3, 4, 5}) {
		t.Fatalf("dfs: unexpected chain %+v", d)
	}
}

func TestAllWildChainIsZeroSymbol(t *testing.T) {
	g := buildGrid(t, 1, 3, 0, 0, 0)
	for _, tr := range tracers() {
		c := tr.Trace(g, 0, 0)
		if c.Symbol != 0 || c.Length != 3 || c.Eligible() {
			t.Fatalf("%s: unexpected chain %+v", tr.Policy(), c)
		}
	}
}

func TestTraceRespectsUsed(t *testing.T) {
	g := buildGrid(t, 1, 5, 3, 3, 3, 3, 3)
	var used CellSet
	used.Add(2)
	for _, tr := range tracers() {
		c := tr.Trace(g, 0, used)
		if c.Length != 2 {
			t.Fatalf("%s: expected blocked chain of 2, got %+v", tr.Policy(), c)
		}
	}
}

func TestLongestFindsLongerPathThanFirstBranch(t *testing.T) {
	// 繞過中間的 9 才能走完所有 2
	g := buildGrid(t, 3, 3,
		2, 2, 9,
		2, 9, 2,
		2, 2, 2,
	)
	c := NewLongestTracer(0).Trace(g, 0, 0)
	if c.Length != 7 {
		t.Fatalf("expected length 7, got %+v", c)
	}
	if !slices.Equal(c.Path, []int{0, 1, 3, 6, 7, 5, 8}) {
		t.Fatalf("unexpected path %v", c.Path)
	}
}

func TestLongestStopsAtReachableBound(t *testing.T) {
	for _, sym := range []int16{4, 0} {
		cells := make([]int16, 30)
		for i := range cells {
			cells[i] = sym
		}
		g := buildGrid(t, 5, 6, cells...)
		done := make(chan Chain, 1)
		go func() { done <- NewLongestTracer(0).Trace(g, 0, 0) }()
		select {
		case c := <-done:
			if c.Length != 30 || c.Symbol != sym {
				t.Fatalf("uniform %d: unexpected chain %+v", sym, c)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("uniform %d: trace did not finish", sym)
		}
	}
}

func TestLongestBoundWithWildStart(t *testing.T) {
	// wild 起點旁兩種符號，上限取較大的那片
	g := buildGrid(t, 3, 3,
		0, 3, 3,
		5, 9, 3,
		5, 5, 5,
	)
	c := NewLongestTracer(0).Trace(g, 0, 0)
	if c.Symbol != 5 || !slices.Equal(c.Path, []int{0, 3, 6, 7, 8}) {
		t.Fatalf("unexpected chain %+v", c)
	}
}

func TestChainPathDistinctAndInBounds(t *testing.T) {
	g := buildGrid(t, 3, 4,
		1, 0, 1, 2,
		0, 1, 1, 0,
		1, 2, 0, 1,
	)
	for _, tr := range tracers() {
		for start := range g.Size() {
			c := tr.Trace(g, start, 0)
			seen := map[int]bool{}
			for _, p := range c.Path {
				if p < 0 || p >= g.Size() || seen[p] {
					t.Fatalf("%s start %d: bad path %v", tr.Policy(), start, c.Path)
				}
				seen[p] = true
				if s := g.At(p); s != 0 && c.Symbol != 0 && s != c.Symbol {
					t.Fatalf("%s start %d: foreign symbol in %v", tr.Policy(), start, c.Path)
				}
			}
			if c.Path[0] != start || c.Length != len(c.Path) {
				t.Fatalf("%s start %d: inconsistent chain %+v", tr.Policy(), start, c)
			}
		}
	}
}

func testPaySetting() *spec.GameSetting {
	return &spec.GameSetting{
		Bet:       100,
		Lightning: spec.LightningSetting{Multipliers: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		WildMode:  spec.WildModeSetting{MinWilds: 3, Multiplier: 5},
		PayTable: map[int16][]int{
			1: {15, 40, 100, 200, 600, 1500},
			9: {2, 6, 15, 30, 80, 200},
		},
	}
}

func TestPayTable(t *testing.T) {
	pt, err := NewPayTable(testPaySetting())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		sym    int16
		length int
		base   int
		mult   int
	}{
		{1, 2, 0, 2},
		{1, 3, 15, 3},
		{1, 8, 1500, 8},
		{1, 12, 1500, 10},
		{9, 4, 6, 4},
		{0, 5, 0, 5},
		{5, 5, 0, 5},
	}
	for _, tc := range cases {
		if got := pt.BasePay(tc.sym, tc.length); got != tc.base {
			t.Fatalf("BasePay(%d,%d) = %d, want %d", tc.sym, tc.length, got, tc.base)
		}
		if got := pt.Multiplier(tc.length); got != tc.mult {
			t.Fatalf("Multiplier(%d) = %d, want %d", tc.length, got, tc.mult)
		}
	}
	if got := pt.ChainWin(Chain{Symbol: 9, Length: 3}, 5); got != 30 {
		t.Fatalf("wild chain win = %d, want 30", got)
	}
}

func TestPayTableBetScaling(t *testing.T) {
	gs := testPaySetting()
	gs.Bet = 250
	pt, err := NewPayTable(gs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 250 * 15 / 100 = 37（整數除法）
	if got := pt.BasePay(1, 3); got != 37 {
		t.Fatalf("expected 37, got %d", got)
	}
}
