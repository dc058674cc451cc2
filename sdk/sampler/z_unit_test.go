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

package sampler

import (
	"errors"
	"math"
	"testing"

	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/sdk/core"
)

var defaultWeights = []float64{0, 7.0, 9.0, 11.0, 15.0, 17.0, 19.0, 22.0, 24.0, 26.0}

// checkDistribution 驗證抽樣結果的分佈是否符合表內占比
func checkDistribution(t *testing.T, name string, lut LUT, counts map[int]int, total int, tolerance float64) {
	t.Helper()
	for sym := 1; sym < len(defaultWeights); sym++ {
		expected := lut.Share(sym)
		actual := float64(counts[sym]) / float64(total)
		if diff := math.Abs(expected - actual); diff > tolerance {
			t.Errorf("[%s] symbol %d: expected %.4f got %.4f (diff %.4f > tol %.4f)",
				name, sym, expected, actual, diff, tolerance)
		}
	}
}

func TestBuildQuantizedLUTDefaultPool(t *testing.T) {
	lut, err := BuildQuantizedLUT(defaultWeights, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lut) != 1500 {
		t.Fatalf("expected pool size 1500, got %d", len(lut))
	}
	// 依符號順序展開
	if lut[0] != 1 || lut[69] != 1 || lut[70] != 2 || lut[len(lut)-1] != 9 {
		t.Fatalf("unexpected layout: %v %v %v %v", lut[0], lut[69], lut[70], lut[len(lut)-1])
	}
	for _, v := range lut {
		if v == 0 {
			t.Fatalf("wild must not appear in lut")
		}
	}
}

func TestBuildQuantizedLUTRounding(t *testing.T) {
	lut, err := BuildQuantizedLUT([]float64{0, 0.25, 0.34}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// round(2.5)=3, round(3.4)=3
	if len(lut) != 6 {
		t.Fatalf("expected 6 entries, got %d (%v)", len(lut), lut)
	}
}

func TestBuildQuantizedLUTErrors(t *testing.T) {
	cases := []struct {
		name    string
		weights []float64
		scale   float64
	}{
		{"only wild", []float64{1}, 10},
		{"negative", []float64{0, 1, -1}, 10},
		{"nan", []float64{0, math.NaN()}, 10},
		{"empty pool", []float64{0, 0.01, 0.02}, 10},
		{"bad scale", []float64{0, 1}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildQuantizedLUT(tc.weights, tc.scale)
			if !errors.Is(err, errs.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSymbolSamplerDistribution(t *testing.T) {
	lut, err := BuildQuantizedLUT(defaultWeights, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := NewSymbolSampler(lut, 0.0179, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := core.New(core.Default().New(2024))
	const n = 200_000
	counts := map[int]int{}
	wilds := 0
	for i := 0; i < n; i++ {
		v := s.Draw(c)
		if v == 0 {
			wilds++
			continue
		}
		counts[int(v)]++
	}
	if rate := float64(wilds) / n; math.Abs(rate-0.0179) > 0.002 {
		t.Fatalf("wild rate %.4f far from 0.0179", rate)
	}
	checkDistribution(t, "default", lut, counts, n-wilds, 0.005)
}

func TestSymbolSamplerDeterministic(t *testing.T) {
	lut, _ := BuildQuantizedLUT(defaultWeights, 10)
	s, _ := NewSymbolSampler(lut, 0.0179, 0)
	c1 := core.New(core.Default().New(3))
	c2 := core.New(core.Default().New(3))
	for i := 0; i < 30; i++ {
		if a, b := s.Draw(c1), s.Draw(c2); a != b {
			t.Fatalf("draw %d differs: %d vs %d", i, a, b)
		}
	}
}

func TestNewSymbolSamplerRejectsBadProb(t *testing.T) {
	lut, _ := BuildQuantizedLUT(defaultWeights, 10)
	for _, p := range []float64{-0.1, 1, 1.5, math.NaN()} {
		if _, err := NewSymbolSampler(lut, p, 0); err == nil {
			t.Fatalf("expected error for wild prob %v", p)
		}
	}
	if _, err := NewSymbolSampler(nil, 0.1, 0); err == nil {
		t.Fatalf("expected error for empty lut")
	}
}
