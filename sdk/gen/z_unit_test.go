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

package gen

import (
	"slices"
	"testing"

	"github.com/zintix-labs/chainlab/sdk/core"
	"github.com/zintix-labs/chainlab/sdk/sampler"
)

func defaultGenerator(t *testing.T) *GridGenerator {
	t.Helper()
	lut, err := sampler.BuildQuantizedLUT([]float64{0, 7, 9, 11, 15, 17, 19, 22, 24, 26}, 10)
	if err != nil {
		t.Fatalf("build lut: %v", err)
	}
	s, err := sampler.NewSymbolSampler(lut, 0.0179, 0)
	if err != nil {
		t.Fatalf("new sampler: %v", err)
	}
	return NewGridGenerator(core.New(core.Default().New(0)), NewGeometry(5, 6), s)
}

func TestGeometryNeighborsOrder(t *testing.T) {
	geo := NewGeometry(5, 6)
	// 角落只有三個鄰格
	if got := geo.Neighbors(0); !slices.Equal(got, []int{1, 6, 7}) {
		t.Fatalf("corner neighbors: %v", got)
	}
	// (1,1) 依 (-1,-1)...(1,1) 順序
	if got := geo.Neighbors(7); !slices.Equal(got, []int{0, 1, 2, 6, 8, 12, 13, 14}) {
		t.Fatalf("inner neighbors: %v", got)
	}
	if got := geo.Neighbors(29); !slices.Equal(got, []int{22, 23, 28}) {
		t.Fatalf("last corner neighbors: %v", got)
	}
	if r, c := geo.RowCol(15); r != 2 || c != 3 || geo.Index(2, 3) != 15 {
		t.Fatalf("row/col mapping broken: %d,%d", r, c)
	}
}

func TestGenKnownSeed(t *testing.T) {
	g := defaultGenerator(t)
	grid := g.Gen(3)
	want := []int16{
		3, 6, 9, 4, 7, 8,
		9, 9, 7, 4, 9, 4,
		2, 2, 6, 6, 1, 5,
		5, 8, 8, 6, 4, 9,
		5, 6, 8, 8, 6, 8,
	}
	if !slices.Equal(grid.Cells, want) {
		t.Fatalf("seed 3 grid mismatch:\n%s", grid)
	}
}

func TestGenDeterministicAndBufferReuse(t *testing.T) {
	g := defaultGenerator(t)
	a := g.Gen(55174).Clone()
	g.Gen(1)
	b := g.Gen(55174)
	if !slices.Equal(a.Cells, b.Cells) {
		t.Fatalf("same seed produced different grids")
	}
	if w := a.Wilds(0); !slices.Contains(w, 24) || !slices.Contains(w, 25) {
		t.Fatalf("expected wilds at 24 and 25, got %v", w)
	}
	for _, v := range b.Cells {
		if v < 0 || v > 9 {
			t.Fatalf("symbol out of range: %d", v)
		}
	}
}

func TestGridMatrixAndNewGrid(t *testing.T) {
	geo := NewGeometry(2, 3)
	g, err := NewGrid(geo, []int16{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := g.Matrix()
	if len(m) != 2 || !slices.Equal(m[1], []int16{4, 5, 6}) {
		t.Fatalf("unexpected matrix %v", m)
	}
	if _, err := NewGrid(geo, []int16{1}); err == nil {
		t.Fatalf("expected size error")
	}
}
