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
	"fmt"
	"strings"

	"github.com/zintix-labs/chainlab/errs"
)

// dirs 鄰格掃描順序，會直接影響 BFS 的收集順序與 DFS 的平手取捨
var dirs = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Geometry 盤面幾何：格子以列優先的一維索引 r*Cols+c 表示。
// 建立時預先算好每格的鄰格清單，熱路徑不再做邊界判斷。
type Geometry struct {
	Rows      int
	Cols      int
	neighbors [][]int
}

// NewGeometry 建立盤面幾何
func NewGeometry(rows, cols int) *Geometry {
	g := &Geometry{Rows: rows, Cols: cols}
	g.neighbors = make([][]int, rows*cols)
	for r := range rows {
		for c := range cols {
			nb := make([]int, 0, 8)
			for _, d := range dirs {
				nr, nc := r+d[0], c+d[1]
				if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
					continue
				}
				nb = append(nb, nr*cols+nc)
			}
			g.neighbors[r*cols+c] = nb
		}
	}
	return g
}

// Size 格數
func (g *Geometry) Size() int {
	return g.Rows * g.Cols
}

// Neighbors 依固定方向順序回傳鄰格索引（唯讀，勿修改）
func (g *Geometry) Neighbors(idx int) []int {
	return g.neighbors[idx]
}

// Index 由列、行換算索引
func (g *Geometry) Index(r, c int) int {
	return r*g.Cols + c
}

// RowCol 由索引換算列、行
func (g *Geometry) RowCol(idx int) (int, int) {
	return idx / g.Cols, idx % g.Cols
}

// Grid 一個回合的盤面
type Grid struct {
	*Geometry
	Cells []int16
}

// At 取得 idx 格的符號
func (g *Grid) At(idx int) int16 {
	return g.Cells[idx]
}

// Wilds 依掃描順序回傳所有 wild 格
func (g *Grid) Wilds(wild int16) []int {
	out := make([]int, 0, 4)
	for i, v := range g.Cells {
		if v == wild {
			out = append(out, i)
		}
	}
	return out
}

// Matrix 二維視圖 [row][col]
func (g *Grid) Matrix() [][]int16 {
	m := make([][]int16, g.Rows)
	for r := range g.Rows {
		row := make([]int16, g.Cols)
		copy(row, g.Cells[r*g.Cols:(r+1)*g.Cols])
		m[r] = row
	}
	return m
}

// Clone 深拷貝盤面（幾何共用）
func (g *Grid) Clone() *Grid {
	cells := make([]int16, len(g.Cells))
	copy(cells, g.Cells)
	return &Grid{Geometry: g.Geometry, Cells: cells}
}

func (g *Grid) String() string {
	var sb strings.Builder
	for r := range g.Rows {
		for c := range g.Cols {
			if c > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%d", g.Cells[r*g.Cols+c])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// NewGrid 以既有符號建立盤面，長度須等於 rows*cols
func NewGrid(geo *Geometry, cells []int16) (*Grid, error) {
	if len(cells) != geo.Size() {
		return nil, errs.Warnf("grid: got %d cells, want %d", len(cells), geo.Size())
	}
	return &Grid{Geometry: geo, Cells: cells}, nil
}
