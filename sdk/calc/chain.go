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
	"strings"

	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/sdk/gen"
)

const (
	// MinChainLength 可派彩的最短連鎖長度
	MinChainLength = 3
	// unresolved 連鎖符號尚未被非 wild 格決定
	unresolved int16 = -1
)

// Chain 一次追蹤的結果。
//
// Path 為不重複的格子索引，第一個元素是起點。
// Symbol 為連鎖符號，整條都是 wild 時為 0。
type Chain struct {
	Path   []int `json:"path"`
	Symbol int16 `json:"symbol"`
	Length int   `json:"length"`
}

// Eligible 長度至少 3 且符號非 wild 才可派彩
func (c Chain) Eligible() bool {
	return c.Length >= MinChainLength && c.Symbol > 0
}

// Tracer 從 start 出發在盤面上追蹤連鎖，used 內的格子不可進入。
//
// 實作可重用內部緩衝，非併發安全。
type Tracer interface {
	Trace(g *gen.Grid, start int, used CellSet) Chain
	Policy() Policy
}

// Policy 連鎖探索策略
type Policy uint8

const (
	// PolicyCloud 廣度優先，收集所有可達的同符號格（雲狀）
	PolicyCloud Policy = iota
	// PolicyLongest 深度優先，窮舉找最長的簡單路徑
	PolicyLongest
)

var policyNames = map[Policy]string{
	PolicyCloud:   "bfs",
	PolicyLongest: "dfs",
}

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParsePolicy 接受 bfs/cloud 與 dfs/longest（不分大小寫）
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bfs", "cloud":
		return PolicyCloud, nil
	case "dfs", "longest":
		return PolicyLongest, nil
	default:
		return 0, errs.Invalidf("unknown chain policy %q (want bfs or dfs)", s)
	}
}

// NewTracer 依策略建立追蹤器，wild 為 wild 的符號代碼
func NewTracer(p Policy, wild int16) (Tracer, error) {
	switch p {
	case PolicyCloud:
		return NewCloudTracer(wild), nil
	case PolicyLongest:
		return NewLongestTracer(wild), nil
	default:
		return nil, errs.Invalidf("unknown chain policy %d", p)
	}
}
