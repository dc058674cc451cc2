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

package spec

import (
	"strings"

	"github.com/zintix-labs/chainlab/errs"
)

// Comparator 決定 RTP 收斂規則中 payout 與 RTP 的比較方式
type Comparator string

const (
	// CompareLiteral 直接以 payout（籌碼）比較 RTP（百分比）
	CompareLiteral Comparator = "literal"
	// CompareBetRelative 先把 payout 換算成 win/bet*100 再比較
	CompareBetRelative Comparator = "bet_relative"
)

// CurateSetting 種子篩選流程設定
type CurateSetting struct {
	TargetRTP   float64    `yaml:"target_rtp"    json:"target_rtp"`
	Count       int        `yaml:"count"         json:"count"`
	CapFraction float64    `yaml:"cap_fraction"  json:"cap_fraction"`
	Tolerance   *float64   `yaml:"tolerance"     json:"tolerance,omitempty"` // nil 取預設，0 為有效值
	Band        *float64   `yaml:"band"          json:"band,omitempty"`
	Comparator  Comparator `yaml:"comparator"    json:"comparator"`
	MaxScans    int64      `yaml:"max_scans"     json:"max_scans"`
	BaseSeed    int64      `yaml:"base_seed"     json:"base_seed"`
	StartOffset int64      `yaml:"start_offset"  json:"start_offset"`
	Workers     int        `yaml:"workers"       json:"workers"`
	Policy      string     `yaml:"policy"        json:"policy"`
	Output      string     `yaml:"output"        json:"output"`
}

const (
	defaultTolerance = 1
	defaultBand      = 50
	// 每筆目錄平均掃描數的保守上限
	defaultScansPerRecord = 100_000
	// MaxSeed 種子上限 2^53，超過後無法以 float64 精確表示
	MaxSeed int64 = 1 << 53
)

func (cs *CurateSetting) init() error {
	if cs.Tolerance == nil {
		v := float64(defaultTolerance)
		cs.Tolerance = &v
	}
	if cs.Band == nil {
		v := float64(defaultBand)
		cs.Band = &v
	}
	if cs.Comparator == "" {
		cs.Comparator = CompareLiteral
	}
	if cs.Policy == "" {
		cs.Policy = "bfs"
	}
	if cs.Workers < 1 {
		cs.Workers = 1
	}
	if cs.MaxScans == 0 && cs.Count > 0 {
		cs.MaxScans = int64(cs.Count) * defaultScansPerRecord
	}
	cs.Comparator = Comparator(strings.ToLower(string(cs.Comparator)))
	return cs.valid()
}

// Init 補預設值並驗證，程式內修改欄位後需再呼叫一次
func (cs *CurateSetting) Init() error {
	return cs.init()
}

func (cs *CurateSetting) valid() error {
	if cs.Count < 1 {
		return errs.Invalidf("curate err: count must be >= 1, got %d", cs.Count)
	}
	if !(cs.CapFraction > 0) || cs.CapFraction > 1 {
		return errs.Invalidf("curate err: cap_fraction must be in (0,1], got %v", cs.CapFraction)
	}
	if cs.CapLimit() < 1 {
		return errs.Invalidf("curate err: floor(count*cap_fraction) = 0 for count=%d cap=%v, nothing could be accepted", cs.Count, cs.CapFraction)
	}
	if cs.TargetRTP <= 0 {
		return errs.Invalidf("curate err: target_rtp must be positive, got %v", cs.TargetRTP)
	}
	if cs.AcceptTolerance() < 0 || cs.AcceptBand() < 0 {
		return errs.Invalidf("curate err: tolerance and band must be >= 0")
	}
	if cs.MaxScans < int64(cs.Count) {
		return errs.Invalidf("curate err: max_scans %d < count %d", cs.MaxScans, cs.Count)
	}
	if cs.StartOffset < 0 {
		return errs.Invalidf("curate err: start_offset must be >= 0")
	}
	if cs.BaseSeed < 0 {
		return errs.Invalidf("curate err: base_seed must be >= 0, got %d", cs.BaseSeed)
	}
	if cs.BaseSeed > MaxSeed-cs.StartOffset || cs.BaseSeed+cs.StartOffset > MaxSeed-cs.MaxScans {
		return errs.Invalidf("curate err: base_seed+start_offset+max_scans exceeds 2^53")
	}
	switch cs.Comparator {
	case CompareLiteral, CompareBetRelative:
	default:
		return errs.Invalidf("curate err: unknown comparator %q", cs.Comparator)
	}
	switch strings.ToLower(cs.Policy) {
	case "bfs", "cloud", "dfs", "longest":
	default:
		return errs.Invalidf("curate err: unknown policy %q (want bfs or dfs)", cs.Policy)
	}
	return nil
}

// CapLimit 單一 payout 值可被接受的最大次數 floor(count*cap_fraction)
func (cs *CurateSetting) CapLimit() int {
	return int(float64(cs.Count) * cs.CapFraction)
}

// AcceptTolerance RTP 與目標的差距小於此值時進入窄帶判定
func (cs *CurateSetting) AcceptTolerance() float64 {
	if cs.Tolerance == nil {
		return defaultTolerance
	}
	return *cs.Tolerance
}

// AcceptBand 窄帶半寬
func (cs *CurateSetting) AcceptBand() float64 {
	if cs.Band == nil {
		return defaultBand
	}
	return *cs.Band
}
