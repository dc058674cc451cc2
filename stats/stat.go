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

package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// ciLevel RTP 信賴區間的雙尾信心水準
const ciLevel = 0.95

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 模擬統計報告
type StatReport struct {
	Summary *SummaryReport `json:"Summary"`
	Mult    *MultReport    `json:"Mult"`
	Dist    *DistReport    `json:"Dist"`
	Chain   *ChainReport   `json:"Chain"`
	isDone  bool
}

type SummaryReport struct {
	GameName    string  `json:"GameName"`
	Policy      string  `json:"Policy"`
	FirstSeed   int64   `json:"FirstSeed"`
	Bet         int     `json:"Bet"`
	TotalBet    int     `json:"TotalBet"`
	TotalWin    int     `json:"TotalWin"`
	StrikeWin   int     `json:"StrikeWin"`
	WildWin     int     `json:"WildWin"`
	MaxWin      int     `json:"MaxWin"`
	MaxWinSeed  int64   `json:"MaxWinSeed"`
	RTP         float64 `json:"RTP"`
	RtpCI       CI      `json:"RtpCI"`
	Std         float64 `json:"Std"`
	Cv          float64 `json:"Cv"`
	WildRounds  int     `json:"WildRounds"`
	WildRate    float64 `json:"WildRate"`
	NoWinRounds int     `json:"NoWinRounds"`
	HitRate     float64 `json:"HitRate"`
	Exhausted   int     `json:"Exhausted"`
	Rounds      int     `json:"Rounds"`
}

// MultReport 贏倍統計
//
// 紀錄時不紀錄，避免轉型成本。紀錄完成後由 recorder 整理填入
type MultReport struct {
	TotalWinMult       float64 `json:"TotalWinMult"`
	StrikeWinMult      float64 `json:"StrikeWinMult"`
	WildWinMult        float64 `json:"WildWinMult"`
	TotalWinMultSqSum  float64 `json:"TotalWinMultSqSum"`  // 平方和
	StrikeWinMultSqSum float64 `json:"StrikeWinMultSqSum"` // 平方和
	WildWinMultSqSum   float64 `json:"WildWinMultSqSum"`   // 平方和
}

// DistReport 分數區間落點統計
type DistReport struct {
	WinBucket        []string  `json:"WinBucket"`
	TotalWinCollect  []int     `json:"TotalWinCollect"`
	StrikeWinCollect []int     `json:"StrikeWinCollect"`
	WildWinCollect   []int     `json:"WildWinCollect"`
	TotalWinDist     []float64 `json:"TotalWinDist"`
	StrikeWinDist    []float64 `json:"StrikeWinDist"`
	WildWinDist      []float64 `json:"WildWinDist"`
}

// ChainReport 連鎖統計
//
// LengthCollect[i] 為長度 i 的派彩連鎖數；
// WildCountCollect[i] 為盤面出現 i 個 wild 的回合數。
type ChainReport struct {
	Chains           int      `json:"Chains"`
	ChainsPerRound   float64  `json:"ChainsPerRound"`
	LengthCollect    []int    `json:"LengthCollect"`
	SymbolNames      []string `json:"SymbolNames"`
	SymbolHits       []int    `json:"SymbolHits"`
	SymbolWins       []int    `json:"SymbolWins"`
	WildCountCollect []int    `json:"WildCountCollect"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 統計過程因為性能原因只處理 int 的紀錄，統計完成後請使用 Done 一次性計算統計結果
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	s.Summary.RTP = s.Rtp()
	s.Summary.RtpCI = s.Ci()
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()
	if s.Chain != nil && s.Summary.Rounds > 0 {
		s.Chain.ChainsPerRound = float64(s.Chain.Chains) / float64(s.Summary.Rounds)
	}
	s.isDone = true
}

// Rtp 回傳整體 RTP（總贏分 / 總押注）
func (s *StatReport) Rtp() float64 {
	if s.Summary.Rounds == 0 || s.Summary.TotalBet == 0 {
		return 0
	}
	return (float64(s.Summary.TotalWin) / float64(s.Summary.TotalBet))
}

// Std 回傳單局贏分的樣本標準差（以押注為單位）
func (s *StatReport) Std() float64 {
	if s.Summary.Rounds < 2 || s.Summary.Bet == 0 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)

	winMultPow := s.Mult.TotalWinMult * s.Mult.TotalWinMult
	variance := (s.Mult.TotalWinMultSqSum - winMultPow/rounds) / (rounds - 1)

	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Cv 回傳單局贏分的變異係數
func (s *StatReport) Cv() float64 {
	rtp := s.Rtp()
	if rtp <= 0 {
		return 0
	}
	return s.Std() / rtp
}

// Ci 回傳 RTP 的常態近似信賴區間
func (s *StatReport) Ci() CI {
	rtp := s.Rtp()
	rtpSe := float64(0)
	if s.Summary.Rounds > 1 {
		rtpSe = s.Std() / math.Sqrt(float64(s.Summary.Rounds))
	}
	z := distuv.UnitNormal.Quantile(1 - (1-ciLevel)/2)
	return CI{
		Lo: max(rtp-z*rtpSe, 0.0),
		Hi: rtp + z*rtpSe,
	}
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

// StdOut 輸出用時與摘要表
func (s *StatReport) StdOut(ut time.Duration) {
	_ = s.WriteWith(newStdoutWriter(), &TableStatReportRender{Elapsed: ut})
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, rounds int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	rps := int(float64(rounds) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nrps : %d rounds/sec\n", sec, rps)
	}
	ss := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nrps : %d rounds/sec\n", m, ss, rps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nrps : %d rounds/sec\n", h, m, ss, rps)
}

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	sm := s.Summary
	basic := map[string]string{
		"Game Name":    p.Sprintf("%s", sm.GameName),
		"Policy":       sm.Policy,
		"First Seed":   fmt.Sprintf("%d", sm.FirstSeed),
		"Total Rounds": p.Sprintf("%d", sm.Rounds),
		"Total RTP":    p.Sprintf("%.2f %%", 100.0*sm.RTP),
		"RTP 95% CI":   p.Sprintf("[%.2f%%,%.2f%%]", 100.0*sm.RtpCI.Lo, 100.0*sm.RtpCI.Hi),
		"Total Bet":    p.Sprintf("%d", sm.TotalBet),
		"Total Win":    p.Sprintf("%d", sm.TotalWin),
		"Strike Win":   p.Sprintf("%d", sm.StrikeWin),
		"Wild Win":     p.Sprintf("%d", sm.WildWin),
		"Max Win":      p.Sprintf("%d (seed %d)", sm.MaxWin, sm.MaxWinSeed),
		"Hit Rate":     p.Sprintf("%.2f %%", 100.0*sm.HitRate),
		"Wild Rounds":  p.Sprintf("%d (%.3f %%)", sm.WildRounds, 100.0*sm.WildRate),
		"Exhausted":    p.Sprintf("%d", sm.Exhausted),
		"STD":          p.Sprintf("%.3f", sm.Std),
		"CV":           p.Sprintf("%.3f", sm.Cv),
	}
	keys := []string{"Game Name", "Policy", "First Seed", "Total Rounds", "Total RTP", "RTP 95% CI", "Total Bet", "Total Win", "Strike Win", "Wild Win", "Max Win", "Hit Rate", "Wild Rounds", "Exhausted", "STD", "CV"}
	return keys, basic
}

func (s *StatReport) fmtSymbols() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	c := s.Chain
	keys := make([]string, 0, len(c.SymbolNames))
	msg := make(map[string]string, len(c.SymbolNames))
	for i, name := range c.SymbolNames {
		if c.SymbolHits[i] == 0 && c.SymbolWins[i] == 0 {
			continue
		}
		share := 0.0
		if s.Summary.TotalWin > 0 {
			share = 100 * float64(c.SymbolWins[i]) / float64(s.Summary.TotalWin)
		}
		keys = append(keys, name)
		msg[name] = p.Sprintf("%d hits / %d win / %.2f %%", c.SymbolHits[i], c.SymbolWins[i], share)
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := runewidth.StringWidth(title)
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
