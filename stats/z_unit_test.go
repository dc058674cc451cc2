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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/zintix-labs/chainlab/stats"
)

// buildStatReport 以一串贏分建立報告，全部視為閃電贏分
func buildStatReport(bet int, wins []int) *stats.StatReport {
	L := len(stats.Buckets.WinBucketStr())
	bucket := stats.Buckets.GetBucketByBet(bet)
	twc := make([]int, L)

	var totalWin, totalWinSq int
	for _, w := range wins {
		twc[bucket.Index(w)]++
		totalWin += w
		totalWinSq += w * w
	}

	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:    "TestGame",
			Policy:      "bfs",
			Bet:         bet,
			TotalBet:    bet * len(wins),
			TotalWin:    totalWin,
			StrikeWin:   totalWin,
			NoWinRounds: twc[0],
			Rounds:      len(wins),
		},
		Mult: &stats.MultReport{
			TotalWinMult:      float64(totalWin) / float64(bet),
			StrikeWinMult:     float64(totalWin) / float64(bet),
			TotalWinMultSqSum: float64(totalWinSq) / float64(bet*bet),
		},
		Dist: &stats.DistReport{
			WinBucket:       stats.Buckets.WinBucketStr(),
			TotalWinCollect: twc,
		},
	}
	report.Done()
	return report
}

func TestStatReportCoreMetrics(t *testing.T) {
	bet := 40
	rep := buildStatReport(bet, []int{bet, 2 * bet})

	wantRTP := float64(bet+2*bet) / float64(2*bet)
	if got := rep.Rtp(); math.Abs(got-wantRTP) > 1e-12 {
		t.Fatalf("RTP got %.12f want %.12f", got, wantRTP)
	}

	m0, m1 := 1.0, 2.0
	variance := ((m0*m0 + m1*m1) - (m0+m1)*(m0+m1)/2) / (2 - 1)
	wantStd := math.Sqrt(variance)
	if got := rep.Std(); math.Abs(got-wantStd) > 1e-12 {
		t.Fatalf("Std got %.12f want %.12f", got, wantStd)
	}
	if got := rep.Cv(); math.Abs(got-wantStd/wantRTP) > 1e-12 {
		t.Fatalf("CV got %.12f want %.12f", got, wantStd/wantRTP)
	}

	totalRounds := 0
	for _, c := range rep.Dist.TotalWinCollect {
		totalRounds += c
	}
	if totalRounds != rep.Summary.Rounds {
		t.Fatalf("distribution total %d != rounds %d", totalRounds, rep.Summary.Rounds)
	}

	rep.Done() // idempotent
	if rep.Summary.RTP != wantRTP {
		t.Fatalf("RTP changed after second Done")
	}
}

func TestStatReportCI(t *testing.T) {
	rep := buildStatReport(100, []int{0, 100, 200, 0, 300, 0, 100, 50})
	ci := rep.Summary.RtpCI
	rtp := rep.Summary.RTP
	if !(ci.Lo <= rtp && rtp <= ci.Hi) {
		t.Fatalf("rtp %.4f outside ci [%.4f,%.4f]", rtp, ci.Lo, ci.Hi)
	}
	se := rep.Std() / math.Sqrt(8)
	if math.Abs((ci.Hi-rtp)-1.959963984540054*se) > 1e-9 {
		t.Fatalf("ci half width got %.9f want %.9f", ci.Hi-rtp, 1.959963984540054*se)
	}

	empty := buildStatReport(100, nil)
	if empty.Summary.RTP != 0 || empty.Summary.Std != 0 || empty.Summary.Cv != 0 {
		t.Fatalf("empty report should be zero: %+v", empty.Summary)
	}
}

func TestWinBucketIndex(t *testing.T) {
	b := stats.Buckets.GetBucketByBet(100)
	cases := []struct {
		win  int
		want string
	}{
		{0, "[0,0]"},
		{1, "(0,1)"},
		{99, "(0,1)"},
		{100, "[1,2)"},
		{499, "[2,5)"},
		{500, "[5,10)"},
		{199999, "[1000,2000)"},
		{200000, "[2000,10000)"},
		{999999, "[2000,10000)"},
		{1000000, "[10000,+inf)"},
	}
	names := stats.Buckets.WinBucketStr()
	for _, c := range cases {
		if got := names[b.Index(c.win)]; got != c.want {
			t.Fatalf("win %d got bucket %s want %s", c.win, got, c.want)
		}
	}
}

func TestWinBucketConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	out := make([]*stats.WinBucket, 8)
	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = stats.Buckets.GetBucketByBet(7)
		}(i)
	}
	wg.Wait()
	for _, b := range out[1:] {
		if b != out[0] {
			t.Fatalf("bucket for the same bet should be cached once")
		}
	}
}

func TestRenderers(t *testing.T) {
	rep := buildStatReport(100, []int{0, 150, 30})

	var js bytes.Buffer
	if err := rep.WriteWith(&js, &stats.JsonStatReportRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	var back stats.StatReport
	if err := json.Unmarshal(js.Bytes(), &back); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if back.Summary.TotalWin != 180 || back.Summary.Rounds != 3 {
		t.Fatalf("json summary mismatch: %+v", back.Summary)
	}

	var ym bytes.Buffer
	if err := rep.WriteWith(&ym, &stats.YAMLStatReportRender{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	if !strings.Contains(ym.String(), "winbucket: [") {
		t.Fatalf("inner lists should be flow style:\n%s", ym.String())
	}

	var tb bytes.Buffer
	if err := rep.WriteWith(&tb, &stats.TableStatReportRender{}); err != nil {
		t.Fatalf("table render: %v", err)
	}
	if !strings.Contains(tb.String(), "TestGame") || !strings.Contains(tb.String(), "Total RTP") {
		t.Fatalf("table missing rows:\n%s", tb.String())
	}
}
