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

package catalog

import (
	"bytes"
	"math"
	"path/filepath"
	"slices"
	"testing"
)

func sample() *Catalog {
	return FromRecords([]SeedRecord{
		{Seed: 1000, Win: 1818},
		{Seed: 1001, Win: 0},
		{Seed: 1002, Win: 0},
		{Seed: 1003, Win: 72},
		{Seed: 1004, Win: 15},
	})
}

func TestCatalogCounters(t *testing.T) {
	c := sample()
	if c.Len() != 5 || c.TotalWin() != 1905 || c.Distinct() != 4 {
		t.Fatalf("unexpected counters len=%d total=%d distinct=%d", c.Len(), c.TotalWin(), c.Distinct())
	}
	if c.Count(0) != 2 || c.Count(72) != 1 || c.Count(5) != 0 {
		t.Fatalf("unexpected frequencies %v", c.Frequencies())
	}
	if w, n := c.MaxFrequency(); w != 0 || n != 2 {
		t.Fatalf("unexpected max frequency %d x%d", w, n)
	}
	// 1905 / (5*100) * 100
	if rtp := c.RTP(100); math.Abs(rtp-381) > 1e-9 {
		t.Fatalf("unexpected rtp %v", rtp)
	}
	if got := c.Page(3, 10); len(got) != 2 || got[0].Seed != 1003 {
		t.Fatalf("unexpected page %v", got)
	}
	if got := c.Page(9, 10); len(got) != 0 {
		t.Fatalf("expected empty page, got %v", got)
	}
}

func TestSaveLoadJSON(t *testing.T) {
	c := sample()
	var b bytes.Buffer
	if err := c.Save(&b); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !bytes.HasPrefix(b.Bytes(), []byte(`[{"seed":1000,"win":1818},{"seed":1001,"win":0}`)) {
		t.Fatalf("unexpected json %s", b.String())
	}
	got, err := Load(&b)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !slices.Equal(got.Records(), c.Records()) || got.Count(0) != 2 {
		t.Fatalf("round trip mismatch")
	}
}

func TestSaveLoadFile(t *testing.T) {
	dir := t.TempDir()
	c := sample()
	for _, name := range []string{"seeds.json", "nested/seeds.json.zst"} {
		path := filepath.Join(dir, name)
		if err := c.SaveFile(path); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, err := LoadFile(path)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if !slices.Equal(got.Records(), c.Records()) {
			t.Fatalf("%s: round trip mismatch", name)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample(), 100)
	if s.Count != 5 || s.MaxWin != 1818 || s.MaxFreq != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if math.Abs(s.Mean-3.81) > 1e-9 {
		t.Fatalf("unexpected mean %v", s.Mean)
	}
	if math.Abs(s.ZeroShare-0.4) > 1e-9 {
		t.Fatalf("unexpected zero share %v", s.ZeroShare)
	}
	if s.StdDev <= 0 {
		t.Fatalf("expected positive std dev")
	}
	if empty := Summarize(New(0), 100); empty.Count != 0 || empty.RTP != 0 {
		t.Fatalf("unexpected empty summary %+v", empty)
	}
}

func TestVerifyAndCap(t *testing.T) {
	c := sample()
	truth := map[int64]int{1000: 1818, 1001: 0, 1002: 0, 1003: 72, 1004: 15}
	if err := Verify(c, func(s int64) int { return truth[s] }); err != nil {
		t.Fatalf("unexpected verify error: %v", err)
	}
	truth[1003] = 71
	if err := Verify(c, func(s int64) int { return truth[s] }); err == nil {
		t.Fatalf("expected mismatch to be reported")
	}
	if err := CheckCap(c, 2); err != nil {
		t.Fatalf("unexpected cap error: %v", err)
	}
	if err := CheckCap(c, 1); err == nil {
		t.Fatalf("expected cap violation")
	}
}
