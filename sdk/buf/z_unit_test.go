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

package buf

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRoundResultAppendResetClone(t *testing.T) {
	rr := NewRoundResult(2, 2)
	rr.Reset(42)
	rr.SetGrid([]int16{1, 1, 1, 0})
	rr.AppendChain(ChainWin{Symbol: 1, Length: 3, Win: 10, Path: []int{0, 1, 2}, Anchor: NoAnchor})
	rr.AppendChain(ChainWin{Symbol: 1, Length: 3, Win: 7, Path: []int{3, 0, 1}, Anchor: 3})
	if rr.TotalWin != 17 || len(rr.Chains) != 2 {
		t.Fatalf("unexpected totals: %+v", rr)
	}
	if rr.Used() != 6 {
		t.Fatalf("anchor inside path must not count twice, got %d", rr.Used())
	}

	cp := rr.Clone()
	rr.Chains[0].Path[0] = 99
	rr.Grid[0] = 9
	if cp.Chains[0].Path[0] != 0 || cp.Grid[0] != 1 {
		t.Fatalf("clone shares memory with buffer")
	}

	rr.Reset(7)
	if rr.Seed != 7 || rr.TotalWin != 0 || len(rr.Chains) != 0 || len(rr.Grid) != 0 {
		t.Fatalf("round result not reset: %+v", rr)
	}
}

func TestDecodeReplayRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/replay?seed=-12&policy=dfs", nil)
	req, err := DecodeReplayRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Seed != -12 || req.Policy != "dfs" {
		t.Fatalf("unexpected request %+v", req)
	}

	r = httptest.NewRequest(http.MethodGet, "/v1/replay", nil)
	if _, err := DecodeReplayRequest(r); err == nil {
		t.Fatalf("expected error for missing seed")
	}

	r = httptest.NewRequest(http.MethodPost, "/v1/replay", bytes.NewBufferString(`{"seed":3}`))
	req, err = DecodeReplayRequest(r)
	if err != nil || req.Seed != 3 {
		t.Fatalf("post decode failed: %+v %v", req, err)
	}

	r = httptest.NewRequest(http.MethodPost, "/v1/replay", bytes.NewBufferString(`{"seed":3,"x":1}`))
	if _, err := DecodeReplayRequest(r); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestDecodeSimRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/sim?rounds=1000&seed=5&worker=4", nil)
	req, err := DecodeSimRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Rounds != 1000 || req.Seed != 5 || req.Worker != 4 {
		t.Fatalf("unexpected request %+v", req)
	}
	r = httptest.NewRequest(http.MethodGet, "/v1/sim?rounds=0", nil)
	if _, err := DecodeSimRequest(r); err == nil {
		t.Fatalf("expected error for zero rounds")
	}
	r = httptest.NewRequest(http.MethodGet, "/v1/sim?rounds=abc", nil)
	if _, err := DecodeSimRequest(r); err == nil {
		t.Fatalf("expected error for bad rounds")
	}
}

func TestDecodeRecordsRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/catalog/records?offset=10&limit=5000", nil)
	req, err := DecodeRecordsRequest(r, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Offset != 10 || req.Limit != 1000 {
		t.Fatalf("unexpected request %+v", req)
	}
	r = httptest.NewRequest(http.MethodGet, "/v1/catalog/records?offset=-1", nil)
	if _, err := DecodeRecordsRequest(r, 1000); err == nil {
		t.Fatalf("expected error for negative offset")
	}
}

func TestDecodeStatRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/stat", strings.NewReader(`{"seeds":[3,13,89851],"policy":"dfs"}`))
	req, err := DecodeStatRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Seeds) != 3 || req.Seeds[2] != 89851 || req.Policy != "dfs" {
		t.Fatalf("unexpected request %+v", req)
	}
	r = httptest.NewRequest(http.MethodPost, "/v1/stat", strings.NewReader(`{"seeds":[]}`))
	if _, err := DecodeStatRequest(r); err == nil {
		t.Fatalf("expected error for empty seeds")
	}
	r = httptest.NewRequest(http.MethodGet, "/v1/stat", nil)
	if _, err := DecodeStatRequest(r); err == nil {
		t.Fatalf("expected error for GET")
	}
}
