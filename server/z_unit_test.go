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

package server_test

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/chainlab"
	"github.com/zintix-labs/chainlab/catalog"
	"github.com/zintix-labs/chainlab/configs"
	"github.com/zintix-labs/chainlab/sdk/calc"
	"github.com/zintix-labs/chainlab/server"
	"github.com/zintix-labs/chainlab/server/httperr"
	"github.com/zintix-labs/chainlab/server/netsvr"
	"github.com/zintix-labs/chainlab/server/svrcfg"
)

func newHandler(t *testing.T, cat *catalog.Catalog) http.Handler {
	t.Helper()
	lab, err := chainlab.NewFromFS(configs.FS, configs.GameFile, calc.PolicyCloud)
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	svr := netsvr.NewChiServer("")
	rt, err := server.Mount(&svrcfg.SvrCfg{
		Log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		PoolSize:      2,
		Lab:           lab,
		Catalog:       cat,
		VerifyCatalog: cat != nil,
	}, svr)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	t.Cleanup(rt.Close)
	return svr.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestReplayRoutes(t *testing.T) {
	h := newHandler(t, nil)
	type round struct {
		Seed   int64  `json:"seed"`
		Win    int    `json:"win"`
		Policy string `json:"policy"`
	}

	rec := do(t, h, http.MethodGet, "/v1/replay?seed=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}
	var r round
	decode(t, rec, &r)
	if r.Seed != 3 || r.Win != 48 || r.Policy != "bfs" {
		t.Fatalf("unexpected round %+v", r)
	}

	rec = do(t, h, http.MethodPost, "/v1/replay", `{"seed":89851,"policy":"dfs"}`)
	decode(t, rec, &r)
	if rec.Code != http.StatusOK || r.Win != 180 || r.Policy != "dfs" {
		t.Fatalf("dfs replay status %d round %+v", rec.Code, r)
	}

	rec = do(t, h, http.MethodGet, "/v1/replay", "")
	var e httperr.Body
	decode(t, rec, &e)
	if rec.Code != http.StatusBadRequest || e.Level != "warn" || e.RequestID == "" {
		t.Fatalf("missing seed got %d %+v", rec.Code, e)
	}
	rec = do(t, h, http.MethodGet, "/v1/replay?seed=1&policy=zigzag", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown policy got %d", rec.Code)
	}
}

func TestSimRoutes(t *testing.T) {
	h := newHandler(t, nil)
	type simResp struct {
		Stats struct {
			Summary struct {
				TotalWin int
				Rounds   int
				Policy   string
			}
		} `json:"stats"`
	}

	rec := do(t, h, http.MethodPost, "/v1/sim", `{"seed":1000,"rounds":1000,"worker":2}`)
	var s simResp
	decode(t, rec, &s)
	if rec.Code != http.StatusOK || s.Stats.Summary.TotalWin != 503828 || s.Stats.Summary.Rounds != 2000 {
		t.Fatalf("sim status %d got %+v", rec.Code, s)
	}
	rec = do(t, h, http.MethodGet, "/v1/sim?seed=1000&rounds=2000&policy=dfs", "")
	decode(t, rec, &s)
	if rec.Code != http.StatusOK || s.Stats.Summary.TotalWin != 302850 || s.Stats.Summary.Policy != "dfs" {
		t.Fatalf("dfs sim status %d got %+v", rec.Code, s)
	}
	rec = do(t, h, http.MethodGet, "/v1/sim?rounds=0", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero rounds got %d", rec.Code)
	}

	gs, err := configs.DefaultGameSetting()
	if err != nil {
		t.Fatalf("default setting: %v", err)
	}
	cfg, err := json.Marshal(gs)
	if err != nil {
		t.Fatalf("marshal setting: %v", err)
	}
	body := `{"cfg":` + string(cfg) + `,"seed":1000,"rounds":2000}`
	rec = do(t, h, http.MethodPost, "/v1/simbycfg", body)
	decode(t, rec, &s)
	if rec.Code != http.StatusOK || s.Stats.Summary.TotalWin != 503828 {
		t.Fatalf("simbycfg status %d got %+v", rec.Code, s)
	}

	gs.Bet = 0
	cfg, _ = json.Marshal(gs)
	rec = do(t, h, http.MethodPost, "/v1/simbycfg", `{"cfg":`+string(cfg)+`,"rounds":10}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid cfg got %d body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/v1/stat", `{"seeds":[3,13,89851]}`)
	var st struct{ Summary struct{ TotalWin int } }
	decode(t, rec, &st)
	if rec.Code != http.StatusOK || st.Summary.TotalWin != 258 {
		t.Fatalf("stat status %d got %+v", rec.Code, st)
	}
}

func TestCatalogRoutes(t *testing.T) {
	h := newHandler(t, nil)
	if rec := do(t, h, http.MethodGet, "/v1/catalog", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("no catalog got %d", rec.Code)
	}

	cat := catalog.FromRecords([]catalog.SeedRecord{{Seed: 3, Win: 48}, {Seed: 13, Win: 60}, {Seed: 89851, Win: 150}})
	h = newHandler(t, cat)

	rec := do(t, h, http.MethodGet, "/v1/catalog?top=2", "")
	var info struct {
		Top []catalog.FreqEntry `json:"top"`
	}
	decode(t, rec, &info)
	if rec.Code != http.StatusOK || len(info.Top) != 2 {
		t.Fatalf("catalog status %d got %+v", rec.Code, info)
	}

	rec = do(t, h, http.MethodGet, "/v1/catalog/records?offset=1&limit=1", "")
	var page struct {
		Records []catalog.SeedRecord `json:"records"`
	}
	decode(t, rec, &page)
	if rec.Code != http.StatusOK || len(page.Records) != 1 || page.Records[0].Seed != 13 {
		t.Fatalf("records status %d got %+v", rec.Code, page)
	}

	rec = do(t, h, http.MethodGet, "/v1/catalog/replay?index=2", "")
	var rr struct {
		Match bool `json:"match"`
	}
	decode(t, rec, &rr)
	if rec.Code != http.StatusOK || !rr.Match {
		t.Fatalf("catalog replay status %d got %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/v1/catalog/replay?index=9", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("out of range got %d", rec.Code)
	}
}

func TestConfigMetricsAndCompression(t *testing.T) {
	h := newHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/v1/config", "")
	var cfg struct {
		Policy  string `json:"policy"`
		Setting struct {
			GameName string `json:"game_name"`
		} `json:"setting"`
	}
	decode(t, rec, &cfg)
	if cfg.Policy != "bfs" || cfg.Setting.GameName != "chain_lightning" {
		t.Fatalf("config got %+v", cfg)
	}

	do(t, h, http.MethodGet, "/v1/replay?seed=3", "")
	rec = do(t, h, http.MethodGet, "/v1/metrics", "")
	var m struct {
		Closed bool                            `json:"closed"`
		Pools  []chainlab.SimulatorPoolMetrics `json:"pools"`
	}
	decode(t, rec, &m)
	if m.Closed || len(m.Pools) != 2 || m.Pools[0].Served != 1 {
		t.Fatalf("metrics got %+v", m)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/replay?seed=13", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	if out.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip, got %q", out.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(bytes.NewReader(out.Body.Bytes()))
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	raw, _ := io.ReadAll(zr)
	if !bytes.Contains(raw, []byte(`"win":60`)) {
		t.Fatalf("unexpected body %s", raw)
	}
}
