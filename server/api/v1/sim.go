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

package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/zintix-labs/chainlab"
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/sdk/buf"
	"github.com/zintix-labs/chainlab/sdk/calc"
	"github.com/zintix-labs/chainlab/spec"
	"github.com/zintix-labs/chainlab/stats"
)

// SimResponse 模擬結果與伺服器端用時
type SimResponse struct {
	Stats    *stats.StatReport `json:"stats"`
	UsedTime int64             `json:"used_ms"`
}

// Sim GET ?seed=&rounds=&worker=&policy= 或 POST JSON
func (h *Handler) Sim(w http.ResponseWriter, r *http.Request) {
	req, err := buf.DecodeSimRequest(r)
	if err != nil {
		h.fail(w, r, "v1.sim", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), simTimeout)
	defer cancel()

	start := time.Now()
	st, err := h.rt.Sim(ctx, req)
	if err != nil {
		h.fail(w, r, "v1.sim", err)
		return
	}
	h.writeJSON(w, r, SimResponse{Stats: st, UsedTime: time.Since(start).Milliseconds()})
}

// SimByCfg POST：以請求附帶的 JSON 遊戲設定臨時建 Lab 模擬，不影響伺服器載入的設定
func (h *Handler) SimByCfg(w http.ResponseWriter, r *http.Request) {
	type SimByCfgRequest struct {
		GameSetting json.RawMessage `json:"cfg"`
		Seed        *int64          `json:"seed,omitempty"`
		Rounds      int             `json:"rounds"`
		Worker      int             `json:"worker"`
		Policy      string          `json:"policy,omitempty"`
	}
	if r.Method != http.MethodPost {
		h.fail(w, r, "v1.simbycfg", errs.NewWarn("method not allowed"))
		return
	}
	req := new(SimByCfgRequest)
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20) // 5MB
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.fail(w, r, "v1.simbycfg", errs.NewWarn("invalid json: "+err.Error()))
		return
	}
	req.Worker = max(1, req.Worker)
	if req.Rounds < 1 || req.Rounds > chainlab.MaxSimRounds/req.Worker {
		h.fail(w, r, "v1.simbycfg", errs.Warnf("rounds*worker must be in [1,%d]", chainlab.MaxSimRounds))
		return
	}
	if len(req.GameSetting) == 0 {
		h.fail(w, r, "v1.simbycfg", errs.NewWarn("cfg is required"))
		return
	}
	if req.Seed == nil {
		v, err := chainlab.RandomSeed()
		if err != nil {
			h.fail(w, r, "v1.simbycfg", err)
			return
		}
		req.Seed = &v
	}
	policy := h.rt.Lab().Policy()
	if strings.TrimSpace(req.Policy) != "" {
		p, err := calc.ParsePolicy(req.Policy)
		if err != nil {
			h.fail(w, r, "v1.simbycfg", errs.NewWarn(err.Error()))
			return
		}
		policy = p
	}

	gs, err := spec.GetGameSettingByJSON(req.GameSetting)
	if err != nil {
		h.fail(w, r, "v1.simbycfg", err)
		return
	}
	lab, err := chainlab.New(gs, policy)
	if err != nil {
		h.fail(w, r, "v1.simbycfg", err)
		return
	}
	sim, err := lab.NewSimulator(policy)
	if err != nil {
		h.fail(w, r, "v1.simbycfg", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), simTimeout)
	defer cancel()
	st, used, err := sim.SimMP(ctx, *req.Seed, req.Rounds, req.Worker, false)
	if err != nil {
		h.fail(w, r, "v1.simbycfg", err)
		return
	}
	h.writeJSON(w, r, SimResponse{Stats: st, UsedTime: used.Milliseconds()})
}
