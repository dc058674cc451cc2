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

// Package v1 第一版 HTTP API：回放、模擬、目錄查詢與觀測。
package v1

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/zintix-labs/chainlab"
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/server/httperr"
)

const (
	replayTimeout = 5 * time.Second
	simTimeout    = 50 * time.Second
)

// Handler 所有 v1 路由共用的依賴
type Handler struct {
	rt  *chainlab.Runtime
	log *slog.Logger
}

func NewHandler(rt *chainlab.Runtime, log *slog.Logger) (*Handler, error) {
	if rt == nil {
		return nil, errs.NewFatal("runtime is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{rt: rt, log: log}, nil
}

// fail 記錄需關注的錯誤後寫回 JSON 錯誤
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	httperr.Log(h.log, msg, err)
	httperr.Errs(w, r, err)
}

// writeJSON 先完整編碼再寫出，保證不會寫到一半才失敗
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	var b bytes.Buffer
	if err := json.NewEncoder(&b).Encode(v); err != nil {
		h.fail(w, r, "v1.encode", errs.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Bytes())
}

// Config 目前載入的遊戲設定與預設策略
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	type ConfigResponse struct {
		Policy  string `json:"policy"`
		Setting any    `json:"setting"`
	}
	lab := h.rt.Lab()
	h.writeJSON(w, r, ConfigResponse{Policy: lab.Policy().String(), Setting: lab.Setting()})
}

// Metrics 各策略模擬器池的觀測快照
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	type MetricsResponse struct {
		Closed bool                            `json:"closed"`
		Reason string                          `json:"reason,omitempty"`
		Pools  []chainlab.SimulatorPoolMetrics `json:"pools"`
	}
	h.writeJSON(w, r, MetricsResponse{
		Closed: h.rt.Closed(),
		Reason: h.rt.ClosedReason(),
		Pools:  h.rt.Metrics(),
	})
}
