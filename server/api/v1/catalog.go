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
	"net/http"
	"strconv"

	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/sdk/buf"
)

const (
	defaultTop = 20
	maxRecords = 1000
)

// Catalog GET ?top=：目錄摘要與出現最多的贏分
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	top := defaultTop
	if s := r.URL.Query().Get("top"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			h.fail(w, r, "v1.catalog", errs.Warnf("invalid top: %q", s))
			return
		}
		top = v
	}
	info, err := h.rt.CatalogInfo(top)
	if err != nil {
		h.fail(w, r, "v1.catalog", err)
		return
	}
	h.writeJSON(w, r, info)
}

// Records GET ?offset=&limit=
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	req, err := buf.DecodeRecordsRequest(r, maxRecords)
	if err != nil {
		h.fail(w, r, "v1.records", err)
		return
	}
	page, err := h.rt.Records(req)
	if err != nil {
		h.fail(w, r, "v1.records", err)
		return
	}
	h.writeJSON(w, r, page)
}

// CatalogReplay GET ?index=&policy=：回放目錄第 index 筆並比對贏分
func (h *Handler) CatalogReplay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s := q.Get("index")
	if s == "" {
		h.fail(w, r, "v1.catalog.replay", errs.NewWarn("missing index"))
		return
	}
	idx, err := strconv.Atoi(s)
	if err != nil {
		h.fail(w, r, "v1.catalog.replay", errs.Warnf("invalid index: %q", s))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), replayTimeout)
	defer cancel()

	out, err := h.rt.CatalogReplay(ctx, idx, q.Get("policy"))
	if err != nil {
		h.fail(w, r, "v1.catalog.replay", err)
		return
	}
	h.writeJSON(w, r, out)
}
