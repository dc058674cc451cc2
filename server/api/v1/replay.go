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

	"github.com/zintix-labs/chainlab/sdk/buf"
)

// Replay GET ?seed=&policy= 或 POST {"seed":..,"policy":..}
func (h *Handler) Replay(w http.ResponseWriter, r *http.Request) {
	req, err := buf.DecodeReplayRequest(r)
	if err != nil {
		h.fail(w, r, "v1.replay", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), replayTimeout)
	defer cancel()

	round, err := h.rt.Replay(ctx, req)
	if err != nil {
		h.fail(w, r, "v1.replay", err)
		return
	}
	h.writeJSON(w, r, round)
}
