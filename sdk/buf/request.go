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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/chainlab/errs"
)

// maxBody 防止 body 過大（4MiB）
const maxBody = 4 << 20

// ReplayRequest 以 seed 回放一個回合
type ReplayRequest struct {
	Seed   int64  `json:"seed"`
	Policy string `json:"policy,omitempty"` // 留空使用伺服器預設
}

// SimRequest 以連續 seed 執行一段模擬
type SimRequest struct {
	Seed   int64  `json:"seed"`
	Rounds int    `json:"rounds"`
	Worker int    `json:"worker"`
	Policy string `json:"policy,omitempty"`
}

// RecordsRequest 分頁讀取目錄
type RecordsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// StatRequest 回放一組 seed 並彙整統計
type StatRequest struct {
	Seeds  []int64 `json:"seeds"`
	Policy string  `json:"policy,omitempty"`
}

// DecodeReplayRequest 會把 HTTP 請求解碼成 ReplayRequest。
//
// 支援：
//   - GET：從 query string 讀取 seed/policy，seed 必填。
//   - POST：從 JSON body 反序列化。
//
// 這裡只負責解碼與基本型別轉換，policy 是否合法由上層決定。
func DecodeReplayRequest(r *http.Request) (*ReplayRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(ReplayRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		s := q.Get("seed")
		if s == "" {
			return nil, errs.NewWarn("missing seed")
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errs.NewWarn(fmt.Sprintf("invalid seed: %v", err))
		}
		req.Seed = v
		req.Policy = q.Get("policy")
		return req, nil
	case http.MethodPost:
		if err := decodeBody(r, req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// DecodeSimRequest 會把 HTTP 請求解碼成 SimRequest（rounds/seed/worker/policy）。
func DecodeSimRequest(r *http.Request) (*SimRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := &SimRequest{Worker: 1}
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		if s := q.Get("rounds"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid rounds: %v", err))
			}
			req.Rounds = v
		}
		if s := q.Get("seed"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid seed: %v", err))
			}
			req.Seed = v
		}
		if s := q.Get("worker"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid worker: %v", err))
			}
			req.Worker = v
		}
		req.Policy = q.Get("policy")
	case http.MethodPost:
		if err := decodeBody(r, req); err != nil {
			return nil, err
		}
	default:
		return nil, errs.NewWarn("method not allowed")
	}
	if req.Rounds < 1 {
		return nil, errs.NewWarn("rounds must be >= 1")
	}
	if req.Worker < 1 {
		req.Worker = 1
	}
	return req, nil
}

// DecodeRecordsRequest 讀取 offset/limit，limit 預設 100、上限 maxLimit
func DecodeRecordsRequest(r *http.Request, maxLimit int) (*RecordsRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := &RecordsRequest{Limit: 100}
	q := r.URL.Query()
	if s := q.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return nil, errs.NewWarn(fmt.Sprintf("invalid offset: %q", s))
		}
		req.Offset = v
	}
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, errs.NewWarn(fmt.Sprintf("invalid limit: %q", s))
		}
		req.Limit = v
	}
	req.Limit = min(req.Limit, maxLimit)
	return req, nil
}

// DecodeStatRequest 只接受 POST JSON body
func DecodeStatRequest(r *http.Request) (*StatRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, errs.NewWarn("method not allowed")
	}
	req := new(StatRequest)
	if err := decodeBody(r, req); err != nil {
		return nil, err
	}
	if len(req.Seeds) == 0 {
		return nil, errs.NewWarn("seeds is required")
	}
	return req, nil
}

func decodeBody(r *http.Request, out any) error {
	body := io.LimitReader(r.Body, maxBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errs.NewWarn(fmt.Sprintf("invalid json: %v", err))
	}
	return nil
}
