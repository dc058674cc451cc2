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

// Package httperr 把內部錯誤映射成 HTTP 回應，屬於邊界層，核心 errs 不依賴 net/http。
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/zintix-labs/chainlab/errs"
)

// Body 錯誤回應的 JSON 結構
type Body struct {
	Status    int    `json:"status"`
	Level     string `json:"level,omitempty"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則：
//   - ctx timeout/cancel → 504/408
//   - errs.Warn          → 400
//   - errs.Fatal         → 500
//   - 設定錯誤（ErrInvalidConfig）→ 422
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, errs.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	}
	if e, ok := errs.AsErr(err); ok && e.ErrLv == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Errs 寫回 JSON 錯誤，err 為 nil 時不動作
func Errs(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	WriteStatus(w, r, StatusCode(err), err)
}

// WriteStatus 以指定狀態碼寫回 JSON 錯誤
func WriteStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	b := Body{Status: status, Error: message(err)}
	if e, ok := errs.AsErr(err); ok {
		b.Level = errs.ErrLv(e.ErrLv)
	}
	if r != nil {
		b.RequestID = chimid.GetReqID(r.Context())
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(b)
}

// Log 只記錄需要關注的錯誤：逾時類用 Warn，5xx 用 Error，4xx 不記
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	case status >= 500:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	}
}

// message 對外只輸出錯誤本身的訊息，不帶等級前綴
func message(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := errs.AsErr(err); ok {
		if e.Cause != nil && e.Message == "" {
			return message(e.Cause)
		}
		if e.Cause != nil {
			return e.Message + ": " + message(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
