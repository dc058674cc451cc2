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

// Package server 組裝 HTTP 服務：驗證設定、建立 Runtime、註冊路由並交給 app 管理生命週期。
//
// Run 不綁定任何檔案路徑或環境變數；設定檔、目錄與 logger 一律由 SvrCfg 注入。
// 若要把 API 掛進既有服務，可直接呼叫 Mount 取得 Runtime 後自行管理啟停。
package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/chainlab"
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/server/api"
	"github.com/zintix-labs/chainlab/server/app"
	"github.com/zintix-labs/chainlab/server/netsvr"
	"github.com/zintix-labs/chainlab/server/svrcfg"
)

// Mount 驗證設定、建立 Runtime 並把路由註冊到 router。
// 回傳的 Runtime 由呼叫端負責 Close。
func Mount(sCfg *svrcfg.SvrCfg, router netsvr.NetRouter) (*chainlab.Runtime, error) {
	if sCfg == nil {
		return nil, errs.NewFatal("server config is required")
	}
	if err := sCfg.Valid(); err != nil {
		return nil, err
	}
	if router == nil {
		return nil, errs.NewFatal("router is required")
	}
	rt, err := sCfg.Lab.BuildRuntime(sCfg.PoolSize, sCfg.Catalog)
	if err != nil {
		return nil, errs.Wrap(err, "build runtime")
	}
	if err := api.RegisterRoutes(router, rt, sCfg.Log); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// Run 以內建的 chi server 啟動，阻塞直到收到終止信號或 server 出錯。
func Run(sCfg *svrcfg.SvrCfg) error {
	addr := ""
	if sCfg != nil {
		addr = sCfg.Addr
	}
	return RunWithSvr(sCfg, netsvr.NewChiServer(addr))
}

// RunWithSvr 與 Run 相同，但由呼叫端注入 NetSvr（自訂 listener、timeout、TLS 等）。
// 驗證失敗時額外輸出到 stderr，避免組裝失敗卻沒有 log 可看。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("default server is not ready")
	}
	rt, err := Mount(sCfg, svr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer rt.Close()

	a := app.NewWith(svr).WithLogger(sCfg.Log).WithShutdownTimeout(sCfg.ShutdownTimeout)
	sCfg.Log.Info("server.listen",
		slog.String("addr", svr.Address()),
		slog.String("game", sCfg.Lab.Setting().GameName),
		slog.String("policy", sCfg.Lab.Policy().String()),
		slog.Int("pool_size", sCfg.PoolSize),
		slog.Bool("catalog", sCfg.Catalog != nil),
	)
	if err := a.Run(); err != nil {
		sCfg.Log.Error("server.stopped", slog.Any("err", err))
		return err
	}
	sCfg.Log.Info("server.stopped")
	return nil
}
