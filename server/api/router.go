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

package api

import (
	"log/slog"

	"github.com/zintix-labs/chainlab"
	v1 "github.com/zintix-labs/chainlab/server/api/v1"
	"github.com/zintix-labs/chainlab/server/netsvr"
	"github.com/zintix-labs/chainlab/server/netsvr/middleware"
)

// RegisterRoutes 註冊 middleware 與 v1 路由
func RegisterRoutes(svr netsvr.NetRouter, rt *chainlab.Runtime, log *slog.Logger) error {
	registerMiddleware(svr, log)
	return registerV1API(svr, rt, log)
}

// 順序：request id 最外層，讓 access log 與 recover 都拿得到 id
func registerMiddleware(svr netsvr.NetRouter, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

func registerV1API(svr netsvr.NetRouter, rt *chainlab.Runtime, log *slog.Logger) error {
	h, err := v1.NewHandler(rt, log)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/config", h.Config)
		vOne.Get("/metrics", h.Metrics)

		vOne.Get("/replay", h.Replay)
		vOne.Post("/replay", h.Replay)
		vOne.Get("/sim", h.Sim)
		vOne.Post("/sim", h.Sim)
		vOne.Post("/simbycfg", h.SimByCfg)
		vOne.Post("/stat", h.Stat)

		vOne.Get("/catalog", h.Catalog)
		vOne.Get("/catalog/records", h.Records)
		vOne.Get("/catalog/replay", h.CatalogReplay)
	})
	return nil
}
