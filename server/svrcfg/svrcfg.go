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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/chainlab"
	"github.com/zintix-labs/chainlab/catalog"
	"github.com/zintix-labs/chainlab/errs"
	"github.com/zintix-labs/chainlab/server/logger"
)

// SvrCfg 伺服器組裝所需的全部依賴，皆由呼叫端注入
type SvrCfg struct {
	Log             *slog.Logger
	Addr            string // 留空使用 :5808
	PoolSize        int    // 每種策略的模擬器數量
	ShutdownTimeout time.Duration
	Lab             *chainlab.Lab
	Catalog         *catalog.Catalog // 可為 nil，此時目錄相關 API 回 400
	// VerifyCatalog 啟動前以 Lab 的預設策略逐筆回放目錄
	VerifyCatalog bool
}

// Valid 補上預設值並檢查必要依賴
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	// 1 <= PoolSize <= 64
	sc.PoolSize = max(1, sc.PoolSize)
	sc.PoolSize = min(64, sc.PoolSize)
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	if sc.Catalog != nil && sc.VerifyCatalog {
		if err := sc.Lab.VerifyCatalog(sc.Catalog, sc.Lab.Policy()); err != nil {
			return errs.Wrap(err, "catalog does not match game setting")
		}
	}
	return nil
}
