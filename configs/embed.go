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

// Package configs 內嵌預設的遊戲與篩選設定檔。
package configs

import (
	"embed"

	"github.com/zintix-labs/chainlab/spec"
)

const (
	// GameFile 預設遊戲設定檔名
	GameFile = "chain_lightning.yaml"
	// CurateFile 預設篩選設定檔名
	CurateFile = "curate.yaml"
)

// FS provides embedded default config YAMLs for external usage.
//
//go:embed *.yaml
var FS embed.FS

// DefaultGameSetting 每次呼叫都回傳新的一份設定，呼叫端可自由修改
func DefaultGameSetting() (*spec.GameSetting, error) {
	return spec.LoadGameSetting(FS, GameFile)
}

// DefaultCurateSetting 每次呼叫都回傳新的一份設定
func DefaultCurateSetting() (*spec.CurateSetting, error) {
	return spec.LoadCurateSetting(FS, CurateFile)
}
