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

package spec

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"path"
	"strings"

	"github.com/zintix-labs/chainlab/errs"
	"gopkg.in/yaml.v3"
)

// decodeYAML 嚴格解碼：多寫/拼錯欄位就報錯
func decodeYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return errs.WrapWithExtra(errs.ErrInvalidConfig, "failed to unmarshal yaml", err.Error())
	}
	return nil
}

func decodeJSON(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errs.WrapWithExtra(errs.ErrInvalidConfig, "failed to unmarshal json", err.Error())
	}
	return nil
}

// GetGameSettingByYAML
// 會讀取 YAML 設定、補預設值並執行檢查後回傳。
func GetGameSettingByYAML(data []byte) (*GameSetting, error) {
	gs := &GameSetting{}
	if err := decodeYAML(data, gs); err != nil {
		return nil, err
	}
	if err := gs.init(); err != nil {
		return nil, errs.Wrap(err, "game setting initialized err")
	}
	return gs, nil
}

// GetGameSettingByJSON
// 會讀取 Json 設定、補預設值並執行檢查後回傳
func GetGameSettingByJSON(data []byte) (*GameSetting, error) {
	gs := &GameSetting{}
	if err := decodeJSON(data, gs); err != nil {
		return nil, err
	}
	if err := gs.init(); err != nil {
		return nil, errs.Wrap(err, "game setting initialized err")
	}
	return gs, nil
}

// GetCurateSettingByYAML 讀取篩選設定
func GetCurateSettingByYAML(data []byte) (*CurateSetting, error) {
	cs := &CurateSetting{}
	if err := decodeYAML(data, cs); err != nil {
		return nil, err
	}
	if err := cs.init(); err != nil {
		return nil, errs.Wrap(err, "curate setting initialized err")
	}
	return cs, nil
}

// LoadGameSetting 依副檔名（.yaml/.yml/.json）從 fsys 讀取遊戲設定
func LoadGameSetting(fsys fs.FS, name string) (*GameSetting, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errs.Wrap(err, "read game setting "+name)
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return GetGameSettingByJSON(data)
	case ".yaml", ".yml":
		return GetGameSettingByYAML(data)
	default:
		return nil, errs.Invalidf("unsupported setting file extension: %s", name)
	}
}

// LoadCurateSetting 從 fsys 讀取篩選設定（僅支援 YAML）
func LoadCurateSetting(fsys fs.FS, name string) (*CurateSetting, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errs.Wrap(err, "read curate setting "+name)
	}
	return GetCurateSettingByYAML(data)
}
