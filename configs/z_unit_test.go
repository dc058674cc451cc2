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

package configs

import "testing"

func TestDefaultSettingsLoad(t *testing.T) {
	gs, err := DefaultGameSetting()
	if err != nil {
		t.Fatalf("default game setting: %v", err)
	}
	if gs.Grid.Rows != 5 || gs.Grid.Cols != 6 {
		t.Fatalf("unexpected grid %+v", gs.Grid)
	}
	if gs.Bet != 100 || gs.WildMode.MinWilds != 3 || gs.WildMode.Multiplier != 5 {
		t.Fatalf("unexpected constants: bet=%d wild=%+v", gs.Bet, gs.WildMode)
	}
	if len(gs.PayTable) != 9 {
		t.Fatalf("expected 9 pay rows, got %d", len(gs.PayTable))
	}
	cs, err := DefaultCurateSetting()
	if err != nil {
		t.Fatalf("default curate setting: %v", err)
	}
	if cs.TargetRTP != 96.5 || cs.CapLimit() != 100 {
		t.Fatalf("unexpected curate defaults: %+v", cs)
	}
}
