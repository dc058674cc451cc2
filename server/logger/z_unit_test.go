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

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestParseLogMode(t *testing.T) {
	cases := map[string]LogMode{
		"ModeDev": ModeDev, "dev": ModeDev, "": ModeDev,
		"ModeProd": ModeProd, "PROD": ModeProd,
		"ModeSilence": ModeSilence, "silence": ModeSilence,
	}
	for in, want := range cases {
		got, err := ParseLogMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseLogMode(%q) got %v err %v", in, got, err)
		}
	}
	if _, err := ParseLogMode("loud"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if ModeProd.String() != "ModeProd" {
		t.Fatalf("String got %s", ModeProd.String())
	}
}

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	out := new(syncBuffer)
	log, ah := NewAsyncTo(out, 64, ModeProd)
	for i := range 10 {
		log.Info("curate.progress", slog.Int("accepted", i))
	}
	log.With(slog.String("run_id", "r1")).Warn("curate.done")
	ah.Close()

	text := out.String()
	if n := strings.Count(text, "curate.progress"); n != 10 {
		t.Fatalf("expected 10 progress lines, got %d:\n%s", n, text)
	}
	if !strings.Contains(text, `"run_id":"r1"`) {
		t.Fatalf("attrs lost through WithAttrs:\n%s", text)
	}
	if ah.Written() != 11 || ah.Dropped() != 0 {
		t.Fatalf("written %d dropped %d", ah.Written(), ah.Dropped())
	}

	log.Info("after close")
	if ah.Dropped() != 1 {
		t.Fatalf("records after Close should be dropped, got %d", ah.Dropped())
	}
	ah.Close()
}

func TestSilenceMode(t *testing.T) {
	log := NewDefaultLogger(ModeSilence)
	log.Error("nothing")
	if NewLogger(nil) == nil {
		t.Fatalf("NewLogger(nil) should fall back to dev handler")
	}
}
