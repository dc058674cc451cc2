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

package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type stubComp struct {
	runErr   error
	stop     chan struct{}
	shutdown atomic.Int32
}

func newStub(runErr error) *stubComp {
	return &stubComp{runErr: runErr, stop: make(chan struct{})}
}

func (s *stubComp) Run() error {
	if s.runErr != nil {
		return s.runErr
	}
	<-s.stop
	return nil
}

func (s *stubComp) Shutdown(ctx context.Context) error {
	if s.shutdown.Add(1) == 1 {
		close(s.stop)
	}
	return nil
}

func TestRunReturnsComponentError(t *testing.T) {
	boom := errors.New("listen failed")
	ok := newStub(nil)
	a := NewWith(ok, newStub(boom))
	if err := a.Run(); !errors.Is(err, boom) {
		t.Fatalf("got %v want %v", err, boom)
	}
	if ok.shutdown.Load() != 1 {
		t.Fatalf("healthy component should be shut down once")
	}
}

func TestStopShutsDownGracefully(t *testing.T) {
	c := newStub(nil)
	a := NewWith(c).WithShutdownTimeout(time.Second)
	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	a.Stop()
	a.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("app did not stop")
	}
	if c.shutdown.Load() != 1 {
		t.Fatalf("shutdown called %d times", c.shutdown.Load())
	}
}
