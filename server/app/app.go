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

// Package app 提供生命週期管理（App），統一啟動與關閉多個 Component。
package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const DefaultShutdownTimeout = 5 * time.Second

// App 啟動所有註冊的 Component，收到 OS 信號或任一 Component 結束時協調優雅關閉。
type App struct {
	comps   []Component
	log     *slog.Logger
	timeout time.Duration
	stop    chan struct{}
}

func New() *App {
	return &App{
		log:     slog.Default(),
		timeout: DefaultShutdownTimeout,
		stop:    make(chan struct{}),
	}
}

func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// WithLogger nil 時保留原 logger
func (a *App) WithLogger(log *slog.Logger) *App {
	if log != nil {
		a.log = log
	}
	return a
}

// WithShutdownTimeout 非正值時保留預設
func (a *App) WithShutdownTimeout(td time.Duration) *App {
	if td > 0 {
		a.timeout = td
	}
	return a
}

// Stop 由程式內部要求關閉（例如測試），效果同收到 SIGTERM；可重複呼叫。
func (a *App) Stop() {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
}

// Run 阻塞直到收到終止信號、Stop 被呼叫，或任一 Component 的 Run 返回。
// 信號與 Stop 視為正常結束回傳 nil；Component 提前返回則回傳其錯誤。
func (a *App) Run() error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		a.log.Info("app.signal", slog.String("signal", sig.String()))
		a.gracefulShutdown()
		return nil
	case <-a.stop:
		a.gracefulShutdown()
		return nil
	case err := <-errCh:
		a.gracefulShutdown()
		return err
	}
}

// gracefulShutdown 在 timeout 內依序關閉所有 Component，錯誤只記錄不中斷
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			a.log.Error("app.shutdown", slog.Any("err", err))
		}
	}
}
