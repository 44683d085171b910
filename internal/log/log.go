// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log owns the process-wide structured logger. The logger is built on
// zap and installed once at startup with Init; until then Get returns a no-op
// logger so packages can log unconditionally.
//
// Operations are grouped into spans (see Start), which emit an "enter" and an
// "exit" event and tag every event logged inside them with the span path.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceLevel sits below zap's DebugLevel and renders as TRACE.
const TraceLevel = zapcore.DebugLevel - 1

// ErrAlreadyInitialized is returned when Init is called more than once.
var ErrAlreadyInitialized = errors.New("log: logger already initialized")

var (
	mu            sync.Mutex
	installed     bool
	defaultLogger = zap.NewNop()
)

type options struct {
	level  zapcore.Level
	output io.Writer
}

// Option configures the logger built by New and Init.
type Option func(*options)

// WithLevel sets the minimum level that is written. Defaults to INFO.
func WithLevel(level zapcore.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithOutput redirects records away from stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// New builds a human-readable console logger without installing it.
func New(opts ...Option) (*zap.Logger, error) {
	o := options{
		level:  zapcore.InfoLevel,
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.output == nil {
		return nil, fmt.Errorf("log: output writer is nil")
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = encodeLevel

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(o.output)),
		zap.NewAtomicLevelAt(o.level),
	)
	return zap.New(core), nil
}

// Init builds the process logger and installs it as both this package's
// default and zap's global logger. It must be called exactly once, before
// any event is emitted; later calls return ErrAlreadyInitialized.
func Init(opts ...Option) error {
	mu.Lock()
	defer mu.Unlock()

	if installed {
		return ErrAlreadyInitialized
	}

	logger, err := New(opts...)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	defaultLogger = logger
	zap.ReplaceGlobals(logger)
	installed = true
	return nil
}

// Get returns the installed logger, or a no-op logger before Init.
func Get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger
}

// Flush writes out any buffered records.
func Flush() {
	_ = Get().Sync()
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("TRACE")
		return
	}
	zapcore.CapitalLevelEncoder(l, enc)
}
