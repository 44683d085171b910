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

package log

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Span is a named, timed scope around one operation.
//
// A span is opened with Start and must be closed with End on every exit path.
// The usual shape is a named error return and a deferred End:
//
//	func load(ctx context.Context) (err error) {
//		ctx, span := log.Start(ctx, "load", zapcore.InfoLevel)
//		defer func() { span.End(err) }()
//		...
//	}
type Span struct {
	path   string
	level  zapcore.Level
	base   *zap.Logger
	logger *zap.Logger
	start  time.Time
	ended  bool
}

// Start opens a span named name at level and returns a context carrying it.
// Spans started from that context are nested under it; their path is
// "parent:child". The fields are attached to every event of the span.
func Start(ctx context.Context, name string, level zapcore.Level, fields ...zap.Field) (context.Context, *Span) {
	path := name
	base := FromContext(ctx)
	if parent := spanFromContext(ctx); parent != nil {
		path = parent.path + ":" + name
		base = parent.base
	}

	base = base.With(fields...)
	logger := base.With(zap.String("span", path))
	span := &Span{
		path:   path,
		level:  level,
		base:   base,
		logger: logger,
		start:  time.Now(),
	}
	span.logger.Log(level, "enter")

	ctx = context.WithValue(ctx, spanKey{}, span)
	return NewContext(ctx, logger), span
}

// Logger returns the logger that tags events with this span.
func (s *Span) Logger() *zap.Logger {
	return s.logger
}

// Path returns the span path, e.g. "run:query_api".
func (s *Span) Path() string {
	return s.path
}

// End closes the span, recording err when non-nil. Only the first call
// emits the exit event.
func (s *Span) End(err error) {
	if s.ended {
		return
	}
	s.ended = true

	fields := []zap.Field{zap.Duration("elapsed", time.Since(s.start))}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Log(s.level, "exit", fields...)
}
