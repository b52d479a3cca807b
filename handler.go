// Copyright 2025 The Rivaas Authors
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

package logcorrelation

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Trace correlation field names.
const (
	fieldTraceID = "trace_id"
	fieldSpanID  = "span_id"
)

// HandlerOption defines functional options for [Handler].
type HandlerOption func(*Handler)

// WithTraceCorrelation additionally stamps trace_id and span_id from an
// active OpenTelemetry span onto every record.
//
// Example:
//
//	handler := logcorrelation.NewHandler(
//		slog.NewJSONHandler(os.Stdout, nil),
//		logcorrelation.WithTraceCorrelation(),
//	)
func WithTraceCorrelation() HandlerOption {
	return func(h *Handler) {
		h.trace = true
	}
}

// Handler is a slog.Handler that merges the current request's correlation
// fields into every record before delegating to the wrapped handler.
//
// Any application log call that carries the request context picks up the
// full field set with no explicit plumbing:
//
//	handler := logcorrelation.NewHandler(slog.NewJSONHandler(os.Stdout, nil))
//	slog.SetDefault(slog.New(handler))
//
//	func handler(c *router.Context) {
//	    slog.InfoContext(c.Request.Context(), "charging card")
//	    // record includes correlation_id, request_id, method, path, ...
//	}
//
// Fields already present on the record win over context values. Records
// emitted outside any request carry the placeholder for every field, so
// downstream format strings never see a missing attribute. Handle is
// side-effect free and allocates only the appended attributes: it is safe on
// the hot logging path.
type Handler struct {
	next  slog.Handler
	trace bool
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler wraps next with correlation field enrichment.
func NewHandler(next slog.Handler, opts ...HandlerOption) *Handler {
	if next == nil {
		panic("logcorrelation: wrapped slog.Handler must not be nil")
	}

	h := &Handler{next: next}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler. It clones the record, appends every
// recognized field not already present, and delegates.
func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	seen := make(map[string]bool, rec.NumAttrs())
	rec.Attrs(func(a slog.Attr) bool {
		seen[a.Key] = true
		return true
	})

	fields := FromContext(ctx).Map()
	attrs := make([]slog.Attr, 0, len(LoggedFields)+2)
	for _, name := range LoggedFields {
		if !seen[name] {
			attrs = append(attrs, slog.String(name, fields[name]))
		}
	}

	if h.trace {
		if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			sc := span.SpanContext()
			attrs = append(attrs,
				slog.String(fieldTraceID, sc.TraceID().String()),
				slog.String(fieldSpanID, sc.SpanID().String()),
			)
		}
	}

	if len(attrs) == 0 {
		return h.next.Handle(ctx, rec)
	}

	rec = rec.Clone()
	rec.AddAttrs(attrs...)

	return h.next.Handle(ctx, rec)
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{next: h.next.WithAttrs(attrs), trace: h.trace}
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name), trace: h.trace}
}
