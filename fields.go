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
	"sync"
)

// Placeholder is the value used for fields that have no data, either because
// the field was never resolved for the current request or because no request
// is active at all. Log format strings referencing correlation fields always
// see this value instead of a missing attribute.
const Placeholder = "-"

// Log attribute names for the correlation field set.
const (
	fieldServiceName   = "service_name"
	fieldCorrelationID = "correlation_id"
	fieldRequestID     = "request_id"
	fieldMethod        = "method"
	fieldPath          = "path"
	fieldQueryString   = "query_string"
	fieldBody          = "body"
	fieldIPAddress     = "ip_address"
	fieldUser          = "user"
)

// LoggedFields lists every log attribute the middleware and [Handler] manage,
// in emission order. Each is always present on enriched records, with
// [Placeholder] substituted when no value is available.
var LoggedFields = []string{
	fieldServiceName,
	fieldCorrelationID,
	fieldRequestID,
	fieldMethod,
	fieldPath,
	fieldQueryString,
	fieldBody,
	fieldIPAddress,
	fieldUser,
}

// Fields holds the correlation data resolved for a single request.
// The zero value represents "no active request": every field renders as
// [Placeholder].
//
// Fields is a snapshot. Mutating it has no effect on the live request state;
// use [FromContext] again to observe later updates (the Body field is
// overwritten with the response body once the request completes).
type Fields struct {
	// ServiceName is the service label configured via WithServiceName.
	ServiceName string

	// CorrelationID identifies the whole causal chain of one logical
	// request across services. Reused from the inbound correlation header
	// when present, freshly generated otherwise.
	CorrelationID string

	// RequestID identifies this request within this service instance.
	// Always freshly generated, never taken from the inbound request.
	RequestID string

	// Method and Path describe the inbound request line.
	Method string
	Path   string

	// QueryString is the request query rendered as a JSON object of
	// name -> value list, or empty when suppressed or absent.
	QueryString string

	// Body holds the captured request body until the request completes,
	// then the captured response body.
	Body string

	// IPAddress is the remote address resolved at request entry.
	IPAddress string

	// User is the acting user resolved at request entry.
	User string
}

// Map returns the field set keyed by log attribute name, with [Placeholder]
// substituted for empty fields. The returned map is a fresh copy on every
// call and safe to mutate.
func (f Fields) Map() map[string]string {
	return map[string]string{
		fieldServiceName:   orPlaceholder(f.ServiceName),
		fieldCorrelationID: orPlaceholder(f.CorrelationID),
		fieldRequestID:     orPlaceholder(f.RequestID),
		fieldMethod:        orPlaceholder(f.Method),
		fieldPath:          orPlaceholder(f.Path),
		fieldQueryString:   orPlaceholder(f.QueryString),
		fieldBody:          orPlaceholder(f.Body),
		fieldIPAddress:     orPlaceholder(f.IPAddress),
		fieldUser:          orPlaceholder(f.User),
	}
}

// attrs renders the full field set as slog attributes in LoggedFields order.
func (f Fields) attrs() []slog.Attr {
	return []slog.Attr{
		slog.String(fieldServiceName, orPlaceholder(f.ServiceName)),
		slog.String(fieldCorrelationID, orPlaceholder(f.CorrelationID)),
		slog.String(fieldRequestID, orPlaceholder(f.RequestID)),
		slog.String(fieldMethod, orPlaceholder(f.Method)),
		slog.String(fieldPath, orPlaceholder(f.Path)),
		slog.String(fieldQueryString, orPlaceholder(f.QueryString)),
		slog.String(fieldBody, orPlaceholder(f.Body)),
		slog.String(fieldIPAddress, orPlaceholder(f.IPAddress)),
		slog.String(fieldUser, orPlaceholder(f.User)),
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}

	return s
}

// contextKey is the private context key for the per-request state.
// A struct key cannot collide with keys from other packages.
type contextKey struct{}

// state is the live per-request field holder. It is created by the middleware
// and owned by one request; the mutex exists because application code may log
// from goroutines spawned inside the handler while the middleware updates the
// body field on the request goroutine.
type state struct {
	mu     sync.RWMutex
	fields Fields
}

func (s *state) snapshot() Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.fields
}

func (s *state) setBody(body string) {
	s.mu.Lock()
	s.fields.Body = body
	s.mu.Unlock()
}

// newContext attaches the request state to ctx.
func newContext(ctx context.Context, st *state) context.Context {
	return context.WithValue(ctx, contextKey{}, st)
}

func stateFromContext(ctx context.Context) *state {
	st, _ := ctx.Value(contextKey{}).(*state)

	return st
}

// FromContext returns the correlation fields of the request that ctx belongs
// to. Outside any request it returns the zero [Fields], whose Map rendering
// is all placeholders; it never panics, so callers need no active-request
// check before logging.
//
// Example:
//
//	func handler(c *router.Context) {
//	    f := logcorrelation.FromContext(c.Request.Context())
//	    c.Logger().Info("processing", "correlation_id", f.CorrelationID)
//	}
func FromContext(ctx context.Context) Fields {
	if st := stateFromContext(ctx); st != nil {
		return st.snapshot()
	}

	return Fields{}
}

// CorrelationID returns the current request's correlation id for forwarding
// to downstream calls, or an empty string when no request is active.
//
// Example of propagating to an outbound call:
//
//	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
//	req.Header.Set("Correlation-Id", logcorrelation.CorrelationID(ctx))
func CorrelationID(ctx context.Context) string {
	return FromContext(ctx).CorrelationID
}
