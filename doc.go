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

// Package logcorrelation provides middleware for correlating log lines across
// a chain of services handling the same logical request.
//
// Each service reuses the correlation id from the inbound request header (or
// generates one at the chain origin), generates a fresh per-request id, and
// logs structured entry/exit lines carrying both ids plus request metadata:
// method, path, query string, body, client address, and acting user. The
// field set rides the request context, so any code handling the request can
// read it without parameter threading and forward the correlation id to
// downstream calls.
//
// # Basic Usage
//
//	import "rivaas.dev/middleware/logcorrelation"
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	r := router.MustNew()
//	r.Use(logcorrelation.New(
//	    logcorrelation.WithServiceName("billing"),
//	    logcorrelation.WithLogger(logger),
//	))
//
// # Configuration Options
//
//   - ServiceName: service label added to every log line
//   - Header: correlation id header name (default: Correlation-Id)
//   - Logger: structured logger (slog.Logger) for entry/exit lines
//   - RemoteAddr / RemoteAddrHeader / RemoteAddrFunc: client address source
//   - UsernameFunc: acting user lookup (failures degrade to a placeholder)
//   - ExcludedPaths: exact paths that produce no logs at all
//   - NoArgsPaths: exact paths logged without query string and body
//   - RequestMessage / ResponseMessage: entry/exit log line text
//   - ULID / Generator: id generation scheme
//
// # Log Fields
//
// Entry and exit lines, and records enriched by [Handler], always carry the
// full field set, with "-" for anything unavailable:
//
//	service_name, correlation_id, request_id, method, path, query_string,
//	body, ip_address, user
//
// The exit line adds status and bytes_sent.
//
// # Accessing the Fields
//
// Application code reads the live field set from the request context:
//
//	func handler(c *router.Context) {
//	    id := logcorrelation.CorrelationID(c.Request.Context())
//	    // attach id to outbound calls made on this request's behalf
//	}
//
// [FromContext] returns the complete [Fields] snapshot and is safe to call
// outside any request.
//
// # Enriching Application Logs
//
// [Handler] wraps any slog.Handler so every record logged with the request
// context picks up the correlation fields automatically:
//
//	slog.SetDefault(slog.New(logcorrelation.NewHandler(
//	    slog.NewJSONHandler(os.Stdout, nil),
//	)))
//
// # Failure Behavior
//
// Logging is best effort: a panicking logger or resolver never changes a
// request's outcome. Handler panics are not swallowed; the exit line is
// emitted and the panic continues unwinding to the caller.
package logcorrelation
