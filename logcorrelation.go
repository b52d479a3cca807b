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
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"rivaas.dev/router"
)

// undecodableBody is logged in place of body payloads that are not valid
// UTF-8 (compressed or binary content).
const undecodableBody = "Can not decode"

// New creates a log correlation middleware.
//
// On every request the middleware reuses the inbound correlation header (or
// generates a fresh id), generates a per-request id, resolves client address
// and user, attaches the field set to the request context, and brackets the
// handler chain with "got request" / "sent response" log lines. The
// correlation id is echoed on the response header so callers and downstream
// services can pick it up.
//
// The exit log and context teardown run on every termination path: normal
// return, handler panic, and client cancellation all produce exactly one exit
// line, after which a panic keeps unwinding unchanged. Logging itself is best
// effort: a defective logger never breaks the request.
//
// Misconfiguration (conflicting remote address options, a nil generator)
// panics here rather than failing silently per-request.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	r := router.MustNew()
//	r.Use(logcorrelation.New(
//		logcorrelation.WithServiceName("billing"),
//		logcorrelation.WithLogger(logger),
//		logcorrelation.WithExcludedPaths("/health", "/metrics"),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.validate()

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	pf := newPathFilter(cfg.excludedPaths, cfg.noArgsPaths)

	return func(c *router.Context) {
		class := pf.classify(c.Request.URL.Path)
		if class == pathExcluded {
			c.Next()
			return
		}
		noArgs := class == pathNoArgs

		// Reuse the chain-wide correlation id when the caller sent one,
		// otherwise this service is the chain origin and mints it. The
		// request id is always minted: it names this hop only.
		correlationID := strings.TrimSpace(c.Request.Header.Get(cfg.headerName))
		if correlationID == "" {
			correlationID = cfg.generator()
		}

		st := &state{fields: Fields{
			ServiceName:   cfg.serviceName,
			CorrelationID: correlationID,
			RequestID:     cfg.generator(),
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
			IPAddress:     cfg.remoteAddr.resolve(c.Request),
			User:          cfg.username.resolve(c.Request),
		}}
		if !noArgs {
			st.fields.QueryString = encodeQuery(c.Request.URL.Query())
		}

		ctx := newContext(c.Request.Context(), st)
		c.Request = c.Request.WithContext(ctx)

		// Echo the correlation id so the caller and any downstream
		// service observing the response can join the chain.
		c.Response.Header().Set(cfg.headerName, correlationID)

		rw := &responseWriter{ResponseWriter: c.Response}
		c.Response = rw

		entryLogged := false
		logEntry := func(body []byte) {
			if entryLogged {
				return
			}
			entryLogged = true
			if !noArgs && len(body) > 0 {
				st.setBody(decodeBody(body))
			}
			emit(ctx, logger, cfg.requestMessage, st.snapshot())
		}

		// Requests without a body log entry up front. Requests with one
		// log entry once the handler has consumed it, so the captured
		// payload makes the line; the exit path below backstops handlers
		// that never drain the body.
		var br *bodyReader
		if c.Request.Body != nil && c.Request.ContentLength != 0 {
			br = &bodyReader{rc: c.Request.Body, onComplete: logEntry}
			c.Request.Body = br
		} else {
			logEntry(nil)
		}

		defer func() {
			if br != nil {
				logEntry(br.captured())
			}

			if noArgs {
				st.setBody("")
			} else {
				st.setBody(decodeBody(rw.Body()))
			}
			emit(ctx, logger, cfg.responseMessage, st.snapshot(),
				slog.Int("status", rw.StatusCode()),
				slog.Int64("bytes_sent", rw.Size()),
			)
		}()

		c.Next()
	}
}

// emit writes one log line with the full correlation field set. Failures in
// the logging path are swallowed here: the request outcome must never depend
// on a logging defect.
func emit(ctx context.Context, logger *slog.Logger, msg string, f Fields, extra ...slog.Attr) {
	defer func() {
		_ = recover()
	}()

	attrs := append(f.attrs(), extra...)
	logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// encodeQuery renders query parameters as a JSON object of name -> value
// list, preserving repeated parameters.
func encodeQuery(values url.Values) string {
	b, err := json.Marshal(values)
	if err != nil {
		return ""
	}

	return string(b)
}

// decodeBody returns the string form of a captured payload.
func decodeBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !utf8.Valid(body) {
		return undecodableBody
	}

	return string(body)
}
