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

package logcorrelation_test

import (
	"log/slog"
	"net/http"
	"os"

	"rivaas.dev/middleware/logcorrelation"
	"rivaas.dev/router"
)

// Basic setup: every request gets entry/exit log lines with correlation
// fields, and health checks stay out of the logs.
func Example() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	r := router.MustNew()
	r.Use(logcorrelation.New(
		logcorrelation.WithServiceName("billing"),
		logcorrelation.WithLogger(logger),
		logcorrelation.WithExcludedPaths("/health", "/metrics"),
		logcorrelation.WithNoArgsPaths("/login"),
	))

	r.GET("/invoices/:id", func(c *router.Context) {
		_ = c.String(http.StatusOK, "invoice")
	})
}

// Forwarding the correlation id to a downstream service keeps the whole
// chain joined under one id.
func ExampleCorrelationID() {
	r := router.MustNew()
	r.Use(logcorrelation.New())

	r.POST("/orders", func(c *router.Context) {
		ctx := c.Request.Context()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://warehouse.internal/reserve", nil)
		if err != nil {
			c.WriteErrorResponse(http.StatusInternalServerError, "request failed")
			return
		}
		req.Header.Set(logcorrelation.DefaultHeader, logcorrelation.CorrelationID(ctx))

		// issue the downstream call with the chain id attached
		_ = req
	})
}

// Wrapping the process logger enriches every application log record emitted
// with the request context, not just the middleware's own lines.
func ExampleNewHandler() {
	slog.SetDefault(slog.New(logcorrelation.NewHandler(
		slog.NewJSONHandler(os.Stdout, nil),
	)))

	r := router.MustNew()
	r.Use(logcorrelation.New())

	r.GET("/invoices/:id", func(c *router.Context) {
		// carries correlation_id, request_id, method, path, ...
		slog.InfoContext(c.Request.Context(), "loading invoice", "id", c.Param("id"))
		_ = c.String(http.StatusOK, "invoice")
	})
}

// Resolving identity fields from the request.
func ExampleWithUsernameFunc() {
	r := router.MustNew()
	r.Use(logcorrelation.New(
		logcorrelation.WithRemoteAddrHeader("X-Forwarded-For"),
		logcorrelation.WithUsernameFunc(func(req *http.Request) (string, error) {
			return subjectFromToken(req.Header.Get("Authorization"))
		}),
	))
}

func subjectFromToken(string) (string, error) { return "zaphod", nil }
