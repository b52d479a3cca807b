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
	"crypto/rand"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// DefaultHeader is the default name of the correlation id header.
const DefaultHeader = "Correlation-Id"

// Default entry/exit log messages.
const (
	defaultRequestMessage  = "got request"
	defaultResponseMessage = "sent response"
)

// Option defines functional options for log correlation middleware.
type Option func(*config)

// config holds the log correlation configuration.
type config struct {
	// serviceName labels every log line emitted for a request
	serviceName string

	// headerName is the correlation id header shared between services
	headerName string

	// logger is the structured logger for entry/exit logs (slog from
	// standard library); nil means slog.Default()
	logger *slog.Logger

	// generator produces correlation and request ids
	generator func() string

	// remoteAddr resolves the client address; remoteAddrOpts counts how
	// many address options were applied, for construction-time validation
	remoteAddr     remoteAddrResolver
	remoteAddrOpts int

	// username resolves the acting user
	username usernameResolver

	// excludedPaths are exact paths that produce no logs at all
	excludedPaths []string

	// noArgsPaths are exact paths logged without query string and body
	noArgsPaths []string

	// requestMessage and responseMessage are the entry/exit log lines
	requestMessage  string
	responseMessage string
}

func defaultConfig() *config {
	return &config{
		headerName:      DefaultHeader,
		generator:       generateUUIDv7,
		requestMessage:  defaultRequestMessage,
		responseMessage: defaultResponseMessage,
	}
}

// validate rejects impossible configurations. Misconfiguration is a
// programming error and fails at construction, not silently per-request.
func (cfg *config) validate() {
	if cfg.headerName == "" {
		panic("logcorrelation: correlation header name must not be empty")
	}
	if cfg.generator == nil {
		panic("logcorrelation: id generator must not be nil")
	}
	if cfg.remoteAddrOpts > 1 {
		panic("logcorrelation: at most one remote address option may be set")
	}
	if cfg.remoteAddr.mode == remoteAddrFunc && cfg.remoteAddr.fn == nil {
		panic("logcorrelation: remote address callback must not be nil")
	}
}

// generateUUIDv7 generates a UUID v7 string for correlation and request IDs.
// UUID v7 is time-ordered and lexicographically sortable (RFC 9562).
func generateUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ulidEntropy is a thread-safe entropy source for ULID generation.
// It provides monotonic ordering within the same millisecond.
var (
	ulidEntropy     = ulid.Monotonic(rand.Reader, 0)
	ulidEntropyLock sync.Mutex
)

// generateULID generates a ULID string for correlation and request IDs.
func generateULID() string {
	ulidEntropyLock.Lock()
	defer ulidEntropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// WithServiceName sets the service label added to every log line.
//
// Example:
//
//	logcorrelation.New(logcorrelation.WithServiceName("billing"))
func WithServiceName(name string) Option {
	return func(cfg *config) {
		cfg.serviceName = name
	}
}

// WithHeader sets the name of the correlation id header shared between
// services. Default: "Correlation-Id".
//
// Header lookup is case-insensitive (net/http canonicalizes header names);
// when a client sends the header multiple times, the first value wins.
//
// Example:
//
//	logcorrelation.New(logcorrelation.WithHeader("X-Correlation-ID"))
func WithHeader(headerName string) Option {
	return func(cfg *config) {
		cfg.headerName = headerName
	}
}

// WithLogger sets the slog.Logger for entry/exit logs.
// If not provided, slog.Default() is used.
//
// For production JSON logging:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
//		Level: slog.LevelInfo,
//	}))
//	r.Use(logcorrelation.New(logcorrelation.WithLogger(logger)))
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithRemoteAddr resolves the client address from http.Request.RemoteAddr.
//
// Example:
//
//	logcorrelation.New(logcorrelation.WithRemoteAddr())
func WithRemoteAddr() Option {
	return func(cfg *config) {
		cfg.remoteAddr = remoteAddrResolver{mode: remoteAddrRequest}
		cfg.remoteAddrOpts++
	}
}

// WithRemoteAddrHeader resolves the client address from a request header,
// typically one set by a proxy. A missing header logs as the placeholder.
//
// Example:
//
//	logcorrelation.New(logcorrelation.WithRemoteAddrHeader("X-Forwarded-For"))
func WithRemoteAddrHeader(headerName string) Option {
	return func(cfg *config) {
		cfg.remoteAddr = remoteAddrResolver{mode: remoteAddrHeader, header: headerName}
		cfg.remoteAddrOpts++
	}
}

// WithRemoteAddrFunc resolves the client address with a custom callback.
// A panicking callback degrades to the placeholder instead of failing the
// request.
//
// Example:
//
//	logcorrelation.New(logcorrelation.WithRemoteAddrFunc(func(r *http.Request) string {
//	    host, _, _ := net.SplitHostPort(r.RemoteAddr)
//	    return host
//	}))
func WithRemoteAddrFunc(fn func(*http.Request) string) Option {
	return func(cfg *config) {
		cfg.remoteAddr = remoteAddrResolver{mode: remoteAddrFunc, fn: fn}
		cfg.remoteAddrOpts++
	}
}

// WithUsernameFunc resolves the acting user with a custom callback, typically
// one that decodes an auth token from the request. Errors and panics from the
// callback degrade to the placeholder instead of failing the request.
//
// Example:
//
//	logcorrelation.New(logcorrelation.WithUsernameFunc(func(r *http.Request) (string, error) {
//	    return subjectFromToken(r.Header.Get("Authorization"))
//	}))
func WithUsernameFunc(fn func(*http.Request) (string, error)) Option {
	return func(cfg *config) {
		cfg.username = usernameResolver{fn: fn}
	}
}

// WithExcludedPaths suppresses logging entirely for exact path matches.
// Requests to these paths are delegated untouched: no context, no logs.
//
// Example:
//
//	logcorrelation.New(
//		logcorrelation.WithExcludedPaths("/health", "/metrics"),
//	)
func WithExcludedPaths(paths ...string) Option {
	return func(cfg *config) {
		cfg.excludedPaths = append(cfg.excludedPaths, paths...)
	}
}

// WithNoArgsPaths logs exact path matches without query string and body
// values. Other fields are populated normally. Useful for endpoints carrying
// credentials or large payloads.
//
// Example:
//
//	logcorrelation.New(
//		logcorrelation.WithNoArgsPaths("/login", "/upload"),
//	)
func WithNoArgsPaths(paths ...string) Option {
	return func(cfg *config) {
		cfg.noArgsPaths = append(cfg.noArgsPaths, paths...)
	}
}

// WithRequestMessage sets the entry log message. Default: "got request".
func WithRequestMessage(msg string) Option {
	return func(cfg *config) {
		cfg.requestMessage = msg
	}
}

// WithResponseMessage sets the exit log message. Default: "sent response".
func WithResponseMessage(msg string) Option {
	return func(cfg *config) {
		cfg.responseMessage = msg
	}
}

// WithULID uses ULID for correlation and request id generation instead of
// UUID v7. ULID provides time-ordered, lexicographically sortable identifiers
// with a compact 26-character representation.
//
// Example:
//
//	logcorrelation.New(logcorrelation.WithULID())
func WithULID() Option {
	return func(cfg *config) {
		cfg.generator = generateULID
	}
}

// WithGenerator sets a custom function to generate correlation and request
// ids. The generator must return a unique string for each call.
//
// Example:
//
//	logcorrelation.New(logcorrelation.WithGenerator(func() string {
//	    return fmt.Sprintf("req-%d", time.Now().UnixNano())
//	}))
func WithGenerator(generator func() string) Option {
	return func(cfg *config) {
		cfg.generator = generator
	}
}
