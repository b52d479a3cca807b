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
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"net/http"
)

// bodyReader wraps the request body, accumulating every chunk while returning
// it unchanged to the caller. Incremental reads stay incremental: the handler
// never waits for the full body on our account. onComplete fires once, when
// the body has been fully consumed.
type bodyReader struct {
	rc         io.ReadCloser
	buf        bytes.Buffer
	onComplete func(body []byte)
	done       bool
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if n > 0 {
		b.buf.Write(p[:n])
	}
	if errors.Is(err, io.EOF) && !b.done {
		b.done = true
		b.onComplete(b.buf.Bytes())
	}

	return n, err
}

func (b *bodyReader) Close() error {
	return b.rc.Close()
}

// captured returns whatever body bytes have been read so far.
func (b *bodyReader) captured() []byte {
	return b.buf.Bytes()
}

// responseWriter wraps http.ResponseWriter, recording the first status code
// and accumulating the response body and its byte count while forwarding
// every call unchanged. Optional interfaces are preserved.
type responseWriter struct {
	http.ResponseWriter
	body       bytes.Buffer
	statusCode int
	size       int64
	written    bool
}

// Compile-time interface checks
var (
	_ http.ResponseWriter = (*responseWriter)(nil)
	_ http.Flusher        = (*responseWriter)(nil)
	_ http.Hijacker       = (*responseWriter)(nil)
	_ http.Pusher         = (*responseWriter)(nil)
	_ io.ReaderFrom       = (*responseWriter)(nil)
)

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.body.Write(b[:n])
	rw.size += int64(n)

	return n, err
}

// StatusCode returns the recorded status, or zero when nothing has been
// written yet.
func (rw *responseWriter) StatusCode() int {
	return rw.statusCode
}

func (rw *responseWriter) Size() int64 {
	return rw.size
}

func (rw *responseWriter) Body() []byte {
	return rw.body.Bytes()
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements http.Hijacker (for WebSocket, etc.)
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}

	return nil, nil, errors.New("hijacker not supported")
}

// Push implements http.Pusher (HTTP/2 server push)
func (rw *responseWriter) Push(target string, opts *http.PushOptions) error {
	if p, ok := rw.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}

	return http.ErrNotSupported
}

// ReadFrom implements io.ReaderFrom. The source is teed through the capture
// buffer so zero-copy senders still produce a logged body.
func (rw *responseWriter) ReadFrom(r io.Reader) (int64, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}

	src := io.TeeReader(r, &rw.body)
	if rf, ok := rw.ResponseWriter.(io.ReaderFrom); ok {
		n, err := rf.ReadFrom(src)
		rw.size += n

		return n, err
	}
	// Fallback to io.Copy
	n, err := io.Copy(rw.ResponseWriter, src)
	rw.size += n

	return n, err
}
