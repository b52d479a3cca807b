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

import "net/http"

// remoteAddrMode selects how the remote address is resolved for a request.
// Exactly one mode is active per middleware instance.
type remoteAddrMode int

const (
	// remoteAddrNone leaves the address unresolved (placeholder in logs).
	remoteAddrNone remoteAddrMode = iota

	// remoteAddrRequest reads http.Request.RemoteAddr.
	remoteAddrRequest

	// remoteAddrHeader reads a configured request header.
	remoteAddrHeader

	// remoteAddrFunc invokes a user-supplied callback.
	remoteAddrFunc
)

// remoteAddrResolver resolves the remote address for a request according to
// the configured mode. Resolution runs exactly once per request, before the
// entry log.
type remoteAddrResolver struct {
	mode   remoteAddrMode
	header string
	fn     func(*http.Request) string
}

// resolve never fails: a panicking callback degrades to an empty result so a
// broken resolver cannot abort the request.
func (r remoteAddrResolver) resolve(req *http.Request) (addr string) {
	defer func() {
		if recover() != nil {
			addr = ""
		}
	}()

	switch r.mode {
	case remoteAddrRequest:
		return req.RemoteAddr
	case remoteAddrHeader:
		return req.Header.Get(r.header)
	case remoteAddrFunc:
		return r.fn(req)
	default:
		return ""
	}
}

// usernameResolver resolves the acting user for a request via a user-supplied
// callback, typically one that inspects an auth token or session cookie.
type usernameResolver struct {
	fn func(*http.Request) (string, error)
}

// resolve suppresses both errors and panics from the callback, falling back
// to an empty result. A defective auth lookup must never break the request.
func (u usernameResolver) resolve(req *http.Request) (user string) {
	if u.fn == nil {
		return ""
	}

	defer func() {
		if recover() != nil {
			user = ""
		}
	}()

	user, err := u.fn(req)
	if err != nil {
		return ""
	}

	return user
}
