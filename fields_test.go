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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_NoActiveRequest(t *testing.T) {
	require.NotPanics(t, func() {
		FromContext(context.Background())
	})

	m := FromContext(context.Background()).Map()
	require.Len(t, m, len(LoggedFields))
	for _, name := range LoggedFields {
		assert.Equal(t, Placeholder, m[name], "field %q", name)
	}

	assert.Empty(t, CorrelationID(context.Background()))
}

func TestFromContext_ActiveRequest(t *testing.T) {
	st := &state{fields: Fields{
		CorrelationID: "chain-42",
		RequestID:     "req-1",
		Method:        "GET",
		Path:          "/ping",
	}}
	ctx := newContext(context.Background(), st)

	f := FromContext(ctx)
	assert.Equal(t, "chain-42", f.CorrelationID)
	assert.Equal(t, "chain-42", CorrelationID(ctx))

	m := f.Map()
	assert.Equal(t, "req-1", m["request_id"])
	assert.Equal(t, "GET", m["method"])
	assert.Equal(t, Placeholder, m["user"], "unresolved fields render as the placeholder")
	assert.Equal(t, Placeholder, m["service_name"])
}

func TestFromContext_SnapshotsLiveState(t *testing.T) {
	st := &state{fields: Fields{CorrelationID: "chain-42"}}
	ctx := newContext(context.Background(), st)

	before := FromContext(ctx)
	st.setBody("response payload")
	after := FromContext(ctx)

	assert.Empty(t, before.Body, "earlier snapshots are unaffected")
	assert.Equal(t, "response payload", after.Body)
}

func TestFields_MapIsACopy(t *testing.T) {
	f := Fields{CorrelationID: "chain-42"}
	m := f.Map()
	m["correlation_id"] = "tampered"

	assert.Equal(t, "chain-42", f.Map()["correlation_id"])
}
