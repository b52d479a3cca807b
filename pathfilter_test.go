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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathFilter_Classify(t *testing.T) {
	pf := newPathFilter(
		[]string{"/health", "/metrics"},
		[]string{"/login", "/health"},
	)

	tests := []struct {
		path string
		want pathClass
	}{
		{"/orders", pathNormal},
		{"/health", pathExcluded},
		{"/metrics", pathExcluded},
		{"/login", pathNoArgs},
		{"/health/live", pathNormal}, // exact match only, no prefixes
		{"/Login", pathNormal},       // exact match is case-sensitive
		{"", pathNormal},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, pf.classify(tt.path))
		})
	}
}

func TestPathFilter_Empty(t *testing.T) {
	pf := newPathFilter(nil, nil)

	assert.Equal(t, pathNormal, pf.classify("/anything"))
}
