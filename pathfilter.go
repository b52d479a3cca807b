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

// pathClass is the logging treatment for a request path.
type pathClass int

const (
	// pathNormal requests are logged with the full field set.
	pathNormal pathClass = iota

	// pathNoArgs requests are logged without query string and body values.
	pathNoArgs

	// pathExcluded requests produce no log lines at all.
	pathExcluded
)

// pathFilter classifies request paths by exact string membership.
// Matching is exact: no prefixes, globs, or patterns.
type pathFilter struct {
	excluded map[string]bool
	noArgs   map[string]bool
}

func newPathFilter(excluded, noArgs []string) *pathFilter {
	pf := &pathFilter{
		excluded: make(map[string]bool, len(excluded)),
		noArgs:   make(map[string]bool, len(noArgs)),
	}
	for _, p := range excluded {
		pf.excluded[p] = true
	}
	for _, p := range noArgs {
		pf.noArgs[p] = true
	}

	return pf
}

// classify returns the logging treatment for path. Exclusion wins when a path
// appears in both lists.
func (pf *pathFilter) classify(path string) pathClass {
	switch {
	case pf.excluded[path]:
		return pathExcluded
	case pf.noArgs[path]:
		return pathNoArgs
	default:
		return pathNormal
	}
}
