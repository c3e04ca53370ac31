// Copyright 2025 Ansvar Systems
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

package search

import "strings"

// ftsSpecialChars are characters the FTS5 query parser treats as syntax.
const ftsSpecialChars = `-+(){}[]"*:^`

// Sanitize prepares raw input for an FTS5 MATCH expression. Input already
// wrapped in double quotes passes through. Input containing operator
// characters is turned into a phrase with embedded quotes doubled. Anything
// else is only trimmed so the engine can tokenize it.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) {
		return trimmed
	}

	if strings.ContainsAny(trimmed, ftsSpecialChars) {
		return `"` + strings.ReplaceAll(trimmed, `"`, `""`) + `"`
	}

	return trimmed
}
