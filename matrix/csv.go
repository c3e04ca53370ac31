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

package matrix

import "strings"

const (
	statusMapped    = "Mapped"
	statusNotMapped = "Not Mapped"
)

// renderCSV quotes every text field and leaves Status bare. Lines are
// separated by a single newline with no trailing newline.
func renderCSV(rows []*row, includeGuidance bool) string {
	headers := []string{"Requirement", "Title", "ISO 21434 Clauses", "Work Products", "Status"}
	if includeGuidance {
		headers = append(headers, "Guidance Summary")
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(headers, ","))
	for _, r := range rows {
		status := statusNotMapped
		if r.mapped() {
			status = statusMapped
		}
		cells := []string{
			quote(r.ref),
			quote(r.title),
			quote(strings.Join(r.clauseLabels, "; ")),
			quote(strings.Join(r.workProducts, "; ")),
			status,
		}
		if includeGuidance {
			cells = append(cells, quote(r.guidance))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
