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

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	emptyCell         = "—"
	maxWorkProducts   = 3
	maxGuidanceLength = 50
)

var workProductCode = regexp.MustCompile(`^\[([^\]]+)\]`)

func renderMarkdown(rows []*row, regulation, date string, includeGuidance bool) string {
	lines := []string{
		fmt.Sprintf("# %s Compliance Matrix", strings.ToUpper(regulation)),
		"",
		"Generated: " + date,
		"",
		"## Requirements Traceability",
		"",
	}

	if includeGuidance {
		lines = append(lines,
			"| Requirement | Title | ISO 21434 Clauses | Work Products | Guidance |",
			"|-------------|-------|-------------------|---------------|----------|")
	} else {
		lines = append(lines,
			"| Requirement | Title | ISO 21434 Clauses | Work Products |",
			"|-------------|-------|-------------------|---------------|")
	}

	for _, r := range rows {
		cells := []string{r.ref, escapeCell(r.title), clauseCell(r), workProductCell(r)}
		if includeGuidance {
			cells = append(cells, guidanceCell(r))
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}

	stats := statistics(rows)
	lines = append(lines,
		"",
		"## Summary",
		"",
		fmt.Sprintf("- **Total Requirements:** %d", stats.TotalRequirements),
		fmt.Sprintf("- **Mapped to ISO 21434:** %d (%d%%)", stats.MappedRequirements, stats.CoveragePercent),
		fmt.Sprintf("- **Unmapped:** %d", stats.UnmappedRequirements),
	)
	return strings.Join(lines, "\n")
}

func clauseCell(r *row) string {
	if len(r.clauseIDs) == 0 {
		return emptyCell
	}
	return escapeCell(strings.Join(r.clauseIDs, ", "))
}

func workProductCell(r *row) string {
	if len(r.workProducts) == 0 {
		return emptyCell
	}
	shown := r.workProducts[:min(len(r.workProducts), maxWorkProducts)]
	codes := make([]string, len(shown))
	for i, wp := range shown {
		if m := workProductCode.FindStringSubmatch(wp); m != nil {
			codes[i] = m[1]
		} else {
			codes[i] = wp
		}
	}
	cell := strings.Join(codes, ", ")
	if len(r.workProducts) > maxWorkProducts {
		cell += "..."
	}
	return escapeCell(cell)
}

func guidanceCell(r *row) string {
	if r.guidance == "" {
		return emptyCell
	}
	runes := []rune(r.guidance)
	if len(runes) <= maxGuidanceLength {
		return escapeCell(r.guidance)
	}
	return escapeCell(string(runes[:maxGuidanceLength]) + "...")
}

// escapeCell keeps cell text from terminating the table cell or row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
