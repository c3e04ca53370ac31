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

package tools

import (
	"strings"

	"github.com/ansvar-systems/automcp/workproducts"
)

// Tool names.
const (
	ListSources        = "list_sources"
	GetRequirement     = "get_requirement"
	SearchRequirements = "search_requirements"
	ListWorkProducts   = "list_work_products"
	ExportMatrix       = "export_compliance_matrix"
	About              = "about"
)

// TitleFromName turns a snake_case tool name into a title.
func TitleFromName(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

var listSourcesTool = Tool{
	Name: ListSources,
	Description: "List available automotive cybersecurity regulations and standards. Call this first to discover available " +
		"sources before using other tools. Returns metadata including version, type (regulation/standard), item counts, " +
		"and whether full text is available. Do NOT use this to retrieve requirement content; use get_requirement instead.",
	InputSchema: objectSchema(map[string]any{
		"source_type": map[string]any{
			"type":        "string",
			"enum":        []string{"regulation", "standard", "all"},
			"default":     "all",
			"description": `Filter by source type. "regulation" returns UNECE regulations, "standard" returns ISO standards, "all" returns both. Default: "all".`,
		},
	}),
}

var getRequirementTool = Tool{
	Name: GetRequirement,
	Description: "Retrieve a specific regulation article or standard clause. For regulations (UNECE R155/R156), returns full text. " +
		"For standards (ISO 21434), returns guidance and work products only; full text is NOT included (requires paid license). " +
		"Returns an error if the source or reference is not found. For bulk audit documentation, use export_compliance_matrix instead.",
	InputSchema: objectSchema(map[string]any{
		"source": map[string]any{
			"type":        "string",
			"description": `Source ID (e.g., "r155", "r156", "iso_21434"). Use list_sources to see available sources.`,
		},
		"reference": map[string]any{
			"type":        "string",
			"description": `Reference identifier within the source (e.g., "7.2.2.2" for regulation article, "9.3" for standard clause).`,
		},
		"include_mappings": map[string]any{
			"type":        "boolean",
			"default":     false,
			"description": "Include cross-framework mappings to related requirements in other regulations/standards. Default: false.",
		},
	}, "source", "reference"),
}

var searchRequirementsTool = Tool{
	Name: SearchRequirements,
	Description: "Full-text search across all regulations and standards using FTS5 with BM25 ranking. Returns results sorted by " +
		"relevance with highlighted snippets. Returns an empty array for no matches (not an error). Empty or whitespace-only " +
		"queries return empty results. Maximum 100 results per query.",
	InputSchema: objectSchema(map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "Search query text. Can be a single word, phrase, or multiple terms.",
		},
		"sources": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": `Optional: Filter to specific sources (e.g., ["r155", "iso_21434"]). Omit to search all sources.`,
		},
		"limit": map[string]any{
			"type":        "number",
			"default":     10,
			"minimum":     1,
			"maximum":     100,
			"description": "Maximum number of results to return. Default: 10, minimum: 1, maximum: 100.",
		},
	}, "query"),
}

var listWorkProductsTool = Tool{
	Name: ListWorkProducts,
	Description: "List ISO 21434 work products (deliverables) required for cybersecurity engineering. Shows which artifacts to " +
		"produce for each clause, whether CAL-dependent, and which R155 requirements they help satisfy. Returns all work " +
		"products if no filters are specified. Phase filter maps to ISO 21434 clause groups (e.g., \"tara\" maps to clause 15).",
	InputSchema: objectSchema(map[string]any{
		"clause_id": map[string]any{
			"type":        "string",
			"description": `Filter to a specific ISO 21434 clause (e.g., "15" for TARA, "6" for cybersecurity case). Omit for all clauses.`,
		},
		"phase": map[string]any{
			"type":        "string",
			"enum":        workproducts.PhaseNames(),
			"description": "Filter by lifecycle phase.",
		},
	}),
}

var exportMatrixTool = Tool{
	Name: ExportMatrix,
	Description: "Generate a compliance traceability matrix showing regulation requirements mapped to ISO 21434 clauses and work " +
		"products. Export as Markdown table or CSV for spreadsheet import. Produces large output; use get_requirement for single items.",
	InputSchema: objectSchema(map[string]any{
		"regulation": map[string]any{
			"type":        "string",
			"enum":        []string{"r155", "r156"},
			"default":     "r155",
			"description": `Regulation to generate matrix for. Default: "r155".`,
		},
		"format": map[string]any{
			"type":        "string",
			"enum":        []string{"markdown", "csv"},
			"default":     "markdown",
			"description": `Output format. "markdown" for documentation, "csv" for spreadsheet import. Default: "markdown".`,
		},
		"include_guidance": map[string]any{
			"type":        "boolean",
			"default":     false,
			"description": "Include ISO 21434 guidance summaries in output. Default: false.",
		},
	}),
}

var aboutTool = Tool{
	Name: About,
	Description: "Server metadata, dataset statistics, freshness, and provenance. No input parameters needed. " +
		"Call this to verify data coverage, currency, and content basis before relying on results.",
	InputSchema: objectSchema(map[string]any{}),
}
