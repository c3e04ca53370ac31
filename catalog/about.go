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

package catalog

import (
	"context"
)

// ServerInfo identifies the running server and the dataset file it serves.
type ServerInfo struct {
	Version     string
	Fingerprint string
	Built       string
}

// About is the static description returned by the about tool.
type About struct {
	Server     AboutServer     `json:"server"`
	Dataset    AboutDataset    `json:"dataset"`
	Provenance AboutProvenance `json:"provenance"`
	Security   AboutSecurity   `json:"security"`
}

type AboutServer struct {
	Name       string `json:"name"`
	Package    string `json:"package"`
	Version    string `json:"version"`
	Suite      string `json:"suite"`
	Repository string `json:"repository"`
}

type AboutDataset struct {
	Fingerprint  string            `json:"fingerprint"`
	Built        string            `json:"built"`
	Jurisdiction string            `json:"jurisdiction"`
	ContentBasis string            `json:"content_basis"`
	Counts       map[string]int    `json:"counts"`
	Metadata     map[string]string `json:"metadata"`
	Freshness    Freshness         `json:"freshness"`
}

type Freshness struct {
	LastChecked *string `json:"last_checked"`
	CheckMethod string  `json:"check_method"`
}

type AboutProvenance struct {
	Sources          []string `json:"sources"`
	License          string   `json:"license"`
	AuthenticityNote string   `json:"authenticity_note"`
}

type AboutSecurity struct {
	AccessModel        string `json:"access_model"`
	NetworkAccess      bool   `json:"network_access"`
	FilesystemAccess   bool   `json:"filesystem_access"`
	ArbitraryExecution bool   `json:"arbitrary_execution"`
}

// CountedTables maps each reported count to the table it is taken from.
var CountedTables = []struct {
	Name  string
	Table string
}{
	{"regulations", "regulations"},
	{"regulation_articles", "regulation_content"},
	{"standards", "standards"},
	{"standard_clauses", "standard_clauses"},
	{"work_products", "work_products"},
	{"framework_mappings", "framework_mappings"},
}

// About describes the server and dataset. Counts that cannot be read are
// reported as zero. The built time recorded in the dataset takes precedence
// over the one supplied in ServerInfo.
func (c *Catalog) About(ctx context.Context) *About {
	counts := make(map[string]int, len(CountedTables))
	for _, ct := range CountedTables {
		n, err := c.dataset.CountRows(ctx, ct.Table)
		if err != nil {
			c.logger.Warn("count failed", "table", ct.Table, "err", err)
			n = 0
		}
		counts[ct.Name] = n
	}

	meta, err := c.dataset.Metadata(ctx)
	if err != nil {
		c.logger.Warn("reading dataset metadata failed", "err", err)
	}
	if meta == nil {
		meta = map[string]string{}
	}

	built := c.info.Built
	if v, ok := meta["built_at"]; ok && v != "" {
		built = v
	}

	return &About{
		Server: AboutServer{
			Name:       "Automotive Cybersecurity MCP",
			Package:    "github.com/ansvar-systems/automcp",
			Version:    c.info.Version,
			Suite:      "Ansvar Compliance Suite",
			Repository: "https://github.com/Ansvar-Systems/Automotive-MCP",
		},
		Dataset: AboutDataset{
			Fingerprint:  c.info.Fingerprint,
			Built:        built,
			Jurisdiction: "International (UNECE) + ISO",
			ContentBasis: "UNECE R155/R156 regulation text from EUR-Lex. Automotive standards are included as curated metadata, " +
				"overview guidance, and selected clause structure where available. Full copyrighted standard text is not included.",
			Counts:   counts,
			Metadata: meta,
			Freshness: Freshness{
				CheckMethod: "Manual review",
			},
		},
		Provenance: AboutProvenance{
			Sources: []string{
				"EUR-Lex (UNECE regulations)",
				"ISO/SAE standards metadata and structure",
				"IEC standards metadata",
				"ASAM and COVESA public specification metadata",
			},
			License: "Apache-2.0 (server code). UNECE regulation text reusable under EUR-Lex policy. " +
				"Copyrighted standards text is not included; only metadata, identifiers, and expert-authored guidance are provided.",
			AuthenticityNote: "UNECE regulation text is derived from EUR-Lex. Standards content is limited to publicly available metadata, " +
				"curated guidance, and selected identifiers. Verify critical requirements against official publications.",
		},
		Security: AboutSecurity{
			AccessModel: "read-only",
		},
	}
}
