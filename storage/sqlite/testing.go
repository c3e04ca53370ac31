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

package sqlite

import (
	"context"
	"path/filepath"
	"time"

	"github.com/ansvar-systems/automcp/seed"
)

// FixtureBuildTime is the build timestamp recorded in fixture datasets.
var FixtureBuildTime = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

// NewTestStore builds the fixture dataset into dir and opens it read-only.
// Caller must close the store when done.
func NewTestStore(dir string) (*Store, error) {
	path := filepath.Join(dir, "fixture.db")
	if _, err := Build(context.Background(), path, FixtureSeed(),
		WithServerVersion("test"), WithClock(func() time.Time { return FixtureBuildTime })); err != nil {
		return nil, err
	}
	return OpenStore(path)
}

// FixtureSeed returns a small dataset covering both families, all three
// relationship kinds, nested references and clauses without work products.
func FixtureSeed() *seed.Seed {
	return &seed.Seed{
		Regulations: []seed.Regulation{
			{
				ID:             "r155",
				FullName:       "UN Regulation No. 155",
				Title:          "Cyber security and cyber security management system",
				Version:        "2021",
				EffectiveDate:  "2021-01-22",
				SourceURL:      "https://unece.org/transport/documents/2021/03/standards/un-regulation-no-155-cyber-security-and-cyber-security",
				AppliesTo:      []string{"M", "N", "O"},
				RegulationType: "unece",
			},
			{
				ID:             "r156",
				FullName:       "UN Regulation No. 156",
				Title:          "Software update and software update management system",
				Version:        "2021",
				RegulationType: "unece",
			},
		},
		Content: []seed.Content{
			{Regulation: "r155", ContentType: "article", Reference: "1", Title: "Scope",
				Text: "This Regulation applies to vehicles of categories M and N with regard to cyber security."},
			{Regulation: "r155", ContentType: "article", Reference: "2", Title: "Definitions",
				Text: "For the purposes of this Regulation the following definitions apply. Vehicle type means vehicles which do not differ in essential aspects."},
			{Regulation: "r155", ContentType: "article", Reference: "7", Title: "Specifications",
				Text: "The manufacturer shall demonstrate that the Cyber Security Management System applies to the development, production and post-production phases."},
			{Regulation: "r155", ContentType: "article", Reference: "10", Title: "Modification of vehicle type",
				Text: "Every modification of the vehicle type which affects its technical performance shall be notified to the approval authority."},
			{Regulation: "r155", ContentType: "article", Reference: "7.2.2.2", Title: "Cyber Security Management System processes",
				Text: "The manufacturer shall demonstrate the processes used within their Cyber Security Management System for risk assessment of threats.", ParentReference: "7"},
			{Regulation: "r155", ContentType: "paragraph", Reference: "5.1", Title: "Approval",
				Text: "If the vehicle type submitted for approval meets the requirements, approval shall be granted."},
			{Regulation: "r155", ContentType: "annex", Reference: "Annex 5", Title: "List of threats and corresponding mitigations",
				Text: "This annex lists threats to vehicle communication channels and the corresponding mitigations."},
			{Regulation: "r156", ContentType: "article", Reference: "7.1", Title: "Software Update Management System",
				Text: "The manufacturer shall operate a Software Update Management System covering over-the-air updates."},
		},
		Standards: []seed.Standard{
			{ID: "iso_21434", FullName: "ISO/SAE 21434:2021", Title: "Road vehicles - Cybersecurity engineering", Version: "2021",
				Note: "Guidance summaries only. Full text is licensed by ISO."},
			{ID: "iso_24089", FullName: "ISO 24089:2023", Title: "Road vehicles - Software update engineering", Version: "Current revision"},
			{ID: "sae_j3061", FullName: "SAE J3061", Title: "Cybersecurity Guidebook for Cyber-Physical Vehicle Systems"},
		},
		Clauses: []seed.Clause{
			{Standard: "iso_21434", ClauseID: "5", Title: "Organizational cybersecurity management",
				Guidance:     "Establish a cybersecurity policy and the rules that implement it. Assign responsibilities.",
				WorkProducts: []string{"[WP-05-01] Cybersecurity policy, rules and processes", "[WP-05-02] Organizational cybersecurity audit report"},
				R155Mapping:  []string{"7.2.2.1"}},
			{Standard: "iso_21434", ClauseID: "6", Title: "Project dependent cybersecurity management",
				Guidance:     "Plan cybersecurity activities for each project",
				WorkProducts: []string{"[WP-06-01] Cybersecurity plan"},
				CALRelevant:  true},
			{Standard: "iso_21434", ClauseID: "9", Title: "Concept",
				Guidance:     "Concept phase activities define the item and its cybersecurity goals.",
				WorkProducts: []string{}},
			{Standard: "iso_21434", ClauseID: "9.3", Title: "Item definition",
				Guidance:     "Describe the item boundary, its functions and its operational environment. Include external interfaces.",
				WorkProducts: []string{"[WP-09-01] Item definition"},
				R155Mapping:  []string{"7.2.2.2(a)"}},
			{Standard: "iso_21434", ClauseID: "15", Title: "Threat analysis and risk assessment methods",
				Guidance:     "TARA identifies assets, threat scenarios and risk values. It is repeated when the item changes.",
				WorkProducts: []string{"[WP-15-01] Damage scenarios", "[WP-15-02] Threat scenarios", "[WP-15-03] Attack paths", "[WP-15-04] Risk values"},
				CALRelevant:  true,
				R155Mapping:  []string{"7.2.2.2", "7.2.2.2(b)"}},
			{Standard: "iso_21434", ClauseID: "15.3", Title: "Asset identification",
				Guidance:     "Identify assets with cybersecurity properties whose compromise leads to damage.",
				WorkProducts: []string{"[WP-15-01] Damage scenarios", "Asset list"},
				CALRelevant:  true,
				R155Mapping:  []string{"7.2.2.2"},
				Mappings: []seed.Mapping{
					{TargetType: "regulation", TargetID: "r156", TargetRef: "7.1"},
					{TargetType: "policy", TargetID: "internal", TargetRef: "1"},
					{TargetType: "regulation", TargetID: "r155", TargetRef: "7.2.2.2", Relationship: "partial"},
				}},
			{Standard: "iso_24089", ClauseID: "7", Title: "Software update campaign",
				Guidance: "Plan and execute update campaigns with rollback support.",
				Mappings: []seed.Mapping{
					{TargetType: "regulation", TargetID: "r156", TargetRef: "7.1", Relationship: "satisfies", Notes: "SUMS campaign management"},
				}},
		},
		WorkProducts: []seed.WorkProduct{
			{ID: "WP-09-01", Name: "Item definition", Phase: "concept", ISOClause: "9.3",
				Description: "Description of the item and its environment.", Contents: []string{"Boundary", "Functions"}, TemplateAvailable: true},
			{ID: "WP-15-01", Name: "Damage scenarios", Phase: "tara", ISOClause: "15.3",
				Description: "Adverse consequences to road users.", Contents: []string{"Impact category"}},
		},
	}
}
