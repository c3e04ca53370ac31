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

package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ansvar-systems/automcp/core"
)

const (
	RegulationsFile  = "regulations.json"
	StandardsFile    = "standards.json"
	WorkProductsFile = "work_products.json"
)

// Seed is the full content of a seed directory.
type Seed struct {
	Regulations  []Regulation  `json:"regulations"`
	Content      []Content     `json:"content"`
	Standards    []Standard    `json:"standards"`
	Clauses      []Clause      `json:"clauses"`
	WorkProducts []WorkProduct `json:"work_products"`
}

type Regulation struct {
	ID             string   `json:"id"`
	FullName       string   `json:"full_name"`
	Title          string   `json:"title"`
	Version        string   `json:"version,omitempty"`
	EffectiveDate  string   `json:"effective_date,omitempty"`
	SourceURL      string   `json:"source_url,omitempty"`
	AppliesTo      []string `json:"applies_to,omitempty"`
	RegulationType string   `json:"regulation_type"`
}

type Content struct {
	Regulation      string `json:"regulation"`
	ContentType     string `json:"content_type"`
	Reference       string `json:"reference"`
	Title           string `json:"title,omitempty"`
	Text            string `json:"text"`
	ParentReference string `json:"parent_reference,omitempty"`
}

type Standard struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Title    string `json:"title"`
	Version  string `json:"version,omitempty"`
	Note     string `json:"note,omitempty"`
}

type Clause struct {
	Standard     string    `json:"standard"`
	ClauseID     string    `json:"clause_id"`
	Title        string    `json:"title"`
	Guidance     string    `json:"guidance"`
	WorkProducts []string  `json:"work_products,omitempty"`
	CALRelevant  Flag      `json:"cal_relevant,omitempty"`
	R155Mapping  []string  `json:"r155_mapping,omitempty"`
	Mappings     []Mapping `json:"mappings,omitempty"`
}

// Mapping is a clause-level mapping entry to any regulation or standard.
type Mapping struct {
	TargetType   string `json:"target_type"`
	TargetID     string `json:"target_id"`
	TargetRef    string `json:"target_ref"`
	Relationship string `json:"relationship,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type WorkProduct struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Phase             string   `json:"phase"`
	ISOClause         string   `json:"iso_clause"`
	Description       string   `json:"description"`
	Contents          []string `json:"contents"`
	TemplateAvailable Flag     `json:"template_available,omitempty"`
}

// Flag accepts either a JSON boolean or a 0/1 number.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	s := string(data)
	switch s {
	case "true":
		*f = true
		return nil
	case "false", "null":
		*f = false
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("seed: invalid flag value %s", s)
	}
	*f = n != 0
	return nil
}

// Load reads every known seed file from dir.
func Load(dir string) (*Seed, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	s := &Seed{}
	files := []string{RegulationsFile, StandardsFile, WorkProductsFile}
	for _, name := range files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				slog.Warn("seed file not found, skipping", "file", path)
				continue
			}
			return nil, err
		}
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("seed: parse %s: %w", name, err)
		}
	}
	return s, nil
}

// RegulationModel converts a seed regulation into its domain form.
func (r Regulation) RegulationModel() *core.Regulation {
	return &core.Regulation{
		ID:            r.ID,
		FullName:      r.FullName,
		Title:         r.Title,
		Version:       r.Version,
		EffectiveDate: r.EffectiveDate,
		SourceURL:     r.SourceURL,
		AppliesTo:     r.AppliesTo,
		Type:          core.RegulationType(r.RegulationType),
	}
}

func (c Content) ContentModel() *core.RegulationContent {
	return &core.RegulationContent{
		Regulation:      c.Regulation,
		ContentType:     core.ContentType(c.ContentType),
		Reference:       c.Reference,
		Title:           optional(c.Title),
		Text:            c.Text,
		ParentReference: optional(c.ParentReference),
	}
}

func (s Standard) StandardModel() *core.Standard {
	return &core.Standard{
		ID:       s.ID,
		FullName: s.FullName,
		Title:    s.Title,
		Version:  s.Version,
		Note:     s.Note,
	}
}

func (c Clause) ClauseModel() *core.StandardClause {
	clause := &core.StandardClause{
		Standard:    c.Standard,
		ClauseID:    c.ClauseID,
		Title:       c.Title,
		Guidance:    c.Guidance,
		CALRelevant: bool(c.CALRelevant),
	}
	if c.WorkProducts != nil {
		state := core.ListPresent
		if len(c.WorkProducts) == 0 {
			state = core.ListEmpty
		}
		clause.WorkProducts = core.StringList{State: state, Items: c.WorkProducts}
	}
	return clause
}

// MappingModels expands the clause's r155_mapping shorthand and its generic
// mappings into edges. The shorthand always means "satisfies R155"; generic
// entries default to "related".
func (c Clause) MappingModels() []*core.FrameworkMapping {
	out := make([]*core.FrameworkMapping, 0, len(c.R155Mapping)+len(c.Mappings))
	for _, ref := range c.R155Mapping {
		out = append(out, &core.FrameworkMapping{
			SourceType:   core.FamilyStandard.String(),
			SourceID:     c.Standard,
			SourceRef:    c.ClauseID,
			TargetType:   core.FamilyRegulation.String(),
			TargetID:     "r155",
			TargetRef:    ref,
			Relationship: core.RelationshipSatisfies,
		})
	}
	for _, m := range c.Mappings {
		rel := core.Relationship(m.Relationship)
		if rel == "" {
			rel = core.RelationshipRelated
		}
		out = append(out, &core.FrameworkMapping{
			SourceType:   core.FamilyStandard.String(),
			SourceID:     c.Standard,
			SourceRef:    c.ClauseID,
			TargetType:   m.TargetType,
			TargetID:     m.TargetID,
			TargetRef:    m.TargetRef,
			Relationship: rel,
			Notes:        m.Notes,
		})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
