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

package core

import (
	"encoding/binary"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

type ID uint64

func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Family identifies which of the two disjoint content families a source id belongs to.
type Family int

const (
	// FamilyNone means the id is neither a regulation nor a standard.
	FamilyNone Family = iota
	// FamilyRegulation covers regulations whose full legal text is stored.
	FamilyRegulation
	// FamilyStandard covers standards, for which only guidance is stored.
	FamilyStandard
)

func (f Family) String() string {
	switch f {
	case FamilyRegulation:
		return "regulation"
	case FamilyStandard:
		return "standard"
	default:
		return "none"
	}
}

type RegulationType string

const (
	RegulationTypeUNECE          RegulationType = "unece"
	RegulationTypeEUImplementing RegulationType = "eu_implementing"
	RegulationTypeNational       RegulationType = "national"
)

type ContentType string

const (
	ContentTypeArticle   ContentType = "article"
	ContentTypeAnnex     ContentType = "annex"
	ContentTypeParagraph ContentType = "paragraph"
)

type Relationship string

const (
	RelationshipSatisfies Relationship = "satisfies"
	RelationshipPartial   Relationship = "partial"
	RelationshipRelated   Relationship = "related"
)

type Regulation struct {
	ID            string
	FullName      string
	Title         string
	Version       string
	EffectiveDate string
	SourceURL     string
	AppliesTo     []string // vehicle category codes
	Type          RegulationType
}

type RegulationContent struct {
	Regulation      string
	ContentType     ContentType
	Reference       string
	Title           *string
	Text            string
	ParentReference *string
}

type Standard struct {
	ID       string
	FullName string
	Title    string
	Version  string
	Note     string // licensing caveat
}

type StandardClause struct {
	Standard     string
	ClauseID     string
	Title        string
	Guidance     string
	WorkProducts StringList
	CALRelevant  bool
}

// FrameworkMapping is a directed edge between two requirements.
type FrameworkMapping struct {
	SourceType   string
	SourceID     string
	SourceRef    string
	TargetType   string
	TargetID     string
	TargetRef    string
	Relationship Relationship
	Notes        string
}

// Endpoint addresses one side of a FrameworkMapping.
type Endpoint struct {
	Type string
	ID   string
	Ref  string
}

// ClauseMapping is a standard clause joined with one of its mapping edges
// into a regulation.
type ClauseMapping struct {
	TargetRef string
	Clause    StandardClause
}

// SourceSummary describes a regulation or standard and how many items it holds.
type SourceSummary struct {
	ID        string
	FullName  string
	Title     string
	Version   *string
	Family    Family
	ItemCount int
}

// WorkProductClause is a clause with its deliverables and the exact regulation
// references mapped from it.
type WorkProductClause struct {
	ClauseID       string
	ClauseTitle    string
	WorkProducts   StringList
	CALRelevant    bool
	RegulationRefs []string
}

// MappingReference is the output shape for both directions of a mapping lookup.
type MappingReference struct {
	TargetType   string `json:"target_type"`
	TargetID     string `json:"target_id"`
	TargetRef    string `json:"target_ref"`
	Relationship string `json:"relationship"`
}

// UnifiedRequirement is the merged shape returned for a regulation article or
// a standard clause. Text is nil for standards: their full text is license-gated.
type UnifiedRequirement struct {
	Source       string             `json:"source"`
	Reference    string             `json:"reference"`
	Title        *string            `json:"title"`
	Text         *string            `json:"text"`
	Guidance     string             `json:"guidance"`
	MapsTo       []MappingReference `json:"maps_to,omitempty"`
	SatisfiedBy  []MappingReference `json:"satisfied_by,omitempty"`
	WorkProducts []string           `json:"work_products,omitempty"`
}

// SearchHit is one ranked full-text match. Relevance is the raw engine score
// (lower is better) and is only comparable within a single query execution.
type SearchHit struct {
	Source    string  `json:"source"`
	Reference string  `json:"reference"`
	Title     *string `json:"title"`
	Snippet   string  `json:"snippet"`
	Relevance float64 `json:"relevance"`
}

type MatrixStatistics struct {
	TotalRequirements    int `json:"total_requirements"`
	MappedRequirements   int `json:"mapped_requirements"`
	UnmappedRequirements int `json:"unmapped_requirements"`
	CoveragePercent      int `json:"coverage_percent"`
	UniqueWorkProducts   int `json:"unique_work_products"`
}

type MatrixResult struct {
	Format     string           `json:"format"`
	Content    string           `json:"content"`
	Statistics MatrixStatistics `json:"statistics"`
}

// ListState distinguishes the ways a serialized list column can decode.
type ListState int

const (
	ListAbsent ListState = iota
	ListMalformed
	ListEmpty
	ListPresent
)

func (s ListState) String() string {
	switch s {
	case ListMalformed:
		return "malformed"
	case ListEmpty:
		return "empty"
	case ListPresent:
		return "present"
	default:
		return "absent"
	}
}

// StringList is a JSON string array read from a text column.
type StringList struct {
	State ListState
	Items []string
}

// DecodeStringList decodes a JSON array of strings. An empty column or a JSON
// null is Absent; anything that is not an array of strings is Malformed.
func DecodeStringList(raw string) StringList {
	if strings.TrimSpace(raw) == "" {
		return StringList{State: ListAbsent}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return StringList{State: ListMalformed}
	}
	if items == nil {
		return StringList{State: ListAbsent}
	}
	if len(items) == 0 {
		return StringList{State: ListEmpty, Items: items}
	}
	return StringList{State: ListPresent, Items: items}
}

// WorkProductLabel is a deliverable label split into its optional bracketed
// code and its name.
type WorkProductLabel struct {
	ID   *string
	Name string
}

var workProductPattern = regexp.MustCompile(`^\[([^\]]+)\]\s*(.*)$`)

// ParseWorkProduct splits "[WP-09-03] Name" into code and name. Labels
// without a leading code keep the whole string as the name.
func ParseWorkProduct(label string) WorkProductLabel {
	m := workProductPattern.FindStringSubmatch(label)
	if m == nil {
		return WorkProductLabel{Name: label}
	}
	id := m[1]
	return WorkProductLabel{ID: &id, Name: m[2]}
}
