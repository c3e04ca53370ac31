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

import "fmt"

// ValidateRegulation validates a Regulation according to domain rules.
//
// Validation rules:
//   - ID, FullName and Title must not be empty
//   - ID must already be lowercase
//   - Type must be one of the known regulation types
func ValidateRegulation(reg *Regulation) error {
	if reg == nil {
		return fmt.Errorf("%w: regulation is nil", ErrInvalidRegulation)
	}
	if reg.ID == "" || reg.FullName == "" || reg.Title == "" {
		return fmt.Errorf("%w: id, full_name and title are required", ErrInvalidRegulation)
	}
	if !isLowerSlug(reg.ID) {
		return fmt.Errorf("%w: id %q must be lowercase", ErrInvalidRegulation, reg.ID)
	}
	switch reg.Type {
	case RegulationTypeUNECE, RegulationTypeEUImplementing, RegulationTypeNational:
	default:
		return fmt.Errorf("%w: unknown regulation_type %q", ErrInvalidRegulation, reg.Type)
	}
	return nil
}

// ValidateRegulationContent validates a content row. Every row must carry
// non-empty legal text.
func ValidateRegulationContent(content *RegulationContent) error {
	if content == nil {
		return fmt.Errorf("%w: content is nil", ErrInvalidContent)
	}
	if content.Regulation == "" || content.Reference == "" {
		return fmt.Errorf("%w: regulation and reference are required", ErrInvalidContent)
	}
	if err := ValidateContentType(content.ContentType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContent, err)
	}
	if content.Text == "" {
		return fmt.Errorf("%w: %s %s: %w", ErrInvalidContent, content.Regulation, content.Reference, ErrEmptyText)
	}
	return nil
}

// ValidateContentType validates that a ContentType has a known value.
func ValidateContentType(ct ContentType) error {
	switch ct {
	case ContentTypeArticle, ContentTypeAnnex, ContentTypeParagraph:
		return nil
	}
	return fmt.Errorf("unknown content_type %q", ct)
}

func ValidateStandard(std *Standard) error {
	if std == nil {
		return fmt.Errorf("%w: standard is nil", ErrInvalidStandard)
	}
	if std.ID == "" || std.FullName == "" || std.Title == "" {
		return fmt.Errorf("%w: id, full_name and title are required", ErrInvalidStandard)
	}
	if !isLowerSlug(std.ID) {
		return fmt.Errorf("%w: id %q must be lowercase", ErrInvalidStandard, std.ID)
	}
	return nil
}

// ValidateStandardClause validates a clause. Guidance is required because it
// is the only text served for standards.
func ValidateStandardClause(clause *StandardClause) error {
	if clause == nil {
		return fmt.Errorf("%w: clause is nil", ErrInvalidClause)
	}
	if clause.Standard == "" || clause.ClauseID == "" || clause.Title == "" {
		return fmt.Errorf("%w: standard, clause_id and title are required", ErrInvalidClause)
	}
	if clause.Guidance == "" {
		return fmt.Errorf("%w: %s %s: guidance cannot be empty", ErrInvalidClause, clause.Standard, clause.ClauseID)
	}
	return nil
}

// ValidateMapping validates a FrameworkMapping edge.
func ValidateMapping(m *FrameworkMapping) error {
	if m == nil {
		return fmt.Errorf("%w: mapping is nil", ErrInvalidMapping)
	}
	if !isFamilyType(m.SourceType) || !isFamilyType(m.TargetType) {
		return fmt.Errorf("%w: source_type and target_type must be regulation or standard", ErrInvalidMapping)
	}
	if m.SourceID == "" || m.SourceRef == "" || m.TargetID == "" || m.TargetRef == "" {
		return fmt.Errorf("%w: endpoints must be complete", ErrInvalidMapping)
	}
	if err := ValidateRelationship(m.Relationship); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMapping, err)
	}
	return nil
}

// ValidateRelationship validates that a Relationship has a known value.
func ValidateRelationship(r Relationship) error {
	switch r {
	case RelationshipSatisfies, RelationshipPartial, RelationshipRelated:
		return nil
	}
	return fmt.Errorf("unknown relationship %q", r)
}

func isFamilyType(t string) bool {
	return t == FamilyRegulation.String() || t == FamilyStandard.String()
}

func isLowerSlug(id string) bool {
	for _, r := range id {
		if r >= 'A' && r <= 'Z' {
			return false
		}
	}
	return true
}
