package core

import (
	"errors"
	"testing"
)

func TestValidateRegulationContent(t *testing.T) {
	title := "Specifications"
	tests := []struct {
		name    string
		content *RegulationContent
		wantErr error
	}{
		{
			name: "valid article",
			content: &RegulationContent{
				Regulation:  "r155",
				ContentType: ContentTypeArticle,
				Reference:   "7",
				Title:       &title,
				Text:        "The Technical Service shall verify...",
			},
		},
		{
			name:    "nil content",
			content: nil,
			wantErr: ErrInvalidContent,
		},
		{
			name: "empty text",
			content: &RegulationContent{
				Regulation:  "r155",
				ContentType: ContentTypeArticle,
				Reference:   "7",
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "unknown content type",
			content: &RegulationContent{
				Regulation:  "r155",
				ContentType: ContentType("chapter"),
				Reference:   "7",
				Text:        "text",
			},
			wantErr: ErrInvalidContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegulationContent(tt.content)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRegulationContent() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRegulationContent() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRegulation(t *testing.T) {
	valid := Regulation{ID: "r155", FullName: "UN Regulation No. 155", Title: "Cyber security", Type: RegulationTypeUNECE}

	if err := ValidateRegulation(&valid); err != nil {
		t.Errorf("ValidateRegulation() error = %v, want nil", err)
	}

	upper := valid
	upper.ID = "R155"
	if err := ValidateRegulation(&upper); !errors.Is(err, ErrInvalidRegulation) {
		t.Errorf("ValidateRegulation(uppercase id) error = %v, want %v", err, ErrInvalidRegulation)
	}

	badType := valid
	badType.Type = "federal"
	if err := ValidateRegulation(&badType); !errors.Is(err, ErrInvalidRegulation) {
		t.Errorf("ValidateRegulation(bad type) error = %v, want %v", err, ErrInvalidRegulation)
	}
}

func TestValidateStandardClause(t *testing.T) {
	clause := &StandardClause{Standard: "iso_21434", ClauseID: "15", Title: "TARA", Guidance: "Identify assets."}
	if err := ValidateStandardClause(clause); err != nil {
		t.Errorf("ValidateStandardClause() error = %v, want nil", err)
	}

	clause.Guidance = ""
	if err := ValidateStandardClause(clause); !errors.Is(err, ErrInvalidClause) {
		t.Errorf("ValidateStandardClause(no guidance) error = %v, want %v", err, ErrInvalidClause)
	}
}

func TestValidateMapping(t *testing.T) {
	tests := []struct {
		name    string
		mapping *FrameworkMapping
		wantErr bool
	}{
		{
			name: "standard to regulation",
			mapping: &FrameworkMapping{
				SourceType: "standard", SourceID: "iso_21434", SourceRef: "15",
				TargetType: "regulation", TargetID: "r155", TargetRef: "7.2.2.2(a)",
				Relationship: RelationshipSatisfies,
			},
		},
		{
			name: "unknown target type",
			mapping: &FrameworkMapping{
				SourceType: "standard", SourceID: "iso_21434", SourceRef: "15",
				TargetType: "guideline", TargetID: "x", TargetRef: "1",
				Relationship: RelationshipRelated,
			},
			wantErr: true,
		},
		{
			name: "unknown relationship",
			mapping: &FrameworkMapping{
				SourceType: "standard", SourceID: "iso_21434", SourceRef: "15",
				TargetType: "regulation", TargetID: "r155", TargetRef: "7",
				Relationship: "implements",
			},
			wantErr: true,
		},
		{
			name: "missing target ref",
			mapping: &FrameworkMapping{
				SourceType: "standard", SourceID: "iso_21434", SourceRef: "15",
				TargetType: "regulation", TargetID: "r155",
				Relationship: RelationshipRelated,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMapping(tt.mapping)
			if tt.wantErr && !errors.Is(err, ErrInvalidMapping) {
				t.Errorf("ValidateMapping() error = %v, want %v", err, ErrInvalidMapping)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateMapping() error = %v, want nil", err)
			}
		})
	}
}
