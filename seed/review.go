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
	"strings"
	"time"
)

// PendingReview is a standard whose recorded version needs a manual check
// against the publisher.
type PendingReview struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	CurrentVersion string `json:"current_version"`
	Reason         string `json:"reason"`
}

type ReviewSummary struct {
	Regulations         int `json:"regulations_count"`
	RegulationItems     int `json:"regulation_items_count"`
	Standards           int `json:"standards_count"`
	StandardClauses     int `json:"standard_clauses_count"`
	PendingReviewsCount int `json:"pending_review_count"`
}

// Report is the result of a local source-freshness scan. No remote content is fetched.
type Report struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	Summary       ReviewSummary   `json:"summary"`
	PendingReview []PendingReview `json:"pending_review"`
	CheckMethod   string          `json:"check_method"`
}

var versionPlaceholders = []struct {
	marker string
	reason string
}{
	{"current revision", `Uses "Current revision" placeholder`},
	{"multi-part", `Uses "Multi-part" placeholder`},
	{"digital annex", `Uses "Digital Annex" placeholder`},
}

// Review flags standards whose version is missing or a placeholder.
func Review(s *Seed, now time.Time) *Report {
	pending := make([]PendingReview, 0)
	for _, std := range s.Standards {
		if reason := versionReviewReason(std.Version); reason != "" {
			pending = append(pending, PendingReview{
				ID:             std.ID,
				FullName:       std.FullName,
				CurrentVersion: std.Version,
				Reason:         reason,
			})
		}
	}

	return &Report{
		GeneratedAt: now.UTC(),
		Summary: ReviewSummary{
			Regulations:         len(s.Regulations),
			RegulationItems:     len(s.Content),
			Standards:           len(s.Standards),
			StandardClauses:     len(s.Clauses),
			PendingReviewsCount: len(pending),
		},
		PendingReview: pending,
		CheckMethod:   "Local metadata scan (no network fetch).",
	}
}

func versionReviewReason(version string) string {
	if strings.TrimSpace(version) == "" {
		return "Version field missing"
	}
	normalized := strings.ToLower(version)
	for _, p := range versionPlaceholders {
		if strings.Contains(normalized, p.marker) {
			return p.reason
		}
	}
	return ""
}
