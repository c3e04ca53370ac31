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

// Package workproducts lists the deliverables ISO/SAE 21434 clauses require,
// with the R155 references each clause maps to.
package workproducts

import (
	"context"
	"log/slog"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/storage"
)

const (
	// Standard is the only standard whose clauses are aggregated.
	Standard = "iso_21434"

	// Regulation is the regulation whose mapped references are reported.
	Regulation = "r155"
)

// Phase names a lifecycle phase and the clause ids it covers.
type Phase struct {
	Name    string
	Clauses []string
}

// Phases is the lifecycle phase table in catalog order.
var Phases = []Phase{
	{"organizational", []string{"5"}},
	{"project", []string{"6", "7"}},
	{"continual", []string{"8"}},
	{"concept", []string{"9"}},
	{"development", []string{"10"}},
	{"validation", []string{"11"}},
	{"production", []string{"12"}},
	{"operations", []string{"13"}},
	{"decommissioning", []string{"14"}},
	{"tara", []string{"15", "15.3", "15.4", "15.5", "15.6", "15.7", "15.8", "15.9"}},
}

// PhaseNames returns the phase catalog in order.
func PhaseNames() []string {
	names := make([]string, len(Phases))
	for i, p := range Phases {
		names[i] = p.Name
	}
	return names
}

// PhaseClauses returns the clause ids for a phase name.
func PhaseClauses(name string) ([]string, bool) {
	for _, p := range Phases {
		if p.Name == name {
			return p.Clauses, true
		}
	}
	return nil, false
}

// ListInput holds the parameters of a list_work_products call.
type ListInput struct {
	ClauseID string `json:"clause_id,omitempty"`
	Phase    string `json:"phase,omitempty"`
}

// Item is one work product with the clause that requires it.
type Item struct {
	ID          *string  `json:"id"`
	Name        string   `json:"name"`
	ClauseID    string   `json:"clause_id"`
	ClauseTitle string   `json:"clause_title"`
	CALRelevant bool     `json:"cal_relevant"`
	R155Refs    []string `json:"r155_refs"`
}

type Summary struct {
	TotalWorkProducts int `json:"total_work_products"`
	ClausesCovered    int `json:"clauses_covered"`
	CALRelevantCount  int `json:"cal_relevant_count"`
}

// Result is the list_work_products output.
type Result struct {
	WorkProducts []Item   `json:"work_products"`
	Summary      Summary  `json:"summary"`
	Phases       []string `json:"phases"`
}

// Aggregator flattens clause work product lists into items.
type Aggregator struct {
	repo   storage.StandardRepository
	logger *slog.Logger
}

// NewAggregator creates an Aggregator. A nil logger falls back to slog.Default().
func NewAggregator(repo storage.StandardRepository, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{repo: repo, logger: logger}
}

// List returns work products filtered by clause id or phase. ClauseID takes
// precedence over Phase. An unrecognized phase applies no filter.
func (a *Aggregator) List(ctx context.Context, in ListInput) (*Result, error) {
	var clauseIDs []string
	switch {
	case in.ClauseID != "":
		clauseIDs = []string{in.ClauseID}
	case in.Phase != "":
		ids, ok := PhaseClauses(in.Phase)
		if !ok {
			a.logger.Warn("unknown lifecycle phase, listing all work products", "phase", in.Phase)
		}
		clauseIDs = ids
	}

	clauses, err := a.repo.ListWorkProductClauses(ctx, Standard, clauseIDs, Regulation)
	if err != nil {
		a.logger.Error("work product lookup failed", "err", err)
		return nil, err
	}

	items := []Item{}
	covered := make(map[string]bool)
	calCount := 0
	for _, c := range clauses {
		if c.WorkProducts.State != core.ListPresent {
			continue
		}
		for _, label := range c.WorkProducts.Items {
			wp := core.ParseWorkProduct(label)
			items = append(items, Item{
				ID:          wp.ID,
				Name:        wp.Name,
				ClauseID:    c.ClauseID,
				ClauseTitle: c.ClauseTitle,
				CALRelevant: c.CALRelevant,
				R155Refs:    c.RegulationRefs,
			})
			covered[c.ClauseID] = true
			if c.CALRelevant {
				calCount++
			}
		}
	}

	return &Result{
		WorkProducts: items,
		Summary: Summary{
			TotalWorkProducts: len(items),
			ClausesCovered:    len(covered),
			CALRelevantCount:  calCount,
		},
		Phases: PhaseNames(),
	}, nil
}
