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

// Package requirements resolves source identifiers and fetches a single
// regulation article or standard clause in the unified output shape.
package requirements

import (
	"context"
	"strings"

	"github.com/ansvar-systems/automcp/core"
)

// SourceProber answers existence probes for both identifier spaces.
type SourceProber interface {
	RegulationExists(ctx context.Context, id string) (bool, error)
	StandardExists(ctx context.Context, id string) (bool, error)
}

// Resolver classifies a source identifier into its family.
type Resolver struct {
	prober SourceProber
}

func NewResolver(prober SourceProber) *Resolver {
	return &Resolver{prober: prober}
}

// Resolve lowercases id and probes both families. A regulation wins if the
// same id exists in both. Returns FamilyNone when neither matches.
func (r *Resolver) Resolve(ctx context.Context, id string) (core.Family, error) {
	id = strings.ToLower(id)

	isRegulation, err := r.prober.RegulationExists(ctx, id)
	if err != nil {
		return core.FamilyNone, err
	}
	isStandard, err := r.prober.StandardExists(ctx, id)
	if err != nil {
		return core.FamilyNone, err
	}

	switch {
	case isRegulation:
		return core.FamilyRegulation, nil
	case isStandard:
		return core.FamilyStandard, nil
	}
	return core.FamilyNone, nil
}
