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

// Package mapping traverses cross-framework edges between regulations and
// standards.
//
// Forward and Reverse are exact lookups on one endpoint of an edge. Rolling
// clauses up under a regulation article uses the prefix-aware CoversArticle
// rule instead, so a mapping to "7.2.2.2(a)" also counts for article "7".
package mapping

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/storage"
)

// Traverser looks up mapping edges.
type Traverser struct {
	repo   storage.MappingRepository
	logger *slog.Logger
}

// NewTraverser creates a Traverser. A nil logger falls back to slog.Default().
func NewTraverser(repo storage.MappingRepository, logger *slog.Logger) *Traverser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Traverser{repo: repo, logger: logger}
}

// Forward returns edges whose source is the entity, in insertion order.
func (t *Traverser) Forward(ctx context.Context, entity core.Endpoint) ([]core.MappingReference, error) {
	refs, err := t.repo.ForwardMappings(ctx, entity)
	if err != nil {
		t.logger.Error("forward mapping lookup failed", "type", entity.Type, "id", entity.ID, "ref", entity.Ref, "err", err)
		return nil, err
	}
	return refs, nil
}

// Reverse returns edges whose target is the entity. The opposite endpoint is
// reported in the same target_* fields Forward uses.
func (t *Traverser) Reverse(ctx context.Context, entity core.Endpoint) ([]core.MappingReference, error) {
	refs, err := t.repo.ReverseMappings(ctx, entity)
	if err != nil {
		t.logger.Error("reverse mapping lookup failed", "type", entity.Type, "id", entity.ID, "ref", entity.Ref, "err", err)
		return nil, err
	}
	return refs, nil
}

// CoversArticle reports whether a mapping target reference falls under an
// article reference: an exact match, a dotted sub-reference ("7" covers
// "7.2") or a lettered sub-item ("7" covers "7(a)").
func CoversArticle(targetRef, articleRef string) bool {
	if targetRef == articleRef {
		return true
	}
	return strings.HasPrefix(targetRef, articleRef+".") || strings.HasPrefix(targetRef, articleRef+"(")
}
