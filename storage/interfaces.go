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

package storage

import (
	"context"

	"github.com/ansvar-systems/automcp/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close closes the storage backend and releases resources.
	Close() error
}

// RegulationRepository provides read access to regulations and their content.
type RegulationRepository interface {
	Repository

	// RegulationExists reports whether a regulation with the exact id exists.
	RegulationExists(ctx context.Context, id string) (bool, error)

	// ListRegulations returns every regulation with its content item count,
	// ordered by id.
	ListRegulations(ctx context.Context) ([]*core.SourceSummary, error)

	// GetRegulationContent retrieves one content item by its exact reference.
	// Returns ErrNotFound if the item doesn't exist.
	GetRegulationContent(ctx context.Context, regulation, reference string) (*core.RegulationContent, error)

	// ListArticles returns all article-typed content of a regulation in
	// storage order.
	ListArticles(ctx context.Context, regulation string) ([]*core.RegulationContent, error)
}

// StandardRepository provides read access to standards and clause guidance.
type StandardRepository interface {
	Repository

	// StandardExists reports whether a standard with the exact id exists.
	StandardExists(ctx context.Context, id string) (bool, error)

	// ListStandards returns every standard with its clause count, ordered by id.
	ListStandards(ctx context.Context) ([]*core.SourceSummary, error)

	// GetStandardClause retrieves one clause by its exact id.
	// Returns ErrNotFound if the clause doesn't exist.
	GetStandardClause(ctx context.Context, standard, clauseID string) (*core.StandardClause, error)

	// ListWorkProductClauses returns clauses of standard that carry a non-empty
	// work product column, ordered by clause id. When clauseIDs is non-empty
	// only those clauses are returned. Each clause carries the exact references
	// of regulation it maps to.
	ListWorkProductClauses(ctx context.Context, standard string, clauseIDs []string, regulation string) ([]*core.WorkProductClause, error)
}

// MappingRepository provides exact-match traversal of framework mappings.
type MappingRepository interface {
	Repository

	// ForwardMappings returns edges whose source is the endpoint.
	ForwardMappings(ctx context.Context, source core.Endpoint) ([]core.MappingReference, error)

	// ReverseMappings returns edges whose target is the endpoint, with the
	// source side reported in the target fields.
	ReverseMappings(ctx context.Context, target core.Endpoint) ([]core.MappingReference, error)

	// ClauseMappingsTo returns every standard clause mapped into regulation
	// joined with its clause row, in mapping insertion order.
	ClauseMappingsTo(ctx context.Context, regulation string) ([]*core.ClauseMapping, error)
}

// SearchIndex runs full-text queries against the regulation and standard indices.
// Match is a query already in the engine's syntax. Sources restricts results to
// the given ids when non-empty.
// Returns ErrInvalidQuery when the engine rejects the query syntax.
type SearchIndex interface {
	SearchRegulations(ctx context.Context, match string, sources []string, limit int) ([]*core.SearchHit, error)
	SearchStandards(ctx context.Context, match string, sources []string, limit int) ([]*core.SearchHit, error)
}

// MetadataRepository exposes dataset bookkeeping.
type MetadataRepository interface {
	// CountRows returns the row count of a known table.
	// Returns ErrUnknownTable for names outside the dataset schema.
	CountRows(ctx context.Context, table string) (int, error)

	// Metadata returns the key/value pairs recorded when the dataset was built.
	Metadata(ctx context.Context) (map[string]string, error)
}

// Dataset combines every read interface of the compliance dataset.
type Dataset interface {
	RegulationRepository
	StandardRepository
	MappingRepository
	SearchIndex
	MetadataRepository
}

// MatrixCache stores rendered compliance matrices.
type MatrixCache interface {
	Repository

	// GetMatrix returns the cached result for key.
	// Returns nil, nil on a cache miss.
	GetMatrix(ctx context.Context, key core.ID) (*core.MatrixResult, error)

	// PutMatrix stores result under key.
	PutMatrix(ctx context.Context, key core.ID, result *core.MatrixResult) error

	// Purge removes every cached matrix and returns how many were removed.
	Purge(ctx context.Context) (int, error)
}
