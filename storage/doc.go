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

// Package storage provides the storage abstraction layer for automcp.
//
// This package defines repository interfaces that decouple the query layer
// from the embedded SQLite dataset and the BadgerDB export cache.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the interfaces declared here:
//
//	ds, err := sqlite.Open(path)  // returns storage.Dataset
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Architecture
//
//   - RegulationRepository: regulations and their articles, annexes and paragraphs
//   - StandardRepository: standards and clause-level guidance
//   - MappingRepository: cross-framework edges
//   - SearchIndex: FTS5 full-text queries
//   - MetadataRepository: row counts and build metadata
//   - Dataset: all of the above
//   - MatrixCache: rendered compliance matrices
//
// # Usage
//
//	ds, err := sqlite.Open("/path/to/automotive.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ds.Close()
//
// Use in tests with a fixture dataset:
//
//	ds := sqlite.NewTestStore(t)
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
