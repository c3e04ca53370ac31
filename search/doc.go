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

// Package search runs ranked full-text queries over regulations and standards.
//
// Raw user input is first passed through Sanitize, which quotes queries that
// contain FTS5 operator characters so they are matched as a phrase instead of
// being parsed as query syntax. The regulation and standard indices are then
// queried concurrently on a shared worker pool and the hits are merged into a
// single list ordered by engine relevance (lower is better).
//
// Relevance scores come from BM25 and are only comparable within one query.
package search
