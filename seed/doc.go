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

// Package seed reads the JSON seed files the dataset is built from.
//
// A seed directory holds:
//
//	regulations.json   {"regulations": [...], "content": [...]}
//	standards.json     {"standards": [...], "clauses": [...]}
//	work_products.json {"work_products": [...]} (optional)
//
// Missing files are skipped so partial datasets can be built during curation.
package seed
