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

package search

import (
	"github.com/ansvar-systems/automcp/core"
)

// SearchMonitor observes the stages of a single search.
type SearchMonitor interface {
	Start(query, match string)
	AfterRegulationSearch(hits []*core.SearchHit)
	AfterStandardSearch(hits []*core.SearchHit)
	InvalidQuery(match string, err error)
	Finish(results []*core.SearchHit)
}

type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                         {}
func (n *noopMonitor) AfterRegulationSearch(_ []*core.SearchHit) {}
func (n *noopMonitor) AfterStandardSearch(_ []*core.SearchHit)   {}
func (n *noopMonitor) InvalidQuery(_ string, _ error)            {}
func (n *noopMonitor) Finish(_ []*core.SearchHit)                {}
