package mcp

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ansvar-systems/automcp/core"
)

func TestMetrics_SearchMonitor(t *testing.T) {
	m := NewMetrics()
	hits := []*core.SearchHit{{Source: "r155", Reference: "7"}, {Source: "r155", Reference: "7.2.2.2"}}

	m.Start("over-the-air", `"over-the-air"`)
	m.AfterRegulationSearch(hits)
	m.AfterStandardSearch(nil)
	m.Finish(hits)

	m.Start("risk AND", "risk AND")
	m.InvalidQuery("risk AND", errors.New("fts5: syntax error"))
	m.Finish(nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.invalidQuery))
	assert.Equal(t, 3, testutil.CollectAndCount(m.searchHits, "automcp_search_hits"))
}
