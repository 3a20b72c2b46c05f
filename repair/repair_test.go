package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdf "github.com/froncalli-softcrylic/MDF-Simulator-sub000"
)

func node(id, catalogID, category string) mdf.Node {
	return mdf.Node{ID: id, Type: mdf.DefaultNodeType, Data: mdf.NodeData{
		CatalogID: catalogID, Label: catalogID, Category: category,
	}}
}

func completePipeline() mdf.Graph {
	return mdf.Graph{
		Nodes: []mdf.Node{
			node("s", "crm_salesforce", "source"),
			node("w", "snowflake_warehouse", "warehouse-storage"),
			node("a", "audience_builder", "activation"),
		},
		Edges: []mdf.Edge{
			{ID: "e1", Source: "s", Target: "w"},
			{ID: "e2", Source: "w", Target: "a"},
		},
	}
}

func TestGenerateOnHealthyGraph(t *testing.T) {
	p := New(nil, nil)

	plan := p.Generate(completePipeline(), nil)

	assert.Empty(t, plan.SuggestedEdges)
	assert.Empty(t, plan.SuggestedInsertions)
	assert.Empty(t, plan.MissingNodes)
	assert.Zero(t, plan.TotalSuggestions)
}

func TestMissingStages(t *testing.T) {
	p := New(nil, nil)
	g := mdf.Graph{Nodes: []mdf.Node{node("s", "crm_salesforce", "source")}}

	plan := p.Generate(g, nil)

	t.Run("unfilled core stages are reported", func(t *testing.T) {
		require.Len(t, plan.MissingNodes, 2)
		assert.Equal(t, "warehouse-storage", plan.MissingNodes[0].Stage)
		assert.Equal(t, "activation", plan.MissingNodes[1].Stage)
	})

	t.Run("insertions carry the preferred component per stage", func(t *testing.T) {
		require.Len(t, plan.SuggestedInsertions, 2)
		assert.Equal(t, "bigquery_warehouse", plan.SuggestedInsertions[0].CatalogID)
		assert.Equal(t, "audience_builder", plan.SuggestedInsertions[1].CatalogID)
	})

	t.Run("singleton-role insertions are required, others optional", func(t *testing.T) {
		assert.True(t, plan.SuggestedInsertions[0].Required)
		assert.False(t, plan.SuggestedInsertions[1].Required)
	})

	t.Run("edges are planned against the post-insertion graph", func(t *testing.T) {
		// Both gaps get an edge even though the nodes do not exist yet.
		require.Len(t, plan.SuggestedEdges, 2)
		assert.Equal(t, "s", plan.SuggestedEdges[0].Source)
		assert.Equal(t, "n-bigquery_warehouse", plan.SuggestedEdges[0].Target)
		assert.Equal(t, "n-bigquery_warehouse", plan.SuggestedEdges[1].Source)
		assert.Equal(t, "n-audience_builder", plan.SuggestedEdges[1].Target)
	})

	assert.Equal(t, 4, plan.TotalSuggestions)
}

func TestDeterministicEdgePick(t *testing.T) {
	p := New(nil, nil)
	g := mdf.Graph{Nodes: []mdf.Node{
		node("s2", "web_app_events", "source"),
		node("s1", "crm_salesforce", "source"),
		node("w", "snowflake_warehouse", "warehouse-storage"),
	}}

	first := p.Generate(g, nil)
	second := p.Generate(g, nil)
	assert.Equal(t, first, second)

	// Two legal source→warehouse pairs exist; the lowest catalog id wins.
	var gap *SuggestedEdge
	for i := range first.SuggestedEdges {
		if first.SuggestedEdges[i].Target == "w" {
			gap = &first.SuggestedEdges[i]
		}
	}
	require.NotNil(t, gap)
	assert.Equal(t, "s1", gap.Source)
	assert.Equal(t, ConfidenceLow, gap.Confidence)
}

func TestApplyConverges(t *testing.T) {
	p := New(nil, nil)
	g := mdf.Graph{Nodes: []mdf.Node{node("s", "crm_salesforce", "source")}}

	plan := p.Generate(g, nil)
	repaired := p.Apply(g, plan)

	t.Run("selected suggestions land in the graph", func(t *testing.T) {
		assert.True(t, repaired.HasCatalogNode("bigquery_warehouse"))
		assert.True(t, repaired.HasCatalogNode("audience_builder"))
		assert.True(t, repaired.HasEdgeBetween("s", "n-bigquery_warehouse"))
	})

	t.Run("inserted nodes are marked as gaps", func(t *testing.T) {
		n := repaired.NodeByID("n-bigquery_warehouse")
		require.NotNil(t, n)
		assert.Equal(t, mdf.StatusGap, n.Data.Status)
	})

	t.Run("a second plan over the repaired graph is empty", func(t *testing.T) {
		again := p.Generate(repaired, nil)
		assert.Zero(t, again.TotalSuggestions)
	})

	t.Run("applying the same plan twice changes nothing", func(t *testing.T) {
		assert.Equal(t, repaired, p.Apply(repaired, plan))
	})
}

func TestApplyHonorsSelection(t *testing.T) {
	p := New(nil, nil)
	g := completePipeline()
	g.Edges = g.Edges[:1] // drop warehouse → activation

	plan := p.Generate(g, nil)
	require.NotEmpty(t, plan.SuggestedEdges)

	for i := range plan.SuggestedEdges {
		plan.SuggestedEdges[i].Selected = false
	}
	out := p.Apply(g, plan)
	assert.Len(t, out.Edges, len(g.Edges))
}

func TestSelectRequired(t *testing.T) {
	p := New(nil, nil)
	g := mdf.Graph{Nodes: []mdf.Node{node("s", "crm_salesforce", "source")}}

	plan := SelectRequired(p.Generate(g, nil))

	for _, ins := range plan.SuggestedInsertions {
		assert.Equal(t, ins.Required, ins.Selected, ins.CatalogID)
	}
	for _, se := range plan.SuggestedEdges {
		assert.Equal(t, se.Required, se.Selected, se.ID)
	}

	// Applying only the required subset never produces an illegal graph;
	// edges pointing at unapplied insertions are sanitized away.
	out := p.Apply(g, plan)
	for _, e := range out.Edges {
		assert.NotNil(t, out.NodeByID(e.Source))
		assert.NotNil(t, out.NodeByID(e.Target))
	}
	assert.False(t, out.HasCatalogNode("audience_builder"))
}

func requiredCount(plan Plan) int {
	n := 0
	for _, se := range plan.SuggestedEdges {
		if se.Required {
			n++
		}
	}
	for _, ins := range plan.SuggestedInsertions {
		if ins.Required {
			n++
		}
	}
	return n
}

func TestRequiredSubsetConverges(t *testing.T) {
	p := New(nil, nil)
	g := mdf.Graph{Nodes: []mdf.Node{node("s", "crm_salesforce", "source")}}

	first := p.Generate(g, nil)
	require.NotZero(t, requiredCount(first), "the degenerate graph must need required repairs")

	t.Run("edges into optional insertions are never required", func(t *testing.T) {
		optional := map[string]bool{}
		for _, ins := range first.SuggestedInsertions {
			if !ins.Required {
				optional[ins.ID] = true
			}
		}
		for _, se := range first.SuggestedEdges {
			if optional[se.Source] || optional[se.Target] {
				assert.False(t, se.Required, "edge %s depends on an optional insertion", se.ID)
			}
		}
	})

	t.Run("applying the required subset reaches a fixed point", func(t *testing.T) {
		applied := p.Apply(g, SelectRequired(first))
		second := p.Generate(applied, nil)

		assert.Zero(t, requiredCount(second), "re-plan after a required-only apply must have no required suggestions")
		assert.Equal(t, applied, p.Apply(applied, SelectRequired(second)))
	})
}

func TestRailSuggestions(t *testing.T) {
	p := New(nil, nil)
	g := completePipeline()
	g.Nodes = append(g.Nodes,
		node("h", "mdf_hub", "identity"),
		node("c", "consent_manager", "governance-rail"),
	)
	g.Edges = append(g.Edges, mdf.Edge{ID: "e3", Source: "w", Target: "h"})

	plan := p.Generate(g, nil)

	var rail *SuggestedEdge
	for i := range plan.SuggestedEdges {
		if plan.SuggestedEdges[i].Source == "c" {
			rail = &plan.SuggestedEdges[i]
		}
	}
	require.NotNil(t, rail)
	assert.Equal(t, "h", rail.Target)
	assert.Equal(t, ConfidenceHigh, rail.Confidence)
	assert.True(t, rail.Selected)
}

type pessimist struct{}

func (pessimist) Score([]Candidate) Confidence { return ConfidenceLow }

func TestPluggableScorer(t *testing.T) {
	p := New(pessimist{}, nil)
	g := completePipeline()
	g.Edges = nil

	plan := p.Generate(g, nil)

	require.NotEmpty(t, plan.SuggestedEdges)
	for _, se := range plan.SuggestedEdges {
		assert.Equal(t, ConfidenceLow, se.Confidence)
		// Low confidence leaves only mandatory edges pre-selected.
		assert.Equal(t, se.Required, se.Selected)
	}
}
