package layout

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

func positions(nodes []mdf.Node) map[string]mdf.Position {
	out := make(map[string]mdf.Position, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n.Position
	}
	return out
}

func TestAutoLayoutColumns(t *testing.T) {
	e := New(nil)
	g := mdf.Graph{
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

	pos := positions(e.AutoLayout(g))

	t.Run("x follows stage order", func(t *testing.T) {
		assert.Less(t, pos["s"].X, pos["w"].X)
		assert.Less(t, pos["w"].X, pos["a"].X)
	})

	t.Run("column spacing is uniform", func(t *testing.T) {
		assert.InDelta(t, marginX, pos["s"].X, 0.01)
		assert.InDelta(t, marginX+4*colWidth, pos["w"].X, 0.01)
		assert.InDelta(t, marginX+8*colWidth, pos["a"].X, 0.01)
	})

	t.Run("single-row pipeline shares a y", func(t *testing.T) {
		assert.Equal(t, pos["s"].Y, pos["w"].Y)
		assert.Equal(t, pos["w"].Y, pos["a"].Y)
	})

	t.Run("repeat runs are byte-identical", func(t *testing.T) {
		assert.Equal(t, e.AutoLayout(g), e.AutoLayout(g))
	})
}

func TestGovernanceSharesTransformColumn(t *testing.T) {
	e := New(nil)
	g := mdf.Graph{
		Nodes: []mdf.Node{
			node("w", "snowflake_warehouse", "warehouse-storage"),
			node("t", "dbt_transform", "transform"),
			node("gov", "data_catalog", "governance"),
		},
		Edges: []mdf.Edge{
			{ID: "e1", Source: "w", Target: "t"},
			{ID: "e2", Source: "w", Target: "gov"},
		},
	}

	pos := positions(e.AutoLayout(g))
	assert.Equal(t, pos["t"].X, pos["gov"].X)
	assert.NotEqual(t, pos["t"].Y, pos["gov"].Y)
}

func TestHubCentered(t *testing.T) {
	e := New(nil)
	g := mdf.Graph{
		Nodes: []mdf.Node{
			node("s", "crm_salesforce", "source"),
			node("w", "snowflake_warehouse", "warehouse-storage"),
			node("h", "mdf_hub", "identity"),
			node("a", "audience_builder", "activation"),
		},
		Edges: []mdf.Edge{
			{ID: "e1", Source: "s", Target: "w"},
			{ID: "e2", Source: "w", Target: "h"},
			{ID: "e3", Source: "h", Target: "a"},
		},
	}

	pos := positions(e.AutoLayout(g))

	// Widest column is activation at index 8.
	want := marginX + 8*colWidth/2
	assert.InDelta(t, want, pos["h"].X, 0.01)
}

func TestRailBand(t *testing.T) {
	e := New(nil)
	g := mdf.Graph{
		Nodes: []mdf.Node{
			node("s", "crm_salesforce", "source"),
			node("w", "snowflake_warehouse", "warehouse-storage"),
			node("c", "consent_manager", "governance-rail"),
			node("v", "privacy_vault", "governance-rail"),
		},
		Edges: []mdf.Edge{{ID: "e1", Source: "s", Target: "w"}},
	}

	pos := positions(e.AutoLayout(g))

	t.Run("rails sit below every pipeline node", func(t *testing.T) {
		for _, id := range []string{"s", "w"} {
			assert.Greater(t, pos["c"].Y, pos[id].Y)
			assert.Greater(t, pos["v"].Y, pos[id].Y)
		}
	})

	t.Run("rails share the band and spread horizontally", func(t *testing.T) {
		assert.Equal(t, pos["c"].Y, pos["v"].Y)
		assert.NotEqual(t, pos["c"].X, pos["v"].X)
	})

	t.Run("rail count does not push the band down", func(t *testing.T) {
		// One pipeline row, so the band sits exactly one row plus the gap
		// below the margin no matter how many rails there are.
		crowded := g
		crowded.Nodes = append(append([]mdf.Node{}, g.Nodes...),
			node("l", "audit_log", "governance-rail"),
		)

		pos := positions(e.AutoLayout(crowded))
		want := marginY + rowHeight + railGap
		for _, id := range []string{"c", "v", "l"} {
			assert.InDelta(t, want, pos[id].Y, 0.01)
		}
	})
}

func TestCrossingReduction(t *testing.T) {
	e := New(nil)
	g := mdf.Graph{
		Nodes: []mdf.Node{
			node("s1", "crm_salesforce", "source"),
			node("s2", "web_app_events", "source"),
			node("w", "snowflake_warehouse", "warehouse-storage"),
		},
		Edges: []mdf.Edge{
			{ID: "e1", Source: "s1", Target: "w"},
			{ID: "e2", Source: "s2", Target: "w"},
		},
	}

	pos := positions(e.AutoLayout(g))

	assert.Equal(t, pos["s1"].X, pos["s2"].X)
	assert.NotEqual(t, pos["s1"].Y, pos["s2"].Y)
}

func TestDegenerateGraphs(t *testing.T) {
	e := New(nil)

	t.Run("edge-less graphs fall back to a grid", func(t *testing.T) {
		g := mdf.Graph{Nodes: []mdf.Node{
			node("a", "crm_salesforce", "source"),
			node("b", "web_app_events", "source"),
			node("c", "snowflake_warehouse", "warehouse-storage"),
		}}

		nodes := e.AutoLayout(g)
		require.Len(t, nodes, 3)
		assert.Equal(t, mdf.Position{X: marginX, Y: marginY}, nodes[0].Position)
		assert.Equal(t, mdf.Position{X: marginX + colWidth, Y: marginY}, nodes[1].Position)
		assert.Equal(t, mdf.Position{X: marginX + 2*colWidth, Y: marginY}, nodes[2].Position)
	})

	t.Run("single node", func(t *testing.T) {
		g := mdf.Graph{Nodes: []mdf.Node{node("a", "mdf_hub", "identity")}}
		nodes := e.AutoLayout(g)
		require.Len(t, nodes, 1)
		assert.Equal(t, mdf.Position{X: marginX, Y: marginY}, nodes[0].Position)
	})

	t.Run("empty graph", func(t *testing.T) {
		assert.Empty(t, e.AutoLayout(mdf.Graph{}))
	})
}

func TestIdentityPreserved(t *testing.T) {
	e := New(nil)
	g := mdf.Graph{
		Nodes: []mdf.Node{
			node("s", "crm_salesforce", "source"),
			node("w", "snowflake_warehouse", "warehouse-storage"),
		},
		Edges: []mdf.Edge{{ID: "e1", Source: "s", Target: "w"}},
	}
	g.Nodes[0].Position = mdf.Position{X: 999, Y: 999}

	out := e.AutoLayout(g)

	require.Len(t, out, 2)
	for i := range out {
		assert.Equal(t, g.Nodes[i].ID, out[i].ID)
		assert.Equal(t, g.Nodes[i].Data, out[i].Data)
	}

	// The input graph keeps its original positions.
	assert.Equal(t, mdf.Position{X: 999, Y: 999}, g.Nodes[0].Position)
}
