// Package layout assigns canvas coordinates: nodes are partitioned into
// stage-ordered columns, ordered within each column to reduce edge
// crossings, and special roles are pinned to fixed bands. Layout failure is
// never fatal; positions fall back to whatever the input carried.
package layout

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	mdf "github.com/froncalli-softcrylic/MDF-Simulator-sub000"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/catalog"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/rules"
)

const (
	marginX   = 80.0
	marginY   = 80.0
	colWidth  = 260.0
	rowHeight = 130.0
	railGap   = 160.0
	sweeps    = 3
)

// Engine computes semantic auto-layouts.
type Engine struct {
	log *slog.Logger
}

// New returns an Engine logging through log, or slog.Default() when nil.
func New(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log}
}

// AutoLayout returns g's nodes with new positions. Node identities and
// order are preserved; only positions change. Graphs with fewer than two
// nodes or no edges short-circuit to a grid; any internal failure returns
// the input positions unchanged.
func (e *Engine) AutoLayout(g mdf.Graph) (nodes []mdf.Node) {
	nodes = append([]mdf.Node{}, g.Nodes...)

	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("layout failed, keeping input positions", "panic", r)
			nodes = append([]mdf.Node{}, g.Nodes...)
		}
	}()

	if len(g.Nodes) < 2 || len(g.Edges) == 0 {
		return gridPlacement(nodes)
	}

	cols := columnAssignments(nodes)
	ranks := e.orderWithinColumns(g, cols)

	maxCol := 0
	for _, c := range cols {
		if c > maxCol {
			maxCol = c
		}
	}
	// Rails rank within their own group and must not inflate the pipeline
	// height that positions their band.
	maxRows := 0
	for _, n := range nodes {
		if catalog.Category(n.Data.Category).IsRail() {
			continue
		}
		if r := ranks[n.ID]; r+1 > maxRows {
			maxRows = r + 1
		}
	}

	railX := marginX
	for i := range nodes {
		n := &nodes[i]
		cat := catalog.Category(n.Data.Category)

		if cat.IsRail() {
			// Rails live in a fixed band below the pipeline.
			n.Position = mdf.Position{
				X: railX,
				Y: marginY + float64(maxRows)*rowHeight + railGap,
			}
			railX += colWidth
			continue
		}

		n.Position = mdf.Position{
			X: marginX + float64(cols[n.ID])*colWidth,
			Y: marginY + float64(ranks[n.ID])*rowHeight,
		}

		// The hub is always centered across the full diagram width.
		if cn, ok := catalog.Get(n.Data.CatalogID); ok && cn.Role == catalog.RoleMDFHub {
			n.Position.X = marginX + float64(maxCol)*colWidth/2
		}
	}
	return nodes
}

// columnAssignments maps node id → column index by category stage order.
// Governance stage nodes share the transform column; rails get -1 and are
// positioned separately.
func columnAssignments(nodes []mdf.Node) map[string]int {
	cols := make(map[string]int, len(nodes))
	for _, n := range nodes {
		cat := catalog.Category(n.Data.Category)
		switch {
		case cat.IsRail():
			cols[n.ID] = -1
		case cat == catalog.CategoryGovernance:
			cols[n.ID] = rules.StageIndex(catalog.CategoryTransform)
		default:
			idx := rules.StageIndex(cat)
			if idx < 0 {
				idx = 0
			}
			cols[n.ID] = idx
		}
	}
	return cols
}

// orderWithinColumns computes each node's row inside its column. A gonum
// directed graph provides a cycle-tolerant topological seed order; repeated
// barycenter sweeps then pull connected nodes toward each other to reduce
// edge crossings.
func (e *Engine) orderWithinColumns(g mdf.Graph, cols map[string]int) map[string]int {
	idx := make(map[string]int64, len(g.Nodes))
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = int64(i)
		ids[i] = n.ID
	}

	dg := simple.NewDirectedGraph()
	for i := range g.Nodes {
		dg.AddNode(simple.Node(int64(i)))
	}
	for _, edge := range g.Edges {
		from, okF := idx[edge.Source]
		to, okT := idx[edge.Target]
		if !okF || !okT || from == to {
			continue
		}
		if dg.HasEdgeFromTo(from, to) {
			continue
		}
		dg.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	// Seed order: topological where possible, stabilized so ties break by
	// node id rather than map order. Cyclic graphs keep input order for
	// the nodes gonum cannot sort.
	seed := make(map[string]int, len(g.Nodes))
	sorted, err := topo.SortStabilized(dg, nil)
	if err != nil {
		e.log.Warn("graph not fully orderable, using partial order", "err", err)
	}
	pos := 0
	placed := make(map[int64]bool)
	for _, gn := range sorted {
		if gn == nil {
			continue
		}
		seed[ids[gn.ID()]] = pos
		placed[gn.ID()] = true
		pos++
	}
	for i, id := range ids {
		if !placed[int64(i)] {
			seed[id] = pos
			pos++
		}
	}

	// Group per column, ordered by seed.
	byCol := make(map[int][]string)
	for _, id := range ids {
		byCol[cols[id]] = append(byCol[cols[id]], id)
	}
	ranks := make(map[string]int, len(ids))
	for _, group := range byCol {
		sortByKey(group, func(id string) float64 { return float64(seed[id]) })
		for r, id := range group {
			ranks[id] = r
		}
	}

	neighbors := adjacency(g)
	colIndexes := make([]int, 0, len(byCol))
	for c := range byCol {
		colIndexes = append(colIndexes, c)
	}
	sort.Ints(colIndexes)

	for s := 0; s < sweeps; s++ {
		for _, c := range colIndexes {
			group := byCol[c]
			sortByKey(group, func(id string) float64 { return barycenter(id, neighbors, ranks) })
			for r, id := range group {
				ranks[id] = r
			}
		}
	}
	return ranks
}

// barycenter is the mean rank of a node's neighbors, falling back to the
// node's own rank when it has none.
func barycenter(id string, neighbors map[string][]string, ranks map[string]int) float64 {
	ns := neighbors[id]
	if len(ns) == 0 {
		return float64(ranks[id])
	}
	sum := 0.0
	for _, n := range ns {
		sum += float64(ranks[n])
	}
	return sum / float64(len(ns))
}

func adjacency(g mdf.Graph) map[string][]string {
	out := make(map[string][]string)
	for _, e := range g.Edges {
		out[e.Source] = append(out[e.Source], e.Target)
		out[e.Target] = append(out[e.Target], e.Source)
	}
	return out
}

// sortByKey stable-sorts ids by a float key, keeping current order on ties.
func sortByKey(ids []string, key func(string) float64) {
	sort.SliceStable(ids, func(i, j int) bool { return key(ids[i]) < key(ids[j]) })
}

// gridPlacement lays degenerate graphs out in a simple grid, four nodes to
// a row.
func gridPlacement(nodes []mdf.Node) []mdf.Node {
	for i := range nodes {
		nodes[i].Position = mdf.Position{
			X: marginX + float64(i%4)*colWidth,
			Y: marginY + float64(i/4)*rowHeight,
		}
	}
	return nodes
}
