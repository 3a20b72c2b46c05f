package mdf

import "log/slog"

// Sanitize returns a copy of g with duplicate node ids and dangling edges
// removed. The first node wins on a duplicate id. Edges referencing a node id
// not present in the result are dropped. Each drop is logged at Warn; the
// graph itself is never rejected.
func Sanitize(g Graph) Graph {
	return SanitizeWith(g, slog.Default())
}

// SanitizeWith is Sanitize with an explicit logger.
func SanitizeWith(g Graph, log *slog.Logger) Graph {
	out := Graph{Nodes: []Node{}, Edges: []Edge{}}

	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if seen[n.ID] {
			log.Warn("dropping duplicate node id", "node", n.ID, "catalog", n.Data.CatalogID)
			continue
		}
		seen[n.ID] = true
		out.Nodes = append(out.Nodes, n)
	}

	for _, e := range g.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			log.Warn("dropping dangling edge", "edge", e.ID, "source", e.Source, "target", e.Target)
			continue
		}
		out.Edges = append(out.Edges, e)
	}

	return out
}
