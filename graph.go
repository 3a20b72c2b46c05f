package mdf

// Graph is the interchange shape exchanged between the core pipeline, the
// canvas layer and the persistence store.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a placed instance of a catalog entry.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// NodeData carries the catalog binding and display metadata of a placed node.
type NodeData struct {
	CatalogID string `json:"catalogId"`
	Label     string `json:"label"`
	Category  string `json:"category"`
	Status    Status `json:"status,omitempty"`
}

// Position is a 2D canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a directed connection between two placed nodes.
// SourceHandle/TargetHandle name the ports the edge is attached to.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Status records why a placed node exists in the graph.
type Status string

const (
	StatusExisting    Status = "existing"
	StatusRequired    Status = "required"
	StatusRecommended Status = "recommended"
	StatusGap         Status = "gap"
	StatusOptional    Status = "optional"
)

// DefaultNodeType is the render type assigned to nodes the core creates.
const DefaultNodeType = "mdfNode"

// NodeByID returns the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// HasCatalogNode reports whether any placed node references catalogID.
func (g *Graph) HasCatalogNode(catalogID string) bool {
	for _, n := range g.Nodes {
		if n.Data.CatalogID == catalogID {
			return true
		}
	}
	return false
}

// NodesByCategory returns all nodes in the given category, in graph order.
func (g *Graph) NodesByCategory(category string) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Data.Category == category {
			out = append(out, n)
		}
	}
	return out
}

// HasEdgeBetween reports whether a directed edge source→target exists.
func (g *Graph) HasEdgeBetween(source, target string) bool {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			return true
		}
	}
	return false
}

// Stats summarizes a graph for API responses.
type Stats struct {
	TotalNodes      int            `json:"total_nodes"`
	TotalEdges      int            `json:"total_edges"`
	NodesByCategory map[string]int `json:"nodes_by_category,omitempty"`
}

// Summarize computes node/edge counts for a graph.
func Summarize(g Graph) Stats {
	s := Stats{TotalNodes: len(g.Nodes), TotalEdges: len(g.Edges)}
	if len(g.Nodes) > 0 {
		s.NodesByCategory = make(map[string]int)
		for _, n := range g.Nodes {
			s.NodesByCategory[n.Data.Category]++
		}
	}
	return s
}
