// Package builder constructs graphs from profiles, wizard answers and
// templates, and normalizes user-edited graphs against the catalog.
// Construction is best-effort: unknown catalog references are skipped and
// logged, never fatal.
package builder

import (
	"fmt"
	"log/slog"
	"sort"

	mdf "github.com/froncalli-softcrylic/MDF-Simulator-sub000"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/catalog"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/profile"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/rules"
)

// Builder assembles and normalizes graphs. The zero value is not usable;
// call New.
type Builder struct {
	log *slog.Logger
}

// New returns a Builder logging through log, or slog.Default() when nil.
func New(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{log: log}
}

// Conflict reports two placed nodes competing for one singleton role.
// Neither node is removed; the caller prompts for replace-or-keep-both.
type Conflict struct {
	Role    catalog.Role `json:"role"`
	KeptID  string       `json:"kept_id"`
	OtherID string       `json:"other_id"`
}

// NodeID returns the deterministic instance id the builder assigns to a
// generated node. User-added nodes get UUIDs instead; generated diagrams
// place at most one instance per catalog entry, so the catalog id is
// sufficient and keeps rebuilds reproducible.
func NodeID(catalogID string) string {
	return "n-" + catalogID
}

// EdgeID returns the deterministic id for a generated edge.
func EdgeID(source, target string) string {
	return fmt.Sprintf("e-%s-%s", source, target)
}

// Instantiate places a catalog entry as a graph node. The category is
// denormalized from the catalog at placement time.
func Instantiate(cn catalog.Node, status mdf.Status) mdf.Node {
	return mdf.Node{
		ID:   NodeID(cn.ID),
		Type: mdf.DefaultNodeType,
		Data: mdf.NodeData{
			CatalogID: cn.ID,
			Label:     cn.Name,
			Category:  string(cn.Category),
			Status:    status,
		},
	}
}

// FromProfile builds the canonical graph for a profile definition. Unknown
// catalog ids in the definition are skipped with a warning.
func (b *Builder) FromProfile(def profile.Definition) mdf.Graph {
	g := mdf.Graph{Nodes: []mdf.Node{}, Edges: []mdf.Edge{}}

	add := func(catalogID string, status mdf.Status) {
		cn, ok := catalog.Get(catalogID)
		if !ok {
			b.log.Warn("profile references unknown catalog id", "profile", def.ID, "catalog", catalogID)
			return
		}
		if g.HasCatalogNode(catalogID) {
			return
		}
		g.Nodes = append(g.Nodes, Instantiate(cn, status))
	}

	for _, id := range def.NodeIDs {
		add(id, mdf.StatusRequired)
	}
	for _, id := range def.RailNodeIDs {
		add(id, mdf.StatusRequired)
	}

	for _, ce := range def.Edges {
		src, dst := NodeID(ce.Source), NodeID(ce.Target)
		if g.NodeByID(src) == nil || g.NodeByID(dst) == nil {
			b.log.Warn("profile edge references missing node", "profile", def.ID, "source", ce.Source, "target", ce.Target)
			continue
		}
		g.Edges = append(g.Edges, mdf.Edge{
			ID:           EdgeID(src, dst),
			Source:       src,
			Target:       dst,
			SourceHandle: ce.SourcePort,
			TargetHandle: ce.TargetPort,
		})
	}

	// Profiles without an explicit edge list still get a connected diagram.
	if len(def.Edges) == 0 {
		g.Edges = b.synthesizeEdges(g)
	}

	return b.Normalize(g, &def)
}

// FromWizard builds a graph from questionnaire answers: existing tools keep
// status existing, goal requirements become required, pain-point remedies
// recommended. Singleton collisions between two user-selected tools are
// kept and returned as conflicts.
func (b *Builder) FromWizard(w profile.WizardData, profileID string) (mdf.Graph, []Conflict) {
	g := mdf.Graph{Nodes: []mdf.Node{}, Edges: []mdf.Edge{}}

	add := func(catalogID string, status mdf.Status) {
		cn, ok := catalog.Get(catalogID)
		if !ok {
			return
		}
		if existing := findByCatalog(&g, catalogID); existing != nil {
			// Keep the stronger status on a repeat selection.
			if statusRank(status) > statusRank(existing.Data.Status) {
				existing.Data.Status = status
			}
			return
		}
		g.Nodes = append(g.Nodes, Instantiate(cn, status))
	}

	for _, t := range w.Tools {
		if id, ok := profile.ToolNode(t, b.log); ok {
			add(id, mdf.StatusExisting)
		}
	}
	if id, ok := profile.WarehouseForCloud(w.CloudProvider); ok {
		add(id, mdf.StatusRequired)
	}
	for _, id := range w.GoalNodes(b.log) {
		add(id, mdf.StatusRequired)
	}
	for _, p := range w.PainPoints {
		if id, ok := profile.PainPointNode(p, b.log); ok {
			add(id, mdf.StatusRecommended)
		}
	}

	// Every wizard diagram gets the hub; the rest of the stack hangs off it.
	add("mdf_hub", mdf.StatusRequired)

	g, conflicts := b.dedupeSingletons(g)
	g.Edges = b.synthesizeEdges(g)

	def, ok := profile.Get(profileID)
	if !ok {
		if profileID != "" {
			b.log.Warn("wizard build with unknown profile", "profile", profileID)
		}
		return b.Normalize(g, nil), conflicts
	}
	return b.Normalize(g, &def), conflicts
}

// FromTemplate builds a graph from a raw node/edge template, refreshing
// categories and labels from the catalog and dropping unknown references.
func (b *Builder) FromTemplate(nodes []mdf.Node, edges []mdf.Edge) mdf.Graph {
	return b.Normalize(mdf.Graph{Nodes: nodes, Edges: edges}, nil)
}

// Normalize returns a structurally valid copy of g: unknown catalog ids
// dropped, categories re-denormalized from the catalog, duplicate ids and
// dangling edges removed, and singleton roles deduplicated where one
// instance clearly outranks the other. When a profile definition is given,
// status-less nodes in the profile's canonical set are marked required.
// Normalize is idempotent.
func (b *Builder) Normalize(g mdf.Graph, def *profile.Definition) mdf.Graph {
	out := mdf.Graph{Nodes: []mdf.Node{}, Edges: g.Edges}

	for _, n := range g.Nodes {
		cn, ok := catalog.Get(n.Data.CatalogID)
		if !ok {
			b.log.Warn("dropping node with unknown catalog id", "node", n.ID, "catalog", n.Data.CatalogID)
			continue
		}
		n.Data.Category = string(cn.Category)
		if n.Data.Label == "" {
			n.Data.Label = cn.Name
		}
		if n.Type == "" {
			n.Type = mdf.DefaultNodeType
		}
		if n.Data.Status == "" && def != nil && def.Contains(n.Data.CatalogID) {
			// A canonical component with no recorded provenance is part of
			// the blueprint, not an optional extra.
			n.Data.Status = mdf.StatusRequired
		}
		out.Nodes = append(out.Nodes, n)
	}

	out = mdf.SanitizeWith(out, b.log)
	out, _ = b.dedupeSingletons(out)
	return mdf.SanitizeWith(out, b.log)
}

// Conflicts reports singleton roles held by two or more nodes of equal
// provenance rank, which Normalize deliberately leaves in place.
func (b *Builder) Conflicts(g mdf.Graph) []Conflict {
	_, conflicts := b.dedupeSingletons(g)
	return conflicts
}

// dedupeSingletons enforces at-most-one instance per singleton role. When
// one instance outranks the other (required beats recommended, user
// selections beat both) the loser is dropped. Equal-rank pairs are both
// kept and reported as conflicts for user resolution.
func (b *Builder) dedupeSingletons(g mdf.Graph) (mdf.Graph, []Conflict) {
	byRole := make(map[catalog.Role][]mdf.Node)
	for _, n := range g.Nodes {
		cn, ok := catalog.Get(n.Data.CatalogID)
		if !ok || cn.Role == "" {
			continue
		}
		byRole[cn.Role] = append(byRole[cn.Role], n)
	}

	drop := make(map[string]bool)
	var conflicts []Conflict
	for _, role := range catalog.SingletonRoles() {
		group := byRole[role]
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			ri, rj := statusRank(group[i].Data.Status), statusRank(group[j].Data.Status)
			if ri != rj {
				return ri > rj
			}
			return group[i].ID < group[j].ID
		})
		winner := group[0]
		for _, loser := range group[1:] {
			if statusRank(loser.Data.Status) == statusRank(winner.Data.Status) {
				conflicts = append(conflicts, Conflict{Role: role, KeptID: winner.ID, OtherID: loser.ID})
				continue
			}
			b.log.Warn("dropping lower-priority singleton instance",
				"role", string(role), "kept", winner.ID, "dropped", loser.ID)
			drop[loser.ID] = true
		}
	}

	if len(drop) == 0 {
		return g, conflicts
	}
	kept := mdf.Graph{Nodes: []mdf.Node{}, Edges: g.Edges}
	for _, n := range g.Nodes {
		if !drop[n.ID] {
			kept.Nodes = append(kept.Nodes, n)
		}
	}
	return mdf.SanitizeWith(kept, b.log), conflicts
}

// synthesizeEdges connects nodes along the canonical forward path when no
// explicit edge list exists: each node feeds the nearest downstream stage
// with a legal, port-compatible target. Rails attach to the hub. Candidate
// targets tie-break on lowest catalog id, then node id.
func (b *Builder) synthesizeEdges(g mdf.Graph) []mdf.Edge {
	edges := []mdf.Edge{}
	have := make(map[string]bool)
	addEdge := func(src, dst mdf.Node) {
		key := src.ID + "→" + dst.ID
		if have[key] || src.ID == dst.ID {
			return
		}
		have[key] = true
		edges = append(edges, mdf.Edge{ID: EdgeID(src.ID, dst.ID), Source: src.ID, Target: dst.ID})
	}

	hub := findByCatalog(&g, "mdf_hub")

	for _, n := range g.Nodes {
		cat := catalog.Category(n.Data.Category)
		if cat.IsRail() {
			if hub != nil {
				addEdge(n, *hub)
			}
			continue
		}
		if cat == catalog.CategoryIdentity && hub != nil && n.Data.CatalogID != "mdf_hub" {
			// Identity components feed the hub rather than skipping past it.
			addEdge(n, *hub)
			continue
		}
		if cat == catalog.CategoryGovernance {
			// Governance stage nodes read from the warehouse when present.
			if wh := firstInCategory(g, catalog.CategoryWarehouse); wh != nil {
				addEdge(*wh, n)
			}
			continue
		}
		if target := b.nearestDownstream(g, n); target != nil {
			addEdge(n, *target)
		}
	}
	return edges
}

// nearestDownstream finds the closest forward-path stage after n's stage
// that contains a legal target for n.
func (b *Builder) nearestDownstream(g mdf.Graph, n mdf.Node) *mdf.Node {
	srcCat := catalog.Category(n.Data.Category)
	idx := rules.StageIndex(srcCat)
	if idx < 0 {
		return nil
	}
	path := rules.ForwardPath()
	for _, stage := range path[idx+1:] {
		candidates := candidatesIn(g, stage)
		for _, c := range candidates {
			if c.ID == n.ID {
				continue
			}
			v := rules.Check(srcCat, stage, outPort(n), inPort(*c))
			if v.Allowed {
				return c
			}
		}
	}
	return nil
}

// candidatesIn returns pointers to g's nodes in a stage, ordered by catalog
// id then node id for deterministic selection.
func candidatesIn(g mdf.Graph, stage catalog.Category) []*mdf.Node {
	var out []*mdf.Node
	for i := range g.Nodes {
		if g.Nodes[i].Data.Category == string(stage) {
			out = append(out, &g.Nodes[i])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Data.CatalogID != out[j].Data.CatalogID {
			return out[i].Data.CatalogID < out[j].Data.CatalogID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func firstInCategory(g mdf.Graph, stage catalog.Category) *mdf.Node {
	c := candidatesIn(g, stage)
	if len(c) == 0 {
		return nil
	}
	return c[0]
}

func findByCatalog(g *mdf.Graph, catalogID string) *mdf.Node {
	for i := range g.Nodes {
		if g.Nodes[i].Data.CatalogID == catalogID {
			return &g.Nodes[i]
		}
	}
	return nil
}

// outPort returns the type of a node's first declared output.
func outPort(n mdf.Node) catalog.PortType {
	cn, ok := catalog.Get(n.Data.CatalogID)
	if !ok || len(cn.Outputs) == 0 {
		return ""
	}
	return cn.Outputs[0].Type
}

// inPort returns the type of a node's first declared input.
func inPort(n mdf.Node) catalog.PortType {
	cn, ok := catalog.Get(n.Data.CatalogID)
	if !ok || len(cn.Inputs) == 0 {
		return ""
	}
	return cn.Inputs[0].Type
}

// statusRank orders provenance for singleton resolution: direct user
// selections beat wizard requirements, which beat recommendations.
func statusRank(s mdf.Status) int {
	switch s {
	case mdf.StatusExisting:
		return 4
	case mdf.StatusRequired:
		return 3
	case mdf.StatusRecommended:
		return 2
	case mdf.StatusGap:
		return 1
	default:
		return 0
	}
}
