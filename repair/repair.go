// Package repair proposes the nodes and edges that would bring a graph
// into conformance: missing pipeline stages and missing canonical
// connections, ranked by confidence. Plans are never applied automatically;
// the caller toggles Selected flags and applies the chosen subset.
package repair

import (
	"fmt"
	"log/slog"
	"sort"

	mdf "github.com/froncalli-softcrylic/MDF-Simulator-sub000"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/builder"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/catalog"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/profile"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/rules"
)

// Confidence ranks how certain the planner is about a suggested edge.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// SuggestedEdge is one proposed connection.
type SuggestedEdge struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	SourcePort string     `json:"sourcePort,omitempty"`
	TargetPort string     `json:"targetPort,omitempty"`
	Confidence Confidence `json:"confidence"`
	Required   bool       `json:"required"`
	Selected   bool       `json:"selected"`
	Reason     string     `json:"reason"`
}

// SuggestedInsertion is one proposed node addition.
type SuggestedInsertion struct {
	ID        string `json:"id"`
	CatalogID string `json:"catalogId"`
	Required  bool   `json:"required"`
	Selected  bool   `json:"selected"`
	Reason    string `json:"reason"`
}

// MissingNode names an unfilled pipeline stage.
type MissingNode struct {
	Stage string `json:"stage"`
}

// Plan is the full set of proposed repairs for one graph.
type Plan struct {
	SuggestedEdges      []SuggestedEdge      `json:"suggestedEdges"`
	SuggestedInsertions []SuggestedInsertion `json:"suggestedInsertions"`
	MissingNodes        []MissingNode        `json:"missingNodes"`
	TotalSuggestions    int                  `json:"totalSuggestions"`
}

// Candidate is one plausible (source, target) pair for a missing
// connection. Canonical marks pairs the active profile declares.
type Candidate struct {
	Source    mdf.Node
	Target    mdf.Node
	Canonical bool
}

// Scorer turns a candidate set into a confidence ranking. Pluggable so
// alternative strategies can replace the default count heuristic.
type Scorer interface {
	Score(candidates []Candidate) Confidence
}

// CountScorer is the default heuristic: a single plausible pair is high
// confidence, several pairs with exactly one canonical are medium,
// anything else is low.
type CountScorer struct{}

func (CountScorer) Score(candidates []Candidate) Confidence {
	switch {
	case len(candidates) == 1:
		return ConfidenceHigh
	case countCanonical(candidates) == 1:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func countCanonical(candidates []Candidate) int {
	n := 0
	for _, c := range candidates {
		if c.Canonical {
			n++
		}
	}
	return n
}

// Planner generates repair plans.
type Planner struct {
	builder *builder.Builder
	scorer  Scorer
	log     *slog.Logger
}

// New returns a Planner. A nil scorer falls back to CountScorer; a nil
// logger to slog.Default().
func New(scorer Scorer, log *slog.Logger) *Planner {
	if scorer == nil {
		scorer = CountScorer{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Planner{builder: builder.New(log), scorer: scorer, log: log}
}

// coreStages is the minimum viable pipeline when no profile is active.
var coreStages = []catalog.Category{
	catalog.CategorySource,
	catalog.CategoryWarehouse,
	catalog.CategoryActivation,
}

// Generate produces the repair plan for g. def may be nil; required stages
// then default to the minimal source → warehouse → activation pipeline.
func (p *Planner) Generate(g mdf.Graph, def *profile.Definition) Plan {
	g = mdf.SanitizeWith(g, p.log)
	plan := Plan{
		SuggestedEdges:      []SuggestedEdge{},
		SuggestedInsertions: []SuggestedInsertion{},
		MissingNodes:        []MissingNode{},
	}

	required := requiredStages(def)
	profileID := ""
	if def != nil {
		profileID = def.ID
	}

	// 1. Unfilled stages → insertions, each with the stage's preferred node.
	virtual := g
	virtual.Nodes = append([]mdf.Node{}, g.Nodes...)
	virtual.Edges = append([]mdf.Edge{}, g.Edges...)
	virtualReq := make(map[string]bool)
	for _, stage := range required {
		if len(g.NodesByCategory(string(stage))) > 0 {
			continue
		}
		preferred, ok := catalog.PreferredForStage(stage, profileID)
		if !ok {
			p.log.Warn("no catalog entry available for missing stage", "stage", string(stage))
			continue
		}
		plan.MissingNodes = append(plan.MissingNodes, MissingNode{Stage: string(stage)})
		req := preferred.Role != ""
		plan.SuggestedInsertions = append(plan.SuggestedInsertions, SuggestedInsertion{
			ID:        builder.NodeID(preferred.ID),
			CatalogID: preferred.ID,
			Required:  req,
			Selected:  true,
			Reason:    fmt.Sprintf("the %s stage has no component; %s is the preferred fit", stage, preferred.Name),
		})
		// Plan edges against the graph as it would look after insertion,
		// so one apply pass yields a connected result.
		virtual.Nodes = append(virtual.Nodes, builder.Instantiate(preferred, mdf.StatusGap))
		virtualReq[builder.NodeID(preferred.ID)] = req
	}

	// 2. Missing connections along the canonical forward path.
	plan.SuggestedEdges = append(plan.SuggestedEdges, p.forwardPathEdges(virtual, required, virtualReq, def)...)

	// 3. Disconnected rail nodes attach to the hub.
	plan.SuggestedEdges = append(plan.SuggestedEdges, p.railEdges(virtual)...)

	plan.TotalSuggestions = len(plan.SuggestedEdges) + len(plan.SuggestedInsertions)
	return plan
}

// forwardPathEdges proposes one edge per consecutive pair of occupied
// forward-path stages that has no connection between the two stages at all.
func (p *Planner) forwardPathEdges(g mdf.Graph, required []catalog.Category, virtualReq map[string]bool, def *profile.Definition) []SuggestedEdge {
	path := rules.ForwardPath()

	// Occupied stages, in path order.
	var present []catalog.Category
	for _, stage := range path {
		if len(g.NodesByCategory(string(stage))) > 0 {
			present = append(present, stage)
		}
	}

	requiredSet := make(map[catalog.Category]bool, len(required))
	for _, s := range required {
		requiredSet[s] = true
	}

	var out []SuggestedEdge
	for i := 0; i+1 < len(present); i++ {
		a, b := present[i], present[i+1]
		if stagesConnected(g, a, b) {
			continue
		}
		candidates := p.legalPairs(g, a, b, def)
		if len(candidates) == 0 {
			continue
		}
		pick := pickCandidate(candidates)
		confidence := p.scorer.Score(candidates)

		// The connection is mandatory when the downstream stage is declared
		// and currently unreachable. An edge touching a node that only
		// exists as a pending insertion inherits that insertion's required
		// flag: a required edge must survive a required-only apply.
		req := requiredSet[b] && !hasIncoming(g, b)
		if r, virtual := virtualReq[pick.Source.ID]; virtual && !r {
			req = false
		}
		if r, virtual := virtualReq[pick.Target.ID]; virtual && !r {
			req = false
		}

		out = append(out, SuggestedEdge{
			ID:         builder.EdgeID(pick.Source.ID, pick.Target.ID),
			Source:     pick.Source.ID,
			Target:     pick.Target.ID,
			Confidence: confidence,
			Required:   req,
			Selected:   req || confidence == ConfidenceHigh,
			Reason:     fmt.Sprintf("%s and %s stages are present but not connected", a, b),
		})
	}
	return out
}

// railEdges attaches edge-less rail nodes to the hub.
func (p *Planner) railEdges(g mdf.Graph) []SuggestedEdge {
	var hub *mdf.Node
	for i := range g.Nodes {
		if g.Nodes[i].Data.CatalogID == "mdf_hub" {
			hub = &g.Nodes[i]
			break
		}
	}
	if hub == nil {
		return nil
	}

	degree := make(map[string]int)
	for _, e := range g.Edges {
		degree[e.Source]++
		degree[e.Target]++
	}

	var out []SuggestedEdge
	for _, n := range sortedNodes(g) {
		if !catalog.Category(n.Data.Category).IsRail() || degree[n.ID] > 0 {
			continue
		}
		out = append(out, SuggestedEdge{
			ID:         builder.EdgeID(n.ID, hub.ID),
			Source:     n.ID,
			Target:     hub.ID,
			Confidence: ConfidenceHigh,
			Selected:   true,
			Reason:     fmt.Sprintf("%s is a cross-cutting rail and should annotate the hub", n.Data.Label),
		})
	}
	return out
}

// legalPairs enumerates every rule-legal (source, target) pair between two
// stages, ordered by catalog id then node id so selection is deterministic.
func (p *Planner) legalPairs(g mdf.Graph, a, b catalog.Category, def *profile.Definition) []Candidate {
	var out []Candidate
	for _, src := range sortedCategoryNodes(g, a) {
		for _, dst := range sortedCategoryNodes(g, b) {
			v := rules.Check(a, b, firstPort(src, false), firstPort(dst, true))
			if !v.Allowed {
				continue
			}
			out = append(out, Candidate{
				Source:    src,
				Target:    dst,
				Canonical: isCanonicalPair(def, src, dst),
			})
		}
	}
	return out
}

// pickCandidate chooses the pair to suggest: canonical pairs first, then
// lowest source catalog id, target catalog id, and node ids. Deterministic
// by construction rather than by iteration order.
func pickCandidate(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if candidateLess(c, best) {
			best = c
		}
	}
	return best
}

func candidateLess(a, b Candidate) bool {
	if a.Canonical != b.Canonical {
		return a.Canonical
	}
	if a.Source.Data.CatalogID != b.Source.Data.CatalogID {
		return a.Source.Data.CatalogID < b.Source.Data.CatalogID
	}
	if a.Target.Data.CatalogID != b.Target.Data.CatalogID {
		return a.Target.Data.CatalogID < b.Target.Data.CatalogID
	}
	if a.Source.ID != b.Source.ID {
		return a.Source.ID < b.Source.ID
	}
	return a.Target.ID < b.Target.ID
}

// Apply adds the selected suggestions to g as ordinary graph mutations and
// re-normalizes, so plan application obeys the same invariants as any
// other build.
func (p *Planner) Apply(g mdf.Graph, plan Plan) mdf.Graph {
	out := mdf.Graph{
		Nodes: append([]mdf.Node{}, g.Nodes...),
		Edges: append([]mdf.Edge{}, g.Edges...),
	}
	for _, ins := range plan.SuggestedInsertions {
		if !ins.Selected {
			continue
		}
		cn, ok := catalog.Get(ins.CatalogID)
		if !ok {
			p.log.Warn("insertion references unknown catalog id", "catalog", ins.CatalogID)
			continue
		}
		if out.HasCatalogNode(ins.CatalogID) {
			continue
		}
		out.Nodes = append(out.Nodes, builder.Instantiate(cn, mdf.StatusGap))
	}
	for _, se := range plan.SuggestedEdges {
		if !se.Selected || out.HasEdgeBetween(se.Source, se.Target) {
			continue
		}
		out.Edges = append(out.Edges, mdf.Edge{
			ID:           se.ID,
			Source:       se.Source,
			Target:       se.Target,
			SourceHandle: se.SourcePort,
			TargetHandle: se.TargetPort,
		})
	}
	return p.builder.Normalize(out, nil)
}

// SelectRequired returns a copy of plan with only the required entries
// selected.
func SelectRequired(plan Plan) Plan {
	for i := range plan.SuggestedEdges {
		plan.SuggestedEdges[i].Selected = plan.SuggestedEdges[i].Required
	}
	for i := range plan.SuggestedInsertions {
		plan.SuggestedInsertions[i].Selected = plan.SuggestedInsertions[i].Required
	}
	return plan
}

func requiredStages(def *profile.Definition) []catalog.Category {
	if def == nil {
		return coreStages
	}
	seen := make(map[catalog.Category]bool)
	for _, id := range def.NodeIDs {
		if cn, ok := catalog.Get(id); ok {
			seen[cn.Category] = true
		}
	}
	var out []catalog.Category
	for _, stage := range rules.ForwardPath() {
		if seen[stage] {
			out = append(out, stage)
		}
	}
	return out
}

func stagesConnected(g mdf.Graph, a, b catalog.Category) bool {
	inStage := func(id string, stage catalog.Category) bool {
		n := g.NodeByID(id)
		return n != nil && n.Data.Category == string(stage)
	}
	for _, e := range g.Edges {
		if inStage(e.Source, a) && inStage(e.Target, b) {
			return true
		}
	}
	return false
}

func hasIncoming(g mdf.Graph, stage catalog.Category) bool {
	for _, e := range g.Edges {
		if n := g.NodeByID(e.Target); n != nil && n.Data.Category == string(stage) {
			return true
		}
	}
	return false
}

func sortedNodes(g mdf.Graph) []mdf.Node {
	out := append([]mdf.Node{}, g.Nodes...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedCategoryNodes(g mdf.Graph, stage catalog.Category) []mdf.Node {
	var out []mdf.Node
	for _, n := range g.Nodes {
		if n.Data.Category == string(stage) {
			out = append(out, n)
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

func firstPort(n mdf.Node, input bool) catalog.PortType {
	cn, ok := catalog.Get(n.Data.CatalogID)
	if !ok {
		return ""
	}
	ports := cn.Outputs
	if input {
		ports = cn.Inputs
	}
	if len(ports) == 0 {
		return ""
	}
	return ports[0].Type
}

func isCanonicalPair(def *profile.Definition, src, dst mdf.Node) bool {
	if def == nil {
		return false
	}
	for _, ce := range def.Edges {
		if ce.Source == src.Data.CatalogID && ce.Target == dst.Data.CatalogID {
			return true
		}
	}
	return false
}
