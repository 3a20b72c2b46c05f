// Package validate inspects a graph and produces categorized findings.
// Validation is pure: it never mutates the graph and the same inputs always
// yield the same findings. Rule violations are data, not errors.
package validate

import (
	"fmt"

	mdf "github.com/froncalli-softcrylic/MDF-Simulator-sub000"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/catalog"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/profile"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/rules"
)

// Severity classifies a finding.
type Severity string

const (
	SeverityError          Severity = "error"
	SeverityWarning        Severity = "warning"
	SeverityRecommendation Severity = "recommendation"
)

// Remedy suggests a catalog node whose addition would resolve a finding.
type Remedy struct {
	NodeToAdd string `json:"nodeToAdd,omitempty"`
}

// Finding is one validation result.
type Finding struct {
	ID             string  `json:"id"`
	Message        string  `json:"message"`
	Rule           string  `json:"ruleViolated,omitempty"`
	NodeID         string  `json:"node_id,omitempty"`
	EdgeID         string  `json:"edge_id,omitempty"`
	Recommendation *Remedy `json:"recommendation,omitempty"`
}

// Result groups findings by severity.
type Result struct {
	Errors          []Finding `json:"errors"`
	Warnings        []Finding `json:"warnings"`
	Recommendations []Finding `json:"recommendations"`
}

// Rule names for checks not covered by the rules package.
const (
	RuleMissingPrerequisite = "missing_prerequisite"
	RuleOrphanNode          = "orphan_node"
	RuleOffProfileNode      = "off_profile_node"
	RuleUnfulfilledGoal     = "unfulfilled_goal"
	RuleSingletonConflict   = "singleton_conflict"
)

// Validate runs every check against the graph. def and wizard may be nil;
// profile conformance and goal fulfillment are skipped without them.
func Validate(g mdf.Graph, def *profile.Definition, wizard *profile.WizardData) Result {
	g = mdf.Sanitize(g)

	r := Result{Errors: []Finding{}, Warnings: []Finding{}, Recommendations: []Finding{}}
	r.Errors = append(r.Errors, checkConnectionLegality(g)...)
	r.Errors = append(r.Errors, checkSingletons(g)...)
	r.Warnings = append(r.Warnings, checkPrerequisites(g)...)
	r.Warnings = append(r.Warnings, checkOrphans(g)...)
	if def != nil {
		r.Recommendations = append(r.Recommendations, checkProfileConformance(g, *def)...)
	}
	if wizard != nil {
		r.Recommendations = append(r.Recommendations, checkGoals(g, *wizard)...)
	}
	return r
}

// checkConnectionLegality judges every edge against the shared rules
// matrix. The verdict here is by construction the same one the live
// connect handler sees.
func checkConnectionLegality(g mdf.Graph) []Finding {
	var out []Finding
	seen := make(map[string]bool)
	for _, e := range g.Edges {
		src, dst := g.NodeByID(e.Source), g.NodeByID(e.Target)
		if src == nil || dst == nil {
			continue
		}
		v := rules.Check(
			catalog.Category(src.Data.Category),
			catalog.Category(dst.Data.Category),
			portType(*src, e.SourceHandle, false),
			portType(*dst, e.TargetHandle, true),
		)
		if v.Allowed {
			continue
		}
		key := v.Rule + "|" + e.ID
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Finding{
			ID:      "conn-" + e.ID,
			Message: fmt.Sprintf("%s → %s: %s", src.Data.Label, dst.Data.Label, v.Reason),
			Rule:    v.Rule,
			EdgeID:  e.ID,
		})
	}
	return out
}

// checkSingletons flags singleton roles held by more than one node.
func checkSingletons(g mdf.Graph) []Finding {
	byRole := make(map[catalog.Role][]mdf.Node)
	for _, n := range g.Nodes {
		cn, ok := catalog.Get(n.Data.CatalogID)
		if !ok || cn.Role == "" {
			continue
		}
		byRole[cn.Role] = append(byRole[cn.Role], n)
	}
	var out []Finding
	for _, role := range catalog.SingletonRoles() {
		group := byRole[role]
		if len(group) < 2 {
			continue
		}
		for _, n := range group[1:] {
			out = append(out, Finding{
				ID:      fmt.Sprintf("singleton-%s-%s", role, n.ID),
				Message: fmt.Sprintf("role %s is already held by %s; at most one instance may exist", role, group[0].ID),
				Rule:    RuleSingletonConflict,
				NodeID:  n.ID,
			})
		}
	}
	return out
}

// checkPrerequisites verifies catalog-declared prerequisites. Upstream
// prerequisites must be reachable via incoming edges; plain prerequisites
// only need to exist somewhere in the graph.
func checkPrerequisites(g mdf.Graph) []Finding {
	var out []Finding
	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		cn, ok := catalog.Get(n.Data.CatalogID)
		if !ok {
			continue
		}
		for _, prereq := range cn.Prerequisites {
			satisfied := false
			if cn.PrereqUpstream {
				satisfied = upstreamHasCatalog(g, n.ID, prereq)
			} else {
				satisfied = g.HasCatalogNode(prereq)
			}
			if satisfied {
				continue
			}
			key := RuleMissingPrerequisite + "|" + n.ID + "|" + prereq
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Finding{
				ID:             "prereq-" + n.ID + "-" + prereq,
				Message:        fmt.Sprintf("%s requires %s, which is not present", n.Data.Label, prereq),
				Rule:           RuleMissingPrerequisite,
				NodeID:         n.ID,
				Recommendation: &Remedy{NodeToAdd: prereq},
			})
		}
	}
	return out
}

// checkOrphans flags nodes with no edges at all. Sources and destinations
// are legitimately terminal on one side, but a node with neither incoming
// nor outgoing edges is disconnected regardless of category.
func checkOrphans(g mdf.Graph) []Finding {
	degree := make(map[string]int)
	for _, e := range g.Edges {
		degree[e.Source]++
		degree[e.Target]++
	}
	var out []Finding
	for _, n := range g.Nodes {
		if degree[n.ID] > 0 {
			continue
		}
		cat := catalog.Category(n.Data.Category)
		if cat == catalog.CategorySource || cat == catalog.CategoryDest {
			continue
		}
		out = append(out, Finding{
			ID:      "orphan-" + n.ID,
			Message: fmt.Sprintf("%s is not connected to anything", n.Data.Label),
			Rule:    RuleOrphanNode,
			NodeID:  n.ID,
		})
	}
	return out
}

// checkProfileConformance recommends the profile-preferred alternative for
// nodes outside the profile's canonical set.
func checkProfileConformance(g mdf.Graph, def profile.Definition) []Finding {
	var out []Finding
	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		if def.Contains(n.Data.CatalogID) {
			continue
		}
		preferred, ok := def.PreferredAlternatives[n.Data.CatalogID]
		if !ok {
			continue
		}
		key := RuleOffProfileNode + "|" + n.ID
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Finding{
			ID:             "profile-" + n.ID,
			Message:        fmt.Sprintf("%s is not part of the %s profile; consider %s", n.Data.Label, def.Name, preferred),
			Rule:           RuleOffProfileNode,
			NodeID:         n.ID,
			Recommendation: &Remedy{NodeToAdd: preferred},
		})
	}
	return out
}

// checkGoals recommends components the wizard's goals require but the
// graph lacks.
func checkGoals(g mdf.Graph, w profile.WizardData) []Finding {
	var out []Finding
	for _, id := range w.GoalNodes(nil) {
		if g.HasCatalogNode(id) {
			continue
		}
		out = append(out, Finding{
			ID:             "goal-" + id,
			Message:        fmt.Sprintf("stated goal requires %s, which is not in the diagram", id),
			Rule:           RuleUnfulfilledGoal,
			Recommendation: &Remedy{NodeToAdd: id},
		})
	}
	return out
}

// upstreamHasCatalog walks incoming edges from nodeID looking for a node
// bound to catalogID.
func upstreamHasCatalog(g mdf.Graph, nodeID, catalogID string) bool {
	incoming := make(map[string][]string)
	for _, e := range g.Edges {
		incoming[e.Target] = append(incoming[e.Target], e.Source)
	}
	visited := make(map[string]bool)
	stack := []string{nodeID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, up := range incoming[cur] {
			if n := g.NodeByID(up); n != nil && n.Data.CatalogID == catalogID {
				return true
			}
			stack = append(stack, up)
		}
	}
	return false
}

// portType resolves the declared type of the port an edge handle names.
// Unnamed handles fall back to the node's first declared port.
func portType(n mdf.Node, handle string, input bool) catalog.PortType {
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
	if handle != "" {
		for _, p := range ports {
			if p.ID == handle {
				return p.Type
			}
		}
	}
	return ports[0].Type
}
