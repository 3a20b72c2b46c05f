// Package rules is the single source of truth for connection legality.
// Both the live connect handler and the post-hoc validator call Check, so an
// edge can never be judged differently depending on who asks.
package rules

import (
	"fmt"

	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/catalog"
)

// Verdict is the result of a legality check. Rule names the matched rule
// when the connection is denied or allowed by a named exception.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Rule    string `json:"rule,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Named rules referenced by verdicts and validator findings.
const (
	RuleSourceToDestination = "source_to_destination"
	RuleSourceToActivation  = "source_to_activation"
	RuleRawBypassGovernance = "raw_bypass_governance"
	RuleRailCrossCutting    = "rail_cross_cutting"
	RuleNoAdjacency         = "no_category_adjacency"
	RulePortMismatch        = "port_type_mismatch"
	RuleUnknownCategory     = "unknown_category"
)

// forwardPath is the canonical stage order of a marketing data foundation.
var forwardPath = []catalog.Category{
	catalog.CategorySource,
	catalog.CategoryCollection,
	catalog.CategoryIngestion,
	catalog.CategoryRawStorage,
	catalog.CategoryWarehouse,
	catalog.CategoryTransform,
	catalog.CategoryIdentity,
	catalog.CategoryAnalytics,
	catalog.CategoryActivation,
	catalog.CategoryDest,
}

// ForwardPath returns the canonical stage order, leftmost first. Callers
// must not mutate the returned slice.
func ForwardPath() []catalog.Category {
	return forwardPath
}

// StageIndex returns the position of a category on the forward path, or -1
// for rails, governance and unknown categories.
func StageIndex(c catalog.Category) int {
	for i, s := range forwardPath {
		if s == c {
			return i
		}
	}
	return -1
}

// allowed is the (source → targets) adjacency table. Beyond strict forward
// adjacency it permits the skips real stacks use: sources feeding ingestion
// or the warehouse directly, transform-to-activation, and analytics reading
// straight off the warehouse.
var allowed = map[catalog.Category][]catalog.Category{
	catalog.CategorySource:     {catalog.CategoryCollection, catalog.CategoryIngestion, catalog.CategoryRawStorage, catalog.CategoryWarehouse},
	catalog.CategoryCollection: {catalog.CategoryIngestion, catalog.CategoryRawStorage, catalog.CategoryWarehouse},
	catalog.CategoryIngestion:  {catalog.CategoryRawStorage, catalog.CategoryWarehouse},
	catalog.CategoryRawStorage: {catalog.CategoryWarehouse, catalog.CategoryTransform},
	catalog.CategoryWarehouse:  {catalog.CategoryTransform, catalog.CategoryIdentity, catalog.CategoryGovernance, catalog.CategoryAnalytics, catalog.CategoryActivation},
	catalog.CategoryTransform:  {catalog.CategoryIdentity, catalog.CategoryGovernance, catalog.CategoryAnalytics, catalog.CategoryActivation},
	catalog.CategoryIdentity:   {catalog.CategoryIdentity, catalog.CategoryAnalytics, catalog.CategoryActivation},
	catalog.CategoryGovernance: {catalog.CategoryAnalytics, catalog.CategoryActivation},
	catalog.CategoryAnalytics:  {catalog.CategoryActivation, catalog.CategoryDest},
	catalog.CategoryActivation: {catalog.CategoryActivation, catalog.CategoryDest},
	catalog.CategoryDest:       {},
}

// denied lists named anti-patterns checked before the adjacency table.
var denied = map[[2]catalog.Category]Verdict{
	{catalog.CategorySource, catalog.CategoryDest}: {
		Rule:   RuleSourceToDestination,
		Reason: "sources must not feed destinations directly; route through storage and governance first",
	},
	{catalog.CategorySource, catalog.CategoryActivation}: {
		Rule:   RuleSourceToActivation,
		Reason: "raw source data cannot be activated without identity resolution",
	},
	{catalog.CategoryRawStorage, catalog.CategoryActivation}: {
		Rule:   RuleRawBypassGovernance,
		Reason: "raw storage must pass through the warehouse and governance before activation",
	},
	{catalog.CategoryRawStorage, catalog.CategoryDest}: {
		Rule:   RuleRawBypassGovernance,
		Reason: "raw storage must not feed destinations directly",
	},
}

// portCompat lists non-identical port type pairs that still connect.
var portCompat = map[catalog.PortType][]catalog.PortType{
	catalog.PortEvents:       {catalog.PortRawRecords},
	catalog.PortRawRecords:   {catalog.PortTables},
	catalog.PortTables:       {catalog.PortProfiles},
	catalog.PortProfiles:     {catalog.PortIdentityKeys},
	catalog.PortIdentityKeys: {catalog.PortProfiles},
	catalog.PortAudiences:    {catalog.PortSegments},
	catalog.PortSegments:     {catalog.PortAudiences},
}

// Check decides whether an edge from a source-category node to a
// target-category node is legal. Port types refine the category decision
// when both ends declare one; empty or PortAny ports are wildcards.
func Check(src, dst catalog.Category, srcPort, dstPort catalog.PortType) Verdict {
	if !src.Valid() || !dst.Valid() {
		return Verdict{Rule: RuleUnknownCategory, Reason: fmt.Sprintf("unknown category pair %s → %s", src, dst)}
	}

	// Rails may attach to any stage in either direction.
	if src.IsRail() || dst.IsRail() {
		return Verdict{Allowed: true, Rule: RuleRailCrossCutting}
	}

	if v, ok := denied[[2]catalog.Category{src, dst}]; ok {
		return v
	}

	if !adjacencyAllowed(src, dst) {
		return Verdict{
			Rule:   RuleNoAdjacency,
			Reason: fmt.Sprintf("no legal connection from %s to %s", src, dst),
		}
	}

	if !portsCompatible(srcPort, dstPort) {
		return Verdict{
			Rule:   RulePortMismatch,
			Reason: fmt.Sprintf("port %s does not feed port %s", srcPort, dstPort),
		}
	}

	return Verdict{Allowed: true}
}

func adjacencyAllowed(src, dst catalog.Category) bool {
	for _, t := range allowed[src] {
		if t == dst {
			return true
		}
	}
	return false
}

func portsCompatible(out, in catalog.PortType) bool {
	if out == "" || in == "" || out == catalog.PortAny || in == catalog.PortAny {
		return true
	}
	if out == in {
		return true
	}
	for _, t := range portCompat[out] {
		if t == in {
			return true
		}
	}
	return false
}
