// Package catalog is the static registry of architecture components a
// diagram can be built from. It is a leaf package: nothing here depends on
// the builder, validator or layout layers.
package catalog

import "fmt"

// Category is the pipeline stage a component belongs to. The set is closed:
// connection rules and layout switch exhaustively over it.
type Category string

const (
	CategorySource     Category = "source"
	CategoryCollection Category = "collection"
	CategoryIngestion  Category = "ingestion"
	CategoryRawStorage Category = "raw-storage"
	CategoryWarehouse  Category = "warehouse-storage"
	CategoryTransform  Category = "transform"
	CategoryIdentity   Category = "identity"
	CategoryGovernance Category = "governance"
	CategoryAnalytics  Category = "analytics"
	CategoryActivation Category = "activation"
	CategoryDest       Category = "destination"

	// Rails cut across the pipeline and are laid out in their own band.
	CategoryIdentityRail   Category = "identity-rail"
	CategoryGovernanceRail Category = "governance-rail"
)

// Categories lists every valid category, pipeline stages first.
func Categories() []Category {
	return []Category{
		CategorySource, CategoryCollection, CategoryIngestion,
		CategoryRawStorage, CategoryWarehouse, CategoryTransform,
		CategoryIdentity, CategoryGovernance, CategoryAnalytics,
		CategoryActivation, CategoryDest,
		CategoryIdentityRail, CategoryGovernanceRail,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategorySource, CategoryCollection, CategoryIngestion,
		CategoryRawStorage, CategoryWarehouse, CategoryTransform,
		CategoryIdentity, CategoryGovernance, CategoryAnalytics,
		CategoryActivation, CategoryDest,
		CategoryIdentityRail, CategoryGovernanceRail:
		return true
	}
	return false
}

// IsRail reports whether c is a cross-cutting rail category.
func (c Category) IsRail() bool {
	return c == CategoryIdentityRail || c == CategoryGovernanceRail
}

// ParseCategory validates a raw category string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("catalog: unknown category %q", s)
	}
	return c, nil
}

// PortType tags the data shape flowing through a port. PortAny is a
// wildcard compatible with everything.
type PortType string

const (
	PortEvents       PortType = "events"
	PortProfiles     PortType = "profiles"
	PortRawRecords   PortType = "raw-records"
	PortTables       PortType = "tables"
	PortSegments     PortType = "segments"
	PortIdentityKeys PortType = "identity-keys"
	PortAudiences    PortType = "audiences"
	PortMetrics      PortType = "metrics"
	PortAny          PortType = "any"
)

// Port is one typed input or output of a catalog node.
type Port struct {
	ID   string   `json:"id"`
	Type PortType `json:"type"`
}

// Role marks a singleton constraint: at most one placed instance of a role
// may exist in a graph at a time. Empty means unconstrained.
type Role string

const (
	RolePrimaryWarehouse Role = "primary_warehouse"
	RoleMDFHub           Role = "mdf_hub"
	RoleIdentityGraph    Role = "identity_graph"
	RoleConsentManager   Role = "consent_manager"
)

// Capability tags what a component contributes to the stack.
type Capability string

const (
	CapActivation  Capability = "activation"
	CapMeasurement Capability = "measurement"
	CapIdentity    Capability = "identity"
	CapGovernance  Capability = "governance"
	CapHygiene     Capability = "hygiene"
)

// Node is a static component definition. Never mutated at runtime.
type Node struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Role     Role     `json:"role,omitempty"`
	Inputs   []Port   `json:"inputs,omitempty"`
	Outputs  []Port   `json:"outputs,omitempty"`

	// Prerequisites are catalog ids that should be present before this
	// component is useful. Upstream requires a path via incoming edges;
	// otherwise presence anywhere in the graph satisfies it.
	Prerequisites  []string `json:"prerequisites,omitempty"`
	PrereqUpstream bool     `json:"prereq_upstream,omitempty"`

	Enables []Capability `json:"enables,omitempty"`

	// Business-value metadata surfaced in the UI.
	ROITier    int    `json:"roi_tier,omitempty"`
	ImpactTier int    `json:"impact_tier,omitempty"`
	Narrative  string `json:"narrative,omitempty"`

	// Profiles restricts visibility to the named profile ids.
	// Empty means visible in every profile.
	Profiles []string `json:"profiles,omitempty"`
}

// VisibleIn reports whether the node is offered under the given profile.
func (n Node) VisibleIn(profileID string) bool {
	if len(n.Profiles) == 0 {
		return true
	}
	for _, p := range n.Profiles {
		if p == profileID {
			return true
		}
	}
	return false
}
