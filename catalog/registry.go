package catalog

import "sort"

// registry holds every known component, keyed by id. Populated once at init
// from the entries table; read-only afterwards.
var registry = make(map[string]Node, len(entries))

func init() {
	for _, n := range entries {
		if _, dup := registry[n.ID]; dup {
			panic("catalog: duplicate id " + n.ID)
		}
		if !n.Category.Valid() {
			panic("catalog: invalid category for " + n.ID)
		}
		registry[n.ID] = n
	}
}

var entries = []Node{
	// ── Sources ───────────────────────────────────────────────────────
	{ID: "crm_salesforce", Name: "Salesforce CRM", Category: CategorySource,
		Outputs: []Port{{ID: "out", Type: PortRawRecords}},
		ROITier: 2, ImpactTier: 2, Narrative: "Customer and opportunity records from the CRM of record."},
	{ID: "crm_hubspot", Name: "HubSpot CRM", Category: CategorySource,
		Outputs: []Port{{ID: "out", Type: PortRawRecords}}, ROITier: 2, ImpactTier: 2},
	{ID: "ecommerce_shopify", Name: "Shopify Store", Category: CategorySource,
		Outputs: []Port{{ID: "out", Type: PortRawRecords}}, ROITier: 2, ImpactTier: 3},
	{ID: "web_app_events", Name: "Web & App Events", Category: CategorySource,
		Outputs: []Port{{ID: "out", Type: PortEvents}}, ROITier: 3, ImpactTier: 3},
	{ID: "mobile_app_events", Name: "Mobile SDK Events", Category: CategorySource,
		Outputs: []Port{{ID: "out", Type: PortEvents}}, ROITier: 2, ImpactTier: 2},
	{ID: "ads_google", Name: "Google Ads", Category: CategorySource,
		Outputs: []Port{{ID: "out", Type: PortRawRecords}}, ROITier: 1, ImpactTier: 2},
	{ID: "ads_meta", Name: "Meta Ads", Category: CategorySource,
		Outputs: []Port{{ID: "out", Type: PortRawRecords}}, ROITier: 1, ImpactTier: 2},
	{ID: "offline_pos", Name: "Point of Sale", Category: CategorySource,
		Outputs: []Port{{ID: "out", Type: PortRawRecords}}, ROITier: 1, ImpactTier: 1},
	{ID: "email_esp", Name: "Email Platform", Category: CategorySource,
		Outputs: []Port{{ID: "out", Type: PortRawRecords}}, ROITier: 1, ImpactTier: 1},
	{ID: "support_zendesk", Name: "Support Desk", Category: CategorySource,
		Outputs: []Port{{ID: "out", Type: PortRawRecords}}, ROITier: 1, ImpactTier: 1},

	// ── Collection ────────────────────────────────────────────────────
	{ID: "event_gateway", Name: "Event Collection Gateway", Category: CategoryCollection,
		Inputs:  []Port{{ID: "in", Type: PortEvents}},
		Outputs: []Port{{ID: "out", Type: PortEvents}}, ROITier: 2, ImpactTier: 2},
	{ID: "tag_manager", Name: "Tag Manager", Category: CategoryCollection,
		Inputs:  []Port{{ID: "in", Type: PortEvents}},
		Outputs: []Port{{ID: "out", Type: PortEvents}}, ROITier: 1, ImpactTier: 1},

	// ── Ingestion ─────────────────────────────────────────────────────
	{ID: "batch_etl", Name: "Batch ELT Pipelines", Category: CategoryIngestion,
		Inputs:  []Port{{ID: "in", Type: PortRawRecords}},
		Outputs: []Port{{ID: "out", Type: PortRawRecords}}, ROITier: 2, ImpactTier: 2},
	{ID: "streaming_ingest", Name: "Streaming Ingestion", Category: CategoryIngestion,
		Inputs:  []Port{{ID: "in", Type: PortEvents}},
		Outputs: []Port{{ID: "out", Type: PortRawRecords}}, ROITier: 2, ImpactTier: 2},
	{ID: "managed_connectors", Name: "Managed Connectors", Category: CategoryIngestion,
		Inputs:  []Port{{ID: "in", Type: PortRawRecords}},
		Outputs: []Port{{ID: "out", Type: PortRawRecords}}, ROITier: 2, ImpactTier: 1},

	// ── Raw storage ───────────────────────────────────────────────────
	{ID: "data_lake", Name: "Data Lake", Category: CategoryRawStorage,
		Inputs:  []Port{{ID: "in", Type: PortRawRecords}},
		Outputs: []Port{{ID: "out", Type: PortRawRecords}}, ROITier: 1, ImpactTier: 2},
	{ID: "landing_zone", Name: "Landing Zone", Category: CategoryRawStorage,
		Inputs:  []Port{{ID: "in", Type: PortRawRecords}},
		Outputs: []Port{{ID: "out", Type: PortRawRecords}}, ROITier: 1, ImpactTier: 1},

	// ── Warehouse storage (singleton primary_warehouse) ───────────────
	{ID: "snowflake_warehouse", Name: "Snowflake", Category: CategoryWarehouse,
		Role:    RolePrimaryWarehouse,
		Inputs:  []Port{{ID: "in", Type: PortRawRecords}},
		Outputs: []Port{{ID: "out", Type: PortTables}},
		ROITier: 3, ImpactTier: 3, Profiles: []string{"snowflake-native", "composable-cdp"},
		Narrative: "Single source of truth for modeled customer data."},
	{ID: "bigquery_warehouse", Name: "BigQuery", Category: CategoryWarehouse,
		Role:    RolePrimaryWarehouse,
		Inputs:  []Port{{ID: "in", Type: PortRawRecords}},
		Outputs: []Port{{ID: "out", Type: PortTables}},
		ROITier: 3, ImpactTier: 3, Profiles: []string{"gcp-lakehouse"}},
	{ID: "redshift_warehouse", Name: "Redshift", Category: CategoryWarehouse,
		Role:    RolePrimaryWarehouse,
		Inputs:  []Port{{ID: "in", Type: PortRawRecords}},
		Outputs: []Port{{ID: "out", Type: PortTables}}, ROITier: 2, ImpactTier: 3},
	{ID: "databricks_lakehouse", Name: "Databricks Lakehouse", Category: CategoryWarehouse,
		Role:    RolePrimaryWarehouse,
		Inputs:  []Port{{ID: "in", Type: PortRawRecords}},
		Outputs: []Port{{ID: "out", Type: PortTables}},
		ROITier: 3, ImpactTier: 3, Profiles: []string{"composable-cdp"}},

	// ── Transform ─────────────────────────────────────────────────────
	{ID: "dbt_transform", Name: "dbt Transformations", Category: CategoryTransform,
		Inputs:  []Port{{ID: "in", Type: PortTables}},
		Outputs: []Port{{ID: "out", Type: PortTables}},
		Enables: []Capability{CapHygiene}, ROITier: 2, ImpactTier: 3},
	{ID: "sql_models", Name: "SQL Models", Category: CategoryTransform,
		Inputs:  []Port{{ID: "in", Type: PortTables}},
		Outputs: []Port{{ID: "out", Type: PortTables}}, ROITier: 1, ImpactTier: 2},
	{ID: "quality_suite", Name: "Data Quality Suite", Category: CategoryTransform,
		Inputs:  []Port{{ID: "in", Type: PortTables}},
		Outputs: []Port{{ID: "out", Type: PortTables}},
		Enables: []Capability{CapHygiene}, ROITier: 2, ImpactTier: 2},

	// ── Identity ──────────────────────────────────────────────────────
	{ID: "identity_graph", Name: "Identity Graph", Category: CategoryIdentity,
		Role:    RoleIdentityGraph,
		Inputs:  []Port{{ID: "in", Type: PortTables}},
		Outputs: []Port{{ID: "out", Type: PortIdentityKeys}},
		Enables: []Capability{CapIdentity}, ROITier: 3, ImpactTier: 3,
		Narrative: "Resolves fragmented customer keys into durable profiles."},
	{ID: "identity_resolution", Name: "Identity Resolution Service", Category: CategoryIdentity,
		Inputs:        []Port{{ID: "in", Type: PortIdentityKeys}},
		Outputs:       []Port{{ID: "out", Type: PortProfiles}},
		Prerequisites: []string{"identity_graph"}, PrereqUpstream: true,
		Enables:       []Capability{CapIdentity}, ROITier: 2, ImpactTier: 3},
	{ID: "mdf_hub", Name: "MDF Hub", Category: CategoryIdentity,
		Role:    RoleMDFHub,
		Inputs:  []Port{{ID: "in", Type: PortAny}},
		Outputs: []Port{{ID: "out", Type: PortProfiles}},
		Enables: []Capability{CapIdentity}, ROITier: 3, ImpactTier: 3,
		Narrative: "Central unified-profile hub the rest of the stack hangs off."},

	// ── Governance ────────────────────────────────────────────────────
	{ID: "data_catalog", Name: "Data Catalog", Category: CategoryGovernance,
		Inputs:  []Port{{ID: "in", Type: PortTables}},
		Outputs: []Port{{ID: "out", Type: PortTables}},
		Enables: []Capability{CapGovernance}, ROITier: 1, ImpactTier: 2},
	{ID: "policy_engine", Name: "Access Policy Engine", Category: CategoryGovernance,
		Inputs:  []Port{{ID: "in", Type: PortAny}},
		Outputs: []Port{{ID: "out", Type: PortAny}},
		Enables: []Capability{CapGovernance}, ROITier: 1, ImpactTier: 2},

	// ── Governance rail ───────────────────────────────────────────────
	{ID: "consent_manager", Name: "Consent Manager", Category: CategoryGovernanceRail,
		Role:    RoleConsentManager,
		Inputs:  []Port{{ID: "in", Type: PortAny}},
		Outputs: []Port{{ID: "out", Type: PortAny}},
		Enables: []Capability{CapGovernance}, ROITier: 2, ImpactTier: 3,
		Narrative: "Consent and preference signals enforced across every stage."},
	{ID: "privacy_vault", Name: "Privacy Vault", Category: CategoryGovernanceRail,
		Inputs:  []Port{{ID: "in", Type: PortAny}},
		Outputs: []Port{{ID: "out", Type: PortAny}},
		Enables: []Capability{CapGovernance}, ROITier: 1, ImpactTier: 2},
	{ID: "audit_log", Name: "Audit Log", Category: CategoryGovernanceRail,
		Inputs:  []Port{{ID: "in", Type: PortAny}},
		Enables: []Capability{CapGovernance}, ROITier: 1, ImpactTier: 1},

	// ── Analytics ─────────────────────────────────────────────────────
	{ID: "bi_dashboards", Name: "BI Dashboards", Category: CategoryAnalytics,
		Inputs:  []Port{{ID: "in", Type: PortTables}},
		Outputs: []Port{{ID: "out", Type: PortMetrics}},
		Enables: []Capability{CapMeasurement}, ROITier: 2, ImpactTier: 2},
	{ID: "attribution_model", Name: "Attribution Modeling", Category: CategoryAnalytics,
		Inputs:        []Port{{ID: "in", Type: PortTables}},
		Outputs:       []Port{{ID: "out", Type: PortMetrics}},
		Prerequisites: []string{"dbt_transform"},
		Enables:       []Capability{CapMeasurement}, ROITier: 3, ImpactTier: 2},
	{ID: "predictive_scores", Name: "Predictive Scoring", Category: CategoryAnalytics,
		Inputs:        []Port{{ID: "in", Type: PortProfiles}},
		Outputs:       []Port{{ID: "out", Type: PortMetrics}},
		Prerequisites: []string{"identity_graph"},
		Enables:       []Capability{CapMeasurement}, ROITier: 3, ImpactTier: 3},

	// ── Activation ────────────────────────────────────────────────────
	{ID: "audience_builder", Name: "Audience Builder", Category: CategoryActivation,
		Inputs:        []Port{{ID: "in", Type: PortProfiles}},
		Outputs:       []Port{{ID: "out", Type: PortAudiences}},
		Prerequisites: []string{"identity_graph"},
		Enables:       []Capability{CapActivation}, ROITier: 3, ImpactTier: 3},
	{ID: "journey_orchestrator", Name: "Journey Orchestrator", Category: CategoryActivation,
		Inputs:        []Port{{ID: "in", Type: PortAudiences}},
		Outputs:       []Port{{ID: "out", Type: PortAudiences}},
		Prerequisites: []string{"audience_builder"}, PrereqUpstream: true,
		Enables:       []Capability{CapActivation}, ROITier: 2, ImpactTier: 3},

	// ── Destinations ──────────────────────────────────────────────────
	{ID: "dest_ad_platforms", Name: "Paid Media Destinations", Category: CategoryDest,
		Inputs:  []Port{{ID: "in", Type: PortAudiences}},
		Enables: []Capability{CapActivation}, ROITier: 2, ImpactTier: 2},
	{ID: "dest_email", Name: "Email Destinations", Category: CategoryDest,
		Inputs:  []Port{{ID: "in", Type: PortAudiences}},
		Enables: []Capability{CapActivation}, ROITier: 2, ImpactTier: 2},
	{ID: "dest_crm_sync", Name: "CRM Sync", Category: CategoryDest,
		Inputs:  []Port{{ID: "in", Type: PortProfiles}}, ROITier: 1, ImpactTier: 2},
	{ID: "dest_personalization", Name: "Onsite Personalization", Category: CategoryDest,
		Inputs:  []Port{{ID: "in", Type: PortAudiences}},
		Enables: []Capability{CapActivation}, ROITier: 2, ImpactTier: 3},
}

// Get returns the catalog node for id.
func Get(id string) (Node, bool) {
	n, ok := registry[id]
	return n, ok
}

// All returns every catalog node ordered by id.
func All() []Node {
	out := make([]Node, 0, len(registry))
	for _, n := range registry {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByCategory returns the catalog nodes in a category, ordered by id.
func ByCategory(c Category) []Node {
	var out []Node
	for _, n := range All() {
		if n.Category == c {
			out = append(out, n)
		}
	}
	return out
}

// PreferredForStage picks the component to suggest when a stage is missing:
// visible in the profile, highest ROI tier, lowest id on a tie. The id
// tie-break keeps suggestions deterministic.
func PreferredForStage(c Category, profileID string) (Node, bool) {
	var best Node
	found := false
	for _, n := range ByCategory(c) {
		if profileID != "" && !n.VisibleIn(profileID) {
			continue
		}
		if !found || n.ROITier > best.ROITier {
			best, found = n, true
		}
	}
	return best, found
}

// SingletonRoles returns the roles that constrain placement to one instance.
func SingletonRoles() []Role {
	return []Role{RolePrimaryWarehouse, RoleMDFHub, RoleIdentityGraph, RoleConsentManager}
}
