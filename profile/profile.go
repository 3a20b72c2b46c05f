// Package profile holds the named canonical stack configurations a diagram
// can be derived from, plus the wizard questionnaire mapping tables.
package profile

import "sort"

// CanonicalEdge connects two catalog ids in a profile blueprint.
type CanonicalEdge struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	SourcePort string `json:"source_port,omitempty"`
	TargetPort string `json:"target_port,omitempty"`
}

// Definition is a named canonical configuration for one target vendor stack.
type Definition struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	IdentityStrategy string          `json:"identity_strategy"`
	NodeIDs          []string        `json:"node_ids"`
	Edges            []CanonicalEdge `json:"edges"`
	RailNodeIDs      []string        `json:"rail_node_ids"`

	// PreferredAlternatives maps an off-profile catalog id to the component
	// this profile would rather see in its place.
	PreferredAlternatives map[string]string `json:"preferred_alternatives,omitempty"`
}

var definitions = map[string]Definition{
	"snowflake-native": {
		ID:               "snowflake-native",
		Name:             "Snowflake-Native Foundation",
		IdentityStrategy: "warehouse-resident identity graph",
		NodeIDs: []string{
			"crm_salesforce", "web_app_events", "event_gateway", "batch_etl",
			"streaming_ingest", "data_lake", "snowflake_warehouse", "dbt_transform",
			"identity_graph", "mdf_hub", "bi_dashboards", "audience_builder",
			"dest_ad_platforms",
		},
		Edges: []CanonicalEdge{
			{Source: "crm_salesforce", Target: "batch_etl"},
			{Source: "web_app_events", Target: "event_gateway"},
			{Source: "event_gateway", Target: "streaming_ingest"},
			{Source: "batch_etl", Target: "data_lake"},
			{Source: "streaming_ingest", Target: "data_lake"},
			{Source: "data_lake", Target: "snowflake_warehouse"},
			{Source: "snowflake_warehouse", Target: "dbt_transform"},
			{Source: "dbt_transform", Target: "identity_graph"},
			{Source: "identity_graph", Target: "mdf_hub"},
			{Source: "mdf_hub", Target: "audience_builder"},
			{Source: "snowflake_warehouse", Target: "bi_dashboards"},
			{Source: "audience_builder", Target: "dest_ad_platforms"},
		},
		RailNodeIDs: []string{"consent_manager", "audit_log"},
		PreferredAlternatives: map[string]string{
			"bigquery_warehouse":   "snowflake_warehouse",
			"redshift_warehouse":   "snowflake_warehouse",
			"databricks_lakehouse": "snowflake_warehouse",
			"sql_models":           "dbt_transform",
		},
	},
	"gcp-lakehouse": {
		ID:               "gcp-lakehouse",
		Name:             "GCP Lakehouse Foundation",
		IdentityStrategy: "BigQuery-native entity resolution",
		NodeIDs: []string{
			"web_app_events", "mobile_app_events", "event_gateway",
			"streaming_ingest", "data_lake", "bigquery_warehouse", "sql_models",
			"identity_graph", "mdf_hub", "bi_dashboards", "audience_builder",
			"dest_ad_platforms",
		},
		Edges: []CanonicalEdge{
			{Source: "web_app_events", Target: "event_gateway"},
			{Source: "mobile_app_events", Target: "event_gateway"},
			{Source: "event_gateway", Target: "streaming_ingest"},
			{Source: "streaming_ingest", Target: "data_lake"},
			{Source: "data_lake", Target: "bigquery_warehouse"},
			{Source: "bigquery_warehouse", Target: "sql_models"},
			{Source: "sql_models", Target: "identity_graph"},
			{Source: "identity_graph", Target: "mdf_hub"},
			{Source: "mdf_hub", Target: "audience_builder"},
			{Source: "bigquery_warehouse", Target: "bi_dashboards"},
			{Source: "audience_builder", Target: "dest_ad_platforms"},
		},
		RailNodeIDs: []string{"consent_manager", "privacy_vault"},
		PreferredAlternatives: map[string]string{
			"snowflake_warehouse":  "bigquery_warehouse",
			"redshift_warehouse":   "bigquery_warehouse",
			"databricks_lakehouse": "bigquery_warehouse",
			"dbt_transform":        "sql_models",
		},
	},
	"composable-cdp": {
		ID:               "composable-cdp",
		Name:             "Composable CDP",
		IdentityStrategy: "external identity service over the lakehouse",
		NodeIDs: []string{
			"crm_salesforce", "ecommerce_shopify", "web_app_events",
			"managed_connectors", "databricks_lakehouse", "dbt_transform",
			"identity_graph", "identity_resolution", "mdf_hub",
			"predictive_scores", "audience_builder", "journey_orchestrator",
			"dest_ad_platforms", "dest_email",
		},
		Edges: []CanonicalEdge{
			{Source: "crm_salesforce", Target: "managed_connectors"},
			{Source: "ecommerce_shopify", Target: "managed_connectors"},
			{Source: "web_app_events", Target: "managed_connectors"},
			{Source: "managed_connectors", Target: "databricks_lakehouse"},
			{Source: "databricks_lakehouse", Target: "dbt_transform"},
			{Source: "dbt_transform", Target: "identity_graph"},
			{Source: "identity_graph", Target: "identity_resolution"},
			{Source: "identity_resolution", Target: "mdf_hub"},
			{Source: "mdf_hub", Target: "predictive_scores"},
			{Source: "mdf_hub", Target: "audience_builder"},
			{Source: "audience_builder", Target: "journey_orchestrator"},
			{Source: "journey_orchestrator", Target: "dest_ad_platforms"},
			{Source: "journey_orchestrator", Target: "dest_email"},
		},
		RailNodeIDs: []string{"consent_manager", "privacy_vault", "audit_log"},
		PreferredAlternatives: map[string]string{
			"snowflake_warehouse": "databricks_lakehouse",
			"bigquery_warehouse":  "databricks_lakehouse",
			"redshift_warehouse":  "databricks_lakehouse",
		},
	},
}

// Get returns the definition for a profile id.
func Get(id string) (Definition, bool) {
	d, ok := definitions[id]
	return d, ok
}

// All returns every profile definition ordered by id.
func All() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Contains reports whether catalogID is part of the profile's canonical set
// (pipeline nodes or rails).
func (d Definition) Contains(catalogID string) bool {
	for _, id := range d.NodeIDs {
		if id == catalogID {
			return true
		}
	}
	for _, id := range d.RailNodeIDs {
		if id == catalogID {
			return true
		}
	}
	return false
}
