package profile

import "log/slog"

// WizardData carries the questionnaire answers the wizard collects.
// All values are free-form selections mapped through the lookup tables
// below; unknown keys are skipped, never fatal.
type WizardData struct {
	CloudProvider string   `json:"cloud_provider,omitempty"`
	Tools         []string `json:"tools,omitempty"`
	PainPoints    []string `json:"pain_points,omitempty"`
	Goals         []string `json:"goals,omitempty"`
}

// toolCatalog maps a wizard tool selection to the catalog component the
// customer already runs.
var toolCatalog = map[string]string{
	"salesforce": "crm_salesforce",
	"hubspot":    "crm_hubspot",
	"shopify":    "ecommerce_shopify",
	"ga4":        "web_app_events",
	"segment":    "event_gateway",
	"fivetran":   "managed_connectors",
	"dbt":        "dbt_transform",
	"snowflake":  "snowflake_warehouse",
	"bigquery":   "bigquery_warehouse",
	"databricks": "databricks_lakehouse",
	"looker":     "bi_dashboards",
	"braze":      "journey_orchestrator",
}

// painPointCatalog maps a reported pain point to the component that
// addresses it. These enter the graph as recommendations.
var painPointCatalog = map[string]string{
	"fragmented_identity": "identity_graph",
	"poor_data_quality":   "quality_suite",
	"no_consent_tracking": "consent_manager",
	"siloed_channels":     "audience_builder",
	"slow_reporting":      "bi_dashboards",
	"unknown_roi":         "attribution_model",
}

// goalCatalog maps a stated goal to the component required to reach it.
var goalCatalog = map[string]string{
	"activate_audiences":  "audience_builder",
	"measure_roi":         "attribution_model",
	"unify_customer_view": "identity_graph",
	"governed_data":       "consent_manager",
	"predict_churn":       "predictive_scores",
	"personalize_onsite":  "dest_personalization",
}

// cloudWarehouse maps a cloud provider answer to the default primary
// warehouse for that environment.
var cloudWarehouse = map[string]string{
	"aws":        "redshift_warehouse",
	"gcp":        "bigquery_warehouse",
	"snowflake":  "snowflake_warehouse",
	"databricks": "databricks_lakehouse",
}

// ToolNode resolves a wizard tool selection, logging unknown keys.
func ToolNode(tool string, log *slog.Logger) (string, bool) {
	id, ok := toolCatalog[tool]
	if !ok {
		logger(log).Warn("wizard: unknown tool selection", "tool", tool)
	}
	return id, ok
}

// PainPointNode resolves a pain-point selection, logging unknown keys.
func PainPointNode(pain string, log *slog.Logger) (string, bool) {
	id, ok := painPointCatalog[pain]
	if !ok {
		logger(log).Warn("wizard: unknown pain point", "pain_point", pain)
	}
	return id, ok
}

// GoalNode resolves a goal selection, logging unknown keys.
func GoalNode(goal string, log *slog.Logger) (string, bool) {
	id, ok := goalCatalog[goal]
	if !ok {
		logger(log).Warn("wizard: unknown goal", "goal", goal)
	}
	return id, ok
}

func logger(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}

// WarehouseForCloud resolves the default warehouse for a cloud provider.
func WarehouseForCloud(provider string) (string, bool) {
	id, ok := cloudWarehouse[provider]
	return id, ok
}

// GoalNodes returns the catalog ids required by the wizard's goals,
// in goal order with duplicates removed.
func (w WizardData) GoalNodes(log *slog.Logger) []string {
	var out []string
	seen := make(map[string]bool)
	for _, g := range w.Goals {
		id, ok := GoalNode(g, log)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
