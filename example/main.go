package main

import (
	"encoding/json"
	"fmt"
	"log"

	mdf "github.com/froncalli-softcrylic/MDF-Simulator-sub000"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/builder"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/layout"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/profile"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/repair"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/validate"
)

func main() {
	// ── Build a diagram from wizard answers ───────────────────────────
	wizard := profile.WizardData{
		CloudProvider: "snowflake",
		Tools:         []string{"salesforce", "ga4", "dbt"},
		PainPoints:    []string{"fragmented_identity"},
		Goals:         []string{"activate_audiences", "measure_roi"},
	}

	b := builder.New(nil)
	graph, conflicts := b.FromWizard(wizard, "snowflake-native")
	fmt.Printf("wizard diagram: %d nodes, %d edges, %d conflicts\n",
		len(graph.Nodes), len(graph.Edges), len(conflicts))

	// ── Validate ──────────────────────────────────────────────────────
	def, ok := profile.Get("snowflake-native")
	if !ok {
		log.Fatal("profile missing")
	}
	result := validate.Validate(graph, &def, &wizard)
	fmt.Printf("validation: %d errors, %d warnings, %d recommendations\n",
		len(result.Errors), len(result.Warnings), len(result.Recommendations))

	// ── Plan and apply repairs ────────────────────────────────────────
	planner := repair.New(nil, nil)
	plan := planner.Generate(graph, &def)
	fmt.Printf("repair plan: %d suggestions (%d missing stages)\n",
		plan.TotalSuggestions, len(plan.MissingNodes))
	printJSON(plan)

	graph = planner.Apply(graph, plan)

	replan := planner.Generate(graph, &def)
	fmt.Printf("after apply: %d suggestions remain\n", replan.TotalSuggestions)

	// ── Layout ────────────────────────────────────────────────────────
	graph.Nodes = layout.New(nil).AutoLayout(graph)
	fmt.Println("\nfinal diagram:")
	printJSON(mdf.Graph{Nodes: graph.Nodes, Edges: graph.Edges})
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
