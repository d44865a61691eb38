package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [flags]",
	Short: "print the data-model schema.",
	Run:   runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().Bool("json", false, "print as JSON (default is a readable outline)")
}

// schemaOutline names the shape of every stage's graph, for a human reader;
// it is descriptive, not a machine-checked contract.
var schemaOutline = []struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}{
	{"File", []string{"id", "path", "imports", "model_alias", "modules", "devices"}},
	{"Module", []string{"name", "view?", "file_id", "ports[]", "nets", "instances", "parameters", "variables", "endpoints", "pattern_table"}},
	{"Device", []string{"name", "ports[]", "parameters", "variables", "spice_template", "pdk?"}},
	{"Instance", []string{"inst_id", "name_expr_id", "ref_kind", "ref_raw", "ref_id", "parameters"}},
	{"Net", []string{"net_id", "name_expr_id"}},
	{"Endpoint", []string{"endpoint_id", "net_id", "port_expr_id", "conn_label?"}},
	{"PatternOrigin", []string{"expr_id", "segment_index", "atom_index", "base_name", "pattern_parts[]"}},
	{"NetlistProgram", []string{"top", "modules[]", "globals"}},
	{"NetlistModule", []string{"emitted_name", "realization", "ports[]", "parameters", "body[]"}},
	{"CompileLog", []string{"schema_version", "view_bindings[]", "emission_name_map[]", "warnings[]", "diagnostics[]"}},
}

func runSchema(cmd *cobra.Command, args []string) {
	if GetFlag(cmd, "json") {
		data, err := json.MarshalIndent(schemaOutline, "", "  ")
		if err != nil {
			fmt.Println(err)

			return
		}

		fmt.Println(string(data))

		return
	}

	for _, t := range schemaOutline {
		fmt.Printf("%s\n", t.Name)

		for _, f := range t.Fields {
			fmt.Printf("  %s\n", f)
		}
	}
}
