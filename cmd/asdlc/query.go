package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asdl-lang/asdlc/internal/astyaml"
	"github.com/asdl-lang/asdlc/internal/config"
	"github.com/asdl-lang/asdlc/internal/driver"
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/linker"
	"github.com/asdl-lang/asdlc/internal/queryapi"
)

var queryCmd = &cobra.Command{
	Use:   "query {tree|bindings|emit-plan|refs|instance|net|net-trace} <entry> [flags]",
	Short: "inspect a compiled design without writing a netlist.",
	Args:  cobra.MinimumNArgs(2),
	Run:   runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().String("stage", "resolved", "pipeline stage to query: authored|resolved|emitted")
	queryCmd.Flags().String("top", "", "top-level cell to realize")
	queryCmd.Flags().String("module", "", "module realization key anchor (refs/instance/net/net-trace)")
	queryCmd.Flags().String("instance", "", "instance name anchor (instance query)")
	queryCmd.Flags().String("net", "", "net name anchor (net/net-trace query)")
	queryCmd.Flags().String("view-config", "", "path to a view-binding profile config file")
	queryCmd.Flags().String("view-profile", "", "named profile within --view-config")
	queryCmd.Flags().StringArrayP("lib", "L", []string{}, "additional library search root")
}

func runQuery(cmd *cobra.Command, args []string) {
	kind, entry := args[0], args[1]

	var profile config.Profile

	if viewConfigPath := GetString(cmd, "view-config"); viewConfigPath != "" {
		vc, err := config.LoadViewConfig(viewConfigPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		profile = vc.Profiles[GetString(cmd, "view-profile")]
	}

	opts := driver.Options{
		Entry: ids.FileID(absPath(entry)), EntryPath: entry,
		Loader: astyaml.NewLoader(),
		SearchRoots: linker.SearchRoots{CLI: GetStringArray(cmd, "lib")},
		TopCell:     GetString(cmd, "top"), Profile: profile,
	}

	result := driver.Compile(opts)

	stage := queryapi.Stage(GetString(cmd, "stage"))

	var (
		env *queryapi.Envelope
		err error
	)

	switch kind {
	case "tree":
		env, err = queryapi.Tree(result, stage)
	case "bindings":
		env, err = queryapi.Bindings(result)
	case "emit-plan":
		env, err = queryapi.EmitPlan(result)
	case "refs":
		env, err = queryapi.Refs(result, GetString(cmd, "module"))
	case "instance":
		env, err = queryapi.Instance(result, GetString(cmd, "module"), GetString(cmd, "instance"))
	case "net":
		env, err = queryapi.Net(result, GetString(cmd, "module"), GetString(cmd, "net"))
	case "net-trace":
		env, err = queryapi.NetTrace(result, GetString(cmd, "module"), GetString(cmd, "net"))
	default:
		fmt.Fprintf(os.Stderr, "unknown query kind %q\n", kind)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	data, marshalErr := json.MarshalIndent(env, "", "  ")
	if marshalErr != nil {
		fmt.Fprintln(os.Stderr, marshalErr)
		os.Exit(1)
	}

	fmt.Println(string(data))
}
