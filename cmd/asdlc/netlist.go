package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/asdl-lang/asdlc/internal/astyaml"
	"github.com/asdl-lang/asdlc/internal/cliutil"
	"github.com/asdl-lang/asdlc/internal/complog"
	"github.com/asdl-lang/asdlc/internal/config"
	"github.com/asdl-lang/asdlc/internal/driver"
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/linker"
	"github.com/asdl-lang/asdlc/internal/source"
)

var netlistCmd = &cobra.Command{
	Use:   "netlist <entry> [flags]",
	Short: "compile an ASDL design into a simulator netlist.",
	Long:  "Compile an ASDL design (entry file, plus anything it imports) into a simulator netlist.",
	Args:  cobra.ExactArgs(1),
	Run:   runNetlist,
}

func init() {
	rootCmd.AddCommand(netlistCmd)
	netlistCmd.Flags().String("top", "", "top-level cell to realize (defaults to the entry file's sole module)")
	netlistCmd.Flags().String("backend", "", "backend name to render for")
	netlistCmd.Flags().String("backend-config", "", "path to a backend device-template config file")
	netlistCmd.Flags().String("view-config", "", "path to a view-binding profile config file")
	netlistCmd.Flags().String("view-profile", "", "named profile within --view-config")
	netlistCmd.Flags().StringArrayP("lib", "L", []string{}, "additional library search root")
	netlistCmd.Flags().String("log", "", "compile log output path (defaults to <entry>.log.json)")
	netlistCmd.Flags().String("output", "", "netlist output path (defaults to <entry> with its extension replaced)")
}

func runNetlist(cmd *cobra.Command, args []string) {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}

	entry := args[0]

	log.Debugf("compiling %s", entry)

	rc, rcDir, hasRC := config.Discover(filepath.Dir(absPath(entry)))

	roots := linker.SearchRoots{CLI: GetStringArray(cmd, "lib")}
	if hasRC {
		roots.AsdlRC = resolveLibRoots(rcDir, rc.LibRoots)
	}

	if envPath := os.Getenv("ASDL_LIB_PATH"); envPath != "" {
		roots.EnvPath = strings.Split(envPath, string(os.PathListSeparator))
	}

	backendConfigPath := GetString(cmd, "backend-config")
	if backendConfigPath == "" {
		backendConfigPath = os.Getenv("ASDL_BACKEND_CONFIG")
	}

	if backendConfigPath == "" && hasRC && rc.BackendConfig != "" {
		backendConfigPath = filepath.Join(rcDir, rc.BackendConfig)
	}

	var backendCfg config.BackendConfig

	if backendConfigPath != "" {
		cfg, err := config.LoadBackendConfig(backendConfigPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		backendCfg = cfg
	}

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
		Loader: astyaml.NewLoader(), SearchRoots: roots,
		TopCell: GetString(cmd, "top"), Profile: profile,
		Backend: GetString(cmd, "backend"), BackendConfig: backendCfg,
		OnTransition: func(s driver.State) { log.Infof("stage -> %s", s) },
	}

	result := driver.Compile(opts)

	for _, d := range result.Diagnostics {
		if d.Severity == source.Warning {
			log.Warnln(d.Message)
		}
	}

	if result.State == driver.StateAborted {
		log.Errorln("compile aborted")
	}

	cliutil.PrintDiagnostics(os.Stderr, result.Diagnostics)
	cliutil.PrintSummary(os.Stderr, result)

	logPath := GetString(cmd, "log")
	if logPath == "" {
		logPath = complog.DefaultPath(entry)
	}

	if result.Log != nil {
		data, err := result.Log.Marshal()
		if err == nil {
			_ = os.WriteFile(logPath, data, 0o644)
		}
	}

	if result.State == driver.StateAborted {
		os.Exit(1)
	}

	outPath := GetString(cmd, "output")
	if outPath == "" {
		ext := filepath.Ext(entry)
		outPath = strings.TrimSuffix(entry, ext) + ".cir"
	}

	if err := os.WriteFile(outPath, []byte(result.Rendered), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveLibRoots(rcDir string, roots []string) []string {
	out := make([]string, len(roots))
	for i, r := range roots {
		if filepath.IsAbs(r) {
			out[i] = r
		} else {
			out[i] = filepath.Join(rcDir, r)
		}
	}

	return out
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}

	return abs
}
