package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is filled in by the release build, left blank under "go run"/"go
// install".
var Version string

var rootCmd = &cobra.Command{
	Use:   "asdlc",
	Short: "A compiler for the ASDL analog hardware description language.",
	Long:  "asdlc compiles ASDL YAML hardware descriptions into simulator netlists.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("asdlc ")

			switch {
			case Version != "":
				fmt.Printf("%s", Version)
			default:
				if info, ok := debug.ReadBuildInfo(); ok {
					fmt.Printf("%s", info.Main.Version)
				} else {
					fmt.Printf("(unknown version)")
				}
			}

			fmt.Println()
		}
	},
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.Flags().Bool("version", false, "print version information")
}
