package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bundlecore",
	Short: "Expand and link a JavaScript module graph",
	Long: `bundlecore drives the module loader and linker over a set of entry
points: it resolves and scans every reachable module, links exports and
imports across module boundaries, and reports the linked graph. It does
not emit bundled JavaScript - chunking and code generation are left to a
downstream tool.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main and only needs to happen
// once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "log debug-level diagnostics")
}
