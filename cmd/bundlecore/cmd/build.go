package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/evanw/bundlecore/internal/resolver"
	"github.com/evanw/bundlecore/pkg/bundlecore"
)

var buildCmd = &cobra.Command{
	Use:   "build [entry points]",
	Short: "Load and link a module graph from one or more entry points",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().Bool("shim-missing-exports", false, "synthesize an undefined binding for a missing named export instead of failing")
	buildCmd.Flags().Bool("preserve-symlinks", false, "do not resolve symlinks to their real path")
	buildCmd.Flags().StringSlice("external", nil, "glob pattern for specifiers to treat as external (repeatable)")
	buildCmd.Flags().Bool("json", false, "print the linked order and diagnostics as JSON")
}

func runBuild(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	shim, _ := cmd.Flags().GetBool("shim-missing-exports")
	preserveSymlinks, _ := cmd.Flags().GetBool("preserve-symlinks")
	externalGlobs, _ := cmd.Flags().GetStringSlice("external")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg := bundlecore.Config{
		PreserveSymlinks:   preserveSymlinks,
		ShimMissingExports: shim,
		Logger:             log,
	}
	if len(externalGlobs) > 0 {
		cfg.IsExternal = resolver.GlobIsExternal(externalGlobs)
	}

	out, errs := bundlecore.Build(context.Background(), args, cfg)
	if asJSON {
		printJSON(out, errs)
	} else {
		printText(cmd, out, errs)
	}

	if len(errs) > 0 {
		return fmt.Errorf("build failed with %d error(s)", len(errs))
	}
	return nil
}

func printJSON(out *bundlecore.Output, errs []error) {
	type errOut struct {
		Error string `json:"error"`
	}
	var errStrs []errOut
	for _, e := range errs {
		errStrs = append(errStrs, errOut{Error: e.Error()})
	}

	var order []string
	if out != nil {
		for _, id := range out.Order {
			order = append(order, id.String())
		}
	}

	payload := struct {
		Order  []string `json:"order"`
		Errors []errOut `json:"errors,omitempty"`
	}{Order: order, Errors: errStrs}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func printText(cmd *cobra.Command, out *bundlecore.Output, errs []error) {
	if out != nil {
		for _, id := range out.Order {
			fmt.Fprintln(cmd.OutOrStdout(), id.String())
		}
		for _, msg := range out.Msgs {
			if msg.Module != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (%s): %s\n", msg.Kind, msg.Module, msg.ID, msg.Text)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", msg.Kind, msg.Text)
			}
		}
	}
	for _, e := range errs {
		fmt.Fprintln(cmd.ErrOrStderr(), e)
	}
}
