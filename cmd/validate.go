package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/tagbox/internal/integrity"
)

var (
	validateRecursive bool
	validateRepair    bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Reconcile the catalogue against the on-disk library tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var root string
		if len(args) == 1 {
			root = args[0]
		}
		mode := integrity.ReportOnly
		if validateRepair {
			mode = integrity.Repair
		}
		report, err := engine.ValidateFilesInPath(cmd.Context(), root, validateRecursive, mode)
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(report)
		}
		var missing, drifted int
		for _, f := range report.Findings {
			fmt.Fprintf(Out(), "%s  %s  %s\n", f.Status, f.Key, f.Path)
			switch f.Status {
			case integrity.StatusMissing:
				missing++
			case integrity.StatusDrifted:
				drifted++
			}
		}
		fmt.Fprintf(Out(), "%d checked, %d missing, %d drifted\n", report.Checked, missing, drifted)
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "config-check",
	Short: "Check the loaded configuration against values recorded at bootstrap",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := engine.CheckConfigCompatibility(cmd.Context()); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]bool{"compatible": true})
		}
		fmt.Fprintln(Out(), "compatible")
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateRecursive, "recursive", true, "Recurse into subdirectories")
	validateCmd.Flags().BoolVar(&validateRepair, "repair", false, "Update stored hashes on drift instead of only reporting")
	rootCmd.AddCommand(validateCmd, configCheckCmd)
}
