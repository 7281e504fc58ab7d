package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	rebuildApply   bool
	rebuildWorkers int
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild [key]",
	Short: "Recompute destination paths against the current templates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		}
		moves, err := engine.Rebuild(cmd.Context(), key, rebuildApply, rebuildWorkers)
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(moves)
		}
		for _, m := range moves {
			if m.Err != nil {
				fmt.Fprintf(Out(), "FAIL %s: %v\n", m.Key, m.Err)
				continue
			}
			if !m.Changed {
				continue
			}
			verb := "would move"
			if rebuildApply {
				verb = "moved"
			}
			fmt.Fprintf(Out(), "%s %s: %s -> %s\n", verb, m.Key, m.From, m.To)
		}
		return nil
	},
}

func init() {
	rebuildCmd.Flags().BoolVar(&rebuildApply, "apply", false, "Apply the recomputed moves instead of only previewing them")
	rebuildCmd.Flags().IntVar(&rebuildWorkers, "workers", 0, "Worker pool size (0 uses the configured default)")
	rootCmd.AddCommand(rebuildCmd)
}
