// root.go defines the root command and CLI execution entry point.
//
// Design: PersistentPreRunE opens the engine lazily - only commands that
// need the store trigger it. This lets the commands in noEngineCommands
// (init, version, help) work without a database existing yet, the same lazy-init
// split the teacher's root command keeps between store-needing and
// store-free commands.
package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/tagbox/internal/config"
	"github.com/nerdneilsfield/tagbox/internal/tlog"
	tagbox "github.com/nerdneilsfield/tagbox"
)

// noEngineCommands lists top-level commands that run without an open
// engine - either because they bootstrap one (init) or never touch the
// store (version, help).
var noEngineCommands = map[string]bool{
	"init":    true,
	"version": true,
	"help":    true,
}

var engine *tagbox.Engine

var rootCmd = &cobra.Command{
	Use:   "tagbox",
	Short: "Embeddable offline-first file-management engine",
	Long:  `A content-addressed file catalogue with hierarchical tags, author identities, typed links, and a full-text search DSL.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}

		cmdName := topLevelCmdName(cmd)
		if noEngineCommands[cmdName] {
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return PrintJSONError(fmt.Errorf("load config: %w", err))
		}
		e, err := tagbox.Open(cfg)
		if err != nil {
			return PrintJSONError(fmt.Errorf("open engine: %w", err))
		}
		engine = e
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	if dir := ConfigDir(); dir != "" {
		return config.LoadScope(config.ScopeLocal)
	}
	return config.Load()
}

// topLevelCmdName returns the name of the top-level command (direct child
// of root). For "tagbox tag add <key> <path>", returns "tag".
func topLevelCmdName(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// Execute runs the root command and handles process lifecycle.
func Execute() {
	tlog.Default()

	err := rootCmd.Execute()

	if engine != nil {
		if closeErr := engine.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: closing engine: %v\n", closeErr)
		}
	}

	if err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
