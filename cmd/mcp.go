package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/tagbox/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp-serve",
	Short: "Run a Model Context Protocol server over stdio",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcpserver.Serve(engine)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
