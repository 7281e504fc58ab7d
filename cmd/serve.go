package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/tagbox/internal/rpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the newline-delimited JSON-RPC stdio server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		srv := rpc.New(engine, slog.Default())
		return srv.Serve(cmd.Context(), os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
