package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/tagbox/internal/config"
	tagbox "github.com/nerdneilsfield/tagbox"
)

var initCmd = &cobra.Command{
	Use:   "init <db-path> <library-root>",
	Short: "Initialise a new catalogue database and library root",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &config.Config{
			Database: config.Database{Path: args[0]},
			Storage: config.Storage{
				RootDir:          args[1],
				ClassifyTemplate: "{category1}",
				RenameTemplate:   "{title}",
				OnImport:         "copy",
			},
		}
		if err := cfg.Validate(); err != nil {
			return PrintJSONError(err)
		}

		e, err := tagbox.Open(cfg)
		if err != nil {
			return PrintJSONError(err)
		}
		defer e.Close()

		if err := cfg.SaveScope(config.ScopeLocal); err != nil {
			return PrintJSONError(fmt.Errorf("save config: %w", err))
		}

		if JSON() {
			return PrintJSON(map[string]string{"database": args[0], "library_root": args[1]})
		}
		fmt.Fprintf(Out(), "initialised %s (library root %s)\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
