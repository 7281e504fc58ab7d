package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	tagbox "github.com/nerdneilsfield/tagbox"
)

var (
	listPrefix  string
	listDeleted bool
	listLimit   int
	listOffset  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued files under a path prefix",
	RunE: func(cmd *cobra.Command, _ []string) error {
		files, err := engine.List(cmd.Context(), tagbox.ListOptions{
			PathPrefix:     listPrefix,
			IncludeDeleted: listDeleted,
			Limit:          listLimit,
			Offset:         listOffset,
		})
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			jsonEntries := make([]any, len(files))
			for i, f := range files {
				jsonEntries[i] = f.ToJSON()
			}
			return PrintJSON(jsonEntries)
		}
		for _, f := range files {
			fmt.Fprintf(Out(), "%s  %s\n", f.Key, f.Path)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "Path prefix filter")
	listCmd.Flags().BoolVar(&listDeleted, "include-deleted", false, "Include soft-deleted files")
	listCmd.Flags().IntVar(&listLimit, "limit", 100, "Maximum results")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Result offset")
	rootCmd.AddCommand(listCmd)
}
