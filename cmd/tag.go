package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage hierarchical tags on a file",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <key> <path>",
	Short: "Attach a tag to a file, creating ancestor tags as needed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.AddTag(cmd.Context(), args[0], args[1]); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"key": args[0], "tag": args[1]})
		}
		fmt.Fprintf(Out(), "tagged %s %s\n", args[0], args[1])
		return nil
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:   "remove <key> <path>",
	Short: "Detach a tag from a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.RemoveTag(cmd.Context(), args[0], args[1]); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"key": args[0], "tag": args[1]})
		}
		fmt.Fprintf(Out(), "untagged %s %s\n", args[0], args[1])
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list <key>",
	Short: "List the tags attached to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := engine.ListTags(cmd.Context(), args[0])
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(tags)
		}
		for _, t := range tags {
			fmt.Fprintln(Out(), t.Path)
		}
		return nil
	},
}

func init() {
	tagCmd.AddCommand(tagAddCmd, tagRemoveCmd, tagListCmd)
	rootCmd.AddCommand(tagCmd)
}
