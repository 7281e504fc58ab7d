package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var authorCmd = &cobra.Command{
	Use:   "author",
	Short: "Manage author identities",
}

var authorAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new canonical author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := engine.AddAuthor(cmd.Context(), args[0])
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(a)
		}
		fmt.Fprintf(Out(), "%s  %s\n", a.Key, a.Name)
		return nil
	},
}

var authorRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Soft-delete an author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.RemoveAuthor(cmd.Context(), args[0]); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"key": args[0]})
		}
		fmt.Fprintf(Out(), "removed %s\n", args[0])
		return nil
	},
}

var authorMergeCmd = &cobra.Command{
	Use:   "merge <from> <to>",
	Short: "Alias one author onto another's canonical identity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.MergeAuthors(cmd.Context(), args[0], args[1]); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"from": args[0], "to": args[1]})
		}
		fmt.Fprintf(Out(), "merged %s into %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	authorCmd.AddCommand(authorAddCmd, authorRemoveCmd, authorMergeCmd)
	rootCmd.AddCommand(authorCmd)
}
