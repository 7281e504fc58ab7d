package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/tagbox/internal/store"
)

var linkCmd = &cobra.Command{
	Use:   "link <from> <to> <relation>",
	Short: "Create or restore a directed relation between two files",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := engine.LinkFiles(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(l)
		}
		fmt.Fprintf(Out(), "linked %s -%s-> %s\n", args[0], args[2], args[1])
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <from> <to> <relation>",
	Short: "Remove a directed relation between two files",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.UnlinkFiles(cmd.Context(), args[0], args[1], args[2]); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"from": args[0], "to": args[1], "relation": args[2]})
		}
		fmt.Fprintf(Out(), "unlinked %s -%s-> %s\n", args[0], args[2], args[1])
		return nil
	},
}

var outgoingCmd = &cobra.Command{
	Use:   "outgoing <key>",
	Short: "List relations originating at a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := engine.OutgoingLinks(cmd.Context(), args[0])
		if err != nil {
			return PrintJSONError(err)
		}
		return printLinks(links)
	},
}

var incomingCmd = &cobra.Command{
	Use:   "incoming <key>",
	Short: "List relations targeting a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := engine.IncomingLinks(cmd.Context(), args[0])
		if err != nil {
			return PrintJSONError(err)
		}
		return printLinks(links)
	},
}

func printLinks(links []store.Link) error {
	if JSON() {
		return PrintJSON(links)
	}
	for _, l := range links {
		fmt.Fprintf(Out(), "%s -%s-> %s\n", l.FromKey, l.Relation, l.ToKey)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(linkCmd, unlinkCmd, outgoingCmd, incomingCmd)
}
