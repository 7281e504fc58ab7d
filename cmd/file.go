package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/tagbox/internal/store"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a single file's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := engine.GetFile(cmd.Context(), args[0])
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(f.ToJSON())
		}
		fmt.Fprintf(Out(), "%s  %s\n  title: %s\n", f.Key, f.Path, f.Title)
		return nil
	},
}

var pathCmd = &cobra.Command{
	Use:   "path <key>",
	Short: "Print a file's absolute on-disk path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := engine.GetFilePath(cmd.Context(), args[0])
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"path": p})
		}
		fmt.Fprintln(Out(), p)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <key> <field> <value>",
	Short: "Update a single metadata field on a file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var fields store.UpdateFieldSet
		value := args[2]
		switch args[1] {
		case "title":
			fields.Title = &value
		case "publisher":
			fields.Publisher = &value
		case "source_url":
			fields.SourceURL = &value
		case "category1":
			fields.Category1 = &value
		case "category2":
			fields.Category2 = &value
		case "category3":
			fields.Category3 = &value
		case "summary":
			fields.Summary = &value
		case "full_text":
			fields.FullText = &value
		default:
			return fmt.Errorf("unrecognized field %q", args[1])
		}
		if err := engine.UpdateFile(cmd.Context(), args[0], fields); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"key": args[0], "field": args[1]})
		}
		fmt.Fprintf(Out(), "updated %s.%s\n", args[0], args[1])
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "mv <key>",
	Short: "Recompute and apply a file's destination path from current templates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.MoveFile(cmd.Context(), args[0]); err != nil {
			return PrintJSONError(err)
		}
		f, err := engine.GetFile(cmd.Context(), args[0])
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(f.ToJSON())
		}
		fmt.Fprintf(Out(), "moved %s -> %s\n", args[0], f.Path)
		return nil
	},
}

var deleteReason string

var deleteCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Soft-delete a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.SoftDelete(cmd.Context(), args[0], deleteReason); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"key": args[0], "reason": deleteReason})
		}
		fmt.Fprintf(Out(), "deleted %s\n", args[0])
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <key>",
	Short: "Restore a soft-deleted file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.Restore(cmd.Context(), args[0]); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"key": args[0]})
		}
		fmt.Fprintf(Out(), "restored %s\n", args[0])
		return nil
	},
}

var touchCmd = &cobra.Command{
	Use:   "touch <key>",
	Short: "Record an access against a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.RecordAccess(cmd.Context(), args[0]); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"key": args[0]})
		}
		return nil
	},
}

var rehashCmd = &cobra.Command{
	Use:   "rehash <key>",
	Short: "Recompute and store a file's hash from its on-disk bytes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.UpdateFileHash(cmd.Context(), args[0]); err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(map[string]string{"key": args[0]})
		}
		fmt.Fprintf(Out(), "rehashed %s\n", args[0])
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <key>",
	Short: "Show a file's append-only audit log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := engine.FileHistory(cmd.Context(), args[0])
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(entries)
		}
		for _, e := range entries {
			fmt.Fprintf(Out(), "%s  %s\n", e.Action, e.Detail)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <key>",
	Short: "Show a file's access statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := engine.FileAccessStats(cmd.Context(), args[0])
		if err != nil {
			return PrintJSONError(err)
		}
		if JSON() {
			return PrintJSON(stats)
		}
		fmt.Fprintf(Out(), "access_count: %d\n", stats.AccessCount)
		return nil
	},
}

func init() {
	deleteCmd.Flags().StringVar(&deleteReason, "reason", "", "Reason recorded in history")
	rootCmd.AddCommand(getCmd, pathCmd, updateCmd, moveCmd, deleteCmd, restoreCmd, touchCmd, rehashCmd, historyCmd, statsCmd)
}
