package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/tagbox/internal/extract"
	"github.com/nerdneilsfield/tagbox/internal/importer"
	"github.com/nerdneilsfield/tagbox/internal/progress"
	"github.com/nerdneilsfield/tagbox/internal/tberr"
)

var (
	importTitle     string
	importAuthors   []string
	importTags      []string
	importCategory1 string
	importCategory2 string
	importCategory3 string
	importSummary   string
	importYear      int
)

var importCmd = &cobra.Command{
	Use:   "import <path> [path...]",
	Short: "Import one or more files into the catalogue",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		override := extract.ImportMetadata{
			Title:     importTitle,
			Authors:   importAuthors,
			Tags:      importTags,
			Category1: importCategory1,
			Category2: importCategory2,
			Category3: importCategory3,
			Summary:   importSummary,
			Year:      importYear,
		}

		ctx := cmd.Context()
		if len(args) == 1 {
			f, err := engine.ImportFile(ctx, args[0], override)
			if err != nil {
				if JSON() {
					return PrintJSON(map[string]string{"error": err.Error(), "code": string(tberr.KindOf(err))})
				}
				return err
			}
			if JSON() {
				return PrintJSON(f.ToJSON())
			}
			fmt.Fprintf(Out(), "imported %s -> %s\n", args[0], f.Path)
			return nil
		}

		overrides := map[string]extract.ImportMetadata{}
		var onProgress func(importer.Result)
		if !JSON() {
			p := progress.New("importing", len(args))
			defer p.Done()
			onProgress = func(importer.Result) {
				p.Increment()
				p.Print()
			}
		}
		results := engine.ImportFiles(ctx, args, overrides, onProgress)
		if JSON() {
			return PrintJSON(results)
		}
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(Out(), "FAIL %s: %v\n", r.Path, r.Err)
				continue
			}
			fmt.Fprintf(Out(), "ok   %s -> %s\n", r.Path, r.File.Path)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importTitle, "title", "", "Override title")
	importCmd.Flags().StringSliceVar(&importAuthors, "author", nil, "Override authors (repeatable)")
	importCmd.Flags().StringSliceVar(&importTags, "tag", nil, "Override tags (repeatable)")
	importCmd.Flags().StringVar(&importCategory1, "category1", "", "Override category1")
	importCmd.Flags().StringVar(&importCategory2, "category2", "", "Override category2")
	importCmd.Flags().StringVar(&importCategory3, "category3", "", "Override category3")
	importCmd.Flags().StringVar(&importSummary, "summary", "", "Override summary")
	importCmd.Flags().IntVar(&importYear, "year", 0, "Override year")
	rootCmd.AddCommand(importCmd)
}
