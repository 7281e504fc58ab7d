package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/tagbox/internal/search"
	"github.com/nerdneilsfield/tagbox/internal/store"
)

var (
	searchLimit   int
	searchOffset  int
	searchSort    string
	searchDesc    bool
	searchDeleted bool
	searchFuzzy   bool
	searchDebug   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalogue with the query DSL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := search.Options{
			Limit:          searchLimit,
			Offset:         searchOffset,
			SortBy:         search.SortField(searchSort),
			IncludeDeleted: searchDeleted,
		}
		if searchDesc {
			opts.SortDirection = search.Desc
		} else {
			opts.SortDirection = search.Asc
		}

		ctx := cmd.Context()

		if searchDebug {
			dbg, err := engine.QueryDebug(ctx, args[0], opts)
			if err != nil {
				return PrintJSONError(err)
			}
			if JSON() {
				return PrintJSON(dbg)
			}
			fmt.Fprintf(Out(), "%s\nparams: %v\nestimated_row_count: %d\n", dbg.SQL, dbg.Params, dbg.EstimatedRowCount)
			return nil
		}

		var entries []store.File
		var total int64
		var err error
		if searchFuzzy {
			r, serr := engine.FuzzySearch(ctx, args[0], opts)
			entries, total, err = r.Entries, r.TotalCount, serr
		} else {
			r, serr := engine.Search(ctx, args[0], opts)
			entries, total, err = r.Entries, r.TotalCount, serr
		}
		if err != nil {
			return PrintJSONError(err)
		}
		return printSearchResult(entries, total, opts.Offset, opts.Limit)
	},
}

func printSearchResult(entries []store.File, total int64, offset, limit int) error {
	if JSON() {
		jsonEntries := make([]store.FileJSON, len(entries))
		for i, f := range entries {
			jsonEntries[i] = f.ToJSON()
		}
		return PrintJSON(map[string]any{
			"entries":     jsonEntries,
			"total_count": total,
			"offset":      offset,
			"limit":       limit,
		})
	}
	for _, f := range entries {
		fmt.Fprintf(Out(), "%s  %s\n", f.Key, f.Path)
	}
	fmt.Fprintf(Out(), "(%d of %d)\n", len(entries), total)
	return nil
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Result offset")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "Sort field: imported_at, updated_at, title, year, access_count, rank")
	searchCmd.Flags().BoolVar(&searchDesc, "desc", false, "Sort descending")
	searchCmd.Flags().BoolVar(&searchDeleted, "include-deleted", false, "Include soft-deleted files")
	searchCmd.Flags().BoolVar(&searchFuzzy, "fuzzy", false, "Fuzzy/autocomplete match instead of full DSL")
	searchCmd.Flags().BoolVar(&searchDebug, "debug", false, "Print the compiled SQL instead of running it")
	rootCmd.AddCommand(searchCmd)
}
