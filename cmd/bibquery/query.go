package main

import (
	"github.com/spf13/cobra"

	"pubfeed/services"
)

var queryCmd = &cobra.Command{
	Use:   "query <file.bib>",
	Short: "Run a paginated, filtered query and print the page",
	Long: `query applies search, sort, pagination and grouping exactly like
GET /api/publications and prints the {data, pagination} response.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pubs, err := parseFile(cmd, args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		params := services.QueryParams{}
		params.Page, _ = flags.GetInt("page")
		params.Limit, _ = flags.GetInt("limit")
		params.Sort, _ = flags.GetString("sort")
		params.Direction, _ = flags.GetString("direction")
		params.Group, _ = flags.GetString("group")
		params.Search, _ = flags.GetString("search")
		params.Mode, _ = flags.GetString("mode")
		lang, _ := flags.GetString("lang")

		engine := services.NewQueryEngine(lang, 20, 0)
		return writeJSON(cmd.OutOrStdout(), engine.Run(pubs, params))
	},
}

func init() {
	queryCmd.Flags().Int("page", 1, "page number (1-based)")
	queryCmd.Flags().Int("limit", 20, "page size")
	queryCmd.Flags().String("sort", services.SortTime, "sort key: time, title, author, citations")
	queryCmd.Flags().String("direction", services.DirectionDesc, "sort direction: asc or desc")
	queryCmd.Flags().String("group", services.GroupYear, "grouping: year or none")
	queryCmd.Flags().String("search", "", "whitespace-separated search terms (all must match)")
	queryCmd.Flags().String("mode", services.ModeFull, "response mode: full or minimal")
	queryCmd.Flags().String("lang", "en", "collation language for title and author sorting")

	rootCmd.AddCommand(queryCmd)
}
