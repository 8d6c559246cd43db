// Search command: substring search over case and stage text.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qanoon-app/lawstore/pkg/types"
)

var (
	searchType   string
	searchStatus string
	searchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search cases and stages by text",
	Long: `Search looks for the query as a literal substring in case names,
descriptions, stage names, and stage input/output text.

Example:
  lawstore search ميراث
  lawstore search "breach of contract" --type commercial --status active`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchType, "type", "", "filter by legal category")
	searchCmd.Flags().StringVar(&searchStatus, "status", "", "filter by case status")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum results to return")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	results, err := db.Search().Find(query, types.SearchFilters{
		CaseType: searchType,
		Status:   searchStatus,
		Limit:    searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return emit(results, func() {
		if len(results) == 0 {
			fmt.Println("No matches found")
			return
		}
		for _, r := range results {
			fmt.Printf("%s  %-8s %s\n", r.CaseID, r.Type, r.CaseName)
			fmt.Printf("    %s\n", r.Snippet)
		}
		fmt.Printf("%d result(s)\n", len(results))
	})
}
