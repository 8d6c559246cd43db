// Case list command.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qanoon-app/lawstore/internal/store"
)

var (
	caseListType   string
	caseListStatus string
	caseListLimit  int
	caseListOffset int
)

var caseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runCaseList,
}

func init() {
	caseListCmd.Flags().StringVar(&caseListType, "type", "", "filter by legal category")
	caseListCmd.Flags().StringVar(&caseListStatus, "status", "", "filter by status")
	caseListCmd.Flags().IntVar(&caseListLimit, "limit", 0, "maximum cases to return")
	caseListCmd.Flags().IntVar(&caseListOffset, "offset", 0, "cases to skip")
}

func runCaseList(cmd *cobra.Command, args []string) error {
	cases, err := db.Cases().List(store.CaseFilters{
		CaseType: caseListType,
		Status:   caseListStatus,
		Limit:    caseListLimit,
		Offset:   caseListOffset,
	})
	if err != nil {
		return fmt.Errorf("list cases: %w", err)
	}

	return emit(cases, func() {
		if len(cases) == 0 {
			fmt.Println("No cases found")
			return
		}
		for _, c := range cases {
			fmt.Printf("%s  %-14s %-12s %-10s %s\n",
				c.CaseID, c.CaseType, c.Complexity, c.Status, c.Name)
		}
	})
}
