// Stats command: aggregate usage summary.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	statsFrom string
	statsTo   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics for the store",
	Long: `Stats reports case counts grouped by type and status, the average
number of stages per case, and the most frequent recorded actions. The
--from/--to range bounds the action ranking only.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFrom, "from", "", "start of the action time range (RFC 3339)")
	statsCmd.Flags().StringVar(&statsTo, "to", "", "end of the action time range (RFC 3339)")
}

func runStats(cmd *cobra.Command, args []string) error {
	from, err := parseTimeFlag("from", statsFrom)
	if err != nil {
		return err
	}
	to, err := parseTimeFlag("to", statsTo)
	if err != nil {
		return err
	}

	summary, err := db.Analytics().Summary(from, to)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	return emit(summary, func() {
		fmt.Printf("Cases: %d\n", summary.TotalCases)
		fmt.Printf("Average stages per case: %.2f\n", summary.AvgStagesPer)
		fmt.Println("By type:")
		for k, v := range summary.CasesByType {
			fmt.Printf("  %-16s %d\n", k, v)
		}
		fmt.Println("By status:")
		for k, v := range summary.CasesByStatus {
			fmt.Printf("  %-16s %d\n", k, v)
		}
		fmt.Println("Top actions:")
		for _, a := range summary.TopActions {
			fmt.Printf("  %-24s %d\n", a.Action, a.Count)
		}
	})
}

func parseTimeFlag(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("parse --%s: %w", name, err)
	}
	return &t, nil
}
