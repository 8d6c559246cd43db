// Migrate command: report the legacy import that ran (or was skipped) on
// startup.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Show the legacy migration status",
	Long: `The legacy import runs automatically on the first boot of a profile
that has a legacy.json export in its data directory. This command shows
the recorded runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := db.Migrations().History()
		if err != nil {
			return fmt.Errorf("read migration history: %w", err)
		}

		return emit(records, func() {
			if len(records) == 0 {
				fmt.Println("No legacy migration has run (no legacy.json found)")
				return
			}
			for _, rec := range records {
				fmt.Printf("%s  cases=%d stages=%d\n",
					rec.CompletedAt.Format("2006-01-02 15:04:05"),
					rec.MigratedCases, rec.MigratedStages)
			}
		})
	},
}
