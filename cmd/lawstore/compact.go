// Compact command: vacuum and persist the store.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Vacuum the store and rewrite the snapshot",
	RunE:  runCompact,
}

func runCompact(cmd *cobra.Command, args []string) error {
	if err := db.Compact(); err != nil {
		return fmt.Errorf("compact: %w", err)
	}
	return emit(map[string]string{"status": "compacted"}, func() {
		fmt.Println("compacted")
	})
}
