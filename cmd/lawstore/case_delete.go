// Case delete command.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var caseDeleteCmd = &cobra.Command{
	Use:   "delete <case-id>",
	Short: "Delete a case and everything attached to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCaseDelete,
}

func runCaseDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := db.Cases().Delete(id); err != nil {
		return fmt.Errorf("delete case %s: %w", id, err)
	}
	if _, err := db.Analytics().Track(id, "case_deleted", nil, nil); err != nil {
		logger.Warn("track case deletion failed")
	}
	return emit(map[string]string{"deleted": id}, func() {
		fmt.Printf("deleted %s\n", id)
	})
}
