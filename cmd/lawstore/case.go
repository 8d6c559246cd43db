// Case command group.
package main

import "github.com/spf13/cobra"

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Manage legal cases",
}

func init() {
	caseCmd.AddCommand(caseAddCmd)
	caseCmd.AddCommand(caseListCmd)
	caseCmd.AddCommand(caseShowCmd)
	caseCmd.AddCommand(caseDeleteCmd)
}
