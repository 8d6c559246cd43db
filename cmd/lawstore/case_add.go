// Case add command creates a new case.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qanoon-app/lawstore/pkg/types"
)

var (
	caseAddName        string
	caseAddType        string
	caseAddParty       string
	caseAddComplexity  string
	caseAddTags        string
	caseAddDescription string
)

var caseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new case",
	Long: `Add creates a new case. Unset classification fields default to a
general, basic, active case.

Example:
  lawstore case add --name "Estate of Haddad" --type inheritance
  lawstore case add --name "Dispute 44/2026" --type rental --complexity intermediate`,
	Args: cobra.NoArgs,
	RunE: runCaseAdd,
}

func init() {
	caseAddCmd.Flags().StringVar(&caseAddName, "name", "", "name for the case (required)")
	caseAddCmd.Flags().StringVar(&caseAddType, "type", "", "legal category (default: general)")
	caseAddCmd.Flags().StringVar(&caseAddParty, "party-role", "", "role of the represented party")
	caseAddCmd.Flags().StringVar(&caseAddComplexity, "complexity", "", "basic, intermediate, or advanced")
	caseAddCmd.Flags().StringVar(&caseAddTags, "tags", "", "comma-separated labels")
	caseAddCmd.Flags().StringVar(&caseAddDescription, "description", "", "free-form description")
	_ = caseAddCmd.MarkFlagRequired("name")
}

func runCaseAdd(cmd *cobra.Command, args []string) error {
	c := &types.Case{
		Name:        caseAddName,
		CaseType:    caseAddType,
		PartyRole:   caseAddParty,
		Complexity:  caseAddComplexity,
		Description: caseAddDescription,
	}
	if caseAddTags != "" {
		c.Tags = strings.Split(caseAddTags, ",")
	}

	id, err := db.Cases().Create(c)
	if err != nil {
		return fmt.Errorf("create case: %w", err)
	}

	if _, err := db.Analytics().Track(id, "case_created", nil, nil); err != nil {
		logger.Warn("tracking case creation failed")
	}

	return emit(c, func() {
		fmt.Printf("Created case: %s\n", id)
	})
}
