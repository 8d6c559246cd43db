// Case show command: one case with its stages, comments, and tasks.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qanoon-app/lawstore/pkg/types"
)

var caseShowCmd = &cobra.Command{
	Use:   "show <case-id>",
	Short: "Show a case with its stages, comments, and tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runCaseShow,
}

// caseDetail bundles the show output for JSON mode.
type caseDetail struct {
	Case     *types.Case      `json:"case"`
	Stages   []*types.Stage   `json:"stages"`
	Comments []*types.Comment `json:"comments"`
	Tasks    []*types.Task    `json:"tasks"`
	Exports  []*types.Export  `json:"exports"`
}

func runCaseShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	c, err := db.Cases().Get(id)
	if err != nil {
		return fmt.Errorf("get case %s: %w", id, err)
	}

	detail := caseDetail{Case: c}
	if detail.Stages, err = db.Stages().ForCase(id); err != nil {
		return fmt.Errorf("get stages: %w", err)
	}
	if detail.Comments, err = db.Comments().ForCase(id, nil); err != nil {
		return fmt.Errorf("get comments: %w", err)
	}
	if detail.Tasks, err = db.Tasks().ForCase(id, nil); err != nil {
		return fmt.Errorf("get tasks: %w", err)
	}
	if detail.Exports, err = db.Exports().ForCase(id); err != nil {
		return fmt.Errorf("get exports: %w", err)
	}

	return emit(detail, func() {
		fmt.Printf("%s (%s)\n", c.Name, c.CaseID)
		fmt.Printf("  type=%s complexity=%s status=%s\n", c.CaseType, c.Complexity, c.Status)
		if len(c.Tags) > 0 {
			fmt.Printf("  tags=%s\n", strings.Join(c.Tags, ","))
		}
		fmt.Printf("  stages=%d comments=%d tasks=%d exports=%d\n",
			len(detail.Stages), len(detail.Comments), len(detail.Tasks), len(detail.Exports))
		for _, st := range detail.Stages {
			fmt.Printf("  [%d] %-12s %s\n", st.StageIndex, st.Status, st.StageName)
		}
	})
}
