// Stage command group: add, list, and advance stages within a case.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qanoon-app/lawstore/pkg/types"
)

var (
	stageAddName   string
	stageAddIndex  int
	stageAddInput  string
	stageAddOutput string
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Manage case stages",
}

var stageAddCmd = &cobra.Command{
	Use:   "add <case-id>",
	Short: "Add a stage to a case",
	Args:  cobra.ExactArgs(1),
	RunE:  runStageAdd,
}

var stageListCmd = &cobra.Command{
	Use:   "list <case-id>",
	Short: "List stages of a case in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runStageList,
}

var stageAdvanceCmd = &cobra.Command{
	Use:   "advance <stage-id> <status>",
	Short: "Advance a stage to a new status",
	Long: `Advance moves a stage along pending -> in_progress -> completed or
failed. Reaching completed stamps the completion time.`,
	Args: cobra.ExactArgs(2),
	RunE: runStageAdvance,
}

func init() {
	stageAddCmd.Flags().StringVar(&stageAddName, "name", "", "stage name (required)")
	stageAddCmd.Flags().IntVar(&stageAddIndex, "index", 0, "ordering index within the case")
	stageAddCmd.Flags().StringVar(&stageAddInput, "input", "", "stage input text")
	stageAddCmd.Flags().StringVar(&stageAddOutput, "output", "", "stage output text")
	_ = stageAddCmd.MarkFlagRequired("name")

	stageCmd.AddCommand(stageAddCmd)
	stageCmd.AddCommand(stageListCmd)
	stageCmd.AddCommand(stageAdvanceCmd)
}

func runStageAdd(cmd *cobra.Command, args []string) error {
	st := &types.Stage{
		CaseID:     args[0],
		StageName:  stageAddName,
		StageIndex: stageAddIndex,
		Input:      stageAddInput,
		Output:     stageAddOutput,
	}
	id, err := db.Stages().Create(st)
	if err != nil {
		return fmt.Errorf("create stage: %w", err)
	}
	if _, err := db.Analytics().Track(args[0], "stage_created", nil, nil); err != nil {
		logger.Warn("tracking stage creation failed")
	}
	return emit(st, func() {
		fmt.Printf("Created stage: %s\n", id)
	})
}

func runStageList(cmd *cobra.Command, args []string) error {
	stages, err := db.Stages().ForCase(args[0])
	if err != nil {
		return fmt.Errorf("list stages: %w", err)
	}
	return emit(stages, func() {
		if len(stages) == 0 {
			fmt.Println("No stages found")
			return
		}
		for _, st := range stages {
			fmt.Printf("%s  [%d] %-12s %s\n", st.StageID, st.StageIndex, st.Status, st.StageName)
		}
	})
}

func runStageAdvance(cmd *cobra.Command, args []string) error {
	st, err := db.Stages().Get(args[0])
	if err != nil {
		return fmt.Errorf("get stage %s: %w", args[0], err)
	}
	if err := st.AdvanceTo(args[1]); err != nil {
		return fmt.Errorf("advance stage: %w", err)
	}
	if err := db.Stages().Update(st); err != nil {
		return fmt.Errorf("update stage: %w", err)
	}
	return emit(st, func() {
		fmt.Printf("%s -> %s\n", st.StageID, st.Status)
	})
}
