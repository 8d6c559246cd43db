// Import command: replace the store contents from a snapshot file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the store contents from a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	if err := db.ImportSnapshot(data); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return emit(map[string]string{"imported": args[0]}, func() {
		fmt.Printf("imported %s\n", args[0])
	})
}
