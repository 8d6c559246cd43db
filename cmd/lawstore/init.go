// Init command: create configuration and data directories and write the
// first snapshot.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the lawstore profile",
	Long: `Create the configuration and data directories, bootstrap the schema,
and write the initial snapshot. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The store is already open and migrated by PersistentPreRunE;
		// persisting here guarantees the snapshot file exists even for
		// an empty fresh profile.
		if err := db.Persist(); err != nil {
			return fmt.Errorf("write initial snapshot: %w", err)
		}
		fmt.Println("Lawstore profile initialized")
		return nil
	},
}
