// Package main provides the lawstore CLI: an embedded legal-case store
// with durable snapshots, legacy import, search, analytics, and account
// management.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qanoon-app/lawstore/internal/migrate"
	"github.com/qanoon-app/lawstore/internal/paths"
	"github.com/qanoon-app/lawstore/internal/store"
	"github.com/qanoon-app/lawstore/pkg/lawstore"
	"github.com/qanoon-app/lawstore/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagDurable   bool
	flagVerbose   bool
)

// configDataDir and configDurability hold values loaded from config.yaml.
// Set by PersistentPreRunE so all subcommands can use them.
var (
	configDataDir    string
	configDurability string
)

// db is the process-wide store instance, opened on startup. Only the
// version command runs without it.
var db *store.Store

// logger backs the store and bridge; verbose mode switches it from nop
// to development output on stderr.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:     "lawstore",
	Short:   "Lawstore is an embedded data store for legal case files",
	Version: lawstore.Version,
	Long: `Lawstore manages legal cases, their processing stages, comments,
tasks, and export history in an embedded relational store. The store
lives in memory during a session and snapshots itself to the profile's
data directory after mutations.`,
	SilenceUsage:       true,
	PersistentPreRunE:  openStore,
	PersistentPostRunE: closeStore,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.lawstore)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.lawstore-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagDurable, "durable", false, "fail on snapshot persist errors instead of logging them")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log store internals to stderr")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(caseCmd)
	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(compactCmd)
	rootCmd.AddCommand(userCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}

// openStore loads config, opens the store, and runs the legacy migration
// bridge once per fresh profile.
func openStore(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	if flagVerbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		logger = l
	}

	configDir, err := paths.ResolveConfigDir(flagConfigDir)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	configDataDir = cfg.GetString(cfgKeyDataDir)
	configDurability = cfg.GetString(cfgKeyDurability)

	dataDir, err := paths.ResolveDataDir(flagDataDir, configDataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	durability := configDurability
	if flagDurable {
		durability = types.DurabilityDurable
	}

	db = store.New(logger)
	if err := db.Open(types.Config{DataDir: dataDir, Durability: durability}); err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	// Backfill from the legacy store before any command touches the
	// repositories. Guarded by the migration audit trail, so this is a
	// no-op on every boot after the first.
	bridge := migrate.NewBridge(db, migrate.NewFileStore(dataDir), nil, logger)
	bridge.RunIfNeeded()

	return nil
}

// closeStore persists and releases the store.
func closeStore(cmd *cobra.Command, args []string) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
