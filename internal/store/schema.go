// Schema bootstrap for the legal-case store. All DDL uses IF NOT EXISTS so
// ensureSchema is safe to run on every Open, including against a database
// reconstructed from a snapshot.
package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/qanoon-app/lawstore/pkg/types"
)

const (
	createCases = `CREATE TABLE IF NOT EXISTS cases (
    case_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    case_type TEXT NOT NULL DEFAULT 'general',
    party_role TEXT,
    complexity TEXT NOT NULL DEFAULT 'basic',
    status TEXT NOT NULL DEFAULT 'active',
    tags TEXT,
    description TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createStages = `CREATE TABLE IF NOT EXISTS stages (
    stage_id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,
    stage_name TEXT NOT NULL,
    stage_index INTEGER NOT NULL,
    input TEXT NOT NULL DEFAULT '',
    output TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending',
    created_at TEXT NOT NULL,
    completed_at TEXT,
    metadata TEXT,
    FOREIGN KEY (case_id) REFERENCES cases(case_id) ON DELETE CASCADE
);`

	createComments = `CREATE TABLE IF NOT EXISTS comments (
    comment_id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,
    stage_id TEXT,
    author TEXT NOT NULL,
    content TEXT NOT NULL,
    parent_id TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (case_id) REFERENCES cases(case_id) ON DELETE CASCADE,
    FOREIGN KEY (stage_id) REFERENCES stages(stage_id) ON DELETE SET NULL,
    FOREIGN KEY (parent_id) REFERENCES comments(comment_id) ON DELETE SET NULL
);`

	createTasks = `CREATE TABLE IF NOT EXISTS tasks (
    task_id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,
    stage_id TEXT,
    title TEXT NOT NULL,
    description TEXT,
    assignee TEXT,
    due_date TEXT,
    status TEXT NOT NULL DEFAULT 'open',
    priority TEXT NOT NULL DEFAULT 'medium',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (case_id) REFERENCES cases(case_id) ON DELETE CASCADE,
    FOREIGN KEY (stage_id) REFERENCES stages(stage_id) ON DELETE SET NULL
);`

	createExports = `CREATE TABLE IF NOT EXISTS exports (
    export_id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,
    export_type TEXT NOT NULL,
    filename TEXT NOT NULL,
    file_size INTEGER NOT NULL DEFAULT 0,
    preferences TEXT,
    created_at TEXT NOT NULL,
    FOREIGN KEY (case_id) REFERENCES cases(case_id) ON DELETE CASCADE
);`

	createSearchIndex = `CREATE TABLE IF NOT EXISTS search_index (
    entry_id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,
    stage_id TEXT,
    content TEXT NOT NULL,
    entry_type TEXT NOT NULL,
    tags TEXT,
    created_at TEXT NOT NULL,
    FOREIGN KEY (case_id) REFERENCES cases(case_id) ON DELETE CASCADE,
    FOREIGN KEY (stage_id) REFERENCES stages(stage_id) ON DELETE CASCADE
);`

	// analytics_events has no foreign key to cases: events recorded
	// against a case survive its deletion as audit history.
	createAnalyticsEvents = `CREATE TABLE IF NOT EXISTS analytics_events (
    event_id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL,
    action TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    metadata TEXT,
    duration INTEGER
);`

	createPreferences = `CREATE TABLE IF NOT EXISTS preferences (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createUsers = `CREATE TABLE IF NOT EXISTS users (
    user_id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    full_name TEXT NOT NULL,
    subscription_type TEXT NOT NULL DEFAULT 'free',
    subscription_expiry TEXT,
    created_at TEXT NOT NULL,
    last_login TEXT,
    is_active INTEGER NOT NULL DEFAULT 1
);`

	createSubscriptions = `CREATE TABLE IF NOT EXISTS subscriptions (
    subscription_id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    plan_type TEXT NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT,
    status TEXT NOT NULL DEFAULT 'active',
    FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
);`

	createLegacyMigrations = `CREATE TABLE IF NOT EXISTS legacy_migrations (
    migration_id TEXT PRIMARY KEY,
    migrated_cases INTEGER NOT NULL,
    migrated_stages INTEGER NOT NULL,
    completed_at TEXT NOT NULL
);`
)

const (
	idxCasesUpdated      = `CREATE INDEX IF NOT EXISTS idx_cases_updated ON cases(updated_at);`
	idxCasesType         = `CREATE INDEX IF NOT EXISTS idx_cases_type ON cases(case_type);`
	idxCasesStatus       = `CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status);`
	idxStagesCase        = `CREATE INDEX IF NOT EXISTS idx_stages_case ON stages(case_id, stage_index);`
	idxCommentsCase      = `CREATE INDEX IF NOT EXISTS idx_comments_case ON comments(case_id);`
	idxTasksCase         = `CREATE INDEX IF NOT EXISTS idx_tasks_case ON tasks(case_id);`
	idxExportsCase       = `CREATE INDEX IF NOT EXISTS idx_exports_case ON exports(case_id);`
	idxSearchCase        = `CREATE INDEX IF NOT EXISTS idx_search_case ON search_index(case_id);`
	idxAnalyticsCase     = `CREATE INDEX IF NOT EXISTS idx_analytics_case ON analytics_events(case_id);`
	idxAnalyticsAction   = `CREATE INDEX IF NOT EXISTS idx_analytics_action ON analytics_events(action);`
	idxAnalyticsTime     = `CREATE INDEX IF NOT EXISTS idx_analytics_time ON analytics_events(timestamp);`
	idxSubscriptionsUser = `CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions(user_id, status);`
)

// schemaDDL lists CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createCases,
	createStages,
	createComments,
	createTasks,
	createExports,
	createSearchIndex,
	createAnalyticsEvents,
	createPreferences,
	createUsers,
	createSubscriptions,
	createLegacyMigrations,
}

// indexDDL lists CREATE INDEX statements.
var indexDDL = []string{
	idxCasesUpdated,
	idxCasesType,
	idxCasesStatus,
	idxStagesCase,
	idxCommentsCase,
	idxTasksCase,
	idxExportsCase,
	idxSearchCase,
	idxAnalyticsCase,
	idxAnalyticsAction,
	idxAnalyticsTime,
	idxSubscriptionsUser,
}

// snapshotTables lists every table in load order (referenced tables
// first). Snapshot import and export walk this list.
var snapshotTables = []string{
	"cases",
	"stages",
	"comments",
	"tasks",
	"exports",
	"search_index",
	"analytics_events",
	"preferences",
	"users",
	"subscriptions",
	"legacy_migrations",
}

// schemaVersion is stamped into the preferences table so a future build
// can detect a snapshot written by a newer schema and refuse to load it.
const (
	schemaVersionKey = "schema_version"
	schemaVersion    = 1
)

// stampSchemaVersionLocked records the current schema version. Runs at
// Open after restore succeeds; the caller must hold s.mu.
func (s *Store) stampSchemaVersionLocked() error {
	_, err := s.db.Exec(
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		schemaVersionKey, strconv.Itoa(schemaVersion), formatTime(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("stamping schema version: %w", err)
	}
	return nil
}

// checkSchemaVersionTx validates the version stamp loaded from a snapshot
// before the load transaction commits. Snapshots without a stamp predate
// versioning and always load.
func checkSchemaVersionTx(tx *sql.Tx) error {
	var v string
	err := tx.QueryRow("SELECT value FROM main.preferences WHERE key = ?", schemaVersionKey).Scan(&v)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parsing schema version %q: %w", v, err)
	}
	if n > schemaVersion {
		return fmt.Errorf("%w: snapshot version %d, this build supports %d",
			types.ErrSchemaNewer, n, schemaVersion)
	}
	return nil
}

// ensureSchema creates all tables and indexes if absent. Idempotent; runs
// on every Open before any repository operation.
func ensureSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}
