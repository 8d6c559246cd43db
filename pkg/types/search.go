package types

import "time"

// Search entry types, identifying which text a SearchEntry shadows.
const (
	SearchEntryCase   = "case"
	SearchEntryStage  = "stage"
	SearchEntryInput  = "input"
	SearchEntryOutput = "output"
)

// SearchEntry is a row in the denormalized search shadow table. Every case
// or stage mutation that changes searchable text upserts a corresponding
// entry, so substring search never scans the primary tables.
type SearchEntry struct {
	EntryID   string    // UUID v7, generated on creation.
	CaseID    string    // Owning case (cascade delete).
	StageID   *string   // Set for stage-derived entries.
	Content   string    // The indexed text.
	Type      string    // One of the SearchEntry constants.
	Tags      []string  // Copied from the owning case.
	CreatedAt time.Time // Timestamp of the last upsert.
}

// SearchResult is one hit returned by Search.
type SearchResult struct {
	CaseID    string
	StageID   *string
	Type      string
	Snippet   string
	CaseName  string
	CaseType  string
	Status    string
	UpdatedAt time.Time
}

// SearchFilters narrows a search to cases of a given type or status.
// Limit caps the number of results; zero means the default cap.
type SearchFilters struct {
	CaseType string
	Status   string
	Limit    int
}

// AnalyticsEvent is an append-only usage record. Events are never updated
// and survive deletion of their case as historical audit data.
type AnalyticsEvent struct {
	EventID   string         // UUID v7, generated on creation.
	CaseID    string         // Case the action applied to. Not a foreign key.
	Action    string         // Free-form action name ("case_created", "migration", ...).
	Timestamp time.Time      // When the action happened.
	Metadata  map[string]any // Optional structured detail (stored as JSON).
	Duration  *int64         // Optional duration in milliseconds.
}

// ActionCount is one entry of the top-actions ranking.
type ActionCount struct {
	Action string
	Count  int64
}

// AnalyticsSummary aggregates store-wide usage, computed by SQL aggregate
// queries rather than application loops.
type AnalyticsSummary struct {
	TotalCases     int64
	CasesByType    map[string]int64
	CasesByStatus  map[string]int64
	AvgStagesPer   float64
	TopActions     []ActionCount // At most ten, most frequent first.
	From, To       *time.Time    // The time range the summary covers, if bounded.
}

// Preference is a store-global key/value setting. Keys are unique; values
// are opaque strings.
type Preference struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
