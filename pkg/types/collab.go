package types

import "time"

// Comment is a note attached to a case, optionally scoped to a stage and
// optionally replying to another comment. Deleting the parent comment sets
// ParentID to nil on replies rather than cascading.
type Comment struct {
	CommentID string    // UUID v7, generated on creation.
	CaseID    string    // Owning case (cascade delete).
	StageID   *string   // Optional stage scope.
	Author    string    // Display name of the author.
	Content   string    // Comment body.
	ParentID  *string   // Optional parent comment (reply threading).
	CreatedAt time.Time // Timestamp of creation.
	UpdatedAt time.Time // Timestamp of last modification.
}

// Task statuses.
const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task priorities.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task is a to-do item attached to a case, optionally scoped to a stage.
type Task struct {
	TaskID      string     // UUID v7, generated on creation.
	CaseID      string     // Owning case (cascade delete).
	StageID     *string    // Optional stage scope.
	Title       string     // Required, non-empty.
	Description string     // Optional.
	Assignee    string     // Optional.
	DueDate     *time.Time // Optional; task lists order by COALESCE(due_date, created_at).
	Status      string     // One of the TaskStatus constants.
	Priority    string     // One of the TaskPriority constants.
	CreatedAt   time.Time  // Timestamp of creation.
	UpdatedAt   time.Time  // Timestamp of last modification.
}

// Export artifact types.
const (
	ExportTypePDF   = "pdf"
	ExportTypeDocx  = "docx"
	ExportTypeExcel = "excel"
)

// Export is an append-only audit record of a generated artifact. Exports
// are never updated; they disappear only when their case is deleted.
type Export struct {
	ExportID    string         // UUID v7, generated on creation.
	CaseID      string         // Owning case (cascade delete).
	Type        string         // One of the ExportType constants.
	Filename    string         // Artifact file name.
	FileSize    int64          // Artifact size in bytes.
	Preferences map[string]any // Rendering preferences used (stored as JSON).
	CreatedAt   time.Time      // Timestamp of creation.
}
