package types

import "time"

// Stage statuses. A stage progresses pending -> in_progress -> completed or
// failed. The engine does not enforce the progression; AdvanceTo is the
// advisory validation callers are expected to use.
const (
	StageStatusPending    = "pending"
	StageStatusInProgress = "in_progress"
	StageStatusCompleted  = "completed"
	StageStatusFailed     = "failed"
)

// stageTransitions maps a status to the statuses reachable from it.
var stageTransitions = map[string][]string{
	StageStatusPending:    {StageStatusInProgress},
	StageStatusInProgress: {StageStatusCompleted, StageStatusFailed},
	StageStatusCompleted:  {},
	StageStatusFailed:     {},
}

// Stage represents one processing stage of a case. StageIndex is the
// ordering key within the case; it is not globally unique and ties are
// broken by insertion order.
type Stage struct {
	StageID     string         // UUID v7, generated on creation.
	CaseID      string         // Owning case (cascade delete).
	StageName   string         // Human-readable stage name.
	StageIndex  int            // Ordering key within the case.
	Input       string         // Stage input text.
	Output      string         // Stage output text.
	Status      string         // One of the StageStatus constants.
	CreatedAt   time.Time      // Timestamp of creation.
	CompletedAt *time.Time     // Set when the stage reaches completed.
	Metadata    map[string]any // Opaque structured blob (stored as JSON).
}

// AdvanceTo moves the stage to the given status. Returns ErrInvalidStatus
// for unrecognized values and ErrInvalidTransition when the move is not
// allowed from the current status. Setting the current status again is a
// no-op. Reaching completed sets CompletedAt.
func (s *Stage) AdvanceTo(status string) error {
	if _, ok := stageTransitions[status]; !ok {
		return ErrInvalidStatus
	}
	if status == s.Status {
		return nil
	}
	allowed := false
	for _, next := range stageTransitions[s.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidTransition
	}
	s.Status = status
	if status == StageStatusCompleted {
		now := time.Now().UTC()
		s.CompletedAt = &now
	}
	return nil
}

// SearchableText returns the text that feeds the search index shadow table.
func (s *Stage) SearchableText() string {
	return s.StageName + " " + s.Input + " " + s.Output
}
