// Package migrate implements the one-shot bridge from the legacy object
// store into the relational store. The whole import runs in a single
// transaction together with its audit row, so a failed run leaves
// nothing behind and the next boot retries from scratch.
package migrate

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qanoon-app/lawstore/internal/store"
	"github.com/qanoon-app/lawstore/pkg/types"
)

// migratedTags marks every imported case.
var migratedTags = []string{"migrated", "legacy"}

// Result summarizes a bridge run.
type Result struct {
	Skipped        bool // true when a prior run's audit row was found
	MigratedCases  int
	MigratedStages int
}

// Bridge imports legacy records into the store.
type Bridge struct {
	store      *store.Store
	legacy     LegacyStore
	classifier Classifier
	log        *zap.Logger
}

// NewBridge creates a Bridge. A nil classifier selects the keyword
// classifier; a nil logger disables logging.
func NewBridge(s *store.Store, legacy LegacyStore, classifier Classifier, logger *zap.Logger) *Bridge {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{store: s, legacy: legacy, classifier: classifier, log: logger}
}

// RunIfNeeded runs the migration unless a prior run is on record.
// Failures are logged and swallowed: the engine keeps serving with
// whatever the store already holds, and the rolled-back import retries
// on the next boot.
func (b *Bridge) RunIfNeeded() Result {
	res, err := b.Run()
	if err != nil {
		b.log.Warn("legacy migration failed", zap.Error(err))
	}
	return res
}

// Run performs the migration and returns its summary. A recorded prior
// run short-circuits with Skipped set.
func (b *Bridge) Run() (Result, error) {
	done, err := b.store.Migrations().Completed()
	if err != nil {
		return Result{}, err
	}
	if done {
		return Result{Skipped: true}, nil
	}

	records, err := b.legacy.Records()
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = b.store.WithTx(func(tx *sql.Tx) error {
		for _, rec := range records {
			stages, err := b.importCase(tx, rec)
			if err != nil {
				return fmt.Errorf("importing legacy case %s: %w", rec.ID, err)
			}
			res.MigratedCases++
			res.MigratedStages += stages
		}
		return b.store.Migrations().RecordTx(tx, res.MigratedCases, res.MigratedStages)
	})
	if err != nil {
		return Result{}, err
	}

	if err := b.store.Persist(); err != nil {
		return res, err
	}

	meta := map[string]any{
		"cases":  res.MigratedCases,
		"stages": res.MigratedStages,
	}
	if _, err := b.store.Analytics().Track("", "migration", meta, nil); err != nil {
		b.log.Warn("tracking migration failed", zap.Error(err))
	}

	b.log.Info("legacy migration completed",
		zap.Int("cases", res.MigratedCases),
		zap.Int("stages", res.MigratedStages))
	return res, nil
}

// importCase classifies one legacy record and inserts its normalized case
// and stage rows inside the bridge's transaction.
func (b *Bridge) importCase(tx *sql.Tx, rec LegacyCase) (int, error) {
	text := rec.Text()
	createdAt := parseLegacyTime(rec.CreatedAt)

	c := &types.Case{
		CaseID:     rec.ID,
		Name:       rec.Name,
		CaseType:   b.classifier.CaseType(text),
		Complexity: b.classifier.Complexity(text, len(rec.Stages)),
		Status:     types.CaseStatusActive,
		Tags:       migratedTags,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if c.CaseID == "" {
		return 0, fmt.Errorf("legacy case without id")
	}
	if c.Name == "" {
		c.Name = c.CaseID
	}

	if err := b.store.Cases().CreateTx(tx, c); err != nil {
		return 0, err
	}

	for _, ls := range rec.Stages {
		st := &types.Stage{
			StageID:    ls.ID,
			CaseID:     c.CaseID,
			StageName:  ls.Stage,
			StageIndex: ls.StageIndex,
			Input:      ls.Input,
			Output:     ls.Output,
			Status:     types.StageStatusCompleted,
			CreatedAt:  parseLegacyTime(ls.Date),
			Metadata: map[string]any{
				"legacy_stage_id": ls.ID,
				"original_index":  ls.StageIndex,
				"original_date":   ls.Date,
			},
		}
		if st.StageID == "" {
			return 0, fmt.Errorf("legacy stage without id in case %s", c.CaseID)
		}
		if st.StageName == "" {
			st.StageName = fmt.Sprintf("stage %d", ls.StageIndex)
		}
		if err := b.store.Stages().CreateTx(tx, st); err != nil {
			return 0, err
		}
	}
	return len(rec.Stages), nil
}

// legacyTimeLayouts are the timestamp shapes the legacy store produced.
var legacyTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02",
}

// parseLegacyTime parses a legacy timestamp, falling back to now for
// unparseable values so a malformed date never aborts the import.
func parseLegacyTime(v string) time.Time {
	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
