package migrate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qanoon-app/lawstore/internal/store"
	"github.com/qanoon-app/lawstore/pkg/types"
)

func newBridgeStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s := store.New(zap.NewNop())
	require.NoError(t, s.Open(types.Config{DataDir: dir}))
	t.Cleanup(func() { _ = s.Close() })
	return s, dir
}

func writeLegacyFile(t *testing.T, dir string, records []LegacyCase) {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyFileName), data, 0o644))
}

func sampleLegacy() []LegacyCase {
	return []LegacyCase{
		{
			ID:        "legacy-case-1",
			Name:      "تقسيم تركة",
			CreatedAt: "2023-04-12T09:30:00Z",
			Stages: []LegacyStage{
				{ID: "legacy-stage-1", StageIndex: 0, Stage: "استشارة أولية", Input: "نزاع بين الورثة حول الميراث", Output: "تحديد الحصص", Date: "2023-04-12T10:00:00Z"},
				{ID: "legacy-stage-2", StageIndex: 1, Stage: "صياغة اتفاق", Input: "بيانات الورثة", Output: "مسودة اتفاق", Date: "2023-04-20"},
			},
		},
		{
			ID:        "legacy-case-2",
			Name:      "",
			CreatedAt: "not a date",
			Stages:    nil,
		},
	}
}

func TestBridgeRunImportsRecords(t *testing.T) {
	s, dir := newBridgeStore(t)
	writeLegacyFile(t, dir, sampleLegacy())

	b := NewBridge(s, NewFileStore(dir), nil, zap.NewNop())
	res, err := b.Run()
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 2, res.MigratedCases)
	assert.Equal(t, 2, res.MigratedStages)

	// Legacy IDs are reused, not regenerated.
	c, err := s.Cases().Get("legacy-case-1")
	require.NoError(t, err)
	assert.Equal(t, types.CaseTypeInheritance, c.CaseType)
	assert.True(t, c.HasTag("migrated"))
	assert.True(t, c.HasTag("legacy"))
	assert.Equal(t, 2023, c.CreatedAt.Year())

	stages, err := s.Stages().ForCase("legacy-case-1")
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "legacy-stage-1", stages[0].StageID)
	assert.Equal(t, types.StageStatusCompleted, stages[0].Status)
	assert.Equal(t, "legacy-stage-1", stages[0].Metadata["legacy_stage_id"])
	assert.Equal(t, "2023-04-20", stages[1].Metadata["original_date"])

	// A nameless record falls back to its ID.
	c2, err := s.Cases().Get("legacy-case-2")
	require.NoError(t, err)
	assert.Equal(t, "legacy-case-2", c2.Name)

	// Migrated text is searchable immediately.
	results, err := s.Search().Find("الورثة", types.SearchFilters{})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestBridgeRunOnlyOnce(t *testing.T) {
	s, dir := newBridgeStore(t)
	writeLegacyFile(t, dir, sampleLegacy())

	b := NewBridge(s, NewFileStore(dir), nil, zap.NewNop())
	first, err := b.Run()
	require.NoError(t, err)
	require.Equal(t, 2, first.MigratedCases)

	// The audit row guards re-runs even though the legacy file is still
	// there, so edits made after migration are never clobbered.
	second, err := b.Run()
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Zero(t, second.MigratedCases)

	n, err := s.Cases().Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "no duplicate imports")
}

func TestBridgeEmptyLegacyStoreStillRecords(t *testing.T) {
	s, dir := newBridgeStore(t)
	// No legacy.json at all.

	b := NewBridge(s, NewFileStore(dir), nil, zap.NewNop())
	res, err := b.Run()
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Zero(t, res.MigratedCases)

	// The empty run is recorded, so the next boot skips straight away.
	res, err = b.Run()
	require.NoError(t, err)
	assert.True(t, res.Skipped)
}

func TestBridgeRunIfNeededSwallowsFailure(t *testing.T) {
	s, dir := newBridgeStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyFileName), []byte("{broken"), 0o644))

	b := NewBridge(s, NewFileStore(dir), nil, zap.NewNop())
	res := b.RunIfNeeded()
	assert.Zero(t, res.MigratedCases)

	// The failed run leaves no audit row, so the import retries once the
	// legacy file is fixed.
	writeLegacyFile(t, dir, sampleLegacy())
	res = b.RunIfNeeded()
	assert.Equal(t, 2, res.MigratedCases)
}

func TestFileStoreMissingFile(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	records, err := fs.Records()
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestBridgeCustomClassifier(t *testing.T) {
	s, dir := newBridgeStore(t)
	writeLegacyFile(t, dir, sampleLegacy())

	b := NewBridge(s, NewFileStore(dir), stubClassifier{}, zap.NewNop())
	_, err := b.Run()
	require.NoError(t, err)

	c, err := s.Cases().Get("legacy-case-1")
	require.NoError(t, err)
	assert.Equal(t, types.CaseTypeCriminal, c.CaseType)
	assert.Equal(t, types.ComplexityAdvanced, c.Complexity)
}

type stubClassifier struct{}

func (stubClassifier) CaseType(string) string        { return types.CaseTypeCriminal }
func (stubClassifier) Complexity(string, int) string { return types.ComplexityAdvanced }
