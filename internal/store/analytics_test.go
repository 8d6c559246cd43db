package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qanoon-app/lawstore/pkg/types"
)

func TestAnalyticsTrackAndRead(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	dur := int64(1250)
	_, err := s.Analytics().Track(c.CaseID, "export_generated", map[string]any{"format": "pdf"}, &dur)
	require.NoError(t, err)
	_, err = s.Analytics().Track(c.CaseID, "case_viewed", nil, nil)
	require.NoError(t, err)

	events, err := s.Analytics().ForCase(c.CaseID)
	require.NoError(t, err)
	require.Len(t, events, 2)

	var export *types.AnalyticsEvent
	for _, e := range events {
		if e.Action == "export_generated" {
			export = e
		}
	}
	require.NotNil(t, export)
	assert.Equal(t, "pdf", export.Metadata["format"])
	require.NotNil(t, export.Duration)
	assert.Equal(t, int64(1250), *export.Duration)
}

func TestAnalyticsTrackRejectsEmptyAction(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Analytics().Track("some-case", "", nil, nil)
	assert.Error(t, err)
}

func TestAnalyticsSurviveCaseDeletion(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	_, err := s.Analytics().Track(c.CaseID, "case_created", nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Cases().Delete(c.CaseID))

	events, err := s.Analytics().ForCase(c.CaseID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestAnalyticsPurge(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	_, err := s.Analytics().Track(c.CaseID, "old_action", nil, nil)
	require.NoError(t, err)

	n, err := s.Analytics().Purge(time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	events, err := s.Analytics().ForCase(c.CaseID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAnalyticsSummary(t *testing.T) {
	s := newTestStore(t)

	a, err := s.Cases().Create(&types.Case{Name: "a", CaseType: types.CaseTypeInheritance})
	require.NoError(t, err)
	b, err := s.Cases().Create(&types.Case{Name: "b", CaseType: types.CaseTypeInheritance})
	require.NoError(t, err)
	_, err = s.Cases().Create(&types.Case{Name: "c", CaseType: types.CaseTypeLabor, Status: types.CaseStatusArchived})
	require.NoError(t, err)

	for _, caseID := range []string{a, a, b} {
		_, err = s.Analytics().Track(caseID, "case_viewed", nil, nil)
		require.NoError(t, err)
	}
	_, err = s.Analytics().Track(a, "export_generated", nil, nil)
	require.NoError(t, err)

	_, err = s.Stages().Create(&types.Stage{CaseID: a, StageName: "s1"})
	require.NoError(t, err)
	_, err = s.Stages().Create(&types.Stage{CaseID: a, StageName: "s2"})
	require.NoError(t, err)
	_, err = s.Stages().Create(&types.Stage{CaseID: b, StageName: "s1"})
	require.NoError(t, err)

	sum, err := s.Analytics().Summary(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(3), sum.TotalCases)
	assert.Equal(t, int64(2), sum.CasesByType[types.CaseTypeInheritance])
	assert.Equal(t, int64(1), sum.CasesByType[types.CaseTypeLabor])
	assert.Equal(t, int64(2), sum.CasesByStatus[types.CaseStatusActive])
	assert.Equal(t, int64(1), sum.CasesByStatus[types.CaseStatusArchived])
	assert.InDelta(t, 1.0, sum.AvgStagesPer, 0.001)

	require.NotEmpty(t, sum.TopActions)
	assert.Equal(t, "case_viewed", sum.TopActions[0].Action)
	assert.Equal(t, int64(3), sum.TopActions[0].Count)
}

func TestAnalyticsSummaryEmptyStore(t *testing.T) {
	s := newTestStore(t)

	sum, err := s.Analytics().Summary(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, sum.TotalCases)
	assert.Zero(t, sum.AvgStagesPer)
	assert.Empty(t, sum.TopActions)
}

func TestAnalyticsSummaryTimeBounds(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	_, err := s.Analytics().Track(c.CaseID, "case_viewed", nil, nil)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	cutoff := time.Now().UTC().Add(-time.Minute)
	sum, err := s.Analytics().Summary(&past, &cutoff)
	require.NoError(t, err)
	assert.Empty(t, sum.TopActions, "event outside the range should not count")
}
