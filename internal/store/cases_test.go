package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qanoon-app/lawstore/pkg/types"
)

func TestCaseCreateDefaults(t *testing.T) {
	s := newTestStore(t)

	c := &types.Case{Name: "استشارة ميراث"}
	id, err := s.Cases().Create(c)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.Cases().Get(id)
	require.NoError(t, err)
	assert.Equal(t, types.CaseTypeGeneral, got.CaseType)
	assert.Equal(t, types.ComplexityBasic, got.Complexity)
	assert.Equal(t, types.CaseStatusActive, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCaseCreateRejectsEmptyName(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Cases().Create(&types.Case{})
	assert.ErrorIs(t, err, types.ErrInvalidName)
}

func TestCaseGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Cases().Get("no-such-id")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.Cases().Get("")
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestCaseUpdate(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "original")

	err := s.Cases().Update(c.CaseID, map[string]any{
		"name":       "renamed",
		"caseType":   types.CaseTypeCommercial,
		"complexity": types.ComplexityAdvanced,
		"tags":       []string{"urgent", "appeal"},
	})
	require.NoError(t, err)

	got, err := s.Cases().Get(c.CaseID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, types.CaseTypeCommercial, got.CaseType)
	assert.Equal(t, types.ComplexityAdvanced, got.Complexity)
	assert.Equal(t, []string{"urgent", "appeal"}, got.Tags)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestCaseUpdateUnknownField(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	err := s.Cases().Update(c.CaseID, map[string]any{"verdict": "guilty"})
	assert.Error(t, err)
}

func TestCaseUpdateEmptyName(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "named")

	err := s.Cases().Update(c.CaseID, map[string]any{"name": ""})
	assert.ErrorIs(t, err, types.ErrInvalidName)

	err = s.Cases().Update(c.CaseID, map[string]any{"name": 7})
	assert.ErrorIs(t, err, types.ErrInvalidName)

	// The rejected update left the case untouched.
	got, err := s.Cases().Get(c.CaseID)
	require.NoError(t, err)
	assert.Equal(t, "named", got.Name)
}

func TestCaseUpdateMissing(t *testing.T) {
	s := newTestStore(t)
	err := s.Cases().Update("no-such-id", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCaseListFilters(t *testing.T) {
	s := newTestStore(t)

	for i, caseType := range []string{types.CaseTypeCommercial, types.CaseTypeCommercial, types.CaseTypeCriminal} {
		c := &types.Case{Name: "case", CaseType: caseType}
		if i == 2 {
			c.Status = types.CaseStatusArchived
		}
		_, err := s.Cases().Create(c)
		require.NoError(t, err)
	}

	all, err := s.Cases().List(CaseFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	commercial, err := s.Cases().List(CaseFilters{CaseType: types.CaseTypeCommercial})
	require.NoError(t, err)
	assert.Len(t, commercial, 2)

	archived, err := s.Cases().List(CaseFilters{Status: types.CaseStatusArchived})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, types.CaseTypeCriminal, archived[0].CaseType)

	paged, err := s.Cases().List(CaseFilters{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, paged, 2)

	offset, err := s.Cases().List(CaseFilters{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, offset, 1)
}

func TestCaseDeleteCascades(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "doomed")

	_, err := s.Stages().Create(&types.Stage{CaseID: c.CaseID, StageName: "research"})
	require.NoError(t, err)
	_, err = s.Comments().Create(&types.Comment{CaseID: c.CaseID, Author: "lawyer", Content: "note"})
	require.NoError(t, err)
	_, err = s.Tasks().Create(&types.Task{CaseID: c.CaseID, Title: "file appeal"})
	require.NoError(t, err)
	_, err = s.Analytics().Track(c.CaseID, "case_opened", nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.Cases().Delete(c.CaseID))

	_, err = s.Cases().Get(c.CaseID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	stages, err := s.Stages().ForCase(c.CaseID)
	require.NoError(t, err)
	assert.Empty(t, stages)

	comments, err := s.Comments().ForCase(c.CaseID, nil)
	require.NoError(t, err)
	assert.Empty(t, comments)

	tasks, err := s.Tasks().ForCase(c.CaseID, nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// Analytics events are audit history and survive the case.
	events, err := s.Analytics().ForCase(c.CaseID)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	// The search index entry is gone with the case.
	results, err := s.Search().Find("doomed", types.SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCaseDeleteMissing(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.Cases().Delete("no-such-id"), types.ErrNotFound)
}

// Full lifecycle: create a case, attach stages out of order, read them
// back ordered, then delete and verify nothing remains.
func TestCaseLifecycle(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "قضية عمالية")

	for _, idx := range []int{2, 0, 1} {
		_, err := s.Stages().Create(&types.Stage{
			CaseID:     c.CaseID,
			StageName:  "stage",
			StageIndex: idx,
		})
		require.NoError(t, err)
	}

	stages, err := s.Stages().ForCase(c.CaseID)
	require.NoError(t, err)
	require.Len(t, stages, 3)
	for i, st := range stages {
		assert.Equal(t, i, st.StageIndex)
	}

	require.NoError(t, s.Cases().Delete(c.CaseID))
	_, err = s.Cases().Get(c.CaseID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	stages, err = s.Stages().ForCase(c.CaseID)
	require.NoError(t, err)
	assert.Empty(t, stages)
}
