package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qanoon-app/lawstore/pkg/types"
)

func TestSearchFindsCaseText(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Cases().Create(&types.Case{
		Name:        "نزاع إيجار شقة",
		Description: "المستأجر توقف عن السداد",
	})
	require.NoError(t, err)
	mustCreateCase(t, s, "unrelated case")

	results, err := s.Search().Find("إيجار", types.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.SearchEntryCase, results[0].Type)
	assert.Nil(t, results[0].StageID)
	assert.Contains(t, results[0].Snippet, "إيجار")

	// Description text is indexed together with the name.
	results, err = s.Search().Find("السداد", types.SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchFindsStageText(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	st := &types.Stage{
		CaseID:    c.CaseID,
		StageName: "pleading",
		Input:     "witness statement collected",
		Output:    "motion granted",
	}
	_, err := s.Stages().Create(st)
	require.NoError(t, err)

	results, err := s.Search().Find("witness", types.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.SearchEntryInput, results[0].Type)
	require.NotNil(t, results[0].StageID)
	assert.Equal(t, st.StageID, *results[0].StageID)
}

func TestSearchReflectsUpdates(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "old title")

	require.NoError(t, s.Cases().Update(c.CaseID, map[string]any{"name": "new title"}))

	results, err := s.Search().Find("old title", types.SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.Search().Find("new title", types.SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchDropsClearedStageText(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	st := &types.Stage{
		CaseID:    c.CaseID,
		StageName: "review",
		Input:     "confidential-token",
	}
	_, err := s.Stages().Create(st)
	require.NoError(t, err)

	results, err := s.Search().Find("confidential-token", types.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	st.Input = ""
	require.NoError(t, s.Stages().Update(st))

	// Cleared text must no longer be searchable.
	results, err = s.Search().Find("confidential-token", types.SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, results)

	// The input entry itself is gone; the case and stage name entries stay.
	entries, err := s.Search().ForCase(c.CaseID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, types.SearchEntryCase, entries[0].Type)
	assert.Equal(t, types.SearchEntryStage, entries[1].Type)
}

func TestSearchEntriesForCase(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "indexed case")

	st := &types.Stage{CaseID: c.CaseID, StageName: "filing", Input: "claim form", Output: "case number"}
	_, err := s.Stages().Create(st)
	require.NoError(t, err)

	entries, err := s.Search().ForCase(c.CaseID)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, types.SearchEntryCase, entries[0].Type)
	assert.Nil(t, entries[0].StageID)
	assert.Equal(t, "indexed case", entries[0].Content)
	for _, e := range entries[1:] {
		require.NotNil(t, e.StageID)
		assert.Equal(t, st.StageID, *e.StageID)
	}
}

func TestSearchFilters(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Cases().Create(&types.Case{Name: "contract dispute", CaseType: types.CaseTypeCommercial})
	require.NoError(t, err)
	_, err = s.Cases().Create(&types.Case{Name: "contract fraud", CaseType: types.CaseTypeCriminal})
	require.NoError(t, err)

	results, err := s.Search().Find("contract", types.SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = s.Search().Find("contract", types.SearchFilters{CaseType: types.CaseTypeCriminal})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "contract fraud", results[0].CaseName)

	results, err = s.Search().Find("contract", types.SearchFilters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchEscapesWildcards(t *testing.T) {
	s := newTestStore(t)
	mustCreateCase(t, s, "plain name")
	mustCreateCase(t, s, "100% settled")

	// A literal percent sign must not act as a wildcard.
	results, err := s.Search().Find("100%", types.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "100% settled", results[0].CaseName)
}

func TestSearchNoMatches(t *testing.T) {
	s := newTestStore(t)
	mustCreateCase(t, s, "something")

	results, err := s.Search().Find("nothing here", types.SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, results)
}
