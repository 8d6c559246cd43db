package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qanoon-app/lawstore/pkg/types"
)

func TestStageCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	st := &types.Stage{
		CaseID:     c.CaseID,
		StageName:  "initial hearing",
		StageIndex: 3,
		Input:      "summons delivered",
		Output:     "hearing scheduled",
		Metadata:   map[string]any{"court": "first instance"},
	}
	id, err := s.Stages().Create(st)
	require.NoError(t, err)

	got, err := s.Stages().Get(id)
	require.NoError(t, err)
	assert.Equal(t, "initial hearing", got.StageName)
	assert.Equal(t, 3, got.StageIndex)
	assert.Equal(t, types.StageStatusPending, got.Status)
	assert.Equal(t, "first instance", got.Metadata["court"])
	assert.Nil(t, got.CompletedAt)
}

func TestStageCreateValidation(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	_, err := s.Stages().Create(&types.Stage{StageName: "orphan"})
	assert.ErrorIs(t, err, types.ErrInvalidID)

	_, err = s.Stages().Create(&types.Stage{CaseID: c.CaseID})
	assert.ErrorIs(t, err, types.ErrInvalidName)
}

func TestStageUpdateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	st := &types.Stage{CaseID: c.CaseID, StageName: "review"}
	_, err := s.Stages().Create(st)
	require.NoError(t, err)

	require.NoError(t, st.AdvanceTo(types.StageStatusInProgress))
	st.Output = "documents gathered"
	require.NoError(t, s.Stages().Update(st))

	got, err := s.Stages().Get(st.StageID)
	require.NoError(t, err)
	assert.Equal(t, types.StageStatusInProgress, got.Status)
	assert.Equal(t, "documents gathered", got.Output)
}

func TestStageCompletionPersistsTimestamp(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	st := &types.Stage{CaseID: c.CaseID, StageName: "verdict", Status: types.StageStatusInProgress}
	_, err := s.Stages().Create(st)
	require.NoError(t, err)

	require.NoError(t, st.AdvanceTo(types.StageStatusCompleted))
	require.NoError(t, s.Stages().Update(st))

	got, err := s.Stages().Get(st.StageID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
}

func TestStageDelete(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	st := &types.Stage{CaseID: c.CaseID, StageName: "appeal"}
	id, err := s.Stages().Create(st)
	require.NoError(t, err)

	require.NoError(t, s.Stages().Delete(id))
	_, err = s.Stages().Get(id)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, s.Stages().Delete(id), types.ErrNotFound)
}

func TestStageOrderingTieBreak(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	// Two stages share an index; insertion order breaks the tie.
	first := &types.Stage{CaseID: c.CaseID, StageName: "first", StageIndex: 1}
	second := &types.Stage{CaseID: c.CaseID, StageName: "second", StageIndex: 1}
	_, err := s.Stages().Create(first)
	require.NoError(t, err)
	_, err = s.Stages().Create(second)
	require.NoError(t, err)

	stages, err := s.Stages().ForCase(c.CaseID)
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "first", stages[0].StageName)
	assert.Equal(t, "second", stages[1].StageName)
}
