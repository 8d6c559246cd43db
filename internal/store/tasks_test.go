package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qanoon-app/lawstore/pkg/types"
)

func TestTaskCreateDefaults(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	task := &types.Task{CaseID: c.CaseID, Title: "draft memorandum"}
	id, err := s.Tasks().Create(task)
	require.NoError(t, err)

	got, err := s.Tasks().Get(id)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusOpen, got.Status)
	assert.Equal(t, types.TaskPriorityMedium, got.Priority)
	assert.Nil(t, got.DueDate)
}

func TestTaskUpdate(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	id, err := s.Tasks().Create(&types.Task{CaseID: c.CaseID, Title: "review contract"})
	require.NoError(t, err)

	err = s.Tasks().Update(id, map[string]any{
		"status":   types.TaskStatusDone,
		"priority": types.TaskPriorityHigh,
		"assignee": "nadia",
	})
	require.NoError(t, err)

	got, err := s.Tasks().Get(id)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusDone, got.Status)
	assert.Equal(t, types.TaskPriorityHigh, got.Priority)
	assert.Equal(t, "nadia", got.Assignee)

	assert.Error(t, s.Tasks().Update(id, map[string]any{"reward": "bonus"}))
	assert.ErrorIs(t, s.Tasks().Update("missing", map[string]any{"status": types.TaskStatusDone}), types.ErrNotFound)
}

func TestTaskOrderingByDueDate(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	later := time.Now().UTC().Add(48 * time.Hour)
	sooner := time.Now().UTC().Add(2 * time.Hour)

	_, err := s.Tasks().Create(&types.Task{CaseID: c.CaseID, Title: "later", DueDate: &later})
	require.NoError(t, err)
	_, err = s.Tasks().Create(&types.Task{CaseID: c.CaseID, Title: "sooner", DueDate: &sooner})
	require.NoError(t, err)

	tasks, err := s.Tasks().ForCase(c.CaseID, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "sooner", tasks[0].Title)
	assert.Equal(t, "later", tasks[1].Title)
}

func TestTaskDelete(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	id, err := s.Tasks().Create(&types.Task{CaseID: c.CaseID, Title: "x"})
	require.NoError(t, err)

	require.NoError(t, s.Tasks().Delete(id))
	_, err = s.Tasks().Get(id)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestExportRecordAndList(t *testing.T) {
	s := newTestStore(t)
	c := mustCreateCase(t, s, "case")

	_, err := s.Exports().Record(&types.Export{
		CaseID:      c.CaseID,
		Type:        types.ExportTypePDF,
		Filename:    "case-summary.pdf",
		FileSize:    20480,
		Preferences: map[string]any{"paper": "a4"},
	})
	require.NoError(t, err)
	_, err = s.Exports().Record(&types.Export{CaseID: c.CaseID, Type: types.ExportTypeDocx, Filename: "brief.docx"})
	require.NoError(t, err)

	exports, err := s.Exports().ForCase(c.CaseID)
	require.NoError(t, err)
	require.Len(t, exports, 2)
	assert.Equal(t, "a4", exports[len(exports)-1].Preferences["paper"])
}

func TestPrefsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Prefs().Set("theme", "dark"))
	require.NoError(t, s.Prefs().Set("theme", "light"))
	require.NoError(t, s.Prefs().Set("locale", "ar"))

	p, err := s.Prefs().Get("theme")
	require.NoError(t, err)
	assert.Equal(t, "light", p.Value)

	all, err := s.Prefs().All()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"theme": "light", "locale": "ar"}, all)

	require.NoError(t, s.Prefs().Delete("theme"))
	_, err = s.Prefs().Get("theme")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
