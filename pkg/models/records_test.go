package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskCloneIsIndependent(t *testing.T) {
	due := time.Now().Add(24 * time.Hour)
	orig := &Task{ID: ServerID("tasks:1"), Title: "write report", DueDate: &due}

	c := orig.Clone().(*Task)
	c.Title = "changed"
	*c.DueDate = c.DueDate.Add(time.Hour)

	assert.Equal(t, "write report", orig.Title)
	assert.True(t, orig.DueDate.Equal(due))
}

func TestTaskMergeReturnsFreshCopy(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	orig := &Task{ID: ServerID("tasks:1"), Title: "draft", Status: StatusTodo, Position: 3}

	merged := orig.Merge(map[string]any{"title": "final", "status": "complete"}, now).(*Task)

	assert.Equal(t, "draft", orig.Title)
	assert.Equal(t, StatusTodo, orig.Status)
	assert.Equal(t, "final", merged.Title)
	assert.Equal(t, StatusComplete, merged.Status)
	assert.Equal(t, 3, merged.Position)
	assert.Equal(t, now, merged.UpdatedAt)
}

func TestMergeIgnoresUnknownFields(t *testing.T) {
	orig := &Note{ID: ServerID("notes:1"), Title: "ideas"}
	merged := orig.Merge(map[string]any{"bogus": "x", "title": "plans"}, time.Now()).(*Note)
	assert.Equal(t, "plans", merged.Title)
}

func TestStampedSetsIdentityAndTimestamps(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	id := NewTempID()
	user := ServerID("users:9")

	got := (&TodoItem{Text: "buy milk"}).Stamped(id, user, now).(*TodoItem)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, user, got.UserID)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, now, got.UpdatedAt)
}

func TestDecode(t *testing.T) {
	rec, err := Decode(KindTask, map[string]any{
		"id":         "tasks:7",
		"title":      "ship it",
		"status":     "in-progress",
		"position":   float64(2),
		"project_id": "projects:1",
	})
	require.NoError(t, err)

	task, ok := rec.(*Task)
	require.True(t, ok)
	assert.Equal(t, ServerID("tasks:7"), task.ID)
	assert.Equal(t, StatusInProgress, task.Status)
	assert.Equal(t, 2, task.Position)
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode(Kind("widgets"), map[string]any{"id": "widgets:1"})
	require.Error(t, err)
}

func TestPolicyTable(t *testing.T) {
	assert.Equal(t, OrderAppend, PolicyFor(KindTask).Order)
	assert.Equal(t, OrderPrepend, PolicyFor(KindNote).Order)
	assert.Equal(t, OrderPrepend, PolicyFor(KindComment).Order)

	assert.False(t, PolicyFor(KindTask).DetailSync)
	assert.False(t, PolicyFor(KindComment).DetailSync)
	assert.True(t, PolicyFor(KindProject).DetailSync)
	assert.True(t, PolicyFor(KindNote).DetailSync)

	assert.True(t, PolicyFor(KindTask).Positioned)
	assert.True(t, PolicyFor(KindTodo).Positioned)
	assert.False(t, PolicyFor(KindNote).Positioned)
}
