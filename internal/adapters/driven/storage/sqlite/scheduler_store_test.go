package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// ==================== SchedulerStore Tests ====================

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	scheduler := store.SchedulerStore()

	now := time.Now().UTC().Truncate(time.Second)
	task := &domain.ScheduledTask{
		ID:          domain.TaskIDArtifactPrune,
		Name:        "Artifact Prune",
		Interval:    time.Hour,
		LastRun:     now.Add(-30 * time.Minute),
		NextRun:     now.Add(30 * time.Minute),
		LastError:   "",
		LastSuccess: now.Add(-30 * time.Minute),
		Enabled:     true,
	}
	require.NoError(t, scheduler.SaveTask(ctx, task))

	got, err := scheduler.GetTask(ctx, domain.TaskIDArtifactPrune)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.Name, got.Name)
	assert.Equal(t, task.Interval, got.Interval)
	assert.True(t, got.Enabled)
	assert.WithinDuration(t, task.LastRun, got.LastRun, time.Second)
	assert.WithinDuration(t, task.NextRun, got.NextRun, time.Second)
	assert.WithinDuration(t, task.LastSuccess, got.LastSuccess, time.Second)
	assert.Empty(t, got.LastError)
}

func TestSchedulerStore_GetTask_NotFound(t *testing.T) {
	store := setupTestStore(t)

	task, err := store.SchedulerStore().GetTask(context.Background(), "non-existent")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestSchedulerStore_SaveTask_Update(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	scheduler := store.SchedulerStore()

	task := &domain.ScheduledTask{ID: domain.TaskIDContentsExpire, Name: "Contents Expiry", Interval: time.Hour, Enabled: true}
	require.NoError(t, scheduler.SaveTask(ctx, task))

	task.Interval = 2 * time.Hour
	task.LastError = "disk full"
	task.Enabled = false
	require.NoError(t, scheduler.SaveTask(ctx, task))

	got, err := scheduler.GetTask(ctx, domain.TaskIDContentsExpire)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, got.Interval)
	assert.Equal(t, "disk full", got.LastError)
	assert.False(t, got.Enabled)
	assert.True(t, got.LastRun.IsZero())

	tasks, err := scheduler.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestSchedulerStore_DeleteTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	scheduler := store.SchedulerStore()

	require.NoError(t, scheduler.SaveTask(ctx, &domain.ScheduledTask{ID: "t1", Name: "T1", Interval: time.Minute}))
	require.NoError(t, scheduler.DeleteTask(ctx, "t1"))
	require.NoError(t, scheduler.DeleteTask(ctx, "t1"))

	tasks, err := scheduler.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSchedulerStore_NilArguments(t *testing.T) {
	store := setupTestStore(t)
	scheduler := store.SchedulerStore()

	assert.ErrorIs(t, scheduler.SaveTask(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, scheduler.RecordResult(context.Background(), nil), domain.ErrInvalidInput)
}

func recordResults(t *testing.T, store *Store, taskID string, n int) {
	t.Helper()
	base := time.Now().UTC().Truncate(time.Second).Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		started := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.SchedulerStore().RecordResult(context.Background(), &domain.TaskResult{
			TaskID:         taskID,
			StartedAt:      started,
			EndedAt:        started.Add(time.Second),
			Success:        i%2 == 0,
			Error:          map[bool]string{true: "", false: "boom"}[i%2 == 0],
			ItemsProcessed: i,
		}))
	}
}

func TestSchedulerStore_TaskHistory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	recordResults(t, store, domain.TaskIDArtifactPrune, 5)

	history, err := store.SchedulerStore().GetTaskHistory(ctx, domain.TaskIDArtifactPrune, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 4, history[0].ItemsProcessed, "newest first")
	assert.True(t, history[0].Success)
	assert.Equal(t, "boom", history[1].Error)
	assert.True(t, history[0].StartedAt.After(history[1].StartedAt))

	history, err = store.SchedulerStore().GetTaskHistory(ctx, "other", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSchedulerStore_PruneHistory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	recordResults(t, store, domain.TaskIDArtifactPrune, 4)
	recordResults(t, store, domain.TaskIDContentsExpire, 2)

	require.NoError(t, store.SchedulerStore().PruneHistory(ctx, 2))

	history, err := store.SchedulerStore().GetTaskHistory(ctx, domain.TaskIDArtifactPrune, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 3, history[0].ItemsProcessed)

	history, err = store.SchedulerStore().GetTaskHistory(ctx, domain.TaskIDContentsExpire, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestNullableHelpers(t *testing.T) {
	assert.Nil(t, formatNullableTime(time.Time{}))
	assert.Equal(t, "2026-01-02T03:04:05Z", formatNullableTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	assert.True(t, parseNullableTime(sql.NullString{}).IsZero())
	assert.True(t, parseNullableTime(sql.NullString{String: "garbage", Valid: true}).IsZero())

	assert.Nil(t, nullString(""))
	assert.Equal(t, "x", nullString("x"))
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
}
