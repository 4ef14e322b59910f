package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
)

func TestAggregationService_Snapshot_Empty(t *testing.T) {
	env := newTestEnv(t)

	snap, err := env.aggregation.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Zero(t, snap.Counts.Total())
	assert.Zero(t, snap.TotalScholarships)
	assert.Zero(t, snap.AverageConfidenceScore)
	assert.Zero(t, snap.ProcessingRate)
	assert.Zero(t, snap.SuccessRate)
	assert.Zero(t, snap.SystemUptime)
	assert.NotNil(t, snap.TasksProgress)
	assert.Empty(t, snap.TasksProgress)
	assert.True(t, snap.LastUpdate.Equal(baseTime))
}

func TestAggregationService_Snapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ids := make([]uint, 0, 5)
	for _, u := range []string{
		"https://a.example.org",
		"https://b.example.org",
		"https://c.example.org",
		"https://d.example.org",
		"https://e.example.org",
	} {
		task, err := env.tasks.CreateTask(ctx, u)
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	// a, b completed; c failed; d running; e pending.
	for _, id := range ids[:4] {
		_, err := env.tracker.Claim(ctx, id)
		require.NoError(t, err)
	}
	_, err := env.tracker.SetTotalLinks(ctx, ids[3], 4)
	require.NoError(t, err)
	_, err = env.tracker.Advance(ctx, ids[3], 1, 0)
	require.NoError(t, err)

	// a finishes outside the one hour rate window.
	_, err = env.tracker.Complete(ctx, ids[0])
	require.NoError(t, err)
	env.clock.Advance(90 * time.Minute)
	_, err = env.tracker.Complete(ctx, ids[1])
	require.NoError(t, err)
	_, err = env.tracker.Fail(ctx, ids[2], "blocked")
	require.NoError(t, err)
	_, err = env.tracker.Advance(ctx, ids[3], 1, 0)
	require.NoError(t, err)

	for _, score := range []float64{0.6, 0.8} {
		_, err := env.scholarships.Record(ctx, ports.RecordScholarshipInput{TaskID: ids[0], Title: "Award", ConfidenceScore: score})
		require.NoError(t, err)
	}

	env.clock.Advance(1500 * time.Millisecond)
	snap, err := env.aggregation.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusCounts{Pending: 1, InProgress: 1, Completed: 2, Failed: 1}, snap.Counts)
	assert.Equal(t, int64(2), snap.TotalScholarships)
	assert.InDelta(t, 0.7, snap.AverageConfidenceScore, 0.0001)
	assert.InDelta(t, 1.0/60.0, snap.ProcessingRate, 0.0001)
	assert.InDelta(t, 200.0/3.0, snap.SuccessRate, 0.0001)
	assert.Equal(t, 90*time.Minute+time.Second, snap.SystemUptime)

	require.Len(t, snap.TasksProgress, 5)
	running := snap.TasksProgress[0]
	assert.Equal(t, ids[3], running.ID)
	assert.Equal(t, domain.TaskStatusInProgress, running.Status)
	assert.InDelta(t, 50.0, running.ProgressPercentage(), 0.001)
}

func TestAggregationService_Snapshot_ReadOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.tasks.CreateTask(ctx, "https://readonly.example.org")
	require.NoError(t, err)

	_, err = env.aggregation.Snapshot(ctx)
	require.NoError(t, err)

	after, err := env.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.Equal(task.UpdatedAt))
	assert.Equal(t, domain.TaskStatusPending, after.Status)
}
