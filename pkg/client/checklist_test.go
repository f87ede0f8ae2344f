package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	mu    sync.Mutex
	reqs  []models.SetCompletionRequest
	err   error
	gate  chan struct{} // when set, each call blocks until it is closed
	calls chan struct{} // when set, receives one value per call
}

func (f *fakeCompleter) SetCompletion(_ context.Context, req *models.SetCompletionRequest) error {
	f.mu.Lock()
	f.reqs = append(f.reqs, *req)
	gate, calls, err := f.gate, f.calls, f.err
	f.mu.Unlock()

	if calls != nil {
		calls <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeCompleter) requests() []models.SetCompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SetCompletionRequest(nil), f.reqs...)
}

// checklistTree: mission 10 with steps 100, 101 and stepless mission 20
func checklistTree() []models.Level {
	return []models.Level{{
		ID: 1,
		Missions: []models.Mission{
			{ID: 10, Steps: []models.Step{{ID: 100}, {ID: 101}}},
			{ID: 20},
		},
	}}
}

func TestChecklistToggleStep(t *testing.T) {
	store := &fakeCompleter{}
	list := NewChecklist(store, 7, "2024-06-01", checklistTree())
	ctx := context.Background()

	require.NoError(t, list.ToggleStep(ctx, 100))
	assert.True(t, list.StepDone(100))
	assert.False(t, list.MissionDone(10))
	assert.Equal(t, 0, list.PendingCount())

	completion := list.Completion()
	assert.Equal(t, 3, completion.Total)
	assert.Equal(t, 1, completion.Completed)
	assert.Equal(t, 33, completion.Percentage)

	require.NoError(t, list.ToggleStep(ctx, 100))
	assert.False(t, list.StepDone(100))

	reqs := store.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, models.SetCompletionRequest{GuestID: 7, ItemID: 100, ItemType: models.ItemStep, IsCompleted: true, Date: "2024-06-01"}, reqs[0])
	assert.False(t, reqs[1].IsCompleted)
}

func TestChecklistToggleMission(t *testing.T) {
	ctx := context.Background()

	t.Run("stepped mission completes every remaining step", func(t *testing.T) {
		store := &fakeCompleter{}
		list := NewChecklist(store, 7, "", checklistTree())
		require.NoError(t, list.ToggleStep(ctx, 101))

		require.NoError(t, list.ToggleMission(ctx, 10))
		assert.True(t, list.MissionDone(10))

		reqs := store.requests()
		require.Len(t, reqs, 2)
		assert.Equal(t, int64(100), reqs[1].ItemID)
		assert.Equal(t, models.ItemStep, reqs[1].ItemType)
	})

	t.Run("complete stepped mission clears all steps", func(t *testing.T) {
		store := &fakeCompleter{}
		list := NewChecklist(store, 7, "", checklistTree())
		require.NoError(t, list.ToggleMission(ctx, 10))
		require.NoError(t, list.ToggleMission(ctx, 10))

		assert.False(t, list.StepDone(100))
		assert.False(t, list.StepDone(101))
		assert.Len(t, store.requests(), 4)
	})

	t.Run("stepless mission toggles itself", func(t *testing.T) {
		store := &fakeCompleter{}
		list := NewChecklist(store, 7, "", checklistTree())
		require.NoError(t, list.ToggleMission(ctx, 20))

		assert.True(t, list.MissionDone(20))
		reqs := store.requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, models.ItemMission, reqs[0].ItemType)
	})

	t.Run("unknown mission", func(t *testing.T) {
		list := NewChecklist(&fakeCompleter{}, 7, "", checklistTree())
		assert.Error(t, list.ToggleMission(ctx, 99))
	})
}

func TestChecklistRollsBackFailedToggle(t *testing.T) {
	store := &fakeCompleter{err: errors.New("api error 500")}
	list := NewChecklist(store, 7, "", checklistTree())

	err := list.ToggleStep(context.Background(), 100)
	assert.Error(t, err)
	assert.False(t, list.StepDone(100))
	assert.Equal(t, 0, list.PendingCount())
}

func TestChecklistReconcile(t *testing.T) {
	t.Run("takes server values", func(t *testing.T) {
		list := NewChecklist(&fakeCompleter{}, 7, "", checklistTree())
		list.Reconcile(&models.ProgressResponse{Steps: []int64{100, 101}, Missions: []int64{20}}, list.Version())

		assert.True(t, list.MissionDone(10))
		assert.True(t, list.MissionDone(20))
		assert.Equal(t, 100, list.Completion().Percentage)

		list.Reconcile(&models.ProgressResponse{Steps: []int64{}, Missions: []int64{}}, list.Version())
		assert.False(t, list.StepDone(100))
	})

	t.Run("keeps unacknowledged toggles", func(t *testing.T) {
		store := &fakeCompleter{gate: make(chan struct{}), calls: make(chan struct{}, 1)}
		list := NewChecklist(store, 7, "", checklistTree())
		since := list.Version()

		done := make(chan error, 1)
		go func() { done <- list.ToggleStep(context.Background(), 100) }()
		<-store.calls

		// a poll that started before the toggle reached the server
		list.Reconcile(&models.ProgressResponse{Steps: []int64{101}, Missions: []int64{}}, since)
		assert.True(t, list.StepDone(100), "pending toggle survives the poll")
		assert.True(t, list.StepDone(101), "other items take the server value")
		assert.Equal(t, 1, list.PendingCount())

		close(store.gate)
		require.NoError(t, <-done)
		assert.Equal(t, 0, list.PendingCount())
		assert.True(t, list.MissionDone(10))
	})

	t.Run("stale snapshot applied after the ack keeps the toggle", func(t *testing.T) {
		list := NewChecklist(&fakeCompleter{}, 7, "", checklistTree())
		since := list.Version()

		require.NoError(t, list.ToggleStep(context.Background(), 100))
		require.Equal(t, 0, list.PendingCount())

		// fetched before the toggle reached the server, applied after it was acknowledged
		list.Reconcile(&models.ProgressResponse{Steps: []int64{}, Missions: []int64{}}, since)
		assert.True(t, list.StepDone(100))

		// a snapshot fetched after the write is authoritative
		list.Reconcile(&models.ProgressResponse{Steps: []int64{}, Missions: []int64{}}, list.Version())
		assert.False(t, list.StepDone(100))
	})

	t.Run("rolled back toggle takes the server value", func(t *testing.T) {
		list := NewChecklist(&fakeCompleter{err: errors.New("api error 500")}, 7, "", checklistTree())
		since := list.Version()

		require.Error(t, list.ToggleStep(context.Background(), 100))
		list.Reconcile(&models.ProgressResponse{Steps: []int64{100}, Missions: []int64{}}, since)
		assert.True(t, list.StepDone(100))
	})
}
