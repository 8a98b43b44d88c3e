package investigation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/investigation"
	apperrors "github.com/veriscope/modelaudit/pkg/errors"
)

// memoryProgressRepo is an in-memory stand-in for the Redis progress store.
type memoryProgressRepo struct {
	mu      sync.Mutex
	records map[string]*entities.ProgressRecord
}

func newMemoryProgressRepo() *memoryProgressRepo {
	return &memoryProgressRepo{records: make(map[string]*entities.ProgressRecord)}
}

func (m *memoryProgressRepo) Get(ctx context.Context, assessmentID string) (*entities.ProgressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[assessmentID]
	if !ok {
		return nil, apperrors.NewNotFoundError("progress record not found")
	}
	clone := *record
	clone.Steps = append([]entities.ProgressStep(nil), record.Steps...)
	return &clone, nil
}

func (m *memoryProgressRepo) Set(ctx context.Context, record *entities.ProgressRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.UpdatedAt = time.Now()
	clone := *record
	clone.Steps = append([]entities.ProgressStep(nil), record.Steps...)
	m.records[record.AssessmentID] = &clone
	return nil
}

func (m *memoryProgressRepo) Delete(ctx context.Context, assessmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, assessmentID)
	return nil
}

func newTrackedRun(t *testing.T) (*investigation.Tracker, *memoryProgressRepo) {
	t.Helper()
	repo := newMemoryProgressRepo()
	tracker := investigation.NewTracker(repo, nil)

	steps := []entities.ProgressStep{
		{ID: "initialize", Name: "Initialize", Status: entities.StepPending},
		{ID: "search_security_risk", Name: "Search", Status: entities.StepPending},
	}
	require.NoError(t, tracker.CreateProgress(context.Background(), "run-1", "TestModel", steps, 5))
	return tracker, repo
}

func TestTracker_CreateProgressStartsPreparing(t *testing.T) {
	tracker, _ := newTrackedRun(t)

	record, err := tracker.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, entities.OverallPreparing, record.OverallStatus)
	assert.Equal(t, 5, record.TotalItems)
	assert.Equal(t, 0, record.CompletedItems)
	for _, step := range record.Steps {
		assert.Equal(t, entities.StepPending, step.Status)
	}
}

func TestTracker_StepLifecycle(t *testing.T) {
	tracker, _ := newTrackedRun(t)
	ctx := context.Background()

	require.NoError(t, tracker.SetRunning(ctx, "run-1"))
	require.NoError(t, tracker.AdvanceStep(ctx, "run-1", "initialize", entities.StepRunning, ""))
	require.NoError(t, tracker.AdvanceStep(ctx, "run-1", "initialize", entities.StepCompleted, "done"))

	record, err := tracker.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, entities.OverallRunning, record.OverallStatus)
	step := record.Step("initialize")
	require.NotNil(t, step)
	assert.Equal(t, entities.StepCompleted, step.Status)
	assert.Equal(t, "done", step.Details)
	assert.NotNil(t, step.Timestamp)
}

func TestTracker_CompletedStepNeverRegresses(t *testing.T) {
	tracker, _ := newTrackedRun(t)
	ctx := context.Background()

	require.NoError(t, tracker.AdvanceStep(ctx, "run-1", "initialize", entities.StepCompleted, "done"))
	require.NoError(t, tracker.AdvanceStep(ctx, "run-1", "initialize", entities.StepRunning, "again"))

	record, err := tracker.Get(ctx, "run-1")
	require.NoError(t, err)
	step := record.Step("initialize")
	assert.Equal(t, entities.StepCompleted, step.Status)
	assert.Equal(t, "done", step.Details)
}

func TestTracker_TerminalRecordRefusesWrites(t *testing.T) {
	tracker, _ := newTrackedRun(t)
	ctx := context.Background()

	require.NoError(t, tracker.Finalize(ctx, "run-1", entities.OverallCompleted, ""))
	require.NoError(t, tracker.IncrementCompleted(ctx, "run-1", 3))

	record, err := tracker.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, entities.OverallCompleted, record.OverallStatus)
	assert.Equal(t, 0, record.CompletedItems)
}

func TestTracker_FinalizeErrorMarksRunningSteps(t *testing.T) {
	tracker, _ := newTrackedRun(t)
	ctx := context.Background()

	require.NoError(t, tracker.AdvanceStep(ctx, "run-1", "search_security_risk", entities.StepRunning, ""))
	require.NoError(t, tracker.Finalize(ctx, "run-1", entities.OverallError, "search exploded"))

	record, err := tracker.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, entities.OverallError, record.OverallStatus)
	step := record.Step("search_security_risk")
	assert.Equal(t, entities.StepError, step.Status)
	assert.Equal(t, "search exploded", step.Details)
}

func TestTracker_CompletedCountClampsAtTotal(t *testing.T) {
	tracker, _ := newTrackedRun(t)
	ctx := context.Background()

	require.NoError(t, tracker.IncrementCompleted(ctx, "run-1", 4))
	require.NoError(t, tracker.IncrementCompleted(ctx, "run-1", 4))

	record, err := tracker.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 5, record.CompletedItems)
}

func TestTracker_CurrentItemSetAndCleared(t *testing.T) {
	tracker, _ := newTrackedRun(t)
	ctx := context.Background()

	require.NoError(t, tracker.SetCurrentItem(ctx, "run-1", entities.ProgressItem{ID: "a", Name: "A", Category: "Security"}))
	record, err := tracker.Get(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, record.CurrentItem)
	assert.Equal(t, "a", record.CurrentItem.ID)

	require.NoError(t, tracker.ClearCurrentItem(ctx, "run-1"))
	record, err = tracker.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Nil(t, record.CurrentItem)
}
