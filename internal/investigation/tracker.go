package investigation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/providers"
	"github.com/veriscope/modelaudit/internal/domain/repositories"
)

// Tracker owns the progress record of each run. The orchestrator is the
// single writer; every mutation replaces the whole record and fans out a
// snapshot over the event bus for live stream subscribers.
//
// Transitions are monotone: a completed step never goes back to running,
// and a terminal record refuses further writes. Illegal transitions are
// logged and dropped rather than surfaced as errors, since a cosmetic
// progress glitch must never abort a run.
type Tracker struct {
	repo repositories.ProgressRepository
	bus  providers.EventBus
}

// NewTracker creates a progress tracker. bus may be nil when live
// streaming is not wired up.
func NewTracker(repo repositories.ProgressRepository, bus providers.EventBus) *Tracker {
	return &Tracker{repo: repo, bus: bus}
}

// CreateProgress initializes the record for a new run with every step
// pending and overall status preparing.
func (t *Tracker) CreateProgress(ctx context.Context, assessmentID, modelName string, steps []entities.ProgressStep, totalItems int) error {
	record := &entities.ProgressRecord{
		AssessmentID:  assessmentID,
		ModelName:     modelName,
		TotalItems:    totalItems,
		Steps:         steps,
		OverallStatus: entities.OverallPreparing,
	}
	return t.write(ctx, record)
}

// SetRunning moves the overall status from preparing to running.
func (t *Tracker) SetRunning(ctx context.Context, assessmentID string) error {
	return t.mutate(ctx, assessmentID, func(record *entities.ProgressRecord) {
		if record.OverallStatus == entities.OverallPreparing {
			record.OverallStatus = entities.OverallRunning
		}
	})
}

// AdvanceStep moves one step forward in its lifecycle and stamps the
// transition time. Regressions (completed back to running, error back to
// anything) are dropped.
func (t *Tracker) AdvanceStep(ctx context.Context, assessmentID, stepID string, status entities.StepStatus, details string) error {
	return t.mutate(ctx, assessmentID, func(record *entities.ProgressRecord) {
		step := record.Step(stepID)
		if step == nil {
			log.Warn().Str("assessment_id", assessmentID).Str("step", stepID).Msg("progress step not found, dropping transition")
			return
		}
		if !stepTransitionAllowed(step.Status, status) {
			log.Warn().
				Str("assessment_id", assessmentID).
				Str("step", stepID).
				Str("from", string(step.Status)).
				Str("to", string(status)).
				Msg("illegal step transition, dropping")
			return
		}
		now := time.Now()
		step.Status = status
		step.Details = details
		step.Timestamp = &now
	})
}

// SetCurrentItem records the criterion currently being processed.
func (t *Tracker) SetCurrentItem(ctx context.Context, assessmentID string, item entities.ProgressItem) error {
	return t.mutate(ctx, assessmentID, func(record *entities.ProgressRecord) {
		record.CurrentItem = &item
	})
}

// ClearCurrentItem removes the current-item marker.
func (t *Tracker) ClearCurrentItem(ctx context.Context, assessmentID string) error {
	return t.mutate(ctx, assessmentID, func(record *entities.ProgressRecord) {
		record.CurrentItem = nil
	})
}

// IncrementCompleted bumps the completed-item counter by n.
func (t *Tracker) IncrementCompleted(ctx context.Context, assessmentID string, n int) error {
	return t.mutate(ctx, assessmentID, func(record *entities.ProgressRecord) {
		record.CompletedItems += n
		if record.CompletedItems > record.TotalItems {
			record.CompletedItems = record.TotalItems
		}
	})
}

// Finalize moves the run to a terminal overall status. On error the
// currently running steps are marked errored with the given details.
func (t *Tracker) Finalize(ctx context.Context, assessmentID string, status entities.OverallStatus, details string) error {
	return t.mutate(ctx, assessmentID, func(record *entities.ProgressRecord) {
		record.OverallStatus = status
		record.CurrentItem = nil
		if status != entities.OverallError {
			return
		}
		now := time.Now()
		for i := range record.Steps {
			if record.Steps[i].Status == entities.StepRunning {
				record.Steps[i].Status = entities.StepError
				record.Steps[i].Details = details
				record.Steps[i].Timestamp = &now
			}
		}
	})
}

// Get returns the current snapshot for one run.
func (t *Tracker) Get(ctx context.Context, assessmentID string) (*entities.ProgressRecord, error) {
	return t.repo.Get(ctx, assessmentID)
}

func (t *Tracker) mutate(ctx context.Context, assessmentID string, apply func(*entities.ProgressRecord)) error {
	record, err := t.repo.Get(ctx, assessmentID)
	if err != nil {
		return err
	}
	if record.OverallStatus.Terminal() {
		log.Warn().
			Str("assessment_id", assessmentID).
			Str("status", string(record.OverallStatus)).
			Msg("progress record is terminal, dropping write")
		return nil
	}
	apply(record)
	return t.write(ctx, record)
}

func (t *Tracker) write(ctx context.Context, record *entities.ProgressRecord) error {
	if err := t.repo.Set(ctx, record); err != nil {
		return err
	}
	if t.bus != nil {
		channel := providers.GetProgressChannel(record.AssessmentID)
		if err := t.bus.Publish(ctx, channel, record); err != nil {
			log.Warn().Err(err).Str("assessment_id", record.AssessmentID).Msg("failed to publish progress event")
		}
	}
	return nil
}

func stepTransitionAllowed(from, to entities.StepStatus) bool {
	switch from {
	case entities.StepPending:
		return to == entities.StepRunning || to == entities.StepCompleted || to == entities.StepError
	case entities.StepRunning:
		return to == entities.StepCompleted || to == entities.StepError
	default:
		return false
	}
}
