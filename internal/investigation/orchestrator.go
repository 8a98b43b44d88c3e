package investigation

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/providers"
	"github.com/veriscope/modelaudit/internal/domain/repositories"
	"github.com/veriscope/modelaudit/internal/infrastructure/observability"
	apperrors "github.com/veriscope/modelaudit/pkg/errors"
)

// Step ids for the phases that exist in every run. Per-group steps use the
// search/judge prefixes plus the group id.
const (
	stepInitialize   = "initialize"
	stepAggregate    = "aggregate"
	stepPersist      = "persist"
	stepSearchPrefix = "search_"
	stepJudgePrefix  = "judge_"
)

// Orchestrator drives investigation runs end to end. Start validates and
// registers a run synchronously, then the pipeline executes on its own
// goroutine; concurrent runs never share mutable state.
type Orchestrator struct {
	planner     *Planner
	retriever   *Retriever
	engine      *Engine
	aggregator  *Aggregator
	tracker     *Tracker
	criteria    repositories.CriterionRepository
	models      repositories.ModelRepository
	assessments repositories.AssessmentRepository
	items       repositories.AssessmentItemRepository
	audits      repositories.AuditLogRepository
	metrics     *observability.Metrics
}

// NewOrchestrator wires the pipeline stages together. metrics may be nil.
func NewOrchestrator(
	planner *Planner,
	retriever *Retriever,
	engine *Engine,
	aggregator *Aggregator,
	tracker *Tracker,
	criteria repositories.CriterionRepository,
	models repositories.ModelRepository,
	assessments repositories.AssessmentRepository,
	items repositories.AssessmentItemRepository,
	audits repositories.AuditLogRepository,
	metrics *observability.Metrics,
) *Orchestrator {
	return &Orchestrator{
		planner:     planner,
		retriever:   retriever,
		engine:      engine,
		aggregator:  aggregator,
		tracker:     tracker,
		criteria:    criteria,
		models:      models,
		assessments: assessments,
		items:       items,
		audits:      audits,
		metrics:     metrics,
	}
}

// Start validates the request, registers the model, assessment and progress
// record, then launches the pipeline in the background. The returned
// assessment is in running state; callers follow completion through the
// progress stream.
func (o *Orchestrator) Start(ctx context.Context, modelName, vendor, createdBy string) (*entities.Assessment, error) {
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		return nil, apperrors.NewValidationError("model name is required")
	}

	catalog, err := o.criteria.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading criteria catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, apperrors.NewValidationError("criteria catalog is empty, seed it before starting investigations")
	}

	planned, skipped := o.planner.Plan(catalog)

	model := &entities.Model{Name: modelName, Vendor: strings.TrimSpace(vendor)}
	if err := o.models.Create(ctx, model); err != nil {
		return nil, fmt.Errorf("creating model record: %w", err)
	}

	assessment := &entities.Assessment{
		ModelID:   model.ID,
		ModelName: modelName,
		Status:    entities.AssessmentStatusRunning,
		CreatedBy: createdBy,
	}
	if err := o.assessments.Create(ctx, assessment); err != nil {
		return nil, fmt.Errorf("creating assessment record: %w", err)
	}

	steps := buildSteps(planned)
	if err := o.tracker.CreateProgress(ctx, assessment.ID, modelName, steps, len(catalog)); err != nil {
		return nil, fmt.Errorf("creating progress record: %w", err)
	}

	if o.metrics != nil {
		o.metrics.RunsStarted.Add(ctx, 1)
	}

	go o.run(context.WithoutCancel(ctx), assessment, model, planned, skipped)

	return assessment, nil
}

func buildSteps(planned []PlannedGroup) []entities.ProgressStep {
	steps := make([]entities.ProgressStep, 0, 2*len(planned)+3)
	steps = append(steps, entities.ProgressStep{ID: stepInitialize, Name: "Initialize investigation", Status: entities.StepPending})
	for _, pg := range planned {
		steps = append(steps,
			entities.ProgressStep{
				ID:     stepSearchPrefix + pg.Group.ID,
				Name:   fmt.Sprintf("Search: %s", pg.Group.Name),
				Status: entities.StepPending,
			},
			entities.ProgressStep{
				ID:     stepJudgePrefix + pg.Group.ID,
				Name:   fmt.Sprintf("Assess: %s", pg.Group.Name),
				Status: entities.StepPending,
			},
		)
	}
	steps = append(steps,
		entities.ProgressStep{ID: stepAggregate, Name: "Aggregate results", Status: entities.StepPending},
		entities.ProgressStep{ID: stepPersist, Name: "Persist assessment", Status: entities.StepPending},
	)
	return steps
}

func (o *Orchestrator) run(ctx context.Context, assessment *entities.Assessment, model *entities.Model, planned []PlannedGroup, skipped []SkippedCriterion) {
	start := time.Now()
	logger := log.With().Str("assessment_id", assessment.ID).Str("model", assessment.ModelName).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("investigation pipeline panicked")
			o.fail(ctx, assessment, fmt.Sprintf("internal error: %v", r))
		}
	}()

	logger.Info().Int("groups", len(planned)).Int("skipped", len(skipped)).Msg("investigation started")

	if err := o.tracker.SetRunning(ctx, assessment.ID); err != nil {
		logger.Warn().Err(err).Msg("failed to mark progress running")
	}
	o.advance(ctx, assessment.ID, stepInitialize, entities.StepRunning, "")
	o.advance(ctx, assessment.ID, stepInitialize, entities.StepCompleted,
		fmt.Sprintf("%d search groups planned", len(planned)))

	// Judgements from processed groups feed the category narratives;
	// skipped criteria join only the overall statistics.
	judgedByCategory := make(map[string][]providers.JudgedCriterion)
	var allJudged []providers.JudgedCriterion

	for _, pg := range planned {
		searchStep := stepSearchPrefix + pg.Group.ID
		judgeStep := stepJudgePrefix + pg.Group.ID

		o.advance(ctx, assessment.ID, searchStep, entities.StepRunning, "")
		query := buildQuery(assessment.ModelName, model.Vendor, pg.Group.SearchQuery)
		documents := o.retriever.Search(ctx, query)
		if o.metrics != nil {
			o.metrics.SearchCallCount.Add(ctx, 1, metric.WithAttributes(attribute.String("group", pg.Group.ID)))
		}
		o.advance(ctx, assessment.ID, searchStep, entities.StepCompleted,
			fmt.Sprintf("%d sources found", len(documents)))

		o.advance(ctx, assessment.ID, judgeStep, entities.StepRunning, "")
		judgements := o.engine.Judge(ctx, pg.Criteria, documents, assessment.ModelName, pg.Group)
		if o.metrics != nil {
			o.metrics.JudgeCallCount.Add(ctx, 1, metric.WithAttributes(attribute.String("group", pg.Group.ID)))
		}

		for _, criterion := range pg.Criteria {
			if err := o.tracker.SetCurrentItem(ctx, assessment.ID, entities.ProgressItem{
				ID:       criterion.ID,
				Name:     criterion.Name,
				Category: criterion.Category,
			}); err != nil {
				logger.Warn().Err(err).Msg("failed to set current progress item")
			}

			judgement := judgements[criterion.ID]
			if err := o.persistItem(ctx, assessment.ID, criterion.ID, judgement); err != nil {
				logger.Error().Err(err).Str("criterion", criterion.ID).Msg("failed to persist assessment item")
			}

			judgedByCategory[criterion.Category] = append(judgedByCategory[criterion.Category], providers.JudgedCriterion{
				Criterion: criterion,
				Judgement: judgement,
			})
			allJudged = append(allJudged, providers.JudgedCriterion{Criterion: criterion, Judgement: judgement})

			if err := o.tracker.IncrementCompleted(ctx, assessment.ID, 1); err != nil {
				logger.Warn().Err(err).Msg("failed to increment completed count")
			}
		}
		if err := o.tracker.ClearCurrentItem(ctx, assessment.ID); err != nil {
			logger.Warn().Err(err).Msg("failed to clear current progress item")
		}

		o.advance(ctx, assessment.ID, judgeStep, entities.StepCompleted,
			fmt.Sprintf("%d criteria assessed", len(pg.Criteria)))
	}

	for _, sc := range skipped {
		judgement := entities.Judgement{
			Verdict:   entities.VerdictUnknown,
			Rationale: sc.Reason,
		}
		if err := o.persistItem(ctx, assessment.ID, sc.Criterion.ID, judgement); err != nil {
			logger.Error().Err(err).Str("criterion", sc.Criterion.ID).Msg("failed to persist skipped item")
		}
		allJudged = append(allJudged, providers.JudgedCriterion{Criterion: sc.Criterion, Judgement: judgement})
		if err := o.tracker.IncrementCompleted(ctx, assessment.ID, 1); err != nil {
			logger.Warn().Err(err).Msg("failed to increment completed count")
		}
	}

	o.advance(ctx, assessment.ID, stepAggregate, entities.StepRunning, "")
	categorySummaries := make(map[string]string, len(judgedByCategory))
	for category, judged := range judgedByCategory {
		if summary := o.aggregator.SummarizeCategory(ctx, category, judged, assessment.ModelName); summary != "" {
			categorySummaries[category] = summary
		}
	}
	overall := o.aggregator.SummarizeOverall(ctx, categorySummaries, allJudged, assessment.ModelName)
	o.advance(ctx, assessment.ID, stepAggregate, entities.StepCompleted,
		fmt.Sprintf("%d category summaries generated", len(categorySummaries)))

	o.advance(ctx, assessment.ID, stepPersist, entities.StepRunning, "")
	assessment.Status = entities.AssessmentStatusCompleted
	assessment.Summary = overall
	assessment.CategorySummaries = categorySummaries
	if err := o.assessments.Update(ctx, assessment); err != nil {
		logger.Error().Err(err).Msg("failed to persist completed assessment")
		o.fail(ctx, assessment, "failed to persist assessment results")
		return
	}
	o.recordAudit(ctx, assessment, len(allJudged))
	o.advance(ctx, assessment.ID, stepPersist, entities.StepCompleted, "")

	if err := o.tracker.Finalize(ctx, assessment.ID, entities.OverallCompleted, ""); err != nil {
		logger.Warn().Err(err).Msg("failed to finalize progress record")
	}

	if o.metrics != nil {
		o.metrics.RunsCompleted.Add(ctx, 1)
		o.metrics.PipelineDuration.Record(ctx, float64(time.Since(start).Milliseconds()))
	}
	logger.Info().Dur("duration", time.Since(start)).Int("criteria", len(allJudged)).Msg("investigation completed")
}

func (o *Orchestrator) fail(ctx context.Context, assessment *entities.Assessment, details string) {
	assessment.Status = entities.AssessmentStatusFailed
	if err := o.assessments.Update(ctx, assessment); err != nil {
		log.Error().Err(err).Str("assessment_id", assessment.ID).Msg("failed to mark assessment failed")
	}
	if err := o.tracker.Finalize(ctx, assessment.ID, entities.OverallError, details); err != nil {
		log.Warn().Err(err).Str("assessment_id", assessment.ID).Msg("failed to finalize errored progress record")
	}
	if o.metrics != nil {
		o.metrics.RunsFailed.Add(ctx, 1)
	}
}

func (o *Orchestrator) persistItem(ctx context.Context, assessmentID, criterionID string, judgement entities.Judgement) error {
	return o.items.Create(ctx, &entities.AssessmentItem{
		AssessmentID: assessmentID,
		CriterionID:  criterionID,
		Verdict:      judgement.Verdict,
		Rationale:    judgement.Rationale,
		Evidences:    judgement.Evidences,
		FilledBy:     "ai",
	})
}

func (o *Orchestrator) recordAudit(ctx context.Context, assessment *entities.Assessment, itemCount int) {
	err := o.audits.Create(ctx, &entities.AuditLog{
		User:       assessment.CreatedBy,
		Action:     "investigation_completed",
		EntityType: "assessment",
		EntityID:   assessment.ID,
		Changes: map[string]interface{}{
			"model_name": assessment.ModelName,
			"item_count": itemCount,
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("assessment_id", assessment.ID).Msg("failed to write audit log entry")
	}
}

func (o *Orchestrator) advance(ctx context.Context, assessmentID, stepID string, status entities.StepStatus, details string) {
	if err := o.tracker.AdvanceStep(ctx, assessmentID, stepID, status, details); err != nil {
		log.Warn().Err(err).Str("assessment_id", assessmentID).Str("step", stepID).Msg("failed to advance progress step")
	}
}

func buildQuery(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, " ")
}
