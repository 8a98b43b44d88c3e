package investigation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veriscope/modelaudit/internal/domain/providers"
)

// Aggregator rolls per-criterion judgements up into category narratives and
// one overall narrative. Narrative failures degrade to fixed strings so the
// pipeline is never blocked on summary generation.
type Aggregator struct {
	judge   providers.JudgeProvider
	timeout time.Duration
}

// NewAggregator creates an aggregator. judge may be nil for templated mode.
func NewAggregator(judge providers.JudgeProvider, timeout time.Duration) *Aggregator {
	return &Aggregator{judge: judge, timeout: timeout}
}

// SummarizeCategory produces the narrative for one category from the
// judgements belonging to it. Returns "" for an empty judgement list; the
// caller omits such categories entirely.
func (a *Aggregator) SummarizeCategory(ctx context.Context, category string, judged []providers.JudgedCriterion, modelName string) string {
	if len(judged) == 0 {
		return ""
	}

	stats := providers.CountVerdicts(judged)
	if a.judge == nil {
		return fmt.Sprintf(
			"%s assessment for %s: %d of %d criteria compliant, %d non-compliant, %d needing improvement, %d with insufficient information.",
			category, modelName, stats.Compliant, stats.Total, stats.NonCompliant, stats.NeedsImprovement, stats.Unknown,
		)
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	summary, err := a.judge.SummarizeCategory(callCtx, category, judged, modelName)
	if err != nil {
		log.Warn().Err(err).Str("category", category).Msg("category summary generation failed")
		return fmt.Sprintf("Summary generation failed for %s", category)
	}
	return summary
}

// SummarizeOverall produces the run-level narrative from the category
// summaries and the full judgement set.
func (a *Aggregator) SummarizeOverall(ctx context.Context, categorySummaries map[string]string, judged []providers.JudgedCriterion, modelName string) string {
	stats := providers.CountVerdicts(judged)
	if a.judge == nil {
		return fmt.Sprintf(
			"Overall assessment for %s: %d criteria assessed across %d categories; %d compliant, %d non-compliant, %d needing improvement, %d with insufficient information.",
			modelName, stats.Total, len(categorySummaries), stats.Compliant, stats.NonCompliant, stats.NeedsImprovement, stats.Unknown,
		)
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	summary, err := a.judge.SummarizeOverall(callCtx, categorySummaries, stats, modelName)
	if err != nil {
		log.Warn().Err(err).Str("model", modelName).Msg("overall summary generation failed")
		return fmt.Sprintf("Overall assessment generation failed for %s", modelName)
	}
	return summary
}
