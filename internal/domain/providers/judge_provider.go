package providers

import (
	"context"

	"github.com/veriscope/modelaudit/internal/domain/entities"
)

// JudgeBatch is one batched judge request covering every criterion of a
// search group plus the group's deduplicated evidence set.
type JudgeBatch struct {
	ModelName string
	GroupName string
	Criteria  []entities.Criterion
	Evidence  []entities.EvidenceDocument
}

// JudgedCriterion pairs a criterion with the judgement produced for it.
type JudgedCriterion struct {
	Criterion entities.Criterion
	Judgement entities.Judgement
}

// VerdictStats are aggregate verdict counts across a judgement set.
type VerdictStats struct {
	Total            int `json:"total"`
	Compliant        int `json:"compliant"`
	NonCompliant     int `json:"non_compliant"`
	NeedsImprovement int `json:"needs_improvement"`
	Unknown          int `json:"unknown"`
}

// CountVerdicts tallies verdicts across judged criteria.
func CountVerdicts(judged []JudgedCriterion) VerdictStats {
	stats := VerdictStats{Total: len(judged)}
	for _, j := range judged {
		switch j.Judgement.Verdict {
		case entities.VerdictCompliant:
			stats.Compliant++
		case entities.VerdictNonCompliant:
			stats.NonCompliant++
		case entities.VerdictNeedsImprovement:
			stats.NeedsImprovement++
		default:
			stats.Unknown++
		}
	}
	return stats
}

// JudgeProvider defines the external structured-judgement capability.
type JudgeProvider interface {
	// JudgeBatch asks for one judgement per criterion in the batch, keyed by
	// criterion id. Entries may be missing for individual criteria; the
	// caller decides how to fill the gaps.
	JudgeBatch(ctx context.Context, batch JudgeBatch) (map[string]entities.Judgement, error)

	// SummarizeCategory produces a short narrative for one category's judgements.
	SummarizeCategory(ctx context.Context, category string, judged []JudgedCriterion, modelName string) (string, error)

	// SummarizeOverall produces the run-level narrative from the category
	// summaries and aggregate verdict statistics.
	SummarizeOverall(ctx context.Context, categorySummaries map[string]string, stats VerdictStats, modelName string) (string, error)
}
