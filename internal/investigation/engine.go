package investigation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/providers"
)

const (
	snippetLimit        = 300
	mockEvidencePerItem = 2
)

// Engine produces one judgement per criterion from a group's evidence set.
// All criteria of a group go to the judge in a single batched call so
// external call volume is bounded by the group count, not the catalog size.
type Engine struct {
	judge   providers.JudgeProvider
	timeout time.Duration
}

// NewEngine creates a judgement engine. judge may be nil for mock mode.
func NewEngine(judge providers.JudgeProvider, timeout time.Duration) *Engine {
	return &Engine{judge: judge, timeout: timeout}
}

// Judge returns a judgement for every criterion in the group, keyed by
// criterion id.
//
// Empty evidence short-circuits every criterion to Unknown without calling
// the judge: insufficient evidence is a hard override, not a judge decision.
// A failed or partially-parsed judge response degrades the affected criteria
// to Unknown instead of aborting the batch.
func (e *Engine) Judge(ctx context.Context, criteria []entities.Criterion, evidence []entities.EvidenceDocument, modelName string, group SearchGroup) map[string]entities.Judgement {
	judgements := make(map[string]entities.Judgement, len(criteria))
	if len(criteria) == 0 {
		return judgements
	}

	if len(evidence) == 0 {
		log.Warn().Str("group", group.ID).Msg("no evidence for group, returning insufficient-information judgements")
		for _, criterion := range criteria {
			judgements[criterion.ID] = entities.Judgement{
				Verdict:   entities.VerdictUnknown,
				Rationale: fmt.Sprintf("no evidence available to assess %s", criterion.Name),
			}
		}
		return judgements
	}

	if e.judge == nil {
		log.Warn().Str("group", group.ID).Msg("judge provider not configured, using mock judgements")
		for _, criterion := range criteria {
			judgements[criterion.ID] = mockJudgement(criterion, evidence)
		}
		return judgements
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	parsed, err := e.judge.JudgeBatch(ctx, providers.JudgeBatch{
		ModelName: modelName,
		GroupName: group.Name,
		Criteria:  criteria,
		Evidence:  evidence,
	})
	if err != nil {
		log.Warn().Err(err).Str("group", group.ID).Msg("judge call failed, degrading batch to unknown")
		parsed = nil
	}

	for _, criterion := range criteria {
		judgement, ok := parsed[criterion.ID]
		if !ok {
			judgements[criterion.ID] = entities.Judgement{
				Verdict:   entities.VerdictUnknown,
				Rationale: "analysis failed",
			}
			continue
		}
		judgements[criterion.ID] = sanitizeJudgement(judgement)
	}
	return judgements
}

func sanitizeJudgement(judgement entities.Judgement) entities.Judgement {
	for i := range judgement.Evidences {
		ev := &judgement.Evidences[i]
		ev.Snippet = truncateRunes(ev.Snippet, snippetLimit)
		if ev.Confidence < 0 {
			ev.Confidence = 0
		}
		if ev.Confidence > 1 {
			ev.Confidence = 1
		}
	}
	return judgement
}

func mockJudgement(criterion entities.Criterion, evidence []entities.EvidenceDocument) entities.Judgement {
	verdicts := []entities.Verdict{
		entities.VerdictCompliant,
		entities.VerdictNonCompliant,
		entities.VerdictNeedsImprovement,
	}

	evidences := make([]entities.Evidence, 0, mockEvidencePerItem)
	for _, doc := range evidence {
		if len(evidences) == mockEvidencePerItem {
			break
		}
		evidences = append(evidences, entities.Evidence{
			URL:        doc.URL,
			Title:      doc.Title,
			Snippet:    truncateRunes(doc.Content, 200),
			Confidence: 0.8 + rand.Float64()*0.2,
		})
	}

	return entities.Judgement{
		Verdict:   verdicts[rand.IntN(len(verdicts))],
		Rationale: fmt.Sprintf("Mock assessment for %s", criterion.Name),
		Evidences: evidences,
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
