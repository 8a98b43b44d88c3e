package investigation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/providers"
	"github.com/veriscope/modelaudit/internal/investigation"
)

type stubJudgeProvider struct {
	judgements map[string]entities.Judgement
	err        error
	calls      int
	lastBatch  providers.JudgeBatch

	categorySummary string
	overallSummary  string
	summaryErr      error
}

func (s *stubJudgeProvider) JudgeBatch(ctx context.Context, batch providers.JudgeBatch) (map[string]entities.Judgement, error) {
	s.calls++
	s.lastBatch = batch
	return s.judgements, s.err
}

func (s *stubJudgeProvider) SummarizeCategory(ctx context.Context, category string, judged []providers.JudgedCriterion, modelName string) (string, error) {
	return s.categorySummary, s.summaryErr
}

func (s *stubJudgeProvider) SummarizeOverall(ctx context.Context, categorySummaries map[string]string, stats providers.VerdictStats, modelName string) (string, error) {
	return s.overallSummary, s.summaryErr
}

var testGroup = investigation.SearchGroup{ID: "security_risk", Name: "Security & Risk Management"}

func testDocuments() []entities.EvidenceDocument {
	return []entities.EvidenceDocument{
		{URL: "https://a.example", Title: "A", Content: "content a", Score: 0.9},
		{URL: "https://b.example", Title: "B", Content: "content b", Score: 0.8},
	}
}

func TestEngine_EmptyEvidenceSkipsJudge(t *testing.T) {
	judge := &stubJudgeProvider{}
	engine := investigation.NewEngine(judge, 0)

	criteria := []entities.Criterion{criterion("a", "Security"), criterion("b", "Security")}
	judgements := engine.Judge(context.Background(), criteria, nil, "TestModel", testGroup)

	assert.Equal(t, 0, judge.calls)
	require.Len(t, judgements, 2)
	for _, c := range criteria {
		j := judgements[c.ID]
		assert.Equal(t, entities.VerdictUnknown, j.Verdict)
		assert.Contains(t, j.Rationale, "no evidence available")
	}
}

func TestEngine_BatchedJudgeCoversAllCriteria(t *testing.T) {
	judge := &stubJudgeProvider{judgements: map[string]entities.Judgement{
		"a": {Verdict: entities.VerdictCompliant, Rationale: "documented"},
		"b": {Verdict: entities.VerdictNeedsImprovement, Rationale: "partial"},
	}}
	engine := investigation.NewEngine(judge, 0)

	criteria := []entities.Criterion{criterion("a", "Security"), criterion("b", "Security")}
	judgements := engine.Judge(context.Background(), criteria, testDocuments(), "TestModel", testGroup)

	assert.Equal(t, 1, judge.calls)
	assert.Len(t, judge.lastBatch.Criteria, 2)
	assert.Equal(t, entities.VerdictCompliant, judgements["a"].Verdict)
	assert.Equal(t, entities.VerdictNeedsImprovement, judgements["b"].Verdict)
}

func TestEngine_PartialParseFillsGapsWithUnknown(t *testing.T) {
	judge := &stubJudgeProvider{judgements: map[string]entities.Judgement{
		"a": {Verdict: entities.VerdictCompliant, Rationale: "documented"},
	}}
	engine := investigation.NewEngine(judge, 0)

	criteria := []entities.Criterion{criterion("a", "Security"), criterion("b", "Security")}
	judgements := engine.Judge(context.Background(), criteria, testDocuments(), "TestModel", testGroup)

	assert.Equal(t, entities.VerdictCompliant, judgements["a"].Verdict)
	assert.Equal(t, entities.VerdictUnknown, judgements["b"].Verdict)
	assert.Equal(t, "analysis failed", judgements["b"].Rationale)
}

func TestEngine_JudgeErrorDegradesWholeBatch(t *testing.T) {
	judge := &stubJudgeProvider{err: errors.New("rate limited")}
	engine := investigation.NewEngine(judge, 0)

	criteria := []entities.Criterion{criterion("a", "Security"), criterion("b", "Security")}
	judgements := engine.Judge(context.Background(), criteria, testDocuments(), "TestModel", testGroup)

	require.Len(t, judgements, 2)
	for _, j := range judgements {
		assert.Equal(t, entities.VerdictUnknown, j.Verdict)
		assert.Equal(t, "analysis failed", j.Rationale)
	}
}

func TestEngine_MockModeBoundsEvidenceAndConfidence(t *testing.T) {
	engine := investigation.NewEngine(nil, 0)

	criteria := []entities.Criterion{criterion("a", "Security")}
	documents := append(testDocuments(), entities.EvidenceDocument{URL: "https://c.example", Title: "C", Content: "content c"})
	judgements := engine.Judge(context.Background(), criteria, documents, "TestModel", testGroup)

	j := judgements["a"]
	assert.NotEqual(t, entities.VerdictUnknown, j.Verdict)
	assert.Contains(t, j.Rationale, "Mock assessment")
	require.LessOrEqual(t, len(j.Evidences), 2)
	for _, ev := range j.Evidences {
		assert.GreaterOrEqual(t, ev.Confidence, 0.8)
		assert.LessOrEqual(t, ev.Confidence, 1.0)
	}
}

func TestEngine_SanitizesSnippetsAndConfidence(t *testing.T) {
	long := strings.Repeat("x", 500)
	judge := &stubJudgeProvider{judgements: map[string]entities.Judgement{
		"a": {
			Verdict:   entities.VerdictCompliant,
			Rationale: "ok",
			Evidences: []entities.Evidence{{URL: "u", Title: "t", Snippet: long, Confidence: 1.7}},
		},
	}}
	engine := investigation.NewEngine(judge, 0)

	judgements := engine.Judge(context.Background(), []entities.Criterion{criterion("a", "Security")}, testDocuments(), "TestModel", testGroup)

	ev := judgements["a"].Evidences[0]
	assert.Len(t, ev.Snippet, 300)
	assert.Equal(t, 1.0, ev.Confidence)
}
