package entities

import "time"

// Verdict is the four-way compliance judgement for one criterion.
type Verdict string

const (
	VerdictCompliant        Verdict = "compliant"
	VerdictNonCompliant     Verdict = "non_compliant"
	VerdictNeedsImprovement Verdict = "needs_improvement"
	VerdictUnknown          Verdict = "unknown"
)

// Assessment status values.
const (
	AssessmentStatusRunning   = "running"
	AssessmentStatusCompleted = "completed"
	AssessmentStatusFailed    = "failed"
)

// Evidence is one cited source supporting a judgement.
type Evidence struct {
	URL        string  `json:"url"`
	Title      string  `json:"title"`
	Snippet    string  `json:"snippet"`
	Confidence float64 `json:"confidence"`
}

// EvidenceDocument is one ranked result returned by the web search provider.
// Ephemeral; never persisted.
type EvidenceDocument struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Judgement is the verdict, rationale and cited evidence for one criterion.
type Judgement struct {
	Verdict   Verdict    `json:"verdict"`
	Rationale string     `json:"rationale"`
	Evidences []Evidence `json:"evidences"`
}

// Assessment is one investigation run's persisted result record.
type Assessment struct {
	ID                string            `json:"id"`
	ModelID           string            `json:"model_id"`
	ModelName         string            `json:"model_name"`
	Status            string            `json:"status"`
	CreatedBy         string            `json:"created_by"`
	Summary           string            `json:"summary"`
	CategorySummaries map[string]string `json:"category_summaries,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// AssessmentItem is the persisted judgement for one criterion within an assessment.
type AssessmentItem struct {
	ID           string     `json:"id"`
	AssessmentID string     `json:"assessment_id"`
	CriterionID  string     `json:"criterion_id"`
	Verdict      Verdict    `json:"verdict"`
	Rationale    string     `json:"rationale"`
	Evidences    []Evidence `json:"evidences"`
	FilledBy     string     `json:"filled_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
