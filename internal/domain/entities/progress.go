package entities

import "time"

// StepStatus is the lifecycle state of one pipeline step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"
)

// OverallStatus is the lifecycle state of one investigation run.
type OverallStatus string

const (
	OverallPreparing OverallStatus = "preparing"
	OverallRunning   OverallStatus = "running"
	OverallCompleted OverallStatus = "completed"
	OverallError     OverallStatus = "error"
)

// Terminal reports whether no further progress writes are expected.
func (s OverallStatus) Terminal() bool {
	return s == OverallCompleted || s == OverallError
}

// ProgressStep is one named step of the pipeline state machine.
type ProgressStep struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	Details   string     `json:"details,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ProgressItem names the criterion currently being processed, for display.
type ProgressItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ProgressRecord is the observable state-machine snapshot of one run.
// Written only by the orchestrator's pipeline, whole-record per transition.
type ProgressRecord struct {
	AssessmentID   string         `json:"assessment_id"`
	ModelName      string         `json:"model_name"`
	TotalItems     int            `json:"total_items"`
	CompletedItems int            `json:"completed_items"`
	CurrentItem    *ProgressItem  `json:"current_item,omitempty"`
	Steps          []ProgressStep `json:"steps"`
	OverallStatus  OverallStatus  `json:"overall_status"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Step returns a pointer to the step with the given id, or nil.
func (p *ProgressRecord) Step(id string) *ProgressStep {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i]
		}
	}
	return nil
}
