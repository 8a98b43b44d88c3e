package entities

// Criterion is one fixed compliance checkpoint in the assessment catalog.
// The catalog is seeded once and read-only afterwards.
type Criterion struct {
	ID               string `json:"id"`
	Category         string `json:"category"`
	Name             string `json:"name"`
	Criteria         string `json:"criteria"`
	Standards        string `json:"standards"`
	EvidenceExamples string `json:"evidence_examples"`
	Risk             string `json:"risk"`
	DisplayOrder     int    `json:"display_order"`
}
