// Package investigation implements the pipeline that turns a model name into
// a multi-category compliance report: planning topical search groups,
// gathering web evidence, judging criteria in batches, aggregating
// narratives, and tracking observable run progress.
package investigation

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/veriscope/modelaudit/internal/domain/entities"
)

// SearchGroup is a batch of criteria categories sharing one topical search
// query, used to bound external search calls regardless of catalog size.
// Groups are defined in code, never persisted.
type SearchGroup struct {
	ID          string
	Name        string
	Categories  []string
	SearchQuery string
}

// DefaultSearchGroups returns the seven strategic search groups covering the
// ten catalog categories.
func DefaultSearchGroups() []SearchGroup {
	return []SearchGroup{
		{
			ID:          "legal_privacy",
			Name:        "Legal & Privacy Compliance",
			Categories:  []string{"Legal & Privacy"},
			SearchQuery: "legal compliance privacy protection data protection GDPR regulation personal data",
		},
		{
			ID:          "security_risk",
			Name:        "Security & Risk Management",
			Categories:  []string{"Security"},
			SearchQuery: "security vulnerability encryption access control authentication cyber security data breach",
		},
		{
			ID:          "ai_ethics",
			Name:        "AI Ethics & Responsibility",
			Categories:  []string{"AI Ethics"},
			SearchQuery: "AI ethics bias fairness responsible AI algorithmic fairness ethical discrimination",
		},
		{
			ID:          "technical_quality",
			Name:        "Technical Performance & Quality",
			Categories:  []string{"Technical Soundness"},
			SearchQuery: "performance accuracy reliability scalability quality assurance technical validation robustness",
		},
		{
			ID:          "transparency_governance",
			Name:        "Transparency & Governance",
			Categories:  []string{"Transparency & Accountability", "Data Governance"},
			SearchQuery: "transparency explainability accountability data governance audit trail model interpretability",
		},
		{
			ID:          "business_operations",
			Name:        "Business & Operations",
			Categories:  []string{"Cost & ROI", "Vendor Management", "Integration & Interoperability"},
			SearchQuery: "cost ROI vendor management integration interoperability business value operational",
		},
		{
			ID:          "sustainability",
			Name:        "Sustainability & Environmental Impact",
			Categories:  []string{"Sustainability"},
			SearchQuery: "sustainability environmental impact carbon footprint green AI energy efficiency",
		},
	}
}

// PlannedGroup is one search group with the catalog criteria assigned to it.
type PlannedGroup struct {
	Group    SearchGroup
	Criteria []entities.Criterion
}

// SkippedCriterion is a catalog entry the planner could not assign to a
// processed group, with the reason it was left out.
type SkippedCriterion struct {
	Criterion entities.Criterion
	Reason    string
}

// Planner partitions the criteria catalog into search groups.
type Planner struct {
	groups     []SearchGroup
	maxGroups  int
	byCategory map[string]string
}

// NewPlanner validates that the category-to-group table is disjoint and
// returns a planner capped at maxGroups processed groups per run.
func NewPlanner(groups []SearchGroup, maxGroups int) (*Planner, error) {
	if maxGroups <= 0 {
		return nil, fmt.Errorf("max groups must be positive, got %d", maxGroups)
	}

	byCategory := make(map[string]string)
	for _, group := range groups {
		for _, category := range group.Categories {
			if owner, exists := byCategory[category]; exists {
				return nil, fmt.Errorf("category %q mapped to both group %q and group %q", category, owner, group.ID)
			}
			byCategory[category] = group.ID
		}
	}

	return &Planner{
		groups:     groups,
		maxGroups:  maxGroups,
		byCategory: byCategory,
	}, nil
}

// Plan partitions the catalog into groups to process, in declared group
// order. Criteria in unmapped categories and criteria whose group falls
// beyond the cap are returned as skipped, never silently duplicated.
func (p *Planner) Plan(catalog []entities.Criterion) ([]PlannedGroup, []SkippedCriterion) {
	byGroup := make(map[string][]entities.Criterion)
	var skipped []SkippedCriterion

	for _, criterion := range catalog {
		groupID, ok := p.byCategory[criterion.Category]
		if !ok {
			log.Warn().
				Str("criterion", criterion.ID).
				Str("category", criterion.Category).
				Msg("criterion category has no search group, skipping")
			skipped = append(skipped, SkippedCriterion{
				Criterion: criterion,
				Reason:    fmt.Sprintf("category %q has no search group", criterion.Category),
			})
			continue
		}
		byGroup[groupID] = append(byGroup[groupID], criterion)
	}

	planned := make([]PlannedGroup, 0, p.maxGroups)
	for _, group := range p.groups {
		criteria := byGroup[group.ID]
		if len(criteria) == 0 {
			log.Warn().Str("group", group.ID).Msg("no criteria for search group, skipping")
			continue
		}

		if len(planned) >= p.maxGroups {
			for _, criterion := range criteria {
				skipped = append(skipped, SkippedCriterion{
					Criterion: criterion,
					Reason:    fmt.Sprintf("search group %q beyond the group cap (%d)", group.ID, p.maxGroups),
				})
			}
			continue
		}

		planned = append(planned, PlannedGroup{Group: group, Criteria: criteria})
	}

	return planned, skipped
}
