// Package seed carries the embedded assessment catalog and the idempotent
// bootstrap routine that loads it into the store.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/repositories"
)

//go:embed criteria.json
var criteriaJSON []byte

// Criteria returns the embedded assessment catalog.
func Criteria() ([]entities.Criterion, error) {
	var criteria []entities.Criterion
	if err := json.Unmarshal(criteriaJSON, &criteria); err != nil {
		return nil, fmt.Errorf("parsing embedded criteria catalog: %w", err)
	}
	return criteria, nil
}

// Run loads the catalog into the store if it is empty. Existing catalogs
// are left untouched so re-running the seeder is safe.
func Run(ctx context.Context, criteriaRepo repositories.CriterionRepository) error {
	existing, err := criteriaRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("checking existing catalog: %w", err)
	}
	if len(existing) > 0 {
		log.Info().Int("count", len(existing)).Msg("criteria catalog already seeded, skipping")
		return nil
	}

	criteria, err := Criteria()
	if err != nil {
		return err
	}

	for i := range criteria {
		if err := criteriaRepo.Create(ctx, &criteria[i]); err != nil {
			return fmt.Errorf("seeding criterion %s: %w", criteria[i].ID, err)
		}
	}

	log.Info().Int("count", len(criteria)).Msg("criteria catalog seeded")
	return nil
}
