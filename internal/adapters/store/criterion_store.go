package store

import (
	"context"
	"sort"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/repositories"
	redisclient "github.com/veriscope/modelaudit/internal/infrastructure/clients/redis"
	apperrors "github.com/veriscope/modelaudit/pkg/errors"
)

// CriterionStore implements CriterionRepository over Redis.
type CriterionStore struct {
	base
}

// NewCriterionStore creates a new criterion store.
func NewCriterionStore(client *redisclient.Client) repositories.CriterionRepository {
	return &CriterionStore{base{client: client}}
}

// Create stores a catalog criterion.
func (s *CriterionStore) Create(ctx context.Context, criterion *entities.Criterion) error {
	if criterion.ID == "" {
		return apperrors.NewValidationError("criterion id is required")
	}
	return s.setJSON(ctx, criterionPrefix+criterion.ID, criterion)
}

// GetByID returns one criterion.
func (s *CriterionStore) GetByID(ctx context.Context, id string) (*entities.Criterion, error) {
	var criterion entities.Criterion
	if err := s.getJSON(ctx, criterionPrefix+id, &criterion); err != nil {
		return nil, err
	}
	return &criterion, nil
}

// List returns the full catalog sorted by display order.
func (s *CriterionStore) List(ctx context.Context) ([]entities.Criterion, error) {
	keys, err := s.listKeys(ctx, criterionPrefix)
	if err != nil {
		return nil, err
	}

	criteria := make([]entities.Criterion, 0, len(keys))
	for _, key := range keys {
		var criterion entities.Criterion
		if err := s.getJSON(ctx, key, &criterion); err != nil {
			continue
		}
		criteria = append(criteria, criterion)
	}

	sort.Slice(criteria, func(i, j int) bool {
		return criteria[i].DisplayOrder < criteria[j].DisplayOrder
	})
	return criteria, nil
}
