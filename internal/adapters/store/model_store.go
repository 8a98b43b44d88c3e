package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/repositories"
	redisclient "github.com/veriscope/modelaudit/internal/infrastructure/clients/redis"
)

// ModelStore implements ModelRepository over Redis.
type ModelStore struct {
	base
}

// NewModelStore creates a new model store.
func NewModelStore(client *redisclient.Client) repositories.ModelRepository {
	return &ModelStore{base{client: client}}
}

// Create stores a model record, assigning an id when missing.
func (s *ModelStore) Create(ctx context.Context, model *entities.Model) error {
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	return s.setJSON(ctx, modelPrefix+model.ID, model)
}

// GetByID returns one model record.
func (s *ModelStore) GetByID(ctx context.Context, id string) (*entities.Model, error) {
	var model entities.Model
	if err := s.getJSON(ctx, modelPrefix+id, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// List returns all model records, newest first.
func (s *ModelStore) List(ctx context.Context) ([]entities.Model, error) {
	keys, err := s.listKeys(ctx, modelPrefix)
	if err != nil {
		return nil, err
	}

	models := make([]entities.Model, 0, len(keys))
	for _, key := range keys {
		var model entities.Model
		if err := s.getJSON(ctx, key, &model); err != nil {
			continue
		}
		models = append(models, model)
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].CreatedAt.After(models[j].CreatedAt)
	})
	return models, nil
}

// Delete removes a model record.
func (s *ModelStore) Delete(ctx context.Context, id string) error {
	return s.delete(ctx, modelPrefix+id)
}
