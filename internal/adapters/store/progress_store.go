package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/repositories"
	redisclient "github.com/veriscope/modelaudit/internal/infrastructure/clients/redis"
	apperrors "github.com/veriscope/modelaudit/pkg/errors"
)

// ProgressStore implements ProgressRepository over Redis.
// Records carry a TTL: progress is disposable operational state, not audit data.
type ProgressStore struct {
	base
	ttl time.Duration
}

// NewProgressStore creates a new progress store with the given retention window.
func NewProgressStore(client *redisclient.Client, ttl time.Duration) repositories.ProgressRepository {
	return &ProgressStore{base: base{client: client}, ttl: ttl}
}

// Get returns one run's progress snapshot.
func (s *ProgressStore) Get(ctx context.Context, assessmentID string) (*entities.ProgressRecord, error) {
	var record entities.ProgressRecord
	if err := s.getJSON(ctx, progressPrefix+assessmentID, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Set replaces the whole progress record and refreshes its TTL.
func (s *ProgressStore) Set(ctx context.Context, record *entities.ProgressRecord) error {
	record.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewInternalError("failed to encode progress record", err)
	}
	if err := s.client.Client().Set(ctx, progressPrefix+record.AssessmentID, data, s.ttl).Err(); err != nil {
		return apperrors.NewInternalError("failed to write progress record", err)
	}
	return nil
}

// Delete removes one run's progress snapshot.
func (s *ProgressStore) Delete(ctx context.Context, assessmentID string) error {
	return s.delete(ctx, progressPrefix+assessmentID)
}
