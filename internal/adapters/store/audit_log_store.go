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

// AuditLogStore implements AuditLogRepository over Redis.
type AuditLogStore struct {
	base
}

// NewAuditLogStore creates a new audit log store.
func NewAuditLogStore(client *redisclient.Client) repositories.AuditLogRepository {
	return &AuditLogStore{base{client: client}}
}

// Create stores an audit log entry, stamping id and timestamp.
func (s *AuditLogStore) Create(ctx context.Context, log *entities.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	return s.setJSON(ctx, auditPrefix+log.ID, log)
}

// List returns audit log entries, newest first, capped at limit.
func (s *AuditLogStore) List(ctx context.Context, limit int) ([]entities.AuditLog, error) {
	keys, err := s.listKeys(ctx, auditPrefix)
	if err != nil {
		return nil, err
	}

	logs := make([]entities.AuditLog, 0, len(keys))
	for _, key := range keys {
		var log entities.AuditLog
		if err := s.getJSON(ctx, key, &log); err != nil {
			continue
		}
		logs = append(logs, log)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}
