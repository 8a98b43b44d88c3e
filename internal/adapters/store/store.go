// Package store implements the domain repositories over Redis.
//
// Every record is a JSON document under a typed key prefix; set indexes
// speed up the by-assessment item lookups. The store's per-key atomicity is
// the isolation mechanism between concurrent investigation runs.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	redisclient "github.com/veriscope/modelaudit/internal/infrastructure/clients/redis"
	apperrors "github.com/veriscope/modelaudit/pkg/errors"
)

const (
	criterionPrefix      = "criterion:"
	modelPrefix          = "model:"
	assessmentPrefix     = "assessment:"
	assessmentItemPrefix = "assessment_item:"
	adminUserPrefix      = "admin_user:"
	auditPrefix          = "audit:"
	progressPrefix       = "progress:"

	itemsByAssessmentPrefix = "idx:assessment_items:by_assessment:"
)

type base struct {
	client *redisclient.Client
}

func (b *base) getJSON(ctx context.Context, key string, dst interface{}) error {
	data, err := b.client.Client().Get(ctx, key).Bytes()
	if err == redis.Nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("record not found: %s", key))
	}
	if err != nil {
		return apperrors.NewInternalError("failed to read record", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return apperrors.NewInternalError("failed to decode record", err)
	}
	return nil
}

func (b *base) setJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewInternalError("failed to encode record", err)
	}
	if err := b.client.Client().Set(ctx, key, data, 0).Err(); err != nil {
		return apperrors.NewInternalError("failed to write record", err)
	}
	return nil
}

func (b *base) delete(ctx context.Context, key string) error {
	if err := b.client.Client().Del(ctx, key).Err(); err != nil {
		return apperrors.NewInternalError("failed to delete record", err)
	}
	return nil
}

// listKeys returns all keys under a prefix. The collections here are small
// (tens of criteria, one assessment per run), so KEYS is acceptable.
func (b *base) listKeys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := b.client.Client().Keys(ctx, prefix+"*").Result()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list records", err)
	}
	return keys, nil
}
