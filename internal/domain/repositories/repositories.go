package repositories

import (
	"context"

	"github.com/veriscope/modelaudit/internal/domain/entities"
)

// CriterionRepository stores the read-only assessment catalog.
type CriterionRepository interface {
	Create(ctx context.Context, criterion *entities.Criterion) error
	GetByID(ctx context.Context, id string) (*entities.Criterion, error)
	// List returns the full catalog sorted by display order.
	List(ctx context.Context) ([]entities.Criterion, error)
}

// ModelRepository stores assessed model records.
type ModelRepository interface {
	Create(ctx context.Context, model *entities.Model) error
	GetByID(ctx context.Context, id string) (*entities.Model, error)
	List(ctx context.Context) ([]entities.Model, error)
	Delete(ctx context.Context, id string) error
}

// AssessmentRepository stores investigation result records.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *entities.Assessment) error
	GetByID(ctx context.Context, id string) (*entities.Assessment, error)
	// List returns assessments newest first.
	List(ctx context.Context) ([]entities.Assessment, error)
	Update(ctx context.Context, assessment *entities.Assessment) error
	Delete(ctx context.Context, id string) error
}

// AssessmentItemRepository stores per-criterion judgements.
type AssessmentItemRepository interface {
	Create(ctx context.Context, item *entities.AssessmentItem) error
	ListByAssessment(ctx context.Context, assessmentID string) ([]entities.AssessmentItem, error)
	Delete(ctx context.Context, id string) error
}

// AdminUserRepository stores backoffice accounts.
type AdminUserRepository interface {
	Get(ctx context.Context, username string) (*entities.AdminUser, error)
	Create(ctx context.Context, user *entities.AdminUser) error
}

// AuditLogRepository stores administrative action records.
type AuditLogRepository interface {
	Create(ctx context.Context, log *entities.AuditLog) error
	List(ctx context.Context, limit int) ([]entities.AuditLog, error)
}

// ProgressRepository stores disposable run progress snapshots.
// Records expire after a bounded retention window; Set replaces the
// whole record on every transition.
type ProgressRepository interface {
	Get(ctx context.Context, assessmentID string) (*entities.ProgressRecord, error)
	Set(ctx context.Context, record *entities.ProgressRecord) error
	Delete(ctx context.Context, assessmentID string) error
}
