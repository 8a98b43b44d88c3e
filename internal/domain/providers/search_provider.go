package providers

import (
	"context"

	"github.com/veriscope/modelaudit/internal/domain/entities"
)

// SearchProvider defines the external web search capability.
type SearchProvider interface {
	// Search returns ranked documents for a query.
	Search(ctx context.Context, query string) ([]entities.EvidenceDocument, error)
}
