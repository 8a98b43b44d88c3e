package investigation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/providers"
)

// Retriever wraps the external search capability. Provider failures are
// absorbed into an empty result so one bad search never aborts a run; a nil
// provider yields fixed mock documents so the pipeline stays exercisable
// without credentials.
type Retriever struct {
	provider providers.SearchProvider
	timeout  time.Duration
}

// NewRetriever creates a retriever. provider may be nil for mock mode.
func NewRetriever(provider providers.SearchProvider, timeout time.Duration) *Retriever {
	return &Retriever{provider: provider, timeout: timeout}
}

// Search returns deduplicated ranked documents for a query. A single attempt
// is made per call; errors and timeouts produce an empty result.
func (r *Retriever) Search(ctx context.Context, query string) []entities.EvidenceDocument {
	if r.provider == nil {
		log.Warn().Msg("search provider not configured, using mock documents")
		return mockDocuments(query)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	documents, err := r.provider.Search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("search failed, continuing without evidence")
		return nil
	}

	return Deduplicate(documents)
}

// Deduplicate removes documents sharing an exact (url, title) pair, keeping
// the first (highest-ranked) instance. Idempotent.
func Deduplicate(documents []entities.EvidenceDocument) []entities.EvidenceDocument {
	seen := make(map[string]struct{}, len(documents))
	unique := make([]entities.EvidenceDocument, 0, len(documents))
	for _, doc := range documents {
		key := doc.URL + "\x00" + doc.Title
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, doc)
	}
	return unique
}

func mockDocuments(query string) []entities.EvidenceDocument {
	return []entities.EvidenceDocument{
		{
			URL:     "https://example.com/mock1",
			Title:   "Mock result for " + query,
			Content: "This is mock content for testing purposes. The model shows strong security features.",
			Score:   0.95,
		},
		{
			URL:     "https://example.com/mock2",
			Title:   "Security analysis for " + query,
			Content: "The model implements various security measures including data encryption and access controls.",
			Score:   0.90,
		},
	}
}
