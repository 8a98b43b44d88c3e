package seed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriscope/modelaudit/internal/seed"
)

func TestCriteria_CatalogIsWellFormed(t *testing.T) {
	catalog, err := seed.Criteria()
	require.NoError(t, err)
	require.NotEmpty(t, catalog)

	ids := make(map[string]bool)
	orders := make(map[int]bool)
	categories := make(map[string]bool)
	for _, criterion := range catalog {
		assert.NotEmpty(t, criterion.ID)
		assert.NotEmpty(t, criterion.Category)
		assert.NotEmpty(t, criterion.Name)
		assert.NotEmpty(t, criterion.Criteria)
		assert.False(t, ids[criterion.ID], "duplicate id %s", criterion.ID)
		ids[criterion.ID] = true
		assert.False(t, orders[criterion.DisplayOrder], "duplicate display order %d", criterion.DisplayOrder)
		orders[criterion.DisplayOrder] = true
		categories[criterion.Category] = true
	}

	assert.Len(t, categories, 10)
}
