package investigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/investigation"
	"github.com/veriscope/modelaudit/internal/seed"
)

func criterion(id, category string) entities.Criterion {
	return entities.Criterion{ID: id, Category: category, Name: "Criterion " + id}
}

func TestPlanner_PartitionsCatalogByCategory(t *testing.T) {
	planner, err := investigation.NewPlanner(investigation.DefaultSearchGroups(), 7)
	require.NoError(t, err)

	catalog := []entities.Criterion{
		criterion("a", "Security"),
		criterion("b", "Security"),
		criterion("c", "AI Ethics"),
	}

	planned, skipped := planner.Plan(catalog)

	require.Len(t, planned, 2)
	assert.Empty(t, skipped)
	assert.Equal(t, "security_risk", planned[0].Group.ID)
	assert.Len(t, planned[0].Criteria, 2)
	assert.Equal(t, "ai_ethics", planned[1].Group.ID)
	assert.Len(t, planned[1].Criteria, 1)
}

func TestPlanner_SkipsUnmappedCategories(t *testing.T) {
	planner, err := investigation.NewPlanner(investigation.DefaultSearchGroups(), 7)
	require.NoError(t, err)

	catalog := []entities.Criterion{
		criterion("a", "Security"),
		criterion("b", "Astrology"),
	}

	planned, skipped := planner.Plan(catalog)

	require.Len(t, planned, 1)
	require.Len(t, skipped, 1)
	assert.Equal(t, "b", skipped[0].Criterion.ID)
	assert.Contains(t, skipped[0].Reason, "Astrology")
}

func TestPlanner_GroupCapSkipsOverflowCriteria(t *testing.T) {
	planner, err := investigation.NewPlanner(investigation.DefaultSearchGroups(), 2)
	require.NoError(t, err)

	catalog := []entities.Criterion{
		criterion("a", "Legal & Privacy"),
		criterion("b", "Security"),
		criterion("c", "AI Ethics"),
		criterion("d", "AI Ethics"),
	}

	planned, skipped := planner.Plan(catalog)

	require.Len(t, planned, 2)
	require.Len(t, skipped, 2)
	for _, sc := range skipped {
		assert.Contains(t, sc.Reason, "group cap")
	}
}

func TestPlanner_RejectsDuplicateCategoryMapping(t *testing.T) {
	groups := []investigation.SearchGroup{
		{ID: "one", Categories: []string{"Security"}},
		{ID: "two", Categories: []string{"Security"}},
	}

	_, err := investigation.NewPlanner(groups, 7)
	assert.Error(t, err)
}

func TestPlanner_RejectsNonPositiveCap(t *testing.T) {
	_, err := investigation.NewPlanner(investigation.DefaultSearchGroups(), 0)
	assert.Error(t, err)
}

// Every category in the embedded catalog must belong to a default search
// group, otherwise seeded criteria would always come back unknown.
func TestDefaultSearchGroups_CoverEmbeddedCatalog(t *testing.T) {
	catalog, err := seed.Criteria()
	require.NoError(t, err)
	require.NotEmpty(t, catalog)

	planner, err := investigation.NewPlanner(investigation.DefaultSearchGroups(), 7)
	require.NoError(t, err)

	planned, skipped := planner.Plan(catalog)

	assert.Empty(t, skipped)
	total := 0
	for _, pg := range planned {
		total += len(pg.Criteria)
	}
	assert.Equal(t, len(catalog), total)
}
