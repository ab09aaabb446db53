package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jamestownkid/dontgoogleme/models"
)

func namedConcepts(n int) []string {
	concepts := make([]string, n)
	for i := range concepts {
		concepts[i] = fmt.Sprintf("concept%02d", i)
	}
	return concepts
}

func TestPlanQuotas_Uniform(t *testing.T) {
	quotas := PlanQuotas([]string{"rome", "caesar", "gaul"}, models.Budget{
		MaxConcepts:      20,
		ImagesPerConcept: 3,
		MaxTotalImages:   60,
		MinImagesOverall: 0,
	})

	assert.Len(t, quotas, 3)
	for _, q := range quotas {
		assert.Equal(t, 3, q.ImagesNeeded)
	}
}

func TestPlanQuotas_MinimumEffortRaisesTarget(t *testing.T) {
	// 5 concepts x 3 images = 15 naive, below the floor of 20.
	quotas := PlanQuotas(namedConcepts(5), models.Budget{
		MaxConcepts:      20,
		ImagesPerConcept: 3,
		MaxTotalImages:   60,
		MinImagesOverall: 20,
	})

	assert.Equal(t, 20, models.TotalNeeded(quotas))
	for _, q := range quotas {
		assert.Equal(t, 4, q.ImagesNeeded)
	}
}

func TestPlanQuotas_CeilingCapsAndTailShrinks(t *testing.T) {
	// 3 concepts x 4 = 12 naive, capped at 10: ceil spread gives 4,4,2.
	quotas := PlanQuotas(namedConcepts(3), models.Budget{
		MaxConcepts:      20,
		ImagesPerConcept: 4,
		MaxTotalImages:   10,
		MinImagesOverall: 0,
	})

	assert.Equal(t, []int{4, 4, 2}, needs(quotas))
}

func TestPlanQuotas_CeilingBoundsFloorSpread(t *testing.T) {
	// Floor 50 over 4 concepts wants ceil(50/4)=13 each, clamped to the
	// ceiling of 6; the first concept then takes the whole ceiling.
	quotas := PlanQuotas(namedConcepts(4), models.Budget{
		MaxConcepts:      20,
		ImagesPerConcept: 1,
		MaxTotalImages:   6,
		MinImagesOverall: 50,
	})

	assert.Equal(t, []int{6}, needs(quotas))
}

func TestPlanQuotas_FloorRestoresCappedDemand(t *testing.T) {
	// Naive 20 is capped to 10, then raised back to the floor of 20: every
	// concept is asked for 4, but the walk still stops at the ceiling.
	quotas := PlanQuotas(namedConcepts(5), models.Budget{
		MaxConcepts:      20,
		ImagesPerConcept: 4,
		MaxTotalImages:   10,
		MinImagesOverall: 20,
	})

	assert.Equal(t, []int{4, 4, 2}, needs(quotas))
}

func TestPlanQuotas_FloorSpreadMayOvershootFloor(t *testing.T) {
	// Floor 21 over 5 concepts rounds up to 5 each; all 25 fit under the
	// ceiling, so the run collects more than the floor asked for.
	quotas := PlanQuotas(namedConcepts(5), models.Budget{
		MaxConcepts:      20,
		ImagesPerConcept: 3,
		MaxTotalImages:   60,
		MinImagesOverall: 21,
	})

	assert.Equal(t, []int{5, 5, 5, 5, 5}, needs(quotas))
}

func TestPlanQuotas_TruncatesToMaxConcepts(t *testing.T) {
	quotas := PlanQuotas(namedConcepts(30), models.Budget{
		MaxConcepts:      20,
		ImagesPerConcept: 3,
		MaxTotalImages:   60,
		MinImagesOverall: 0,
	})

	assert.Len(t, quotas, 20)
	assert.Equal(t, "concept00", quotas[0].Concept)
	assert.Equal(t, "concept19", quotas[len(quotas)-1].Concept)
}

func TestPlanQuotas_TightBudgetDropsTailConcepts(t *testing.T) {
	// target 2, per-concept ceil(2/4)=1: only the first two concepts get a quota.
	quotas := PlanQuotas(namedConcepts(4), models.Budget{
		MaxConcepts:      20,
		ImagesPerConcept: 3,
		MaxTotalImages:   2,
		MinImagesOverall: 0,
	})

	assert.Equal(t, []int{1, 1}, needs(quotas))
}

func TestPlanQuotas_EmptyConcepts(t *testing.T) {
	assert.Nil(t, PlanQuotas(nil, models.DefaultBudget()))
	assert.Nil(t, PlanQuotas([]string{}, models.DefaultBudget()))
}

func TestPlanQuotas_BudgetInvariant(t *testing.T) {
	budgets := []models.Budget{
		{MaxConcepts: 20, ImagesPerConcept: 3, MaxTotalImages: 60, MinImagesOverall: 20},
		{MaxConcepts: 5, ImagesPerConcept: 10, MaxTotalImages: 7, MinImagesOverall: 30},
		{MaxConcepts: 50, ImagesPerConcept: 1, MaxTotalImages: 3, MinImagesOverall: 0},
	}
	for _, b := range budgets {
		for n := 1; n <= 25; n++ {
			quotas := PlanQuotas(namedConcepts(n), b)
			total := models.TotalNeeded(quotas)
			assert.LessOrEqual(t, total, b.MaxTotalImages,
				"budget %+v with %d concepts exceeded ceiling", b, n)
			for _, q := range quotas {
				assert.GreaterOrEqual(t, q.ImagesNeeded, 1)
			}
		}
	}
}

func needs(quotas []models.ConceptQuota) []int {
	out := make([]int, len(quotas))
	for i, q := range quotas {
		out[i] = q.ImagesNeeded
	}
	return out
}
