package services

import "github.com/Jamestownkid/dontgoogleme/models"

// PlanQuotas distributes an image budget across the extracted concepts.
//
// The naive demand is ImagesPerConcept for every concept. The run target is
// that demand capped at MaxTotalImages and then raised to MinImagesOverall,
// so the floor can ask for more than the ceiling alone would. The target is
// spread as evenly as possible (ceil), each concept's share clamped to
// MaxTotalImages, and the walk hands shares out until the overall ceiling
// runs out, so later concepts may get less, or nothing at all.
func PlanQuotas(concepts []string, budget models.Budget) []models.ConceptQuota {
	budget = budget.Normalized()

	if len(concepts) > budget.MaxConcepts {
		concepts = concepts[:budget.MaxConcepts]
	}
	if len(concepts) == 0 {
		return nil
	}

	count := len(concepts)
	target := budget.ImagesPerConcept * count
	if target > budget.MaxTotalImages {
		target = budget.MaxTotalImages
	}
	if target < budget.MinImagesOverall {
		target = budget.MinImagesOverall
	}

	perConcept := (target + count - 1) / count
	if perConcept < 1 {
		perConcept = 1
	}
	if perConcept > budget.MaxTotalImages {
		perConcept = budget.MaxTotalImages
	}

	quotas := make([]models.ConceptQuota, 0, count)
	remaining := budget.MaxTotalImages
	for _, concept := range concepts {
		if remaining <= 0 {
			break
		}
		n := perConcept
		if n > remaining {
			n = remaining
		}
		quotas = append(quotas, models.ConceptQuota{Concept: concept, ImagesNeeded: n})
		remaining -= n
	}
	return quotas
}
