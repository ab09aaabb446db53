package models

import "github.com/Jamestownkid/dontgoogleme/internal/config"

// Budget is the immutable per-run image budget. MaxTotalImages is the hard
// ceiling; no other field may exceed it in effect.
type Budget struct {
	MaxConcepts      int
	ImagesPerConcept int
	MaxTotalImages   int
	MinImagesOverall int
}

// DefaultBudget returns the documented default budget.
func DefaultBudget() Budget {
	return Budget{
		MaxConcepts:      config.DefaultMaxKeywords,
		ImagesPerConcept: config.DefaultImagesPerKeyword,
		MaxTotalImages:   config.DefaultMaxTotalImages,
		MinImagesOverall: config.DefaultMinImagesPerSRT,
	}
}

// Normalized returns a copy with out-of-range fields clamped back to the
// defaults (all fields must be >= 1 except MinImagesOverall >= 0).
func (b Budget) Normalized() Budget {
	def := DefaultBudget()
	if b.MaxConcepts < 1 {
		b.MaxConcepts = def.MaxConcepts
	}
	if b.ImagesPerConcept < 1 {
		b.ImagesPerConcept = def.ImagesPerConcept
	}
	if b.MaxTotalImages < 1 {
		b.MaxTotalImages = def.MaxTotalImages
	}
	if b.MinImagesOverall < 0 {
		b.MinImagesOverall = def.MinImagesOverall
	}
	return b
}

// ConceptQuota is one concept's image entitlement for a run. Produced once by
// the allocator, consumed exactly once by the harvest loop.
type ConceptQuota struct {
	Concept      string
	ImagesNeeded int
}

// TotalNeeded sums the image entitlements of a quota list.
func TotalNeeded(quotas []ConceptQuota) int {
	total := 0
	for _, q := range quotas {
		total += q.ImagesNeeded
	}
	return total
}
