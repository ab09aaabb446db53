package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Jamestownkid/dontgoogleme/internal/logger"
	"github.com/Jamestownkid/dontgoogleme/internal/text"
	"github.com/Jamestownkid/dontgoogleme/models"
)

// sessionRunner abstracts the browser session so the harvest loop can be
// tested without one.
type sessionRunner interface {
	Run(ctx context.Context, req HarvestRequest) (int, error)
}

// Harvester walks the concept quotas sequentially, runs a session per
// concept, and tops up shortfalls with a Wikipedia-biased retry query.
type Harvester struct {
	runner          sessionRunner
	continueOnError bool
}

func NewHarvester(cfg *models.Config) *Harvester {
	return &Harvester{
		runner: NewSessionDriver(SessionOptions{
			Visible:            cfg.UseVisibleBrowser,
			UseExistingProfile: cfg.UseExistingChromeProfile,
			ProfileDir:         cfg.ChromeProfileDir,
			ChromePath:         cfg.ChromePath,
			MaxScrolls:         cfg.MaxScrollsPerKeyword,
		}),
		continueOnError: cfg.ContinueOnKeywordError,
	}
}

// HarvestResult reports what a run actually collected.
type HarvestResult struct {
	TotalSaved int
	PerConcept map[string]int
	Skipped    []string // concepts abandoned after a session failure
}

// HarvestAll processes the quotas in order, one browser session at a time.
// The budget ceiling is enforced across concepts: a concept's effective need
// shrinks to whatever room the cap leaves, and the loop stops when none is
// left. Each concept gets a status line going in and a running-total line
// coming out. stamps, when present, provide timestamp-based artifact names
// shared across the whole run.
func (h *Harvester) HarvestAll(ctx context.Context, quotas []models.ConceptQuota, budget models.Budget, outRoot string, stamps []string, status StatusFunc) (*HarvestResult, error) {
	budget = budget.Normalized()
	if status == nil {
		status = func(string) {}
	}
	result := &HarvestResult{PerConcept: make(map[string]int)}

	for i, quota := range quotas {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		need := quota.ImagesNeeded
		if room := budget.MaxTotalImages - result.TotalSaved; need > room {
			need = room
		}
		if need <= 0 {
			status(fmt.Sprintf("Image cap reached (%d), stopping", budget.MaxTotalImages))
			break
		}

		status(fmt.Sprintf("Keyword %d/%d: %s (%d images)", i+1, len(quotas), quota.Concept, need))
		saved, err := h.harvestConcept(ctx, quota.Concept, need, outRoot, stamps, result.TotalSaved, status)
		result.TotalSaved += saved
		result.PerConcept[quota.Concept] = saved
		status(fmt.Sprintf("'%s' done: %d saved (run total %d)", quota.Concept, saved, result.TotalSaved))

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			if !h.continueOnError {
				return result, fmt.Errorf("harvesting %q: %w", quota.Concept, err)
			}
			logger.Warn("Harvest: skipping %q: %v", quota.Concept, err)
			result.Skipped = append(result.Skipped, quota.Concept)
		}
	}
	return result, nil
}

// harvestConcept runs the primary session for a concept and, if it came up
// short, a second fresh session with a Wikipedia-biased query for exactly the
// shortfall. Both attempts share the concept's output folder and the run's
// stamp sequence.
func (h *Harvester) harvestConcept(ctx context.Context, concept string, need int, outRoot string, stamps []string, startIndex int, status StatusFunc) (int, error) {
	outDir := filepath.Join(outRoot, text.FolderName(concept))

	saved, err := h.runner.Run(ctx, HarvestRequest{
		Query:        concept,
		OutDir:       outDir,
		ImagesNeeded: need,
		Stamps:       stamps,
		StartIndex:   startIndex,
		Status:       status,
	})
	if err != nil {
		return saved, err
	}

	shortfall := need - saved
	if shortfall <= 0 {
		return saved, nil
	}

	status(fmt.Sprintf("Only %d/%d for '%s', retrying via Wikipedia", saved, need, concept))
	extra, err := h.runner.Run(ctx, HarvestRequest{
		Query:        concept + " Wikipedia",
		OutDir:       outDir,
		ImagesNeeded: shortfall,
		Stamps:       stamps,
		StartIndex:   startIndex + saved,
		Status:       status,
	})
	return saved + extra, err
}
