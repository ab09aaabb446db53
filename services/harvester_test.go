package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jamestownkid/dontgoogleme/models"
)

// fakeRunner scripts session outcomes per query and records every request.
type fakeRunner struct {
	saved    map[string]int   // query -> images "saved"
	errs     map[string]error // query -> session error
	requests []HarvestRequest
}

func (f *fakeRunner) Run(_ context.Context, req HarvestRequest) (int, error) {
	f.requests = append(f.requests, req)
	if err := f.errs[req.Query]; err != nil {
		return 0, err
	}
	n := f.saved[req.Query]
	if n > req.ImagesNeeded {
		n = req.ImagesNeeded
	}
	return n, nil
}

func newHarvester(runner sessionRunner, continueOnError bool) *Harvester {
	return &Harvester{runner: runner, continueOnError: continueOnError}
}

func wideBudget() models.Budget {
	return models.Budget{MaxConcepts: 20, ImagesPerConcept: 3, MaxTotalImages: 100, MinImagesOverall: 0}
}

func TestHarvestAll_ShortfallTriggersWikipediaRetry(t *testing.T) {
	runner := &fakeRunner{
		saved: map[string]int{"caesar": 1, "caesar Wikipedia": 2},
	}
	h := newHarvester(runner, true)

	res, err := h.HarvestAll(context.Background(),
		[]models.ConceptQuota{{Concept: "caesar", ImagesNeeded: 3}},
		wideBudget(), "/tmp/out", []string{"00-00-00", "00-00-05"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalSaved)
	require.Len(t, runner.requests, 2)

	primary, retry := runner.requests[0], runner.requests[1]
	assert.Equal(t, "caesar", primary.Query)
	assert.Equal(t, 3, primary.ImagesNeeded)
	assert.Equal(t, "caesar Wikipedia", retry.Query)
	assert.Equal(t, 2, retry.ImagesNeeded, "retry asks for exactly the shortfall")
	assert.Equal(t, primary.OutDir, retry.OutDir, "both attempts share the concept folder")
	assert.Equal(t, 1, retry.StartIndex, "stamp sequence continues past the primary's saves")
}

func TestHarvestAll_NoRetryWhenQuotaMet(t *testing.T) {
	runner := &fakeRunner{saved: map[string]int{"rome": 3}}
	h := newHarvester(runner, true)

	res, err := h.HarvestAll(context.Background(),
		[]models.ConceptQuota{{Concept: "rome", ImagesNeeded: 3}},
		wideBudget(), "/tmp/out", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalSaved)
	assert.Len(t, runner.requests, 1)
}

func TestHarvestAll_CeilingShrinksAndStops(t *testing.T) {
	runner := &fakeRunner{saved: map[string]int{"a": 3, "b": 3, "c": 3}}
	h := newHarvester(runner, true)

	budget := wideBudget()
	budget.MaxTotalImages = 5

	res, err := h.HarvestAll(context.Background(),
		[]models.ConceptQuota{
			{Concept: "a", ImagesNeeded: 3},
			{Concept: "b", ImagesNeeded: 3},
			{Concept: "c", ImagesNeeded: 3},
		},
		budget, "/tmp/out", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalSaved)
	assert.Equal(t, 3, res.PerConcept["a"])
	assert.Equal(t, 2, res.PerConcept["b"], "second concept shrinks to remaining room")
	_, ran := res.PerConcept["c"]
	assert.False(t, ran, "no session once the cap is reached")
}

func TestHarvestAll_SkipsFailedConceptWhenPolicyAllows(t *testing.T) {
	runner := &fakeRunner{
		saved: map[string]int{"b": 2, "b Wikipedia": 0},
		errs:  map[string]error{"a": ErrSearchInputNotFound},
	}
	h := newHarvester(runner, true)

	res, err := h.HarvestAll(context.Background(),
		[]models.ConceptQuota{
			{Concept: "a", ImagesNeeded: 2},
			{Concept: "b", ImagesNeeded: 2},
		},
		wideBudget(), "/tmp/out", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, res.Skipped)
	assert.Equal(t, 2, res.PerConcept["b"], "later concepts still run")
}

func TestHarvestAll_AbortsOnFailureWhenPolicyForbidsSkipping(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"a": ErrSearchInputNotFound}}
	h := newHarvester(runner, false)

	_, err := h.HarvestAll(context.Background(),
		[]models.ConceptQuota{
			{Concept: "a", ImagesNeeded: 2},
			{Concept: "b", ImagesNeeded: 2},
		},
		wideBudget(), "/tmp/out", nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearchInputNotFound)
	assert.Len(t, runner.requests, 1, "run stops at the first failed concept")
}

func TestHarvestAll_CancellationStopsBetweenConcepts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{saved: map[string]int{"a": 2}}
	h := newHarvester(runner, true)

	_, err := h.HarvestAll(ctx,
		[]models.ConceptQuota{{Concept: "a", ImagesNeeded: 2}},
		wideBudget(), "/tmp/out", nil, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runner.requests)
}

func TestHarvestAll_SanitizesConceptFolder(t *testing.T) {
	runner := &fakeRunner{saved: map[string]int{"Ancient  Rome!": 1, "Ancient  Rome! Wikipedia": 0}}
	h := newHarvester(runner, true)

	_, err := h.HarvestAll(context.Background(),
		[]models.ConceptQuota{{Concept: "Ancient  Rome!", ImagesNeeded: 1}},
		wideBudget(), "/tmp/out", nil, nil)
	require.NoError(t, err)

	require.NotEmpty(t, runner.requests)
	assert.Equal(t, filepath.Join("/tmp/out", "ancient_rome"), runner.requests[0].OutDir)
}

func TestHarvestAll_ReportsRunningTotalAfterEachConcept(t *testing.T) {
	runner := &fakeRunner{saved: map[string]int{"a": 2, "b": 3}}
	h := newHarvester(runner, true)

	var lines []string
	_, err := h.HarvestAll(context.Background(),
		[]models.ConceptQuota{
			{Concept: "a", ImagesNeeded: 2},
			{Concept: "b", ImagesNeeded: 3},
		},
		wideBudget(), "/tmp/out", nil, func(msg string) { lines = append(lines, msg) })
	require.NoError(t, err)

	assert.Contains(t, lines, "'a' done: 2 saved (run total 2)")
	assert.Contains(t, lines, "'b' done: 3 saved (run total 5)")
}

func TestHarvestAll_RetryErrorStillCountsPrimarySaves(t *testing.T) {
	runner := &fakeRunner{
		saved: map[string]int{"a": 1},
		errs:  map[string]error{"a Wikipedia": errors.New("browser died")},
	}
	h := newHarvester(runner, true)

	res, err := h.HarvestAll(context.Background(),
		[]models.ConceptQuota{{Concept: "a", ImagesNeeded: 3}},
		wideBudget(), "/tmp/out", nil, nil)
	require.NoError(t, err, "skip policy applies to the retry too")

	assert.Equal(t, 1, res.TotalSaved)
	assert.Equal(t, []string{"a"}, res.Skipped)
}
