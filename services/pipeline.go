package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jamestownkid/dontgoogleme/internal/logger"
	"github.com/Jamestownkid/dontgoogleme/internal/subtitle"
	"github.com/Jamestownkid/dontgoogleme/internal/worker"
	"github.com/Jamestownkid/dontgoogleme/models"
)

// ProgressCallback reports pipeline progress: stage name, rough percent,
// human-readable message.
type ProgressCallback func(stage string, percent int, message string)

// VideoDownloader fetches a video URL into a directory and returns the file
// path.
type VideoDownloader interface {
	Download(ctx context.Context, url, outDir string) (string, error)
}

// batchDownloader is the optional concurrent prefetch a downloader may offer.
type batchDownloader interface {
	DownloadAll(ctx context.Context, requests []DownloadRequest, onProgress worker.ProgressFunc) []DownloadOutcome
}

type imageHarvester interface {
	HarvestAll(ctx context.Context, quotas []models.ConceptQuota, budget models.Budget, outRoot string, stamps []string, status StatusFunc) (*HarvestResult, error)
}

// Pipeline runs a harvest job end to end: download the video, transcribe it,
// extract concepts, harvest images.
type Pipeline struct {
	cfg         *models.Config
	downloader  VideoDownloader
	transcriber Transcriber
	extractor   ConceptExtractor
	harvester   imageHarvester
}

func NewPipeline(cfg *models.Config) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		downloader:  NewDownloaderService(),
		transcriber: NewWhisperService(cfg.WhisperModel),
		extractor:   NewProseExtractor(),
		harvester:   NewHarvester(cfg),
	}
}

// RunJob drives one job through every stage, keeping its status and the
// job.json record current along the way.
func (p *Pipeline) RunJob(ctx context.Context, job *models.HarvestJob, onProgress ProgressCallback) error {
	if onProgress == nil {
		onProgress = func(string, int, string) {}
	}
	if err := os.MkdirAll(job.OutputDir, 0755); err != nil {
		job.Fail(err)
		return err
	}

	job.Start()
	p.writeJobIntake(job)

	fail := func(err error) error {
		job.Fail(err)
		p.writeJobRecord(job)
		return err
	}

	onProgress("download", 5, "Downloading video")
	videoPath, err := p.downloader.Download(ctx, job.URL, job.OutputDir)
	if err != nil {
		return fail(fmt.Errorf("downloading %s: %w", job.URL, err))
	}
	job.VideoPath = videoPath

	return p.finishJob(ctx, job, onProgress)
}

// RunBatch processes several jobs: videos are prefetched concurrently when
// the downloader supports it, then each job finishes its remaining stages
// one at a time (one browsing context per machine).
func (p *Pipeline) RunBatch(ctx context.Context, jobs []*models.HarvestJob, onProgress ProgressCallback) {
	if onProgress == nil {
		onProgress = func(string, int, string) {}
	}

	batch, ok := p.downloader.(batchDownloader)
	if !ok || len(jobs) < 2 {
		for _, job := range jobs {
			if ctx.Err() != nil {
				return
			}
			if err := p.RunJob(ctx, job, onProgress); err != nil {
				logger.Error("Pipeline: job %s: %v", job.ID[:8], err)
			}
		}
		return
	}

	requests := make([]DownloadRequest, len(jobs))
	for i, job := range jobs {
		if err := os.MkdirAll(job.OutputDir, 0755); err != nil {
			logger.Warn("Pipeline: cannot create %s: %v", job.OutputDir, err)
		}
		job.Start()
		p.writeJobIntake(job)
		requests[i] = DownloadRequest{URL: job.URL, OutDir: job.OutputDir}
	}

	onProgress("download", 5, fmt.Sprintf("Downloading %d videos", len(jobs)))
	outcomes := batch.DownloadAll(ctx, requests, func(completed, total int) {
		onProgress("download", 5+25*completed/total, fmt.Sprintf("Downloaded %d/%d", completed, total))
	})
	succeeded, failed := Tally(outcomes)
	logger.Info("Pipeline: downloads done: %d ok, %d failed", succeeded, failed)

	for i, job := range jobs {
		if ctx.Err() != nil {
			return
		}
		if outcomes[i].Err != nil {
			job.Fail(fmt.Errorf("downloading %s: %w", job.URL, outcomes[i].Err))
			p.writeJobRecord(job)
			logger.Error("Pipeline: job %s: %v", job.ID[:8], job.Error)
			continue
		}
		job.VideoPath = outcomes[i].Path
		if err := p.finishJob(ctx, job, onProgress); err != nil {
			logger.Error("Pipeline: job %s: %v", job.ID[:8], err)
		}
	}
}

// shouldTranscribe reports whether this job's platform gets a transcript.
// Short-form platforms always do; YouTube and everything else are gated by
// their settings toggle.
func (p *Pipeline) shouldTranscribe(url string) bool {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "tiktok.com"), strings.Contains(u, "instagram.com"):
		return true
	case strings.Contains(u, "youtube.com"), strings.Contains(u, "youtu.be"):
		return p.cfg.SRTYouTubeEnabled
	default:
		return p.cfg.SRTOtherEnabled
	}
}

// finishJob runs the stages after the video is on disk.
func (p *Pipeline) finishJob(ctx context.Context, job *models.HarvestJob, onProgress ProgressCallback) error {
	fail := func(err error) error {
		job.Fail(err)
		p.writeJobRecord(job)
		return err
	}

	if !p.shouldTranscribe(job.URL) {
		logger.Info("Pipeline: SRT generation disabled for this platform, keeping video only")
		job.Complete()
		p.writeJobRecord(job)
		onProgress("done", 100, "Video saved (transcription disabled)")
		return nil
	}

	job.SetStatus(models.StatusTranscribing, "")
	onProgress("transcribe", 30, "Transcribing audio")
	srtPath, err := p.transcriber.Transcribe(ctx, job.VideoPath)
	if err != nil {
		return fail(fmt.Errorf("transcribing %s: %w", filepath.Base(job.VideoPath), err))
	}
	job.TranscriptPath = srtPath

	job.SetStatus(models.StatusAnalyzing, "")
	onProgress("analyze", 55, "Extracting concepts")
	subs, err := subtitle.ParseSRTFile(srtPath)
	if err != nil {
		return fail(fmt.Errorf("reading transcript: %w", err))
	}
	transcript := subs.PlainText()
	if strings.TrimSpace(transcript) == "" {
		return fail(errors.New("transcript is empty"))
	}
	concepts, err := p.extractor.Extract(transcript, p.cfg.MaxKeywords)
	if err != nil {
		return fail(fmt.Errorf("extracting concepts: %w", err))
	}
	if len(concepts) == 0 {
		return fail(errors.New("no concepts extracted from transcript"))
	}

	budget := p.cfg.Budget()
	quotas := PlanQuotas(concepts, budget)
	logger.Info("Pipeline: %d concepts, %d images planned", len(quotas), models.TotalNeeded(quotas))

	job.SetStatus(models.StatusImages, "")
	onProgress("images", 65, fmt.Sprintf("Harvesting images for %d concepts", len(quotas)))
	result, err := p.harvester.HarvestAll(ctx, quotas, budget,
		filepath.Join(job.OutputDir, "images"), subs.NonEmpty().StartStamps(),
		func(msg string) {
			job.Progress = msg
			onProgress("images", 80, msg)
		})
	if err != nil {
		return fail(fmt.Errorf("harvesting images: %w", err))
	}
	job.ImagesSaved = result.TotalSaved

	job.Complete()
	p.writeJobRecord(job)
	onProgress("done", 100, fmt.Sprintf("Saved %d images", result.TotalSaved))
	return nil
}

// HarvestFromSRT runs the analyze and images stages against an existing SRT
// file, the batch entry point. Artifacts use counter naming since there is
// no single stamp sequence to honor.
func (p *Pipeline) HarvestFromSRT(ctx context.Context, srtPath, outRoot string, status StatusFunc) (*HarvestResult, error) {
	transcript, err := subtitle.FileToText(srtPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", srtPath, err)
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("no usable text in %s", srtPath)
	}

	concepts, err := p.extractor.Extract(transcript, p.cfg.MaxKeywords)
	if err != nil {
		return nil, fmt.Errorf("extracting concepts: %w", err)
	}
	if len(concepts) == 0 {
		return nil, fmt.Errorf("no concepts extracted from %s", filepath.Base(srtPath))
	}

	budget := p.cfg.Budget()
	quotas := PlanQuotas(concepts, budget)
	return p.harvester.HarvestAll(ctx, quotas, budget, outRoot, nil, status)
}

// writeJobIntake records everything known about the job before the first
// network stage: the durable job.json plus the human-readable source link and
// notes files.
func (p *Pipeline) writeJobIntake(job *models.HarvestJob) {
	p.writeJobRecord(job)

	links := filepath.Join(job.OutputDir, "links.txt")
	if err := os.WriteFile(links, []byte(job.URL+"\n"), 0644); err != nil {
		logger.Warn("Pipeline: cannot write %s: %v", links, err)
	}

	if job.Topic != "" || job.Notes != "" {
		notes := strings.TrimSpace(job.Topic + "\n" + job.Notes)
		path := filepath.Join(job.OutputDir, "notes.txt")
		if err := os.WriteFile(path, []byte(notes+"\n"), 0644); err != nil {
			logger.Warn("Pipeline: cannot write %s: %v", path, err)
		}
	}
}

func (p *Pipeline) writeJobRecord(job *models.HarvestJob) {
	data, err := json.MarshalIndent(job.Metadata(), "", "    ")
	if err != nil {
		return
	}
	path := filepath.Join(job.OutputDir, "job.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		logger.Warn("Pipeline: cannot write %s: %v", path, err)
	}
}
