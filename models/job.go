package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusDownloading  JobStatus = "downloading"
	StatusTranscribing JobStatus = "transcribing"
	StatusAnalyzing    JobStatus = "analyzing"
	StatusImages       JobStatus = "images"
	StatusDone         JobStatus = "done"
	StatusError        JobStatus = "error"
)

// HarvestJob tracks one video URL through the download → transcribe →
// analyze → images pipeline.
type HarvestJob struct {
	ID        string
	URL       string
	Topic     string
	Notes     string
	OutputDir string

	Status   JobStatus
	Progress string
	Error    error

	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	// Intermediate artifacts
	VideoPath      string
	TranscriptPath string
	ImagesSaved    int
}

func NewHarvestJob(url, topic, outputDir string) *HarvestJob {
	return &HarvestJob{
		ID:        uuid.New().String(),
		URL:       url,
		Topic:     topic,
		OutputDir: outputDir,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
	}
}

func (j *HarvestJob) SetStatus(status JobStatus, progress string) {
	j.Status = status
	j.Progress = progress
}

func (j *HarvestJob) Start() {
	now := time.Now()
	j.StartedAt = &now
	j.Status = StatusDownloading
}

func (j *HarvestJob) Complete() {
	j.Status = StatusDone
	now := time.Now()
	j.CompletedAt = &now
}

func (j *HarvestJob) Fail(err error) {
	j.Status = StatusError
	j.Error = err
	now := time.Now()
	j.CompletedAt = &now
}

func (j *HarvestJob) StatusText() string {
	switch j.Status {
	case StatusQueued:
		return "Queued"
	case StatusDownloading:
		return "Downloading video..."
	case StatusTranscribing:
		return "Transcribing..."
	case StatusAnalyzing:
		return "Extracting concepts..."
	case StatusImages:
		return "Harvesting images..."
	case StatusDone:
		return "Done"
	case StatusError:
		if j.Error != nil {
			return "Error: " + j.Error.Error()
		}
		return "Error"
	default:
		return string(j.Status)
	}
}

// Metadata is the durable job record written as job.json into the job folder.
type Metadata struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
	Status    JobStatus `json:"status"`
}

func (j *HarvestJob) Metadata() Metadata {
	return Metadata{
		ID:        j.ID,
		URL:       j.URL,
		Topic:     j.Topic,
		CreatedAt: j.CreatedAt,
		Status:    j.Status,
	}
}
