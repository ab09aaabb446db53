package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Jamestownkid/dontgoogleme/internal/config"
	"github.com/Jamestownkid/dontgoogleme/internal/logger"
	"github.com/Jamestownkid/dontgoogleme/internal/worker"
)

// DownloaderService wraps yt-dlp for fetching source videos.
type DownloaderService struct {
	binaryPath string
}

func NewDownloaderService() *DownloaderService {
	// Try common install locations before falling back to PATH
	paths := []string{
		"/opt/homebrew/bin/yt-dlp",
		"/usr/local/bin/yt-dlp",
		"/usr/bin/yt-dlp",
		"yt-dlp",
	}

	binaryPath := "yt-dlp"
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			binaryPath = p
			break
		}
	}
	return &DownloaderService{binaryPath: binaryPath}
}

// CheckInstalled verifies yt-dlp is available
func (s *DownloaderService) CheckInstalled() error {
	if _, err := exec.LookPath(s.binaryPath); err != nil {
		if _, err := os.Stat(s.binaryPath); os.IsNotExist(err) {
			return fmt.Errorf("yt-dlp not found. Install with: pip install yt-dlp")
		}
	}
	return nil
}

// Download fetches url into outDir as video.<ext> and returns the resulting
// file path.
func (s *DownloaderService) Download(ctx context.Context, url, outDir string) (string, error) {
	if err := s.CheckInstalled(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", outDir, err)
	}

	logger.Info("Downloader: fetching %s", url)

	args := []string{
		"-f", "bv*[height<=1080]+ba/b[height<=1080]/b",
		"--merge-output-format", "mp4",
		"--no-playlist",
		"-o", filepath.Join(outDir, "video.%(ext)s"),
		url,
	}

	cmd := exec.CommandContext(ctx, s.binaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w\nOutput: %s", err, strings.TrimSpace(stderr.String()))
	}

	matches, err := filepath.Glob(filepath.Join(outDir, "video.*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("yt-dlp produced no output in %s", outDir)
	}
	// Prefer the merged container over leftovers like .part files
	for _, m := range matches {
		switch strings.ToLower(filepath.Ext(m)) {
		case ".mp4", ".mkv", ".webm":
			return m, nil
		}
	}
	return matches[0], nil
}

// DownloadRequest is one URL/destination pair for batch mode.
type DownloadRequest struct {
	URL    string
	OutDir string
}

// DownloadOutcome reports one request's result in batch mode.
type DownloadOutcome struct {
	URL  string
	Path string
	Err  error
}

// Tally summarizes a batch: how many outcomes succeeded and how many failed.
func Tally(outcomes []DownloadOutcome) (success, failed int) {
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		} else {
			success++
		}
	}
	return success, failed
}

// DownloadAll fetches the requests with a small worker pool. Failures don't
// stop the batch; each outcome carries its own error.
func (s *DownloaderService) DownloadAll(ctx context.Context, requests []DownloadRequest, onProgress worker.ProgressFunc) []DownloadOutcome {
	outcomes, _ := worker.ProcessWithErrors(requests, config.WorkersDownload,
		func(job worker.Job[DownloadRequest]) (DownloadOutcome, error) {
			path, err := s.Download(ctx, job.Data.URL, job.Data.OutDir)
			return DownloadOutcome{URL: job.Data.URL, Path: path, Err: err}, err
		}, onProgress)
	return outcomes
}
