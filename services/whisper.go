package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Jamestownkid/dontgoogleme/internal/logger"
	"github.com/Jamestownkid/dontgoogleme/internal/subtitle"
)

// Transcriber produces an SRT transcript for a media file and returns its
// path.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (string, error)
}

// WhisperService runs whisper-cli locally to transcribe downloaded videos.
type WhisperService struct {
	whisperPath string
	modelPath   string
}

func NewWhisperService(model string) *WhisperService {
	homeDir, _ := os.UserHomeDir()

	// Homebrew installs the binary as "whisper-cli", not "whisper-cpp"
	paths := []string{
		"/opt/homebrew/bin/whisper-cli",
		"/opt/homebrew/bin/whisper-cpp",
		"/usr/local/bin/whisper-cli",
		"/usr/local/bin/whisper-cpp",
		"whisper-cli",
		"whisper-cpp",
	}

	whisperPath := "whisper-cli"
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			whisperPath = p
			break
		}
	}

	modelPath := filepath.Join(homeDir, ".whisper", "models", fmt.Sprintf("ggml-%s.bin", model))

	return &WhisperService{whisperPath: whisperPath, modelPath: modelPath}
}

func NewWhisperServiceWithPaths(whisperPath, modelPath string) *WhisperService {
	return &WhisperService{whisperPath: whisperPath, modelPath: modelPath}
}

// CheckInstalled verifies whisper-cli is available
func (s *WhisperService) CheckInstalled() error {
	if _, err := exec.LookPath(s.whisperPath); err != nil {
		if _, err := os.Stat(s.whisperPath); os.IsNotExist(err) {
			return fmt.Errorf("whisper-cli not found. Install with: brew install whisper-cpp")
		}
	}
	return nil
}

// CheckModel verifies the model file exists
func (s *WhisperService) CheckModel() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("whisper model not found at %s. Download from HuggingFace", s.modelPath)
	}
	return nil
}

// Transcribe runs whisper on mediaPath and returns the path of the SRT it
// wrote next to the input file.
func (s *WhisperService) Transcribe(ctx context.Context, mediaPath string) (string, error) {
	if err := s.CheckInstalled(); err != nil {
		return "", err
	}
	if err := s.CheckModel(); err != nil {
		return "", err
	}

	logger.Info("Whisper: model=%s file=%s", filepath.Base(s.modelPath), filepath.Base(mediaPath))

	outputDir := filepath.Dir(mediaPath)
	baseName := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	srtPath := filepath.Join(outputDir, baseName+".srt")

	args := []string{
		"-m", s.modelPath,
		"-f", mediaPath,
		"-osrt",
		"-of", filepath.Join(outputDir, baseName),
	}

	cmd := exec.CommandContext(ctx, s.whisperPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("whisper transcription failed: %w\nOutput: %s", err, string(output))
	}

	// Sanity-check the output before handing it downstream
	if _, err := subtitle.ParseSRTFile(srtPath); err != nil {
		return "", fmt.Errorf("whisper produced unreadable SRT: %w", err)
	}
	return srtPath, nil
}
