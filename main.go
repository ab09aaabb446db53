package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/Jamestownkid/dontgoogleme/internal/logger"
	"github.com/Jamestownkid/dontgoogleme/internal/text"
	"github.com/Jamestownkid/dontgoogleme/models"
	"github.com/Jamestownkid/dontgoogleme/services"
)

const usageText = `dontgoogleme - b-roll image harvester

Usage:
  dontgoogleme [flags] images <srt-file-or-dir>
  dontgoogleme [flags] run <url> [url...]
  dontgoogleme [flags] config

Commands:
  images   Harvest images for an existing .srt file (or every .srt in a dir)
  run      Download video(s), transcribe, extract concepts, harvest images
  config   Print the active settings and where they come from

Flags:
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("dontgoogleme", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "verbose logging")
	configPath := fs.String("config", "", "settings file (default ~/.config/dontgoogleme/config.json)")
	outRoot := fs.String("out", "", "output root directory")
	topic := fs.String("topic", "", "topic label recorded with run jobs")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *verbose {
		logger.SetLevel(logger.LevelDebug)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	cfg := models.LoadConfig()
	if *configPath != "" {
		cfg = models.LoadConfigFrom(*configPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch rest[0] {
	case "images":
		return runImages(ctx, cfg, rest[1:], *outRoot)
	case "run":
		return runJobs(ctx, cfg, rest[1:], *outRoot, *topic)
	case "config":
		return printConfig(cfg, *configPath)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", rest[0])
		fs.Usage()
		return 2
	}
}

// runImages harvests images for one .srt file or every .srt in a directory.
// Per-file failures are logged and the batch moves on.
func runImages(ctx context.Context, cfg *models.Config, args []string, outRoot string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "images: expected exactly one .srt file or directory")
		return 2
	}

	srtFiles, err := collectSRTFiles(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "images: %v\n", err)
		return 2
	}
	if len(srtFiles) == 0 {
		logger.Warn("No .srt files found in %s", args[0])
		return 0
	}

	if outRoot == "" {
		outRoot = "images"
	}

	pipeline := services.NewPipeline(cfg)
	grandTotal := 0
	for _, srtPath := range srtFiles {
		if ctx.Err() != nil {
			logger.Warn("Interrupted, stopping batch")
			break
		}

		base := strings.TrimSuffix(filepath.Base(srtPath), filepath.Ext(srtPath))
		fileRoot := filepath.Join(outRoot, text.FolderName(base))
		tag := filepath.Base(srtPath)

		result, err := pipeline.HarvestFromSRT(ctx, srtPath, fileRoot, func(msg string) {
			logger.Info("[%s] %s", tag, msg)
		})
		if err != nil {
			logger.Error("[%s] %v", tag, err)
			continue
		}
		logger.Info("[%s] Saved %d images to %s", tag, result.TotalSaved, fileRoot)
		grandTotal += result.TotalSaved
	}

	logger.Info("Done. %d images across %d file(s)", grandTotal, len(srtFiles))
	return 0
}

// runJobs processes each URL through the full pipeline.
func runJobs(ctx context.Context, cfg *models.Config, urls []string, outRoot, topic string) int {
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "run: expected at least one URL")
		return 2
	}

	if outRoot == "" {
		outRoot = "jobs"
	}

	stamp := time.Now().Format("20060102_150405")
	jobs := make([]*models.HarvestJob, len(urls))
	for i, url := range urls {
		jobDir := filepath.Join(outRoot, stamp)
		if len(urls) > 1 {
			jobDir = fmt.Sprintf("%s_%02d", jobDir, i+1)
		}
		jobs[i] = models.NewHarvestJob(url, topic, jobDir)
		logger.Info("Job %s: %s", jobs[i].ID[:8], url)
	}

	pipeline := services.NewPipeline(cfg)
	pipeline.RunBatch(ctx, jobs, func(stage string, percent int, message string) {
		logger.Info("%s (%d%%) %s", stage, percent, message)
	})

	for _, job := range jobs {
		if job.Status == models.StatusDone {
			logger.Info("Job %s done: %d images in %s", job.ID[:8], job.ImagesSaved, job.OutputDir)
		} else {
			logger.Warn("Job %s ended with status %s", job.ID[:8], job.Status)
		}
	}
	return 0
}

func printConfig(cfg *models.Config, configPath string) int {
	if configPath == "" {
		configPath = models.ConfigPath()
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			if err := cfg.Save(); err != nil {
				logger.Warn("Cannot write default settings: %v", err)
			} else {
				logger.Info("Wrote default settings to %s", configPath)
			}
		}
	}
	fmt.Printf("settings file: %s\n", configPath)
	fmt.Printf("whisper_model:               %s\n", cfg.WhisperModel)
	fmt.Printf("images_per_keyword:          %d\n", cfg.ImagesPerKeyword)
	fmt.Printf("max_keywords:                %d\n", cfg.MaxKeywords)
	fmt.Printf("max_total_images:            %d\n", cfg.MaxTotalImages)
	fmt.Printf("min_images_per_srt:          %d\n", cfg.MinImagesPerSRT)
	fmt.Printf("max_scrolls_per_keyword:     %d\n", cfg.MaxScrollsPerKeyword)
	fmt.Printf("use_visible_browser:         %t\n", cfg.UseVisibleBrowser)
	fmt.Printf("use_existing_chrome_profile: %t\n", cfg.UseExistingChromeProfile)
	fmt.Printf("chrome_profile_dir:          %s\n", cfg.ChromeProfileDir)
	fmt.Printf("chrome_path:                 %s\n", cfg.ChromePath)
	fmt.Printf("continue_on_keyword_error:   %t\n", cfg.ContinueOnKeywordError)
	return 0
}

// collectSRTFiles resolves the images argument into a sorted list of .srt
// paths.
func collectSRTFiles(arg string) ([]string, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{arg}, nil
	}

	entries, err := os.ReadDir(arg)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".srt") {
			files = append(files, filepath.Join(arg, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
