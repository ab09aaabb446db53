package models

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/creachadair/atomicfile"

	"github.com/Jamestownkid/dontgoogleme/internal/config"
	"github.com/Jamestownkid/dontgoogleme/internal/logger"
)

// Config holds the persisted harvester settings.
// Unknown keys in the settings file are ignored; missing or malformed
// settings fall back to the documented defaults.
type Config struct {
	WhisperModel string `json:"whisper_model"`

	// Image budget
	ImagesPerKeyword     int `json:"images_per_keyword"`
	MaxKeywords          int `json:"max_keywords"`
	MaxTotalImages       int `json:"max_total_images"`
	MinImagesPerSRT      int `json:"min_images_per_srt"`
	MaxScrollsPerKeyword int `json:"max_scrolls_per_keyword"`

	// Browser session
	UseVisibleBrowser        bool   `json:"use_visible_browser"`
	UseExistingChromeProfile bool   `json:"use_existing_chrome_profile"`
	ChromeProfileDir         string `json:"chrome_profile_dir"`
	ChromePath               string `json:"chrome_path"`

	// Error policy: skip a concept whose session fails outright instead of
	// aborting the whole run.
	ContinueOnKeywordError bool `json:"continue_on_keyword_error"`

	// Per-platform SRT generation toggles for the job pipeline
	SRTYouTubeEnabled bool `json:"srt_youtube_enabled"`
	SRTOtherEnabled   bool `json:"srt_other_enabled"`
}

// DefaultConfig returns a config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		WhisperModel:             config.DefaultWhisperModel,
		ImagesPerKeyword:         config.DefaultImagesPerKeyword,
		MaxKeywords:              config.DefaultMaxKeywords,
		MaxTotalImages:           config.DefaultMaxTotalImages,
		MinImagesPerSRT:          config.DefaultMinImagesPerSRT,
		MaxScrollsPerKeyword:     config.DefaultMaxScrolls,
		UseVisibleBrowser:        true,
		UseExistingChromeProfile: false,
		ChromeProfileDir:         "",
		ChromePath:               "",
		ContinueOnKeywordError:   true,
		SRTYouTubeEnabled:        false,
		SRTOtherEnabled:          false,
	}
}

// fileSettings mirrors Config with pointer fields so that absent keys can be
// distinguished from zero values, and carries the legacy alias keys.
type fileSettings struct {
	WhisperModel *string `json:"whisper_model"`

	ImagesPerKeyword     *int `json:"images_per_keyword"`
	ImagesPerConcept     *int `json:"images_per_concept"` // alias
	MaxKeywords          *int `json:"max_keywords"`
	MaxConceptsPerSRT    *int `json:"max_concepts_per_srt"` // alias
	MaxTotalImages       *int `json:"max_total_images"`
	MinImagesPerSRT      *int `json:"min_images_per_srt"`
	MaxScrollsPerKeyword *int `json:"max_scrolls_per_keyword"`

	UseVisibleBrowser        *bool   `json:"use_visible_browser"`
	UseExistingChromeProfile *bool   `json:"use_existing_chrome_profile"`
	ChromeProfileDir         *string `json:"chrome_profile_dir"`
	ChromePath               *string `json:"chrome_path"`

	ContinueOnKeywordError *bool `json:"continue_on_keyword_error"`
	SRTYouTubeEnabled      *bool `json:"srt_youtube_enabled"`
	SRTOtherEnabled        *bool `json:"srt_other_enabled"`
}

// applyTo copies every present key onto cfg. The primary key wins over its
// alias when both are present.
func (f *fileSettings) applyTo(cfg *Config) {
	if f.WhisperModel != nil {
		cfg.WhisperModel = *f.WhisperModel
	}
	switch {
	case f.ImagesPerKeyword != nil:
		cfg.ImagesPerKeyword = *f.ImagesPerKeyword
	case f.ImagesPerConcept != nil:
		cfg.ImagesPerKeyword = *f.ImagesPerConcept
	}
	switch {
	case f.MaxKeywords != nil:
		cfg.MaxKeywords = *f.MaxKeywords
	case f.MaxConceptsPerSRT != nil:
		cfg.MaxKeywords = *f.MaxConceptsPerSRT
	}
	if f.MaxTotalImages != nil {
		cfg.MaxTotalImages = *f.MaxTotalImages
	}
	if f.MinImagesPerSRT != nil {
		cfg.MinImagesPerSRT = *f.MinImagesPerSRT
	}
	if f.MaxScrollsPerKeyword != nil {
		cfg.MaxScrollsPerKeyword = *f.MaxScrollsPerKeyword
	}
	if f.UseVisibleBrowser != nil {
		cfg.UseVisibleBrowser = *f.UseVisibleBrowser
	}
	if f.UseExistingChromeProfile != nil {
		cfg.UseExistingChromeProfile = *f.UseExistingChromeProfile
	}
	if f.ChromeProfileDir != nil {
		cfg.ChromeProfileDir = *f.ChromeProfileDir
	}
	if f.ChromePath != nil {
		cfg.ChromePath = *f.ChromePath
	}
	if f.ContinueOnKeywordError != nil {
		cfg.ContinueOnKeywordError = *f.ContinueOnKeywordError
	}
	if f.SRTYouTubeEnabled != nil {
		cfg.SRTYouTubeEnabled = *f.SRTYouTubeEnabled
	}
	if f.SRTOtherEnabled != nil {
		cfg.SRTOtherEnabled = *f.SRTOtherEnabled
	}
}

// clamp restores defaults for values outside their documented range.
func (c *Config) clamp() {
	def := DefaultConfig()
	if c.WhisperModel == "" {
		c.WhisperModel = def.WhisperModel
	}
	if c.ImagesPerKeyword < 1 {
		c.ImagesPerKeyword = def.ImagesPerKeyword
	}
	if c.MaxKeywords < 1 {
		c.MaxKeywords = def.MaxKeywords
	}
	if c.MaxTotalImages < 1 {
		c.MaxTotalImages = def.MaxTotalImages
	}
	if c.MinImagesPerSRT < 0 {
		c.MinImagesPerSRT = def.MinImagesPerSRT
	}
	if c.MaxScrollsPerKeyword < 1 {
		c.MaxScrollsPerKeyword = def.MaxScrollsPerKeyword
	}
}

// Budget returns the image budget derived from these settings.
func (c *Config) Budget() Budget {
	return Budget{
		MaxConcepts:      c.MaxKeywords,
		ImagesPerConcept: c.ImagesPerKeyword,
		MaxTotalImages:   c.MaxTotalImages,
		MinImagesOverall: c.MinImagesPerSRT,
	}.Normalized()
}

// ConfigPath returns the default settings file location.
func ConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "dontgoogleme", "config.json")
}

// LoadConfig loads settings from the default location.
func LoadConfig() *Config {
	return LoadConfigFrom(ConfigPath())
}

// LoadConfigFrom loads settings from path. A missing file yields defaults;
// a malformed file logs a warning and yields defaults rather than failing.
func LoadConfigFrom(path string) *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Settings: cannot read %s: %v (using defaults)", path, err)
		}
		return cfg
	}

	var raw fileSettings
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("Settings: malformed %s: %v (using defaults)", path, err)
		return DefaultConfig()
	}

	raw.applyTo(cfg)
	cfg.clamp()
	return cfg
}

// Save writes the settings to the default location.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo atomically writes the settings to path, creating parent directories
// as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}

	out, err := atomicfile.New(path, 0600)
	if err != nil {
		return err
	}
	defer out.Cancel()
	if _, err := out.Write(data); err != nil {
		return err
	}
	return out.Close()
}
