// Package config provides centralized configuration and constants for the b-roll harvester.
package config

import "time"

// Image search entry point
const (
	GoogleImagesURL = "https://www.google.com/imghp?hl=en"

	// StaticAssetHost is the search engine's own thumbnail host. Candidate
	// URLs on this host are only accepted when nothing better is available.
	StaticAssetHost = "gstatic.com"
)

// Session driver timing
const (
	SelectorWaitTimeout = 5 * time.Second         // per-selector wait in a fallback chain
	SearchSettleDelay   = 2 * time.Second         // after submitting the query, lets lazy thumbnails render
	DetailSettleDelay   = 350 * time.Millisecond  // after clicking a thumbnail
	ScrollSettleDelay   = 700 * time.Millisecond  // after a scroll step
	ThumbClickTimeout   = 1500 * time.Millisecond // per-thumbnail click budget
	ScrollDeltaPx       = 1200                    // pixels per scroll step
)

// Image fetch settings
const (
	ImageFetchTimeout = 15 * time.Second
	MinImageBytes     = 1000 // smaller responses are placeholder/error images
	BrowserUserAgent  = "Mozilla/5.0"
)

// HTTP connection pooling
const (
	HTTPMaxIdleConns        = 20
	HTTPMaxIdleConnsPerHost = 4
	HTTPIdleConnTimeout     = 90 * time.Second
)

// Retry settings for image fetches
const (
	DefaultMaxRetries     = 2
	DefaultRetryDelayBase = 500 * time.Millisecond
)

// Worker pool sizes
const (
	// WorkersDownload limits concurrent yt-dlp processes in batch mode.
	// Harvesting itself is strictly sequential: one browsing context at a time.
	WorkersDownload = 2
)

// Budget defaults, applied when settings are missing or out of range
const (
	DefaultWhisperModel     = "base"
	DefaultImagesPerKeyword = 3
	DefaultMaxKeywords      = 20
	DefaultMaxTotalImages   = 60
	DefaultMinImagesPerSRT  = 20
	DefaultMaxScrolls       = 6
)

// Length caps for sanitized keyword tokens in paths
const (
	FolderNameMaxLen     = 80
	StampedTokenMaxLen   = 30
	CounteredTokenMaxLen = 20
)
