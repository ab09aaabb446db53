// Package subtitle provides types and utilities for handling SRT transcripts.
package subtitle

import (
	"strings"
	"time"
)

// Subtitle represents a single subtitle entry with timing and text.
type Subtitle struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// Duration returns the duration of this subtitle.
func (s Subtitle) Duration() time.Duration {
	return s.EndTime - s.StartTime
}

// IsEmpty returns true if the subtitle has no text.
func (s Subtitle) IsEmpty() bool {
	return strings.TrimSpace(s.Text) == ""
}

// List is a slice of subtitles with utility methods.
type List []Subtitle

// PlainText returns all subtitle text joined with spaces, with indices and
// timestamps stripped. This is the form fed to concept extraction.
func (l List) PlainText() string {
	var text strings.Builder
	for _, sub := range l {
		if sub.IsEmpty() {
			continue
		}
		if text.Len() > 0 {
			text.WriteString(" ")
		}
		text.WriteString(strings.TrimSpace(sub.Text))
	}
	return text.String()
}

// StartStamps returns one filename-safe token per cue, derived from the cue's
// start time ("HH-MM-SS"). Used for timestamp-based image naming so each saved
// image can be matched back to a moment in the source video.
func (l List) StartStamps() []string {
	stamps := make([]string, len(l))
	for i, sub := range l {
		stamps[i] = FormatStamp(sub.StartTime)
	}
	return stamps
}

// NonEmpty returns a new list containing only subtitles with non-empty text.
func (l List) NonEmpty() List {
	out := make(List, 0, len(l))
	for _, sub := range l {
		if !sub.IsEmpty() {
			out = append(out, sub)
		}
	}
	return out
}
