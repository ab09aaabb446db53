package services

import (
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageFileName_TimestampNaming(t *testing.T) {
	stamps := []string{"00-00-00", "00-00-05", "00-01-10"}

	assert.Equal(t, "00-00-00_roman_empire.jpg", imageFileName("roman empire", stamps, 0, 0))
	assert.Equal(t, "00-01-10_roman_empire.jpg", imageFileName("roman empire", stamps, 1, 1))
}

func TestImageFileName_CounterFallback(t *testing.T) {
	// no stamps at all
	assert.Equal(t, "caesar_01.jpg", imageFileName("caesar", nil, 0, 0))
	assert.Equal(t, "caesar_12.jpg", imageFileName("caesar", nil, 0, 11))

	// stamps exhausted
	stamps := []string{"00-00-00"}
	assert.Equal(t, "caesar_02.jpg", imageFileName("caesar", stamps, 1, 1))
}

func TestImageFileName_TokenLengthCaps(t *testing.T) {
	long := "a very long keyword phrase that keeps going and going and going"

	stamped := imageFileName(long, []string{"00-00-00"}, 0, 0)
	// "00-00-00_" prefix + 30-char token + ".jpg"
	assert.LessOrEqual(t, len(stamped), len("00-00-00_")+30+len(".jpg"))

	countered := imageFileName(long, nil, 0, 0)
	assert.LessOrEqual(t, len(countered), 20+len("_01.jpg"))
}

func TestImageFileName_SanitizesSlashes(t *testing.T) {
	got := imageFileName("roman/empire", nil, 0, 0)
	assert.Equal(t, "roman_empire_01.jpg", got)
}

func TestNewSessionDriver_DefaultsMaxScrolls(t *testing.T) {
	d := NewSessionDriver(SessionOptions{MaxScrolls: 0})
	assert.Equal(t, 6, d.opts.MaxScrolls)
}

func TestResultsSettle_ReadinessBeforeDelay(t *testing.T) {
	tasks := resultsSettle()
	require.Len(t, tasks, 2)

	_, isQuery := tasks[0].(*chromedp.Selector)
	assert.True(t, isQuery, "first task queries document readiness")
	_, isQuery = tasks[1].(*chromedp.Selector)
	assert.False(t, isQuery, "second task is the fixed settle delay")
}
