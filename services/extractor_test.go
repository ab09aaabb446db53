package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProseExtractor_FindsHistoricalConcepts(t *testing.T) {
	ex := NewProseExtractor()
	transcript := "The Roman Empire conquered Gaul. Julius Caesar led the Roman army " +
		"across the river. The Roman legions built roads through Gaul."

	concepts, err := ex.Extract(transcript, 10)
	require.NoError(t, err)
	require.NotEmpty(t, concepts)

	joined := strings.Join(concepts, " ")
	found := 0
	for _, want := range []string{"roman", "empire", "caesar", "gaul"} {
		if strings.Contains(joined, want) {
			found++
		}
	}
	assert.GreaterOrEqual(t, found, 2, "expected historical nouns in %v", concepts)
}

func TestProseExtractor_AllLowercaseAndFiltered(t *testing.T) {
	ex := NewProseExtractor()
	concepts, err := ex.Extract("Napoleon Bonaparte crossed the Alps with his army in winter.", 10)
	require.NoError(t, err)

	for _, c := range concepts {
		assert.Equal(t, strings.ToLower(c), c, "concepts must be lowercase")
		assert.GreaterOrEqual(t, len(c), 3)
		assert.False(t, conceptStopwords.Contains(c), "stopword %q leaked through", c)
	}
}

func TestProseExtractor_RespectsCap(t *testing.T) {
	ex := NewProseExtractor()
	transcript := "Lions tigers bears wolves eagles sharks whales dolphins otters " +
		"badgers foxes rabbits deer moose elk bison horses goats sheep cattle."

	concepts, err := ex.Extract(transcript, 5)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(concepts), 5)
}

func TestProseExtractor_EmptyInput(t *testing.T) {
	ex := NewProseExtractor()

	concepts, err := ex.Extract("", 10)
	require.NoError(t, err)
	assert.Empty(t, concepts)

	concepts, err = ex.Extract("   \n\t  ", 10)
	require.NoError(t, err)
	assert.Empty(t, concepts)
}

func TestNormalizeConcept(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Caesar,", "caesar"},
		{"(Rome)", "rome"},
		{"the", ""},   // stopword
		{"ox", ""},    // too short
		{"ARMY", "army"},
	}
	for _, tt := range tests {
		if got := normalizeConcept(tt.in); got != tt.expected {
			t.Errorf("normalizeConcept(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}
