package services

import (
	"sort"
	"strings"

	"bitbucket.org/creachadair/stringset"
	"github.com/jdkato/prose/v2"

	"github.com/Jamestownkid/dontgoogleme/internal/logger"
)

// ConceptExtractor turns a transcript into a ranked list of search concepts.
type ConceptExtractor interface {
	Extract(text string, maxConcepts int) ([]string, error)
}

// ProseExtractor extracts concepts with local NLP: named entities first
// (people and places make the best image queries), then remaining nouns
// ranked by frequency.
type ProseExtractor struct{}

func NewProseExtractor() *ProseExtractor {
	return &ProseExtractor{}
}

// conceptStopwords are words too generic to search images for, even when
// the tagger calls them nouns.
var conceptStopwords = stringset.New(
	"the", "and", "that", "this", "with", "from", "have", "has", "had",
	"they", "them", "their", "been", "were", "was", "are", "you", "your",
	"its", "it's", "but", "not", "all", "can", "will", "would", "could",
	"thing", "things", "something", "anything", "everything", "nothing",
	"lot", "lots", "kind", "kinds", "sort", "way", "ways", "bit", "bits",
	"time", "times", "day", "days", "year", "years", "people", "person",
	"man", "men", "woman", "women", "guy", "guys", "stuff", "part", "parts",
	"video", "videos", "today", "yesterday", "tomorrow", "one", "ones",
	"someone", "anyone", "everyone", "nobody", "somebody",
)

// nounTags are the Penn Treebank tags kept by the token pass.
var nounTags = stringset.New("NN", "NNS", "NNP", "NNPS")

func (e *ProseExtractor) Extract(text string, maxConcepts int) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" || maxConcepts < 1 {
		return nil, nil
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	weight := make(map[string]int)
	record := func(word string, w int) {
		word = normalizeConcept(word)
		if word == "" {
			return
		}
		weight[word] += w
	}

	// Entity pass: people and places count double.
	for _, ent := range doc.Entities() {
		if ent.Label != "PERSON" && ent.Label != "GPE" {
			continue
		}
		for _, word := range strings.Fields(ent.Text) {
			record(word, 2)
		}
	}

	// Token pass: every noun counts once.
	for _, tok := range doc.Tokens() {
		if nounTags.Contains(tok.Tag) {
			record(tok.Text, 1)
		}
	}

	concepts := make([]string, 0, len(weight))
	for word := range weight {
		concepts = append(concepts, word)
	}
	sort.Slice(concepts, func(i, j int) bool {
		if weight[concepts[i]] != weight[concepts[j]] {
			return weight[concepts[i]] > weight[concepts[j]]
		}
		return concepts[i] < concepts[j]
	})

	if len(concepts) > maxConcepts {
		concepts = concepts[:maxConcepts]
	}
	logger.Debug("Extractor: %d candidate nouns, keeping %d", len(weight), len(concepts))
	return concepts, nil
}

// normalizeConcept lowercases a candidate word and rejects short or
// stopword candidates. Returns "" for rejects.
func normalizeConcept(word string) string {
	word = strings.ToLower(strings.Trim(word, ".,!?;:\"'()[]"))
	if len(word) < 3 || conceptStopwords.Contains(word) {
		return ""
	}
	return word
}
