package services

import (
	"fmt"
	"strings"

	"github.com/Jamestownkid/dontgoogleme/internal/config"
)

// Google Images markup churns, so every DOM lookup walks an ordered selector
// chain and takes the first selector that matches anything. Chains are
// ordered newest markup first.

var searchInputSelectors = []string{
	`input[name='q']:not([type='hidden'])`,
	`textarea[name='q']`,
	`input[aria-label*='Search']`,
	`textarea[aria-label*='Search']`,
	`input.gLFyf`,
	`textarea.gLFyf`,
}

var thumbnailSelectors = []string{
	`img.Q4LuWd`,
	`img.YQ4gaf`,
	`img.rg_i`,
	`img[data-src]`,
	`img[src*='http']`,
	`div.H8Rx8c img`,
	`div[data-ved] img`,
}

// detailImageSelectors targets the large image in the side panel opened by a
// thumbnail click. The last resort matches on the query itself via alt text.
func detailImageSelectors(query string) []string {
	return []string{
		`img.n3VNCb`,
		`img.sFlh5c`,
		`img.iPVvYb`,
		`img.r48jcc`,
		`img.pT0Scc`,
		`img.H8Rx8c`,
		`div[data-ved] img`,
		fmt.Sprintf(`img[alt*='%s']`, query),
	}
}

// firstMatch walks selectors in order and returns the first one whose probe
// reports at least one match. A probe error counts as a miss.
func firstMatch(selectors []string, probe func(sel string) (int, error)) (string, bool) {
	for _, sel := range selectors {
		n, err := probe(sel)
		if err != nil || n == 0 {
			continue
		}
		return sel, true
	}
	return "", false
}

// pickImageURL chooses the best candidate src from a detail pane: a real
// http(s) URL off the search engine's own thumbnail host if one exists,
// otherwise any http(s) URL, otherwise "".
func pickImageURL(srcs []string) string {
	for _, src := range srcs {
		if strings.HasPrefix(src, "http") && !strings.Contains(src, config.StaticAssetHost) {
			return src
		}
	}
	for _, src := range srcs {
		if strings.HasPrefix(src, "http") {
			return src
		}
	}
	return ""
}
