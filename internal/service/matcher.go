package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gcompare/gcompare_api/internal/models"
)

// ProductMatcher decides when products from different platforms represent
// the same real-world item. Quotes whose keys are equal merge into one
// ComparisonEntry. The policy is injected into the Aggregator so deployments
// can swap identity strategies without touching the merge logic.
type ProductMatcher interface {
	Key(platform string, p models.CanonicalProduct) string
}

// TitleBrandMatcher merges products across platforms when their normalized
// brand and title coincide. This is the default policy.
type TitleBrandMatcher struct{}

// stripMarks removes diacritics so "Nescafé" and "Nescafe" compare equal.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Key folds case, drops diacritics and punctuation, and collapses
// whitespace over brand and title.
func (TitleBrandMatcher) Key(_ string, p models.CanonicalProduct) string {
	return normalizeText(p.Brand) + "|" + normalizeText(p.Title)
}

// ExternalIDMatcher scopes identity to a single platform, so no
// cross-platform merging happens. Matches the behavior of systems that
// lack a shared product id.
type ExternalIDMatcher struct{}

func (ExternalIDMatcher) Key(platform string, p models.CanonicalProduct) string {
	return platform + "|" + p.ExternalID
}

func normalizeText(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
