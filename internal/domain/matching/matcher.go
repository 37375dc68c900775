// Package matching implements the tiered fuzzy lookup used to map a purchased
// course name onto existing booking-system event names. The strategy is an
// ordered list of matchers tried in sequence; the first hit wins.
package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Tier int

const (
	TierExact Tier = iota + 1
	TierPrefix
	TierContains
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierPrefix:
		return "prefix"
	case TierContains:
		return "contains"
	}
	return "none"
}

type Match struct {
	Name string
	Tier Tier
}

var spaceRe = regexp.MustCompile(`\s+`)

// Variants generates the lookup forms of a course short name: the raw trimmed
// name, whitespace-normalized, lowercased, dash/space swaps in both
// directions, and an accent-stripped transliteration. Duplicates removed,
// order preserved.
func Variants(name string) []string {
	trimmed := strings.TrimSpace(name)
	normalized := spaceRe.ReplaceAllString(trimmed, " ")

	candidates := []string{
		trimmed,
		normalized,
		strings.ToLower(normalized),
		strings.ReplaceAll(normalized, "-", " "),
		strings.ReplaceAll(normalized, " ", "-"),
		StripAccents(normalized),
	}

	seen := make(map[string]struct{}, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		variants = append(variants, c)
	}
	return variants
}

// StripAccents transliterates "Éveil à la danse" to "Eveil a la danse".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// BestMatch resolves a course short name against candidate event names.
// Tiers are tried in priority order over the full candidate set, so an exact
// hit on any variant always beats a prefix or substring hit.
func BestMatch(shortName string, candidates []string) (Match, bool) {
	variants := Variants(shortName)

	type matcher struct {
		tier Tier
		fn   func(candidate, variant string) bool
	}
	matchers := []matcher{
		{TierExact, matchExact},
		{TierPrefix, matchPrefix},
		{TierContains, matchContains},
	}

	for _, m := range matchers {
		for _, candidate := range candidates {
			for _, v := range variants {
				if m.fn(candidate, v) {
					return Match{Name: candidate, Tier: m.tier}, true
				}
			}
		}
	}
	return Match{}, false
}

func matchExact(candidate, variant string) bool {
	return strings.EqualFold(candidate, variant)
}

// matchPrefix accepts "Pilates Avancé" for variant "Pilates" as well as the
// parenthesized suffix form "Pilates (16/18 ans)".
func matchPrefix(candidate, variant string) bool {
	lc, lv := strings.ToLower(candidate), strings.ToLower(variant)
	if strings.HasPrefix(lc, lv+" ") {
		return true
	}
	re, err := regexp.Compile(`(?i)^` + regexp.QuoteMeta(variant) + `\s+\([^)]+\)$`)
	if err != nil {
		return false
	}
	return re.MatchString(candidate)
}

func matchContains(candidate, variant string) bool {
	return strings.Contains(strings.ToLower(candidate), strings.ToLower(variant))
}
