package engine

import (
	"strings"

	"github.com/mfalmeida/ironplan/internal/models"
)

// accentFold maps the accented Latin runes that show up in exercise catalogs
// to their ASCII base. Catalog names are short, so a lookup table beats
// pulling in a Unicode normalization pass.
var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n',
}

// normalizeName lowercases an exercise name and folds accents so that
// similarity comparisons are spelling-insensitive.
func normalizeName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		if folded, ok := accentFold[r]; ok {
			return folded
		}
		return r
	}, lower)
}

// NameSimilarity scores two exercise names in [0, 1]. Exact match after
// normalization is 1.0; containment scores by length ratio; otherwise the
// share of significant words (longer than two runes) they have in common.
func NameSimilarity(a, b string) float64 {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		short, long := len(na), len(nb)
		if short > long {
			short, long = long, short
		}
		return float64(short) / float64(long)
	}

	wordsA := significantWords(na)
	wordsB := significantWords(nb)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}
	shared := 0
	for w := range wordsA {
		if wordsB[w] {
			shared++
		}
	}
	max := len(wordsA)
	if len(wordsB) > max {
		max = len(wordsB)
	}
	return float64(shared) / float64(max)
}

func significantWords(s string) map[string]bool {
	words := map[string]bool{}
	for _, w := range strings.Fields(s) {
		if len([]rune(w)) > 2 {
			words[w] = true
		}
	}
	return words
}

// compoundKeywords mark multi-joint movement patterns by name.
var compoundKeywords = []string{
	"press", "squat", "deadlift", "row", "pulldown", "pull-up", "pull up",
	"chin-up", "chin up", "lunge", "leg press", "hack", "stiff-leg",
	"romanian", "dip", "push-up", "push up", "clean", "thruster",
}

// isolationExceptions override the keyword match: these contain a compound
// keyword but are single-joint moves.
var isolationExceptions = []string{
	"fly", "flye", "lateral raise", "front raise", "rear delt",
	"calf raise", "leg press calf",
}

// IsCompound classifies an exercise as multi-joint. An exercise counts as
// compound when its name matches a movement-pattern keyword (and no
// isolation exception), when the catalog lists two or more synergist groups,
// or when it is a body-weight multi-joint staple.
func IsCompound(ex models.Exercise) bool {
	name := normalizeName(ex.Name)
	for _, exc := range isolationExceptions {
		if strings.Contains(name, exc) {
			return false
		}
	}
	for _, kw := range compoundKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	if len(ex.Synergists) >= 2 {
		return true
	}
	if isBodyweight(ex.Equipment) &&
		(strings.Contains(name, "push-up") || strings.Contains(name, "push up") ||
			strings.Contains(name, "pull-up") || strings.Contains(name, "pull up")) {
		return true
	}
	return false
}

func isBodyweight(equipment []string) bool {
	if len(equipment) == 0 {
		return true
	}
	for _, e := range equipment {
		if normalizeName(e) != "bodyweight" && normalizeName(e) != "body weight" {
			return false
		}
	}
	return true
}
