package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Package-level compiled regex for keyword extraction. Punctuation is
// removed, not replaced with spaces, matching how questions are cleaned
// before splitting. Includes the inverted Spanish marks.
var punctuationRegex = regexp.MustCompile("[!\"#$%&'()*+,\\-./:;<=>?@\\[\\]\\\\^_`{|}~¿¡]")

// accentReplacer folds the six accented characters the normalizer
// defines. Other diacritics pass through untouched.
var accentReplacer = strings.NewReplacer(
	"á", "a",
	"é", "e",
	"í", "i",
	"ó", "o",
	"ú", "u",
	"ñ", "n",
)

// spanishStopWords are dropped during keyword extraction. Checked before
// normalization, so accented variants appear alongside plain ones.
var spanishStopWords = map[string]bool{
	"que": true, "qué": true, "cual": true, "cuál": true,
	"tiene": true, "tienes": true, "hay": true,
	"vende": true, "vendes": true,
	"me": true, "puedes": true, "puede": true,
	"mostrar": true, "ver": true,
	"busco": true, "quiero": true, "necesito": true,
	"un": true, "una": true, "el": true, "la": true,
	"los": true, "las": true, "de": true, "del": true,
	"para": true, "con": true,
}

// NormalizeWord folds accented vowels and ñ, then strips the common
// Spanish plural suffixes: "es" when the word is longer than 3 runes,
// otherwise a trailing "s". A heuristic approximation, not a stemmer;
// the length guard is the only protection against short irregular
// words. Pure and idempotent.
func NormalizeWord(word string) string {
	word = accentReplacer.Replace(word)
	if utf8.RuneCountInString(word) > 3 {
		if strings.HasSuffix(word, "es") {
			return word[:len(word)-2]
		}
		if strings.HasSuffix(word, "s") {
			return word[:len(word)-1]
		}
	}
	return word
}

// normalizeText runs NormalizeWord over a whole lowercased string.
// Accent folding applies everywhere; plural stripping then only touches
// the trailing word, which is how normalized terms are compared as
// substrings of normalized product text.
func normalizeText(s string) string {
	return NormalizeWord(strings.ToLower(s))
}

// ExtractKeywords turns a raw question into the ordered sequence of
// normalized search tokens: lowercase, strip punctuation, split on
// whitespace, drop stopwords and tokens of two runes or fewer, then
// normalize each survivor. Order of first appearance and duplicates
// are preserved.
func ExtractKeywords(question string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(question), "")

	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if spanishStopWords[word] {
			continue
		}
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		keywords = append(keywords, NormalizeWord(word))
	}

	return keywords
}

// normalizeTokenSet builds the set of individually normalized words of a
// product field, used for exact keyword membership checks.
func normalizeTokenSet(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		tokens[NormalizeWord(word)] = true
	}
	return tokens
}
