// Package alphabet holds the Common Turkic Alphabet (CTA) letter inventory,
// the source-language mapping tables embedded in prompts, and the
// character checks used on transliterated output.
package alphabet

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BaseLetters are the 29 letters of the Turkish alphabet, which CTA keeps unchanged.
const BaseLetters = "abcçdefgğhıijklmnoöprsştuüvyz"

// NewLetters are the letters CTA adds on top of the Turkish base.
var NewLetters = []string{"q", "x", "ñ", "ä", "û"}

// lowerAllowed and upperAllowed are every letter a transliterated text may
// contain, including the regional extras (ò, ə, w and the circumflex vowels).
const (
	lowerAllowed = "abcçdefgğhıijklmnñoòöpqrsştuüvwxyzäûəâîô"
	upperAllowed = "ABCÇDEFGĞHIİJKLMNÑOÒÖPQRSŞTUÜVWXYZÄÛƏÂÎÔ"
	punctuation  = " .,:;!?()-[]{}\"'0123456789\n\r\t‘’“”"
)

var allowed = func() map[rune]bool {
	m := map[rune]bool{}
	for _, r := range lowerAllowed + upperAllowed + punctuation {
		m[r] = true
	}
	return m
}()

// AllowedLetters returns the allowed letters, lowercase then uppercase, for
// enumerating in an output contract.
func AllowedLetters() (lower, upper string) {
	return spaced(lowerAllowed), spaced(upperAllowed)
}

// AllowedPunctuation is the non-letter part of the allowed character set,
// as shown to the generation service.
const AllowedPunctuation = `space, newline and . , : ; ! ? ( ) - [ ] { } " ' 0-9 ‘ ’ “ ”`

func spaced(s string) string {
	var sb strings.Builder
	for i, r := range []rune(s) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ValidateCharacters reports whether text only uses the allowed CTA
// character set. Offending characters are returned once each, in order of
// first appearance.
func ValidateCharacters(text string) (bool, []rune) {
	var invalid []rune
	for _, r := range text {
		if !allowed[r] && !slices.Contains(invalid, r) {
			invalid = append(invalid, r)
		}
	}
	return len(invalid) == 0, invalid
}

// Letter sets used by the different analyses. Order is significant: it is
// the order letters are reported in.
var (
	// RiskTracked are the letters whose presence triggers a phonetic risk analysis.
	RiskTracked = []string{"x", "X", "ə", "Ə", "ä", "Ä", "q", "Q", "ñ", "Ñ", "û", "Û", "ò", "Ò"}

	// TransliterationUsage are the letters counted in transliteration statistics.
	TransliterationUsage = []string{"x", "X", "ä", "Ä", "q", "Q", "ñ", "Ñ", "û", "Û", "ò", "Ò"}

	// EffectivenessLetters are counted case-insensitively in effectiveness metadata.
	EffectivenessLetters = []string{"q", "x", "ñ", "ə", "û", "ò"}
)

// FindLetters returns the members of set that occur in text, in set order.
func FindLetters(text string, set []string) []string {
	var found []string
	for _, l := range set {
		if strings.Contains(text, l) {
			found = append(found, l)
		}
	}
	return found
}

// FindTrackedLetters returns the risk-tracked letters present in text.
func FindTrackedLetters(text string) []string {
	return FindLetters(text, RiskTracked)
}

// CountLetters counts the exact (case-sensitive) occurrences of each letter
// of set in text. Letters that do not occur are omitted.
func CountLetters(text string, set []string) map[string]int {
	counts := map[string]int{}
	for _, l := range set {
		if n := strings.Count(text, l); n > 0 {
			counts[l] = n
		}
	}
	return counts
}

// fold lowercases with Turkish rules, so that I folds to ı and İ to i.
func fold(s string) string {
	return cases.Lower(language.Turkish).String(s)
}

// CountFold counts occurrences of letter in text ignoring case.
func CountFold(text, letter string) int {
	if letter == "" {
		return 0
	}
	return strings.Count(fold(text), fold(letter))
}

// CountLettersFold is CountLetters ignoring case. Keys are the members of set.
func CountLettersFold(text string, set []string) map[string]int {
	folded := fold(text)
	counts := map[string]int{}
	for _, l := range set {
		if n := strings.Count(folded, fold(l)); n > 0 {
			counts[l] = n
		}
	}
	return counts
}
