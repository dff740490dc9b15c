// Package tokens estimates how many tokens a prompt costs before it is sent.
package tokens

import (
	"math"
	"unicode"
	"unicode/utf8"
)

// Latin text averages about four characters per token. Cyrillic and other
// non-Latin letters tokenize worse, at roughly two characters per token.
const (
	latinCharsPerToken = 4.0
	otherCharsPerToken = 2.0
)

// Counter counts tokens in text.
type Counter interface {
	Count(text string) int
}

// EstimatingCounter approximates the token count from character classes.
type EstimatingCounter struct{}

func NewEstimatingCounter() *EstimatingCounter {
	return &EstimatingCounter{}
}

func (*EstimatingCounter) Count(text string) int {
	return Estimate(text)
}

// Estimate returns the approximate token count of text. Characters are
// counted as runes, so multi-byte letters are not over-counted.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	var latin, other float64
	for _, r := range text {
		switch {
		case r < utf8.RuneSelf, unicode.Is(unicode.Latin, r):
			latin++
		default:
			other++
		}
	}
	return int(math.Ceil(latin/latinCharsPerToken + other/otherCharsPerToken))
}
