// Package textutil provides word-shape predicates for token features.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsInitCaps reports whether word starts with an upper case letter followed
// only by lower case letters.
func IsInitCaps(word string) bool {
	first, size := utf8.DecodeRuneInString(word)
	if first == utf8.RuneError || !unicode.IsUpper(first) {
		return false
	}
	rest := word[size:]
	return rest == "" || isLower(rest)
}

// IsAllCaps reports whether word has cased letters and all of them are upper
// case.
func IsAllCaps(word string) bool {
	cased := false
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// HasInnerCaps reports whether any rune after the first is upper case.
func HasInnerCaps(word string) bool {
	_, size := utf8.DecodeRuneInString(word)
	return strings.IndexFunc(word[size:], unicode.IsUpper) >= 0
}

func isLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}

// IsAllDigits reports whether word is a non-empty run of digits.
func IsAllDigits(word string) bool {
	return word != "" && strings.IndexFunc(word, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}

// HasDigits reports whether word contains a digit.
func HasDigits(word string) bool {
	return strings.IndexFunc(word, unicode.IsDigit) >= 0
}

var digitRe = regexp.MustCompile(`\d`)

// NumberPattern replaces digits with X and letters with C if the digit ratio
// is at least ratio. It returns the empty string otherwise.
func NumberPattern(text string, ratio float64) string {
	if text == "" {
		return ""
	}

	total := utf8.RuneCountInString(text)
	digits := 0
	for _, r := range text {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if float64(digits)/float64(total) < ratio {
		return ""
	}

	masked := digitRe.ReplaceAllString(text, "X")
	var buf strings.Builder
	for _, r := range masked {
		if r == 'X' || !unicode.IsLetter(r) {
			buf.WriteRune(r)
		} else {
			buf.WriteRune('C')
		}
	}
	return buf.String()
}
