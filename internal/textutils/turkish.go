// Package textutils provides text normalization helpers shared by the
// classifier, the parsers and the snapshot search.
package textutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var asciiFolder = strings.NewReplacer(
	"ö", "o", "ü", "u", "ş", "s", "ç", "c", "ğ", "g", "ı", "i",
	"â", "a", "î", "i", "û", "u",
)

// LowerTR lowercases s with Turkish casing rules (I→ı, İ→i).
// A Caser is stateful, so one is created per call.
func LowerTR(s string) string {
	return cases.Lower(language.Turkish).String(s)
}

// UpperTR uppercases s with Turkish casing rules (i→İ, ı→I).
func UpperTR(s string) string {
	return cases.Upper(language.Turkish).String(s)
}

// FoldASCII lowercases s with Turkish rules and maps the Turkish letters to
// their closest ASCII counterparts, so "ÖNLİSANS" and "onlisans" compare equal.
func FoldASCII(s string) string {
	return asciiFolder.Replace(LowerTR(s))
}

// CollapseSpaces replaces every run of Unicode white space with one ASCII
// space and trims the ends.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Snippet returns at most n runes of s with white space collapsed, for logs.
func Snippet(s string, n int) string {
	s = CollapseSpaces(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimRightFunc(string(r[:n]), unicode.IsSpace) + "…"
}

// TruncateRunes cuts s to at most n runes without splitting a character.
func TruncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
