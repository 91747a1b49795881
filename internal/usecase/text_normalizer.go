package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for performance
var (
	sentencePunctuationRegex = regexp.MustCompile(`[¿?¡!;:"“”«»()]`)
	multipleSpacesRegex      = regexp.MustCompile(`\s+`)
	digitsRegex              = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	decimalCommaRegex        = regexp.MustCompile(`(\d),(\d)`)
)

// lowerSpanish lower-cases with Spanish casing rules.
// A Caser keeps state, so one is built per call.
func lowerSpanish(s string) string {
	return cases.Lower(language.Spanish).String(s)
}

// foldAccents strips combining marks: "azúcar" -> "azucar", "ñ" -> "n"
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// collapseSpaces trims and reduces every whitespace run to one space
func collapseSpaces(s string) string {
	return strings.TrimSpace(multipleSpacesRegex.ReplaceAllString(s, " "))
}

// normalizeUtterance prepares transcribed speech for parsing: lower-case,
// sentence punctuation removed, commas kept as standalone tokens.
// Decimal points between digits survive ("2.5 kilos") and a decimal
// comma is read as a point ("4,50" -> "4.50").
func normalizeUtterance(text string) string {
	text = lowerSpanish(text)
	text = sentencePunctuationRegex.ReplaceAllString(text, " ")
	text = stripNonDecimalDots(text)
	text = decimalCommaRegex.ReplaceAllString(text, "$1.$2")
	text = strings.ReplaceAll(text, ",", " , ")
	return collapseSpaces(text)
}

// stripNonDecimalDots replaces every '.' that is not between two digits
func stripNonDecimalDots(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	r := []rune(s)
	for i, c := range r {
		if c != '.' {
			continue
		}
		if i > 0 && i < len(r)-1 && unicode.IsDigit(r[i-1]) && unicode.IsDigit(r[i+1]) {
			continue
		}
		r[i] = ' '
	}
	return string(r)
}

// withoutCommas drops the comma tokens kept by normalizeUtterance
func withoutCommas(text string) string {
	return collapseSpaces(strings.ReplaceAll(text, ",", " "))
}

// removeWords drops every token found in words and rejoins the rest
func removeWords(text string, words map[string]bool) string {
	kept := make([]string, 0, 8)
	for _, tok := range strings.Fields(text) {
		if !words[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// containsAnyWord reports whether any token is in words
func containsAnyWord(tokens []string, words map[string]bool) bool {
	for _, tok := range tokens {
		if words[tok] {
			return true
		}
	}
	return false
}

func isDigits(tok string) bool {
	return digitsRegex.MatchString(tok)
}

func wordSet(words ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, list := range words {
		for _, w := range list {
			set[w] = true
		}
	}
	return set
}
