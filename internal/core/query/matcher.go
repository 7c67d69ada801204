package query

import (
	"fmt"
	"strings"
	"unicode"
)

// Matcher reports whether the concept called name is mentioned in
// question.
type Matcher func(question, name string) bool

// SubstringMatcher matches when name occurs anywhere in question, ignoring
// case. "Cat" matches "concatenate".
func SubstringMatcher(question, name string) bool {
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(question), strings.ToLower(name))
}

// WordMatcher matches only on whole-word occurrences, ignoring case.
func WordMatcher(question, name string) bool {
	if name == "" {
		return false
	}
	q := strings.ToLower(question)
	n := strings.ToLower(name)
	for offset := 0; ; {
		i := strings.Index(q[offset:], n)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(n)
		if boundaryBefore(q, start) && boundaryAfter(q, end) {
			return true
		}
		offset = start + 1
	}
}

// StemMatcher accepts everything SubstringMatcher does, plus names whose
// words, with a common English suffix trimmed, each start some word of the
// question: "Photosynthesis" is found in "photosynthesize".
func StemMatcher(question, name string) bool {
	if SubstringMatcher(question, name) {
		return true
	}
	nameWords := words(name)
	if len(nameWords) == 0 {
		return false
	}
	questionWords := words(question)
	for _, nw := range nameWords {
		stem := stemOf(nw)
		found := false
		for _, qw := range questionWords {
			if strings.HasPrefix(qw, stem) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MatcherByName resolves a configured matcher name. Empty means substring.
func MatcherByName(name string) (Matcher, error) {
	switch strings.ToLower(name) {
	case "", "substring":
		return SubstringMatcher, nil
	case "word":
		return WordMatcher, nil
	case "stem":
		return StemMatcher, nil
	default:
		return nil, fmt.Errorf("unknown matcher: %s", name)
	}
}

var suffixes = []string{"ation", "ing", "ies", "es", "is", "ed", "s"}

const minStem = 4

func stemOf(word string) string {
	for _, suf := range suffixes {
		if strings.HasSuffix(word, suf) && len(word)-len(suf) >= minStem {
			return word[:len(word)-len(suf)]
		}
	}
	return word
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isWordByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}

func boundaryBefore(s string, i int) bool {
	return i == 0 || !isWordByte(s[i-1])
}

func boundaryAfter(s string, i int) bool {
	return i >= len(s) || !isWordByte(s[i])
}
