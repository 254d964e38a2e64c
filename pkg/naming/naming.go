// Package naming turns test identifiers into document titles and file slugs.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Title humanizes an identifier: "LeapYearRules" becomes "Leap Year Rules",
// "XMLParser" becomes "XML Parser" and "snake_case" becomes "Snake case".
// Names that already contain spaces are returned as is. A trailing
// parameter list such as "(int, int)" is dropped first.
func Title(name string) string {
	name = stripParams(name)
	if name == "" || strings.Contains(name, " ") {
		return name
	}
	name = strings.ReplaceAll(name, "_", " ")
	r := []rune(name)
	if len(r) == 1 {
		return strings.ToUpper(name)
	}
	out := splitWords(r, ' ', func(c rune) rune { return c })
	first := []rune(out)
	first[0] = unicode.ToUpper(first[0])
	return string(first)
}

// Slug returns a lowercase kebab-case file name for name. camelCase and
// snake_case are split into words, diacritics are removed and any run of
// characters other than letters and digits collapses to one hyphen.
func Slug(name string) string {
	name = stripParams(name)
	if name == "" {
		return ""
	}
	if !strings.Contains(name, " ") {
		if strings.Contains(name, "_") {
			name = strings.ReplaceAll(name, "_", "-")
		} else {
			name = splitWords([]rune(name), '-', unicode.ToLower)
		}
	}
	return slugify(name)
}

// SimpleName returns the last dot-separated segment of a qualified id,
// so "org.example.MathTest" yields "MathTest".
func SimpleName(id string) string {
	id = stripParams(id)
	if i := strings.LastIndex(id, "."); i >= 0 && i < len(id)-1 {
		return id[i+1:]
	}
	return id
}

func stripParams(name string) string {
	if i := strings.Index(name, "("); i > 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// splitWords inserts sep at camelCase word boundaries. A boundary is an
// uppercase letter after a lowercase letter or digit, or the last capital of
// an acronym that is followed by a lowercase letter.
func splitWords(r []rune, sep rune, conv func(rune) rune) string {
	var b strings.Builder
	for i, c := range r {
		if unicode.IsUpper(c) && i > 0 {
			prev := r[i-1]
			nextLower := i+1 < len(r) && unicode.IsLower(r[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune(sep)
			}
		}
		b.WriteRune(conv(c))
	}
	return b.String()
}

func slugify(s string) string {
	// Chained transformers keep state, so build one per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	pendingDash := false
	for _, c := range strings.ToLower(folded) {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(c)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// NFC normalizes cell text so that visually identical input renders to
// identical bytes.
func NFC(s string) string {
	return norm.NFC.String(s)
}
