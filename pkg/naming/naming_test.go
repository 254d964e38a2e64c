package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	tests := map[string]string{
		"LeapYearRules":           "Leap Year Rules",
		"XMLParser":               "XML Parser",
		"parseHTMLDocument":       "Parse HTML Document",
		"addition(int, int, int)": "Addition",
		"leap_year_rules":         "Leap year rules",
		"snake_case":              "Snake case",
		"Already titled":          "Already titled",
		"x":                       "X",
		"version2Format":          "Version2 Format",
		"":                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Title(in), in)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"MathTest":                "math-test",
		"XMLParser":               "xml-parser",
		"leap_year_rules":         "leap-year-rules",
		"Leap year rules":         "leap-year-rules",
		"Crème brûlée  recipes!":  "creme-brulee-recipes",
		"addition(int, int, int)": "addition",
		"org.example.MathTest":    "org-example-math-test",
		"":                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
	}
}

func TestSimpleName(t *testing.T) {
	assert.Equal(t, "MathTest", SimpleName("org.example.MathTest"))
	assert.Equal(t, "MathTest", SimpleName("MathTest"))
	assert.Equal(t, "trailing.", SimpleName("trailing."))
}

func TestNFC(t *testing.T) {
	decomposed := "e\u0301"
	assert.Equal(t, "\u00e9", NFC(decomposed))
}
