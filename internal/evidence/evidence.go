// Package evidence scores how well an issue's quoted evidence matches the
// real file content. The result annotates the issue and never blocks it.
package evidence

import (
	"strings"
)

// Result is the annotation attached to an issue's evidence
type Result struct {
	Confidence float64  `json:"confidence"`
	Warnings   []string `json:"warnings,omitempty"`
}

// lineTolerance is how far a verbatim match may sit from the stated line
// before confidence drops
const lineTolerance = 5

// Validator checks evidence snippets against file content
type Validator struct{}

// NewValidator creates an evidence validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate scores an evidence snippet against the file content at the
// stated line (0 = no line given). Confidence is in [0, 1]; warnings
// explain any discount.
func (v *Validator) Validate(line int, snippet string, fileContent string) Result {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return Result{Confidence: 0, Warnings: []string{"no evidence snippet provided"}}
	}
	if fileContent == "" {
		return Result{Confidence: 0.2, Warnings: []string{"file content unavailable; evidence not verified"}}
	}

	if matchLine := findVerbatim(snippet, fileContent); matchLine > 0 {
		if line == 0 || abs(matchLine-line) <= lineTolerance {
			return Result{Confidence: 1.0}
		}
		return Result{
			Confidence: 0.7,
			Warnings:   []string{"evidence found in file but not near the stated line"},
		}
	}

	if containsNormalized(snippet, fileContent) {
		return Result{
			Confidence: 0.6,
			Warnings:   []string{"evidence matches only after whitespace normalization"},
		}
	}

	return Result{
		Confidence: 0.2,
		Warnings:   []string{"evidence snippet not found in file"},
	}
}

// findVerbatim returns the 1-indexed line where the snippet's first line
// occurs verbatim, or 0. Multi-line snippets must match consecutively.
func findVerbatim(snippet string, content string) int {
	snippetLines := strings.Split(snippet, "\n")
	contentLines := strings.Split(content, "\n")

	for i := 0; i+len(snippetLines) <= len(contentLines); i++ {
		matched := true
		for j, sl := range snippetLines {
			if !strings.Contains(contentLines[i+j], strings.TrimSpace(sl)) {
				matched = false
				break
			}
		}
		if matched {
			return i + 1
		}
	}
	return 0
}

func containsNormalized(snippet string, content string) bool {
	return strings.Contains(collapse(content), collapse(snippet))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
