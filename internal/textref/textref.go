// Package textref pulls candidate file references out of free-text round
// output. It is a heuristic scanner; the orchestrator treats the result as
// an opaque candidate list and drops anything that does not resolve to a
// real file.
package textref

import (
	"regexp"
	"sort"
	"strings"
)

// pathPattern matches path-like tokens carrying a known code extension,
// optionally followed by :line. Covers "file:line" mentions, import lines
// with explicit extensions and plain path mentions.
var pathPattern = regexp.MustCompile(
	`[A-Za-z0-9_][A-Za-z0-9_.\-]*(?:/[A-Za-z0-9_.\-]+)*\.(?:tsx?|jsx?|mjs|go|py|java|rs|kt|rb|cs|c|cc|cpp|h|hpp)\b`)

// Extractor scans round output for file references
type Extractor struct {
	pattern *regexp.Regexp
}

// New creates an extractor with the default path heuristics
func New() *Extractor {
	return &Extractor{pattern: pathPattern}
}

// Extract returns the unique candidate paths mentioned in text, sorted,
// normalized to forward slashes with any "./" prefix stripped. Line-number
// suffixes are dropped; the path alone identifies the context candidate.
func (e *Extractor) Extract(text string) []string {
	matches := e.pattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		p := strings.TrimPrefix(strings.ReplaceAll(m, `\`, "/"), "./")
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
