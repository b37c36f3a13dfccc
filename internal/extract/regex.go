package extract

import (
	"bufio"
	"bytes"
	"regexp"
)

// ImportPattern matches one import statement form. SourceGroup selects the
// capture group holding the specifier (defaults to 1 when zero).
type ImportPattern struct {
	Pattern     *regexp.Regexp
	SourceGroup int
	Dynamic     bool
}

// RegexExtractor is a line-oriented, pattern-table extractor. All built-in
// language extractors are instances of it; overrides can append patterns.
type RegexExtractor struct {
	language   string
	extensions []string
	suffixes   []string

	importPatterns   []ImportPattern
	exportPatterns   []*regexp.Regexp
	functionPatterns []*regexp.Regexp
	classPatterns    []*regexp.Regexp

	// resolve maps a specifier to a file-relative fragment, or reports it
	// external. Nil means no specifier ever resolves (package-style imports).
	resolve func(spec string) (string, bool)
	// refine fills language-specific import detail (specifiers, default)
	// from the full source line. Optional.
	refine func(imp *Import, line string)
}

// Language implements Extractor
func (e *RegexExtractor) Language() string { return e.language }

// Extensions implements Extractor
func (e *RegexExtractor) Extensions() []string { return e.extensions }

// ResolutionSuffixes implements Extractor
func (e *RegexExtractor) ResolutionSuffixes() []string { return e.suffixes }

// ResolveSpecifier implements Extractor
func (e *RegexExtractor) ResolveSpecifier(spec string) (string, bool) {
	if e.resolve == nil {
		return "", false
	}
	return e.resolve(spec)
}

// Extract implements Extractor. It scans content line by line; a pattern
// match never aborts the scan, so one odd line cannot lose a file's facts.
func (e *RegexExtractor) Extract(path string, content []byte) *FileFacts {
	facts := EmptyFacts(path)

	seenImport := make(map[string]bool)
	seenName := map[string]map[string]bool{
		"export":   {},
		"function": {},
		"class":    {},
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		for _, ip := range e.importPatterns {
			m := ip.Pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			group := ip.SourceGroup
			if group == 0 {
				group = 1
			}
			if group >= len(m) || m[group] == "" {
				continue
			}
			imp := Import{
				Source:    m[group],
				IsDynamic: ip.Dynamic,
				Line:      lineNo,
			}
			if e.refine != nil {
				e.refine(&imp, line)
			}
			key := imp.Source
			if imp.IsDynamic {
				key += "\x00dyn"
			}
			if seenImport[key] {
				continue
			}
			seenImport[key] = true
			facts.Imports = append(facts.Imports, imp)
		}

		collect(line, e.exportPatterns, seenName["export"], &facts.Exports)
		collect(line, e.functionPatterns, seenName["function"], &facts.Functions)
		collect(line, e.classPatterns, seenName["class"], &facts.Classes)
	}

	return facts
}

func collect(line string, patterns []*regexp.Regexp, seen map[string]bool, out *[]string) {
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(line, -1) {
			if len(m) < 2 || m[1] == "" || seen[m[1]] {
				continue
			}
			seen[m[1]] = true
			*out = append(*out, m[1])
		}
	}
}

// AddImportPattern appends an import pattern (used by overrides)
func (e *RegexExtractor) AddImportPattern(p ImportPattern) {
	e.importPatterns = append(e.importPatterns, p)
}

// AddExtensions appends extra extensions (used by overrides)
func (e *RegexExtractor) AddExtensions(exts []string) {
	e.extensions = append(e.extensions, exts...)
}

// AddResolutionSuffixes appends extra resolution suffixes (used by overrides)
func (e *RegexExtractor) AddResolutionSuffixes(suffixes []string) {
	e.suffixes = append(e.suffixes, suffixes...)
}
