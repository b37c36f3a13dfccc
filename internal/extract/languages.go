package extract

import (
	"regexp"
	"strings"
)

// Built-in language pattern tables. Kept deliberately line-oriented and
// best-effort: the graph tolerates missed or spurious facts, and unsupported
// constructs degrade to fewer facts rather than failures.

var (
	tsImportFrom = regexp.MustCompile(`^\s*import\s+(?:type\s+)?(.+?)\s+from\s+['"]([^'"]+)['"]`)
	tsImportBare = regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]`)
	tsExportFrom = regexp.MustCompile(`^\s*export\s+(?:\*(?:\s+as\s+\w+)?|\{[^}]*\})\s*from\s+['"]([^'"]+)['"]`)
	tsDynImport  = regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	tsRequire    = regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	tsExportDecl = regexp.MustCompile(`^\s*export\s+(?:default\s+)?(?:abstract\s+)?(?:async\s+)?(?:function\s*\*?|class|interface|enum|type|const|let|var)\s+([A-Za-z_$][\w$]*)`)
	tsFunction   = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`)
	tsArrowFn    = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?(?:\([^)]*\)|[A-Za-z_$][\w$]*)\s*=>`)
	tsClass      = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][\w$]*)`)
)

func tsJSPatterns() ([]ImportPattern, []*regexp.Regexp, []*regexp.Regexp, []*regexp.Regexp) {
	imports := []ImportPattern{
		{Pattern: tsImportFrom, SourceGroup: 2},
		{Pattern: tsImportBare},
		{Pattern: tsExportFrom},
		{Pattern: tsDynImport, Dynamic: true},
		{Pattern: tsRequire, Dynamic: true},
	}
	exports := []*regexp.Regexp{tsExportDecl}
	functions := []*regexp.Regexp{tsFunction, tsArrowFn}
	classes := []*regexp.Regexp{tsClass}
	return imports, exports, functions, classes
}

// refineTSImport fills Specifiers and IsDefault from the import clause
func refineTSImport(imp *Import, line string) {
	if imp.IsDynamic {
		return
	}
	m := tsImportFrom.FindStringSubmatch(line)
	if m == nil || m[2] != imp.Source {
		return
	}
	specs, isDefault := parseImportClause(m[1])
	imp.Specifiers = specs
	imp.IsDefault = isDefault
}

// parseImportClause splits a TS/JS import clause into specifier names.
// Handles `Def`, `{a, b as c}`, `* as ns`, and `Def, {a}` forms.
func parseImportClause(clause string) ([]string, bool) {
	clause = strings.TrimSpace(clause)
	var specs []string
	isDefault := false

	for clause != "" {
		switch {
		case strings.HasPrefix(clause, "{"):
			end := strings.Index(clause, "}")
			if end < 0 {
				end = len(clause) - 1
			}
			for _, part := range strings.Split(clause[1:end], ",") {
				name := strings.TrimSpace(part)
				if i := strings.Index(name, " as "); i >= 0 {
					name = strings.TrimSpace(name[:i])
				}
				if name != "" {
					specs = append(specs, name)
				}
			}
			clause = strings.TrimSpace(strings.TrimPrefix(clause[end+1:], ","))
		case strings.HasPrefix(clause, "*"):
			rest := strings.TrimSpace(strings.TrimPrefix(clause, "*"))
			rest = strings.TrimSpace(strings.TrimPrefix(rest, "as"))
			if i := strings.IndexAny(rest, ", "); i >= 0 {
				rest = rest[:i]
			}
			if rest != "" {
				specs = append(specs, rest)
			}
			clause = ""
		default:
			name := clause
			if i := strings.Index(clause, ","); i >= 0 {
				name = clause[:i]
				clause = strings.TrimSpace(clause[i+1:])
			} else {
				clause = ""
			}
			name = strings.TrimSpace(name)
			if name != "" {
				specs = append(specs, name)
				isDefault = true
			}
		}
	}
	return specs, isDefault
}

func resolveDotSlash(spec string) (string, bool) {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".." {
		return spec, true
	}
	return "", false
}

// NewTypeScriptExtractor returns the extractor for .ts/.tsx files
func NewTypeScriptExtractor() *RegexExtractor {
	imports, exports, functions, classes := tsJSPatterns()
	return &RegexExtractor{
		language:         "typescript",
		extensions:       []string{".ts", ".tsx"},
		suffixes:         []string{"", ".ts", ".tsx", ".js", ".jsx", "/index.ts", "/index.tsx", "/index.js"},
		importPatterns:   imports,
		exportPatterns:   exports,
		functionPatterns: functions,
		classPatterns:    classes,
		resolve:          resolveDotSlash,
		refine:           refineTSImport,
	}
}

// NewJavaScriptExtractor returns the extractor for .js/.jsx/.mjs/.cjs files
func NewJavaScriptExtractor() *RegexExtractor {
	imports, exports, functions, classes := tsJSPatterns()
	return &RegexExtractor{
		language:         "javascript",
		extensions:       []string{".js", ".jsx", ".mjs", ".cjs"},
		suffixes:         []string{"", ".js", ".jsx", ".mjs", ".cjs", "/index.js", "/index.jsx"},
		importPatterns:   imports,
		exportPatterns:   exports,
		functionPatterns: functions,
		classPatterns:    classes,
		resolve:          resolveDotSlash,
		refine:           refineTSImport,
	}
}

var (
	goImportLine  = regexp.MustCompile(`^\s*import\s+(?:\w+\s+)?"([^"]+)"`)
	goImportBlock = regexp.MustCompile(`^\s*(?:[\w.]+\s+)?"([^"]+)"\s*$`)
	goExportFunc  = regexp.MustCompile(`^func\s+(?:\([^)]*\)\s+)?([A-Z]\w*)\s*[(\[]`)
	goExportType  = regexp.MustCompile(`^type\s+([A-Z]\w*)\b`)
	goExportVar   = regexp.MustCompile(`^(?:var|const)\s+([A-Z]\w*)\b`)
	goFunction    = regexp.MustCompile(`^func\s+(?:\([^)]*\)\s+)?([A-Za-z_]\w*)\s*[(\[]`)
	goStruct      = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)\s+(?:struct|interface)\b`)
)

// NewGoExtractor returns the extractor for .go files. Go imports are always
// package paths, never file-relative, so Go files contribute nodes and
// exported symbols but no resolved edges.
func NewGoExtractor() *RegexExtractor {
	return &RegexExtractor{
		language:   "go",
		extensions: []string{".go"},
		suffixes:   []string{""},
		importPatterns: []ImportPattern{
			{Pattern: goImportLine},
			{Pattern: goImportBlock},
		},
		exportPatterns:   []*regexp.Regexp{goExportFunc, goExportType, goExportVar},
		functionPatterns: []*regexp.Regexp{goFunction},
		classPatterns:    []*regexp.Regexp{goStruct},
	}
}

var (
	pyFromImport = regexp.MustCompile(`^\s*from\s+([.\w]+)\s+import\s+(.+?)\s*$`)
	pyImport     = regexp.MustCompile(`^\s*import\s+([.\w]+)`)
	pyExportDef  = regexp.MustCompile(`^(?:async\s+)?def\s+([A-Za-z]\w*)`)
	pyExportCls  = regexp.MustCompile(`^class\s+([A-Za-z]\w*)`)
	pyFunction   = regexp.MustCompile(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)`)
	pyClass      = regexp.MustCompile(`^\s*class\s+([A-Za-z_]\w*)`)
)

// resolvePythonSpecifier maps dotted relative module paths to file paths:
// ".sibling" -> "./sibling", "..pkg.mod" -> "../pkg/mod".
func resolvePythonSpecifier(spec string) (string, bool) {
	if !strings.HasPrefix(spec, ".") {
		return "", false
	}
	dots := 0
	for dots < len(spec) && spec[dots] == '.' {
		dots++
	}
	rest := strings.ReplaceAll(spec[dots:], ".", "/")
	prefix := "./"
	if dots > 1 {
		prefix = strings.Repeat("../", dots-1)
	}
	if rest == "" {
		// `from . import x` targets the package itself
		return strings.TrimSuffix(prefix, "/"), true
	}
	return prefix + rest, true
}

func refinePythonImport(imp *Import, line string) {
	m := pyFromImport.FindStringSubmatch(line)
	if m == nil || m[1] != imp.Source {
		return
	}
	for _, part := range strings.Split(m[2], ",") {
		name := strings.TrimSpace(part)
		if i := strings.Index(name, " as "); i >= 0 {
			name = strings.TrimSpace(name[:i])
		}
		name = strings.TrimSuffix(name, "(")
		if name != "" && name != "*" {
			imp.Specifiers = append(imp.Specifiers, name)
		}
	}
}

// NewPythonExtractor returns the extractor for .py files
func NewPythonExtractor() *RegexExtractor {
	return &RegexExtractor{
		language:   "python",
		extensions: []string{".py", ".pyi"},
		suffixes:   []string{"", ".py", "/__init__.py"},
		importPatterns: []ImportPattern{
			{Pattern: pyFromImport},
			{Pattern: pyImport},
		},
		exportPatterns:   []*regexp.Regexp{pyExportDef, pyExportCls},
		functionPatterns: []*regexp.Regexp{pyFunction},
		classPatterns:    []*regexp.Regexp{pyClass},
		resolve:          resolvePythonSpecifier,
		refine:           refinePythonImport,
	}
}

var (
	javaImport = regexp.MustCompile(`^\s*import\s+(?:static\s+)?([\w.]+(?:\.\*)?)\s*;`)
	javaExport = regexp.MustCompile(`public\s+(?:final\s+|abstract\s+)?(?:class|interface|enum|record)\s+(\w+)`)
	javaMethod = regexp.MustCompile(`(?:public|protected|private)\s+(?:static\s+)?(?:final\s+)?[\w<>\[\],\s]+?\s(\w+)\s*\(`)
	javaClass  = regexp.MustCompile(`(?:class|interface|enum|record)\s+(\w+)`)
)

// NewJavaExtractor returns the extractor for .java files. Java imports are
// package-qualified, never file-relative.
func NewJavaExtractor() *RegexExtractor {
	return &RegexExtractor{
		language:         "java",
		extensions:       []string{".java"},
		suffixes:         []string{""},
		importPatterns:   []ImportPattern{{Pattern: javaImport}},
		exportPatterns:   []*regexp.Regexp{javaExport},
		functionPatterns: []*regexp.Regexp{javaMethod},
		classPatterns:    []*regexp.Regexp{javaClass},
	}
}

var (
	rustUse      = regexp.MustCompile(`^\s*(?:pub\s+)?use\s+([\w:]+)`)
	rustMod      = regexp.MustCompile(`^\s*(?:pub\s+)?mod\s+(\w+)\s*;`)
	rustExportFn = regexp.MustCompile(`^\s*pub\s+(?:async\s+)?fn\s+(\w+)`)
	rustExportTy = regexp.MustCompile(`^\s*pub\s+(?:struct|enum|trait|type)\s+(\w+)`)
	rustFn       = regexp.MustCompile(`^\s*(?:pub\s+)?(?:async\s+)?fn\s+(\w+)`)
	rustType     = regexp.MustCompile(`^\s*(?:pub\s+)?(?:struct|enum|trait)\s+(\w+)`)
)

// refineRustImport rewrites `mod name;` declarations as relative specifiers
// so they resolve to name.rs or name/mod.rs.
func refineRustImport(imp *Import, line string) {
	if m := rustMod.FindStringSubmatch(line); m != nil && m[1] == imp.Source {
		imp.Source = "./" + m[1]
	}
}

// NewRustExtractor returns the extractor for .rs files. Only `mod`
// declarations resolve to files; `use` paths are crate-level and external.
func NewRustExtractor() *RegexExtractor {
	return &RegexExtractor{
		language:   "rust",
		extensions: []string{".rs"},
		suffixes:   []string{"", ".rs", "/mod.rs"},
		importPatterns: []ImportPattern{
			{Pattern: rustMod},
			{Pattern: rustUse},
		},
		exportPatterns:   []*regexp.Regexp{rustExportFn, rustExportTy},
		functionPatterns: []*regexp.Regexp{rustFn},
		classPatterns:    []*regexp.Regexp{rustType},
		resolve:          resolveDotSlash,
		refine:           refineRustImport,
	}
}
