// Package extract pulls per-file facts (imports, exports, functions, classes)
// out of raw source text. Extraction is best-effort and language-specific;
// extractors are registered by file extension in an explicitly constructed
// Registry, never in package-level state.
package extract

// Import represents one import statement found in a file
type Import struct {
	// Source is the raw import specifier as written in the file
	Source string `json:"source"`
	// ResolvedPath is the canonical path of the target file, when resolution
	// succeeded. Empty for external or unresolved specifiers.
	ResolvedPath string `json:"resolvedPath,omitempty"`
	// Specifiers are the imported names, when the language exposes them
	Specifiers []string `json:"specifiers,omitempty"`
	// IsDefault marks a default import (TS/JS)
	IsDefault bool `json:"isDefault,omitempty"`
	// IsDynamic marks a dynamic import or require call
	IsDynamic bool `json:"isDynamic,omitempty"`
	// Line is the 1-indexed line the import was found on
	Line int `json:"line"`
}

// FileFacts holds everything extracted from one file. Facts are recomputed
// wholesale whenever a file's content changes; they are never patched.
type FileFacts struct {
	Path        string   `json:"path"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Imports     []Import `json:"imports"`
	Exports     []string `json:"exports"`
	Functions   []string `json:"functions"`
	Classes     []string `json:"classes"`
}

// EmptyFacts returns facts with no content for the given path. Used for
// files with no registered extractor and for soft-failed reads, so graph
// connectivity through such files is preserved.
func EmptyFacts(path string) *FileFacts {
	return &FileFacts{
		Path:      path,
		Imports:   []Import{},
		Exports:   []string{},
		Functions: []string{},
		Classes:   []string{},
	}
}
