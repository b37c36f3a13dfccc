package extract

import (
	"path/filepath"
	"sort"
	"strings"
)

// Extractor extracts facts from one language's source files
type Extractor interface {
	// Language returns the language name (e.g. "typescript")
	Language() string
	// Extensions returns the file extensions this extractor handles
	Extensions() []string
	// ResolutionSuffixes returns the ordered suffixes tried when resolving a
	// relative import specifier against the known file set (e.g. "", ".ts",
	// "/index.ts")
	ResolutionSuffixes() []string
	// ResolveSpecifier converts an import specifier into a file-relative
	// path fragment. ok is false for non-relative (external package)
	// specifiers, which never produce graph edges.
	ResolveSpecifier(spec string) (rel string, ok bool)
	// Extract pulls facts from content. Must not retain content.
	Extract(path string, content []byte) *FileFacts
}

// Registry maps file extensions to extractors. Construct one per engine
// instance; test suites can run isolated registries concurrently.
type Registry struct {
	byExt  map[string]Extractor
	byLang map[string]Extractor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byExt:  make(map[string]Extractor),
		byLang: make(map[string]Extractor),
	}
}

// Register adds an extractor for all of its extensions. A later registration
// for the same extension wins.
func (r *Registry) Register(e Extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
	r.byLang[e.Language()] = e
}

// ForPath returns the extractor registered for the file's extension
func (r *Registry) ForPath(path string) (Extractor, bool) {
	e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return e, ok
}

// ForLanguage returns the extractor registered under a language name
func (r *Registry) ForLanguage(lang string) (Extractor, bool) {
	e, ok := r.byLang[lang]
	return e, ok
}

// Languages returns the registered language names, sorted
func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.byLang))
	for l := range r.byLang {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// DefaultRegistry returns a registry with all built-in extractors registered
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewTypeScriptExtractor())
	r.Register(NewJavaScriptExtractor())
	r.Register(NewGoExtractor())
	r.Register(NewPythonExtractor())
	r.Register(NewJavaExtractor())
	r.Register(NewRustExtractor())
	return r
}
