package extract

import (
	"fmt"
	"os"
	"regexp"

	toml "github.com/pelletier/go-toml/v2"
)

// OverridesFile is the default filename for extractor overrides
const OverridesFile = "EXTRACTORS.toml"

// Overrides extends built-in extractors with repo-specific patterns,
// declared in EXTRACTORS.toml at the repo root.
type Overrides struct {
	Languages map[string]LanguageOverride `toml:"languages"`
}

// LanguageOverride extends one language's extractor
type LanguageOverride struct {
	// Extensions adds file extensions handled by this language
	Extensions []string `toml:"extensions,omitempty"`
	// ImportPatterns adds regex patterns; group 1 must capture the specifier
	ImportPatterns []string `toml:"importPatterns,omitempty"`
	// ResolutionSuffixes adds suffixes tried during import resolution
	ResolutionSuffixes []string `toml:"resolutionSuffixes,omitempty"`
}

// LoadOverrides reads an overrides file. A missing file is not an error and
// yields nil.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var o Overrides
	if err := toml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &o, nil
}

// Apply extends the registry's extractors in place. Unknown language names
// and invalid patterns are reported as errors; nothing is partially applied
// before the first failure.
func (o *Overrides) Apply(r *Registry) error {
	if o == nil {
		return nil
	}
	for lang, ov := range o.Languages {
		e, ok := r.ForLanguage(lang)
		if !ok {
			return fmt.Errorf("overrides reference unknown language %q", lang)
		}
		re, ok := e.(*RegexExtractor)
		if !ok {
			return fmt.Errorf("language %q does not accept pattern overrides", lang)
		}

		compiled := make([]ImportPattern, 0, len(ov.ImportPatterns))
		for _, p := range ov.ImportPatterns {
			rx, err := regexp.Compile(p)
			if err != nil {
				return fmt.Errorf("language %q: invalid pattern %q: %w", lang, p, err)
			}
			compiled = append(compiled, ImportPattern{Pattern: rx})
		}

		for _, p := range compiled {
			re.AddImportPattern(p)
		}
		re.AddResolutionSuffixes(ov.ResolutionSuffixes)
		if len(ov.Extensions) > 0 {
			re.AddExtensions(ov.Extensions)
			r.Register(re)
		}
	}
	return nil
}
