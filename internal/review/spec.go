package review

import (
	"os"

	"gopkg.in/yaml.v3"

	arcerrors "arc/internal/errors"
	"arc/internal/protocol"
)

// Spec is the review specification loaded from a YAML file: what to review
// and under which round policy. Zero policy fields fall back to config.
type Spec struct {
	Target       string   `yaml:"target"`
	Requirements []string `yaml:"requirements"`
	Files        []string `yaml:"files"`
	MinRounds    int      `yaml:"minRounds"`
	MaxRounds    int      `yaml:"maxRounds"`
	Mode         string   `yaml:"mode"`
}

// LoadSpec reads and validates a review spec file
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, arcerrors.Wrap(arcerrors.SpecInvalid, "cannot read review spec", err)
	}

	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, arcerrors.Wrap(arcerrors.SpecInvalid, "cannot parse review spec", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks spec invariants
func (s *Spec) Validate() error {
	if s.Target == "" {
		return arcerrors.New(arcerrors.SpecInvalid, "review spec needs a target")
	}
	if s.Mode != "" {
		if _, err := protocol.ParseMode(s.Mode); err != nil {
			return arcerrors.Wrap(arcerrors.SpecInvalid, "invalid review mode", err)
		}
	}
	if s.MinRounds < 0 || s.MaxRounds < 0 {
		return arcerrors.New(arcerrors.SpecInvalid, "round bounds must not be negative")
	}
	if s.MinRounds > 0 && s.MaxRounds > 0 && s.MaxRounds < s.MinRounds {
		return arcerrors.New(arcerrors.SpecInvalid, "maxRounds must be >= minRounds")
	}
	return nil
}
