// Package config loads and validates ARC configuration from .arc/config.json
// with environment overrides, backed by viper.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete ARC configuration (v1 schema)
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Extraction ExtractionConfig `json:"extraction" mapstructure:"extraction"`
	Graph      GraphConfig      `json:"graph" mapstructure:"graph"`
	Mediator   MediatorConfig   `json:"mediator" mapstructure:"mediator"`
	Review     ReviewConfig     `json:"review" mapstructure:"review"`
	Storage    StorageConfig    `json:"storage" mapstructure:"storage"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// ExtractionConfig controls fact extraction
type ExtractionConfig struct {
	// MaxFileSizeBytes caps the size of files scanned for facts
	MaxFileSizeBytes int `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
	// OverridesFile is the repo-relative path to the extractor overrides file
	OverridesFile string `json:"overridesFile" mapstructure:"overridesFile"`
}

// GraphConfig controls dependency graph construction and queries
type GraphConfig struct {
	// AffectedDepth is the default max hop count for affected-file queries
	AffectedDepth int `json:"affectedDepth" mapstructure:"affectedDepth"`
	// Workers is the number of parallel extraction workers (0 = NumCPU)
	Workers int `json:"workers" mapstructure:"workers"`
}

// MediatorConfig controls ripple analysis and advisory interventions
type MediatorConfig struct {
	// MaxRippleDepth bounds ripple-effect traversal
	MaxRippleDepth int `json:"maxRippleDepth" mapstructure:"maxRippleDepth"`
	// DiscoveryBurstThreshold is the new-file count in one round that
	// triggers a CONTEXT_EXPAND intervention
	DiscoveryBurstThreshold int `json:"discoveryBurstThreshold" mapstructure:"discoveryBurstThreshold"`
	// LoopWindow is the number of trailing rounds inspected for issue ping-pong
	LoopWindow int `json:"loopWindow" mapstructure:"loopWindow"`
	// LoopThreshold is the raise/contest count within LoopWindow that
	// triggers a LOOP_BREAK intervention
	LoopThreshold int `json:"loopThreshold" mapstructure:"loopThreshold"`
	// ContextFileCap is the tracked-context size that triggers SOFT_CORRECT
	ContextFileCap int `json:"contextFileCap" mapstructure:"contextFileCap"`
	// CriticalImportanceMin is the importance score at or above which a
	// file counts as critical for coverage tracking
	CriticalImportanceMin int `json:"criticalImportanceMin" mapstructure:"criticalImportanceMin"`
}

// ReviewConfig controls the round orchestration policy
type ReviewConfig struct {
	// MinRounds is the minimum round count before convergence may be reported
	MinRounds int `json:"minRounds" mapstructure:"minRounds"`
	// MaxRounds is the default forced-stop round cap
	MaxRounds int `json:"maxRounds" mapstructure:"maxRounds"`
	// ConvergenceWindow is K: the trailing rounds that must introduce no new issues
	ConvergenceWindow int `json:"convergenceWindow" mapstructure:"convergenceWindow"`
	// CheckpointInterval is the auto-checkpoint cadence in rounds
	CheckpointInterval int `json:"checkpointInterval" mapstructure:"checkpointInterval"`
	// Mode is the role-alternation mode: alternate, single, fast-track
	Mode string `json:"mode" mapstructure:"mode"`
	// StrictCompliance rejects rounds with ERROR role violations
	StrictCompliance bool `json:"strictCompliance" mapstructure:"strictCompliance"`
}

// StorageConfig controls session persistence
type StorageConfig struct {
	// Enabled turns sqlite persistence on
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Path is the database path relative to repo root (default .arc/arc.db)
	Path string `json:"path" mapstructure:"path"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

const currentConfigVersion = 1

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Version:  currentConfigVersion,
		RepoRoot: ".",
		Extraction: ExtractionConfig{
			MaxFileSizeBytes: 1_000_000,
			OverridesFile:    "EXTRACTORS.toml",
		},
		Graph: GraphConfig{
			AffectedDepth: 3,
			Workers:       0,
		},
		Mediator: MediatorConfig{
			MaxRippleDepth:          3,
			DiscoveryBurstThreshold: 10,
			LoopWindow:              4,
			LoopThreshold:           3,
			ContextFileCap:          60,
			CriticalImportanceMin:   6,
		},
		Review: ReviewConfig{
			MinRounds:          2,
			MaxRounds:          12,
			ConvergenceWindow:  2,
			CheckpointInterval: 2,
			Mode:               "alternate",
			StrictCompliance:   true,
		},
		Storage: StorageConfig{
			Enabled: false,
			Path:    filepath.Join(".arc", "arc.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "human",
		},
	}
}

// Load reads .arc/config.json under repoRoot. A missing config file yields
// the default configuration. ARC_* environment variables override file values
// (e.g. ARC_REVIEW_MAXROUNDS).
func Load(repoRoot string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("version", def.Version)
	v.SetDefault("repoRoot", repoRoot)
	v.SetDefault("extraction.maxFileSizeBytes", def.Extraction.MaxFileSizeBytes)
	v.SetDefault("extraction.overridesFile", def.Extraction.OverridesFile)
	v.SetDefault("graph.affectedDepth", def.Graph.AffectedDepth)
	v.SetDefault("graph.workers", def.Graph.Workers)
	v.SetDefault("mediator.maxRippleDepth", def.Mediator.MaxRippleDepth)
	v.SetDefault("mediator.discoveryBurstThreshold", def.Mediator.DiscoveryBurstThreshold)
	v.SetDefault("mediator.loopWindow", def.Mediator.LoopWindow)
	v.SetDefault("mediator.loopThreshold", def.Mediator.LoopThreshold)
	v.SetDefault("mediator.contextFileCap", def.Mediator.ContextFileCap)
	v.SetDefault("mediator.criticalImportanceMin", def.Mediator.CriticalImportanceMin)
	v.SetDefault("review.minRounds", def.Review.MinRounds)
	v.SetDefault("review.maxRounds", def.Review.MaxRounds)
	v.SetDefault("review.convergenceWindow", def.Review.ConvergenceWindow)
	v.SetDefault("review.checkpointInterval", def.Review.CheckpointInterval)
	v.SetDefault("review.mode", def.Review.Mode)
	v.SetDefault("review.strictCompliance", def.Review.StrictCompliance)
	v.SetDefault("storage.enabled", def.Storage.Enabled)
	v.SetDefault("storage.path", def.Storage.Path)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".arc"))
	v.SetEnvPrefix("ARC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.RepoRoot == "" {
		cfg.RepoRoot = repoRoot
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to .arc/config.json under repoRoot.
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".arc")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Version != currentConfigVersion {
		return &Error{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if c.Review.MinRounds < 1 {
		return &Error{Field: "review.minRounds", Message: "must be at least 1"}
	}
	if c.Review.MaxRounds < c.Review.MinRounds {
		return &Error{Field: "review.maxRounds", Message: "must be >= review.minRounds"}
	}
	if c.Review.ConvergenceWindow < 1 {
		return &Error{Field: "review.convergenceWindow", Message: "must be at least 1"}
	}
	if c.Review.CheckpointInterval < 1 {
		return &Error{Field: "review.checkpointInterval", Message: "must be at least 1"}
	}
	switch c.Review.Mode {
	case "alternate", "single", "fast-track":
	default:
		return &Error{Field: "review.mode", Message: fmt.Sprintf("unknown mode %q", c.Review.Mode)}
	}
	if c.Mediator.LoopWindow < c.Mediator.LoopThreshold {
		return &Error{Field: "mediator.loopWindow", Message: "must be >= mediator.loopThreshold"}
	}
	return nil
}

// Error represents a configuration validation error
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}
