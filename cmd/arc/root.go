package main

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"arc/internal/config"
	"arc/internal/depgraph"
	"arc/internal/extract"
	"arc/internal/logging"
	"arc/internal/version"
)

var (
	// repoFlag is the CLI --repo flag value
	repoFlag string
)

var rootCmd = &cobra.Command{
	Use:   "arc",
	Short: "ARC - Adversarial Review Coordinator",
	Long: `ARC coordinates multi-round adversarial code review sessions and maintains
the static dependency graph that grounds them: per-file facts, cycle detection,
affected-file queries and per-issue impact analysis.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("ARC version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", ".", "Repository root")
}

// loadSetup resolves the repo root and loads configuration and logger for
// one command invocation
func loadSetup() (*config.Config, *logging.Logger, error) {
	root, err := filepath.Abs(repoFlag)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(cfg.Logging.Level),
	})
	return cfg, logger, nil
}

// newBuilder assembles the graph builder: default registry, repo overrides,
// tree-sitter enrichment when compiled in
func newBuilder(cfg *config.Config, logger *logging.Logger) (*depgraph.Builder, error) {
	registry := extract.DefaultRegistry()

	overrides, err := extract.LoadOverrides(filepath.Join(cfg.RepoRoot, cfg.Extraction.OverridesFile))
	if err != nil {
		return nil, err
	}
	if err := overrides.Apply(registry); err != nil {
		return nil, err
	}

	opts := []depgraph.BuilderOption{
		depgraph.WithMaxFileSize(cfg.Extraction.MaxFileSizeBytes),
		depgraph.WithEnricher(extract.NewTreeSitterEnricher()),
	}
	if cfg.Graph.Workers > 0 {
		opts = append(opts, depgraph.WithWorkers(cfg.Graph.Workers))
	}
	return depgraph.NewBuilder(registry, logger, opts...), nil
}

var skippedDirs = map[string]bool{
	".git":         true,
	".arc":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"vendor":       true,
	"target":       true,
}

// scanFiles walks the repo for source files the registry can extract.
// Returned paths are repo-relative.
func scanFiles(root string, registry *extract.Registry) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] || (d.Name() != "." && strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, ok := registry.ForPath(rel); ok {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// resolveFiles returns the explicit args when present, otherwise walks the repo
func resolveFiles(args []string, cfg *config.Config) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	return scanFiles(cfg.RepoRoot, extract.DefaultRegistry())
}
