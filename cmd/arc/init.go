package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"arc/internal/config"
	arcerrors "arc/internal/errors"
	"arc/internal/extract"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ARC configuration",
	Long:  "Creates a .arc/ directory with default configuration and a sample EXTRACTORS.toml in the repository root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .arc directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(repoFlag)
	if err != nil {
		return arcerrors.Wrap(arcerrors.InternalError, "cannot resolve repo root", err)
	}

	arcDir := filepath.Join(root, ".arc")
	if _, statErr := os.Stat(arcDir); statErr == nil {
		if !initForce {
			// already initialized is success (CI-friendly)
			fmt.Println("ARC already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(arcDir, "config.json"))
			fmt.Println("\nRun 'arc init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(arcDir); removeErr != nil {
			return arcerrors.Wrap(arcerrors.InternalError, "cannot remove existing .arc directory", removeErr)
		}
	}

	cfg := config.Default()
	cfg.RepoRoot = "."
	if err := cfg.Save(root); err != nil {
		return arcerrors.Wrap(arcerrors.InternalError, "cannot write config file", err)
	}

	if err := writeSampleOverrides(root); err != nil {
		return err
	}

	fmt.Println("ARC initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", filepath.Join(arcDir, "config.json"))
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'arc graph importance' to rank files by centrality")
	fmt.Println("  2. Write a review spec and run 'arc review start --spec review.yaml'")
	return nil
}

// writeSampleOverrides drops a commented EXTRACTORS.toml at the repo root
// unless one already exists
func writeSampleOverrides(root string) error {
	path := filepath.Join(root, extract.OverridesFile)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	sample := extract.Overrides{
		Languages: map[string]extract.LanguageOverride{
			"typescript": {
				Extensions:     []string{".mts"},
				ImportPatterns: []string{`loadModule\(["']([^"']+)["']\)`},
			},
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return arcerrors.Wrap(arcerrors.InternalError, "cannot create overrides file", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, "# Extractor overrides. Group 1 of an import pattern must capture the specifier."); err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(sample); err != nil {
		return arcerrors.Wrap(arcerrors.InternalError, "cannot encode overrides file", err)
	}
	return nil
}
