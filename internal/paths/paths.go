// Package paths normalizes file paths into the canonical repo-relative,
// forward-slash form used as graph node keys.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Canonicalize converts a path to a repo-relative canonical path:
// symlinks resolved, relative to repoRoot, forward slashes only.
// Paths that do not exist yet are canonicalized as-is.
func Canonicalize(p string, repoRoot string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(repoRoot, p)
	}

	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		if os.IsNotExist(err) {
			resolved = p
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = repoRoot
		} else {
			return "", err
		}
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// IsWithinRepo reports whether p canonicalizes to a path inside repoRoot.
func IsWithinRepo(p string, repoRoot string) bool {
	canonical, err := Canonicalize(p, repoRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// Normalize converts backslashes to forward slashes without making the path
// repo-relative. Useful for already-relative paths from round output.
func Normalize(p string) string {
	return filepath.ToSlash(p)
}

// JoinRepo joins a repo root with a canonical path using OS separators.
func JoinRepo(repoRoot string, canonical string) string {
	parts := strings.Split(Normalize(canonical), "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}
