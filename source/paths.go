package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveFiles expands glob patterns to statement files. Plain paths must
// exist; patterns support ** and must match at least one file. Results are
// absolute and deduplicated, in pattern order.
func ResolveFiles(patterns []string) ([]string, error) {
	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		paths, err := resolvePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}
	return resolved, nil
}

func resolvePattern(pattern string) ([]string, error) {
	if !containsGlob(pattern) {
		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("path is a directory: %s", absPath)
		}
		return []string{absPath}, nil
	}

	absPattern, err := makeAbsolutePattern(pattern)
	if err != nil {
		return nil, err
	}
	matches, err := doublestar.FilepathGlob(absPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	return matches, nil
}

func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// makeAbsolutePattern anchors the static prefix of a pattern at an absolute
// directory, leaving the glob part untouched.
func makeAbsolutePattern(pattern string) (string, error) {
	base, glob := doublestar.SplitPattern(filepath.ToSlash(pattern))
	absBase, err := filepath.Abs(filepath.FromSlash(base))
	if err != nil {
		return "", err
	}
	return filepath.Join(absBase, filepath.FromSlash(glob)), nil
}

// watchRoot returns the absolute directory a pattern is anchored at.
func watchRoot(pattern string) (string, error) {
	if !containsGlob(pattern) {
		abs, err := filepath.Abs(pattern)
		if err != nil {
			return "", err
		}
		return filepath.Dir(abs), nil
	}
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
	return filepath.Abs(filepath.FromSlash(base))
}
