package crosswalk

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveInputs expands glob patterns to concrete files.
// Supports both single-level wildcards (*) and recursive wildcards (**).
//
// Examples:
//   - "codemeta.json" → ["/abs/codemeta.json"]
//   - "pkgs/*/codemeta.json" → one file per package directory
//   - "site/**/*.html" → every HTML page below site/
//
// Returns absolute file paths, without duplicates, in pattern order. A pattern
// without glob characters must name an existing file; a glob pattern may
// match nothing, but all patterns together must match at least one file.
func ResolveInputs(patterns []string) ([]string, error) {
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

	if len(resolved) == 0 {
		return nil, fmt.Errorf("resolve %v: %w", patterns, ErrNoInputs)
	}
	return resolved, nil
}

// resolvePattern expands a single glob pattern to files.
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

	base, glob, err := splitPattern(pattern)
	if err != nil {
		return nil, err
	}

	// Use doublestar for ** support
	matches, err := doublestar.Glob(os.DirFS(base), glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}
	for i, m := range matches {
		matches[i] = filepath.Join(base, filepath.FromSlash(m))
	}
	slices.Sort(matches)
	return matches, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// splitPattern makes pattern absolute and splits it into the longest leading
// directory that names a literal path and the glob below it. A component with
// glob characters stays literal when a directory of that exact name exists.
func splitPattern(pattern string) (base, glob string, err error) {
	abs, err := filepath.Abs(pattern)
	if err != nil {
		return "", "", err
	}

	vol := filepath.VolumeName(abs)
	parts := strings.Split(strings.TrimPrefix(filepath.ToSlash(abs[len(vol):]), "/"), "/")
	base = vol + string(filepath.Separator)

	i := 0
	for ; i < len(parts)-1; i++ {
		next := filepath.Join(base, parts[i])
		if containsGlob(parts[i]) {
			info, err := os.Stat(next)
			if err != nil || !info.IsDir() {
				break
			}
		}
		base = next
	}
	return base, strings.Join(parts[i:], "/"), nil
}

// MatchesAny reports whether path matches one of the patterns. Relative
// patterns are matched against path relative to dir and never match outside it.
func MatchesAny(patterns []string, dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	inside := err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
	for _, pattern := range patterns {
		target := rel
		if filepath.IsAbs(pattern) {
			target = path
		} else if !inside {
			continue
		}
		if ok, _ := doublestar.PathMatch(filepath.Clean(filepath.FromSlash(pattern)), target); ok {
			return true
		}
	}
	return false
}
