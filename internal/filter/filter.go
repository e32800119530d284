// Package filter decides which staged files take part in a review.
package filter

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// Apply splits files into those kept and those matched by an exclusion
// pattern. Order is preserved in both slices.
func Apply(files []string, patterns []string) (kept, excluded []string) {
	for _, f := range files {
		if Excluded(f, patterns) {
			excluded = append(excluded, f)
			continue
		}
		kept = append(kept, f)
	}
	return kept, excluded
}

// Excluded reports whether file matches any glob pattern. Patterns without a
// slash also match against the base name, so "*.log" excludes "logs/app.log".
// Malformed patterns never match.
func Excluded(file string, patterns []string) bool {
	file = strings.TrimPrefix(file, "./")
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(strings.TrimSpace(pattern), "./")
		if pattern == "" {
			continue
		}
		if ok, err := doublestar.Match(pattern, file); err == nil && ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, err := doublestar.Match(pattern, path.Base(file)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// Eligible reports whether path is JavaScript or TypeScript source that the
// context parser understands.
func Eligible(path string) bool {
	if path == "" {
		return false
	}
	if hasAnySuffix(path, ".md", ".json", ".min.js") {
		return false
	}
	if containsAny(path, "node_modules/", "dist/", ".gitlab/") {
		return false
	}
	return hasAnySuffix(path, ".ts", ".tsx", ".js", ".jsx")
}

func hasAnySuffix(path string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

func containsAny(path string, needles ...string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(path, needle) {
			return true
		}
	}
	return false
}
