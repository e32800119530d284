// Package git reads staged content from a local repository.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// StagedContent returns the index version of path, falling back to the
// working tree when git cannot provide it.
func StagedContent(repoPath, path string) (string, error) {
	repo := filepath.Clean(repoPath)
	out, err := exec.Command("git", "-C", repo, "show", ":"+filepath.ToSlash(path)).Output()
	if err == nil {
		return string(out), nil
	}

	content, readErr := os.ReadFile(filepath.Join(repo, filepath.FromSlash(path)))
	if readErr != nil {
		return "", fmt.Errorf("read %s: %w", path, readErr)
	}
	return string(content), nil
}

// IsRepo reports whether repoPath is inside a git work tree.
func IsRepo(repoPath string) bool {
	out, err := exec.Command("git", "-C", filepath.Clean(repoPath), "rev-parse", "--is-inside-work-tree").Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}
