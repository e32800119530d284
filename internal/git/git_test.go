package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagedContentFallsBackToWorkingTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("let x = 1;\n"), 0o644))

	content, err := StagedContent(dir, "a.js")
	require.NoError(t, err)
	assert.Equal(t, "let x = 1;\n", content)
}

func TestStagedContentMissing(t *testing.T) {
	_, err := StagedContent(t.TempDir(), "nope.js")
	assert.Error(t, err)
}

func TestIsRepoFalseForPlainDir(t *testing.T) {
	assert.False(t, IsRepo(t.TempDir()))
}
