package diff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawndlwd/review-client/internal/types"
)

const sample = `diff --git a/src/app.js b/src/app.js
index 1111111..2222222 100644
--- a/src/app.js
+++ b/src/app.js
@@ -1,4 +1,5 @@
 const a = 1;
-const b = 2;
+const b = 3;
+const c = 4;
 function run() {
   return a;
@@ -20 +21,2 @@ function tail() {
+  log();
 }
`

func TestParseChangedLines(t *testing.T) {
	assert.Equal(t, []int{2, 3, 21}, ParseChangedLines(sample))
}

func TestParseChangedLinesIgnoresHeaders(t *testing.T) {
	assert.Empty(t, ParseChangedLines("--- a/x\n+++ b/x\n"))
	assert.Empty(t, ParseChangedLines(""))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "tsx", Language("a.tsx"))
	assert.Equal(t, "typescript", Language("a.ts"))
	assert.Equal(t, "jsx", Language("a.jsx"))
	assert.Equal(t, "javascript", Language("a.js"))
	assert.Equal(t, "", Language("a.py"))
}

func TestContextWithoutParser(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "app.js"), []byte("const a = 1;\nconst b = 3;\nconst c = 4;\n"), 0o644))

	ctx, err := Context(dir, types.FileDiff{File: "src/app.js", Diff: sample}, nil)
	require.NoError(t, err)
	assert.Equal(t, "src/app.js", ctx.File)
	assert.Equal(t, "javascript", ctx.Language)
	assert.Equal(t, []int{2, 3, 21}, ctx.ChangedLines)
	assert.Contains(t, ctx.Surrounding[2], ">>>    2: const b = 3;")
	assert.Contains(t, ctx.Surrounding[3], "   1: const a = 1;")
	assert.Empty(t, ctx.Surrounding[21])
	assert.Empty(t, ctx.Scopes)
}

func TestContextMissingFile(t *testing.T) {
	_, err := Context(t.TempDir(), types.FileDiff{File: "missing.js"}, nil)
	assert.Error(t, err)
}
