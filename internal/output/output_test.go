package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lawndlwd/review-client/internal/types"
)

func TestExportLines(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.ExportSucceeded(2)
	p.ExportFailed("Network error")

	assert.Equal(t, "✅ Review exported: 2 files processed\n❌ Export failed: Network error\n", buf.String())
}

func TestServerStatusDefaultsToUnknown(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).ServerStatus("")
	assert.Equal(t, "Server status: unknown\n", buf.String())
}

func TestCodeContextsSortedByFileAndLine(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).CodeContexts([]*types.CodeContext{
		{
			File:         "src/b.js",
			Language:     "javascript",
			ChangedLines: []int{9, 3},
			Surrounding:  map[int]string{3: ">>>    3: x()"},
			Scopes:       map[int]string{3: "function run"},
		},
		{File: "src/a.js", ChangedLines: []int{1}},
	})

	out := buf.String()
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("src/a.js")), bytes.Index(buf.Bytes(), []byte("src/b.js")))
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Line 3")), bytes.Index(buf.Bytes(), []byte("Line 9")))
	assert.Contains(t, out, "📄 src/b.js [javascript]")
	assert.Contains(t, out, "📄 src/a.js\n")
	assert.Contains(t, out, "Line 3 (function run)")
	assert.Contains(t, out, "Line 9 (top level)")
	assert.Contains(t, out, "3 changed line(s) across 2 file(s)")
}

func TestExclusionPreview(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).ExclusionPreview(3, 2)
	assert.Equal(t, "⏭️  Preview: the service will exclude 2 file(s), 3 left for review\n", buf.String())
}

func TestCodeContextsEmpty(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).CodeContexts(nil)
	assert.Contains(t, buf.String(), "No JavaScript/TypeScript changes")
}
