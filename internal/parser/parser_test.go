package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `const a = 1;
function greet(name) {
  return "hi " + name;
}
class Box {
  open() {
    return true;
  }
}
const add = (x, y) => {
  return x + y;
};
`

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p := NewParser()
	require.NoError(t, p.Init())
	t.Cleanup(p.Close)
	return p
}

func TestAnalyzeCodeContextScopes(t *testing.T) {
	p := newTestParser(t)
	ctx := p.AnalyzeCodeContext(source, []int{1, 3, 7, 11}, "src/app.js")

	assert.Equal(t, "src/app.js", ctx.File)
	assert.Equal(t, "function greet", ctx.Scopes[3])
	assert.Equal(t, "method Box.open", ctx.Scopes[7])
	assert.Equal(t, "function add", ctx.Scopes[11])
	_, ok := ctx.Scopes[1]
	assert.False(t, ok)
}

func TestAnalyzeCodeContextSurrounding(t *testing.T) {
	p := newTestParser(t)
	ctx := p.AnalyzeCodeContext(source, []int{3}, "src/app.js")

	assert.Contains(t, ctx.Surrounding[3], `>>>    3:   return "hi " + name;`)
	assert.Contains(t, ctx.Surrounding[3], "       1: const a = 1;")
}

func TestAnalyzeCodeContextUnsupportedFile(t *testing.T) {
	p := newTestParser(t)
	ctx := p.AnalyzeCodeContext("def f():\n    pass\n", []int{2}, "a.py")

	assert.Empty(t, ctx.Scopes)
	assert.NotEmpty(t, ctx.Surrounding[2])
}

func TestLineSpan(t *testing.T) {
	src := []byte("a\n  bc  \n\n")
	offsets := lineOffsets(src)

	start, end, ok := lineSpan(src, offsets, 2)
	require.True(t, ok)
	assert.Equal(t, "bc", string(src[start:end]))

	_, _, ok = lineSpan(src, offsets, 3)
	assert.False(t, ok)
	_, _, ok = lineSpan(src, offsets, 10)
	assert.False(t, ok)
}

func TestGetSurroundingLinesOutOfRange(t *testing.T) {
	assert.Equal(t, "", SurroundingLines("a\nb", 50, 5))
}
