package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	files := []string{"server.js", "logs/app.log", "node_modules/x/index.js", "debug.log", "src/a.ts"}
	kept, excluded := Apply(files, []string{"*.log", "node_modules/*"})

	assert.Equal(t, []string{"server.js", "node_modules/x/index.js", "src/a.ts"}, kept)
	assert.Equal(t, []string{"logs/app.log", "debug.log"}, excluded)
}

func TestExcludedDoubleStar(t *testing.T) {
	assert.True(t, Excluded("node_modules/x/index.js", []string{"node_modules/**"}))
	assert.True(t, Excluded("./src/gen/api.ts", []string{"src/gen/*.ts"}))
	assert.False(t, Excluded("src/a.ts", []string{"[", ""}))
	assert.False(t, Excluded("src/a.ts", nil))
}

func TestEligible(t *testing.T) {
	tests := map[string]bool{
		"src/app.tsx":          true,
		"server.js":            true,
		"lib/util.ts":          true,
		"README.md":            false,
		"package.json":         false,
		"dist/bundle.js":       false,
		"node_modules/a/b.js":  false,
		"vendor/jquery.min.js": false,
		"main.go":              false,
		"":                     false,
	}
	for path, want := range tests {
		assert.Equal(t, want, Eligible(path), path)
	}
}
