// Package diff extracts changed lines from unified diffs and pairs them with
// source context.
package diff

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lawndlwd/review-client/internal/git"
	"github.com/lawndlwd/review-client/internal/parser"
	"github.com/lawndlwd/review-client/internal/types"
)

// @@ -start[,count] +start[,count] @@
var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// ParseChangedLines returns the new-file line numbers of added lines.
func ParseChangedLines(diff string) []int {
	var changedLines []int
	currentLine := 0
	inHunk := false

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "@@") {
			matches := hunkHeader.FindStringSubmatch(line)
			inHunk = false
			if len(matches) > 1 {
				if start, err := strconv.Atoi(matches[1]); err == nil {
					currentLine = start
					inHunk = true
				}
			}
			continue
		}
		if !inHunk {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			changedLines = append(changedLines, currentLine)
			currentLine++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			// deletions do not advance the new-file counter
		case strings.HasPrefix(line, " "):
			currentLine++
		}
	}

	return changedLines
}

// Language names the source language of path, or "" when unknown.
func Language(path string) string {
	switch {
	case strings.HasSuffix(path, ".tsx"):
		return "tsx"
	case strings.HasSuffix(path, ".ts"):
		return "typescript"
	case strings.HasSuffix(path, ".jsx"):
		return "jsx"
	case strings.HasSuffix(path, ".js"):
		return "javascript"
	default:
		return ""
	}
}

// Context reads the staged content of fd.File under repoPath and analyzes
// the lines changed by fd.Diff.
func Context(repoPath string, fd types.FileDiff, p *parser.Parser) (*types.CodeContext, error) {
	changedLines := ParseChangedLines(fd.Diff)

	content, err := git.StagedContent(repoPath, fd.File)
	if err != nil {
		return nil, err
	}

	var cc *types.CodeContext
	if p != nil {
		cc = p.AnalyzeCodeContext(content, changedLines, fd.File)
	} else {
		cc = &types.CodeContext{
			File:         fd.File,
			ChangedLines: changedLines,
			Surrounding:  make(map[int]string, len(changedLines)),
			Scopes:       make(map[int]string),
		}
		for _, line := range changedLines {
			cc.Surrounding[line] = parser.SurroundingLines(content, line, parser.ContextLines)
		}
	}
	cc.Language = Language(fd.File)
	return cc, nil
}
