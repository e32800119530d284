// Package parser provides Tree-sitter based code parsing and context extraction.
package parser

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/lawndlwd/review-client/internal/types"
)

// ContextLines is how many lines are shown either side of a changed line.
const ContextLines = 5

// Parser wraps Tree-sitter parsers for the supported file types.
type Parser struct {
	jsParser  *tree_sitter.Parser
	tsParser  *tree_sitter.Parser
	tsxParser *tree_sitter.Parser
}

// NewParser creates a new Parser instance. Call Init before use.
func NewParser() *Parser {
	return &Parser{
		jsParser:  tree_sitter.NewParser(),
		tsParser:  tree_sitter.NewParser(),
		tsxParser: tree_sitter.NewParser(),
	}
}

// Init loads the grammars. TypeScript files use the JavaScript grammar,
// which recovers well enough to locate enclosing functions.
func (p *Parser) Init() error {
	lang := tree_sitter.NewLanguage(tree_sitter_javascript.Language())

	for _, tp := range []*tree_sitter.Parser{p.jsParser, p.tsParser, p.tsxParser} {
		if err := tp.SetLanguage(lang); err != nil {
			return fmt.Errorf("set javascript grammar: %w", err)
		}
	}
	return nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	if p.jsParser != nil {
		p.jsParser.Close()
	}
	if p.tsParser != nil {
		p.tsParser.Close()
	}
	if p.tsxParser != nil {
		p.tsxParser.Close()
	}
}

func (p *Parser) getParserForFile(filename string) *tree_sitter.Parser {
	switch {
	case strings.HasSuffix(filename, ".tsx"):
		return p.tsxParser
	case strings.HasSuffix(filename, ".ts"):
		return p.tsParser
	case strings.HasSuffix(filename, ".jsx"), strings.HasSuffix(filename, ".js"):
		return p.jsParser
	default:
		return nil
	}
}

// AnalyzeCodeContext returns the surrounding source of every changed line
// and, for JS/TS files, the name of the function or class enclosing it.
func (p *Parser) AnalyzeCodeContext(fileContent string, changedLines []int, filename string) *types.CodeContext {
	ctx := &types.CodeContext{
		File:         filename,
		ChangedLines: changedLines,
		Surrounding:  make(map[int]string),
		Scopes:       make(map[int]string),
	}

	for _, lineNum := range changedLines {
		ctx.Surrounding[lineNum] = SurroundingLines(fileContent, lineNum, ContextLines)
	}

	tp := p.getParserForFile(filename)
	if tp == nil {
		return ctx
	}

	source := []byte(fileContent)
	tree := tp.Parse(source, nil)
	if tree == nil {
		return ctx
	}
	defer tree.Close()

	root := tree.RootNode()
	offsets := lineOffsets(source)
	for _, lineNum := range changedLines {
		start, end, ok := lineSpan(source, offsets, lineNum)
		if !ok {
			continue
		}
		node := root.NamedDescendantForByteRange(start, end)
		if scope := enclosingScope(node, source); scope != "" {
			ctx.Scopes[lineNum] = scope
		}
	}

	return ctx
}

// enclosingScope walks up from node to the nearest function-like ancestor
// and names it, prefixing the class name for methods.
func enclosingScope(node *tree_sitter.Node, source []byte) string {
	var fn string
	for n := node; n != nil; n = n.Parent() {
		switch n.Kind() {
		case "function_declaration", "generator_function_declaration":
			if fn == "" {
				fn = "function " + fieldText(n, "name", source)
			}
		case "method_definition":
			if fn == "" {
				fn = "method " + fieldText(n, "name", source)
			}
		case "arrow_function", "function_expression", "function":
			if fn == "" {
				fn = "function " + assignedName(n, source)
			}
		case "class_declaration", "class":
			class := fieldText(n, "name", source)
			if fn == "" {
				return "class " + class
			}
			if strings.HasPrefix(fn, "method ") && class != "anonymous" {
				return "method " + class + "." + strings.TrimPrefix(fn, "method ")
			}
			return fn
		}
	}
	return fn
}

func fieldText(n *tree_sitter.Node, field string, source []byte) string {
	if c := n.ChildByFieldName(field); c != nil {
		return c.Utf8Text(source)
	}
	return "anonymous"
}

// assignedName names an anonymous function by what it is bound to.
func assignedName(n *tree_sitter.Node, source []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Utf8Text(source)
	}
	parent := n.Parent()
	if parent == nil {
		return "anonymous"
	}
	switch parent.Kind() {
	case "variable_declarator":
		return fieldText(parent, "name", source)
	case "pair":
		return fieldText(parent, "key", source)
	case "assignment_expression":
		return fieldText(parent, "left", source)
	}
	return "anonymous"
}

func lineOffsets(source []byte) []uint {
	offsets := []uint{0}
	for i, b := range source {
		if b == '\n' {
			offsets = append(offsets, uint(i+1))
		}
	}
	return offsets
}

// lineSpan returns the byte range of the non-blank text on the 1-based line.
func lineSpan(source []byte, offsets []uint, lineNum int) (uint, uint, bool) {
	if lineNum < 1 || lineNum > len(offsets) {
		return 0, 0, false
	}
	start := offsets[lineNum-1]
	end := uint(len(source))
	if lineNum < len(offsets) {
		end = offsets[lineNum] - 1
	}
	for start < end && isSpace(source[start]) {
		start++
	}
	for end > start && isSpace(source[end-1]) {
		end--
	}
	if start == end {
		return 0, 0, false
	}
	return start, end, true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}

// SurroundingLines returns up to contextLines lines either side of lineNum,
// numbered, with the changed line marked.
func SurroundingLines(content string, lineNum, contextLines int) string {
	lines := strings.Split(content, "\n")
	start := max(0, lineNum-contextLines-1)
	end := min(len(lines), lineNum+contextLines)

	if start >= len(lines) || end <= 0 {
		return ""
	}

	var result []string
	for i := start; i < end; i++ {
		prefix := "    "
		if i == lineNum-1 {
			prefix = ">>> "
		}
		result = append(result, fmt.Sprintf("%s%4d: %s", prefix, i+1, lines[i]))
	}

	return strings.Join(result, "\n")
}
