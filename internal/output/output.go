// Package output handles the user-facing console lines of the review client.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lawndlwd/review-client/internal/types"
)

// Printer writes status lines to w.
type Printer struct {
	w io.Writer
}

func New(w io.Writer) *Printer {
	if w == nil {
		w = io.Discard
	}
	return &Printer{w: w}
}

func (p *Printer) ExportSucceeded(filesProcessed int) {
	fmt.Fprintf(p.w, "✅ Review exported: %d files processed\n", filesProcessed)
}

// ExportFailed prints a generic failure reason; never pass error text here.
func (p *Printer) ExportFailed(reason string) {
	fmt.Fprintf(p.w, "❌ Export failed: %s\n", reason)
}

func (p *Printer) IndividualExported(filesCreated int, directory string) {
	if directory == "" {
		fmt.Fprintf(p.w, "✅ Individual reviews exported: %d files\n", filesCreated)
		return
	}
	fmt.Fprintf(p.w, "✅ Individual reviews exported: %d files in %s\n", filesCreated, directory)
}

func (p *Printer) ServerStatus(status string) {
	if status == "" {
		status = "unknown"
	}
	fmt.Fprintf(p.w, "Server status: %s\n", status)
}

func (p *Printer) StagedFiles(count int) {
	fmt.Fprintf(p.w, "Found %d staged files\n", count)
}

// ExclusionPreview reports how the exclusion patterns split the staged files.
// The service applies the patterns itself; nothing is removed locally.
func (p *Printer) ExclusionPreview(kept, excluded int) {
	fmt.Fprintf(p.w, "⏭️  Preview: the service will exclude %d file(s), %d left for review\n", excluded, kept)
}

func (p *Printer) ExportCompleted(ok bool) {
	if ok {
		fmt.Fprintln(p.w, "🎉 AI review export completed successfully!")
		return
	}
	fmt.Fprintln(p.w, "❌ AI review export failed")
}

func (p *Printer) Summary(s types.Summary) {
	if s.Stats == "" {
		fmt.Fprintln(p.w, "📊 No staged changes found")
		return
	}
	fmt.Fprintln(p.w, "📊 Change Summary")
	fmt.Fprintln(p.w, strings.Repeat("─", 80))
	fmt.Fprintln(p.w, s.Stats)
}

// CodeContexts prints changed lines grouped by file, each with its
// enclosing scope and surrounding source.
func (p *Printer) CodeContexts(contexts []*types.CodeContext) {
	if len(contexts) == 0 {
		fmt.Fprintln(p.w, "\n✅ No JavaScript/TypeScript changes to show.")
		return
	}

	sorted := make([]*types.CodeContext, 0, len(contexts))
	for _, c := range contexts {
		if c != nil {
			sorted = append(sorted, c)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	fmt.Fprintln(p.w, "\n"+strings.Repeat("═", 80))
	fmt.Fprintln(p.w, "🔍 CHANGED CODE CONTEXT")
	fmt.Fprintln(p.w, strings.Repeat("═", 80))

	total := 0
	for _, c := range sorted {
		if c.Language != "" {
			fmt.Fprintf(p.w, "\n📄 %s [%s]\n", c.File, c.Language)
		} else {
			fmt.Fprintf(p.w, "\n📄 %s\n", c.File)
		}
		fmt.Fprintln(p.w, strings.Repeat("─", 80))

		lines := append([]int(nil), c.ChangedLines...)
		sort.Ints(lines)
		for _, line := range lines {
			total++
			scope := c.Scopes[line]
			if scope == "" {
				scope = "top level"
			}
			fmt.Fprintf(p.w, "  Line %d (%s)\n", line, scope)
			if s := c.Surrounding[line]; s != "" {
				for _, src := range strings.Split(s, "\n") {
					fmt.Fprintf(p.w, "    %s\n", src)
				}
			}
			fmt.Fprintln(p.w)
		}
	}

	fmt.Fprintln(p.w, strings.Repeat("═", 80))
	fmt.Fprintf(p.w, "%d changed line(s) across %d file(s)\n", total, len(sorted))
	fmt.Fprintln(p.w, strings.Repeat("═", 80))
}
