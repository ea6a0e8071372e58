// Package render produces JSON, Markdown and terminal output from an
// analysis result.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/codecritic/internal/engine"
	"github.com/dshills/codecritic/internal/score"
	"github.com/dshills/codecritic/internal/secrets"
	"github.com/dshills/codecritic/internal/source"
)

// maxQuotedLines bounds the excerpt shown under each finding.
const maxQuotedLines = 3

// Options control what a report includes.
type Options struct {
	// Redact masks secrets in quoted source lines.
	Redact bool
}

// JSON renders the wire shape of a result, indented, with a trailing newline.
func JSON(r *engine.Result) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render.JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Markdown renders a result as a Markdown report. doc may be nil, in which
// case findings are listed without source excerpts.
func Markdown(r *engine.Result, doc *source.Document, opts Options) string {
	var b strings.Builder

	// Summary
	b.WriteString("# CodeCritic Report\n\n")
	if doc != nil {
		fmt.Fprintf(&b, "**File:** %s\n", doc.FilePath)
	}
	if r.Language != "" {
		fmt.Fprintf(&b, "**Language:** %s\n", r.Language)
	}
	fmt.Fprintf(&b, "**Score:** %d / %d\n\n", r.OverallScore, score.MaxTotal)

	// Breakdown
	b.WriteString("## Breakdown\n\n")
	b.WriteString("| Category | Score | Max |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, c := range score.Categories {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", c.Title(), r.Breakdown.Get(c), c.Max())
	}
	b.WriteString("\n")

	// Recommendations
	b.WriteString("## Recommendations\n\n")
	for i, rec := range r.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	b.WriteString("\n")

	// Findings by category
	if len(r.Findings) == 0 {
		b.WriteString("No findings.\n\n")
		return b.String()
	}
	b.WriteString("## Findings\n\n")
	for _, c := range score.Categories {
		findings := filterFindings(r.Findings, c)
		if len(findings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", c.Title())
		for _, f := range findings {
			renderFinding(&b, f, doc, opts)
		}
	}
	return b.String()
}

// filterFindings returns the findings of one category, strongest first.
func filterFindings(findings []score.Finding, c score.Category) []score.Finding {
	var result []score.Finding
	for _, f := range findings {
		if f.Category == c {
			result = append(result, f)
		}
	}
	score.SortFindings(result)
	return result
}

func renderFinding(b *strings.Builder, f score.Finding, doc *source.Document, opts Options) {
	fmt.Fprintf(b, "- **-%d** %s\n", f.Points, f.Message)
	excerpt := quote(f, doc, opts)
	if excerpt == "" {
		return
	}
	b.WriteString("\n  ```\n")
	for _, line := range strings.SplitAfter(strings.TrimSuffix(excerpt, "\n"), "\n") {
		b.WriteString("  " + line)
	}
	b.WriteString("\n  ```\n\n")
}

// quote returns the numbered source lines a finding points at.
func quote(f score.Finding, doc *source.Document, opts Options) string {
	if doc == nil {
		return ""
	}
	lines := f.Lines
	if len(lines) == 0 && f.Line > 0 {
		lines = []int{f.Line}
	}
	if len(lines) > maxQuotedLines {
		lines = lines[:maxQuotedLines]
	}
	var b strings.Builder
	for _, n := range lines {
		b.WriteString(source.Quote(doc, n, n))
	}
	out := b.String()
	if opts.Redact {
		out = secrets.Redact(out)
	}
	return out
}
