// Package score implements the six category scorers. Every scorer starts at
// the category maximum and subtracts penalties for what it observes.
package score

import (
	"fmt"
	"strings"

	"github.com/dshills/codecritic/internal/lexical"
	"github.com/dshills/codecritic/internal/outline"
	"github.com/dshills/codecritic/internal/profile"
)

// CategoryScore is the points awarded in one category.
type CategoryScore struct {
	Category Category `json:"category"`
	Points   int      `json:"points"`
	Max      int      `json:"max"`
}

// Lost returns the points deducted.
func (c CategoryScore) Lost() int { return c.Max - c.Points }

// Finding is one observation that cost points, phrased as a recommendation.
type Finding struct {
	Category Category `json:"category"`
	// Line is the first line involved, 0 for file-wide findings.
	Line    int    `json:"line,omitempty"`
	Lines   []int  `json:"lines,omitempty"`
	Subject string `json:"subject,omitempty"`
	Points  int    `json:"points"`
	Message string `json:"message"`
}

// Input is everything a scorer may look at.
type Input struct {
	Text       string
	Metrics    *lexical.Metrics
	Outline    *outline.Outline
	Profile    *profile.Profile
	Thresholds Thresholds
}

// Assessment is a scorer's output.
type Assessment struct {
	Score    CategoryScore
	Findings []Finding
}

// Scorer computes one category.
type Scorer func(Input) Assessment

var scorers = map[Category]Scorer{
	CategoryNaming:        Naming,
	CategoryModularity:    Modularity,
	CategoryComments:      Comments,
	CategoryFormatting:    Formatting,
	CategoryReusability:   Reusability,
	CategoryBestPractices: BestPractices,
}

// Run executes every scorer in category order. Blank input earns full marks
// everywhere.
func Run(in Input) []Assessment {
	out := make([]Assessment, 0, len(Categories))
	blank := strings.TrimSpace(in.Text) == ""
	for _, c := range Categories {
		if blank {
			out = append(out, Assessment{Score: CategoryScore{Category: c, Points: c.Max(), Max: c.Max()}})
			continue
		}
		out = append(out, scorers[c](in))
	}
	return out
}

// Total sums the points of the assessments.
func Total(as []Assessment) int {
	total := 0
	for _, a := range as {
		total += a.Score.Points
	}
	return total
}

// tally accumulates deductions for one category.
type tally struct {
	cat      Category
	lost     int
	findings []Finding
}

func newTally(c Category) *tally {
	return &tally{cat: c}
}

// add records a finding and deducts its points.
func (t *tally) add(f Finding) {
	f.Category = t.cat
	if f.Line == 0 && len(f.Lines) > 0 {
		f.Line = f.Lines[0]
	}
	t.lost += f.Points
	t.findings = append(t.findings, f)
}

// group records one finding for a set of offending lines, each worth each
// points up to limit in total. Nothing is recorded for an empty set.
func (t *tally) group(lines []int, each, limit int, subject, message string) {
	if len(lines) == 0 {
		return
	}
	t.add(Finding{
		Lines:   lines,
		Subject: subject,
		Points:  capped(len(lines), each, limit),
		Message: message,
	})
}

// assessment floors the score at zero.
func (t *tally) assessment() Assessment {
	top := t.cat.Max()
	points := top - t.lost
	if points < 0 {
		points = 0
	}
	return Assessment{
		Score:    CategoryScore{Category: t.cat, Points: points, Max: top},
		Findings: t.findings,
	}
}

func capped(n, each, limit int) int {
	p := n * each
	if p > limit {
		p = limit
	}
	return p
}

// maxListedLines bounds how many line numbers a message spells out.
const maxListedLines = 5

// describeLines renders "line 4", "lines 4 and 9" or "lines 4, 9, 12 and 3 more".
func describeLines(lines []int) string {
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("line %d", lines[0])
	}
	shown := lines
	extra := 0
	if len(shown) > maxListedLines {
		extra = len(shown) - maxListedLines
		shown = shown[:maxListedLines]
	}
	parts := make([]string, len(shown))
	for i, n := range shown {
		parts[i] = fmt.Sprint(n)
	}
	if extra > 0 {
		return fmt.Sprintf("lines %s and %d more", strings.Join(parts, ", "), extra)
	}
	return fmt.Sprintf("lines %s and %s", strings.Join(parts[:len(parts)-1], ", "), parts[len(parts)-1])
}

// codeLines calls fn for every code line with its stripped text.
func codeLines(in Input, fn func(lf lexical.LineFacts, code string)) {
	for i, lf := range in.Metrics.Lines {
		if lf.Code() {
			fn(lf, in.Outline.Code[i])
		}
	}
}

// matchingLines returns the code lines on which p matches.
func matchingLines(in Input, p profile.Patterns) []int {
	var lines []int
	codeLines(in, func(lf lexical.LineFacts, code string) {
		if p.Match(code) {
			lines = append(lines, lf.Number)
		}
	})
	return lines
}
