package score

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/codecritic/internal/profile"
)

const (
	densityPoints = 12
	docPoints     = 6
)

// documentable is a function, method or class that should carry
// documentation.
type documentable struct {
	name   string
	label  string
	line   int
	sigEnd int
}

// Comments scores comment density against the target ratio and
// documentation coverage of functions and classes. A file without code lines
// keeps full marks.
func Comments(in Input) Assessment {
	t := newTally(CategoryComments)
	m := in.Metrics
	if m.CodeLines == 0 {
		return t.assessment()
	}

	commentLines := m.CommentLines + m.DocLines
	ratio := in.Thresholds.CommentRatio
	earned := commentLines * densityPoints * 100 / (m.CodeLines * ratio)
	if earned > densityPoints {
		earned = densityPoints
	}
	if lost := densityPoints - earned; lost > 0 {
		msg := fmt.Sprintf("Add comments that explain intent: the file has %d comment lines for %d lines of code, below the %d%% target.",
			commentLines, m.CodeLines, ratio)
		if commentLines == 0 {
			msg = fmt.Sprintf("Add comments that explain intent: the file has no comments for its %d lines of code.", m.CodeLines)
		}
		t.add(Finding{Points: lost, Message: msg})
	}

	items := documentables(in)
	var missing []documentable
	for _, d := range items {
		if !documented(in, d) {
			missing = append(missing, d)
		}
	}
	if len(missing) == 0 {
		return t.assessment()
	}
	penalty := docPoints * len(missing) / len(items)
	docName := in.Profile.Comments.DocName
	for i, d := range missing {
		pts := penalty / len(missing)
		if i < penalty%len(missing) {
			pts++
		}
		t.add(Finding{
			Line:    d.line,
			Subject: d.name,
			Points:  pts,
			Message: fmt.Sprintf("Add a %s to %s `%s` on line %d describing what it does and what it returns.",
				docName, d.label, d.name, d.line),
		})
	}
	return t.assessment()
}

// documentables returns every unit plus class declarations that are not
// already units, ordered by line.
func documentables(in Input) []documentable {
	var out []documentable
	seen := make(map[int]bool)
	for _, u := range in.Outline.Units {
		seen[u.StartLine] = true
		out = append(out, documentable{name: u.Label(), label: unitLabel(u.Kind), line: u.StartLine, sigEnd: u.SignatureEnd})
	}
	for _, d := range in.Outline.Declarations {
		if d.Kind != profile.KindClass || seen[d.Line] {
			continue
		}
		out = append(out, documentable{name: d.Name, label: kindLabel(d.Kind), line: d.Line, sigEnd: signatureEnd(in, d.Line)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].line < out[j].line })
	return out
}

// signatureEnd follows unbalanced parentheses from line to where they close.
func signatureEnd(in Input, line int) int {
	code := in.Outline.Code
	parens := 0
	for n := line; n <= len(code); n++ {
		parens += strings.Count(code[n-1], "(") - strings.Count(code[n-1], ")")
		if parens <= 0 {
			return n
		}
	}
	return line
}

// documented looks for a docstring right after the signature when the
// language has them, otherwise for a doc comment above the declaration.
// Plain comments and blank lines in between are skipped.
func documented(in Input, d documentable) bool {
	m := in.Metrics
	if in.Profile.Comments.Docstrings {
		decl, _ := m.Line(d.line)
		for n := d.sigEnd + 1; n <= len(m.Lines); n++ {
			lf := m.Lines[n-1]
			if lf.Blank || (lf.Comment && !lf.Doc) {
				continue
			}
			return lf.Doc && lf.Indent > decl.Indent
		}
		return false
	}
	for n := d.line - 1; n >= 1; n-- {
		lf := m.Lines[n-1]
		if lf.Doc {
			return true
		}
		if !lf.Blank && !lf.Comment {
			return false
		}
	}
	return false
}
