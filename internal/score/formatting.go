package score

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/codecritic/internal/profile"
)

const (
	longLineCap      = 6
	mixedIndentCap   = 4
	indentStylesCost = 2
	misalignedCap    = 5
	trailingSpaceCap = 2
	spacingCap       = 3
)

// Formatting deducts for long lines, inconsistent indentation, trailing
// whitespace and operators spaced two different ways.
func Formatting(in Input) Assessment {
	t := newTally(CategoryFormatting)
	m := in.Metrics
	maxLen := in.Thresholds.MaxLineLength

	var long, mixed, trailing []int
	for _, lf := range m.Lines {
		if lf.Length > maxLen {
			long = append(long, lf.Number)
		}
		if lf.MixedIndent {
			mixed = append(mixed, lf.Number)
		}
		if lf.TrailingSpace {
			trailing = append(trailing, lf.Number)
		}
	}

	t.group(long, 1, longLineCap, "line length",
		fmt.Sprintf("Wrap lines longer than %d characters (%s).", maxLen, describeLines(long)))
	t.group(mixed, 1, mixedIndentCap, "mixed indentation",
		fmt.Sprintf("Indent with either tabs or spaces, never both on one line (%s).", describeLines(mixed)))
	if m.TabIndentLines > 0 && m.SpaceIndentLines > 0 {
		t.add(Finding{
			Subject: "indentation style",
			Points:  indentStylesCost,
			Message: fmt.Sprintf("Pick one indentation style: %d lines are indented with tabs and %d with spaces.",
				m.TabIndentLines, m.SpaceIndentLines),
		})
	}
	misaligned := misalignedLines(in)
	t.group(misaligned, 1, misalignedCap, "indentation",
		fmt.Sprintf("Indent in consistent steps of %d columns (%s).", m.IndentUnit, describeLines(misaligned)))
	t.group(trailing, 1, trailingSpaceCap, "trailing whitespace",
		fmt.Sprintf("Remove trailing whitespace (%s).", describeLines(trailing)))
	checkOperatorSpacing(in, t)
	return t.assessment()
}

type spacing struct {
	op            string
	tight, spaced *regexp.Regexp
}

// Assignment and minus are left out: keyword arguments, JSX attributes and
// hyphenated names use them without spaces.
var spacings = func() []spacing {
	var out []spacing
	for _, op := range []string{"+", "*", "/", "==", "!=", "===", "!==", "<=", ">=", "&&", "||"} {
		q := regexp.QuoteMeta(op)
		out = append(out, spacing{
			op:     op,
			tight:  regexp.MustCompile(`\w` + q + `\w`),
			spaced: regexp.MustCompile(`\w[ \t]+` + q + `[ \t]+\w`),
		})
	}
	return out
}()

// checkOperatorSpacing deducts a point for each operator written both with
// and without surrounding spaces.
func checkOperatorSpacing(in Input, t *tally) {
	var ops []string
	var lines []int
	seen := make(map[int]bool)
	for _, sp := range spacings {
		var tight []int
		spaced := false
		for i, lf := range in.Metrics.Lines {
			if !lf.Code() {
				continue
			}
			code := in.Outline.Code[i]
			if sp.tight.MatchString(code) {
				tight = append(tight, lf.Number)
			}
			spaced = spaced || sp.spaced.MatchString(code)
		}
		if len(tight) == 0 || !spaced {
			continue
		}
		ops = append(ops, "`"+sp.op+"`")
		for _, n := range tight {
			if !seen[n] {
				seen[n] = true
				lines = append(lines, n)
			}
		}
	}
	if len(ops) == 0 {
		return
	}
	sort.Ints(lines)
	t.add(Finding{
		Lines:   lines,
		Subject: "operator spacing",
		Points:  min(len(ops), spacingCap),
		Message: fmt.Sprintf("Put spaces around %s consistently; unspaced uses are on %s.",
			strings.Join(ops, ", "), describeLines(lines)),
	})
}

// misalignedLines returns code lines whose indentation is not a multiple of
// the dominant unit. Continuation lines inside open brackets, after a
// backslash, or starting a method chain or operator are exempt.
func misalignedLines(in Input) []int {
	unit := in.Metrics.IndentUnit
	if unit <= 0 {
		return nil
	}
	open := "(["
	closing := ")]"
	if in.Profile.Blocks == profile.BlockIndentation {
		open, closing = "([{", ")]}"
	}

	var out []int
	depth := 0
	continued := false
	for i, lf := range in.Metrics.Lines {
		if !lf.Code() {
			continue
		}
		code := in.Outline.Code[i]
		trimmed := strings.TrimSpace(code)
		exempt := depth > 0 || continued || startsContinuation(trimmed)
		if !exempt && lf.Indent%unit != 0 {
			out = append(out, lf.Number)
		}
		for _, c := range code {
			switch {
			case strings.ContainsRune(open, c):
				depth++
			case strings.ContainsRune(closing, c) && depth > 0:
				depth--
			}
		}
		continued = strings.HasSuffix(trimmed, "\\")
	}
	return out
}

func startsContinuation(trimmed string) bool {
	for _, p := range []string{".", "&&", "||", "?", ":", "+", "-", "*", "/", "|", "and ", "or "} {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}
