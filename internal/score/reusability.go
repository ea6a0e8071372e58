package score

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/codecritic/internal/lexical"
	"github.com/dshills/codecritic/internal/profile"
)

const (
	duplicatePenalty = 3
	duplicateCap     = 9
	literalPenalty   = 2
	literalCap       = 6
	// minLiteralLength skips separators and short keys such as "," or "id".
	minLiteralLength = 3
)

var (
	numberRe   = regexp.MustCompile(`(?:^|[^\w.$])(\d+(?:\.\d+)?)\b`)
	constantRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	importRe   = regexp.MustCompile(`^\s*(?:import|from)\b|\brequire\s*\(`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// trivialNumbers are too common to be worth naming.
var trivialNumbers = map[string]bool{"0": true, "1": true, "2": true}

// Reusability deducts for duplicated blocks of code and for literals
// repeated outside constant declarations.
func Reusability(in Input) Assessment {
	t := newTally(CategoryReusability)

	budget := duplicateCap
	for _, d := range duplicateBlocks(in) {
		if budget <= 0 {
			break
		}
		pts := min(duplicatePenalty, budget)
		budget -= pts
		t.add(Finding{
			Line:    d.second,
			Lines:   []int{d.first, d.second},
			Subject: "duplicate block",
			Points:  pts,
			Message: fmt.Sprintf("Extract the %d lines repeated at lines %d and %d into a shared function.",
				d.size, d.first, d.second),
		})
	}

	budget = literalCap
	for _, l := range repeatedLiterals(in) {
		if budget <= 0 {
			break
		}
		pts := min(literalPenalty, budget)
		budget -= pts
		t.add(Finding{
			Lines:   l.lines,
			Subject: l.text,
			Points:  pts,
			Message: fmt.Sprintf("Move the literal %s, repeated %d times (%s), into a named constant.",
				l.text, l.count, describeLines(l.lines)),
		})
	}
	return t.assessment()
}

type duplicate struct {
	first, second int
	size          int
}

// duplicateBlocks finds runs of N consecutive significant code lines, after
// whitespace normalization, that appear again later without overlapping.
func duplicateBlocks(in Input) []duplicate {
	n := in.Thresholds.DuplicateBlock
	type entry struct {
		line int
		text string
	}
	var lines []entry
	codeLines(in, func(lf lexical.LineFacts, code string) {
		norm := strings.TrimSpace(spaceRe.ReplaceAllString(code, " "))
		if significant(norm) {
			lines = append(lines, entry{line: lf.Number, text: norm})
		}
	})
	if len(lines) < 2*n {
		return nil
	}

	firstSeen := make(map[string]int)
	var out []duplicate
	for i := 0; i+n <= len(lines); {
		parts := make([]string, n)
		for k := 0; k < n; k++ {
			parts[k] = lines[i+k].text
		}
		key := strings.Join(parts, "\n")
		if j, ok := firstSeen[key]; ok && i >= j+n {
			out = append(out, duplicate{first: lines[j].line, second: lines[i].line, size: n})
			i += n
			continue
		}
		if _, ok := firstSeen[key]; !ok {
			firstSeen[key] = i
		}
		i++
	}
	return out
}

// significant reports whether a normalized line carries enough content to
// count toward a duplicate.
func significant(norm string) bool {
	if len(norm) < 4 {
		return false
	}
	return strings.IndexFunc(norm, func(r rune) bool {
		return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
	}) >= 0
}

type literal struct {
	text  string
	count int
	lines []int
}

// repeatedLiterals returns literals used at least LiteralRepeat times,
// most used first.
func repeatedLiterals(in Input) []*literal {
	constLines := constantLines(in)
	syn := in.Profile.Syntax()
	uses := make(map[string]*literal)
	var order []*literal
	record := func(text string, line int) {
		l, ok := uses[text]
		if !ok {
			l = &literal{text: text}
			uses[text] = l
			order = append(order, l)
		}
		l.count++
		if len(l.lines) == 0 || l.lines[len(l.lines)-1] != line {
			l.lines = append(l.lines, line)
		}
	}

	codeLines(in, func(lf lexical.LineFacts, code string) {
		if constLines[lf.Number] || importRe.MatchString(code) {
			return
		}
		for _, s := range lexical.StringLiterals(lf.Content, syn) {
			if len(s) >= minLiteralLength && !strings.ContainsAny(s, "\"'`") {
				record(`"`+s+`"`, lf.Number)
			}
		}
		for _, m := range numberRe.FindAllStringSubmatch(code, -1) {
			if !trivialNumbers[m[1]] {
				record(m[1], lf.Number)
			}
		}
	})

	var out []*literal
	for _, l := range order {
		if l.count >= in.Thresholds.LiteralRepeat {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

// constantLines marks lines that declare an UPPER_CASE constant.
func constantLines(in Input) map[int]bool {
	out := make(map[int]bool)
	for _, d := range in.Outline.Declarations {
		if d.Kind == profile.KindVariable && constantRe.MatchString(d.Name) {
			out[d.Line] = true
		}
	}
	return out
}
