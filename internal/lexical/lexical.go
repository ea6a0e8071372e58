// Package lexical turns raw source text into per-line facts and file aggregates.
package lexical

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultIndentUnit is used when a file has no indentation increases to learn from.
const DefaultIndentUnit = 4

// Syntax describes the comment and string delimiters of a language.
type Syntax struct {
	LineComments []string
	BlockStart   string
	BlockEnd     string
	DocStart     string
	// StringBlocks are delimiters of string literals that may span lines.
	StringBlocks []string
	// Docstrings marks standalone string blocks as documentation.
	Docstrings bool
}

// LineFacts holds what is known about a single line.
type LineFacts struct {
	Number        int
	Content       string
	Length        int
	Indent        int
	Blank         bool
	Comment       bool
	Doc           bool
	OpensString   bool
	InString      bool
	MixedIndent   bool
	TabIndent     bool
	TrailingSpace bool
}

// Code reports whether the line carries code rather than blank space,
// comments or string continuation.
func (l LineFacts) Code() bool {
	return !l.Blank && !l.Comment && !l.Doc && !l.InString
}

// Trimmed returns the content without surrounding whitespace.
func (l LineFacts) Trimmed() string {
	return strings.TrimSpace(l.Content)
}

// Metrics is the extractor output.
type Metrics struct {
	Lines            []LineFacts
	TotalLines       int
	BlankLines       int
	CommentLines     int
	DocLines         int
	CodeLines        int
	MaxLineLength    int
	MedianLineLength int
	MaxIndent        int
	MixedIndentLines int
	TabIndentLines   int
	SpaceIndentLines int
	IndentUnit       int
}

// Line returns the facts for a 1-based line number.
func (m *Metrics) Line(n int) (LineFacts, bool) {
	if n < 1 || n > len(m.Lines) {
		return LineFacts{}, false
	}
	return m.Lines[n-1], true
}

// SplitLines splits text into lines, normalizing CRLF and dropping the
// empty element produced by a trailing newline.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Extract computes line facts and aggregates. It never fails.
func Extract(text string, syn Syntax, tabWidth int) *Metrics {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	raw := SplitLines(text)
	m := &Metrics{
		Lines:      make([]LineFacts, 0, len(raw)),
		IndentUnit: DefaultIndentUnit,
	}

	var (
		inBlock   bool
		blockDoc  bool
		inString  string
		stringDoc bool
	)
	for i, content := range raw {
		lf := LineFacts{
			Number:  i + 1,
			Content: content,
			Length:  utf8.RuneCountInString(content),
		}
		lf.Indent, lf.MixedIndent, lf.TabIndent = measureIndent(content, tabWidth)
		trimmed := strings.TrimSpace(content)
		lf.Blank = trimmed == ""
		lf.TrailingSpace = !lf.Blank && strings.TrimRight(content, " \t") != content

		switch {
		case inString != "":
			lf.InString = true
			lf.Doc = stringDoc
			if strings.Count(trimmed, inString)%2 == 1 {
				inString = ""
				stringDoc = false
			}
		case inBlock:
			lf.Comment = true
			lf.Doc = blockDoc
			if strings.Contains(trimmed, syn.BlockEnd) {
				inBlock = false
				blockDoc = false
			}
		case lf.Blank:
		case hasAnyPrefix(trimmed, syn.LineComments):
			lf.Comment = true
		case syn.BlockStart != "" && strings.HasPrefix(trimmed, syn.BlockStart):
			lf.Comment = true
			lf.Doc = syn.DocStart != "" && strings.HasPrefix(trimmed, syn.DocStart)
			if !strings.Contains(trimmed[len(syn.BlockStart):], syn.BlockEnd) {
				inBlock = true
				blockDoc = lf.Doc
			}
		default:
			delim, open := openStringBlock(trimmed, syn.StringBlocks)
			standalone := delim != "" && strings.HasPrefix(trimmed, delim)
			if standalone && syn.Docstrings {
				lf.Doc = true
			}
			if open {
				lf.OpensString = true
				inString = delim
				stringDoc = lf.Doc
			}
		}

		m.record(lf)
	}
	m.finish(syn)
	return m
}

func (m *Metrics) record(lf LineFacts) {
	m.Lines = append(m.Lines, lf)
	m.TotalLines++
	switch {
	case lf.Blank:
		m.BlankLines++
	case lf.Comment && !lf.Doc:
		m.CommentLines++
	case lf.Doc:
		m.DocLines++
	case lf.InString:
	default:
		m.CodeLines++
	}
	if lf.Length > m.MaxLineLength {
		m.MaxLineLength = lf.Length
	}
	if lf.Indent > m.MaxIndent && !lf.Blank {
		m.MaxIndent = lf.Indent
	}
	if lf.MixedIndent {
		m.MixedIndentLines++
	}
	if !lf.Blank && lf.Indent > 0 {
		if lf.TabIndent {
			m.TabIndentLines++
		} else {
			m.SpaceIndentLines++
		}
	}
}

func (m *Metrics) finish(syn Syntax) {
	if len(m.Lines) == 0 {
		return
	}
	lengths := make([]int, len(m.Lines))
	for i, lf := range m.Lines {
		lengths[i] = lf.Length
	}
	sort.Ints(lengths)
	m.MedianLineLength = lengths[(len(lengths)-1)/2]
	m.IndentUnit = dominantIndentUnit(m.Lines, syn)
}

// dominantIndentUnit returns the most frequent positive indentation step
// between consecutive code lines. Lines that continue an open parenthesis or
// bracket are skipped. Ties go to the smaller step.
func dominantIndentUnit(lines []LineFacts, syn Syntax) int {
	counts := make(map[int]int)
	prev, depth := -1, 0
	for _, lf := range lines {
		if !lf.Code() {
			continue
		}
		if depth == 0 {
			if prev >= 0 && lf.Indent > prev {
				counts[lf.Indent-prev]++
			}
			prev = lf.Indent
		}
		code := StripCode(lf.Content, syn)
		depth += strings.Count(code, "(") + strings.Count(code, "[") -
			strings.Count(code, ")") - strings.Count(code, "]")
		if depth < 0 {
			depth = 0
		}
	}
	unit, best := DefaultIndentUnit, 0
	for step, n := range counts {
		if n > best || (n == best && step < unit) {
			unit, best = step, n
		}
	}
	return unit
}

// measureIndent returns the leading whitespace width in columns, whether it
// mixes tabs and spaces, and whether it starts with a tab.
func measureIndent(line string, tabWidth int) (width int, mixed, tab bool) {
	var spaces, tabs bool
	for _, r := range line {
		switch r {
		case ' ':
			spaces = true
			width++
		case '\t':
			tabs = true
			if width == 0 {
				tab = true
			}
			width += tabWidth - width%tabWidth
		default:
			return width, spaces && tabs, tab
		}
	}
	// whitespace-only lines have no indentation worth reporting
	return 0, false, false
}

// openStringBlock reports the first multi-line string delimiter present on
// the line and whether the line leaves that string open.
func openStringBlock(trimmed string, delims []string) (string, bool) {
	first, at := "", -1
	for _, d := range delims {
		if i := strings.Index(trimmed, d); i >= 0 && (at < 0 || i < at) {
			first, at = d, i
		}
	}
	if first == "" {
		return "", false
	}
	return first, strings.Count(trimmed, first)%2 == 1
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
