// Package outline finds function units and identifier declarations in source
// text using the boundary and declaration patterns of a language profile.
package outline

import (
	"strings"

	"github.com/dshills/codecritic/internal/lexical"
	"github.com/dshills/codecritic/internal/profile"
)

// maxSignatureLines bounds how far a declaration may spread before its body.
const maxSignatureLines = 8

// FunctionUnit is a detected function, method, or component span.
type FunctionUnit struct {
	Name         string
	Kind         profile.Kind
	StartLine    int
	SignatureEnd int
	EndLine      int
	BodyLines    int
	// Depth is the nesting depth at the declaration.
	Depth int
	// MaxNesting is the deepest block nesting inside the body.
	MaxNesting int
}

// Label is the unit name suitable for messages.
func (u FunctionUnit) Label() string {
	if u.Name == "" {
		return "(anonymous)"
	}
	return u.Name
}

// Declaration is a named identifier introduced on a line.
type Declaration struct {
	Name string
	Kind profile.Kind
	Line int
}

// Outline is the structural view of a file.
type Outline struct {
	Units        []FunctionUnit
	Declarations []Declaration
	// Code holds each line with strings blanked and comments removed;
	// non-code lines are empty.
	Code []string
}

// Signature returns the stripped text from the unit start to its signature end.
func (o *Outline) Signature(u FunctionUnit) string {
	var parts []string
	for n := u.StartLine; n <= u.SignatureEnd && n <= len(o.Code); n++ {
		parts = append(parts, strings.TrimSpace(o.Code[n-1]))
	}
	return strings.Join(parts, " ")
}

// Detect builds the outline. It never fails; malformed input yields fewer
// or shorter units.
func Detect(m *lexical.Metrics, p *profile.Profile) *Outline {
	syn := p.Syntax()
	o := &Outline{Code: make([]string, len(m.Lines))}
	for i, lf := range m.Lines {
		if lf.Code() {
			o.Code[i] = lexical.StripCode(lf.Content, syn)
		}
	}

	o.Declarations = findDeclarations(m, p, o.Code)

	var depthAt []int
	if p.Blocks != profile.BlockIndentation {
		depthAt = braceDepths(o.Code)
	}
	for i, lf := range m.Lines {
		if !lf.Code() {
			continue
		}
		for _, b := range p.Boundaries {
			name, end, ok := b.Match(o.Code[i])
			if !ok || p.IsKeyword(name) {
				continue
			}
			var u FunctionUnit
			if p.Blocks == profile.BlockIndentation {
				u = indentationUnit(m, p, o.Code, i)
			} else {
				u = braceUnit(m, o.Code, i, end, b.Arrow)
				u.Depth = depthAt[i]
			}
			u.Name = name
			if u.Kind == "" {
				u.Kind = b.Kind
			}
			o.Units = append(o.Units, u)
			break
		}
	}
	return o
}

func findDeclarations(m *lexical.Metrics, p *profile.Profile, code []string) []Declaration {
	var out []Declaration
	for i, lf := range m.Lines {
		if !lf.Code() {
			continue
		}
		for _, d := range p.Declarations {
			name, ok := d.Match(code[i])
			if !ok {
				continue
			}
			if !p.IsKeyword(name) {
				out = append(out, Declaration{Name: name, Kind: d.Kind, Line: lf.Number})
			}
			break
		}
	}
	return out
}

// braceDepths returns the brace depth in effect at the start of each line.
func braceDepths(code []string) []int {
	depths := make([]int, len(code))
	depth := 0
	for i, line := range code {
		depths[i] = depth
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth < 0 {
			depth = 0
		}
	}
	return depths
}

// braceUnit finds the extent of a unit whose body is delimited by braces,
// or by parentheses/an expression for arrow functions.
func braceUnit(m *lexical.Metrics, code []string, line, matchEnd int, arrow bool) FunctionUnit {
	u := FunctionUnit{StartLine: line + 1, SignatureEnd: line + 1, EndLine: line + 1}

	if arrow {
		l, c, ok := nextNonSpace(code, line, matchEnd)
		if !ok {
			return u
		}
		switch code[l][c] {
		case '{':
			return closeBlock(m, code, u, l, c, '{', '}')
		case '(':
			u = closeBlock(m, code, u, l, c, '(', ')')
			u.MaxNesting = 0
			return u
		default:
			return u
		}
	}

	l, c, ok := findBodyOpen(code, line)
	if !ok {
		return u
	}
	return closeBlock(m, code, u, l, c, '{', '}')
}

// nextNonSpace returns the position of the first non-space byte at or after
// (line, col), looking at most one line ahead.
func nextNonSpace(code []string, line, col int) (int, int, bool) {
	for l := line; l < len(code) && l <= line+1; l++ {
		start := 0
		if l == line {
			start = col
		}
		for c := start; c < len(code[l]); c++ {
			if code[l][c] != ' ' && code[l][c] != '\t' {
				return l, c, true
			}
		}
	}
	return 0, 0, false
}

// findBodyOpen finds the first '{' outside parentheses starting at line.
func findBodyOpen(code []string, line int) (int, int, bool) {
	parens := 0
	for l := line; l < len(code) && l < line+maxSignatureLines; l++ {
		for c := 0; c < len(code[l]); c++ {
			switch code[l][c] {
			case '(':
				parens++
			case ')':
				if parens > 0 {
					parens--
				}
			case '{':
				if parens == 0 {
					return l, c, true
				}
			case ';':
				if parens == 0 {
					return 0, 0, false
				}
			}
		}
	}
	return 0, 0, false
}

// closeBlock scans from the opening delimiter to its match and fills in the
// end line, body size and nesting of u. Only braces that open a statement
// block count toward nesting, so object literals do not.
func closeBlock(m *lexical.Metrics, code []string, u FunctionUnit, line, col int, open, close byte) FunctionUnit {
	u.SignatureEnd = line + 1
	var blocks []bool
	depth, maxDepth := 0, 0
	end := len(code) - 1
scan:
	for l := line; l < len(code); l++ {
		start := 0
		if l == line {
			start = col
		}
		for c := start; c < len(code[l]); c++ {
			switch code[l][c] {
			case open:
				block := open != '{' || len(blocks) == 0 || opensBlock(code, l, c)
				blocks = append(blocks, block)
				if block {
					depth++
					maxDepth = max(maxDepth, depth)
				}
			case close:
				if blocks[len(blocks)-1] {
					depth--
				}
				blocks = blocks[:len(blocks)-1]
				if len(blocks) == 0 {
					end = l
					break scan
				}
			}
		}
	}
	u.EndLine = end + 1
	if maxDepth > 0 {
		u.MaxNesting = maxDepth - 1
	}
	u.BodyLines = countCode(m, u.SignatureEnd, u.EndLine)
	return u
}

var blockKeywords = []string{"else", "try", "do", "finally"}

// opensBlock reports whether the brace at (line, col) follows a token that
// starts a statement block: a closing paren, an arrow or a block keyword.
func opensBlock(code []string, line, col int) bool {
	prev := strings.TrimRight(code[line][:col], " \t")
	for l := line - 1; prev == "" && l >= 0; l-- {
		prev = strings.TrimRight(code[l], " \t")
	}
	if strings.HasSuffix(prev, ")") || strings.HasSuffix(prev, "=>") {
		return true
	}
	for _, kw := range blockKeywords {
		if rest, ok := strings.CutSuffix(prev, kw); ok && !endsInWord(rest) {
			return true
		}
	}
	return false
}

func endsInWord(s string) bool {
	if s == "" {
		return false
	}
	c := s[len(s)-1]
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// indentationUnit finds the extent of a unit whose body is every following
// line indented deeper than the declaration.
func indentationUnit(m *lexical.Metrics, p *profile.Profile, code []string, line int) FunctionUnit {
	decl := m.Lines[line]
	unit := m.IndentUnit
	if unit <= 0 {
		unit = lexical.DefaultIndentUnit
	}
	u := FunctionUnit{
		StartLine: line + 1,
		Depth:     decl.Indent / unit,
		Kind:      enclosingKind(m, p, code, line),
	}

	sig := line
	parens := strings.Count(code[line], "(") - strings.Count(code[line], ")")
	for parens > 0 && sig+1 < len(code) && sig < line+maxSignatureLines {
		sig++
		parens += strings.Count(code[sig], "(") - strings.Count(code[sig], ")")
	}
	u.SignatureEnd = sig + 1
	u.EndLine = sig + 1
	if !strings.HasSuffix(strings.TrimSpace(code[sig]), ":") {
		// body on the same line as the signature
		return u
	}

	bodyIndent := -1
	for k := sig + 1; k < len(m.Lines); k++ {
		lf := m.Lines[k]
		if lf.Blank || lf.Comment || lf.InString {
			continue
		}
		if lf.Indent <= decl.Indent {
			break
		}
		u.EndLine = k + 1
		if bodyIndent < 0 {
			bodyIndent = lf.Indent
		}
		if lf.Code() && lf.Indent > bodyIndent {
			if n := (lf.Indent - bodyIndent) / unit; n > u.MaxNesting {
				u.MaxNesting = n
			}
		}
	}
	u.BodyLines = countCode(m, u.SignatureEnd, u.EndLine)
	return u
}

// enclosingKind reports KindMethod when the nearest less-indented code line
// above declares a class.
func enclosingKind(m *lexical.Metrics, p *profile.Profile, code []string, line int) profile.Kind {
	indent := m.Lines[line].Indent
	if indent == 0 {
		return ""
	}
	for k := line - 1; k >= 0; k-- {
		lf := m.Lines[k]
		if !lf.Code() || lf.Indent >= indent {
			continue
		}
		for _, d := range p.Declarations {
			if _, ok := d.Match(code[k]); ok {
				if d.Kind == profile.KindClass {
					return profile.KindMethod
				}
				return ""
			}
		}
		return ""
	}
	return ""
}

// countCode counts code lines strictly after line from and up to line to.
func countCode(m *lexical.Metrics, from, to int) int {
	n := 0
	for l := from + 1; l <= to && l <= len(m.Lines); l++ {
		if m.Lines[l-1].Code() {
			n++
		}
	}
	return n
}
