package lexical

import (
	"reflect"
	"testing"
)

var jsSyntax = Syntax{
	LineComments: []string{"//"},
	BlockStart:   "/*",
	BlockEnd:     "*/",
	DocStart:     "/**",
	StringBlocks: []string{"`"},
}

var pySyntax = Syntax{
	LineComments: []string{"#"},
	StringBlocks: []string{`"""`, "'''"},
	Docstrings:   true,
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb", []string{"a", "b"}},
		{"blank last line kept", "a\n\n", []string{"a", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractEmpty(t *testing.T) {
	m := Extract("", jsSyntax, 4)
	if m.TotalLines != 0 || m.CodeLines != 0 {
		t.Errorf("expected no lines, got total=%d code=%d", m.TotalLines, m.CodeLines)
	}
	if m.IndentUnit != DefaultIndentUnit {
		t.Errorf("IndentUnit = %d, want %d", m.IndentUnit, DefaultIndentUnit)
	}
}

func TestExtractJavaScriptComments(t *testing.T) {
	src := "/**\n * Adds.\n */\nfunction add(a, b) {\n  // sum\n  return a + b;\n}\n"
	m := Extract(src, jsSyntax, 4)

	if m.TotalLines != 7 {
		t.Fatalf("TotalLines = %d, want 7", m.TotalLines)
	}
	if m.DocLines != 3 {
		t.Errorf("DocLines = %d, want 3", m.DocLines)
	}
	if m.CommentLines != 1 {
		t.Errorf("CommentLines = %d, want 1", m.CommentLines)
	}
	if m.CodeLines != 3 {
		t.Errorf("CodeLines = %d, want 3", m.CodeLines)
	}
	if m.IndentUnit != 2 {
		t.Errorf("IndentUnit = %d, want 2", m.IndentUnit)
	}
	if lf, _ := m.Line(2); !lf.Doc || !lf.Comment {
		t.Errorf("line 2 should be a doc comment: %+v", lf)
	}
	if lf, _ := m.Line(5); lf.Doc || !lf.Comment {
		t.Errorf("line 5 should be a plain comment: %+v", lf)
	}
}

func TestExtractPythonDocstring(t *testing.T) {
	src := "def f():\n" +
		"    \"\"\"Return one.\n" +
		"\n" +
		"    More.\n" +
		"    \"\"\"\n" +
		"    x = '''a\n" +
		"b'''\n" +
		"    return 1\n"
	m := Extract(src, pySyntax, 4)

	if m.TotalLines != 8 {
		t.Fatalf("TotalLines = %d, want 8", m.TotalLines)
	}
	if m.DocLines != 3 {
		t.Errorf("DocLines = %d, want 3", m.DocLines)
	}
	if m.CodeLines != 3 {
		t.Errorf("CodeLines = %d, want 3", m.CodeLines)
	}
	if m.BlankLines != 1 {
		t.Errorf("BlankLines = %d, want 1", m.BlankLines)
	}
	if lf, _ := m.Line(6); !lf.OpensString || !lf.Code() {
		t.Errorf("line 6 should open a string and count as code: %+v", lf)
	}
	if lf, _ := m.Line(7); !lf.InString || lf.Doc {
		t.Errorf("line 7 should continue a plain string: %+v", lf)
	}
}

func TestExtractSingleLineDocstring(t *testing.T) {
	m := Extract("def f():\n    \"\"\"One.\"\"\"\n    return 1\n", pySyntax, 4)
	lf, _ := m.Line(2)
	if !lf.Doc || lf.OpensString {
		t.Errorf("line 2 should be a closed docstring: %+v", lf)
	}
	if lf3, _ := m.Line(3); !lf3.Code() {
		t.Errorf("line 3 should be code: %+v", lf3)
	}
}

func TestExtractIndentation(t *testing.T) {
	m := Extract("\tx = 1\n  \ty = 2\nz = 3  \n", pySyntax, 4)

	l1, _ := m.Line(1)
	if !l1.TabIndent || l1.MixedIndent || l1.Indent != 4 {
		t.Errorf("line 1 = %+v, want tab indent of 4", l1)
	}
	l2, _ := m.Line(2)
	if !l2.MixedIndent || l2.TabIndent || l2.Indent != 4 {
		t.Errorf("line 2 = %+v, want mixed indent of 4", l2)
	}
	l3, _ := m.Line(3)
	if !l3.TrailingSpace {
		t.Error("line 3 should have trailing whitespace")
	}
	if m.MixedIndentLines != 1 || m.TabIndentLines != 1 || m.SpaceIndentLines != 1 {
		t.Errorf("mixed=%d tab=%d space=%d, want 1/1/1",
			m.MixedIndentLines, m.TabIndentLines, m.SpaceIndentLines)
	}
}

func TestExtractLengths(t *testing.T) {
	m := Extract("a\nbbb\ncc\nd\n", jsSyntax, 4)
	if m.MaxLineLength != 3 {
		t.Errorf("MaxLineLength = %d, want 3", m.MaxLineLength)
	}
	// sorted lengths are 1 1 2 3; the lower middle is used
	if m.MedianLineLength != 1 {
		t.Errorf("MedianLineLength = %d, want 1", m.MedianLineLength)
	}
}

func TestExtractLengthCountsRunes(t *testing.T) {
	m := Extract("s = \"héllo\"\n", pySyntax, 4)
	if m.MaxLineLength != 11 {
		t.Errorf("MaxLineLength = %d, want 11", m.MaxLineLength)
	}
}

func TestDominantIndentUnit(t *testing.T) {
	src := "if a:\n    b\n    if c:\n        d\nif e:\n  f\n"
	m := Extract(src, pySyntax, 4)
	if m.IndentUnit != 4 {
		t.Errorf("IndentUnit = %d, want 4", m.IndentUnit)
	}
}

func TestLineOutOfRange(t *testing.T) {
	m := Extract("x\n", jsSyntax, 4)
	if _, ok := m.Line(0); ok {
		t.Error("line 0 should not exist")
	}
	if _, ok := m.Line(2); ok {
		t.Error("line 2 should not exist")
	}
}

func TestStripCode(t *testing.T) {
	tests := []struct {
		name string
		syn  Syntax
		in   string
		want string
	}{
		{"js line comment", jsSyntax, `let a = 1; // note`, `let a = 1;`},
		{"js comment marker in string", jsSyntax, `const s = "a // b";`, `const s = "";`},
		{"js inline block", jsSyntax, `f(/* x */ 1)`, `f(  1)`},
		{"js template", jsSyntax, "const t = `${a} == b`;", "const t = ``;"},
		{"js escaped quote", jsSyntax, `x = "a\"b" == y`, `x = "" == y`},
		{"py comment", pySyntax, `x = 1  # set x`, `x = 1`},
		{"py hash in string", pySyntax, `url = 'a#b'`, `url = ''`},
		{"unterminated", pySyntax, `s = "abc`, `s = "`},
		{"apostrophe in jsx text", jsSyntax, `<p>Don't <img src="a.png" /></p>`, `<p>Don't <img src="" /></p>`},
		{"paired apostrophes in text", jsSyntax, `<p>Don't won't</p>`, `<p>Don''t</p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCode(tt.in, tt.syn); got != tt.want {
				t.Errorf("StripCode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		name string
		syn  Syntax
		in   string
		want []string
	}{
		{"js", jsSyntax, `fetch("/api/users", { method: 'POST' }); // "ignored"`, []string{"/api/users", "POST"}},
		{"template", jsSyntax, "const s = `hi ${name}`;", []string{"hi ${name}"}},
		{"escaped", pySyntax, `msg = "say \"hi\""`, []string{`say \"hi\"`}},
		{"unterminated", pySyntax, `x = 'a' + "b`, []string{"a"}},
		{"none", pySyntax, `total = count * 3`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StringLiterals(tt.in, tt.syn)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("StringLiterals(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
