package lexical

import "strings"

// StripCode blanks the contents of string literals and removes comments from
// a single line, leaving the quote characters in place. Unterminated strings
// run to the end of the line.
func StripCode(line string, syn Syntax) string {
	var b strings.Builder
	b.Grow(len(line))
	scan(line, syn, func(code string) {
		b.WriteString(code)
	}, func(quote byte, _ string) {
		b.WriteByte(quote)
		b.WriteByte(quote)
	})
	return strings.TrimRight(b.String(), " \t")
}

// StringLiterals returns the bodies of the complete string literals on a
// line, ignoring anything inside comments.
func StringLiterals(line string, syn Syntax) []string {
	var out []string
	scan(line, syn, func(string) {}, func(_ byte, body string) {
		out = append(out, body)
	})
	return out
}

// scan walks one line, passing code fragments to code and each closed
// string literal to str. Comments are skipped; an unterminated string ends
// the scan with its opening quote passed to code unless the quote follows a
// letter or digit. A closed pair of apostrophes in prose still reads as a
// string.
func scan(line string, syn Syntax, code func(string), str func(quote byte, body string)) {
	quotes := "\"'"
	for _, d := range syn.StringBlocks {
		if len(d) == 1 && !strings.Contains(quotes, d) {
			quotes += d
		}
	}

	start := 0
	flush := func(end int) {
		if end > start {
			code(line[start:end])
		}
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		if hasAnyPrefix(line[i:], syn.LineComments) {
			flush(i)
			return
		}
		if syn.BlockStart != "" && strings.HasPrefix(line[i:], syn.BlockStart) {
			flush(i)
			end := strings.Index(line[i+len(syn.BlockStart):], syn.BlockEnd)
			if end < 0 {
				return
			}
			i += len(syn.BlockStart) + end + len(syn.BlockEnd) - 1
			code(" ")
			start = i + 1
			continue
		}
		if strings.IndexByte(quotes, c) < 0 {
			continue
		}
		j := i + 1
		for j < len(line) && line[j] != c {
			if line[j] == '\\' {
				j++
			}
			j++
		}
		if j >= len(line) {
			if i > 0 && isWordByte(line[i-1]) {
				// An apostrophe inside a word, as in JSX text.
				continue
			}
			flush(i)
			code(string(c))
			return
		}
		flush(i)
		str(c, line[i+1:j])
		i = j
		start = j + 1
	}
	flush(len(line))
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
