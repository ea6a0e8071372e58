// Package secrets finds hardcoded credentials in source text and masks them.
package secrets

import (
	"regexp"
	"sort"
	"strings"
)

// Placeholder replaces masked secrets.
const Placeholder = "[REDACTED]"

// Match is a secret found on a line.
type Match struct {
	Line int
	Kind string
}

type pattern struct {
	kind string
	re   *regexp.Regexp
}

var (
	patterns []pattern
	// assignment masks any credential-named assignment, literal or not.
	assignment *regexp.Regexp
)

func init() {
	raw := []struct{ kind, expr string }{
		{"AWS access key", `AKIA[0-9A-Z]{16}`},
		{"AWS secret key", `(?i)(aws_secret_access_key|aws_secret)["']?\s*[:=]\s*["']?[A-Za-z0-9/+=]{40}`},
		{"private key", `-----BEGIN [A-Z ]+PRIVATE KEY-----[\s\S]*?-----END [A-Z ]+PRIVATE KEY-----`},
		{"bearer token", `Bearer\s+[A-Za-z0-9\-._~+/]{12,}=*`},
		{"GitHub token", `\bgh[pousr]_[A-Za-z0-9]{20,}`},
		{"API key", `\bsk-[A-Za-z0-9]{16,}`},
		// credential-named identifier assigned a string literal
		{"credential", `(?i)\b\w*(api[_-]?key|api[_-]?secret|secret[_-]?key|secret|token|password|passwd|credentials)\w*["']?\s*[:=]\s*["'][^"'\s]{6,}["']`},
	}
	for _, r := range raw {
		patterns = append(patterns, pattern{kind: r.kind, re: regexp.MustCompile(r.expr)})
	}
	assignment = regexp.MustCompile(`(?i)(api[_-]?key|api[_-]?secret|secret[_-]?key|token|password|passwd|credentials)\s*[:=]\s*\S+`)
}

// Find reports at most one match per line, ordered by line. A secret that
// spans lines is reported on the line where it starts.
func Find(text string) []Match {
	starts := lineStarts(text)
	seen := make(map[int]bool)
	var out []Match
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			line := sort.SearchInts(starts, loc[0]+1)
			if seen[line] {
				continue
			}
			seen[line] = true
			out = append(out, Match{Line: line, Kind: p.kind})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// lineStarts returns the byte offset at which each line begins.
func lineStarts(text string) []int {
	starts := []int{0}
	for i := strings.IndexByte(text, '\n'); i >= 0; {
		starts = append(starts, starts[len(starts)-1]+i+1)
		i = strings.IndexByte(text[starts[len(starts)-1]:], '\n')
	}
	return starts
}

// Redact replaces secret patterns in text with [REDACTED]. Credential-named
// assignments are masked whatever their value.
func Redact(text string) string {
	for _, p := range patterns {
		text = p.re.ReplaceAllString(text, Placeholder)
	}
	return assignment.ReplaceAllString(text, Placeholder)
}
