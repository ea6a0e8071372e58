package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dshills/codecritic/internal/engine"
	"github.com/dshills/codecritic/internal/lexical"
	"github.com/dshills/codecritic/internal/score"
	"github.com/dshills/codecritic/internal/source"
)

const sampleSource = "def foo():\n    password = \"hunter2secret\"\n    return password\n"

func sampleResult(t *testing.T) (*engine.Result, *source.Document) {
	t.Helper()
	res, err := engine.Analyze(sampleSource, "python")
	if err != nil {
		t.Fatal(err)
	}
	doc := &source.Document{
		FilePath: "app.py",
		Language: res.Language,
		Text:     sampleSource,
		Lines:    lexical.SplitLines(sampleSource),
	}
	return res, doc
}

func TestJSON(t *testing.T) {
	res, _ := sampleResult(t)
	data, err := JSON(res)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		t.Error("expected trailing newline")
	}
	var back struct {
		OverallScore    int            `json:"overall_score"`
		Breakdown       map[string]int `json:"breakdown"`
		Recommendations []string       `json:"recommendations"`
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.OverallScore != res.OverallScore {
		t.Errorf("overall_score = %d, want %d", back.OverallScore, res.OverallScore)
	}
	if len(back.Breakdown) != len(score.Categories) {
		t.Errorf("expected %d breakdown keys, got %v", len(score.Categories), back.Breakdown)
	}
	if strings.Contains(string(data), "findings") || strings.Contains(string(data), "Language") {
		t.Error("internal fields leaked into the wire shape")
	}
}

func TestMarkdownContainsSections(t *testing.T) {
	res, doc := sampleResult(t)
	md := Markdown(res, doc, Options{})

	checks := []string{
		"# CodeCritic Report",
		"**File:** app.py",
		"**Language:** python",
		"**Score:**",
		"## Breakdown",
		"| Naming | 10 | 10 |",
		"| Best practices |",
		"## Recommendations",
		"1. ",
		"## Findings",
		"### Comments & documentation",
		"L001: def foo():",
	}
	for _, c := range checks {
		if !strings.Contains(md, c) {
			t.Errorf("Markdown output missing %q", c)
		}
	}
}

func TestMarkdownRedactsQuotes(t *testing.T) {
	res, doc := sampleResult(t)

	plain := Markdown(res, doc, Options{})
	if !strings.Contains(plain, "hunter2secret") {
		t.Fatal("expected the secret to be quoted without redaction")
	}
	redacted := Markdown(res, doc, Options{Redact: true})
	if strings.Contains(redacted, "hunter2secret") {
		t.Error("secret leaked with redaction on")
	}
	if !strings.Contains(redacted, "[REDACTED]") {
		t.Error("expected redaction placeholder")
	}
}

func TestMarkdownWithoutDocument(t *testing.T) {
	res, _ := sampleResult(t)
	md := Markdown(res, nil, Options{})
	if strings.Contains(md, "**File:**") || strings.Contains(md, "```") {
		t.Error("expected no file header or excerpts without a document")
	}
}

func TestMarkdownNoFindings(t *testing.T) {
	res, err := engine.Analyze("", "javascript")
	if err != nil {
		t.Fatal(err)
	}
	md := Markdown(res, nil, Options{})
	if !strings.Contains(md, "No findings.") {
		t.Error("expected 'No findings.' message")
	}
}

func TestText(t *testing.T) {
	res, _ := sampleResult(t)
	var buf bytes.Buffer
	if err := Text(&buf, res, "app.py"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Error("expected no ANSI escapes when writing to a buffer")
	}
	for _, c := range []string{"CodeCritic · app.py", "Overall", "Naming", "Best practices", "Recommendations"} {
		if !strings.Contains(out, c) {
			t.Errorf("Text output missing %q", c)
		}
	}
	if got := strings.Count(out, "░") + strings.Count(out, "█"); got != barWidth*len(score.Categories) {
		t.Errorf("expected %d bar cells, got %d", barWidth*len(score.Categories), got)
	}
}

func TestBarClamps(t *testing.T) {
	p := newPalette(&bytes.Buffer{})
	tests := []struct {
		points, top int
		filled      int
	}{
		{10, 10, barWidth},
		{0, 10, 0},
		{5, 10, barWidth / 2},
		{30, 10, barWidth},
		{-3, 10, 0},
	}
	for _, tt := range tests {
		got := strings.Count(bar(p, tt.points, tt.top), "█")
		if got != tt.filled {
			t.Errorf("bar(%d, %d) filled %d cells, want %d", tt.points, tt.top, got, tt.filled)
		}
	}
}
