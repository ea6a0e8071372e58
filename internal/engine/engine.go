// Package engine runs the full analysis pipeline for one source text: lexical
// extraction, outline detection, the six category scorers and the
// recommendation generator. It is pure and safe for concurrent use.
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/codecritic/internal/lexical"
	"github.com/dshills/codecritic/internal/outline"
	"github.com/dshills/codecritic/internal/profile"
	"github.com/dshills/codecritic/internal/recommend"
	"github.com/dshills/codecritic/internal/score"
)

// ErrUnsupportedLanguage matches any *UnsupportedLanguageError with errors.Is.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// UnsupportedLanguageError is returned for a language tag with no profile.
type UnsupportedLanguageError struct {
	Tag string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q (supported: javascript, python)", e.Tag)
}

func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}

// Breakdown is the per-category points in wire order.
type Breakdown struct {
	Naming        int `json:"naming"`
	Modularity    int `json:"modularity"`
	Comments      int `json:"comments"`
	Formatting    int `json:"formatting"`
	Reusability   int `json:"reusability"`
	BestPractices int `json:"best_practices"`
}

// Get returns the points for a category.
func (b Breakdown) Get(c score.Category) int {
	switch c {
	case score.CategoryNaming:
		return b.Naming
	case score.CategoryModularity:
		return b.Modularity
	case score.CategoryComments:
		return b.Comments
	case score.CategoryFormatting:
		return b.Formatting
	case score.CategoryReusability:
		return b.Reusability
	case score.CategoryBestPractices:
		return b.BestPractices
	}
	return 0
}

func (b *Breakdown) set(c score.Category, points int) {
	switch c {
	case score.CategoryNaming:
		b.Naming = points
	case score.CategoryModularity:
		b.Modularity = points
	case score.CategoryComments:
		b.Comments = points
	case score.CategoryFormatting:
		b.Formatting = points
	case score.CategoryReusability:
		b.Reusability = points
	case score.CategoryBestPractices:
		b.BestPractices = points
	}
}

// Sum adds up all categories.
func (b Breakdown) Sum() int {
	return b.Naming + b.Modularity + b.Comments + b.Formatting + b.Reusability + b.BestPractices
}

// Result is the analysis of one source text. Only the first three fields
// are part of the wire shape.
type Result struct {
	OverallScore    int       `json:"overall_score"`
	Breakdown       Breakdown `json:"breakdown"`
	Recommendations []string  `json:"recommendations"`

	Language   profile.Language      `json:"-"`
	Categories []score.CategoryScore `json:"-"`
	Findings   []score.Finding       `json:"-"`
}

// Analyze scores text written in the language named by tag using the
// default thresholds. The tag must be exactly "javascript" or "python".
func Analyze(text, tag string) (*Result, error) {
	return AnalyzeWith(text, tag, score.DefaultThresholds())
}

// AnalyzeWith scores text with explicit thresholds.
func AnalyzeWith(text, tag string, th score.Thresholds) (*Result, error) {
	if !profile.Language(tag).Valid() {
		return nil, &UnsupportedLanguageError{Tag: tag}
	}
	p, err := profile.Lookup(tag)
	if err != nil {
		if errors.Is(err, profile.ErrUnknownLanguage) {
			return nil, &UnsupportedLanguageError{Tag: tag}
		}
		return nil, fmt.Errorf("engine.AnalyzeWith: %w", err)
	}
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("engine.AnalyzeWith: thresholds: %w", err)
	}

	m := lexical.Extract(text, p.Syntax(), th.TabWidth)
	in := score.Input{
		Text:       text,
		Metrics:    m,
		Outline:    outline.Detect(m, p),
		Profile:    p,
		Thresholds: th,
	}
	assessments := score.Run(in)

	res := &Result{Language: p.Language}
	for _, a := range assessments {
		res.Breakdown.set(a.Score.Category, a.Score.Points)
		res.Categories = append(res.Categories, a.Score)
		res.Findings = append(res.Findings, a.Findings...)
	}
	res.OverallScore = res.Breakdown.Sum()
	empty := strings.TrimSpace(text) == ""
	res.Recommendations = recommend.Generate(res.Categories, res.Findings, p, empty)
	return res, nil
}
