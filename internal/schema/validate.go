// Package schema validates analysis results against the codecritic output
// contract.
package schema

import (
	"fmt"
	"strings"

	"github.com/dshills/codecritic/internal/engine"
	"github.com/dshills/codecritic/internal/recommend"
	"github.com/dshills/codecritic/internal/score"
)

// ValidationError describes a single schema violation.
type ValidationError struct {
	Path    string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Result for structural validity.
// lineCount is the number of lines in the analyzed file (0 to skip line range checks).
func Validate(r *engine.Result, lineCount int) []ValidationError {
	var errs []ValidationError

	if r.OverallScore < 0 || r.OverallScore > score.MaxTotal {
		errs = append(errs, ValidationError{"overall_score", fmt.Sprintf("%d outside [0,%d]", r.OverallScore, score.MaxTotal)})
	}
	if sum := r.Breakdown.Sum(); r.OverallScore != sum {
		errs = append(errs, ValidationError{"overall_score", fmt.Sprintf("score %d does not match breakdown sum %d", r.OverallScore, sum)})
	}
	for _, c := range score.Categories {
		if v := r.Breakdown.Get(c); v < 0 || v > c.Max() {
			errs = append(errs, ValidationError{"breakdown." + string(c), fmt.Sprintf("%d outside [0,%d]", v, c.Max())})
		}
	}

	// Detailed scores, when present, must agree with the breakdown
	for i, cs := range r.Categories {
		prefix := fmt.Sprintf("categories[%d]", i)
		if !cs.Category.Valid() {
			errs = append(errs, ValidationError{prefix + ".category", fmt.Sprintf("invalid: %q", cs.Category)})
			continue
		}
		if cs.Max != cs.Category.Max() {
			errs = append(errs, ValidationError{prefix + ".max", fmt.Sprintf("expected %d, got %d", cs.Category.Max(), cs.Max)})
		}
		if want := r.Breakdown.Get(cs.Category); cs.Points != want {
			errs = append(errs, ValidationError{prefix + ".points", fmt.Sprintf("expected %d, got %d", want, cs.Points)})
		}
	}

	n := len(r.Recommendations)
	if n < recommend.MinRecommendations || n > recommend.MaxRecommendations {
		errs = append(errs, ValidationError{"recommendations", fmt.Sprintf("expected %d to %d entries, got %d",
			recommend.MinRecommendations, recommend.MaxRecommendations, n)})
	}
	seen := make(map[string]bool)
	for i, rec := range r.Recommendations {
		prefix := fmt.Sprintf("recommendations[%d]", i)
		if strings.TrimSpace(rec) == "" {
			errs = append(errs, ValidationError{prefix, "required"})
		} else if seen[rec] {
			errs = append(errs, ValidationError{prefix, fmt.Sprintf("duplicate: %q", rec)})
		}
		seen[rec] = true
	}

	for i, f := range r.Findings {
		errs = append(errs, validateFinding(fmt.Sprintf("findings[%d]", i), f, lineCount)...)
	}

	return errs
}

func validateFinding(prefix string, f score.Finding, lineCount int) []ValidationError {
	var errs []ValidationError
	if !f.Category.Valid() {
		errs = append(errs, ValidationError{prefix + ".category", fmt.Sprintf("invalid: %q", f.Category)})
	}
	if f.Points < 0 {
		errs = append(errs, ValidationError{prefix + ".points", fmt.Sprintf("must be >= 0, got %d", f.Points)})
	}
	if f.Message == "" {
		errs = append(errs, ValidationError{prefix + ".message", "required"})
	}
	if f.Line < 0 {
		errs = append(errs, ValidationError{prefix + ".line", fmt.Sprintf("must be >= 0, got %d", f.Line)})
	}
	if lineCount > 0 {
		if f.Line > lineCount {
			errs = append(errs, ValidationError{prefix + ".line", fmt.Sprintf("%d exceeds file length %d", f.Line, lineCount)})
		}
		for j, l := range f.Lines {
			if l < 1 || l > lineCount {
				errs = append(errs, ValidationError{fmt.Sprintf("%s.lines[%d]", prefix, j), fmt.Sprintf("%d outside [1,%d]", l, lineCount)})
			}
		}
	}
	return errs
}
