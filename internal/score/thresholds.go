package score

import (
	"errors"
	"fmt"
)

// Thresholds are the tunable limits the scorers measure against.
type Thresholds struct {
	MaxLineLength    int `mapstructure:"max_line_length" yaml:"max_line_length"`
	MaxFunctionLines int `mapstructure:"max_function_lines" yaml:"max_function_lines"`
	MaxNesting       int `mapstructure:"max_nesting" yaml:"max_nesting"`
	DuplicateBlock   int `mapstructure:"duplicate_block_lines" yaml:"duplicate_block_lines"`
	LiteralRepeat    int `mapstructure:"literal_repeat" yaml:"literal_repeat"`
	// CommentRatio is the target percentage of comment lines per code line.
	CommentRatio int `mapstructure:"comment_ratio" yaml:"comment_ratio"`
	TabWidth     int `mapstructure:"tab_width" yaml:"tab_width"`
}

// DefaultThresholds returns the limits used when nothing is configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxLineLength:    100,
		MaxFunctionLines: 40,
		MaxNesting:       3,
		DuplicateBlock:   4,
		LiteralRepeat:    3,
		CommentRatio:     20,
		TabWidth:         4,
	}
}

// Validate reports every threshold that is out of range.
func (t Thresholds) Validate() error {
	var errs []error
	for _, f := range []struct {
		name  string
		value int
	}{
		{"max_line_length", t.MaxLineLength},
		{"max_function_lines", t.MaxFunctionLines},
		{"max_nesting", t.MaxNesting},
		{"duplicate_block_lines", t.DuplicateBlock},
		{"literal_repeat", t.LiteralRepeat},
		{"comment_ratio", t.CommentRatio},
		{"tab_width", t.TabWidth},
	} {
		if f.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", f.name, f.value))
		}
	}
	if t.CommentRatio > 100 {
		errs = append(errs, fmt.Errorf("comment_ratio must be at most 100, got %d", t.CommentRatio))
	}
	if t.DuplicateBlock == 1 {
		errs = append(errs, errors.New("duplicate_block_lines must be at least 2"))
	}
	return errors.Join(errs...)
}
