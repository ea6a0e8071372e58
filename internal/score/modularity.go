package score

import (
	"fmt"

	"github.com/dshills/codecritic/internal/profile"
)

const (
	longUnitPenalty     = 4
	nestingLevelPenalty = 2
)

// Modularity deducts for long units and for nesting deeper than the limit.
// A file without units keeps full marks.
func Modularity(in Input) Assessment {
	t := newTally(CategoryModularity)
	limit := in.Thresholds.MaxFunctionLines
	depth := in.Thresholds.MaxNesting
	for _, u := range in.Outline.Units {
		if u.BodyLines > limit {
			t.add(Finding{
				Line:    u.StartLine,
				Subject: u.Label(),
				Points:  longUnitPenalty,
				Message: fmt.Sprintf("Split %s `%s` (line %d, %d lines) into smaller functions of at most %d lines.",
					unitLabel(u.Kind), u.Label(), u.StartLine, u.BodyLines, limit),
			})
		}
		if u.Kind != profile.KindClass && u.MaxNesting > depth {
			extra := u.MaxNesting - depth
			t.add(Finding{
				Line:    u.StartLine,
				Subject: u.Label(),
				Points:  extra * nestingLevelPenalty,
				Message: fmt.Sprintf("Reduce the nesting in `%s` (line %d) from %d to %d levels with early returns or helper functions.",
					u.Label(), u.StartLine, u.MaxNesting, depth),
			})
		}
	}
	return t.assessment()
}

func unitLabel(k profile.Kind) string {
	switch k {
	case profile.KindClass:
		return "component"
	case profile.KindMethod:
		return "method"
	default:
		return "function"
	}
}
