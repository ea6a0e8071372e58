// Package recommend turns category scores and findings into a short list of
// actionable sentences.
package recommend

import (
	"slices"
	"sort"

	"github.com/dshills/codecritic/internal/profile"
	"github.com/dshills/codecritic/internal/score"
)

const (
	MinRecommendations = 3
	MaxRecommendations = 5
)

// EmptyMessage leads the recommendations for a file with nothing in it.
const EmptyMessage = "The file is empty, so there is nothing to analyze yet."

// Generate selects between MinRecommendations and MaxRecommendations
// sentences. Categories are visited in order of proportional deficit and
// contribute findings round-robin, strongest first. Generic reminders from
// the profile pad short lists.
func Generate(scores []score.CategoryScore, findings []score.Finding, p *profile.Profile, empty bool) []string {
	if empty {
		out := []string{EmptyMessage}
		return pad(out, p.Reminders)
	}

	cats := deficitOrder(scores)
	queues := make(map[score.Category][]score.Finding, len(cats))
	for _, f := range findings {
		queues[f.Category] = append(queues[f.Category], f)
	}
	for _, c := range cats {
		score.SortFindings(queues[c])
	}

	var out []string
	seen := make(map[string]bool)
	for round := 0; len(out) < MaxRecommendations; round++ {
		progressed := false
		for _, c := range cats {
			q := queues[c]
			if round >= len(q) {
				continue
			}
			progressed = true
			msg := q[round].Message
			if msg == "" || seen[msg] {
				continue
			}
			seen[msg] = true
			out = append(out, msg)
			if len(out) == MaxRecommendations {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return pad(out, p.Reminders)
}

// deficitOrder returns the categories that lost points, largest share of
// their maximum first. Shares are compared by cross-multiplication; ties
// keep category order.
func deficitOrder(scores []score.CategoryScore) []score.Category {
	var lost []score.CategoryScore
	for _, s := range scores {
		if s.Lost() > 0 && s.Max > 0 {
			lost = append(lost, s)
		}
	}
	sort.SliceStable(lost, func(i, j int) bool {
		a, b := lost[i].Lost()*lost[j].Max, lost[j].Lost()*lost[i].Max
		if a != b {
			return a > b
		}
		return lost[i].Category.Order() < lost[j].Category.Order()
	})
	out := make([]score.Category, len(lost))
	for i, s := range lost {
		out[i] = s.Category
	}
	return out
}

// pad appends reminders not already present until the list has
// MinRecommendations entries.
func pad(out, reminders []string) []string {
	for _, r := range reminders {
		if len(out) >= MinRecommendations {
			break
		}
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
