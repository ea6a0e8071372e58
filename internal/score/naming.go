package score

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dshills/codecritic/internal/profile"
)

const namingPenalty = 2

// Naming deducts for each declaration whose name fits none of the accepted
// patterns for its kind.
func Naming(in Input) Assessment {
	t := newTally(CategoryNaming)
	for _, d := range in.Outline.Declarations {
		if strings.Trim(d.Name, "_$") == "" {
			continue
		}
		conv := in.Profile.Convention(d.Kind)
		if conv.Accepts(d.Name) {
			continue
		}
		msg := fmt.Sprintf("Rename %s `%s` on line %d to follow %s", kindLabel(d.Kind), d.Name, d.Line, conv.Style)
		if s := convertCase(d.Name, conv.Style); s != "" && s != d.Name {
			msg += fmt.Sprintf(", for example `%s`", s)
		}
		t.add(Finding{
			Line:    d.Line,
			Subject: d.Name,
			Points:  namingPenalty,
			Message: msg + ".",
		})
	}
	return t.assessment()
}

func kindLabel(k profile.Kind) string {
	switch k {
	case profile.KindClass:
		return "class"
	case profile.KindFunction, profile.KindMethod:
		return "function"
	default:
		return "variable"
	}
}

// splitWords breaks an identifier at underscores, dashes and case changes.
func splitWords(name string) []string {
	var words []string
	var cur []rune
	runes := []rune(strings.Trim(name, "_$"))
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '$':
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// convertCase rewrites name in the given style; unknown styles give "".
func convertCase(name, style string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return ""
	}
	switch style {
	case "snake_case":
		return strings.Join(words, "_")
	case "camelCase":
		return words[0] + titleWords(words[1:])
	case "PascalCase":
		return titleWords(words)
	default:
		return ""
	}
}

func titleWords(words []string) string {
	var b strings.Builder
	for _, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}
