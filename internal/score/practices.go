package score

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/codecritic/internal/profile"
	"github.com/dshills/codecritic/internal/secrets"
)

// Point costs of best-practice violations. Caps bound repeated findings of
// the same kind.
const (
	unhandledCost    = 5
	elementCost      = 2
	elementCap       = 6
	legacyCap        = 4
	looseEqualityCap = 3
	debugOutputCap   = 2
	noModernCost     = 2
	typeHintCost     = 3
	typeHintCap      = 9
	bareExceptCost   = 2
	bareExceptCap    = 4
	resourceCost     = 3
	resourceCap      = 6
	wildcardCost     = 2
	unsafeCost       = 3
	unsafeCap        = 6
	effectCost       = 2
	effectCap        = 4
	listenerCost     = 2
	secretCost       = 3
	secretCap        = 6
)

// BestPractices applies every idiom check the profile has indicators for,
// plus the hardcoded secret check shared by all languages.
func BestPractices(in Input) Assessment {
	t := newTally(CategoryBestPractices)
	ind := in.Profile.Indicators
	handled := len(matchingLines(in, ind.ErrorHandling)) > 0

	if lines := matchingLines(in, ind.Async); len(lines) > 0 && !handled {
		t.add(Finding{
			Line:    lines[0],
			Subject: "async error handling",
			Points:  unhandledCost,
			Message: fmt.Sprintf("Handle failures of the asynchronous call on line %d with try/catch around await or a .catch() handler.", lines[0]),
		})
	}
	if lines := matchingLines(in, ind.Risky); len(lines) > 0 && !handled {
		t.add(Finding{
			Line:    lines[0],
			Subject: "error handling",
			Points:  unhandledCost,
			Message: fmt.Sprintf("Wrap the I/O or parsing call on line %d in try/except and handle the specific exceptions it raises.", lines[0]),
		})
	}

	checkElements(in, t)

	legacy := matchingLines(in, ind.Legacy)
	t.group(legacy, 1, legacyCap, "var",
		fmt.Sprintf("Replace var with const or let (%s).", describeLines(legacy)))
	loose := matchingLines(in, ind.LooseEquality)
	t.group(loose, 1, looseEqualityCap, "loose equality",
		fmt.Sprintf("Use strict equality (=== and !==) instead of == and != (%s).", describeLines(loose)))
	debug := matchingLines(in, ind.DebugOutput)
	t.group(debug, 1, debugOutputCap, "debug output",
		fmt.Sprintf("Remove console.log debugging output (%s).", describeLines(debug)))
	if !ind.Modern.Empty() && in.Metrics.CodeLines > 0 && len(matchingLines(in, ind.Modern)) == 0 {
		t.add(Finding{
			Subject: "modern syntax",
			Points:  noModernCost,
			Message: "Adopt modern syntax such as const and let, arrow functions and template literals.",
		})
	}

	checkTypeHints(in, t)

	bare := matchingLines(in, ind.BareExcept)
	t.group(bare, bareExceptCost, bareExceptCap, "bare except",
		fmt.Sprintf("Catch specific exception types instead of a bare except: (%s).", describeLines(bare)))

	checkResources(in, t)

	if wild := matchingLines(in, ind.WildcardImport); len(wild) > 0 {
		t.add(Finding{
			Lines:   wild,
			Subject: "wildcard import",
			Points:  wildcardCost,
			Message: fmt.Sprintf("Replace the wildcard import with explicit names (%s).", describeLines(wild)),
		})
	}

	unsafe := matchingLines(in, ind.Unsafe)
	t.group(unsafe, unsafeCost, unsafeCap, "unsafe call",
		fmt.Sprintf("Avoid evaluating dynamic code or injecting raw HTML (%s).", describeLines(unsafe)))

	checkEffects(in, t)

	if subs := matchingLines(in, ind.Subscribe); len(subs) > 0 && len(matchingLines(in, ind.Unsubscribe)) == 0 {
		t.add(Finding{
			Line:    subs[0],
			Subject: "cleanup",
			Points:  listenerCost,
			Message: fmt.Sprintf("Remove the listener or timer registered on line %d when it is no longer needed.", subs[0]),
		})
	}

	checkSecrets(in, t)
	return t.assessment()
}

// joinedCode returns the stripped code as one string for multi-line matches.
func joinedCode(in Input) string {
	return strings.Join(in.Outline.Code, "\n")
}

func lineAt(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}

func checkElements(in Input, t *tally) {
	ind := in.Profile.Indicators
	if len(ind.Elements) == 0 {
		return
	}
	text := joinedCode(in)
	type hit struct {
		line int
		el   profile.Element
	}
	var hits []hit
	for _, el := range ind.Elements {
		for _, loc := range el.FindAll(text) {
			tag := text[loc[0]:loc[1]]
			if el.When != "" && !strings.Contains(tag, el.When) {
				continue
			}
			if ind.Accessibility.Match(tag) || containsAny(tag, el.Require) {
				continue
			}
			if el.Empty && !emptyElement(text, el.Tag, loc[1]) {
				continue
			}
			hits = append(hits, hit{line: lineAt(text, loc[0]), el: el})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].line < hits[j].line })

	budget := elementCap
	for _, h := range hits {
		if budget <= 0 {
			break
		}
		pts := min(elementCost, budget)
		budget -= pts
		t.add(Finding{
			Line:    h.line,
			Subject: "<" + h.el.Tag + ">",
			Points:  pts,
			Message: fmt.Sprintf("The <%s> on line %d %s.", h.el.Tag, h.line, h.el.Reason),
		})
	}
}

var markup = regexp.MustCompile(`<[^>]*>`)

// emptyElement reports whether the element whose opening tag ends at end
// has no text content before its closing tag.
func emptyElement(text, tag string, end int) bool {
	if strings.HasSuffix(text[:end], "/>") {
		return true
	}
	rest := text[end:]
	i := strings.Index(rest, "</"+tag)
	if i < 0 {
		return false
	}
	return strings.TrimSpace(markup.ReplaceAllString(rest[:i], "")) == ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func checkTypeHints(in Input, t *tally) {
	hints := in.Profile.Indicators.TypeHints
	if hints.Empty() {
		return
	}
	budget := typeHintCap
	for _, u := range in.Outline.Units {
		if budget <= 0 {
			break
		}
		if u.Kind == profile.KindClass || hints.Match(in.Outline.Signature(u)) {
			continue
		}
		pts := min(typeHintCost, budget)
		budget -= pts
		t.add(Finding{
			Line:    u.StartLine,
			Subject: u.Label(),
			Points:  pts,
			Message: fmt.Sprintf("Add type hints to the parameters and return value of `%s` on line %d.", u.Label(), u.StartLine),
		})
	}
}

func checkResources(in Input, t *tally) {
	ind := in.Profile.Indicators
	if ind.Resources.Empty() {
		return
	}
	budget := resourceCap
	for _, n := range matchingLines(in, ind.Resources) {
		if budget <= 0 {
			break
		}
		if ind.ContextManager.Match(in.Outline.Code[n-1]) {
			continue
		}
		pts := min(resourceCost, budget)
		budget -= pts
		t.add(Finding{
			Line:    n,
			Subject: "resource",
			Points:  pts,
			Message: fmt.Sprintf("Acquire the resource on line %d in a with statement so it is always released.", n),
		})
	}
}

// checkEffects flags effect hooks whose call does not end with a dependency
// array.
func checkEffects(in Input, t *tally) {
	effects := in.Profile.Indicators.Effects
	if effects.Empty() {
		return
	}
	text := joinedCode(in)
	var lines []int
	for _, loc := range effects.FindAll(text) {
		args, ok := callArguments(text, loc[1]-1)
		if !ok {
			continue
		}
		if !strings.HasSuffix(strings.TrimSpace(args), "]") {
			lines = append(lines, lineAt(text, loc[0]))
		}
	}
	t.group(lines, effectCost, effectCap, "effect dependencies",
		fmt.Sprintf("Pass a dependency array to each effect hook so it does not run after every render (%s).", describeLines(lines)))
}

// callArguments returns the text between the parenthesis at open and its
// match.
func callArguments(text string, open int) (string, bool) {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return text[open+1 : i], true
			}
		}
	}
	return "", false
}

func checkSecrets(in Input, t *tally) {
	budget := secretCap
	for _, s := range secrets.Find(in.Text) {
		if budget <= 0 {
			break
		}
		pts := min(secretCost, budget)
		budget -= pts
		t.add(Finding{
			Line:    s.Line,
			Subject: s.Kind,
			Points:  pts,
			Message: fmt.Sprintf("Move the hardcoded %s on line %d into configuration or an environment variable.", s.Kind, s.Line),
		})
	}
}
