// Package profile loads the built-in language profiles that drive scoring.
package profile

import (
	"embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/codecritic/internal/lexical"
	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Language is a supported language tag.
type Language string

const (
	JavaScript Language = "javascript"
	Python     Language = "python"
)

func (l Language) Valid() bool {
	switch l {
	case JavaScript, Python:
		return true
	}
	return false
}

// BlockStyle says how code blocks are delimited.
type BlockStyle string

const (
	BlockBraces      BlockStyle = "braces"
	BlockIndentation BlockStyle = "indentation"
)

// Kind classifies a declaration or function unit.
type Kind string

const (
	KindVariable Kind = "variable"
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
	KindClass    Kind = "class"
)

// ErrUnknownLanguage is returned by Lookup for tags outside the supported set.
var ErrUnknownLanguage = errors.New("unknown language")

// Profile is the declarative rule set for one language.
type Profile struct {
	Language     Language      `yaml:"language"`
	Name         string        `yaml:"name"`
	Extensions   []string      `yaml:"extensions"`
	Blocks       BlockStyle    `yaml:"blocks"`
	Comments     Comments      `yaml:"comments"`
	Naming       Naming        `yaml:"naming"`
	Declarations []Declaration `yaml:"declarations"`
	Boundaries   []Boundary    `yaml:"boundaries"`
	Keywords     []string      `yaml:"keywords"`
	Indicators   Indicators    `yaml:"indicators"`
	Reminders    []string      `yaml:"reminders"`

	keywords map[string]bool
}

// Comments describes comment and docstring syntax.
type Comments struct {
	Line         []string `yaml:"line"`
	BlockStart   string   `yaml:"block_start"`
	BlockEnd     string   `yaml:"block_end"`
	DocStart     string   `yaml:"doc_start"`
	StringBlocks []string `yaml:"string_blocks"`
	Docstrings   bool     `yaml:"docstrings"`
	// DocName is how recommendations refer to a documentation comment.
	DocName string `yaml:"doc_name"`
}

// Naming maps declaration kinds to their conventions.
type Naming struct {
	Variable Convention `yaml:"variable"`
	Function Convention `yaml:"function"`
	Class    Convention `yaml:"class"`
}

// Convention is a named case style with the patterns that satisfy it.
type Convention struct {
	Style  string   `yaml:"style"`
	Accept []string `yaml:"accept"`

	accept []*regexp.Regexp
}

// Declaration finds identifier declarations; group 1 is the name.
type Declaration struct {
	Kind    Kind   `yaml:"kind"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// Boundary finds the start of a function unit; group 1 is the name.
type Boundary struct {
	Kind    Kind   `yaml:"kind"`
	Pattern string `yaml:"pattern"`
	// Arrow marks arrow functions whose body may be an expression.
	Arrow bool `yaml:"arrow"`

	re *regexp.Regexp
}

// Indicators are pattern tables used by the best-practices scorer.
type Indicators struct {
	Modern         Patterns `yaml:"modern"`
	Legacy         Patterns `yaml:"legacy"`
	Async          Patterns `yaml:"async"`
	ErrorHandling  Patterns `yaml:"error_handling"`
	BareExcept     Patterns `yaml:"bare_except"`
	Risky          Patterns `yaml:"risky"`
	Resources      Patterns `yaml:"resources"`
	ContextManager Patterns `yaml:"context_manager"`
	WildcardImport Patterns `yaml:"wildcard_import"`
	LooseEquality  Patterns `yaml:"loose_equality"`
	DebugOutput    Patterns `yaml:"debug_output"`
	Accessibility  Patterns `yaml:"accessibility"`
	Unsafe         Patterns `yaml:"unsafe"`
	// Effects are hook calls whose last argument should be a dependency array.
	Effects Patterns `yaml:"effects"`
	// Subscribe calls should be paired with one of Unsubscribe.
	Subscribe   Patterns `yaml:"subscribe"`
	Unsubscribe Patterns `yaml:"unsubscribe"`
	// Elements are JSX tags that need one of their accessibility attributes.
	Elements []Element `yaml:"elements"`
	// TypeHints apply to function signatures.
	TypeHints Patterns `yaml:"type_hints"`
}

// Element is a JSX tag together with the attributes that make it accessible.
type Element struct {
	Tag string `yaml:"tag"`
	// When limits the check to tags carrying this attribute.
	When    string   `yaml:"when"`
	Require []string `yaml:"require"`
	// Empty limits the check to elements with no text content.
	Empty  bool   `yaml:"empty"`
	Reason string `yaml:"reason"`

	re *regexp.Regexp
}

// Patterns is a list of regular expressions compiled at load time.
type Patterns struct {
	Raw []string
	res []*regexp.Regexp
}

func (p *Patterns) UnmarshalYAML(node *yaml.Node) error {
	return node.Decode(&p.Raw)
}

// Match reports whether any pattern matches s.
func (p Patterns) Match(s string) bool {
	for _, re := range p.res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Count returns the number of non-overlapping matches of all patterns in s.
func (p Patterns) Count(s string) int {
	n := 0
	for _, re := range p.res {
		n += len(re.FindAllStringIndex(s, -1))
	}
	return n
}

// Empty reports whether the table has no patterns.
func (p Patterns) Empty() bool { return len(p.res) == 0 }

// FindAll returns the byte ranges of every match of every pattern in s,
// ordered by position.
func (p Patterns) FindAll(s string) [][]int {
	var out [][]int
	for _, re := range p.res {
		out = append(out, re.FindAllStringIndex(s, -1)...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

var (
	loadOnce sync.Once
	loaded   map[Language]*Profile
	loadErr  error
)

func builtins() (map[Language]*Profile, error) {
	loadOnce.Do(func() {
		loaded, loadErr = loadAll()
	})
	return loaded, loadErr
}

func loadAll() (map[Language]*Profile, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("profile.loadAll: %w", err)
	}
	out := make(map[Language]*Profile, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := builtinFS.ReadFile("builtin/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("profile.loadAll: %w", err)
		}
		p, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("profile.loadAll: %s: %w", e.Name(), err)
		}
		out[p.Language] = p
	}
	return out, nil
}

// Parse decodes and compiles a profile definition.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile.Parse: %w", err)
	}
	if !p.Language.Valid() {
		return nil, fmt.Errorf("profile.Parse: invalid language %q", p.Language)
	}
	if err := p.compile(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) compile() error {
	p.keywords = make(map[string]bool, len(p.Keywords))
	for _, k := range p.Keywords {
		p.keywords[k] = true
	}
	for _, c := range []*Convention{&p.Naming.Variable, &p.Naming.Function, &p.Naming.Class} {
		for _, raw := range c.Accept {
			re, err := regexp.Compile(raw)
			if err != nil {
				return fmt.Errorf("naming %q: %w", raw, err)
			}
			c.accept = append(c.accept, re)
		}
	}
	for i := range p.Declarations {
		re, err := regexp.Compile(p.Declarations[i].Pattern)
		if err != nil {
			return fmt.Errorf("declaration %q: %w", p.Declarations[i].Pattern, err)
		}
		p.Declarations[i].re = re
	}
	for i := range p.Boundaries {
		re, err := regexp.Compile(p.Boundaries[i].Pattern)
		if err != nil {
			return fmt.Errorf("boundary %q: %w", p.Boundaries[i].Pattern, err)
		}
		p.Boundaries[i].re = re
	}
	for i := range p.Indicators.Elements {
		el := &p.Indicators.Elements[i]
		el.re = regexp.MustCompile(`<` + regexp.QuoteMeta(el.Tag) + `[\s/>]`)
	}
	ind := &p.Indicators
	for _, pt := range []*Patterns{
		&ind.Modern, &ind.Legacy, &ind.Async, &ind.ErrorHandling, &ind.BareExcept,
		&ind.Risky, &ind.Resources, &ind.ContextManager, &ind.WildcardImport,
		&ind.LooseEquality, &ind.DebugOutput, &ind.Accessibility, &ind.TypeHints,
		&ind.Unsafe, &ind.Effects, &ind.Subscribe, &ind.Unsubscribe,
	} {
		for _, raw := range pt.Raw {
			re, err := regexp.Compile(raw)
			if err != nil {
				return fmt.Errorf("indicator %q: %w", raw, err)
			}
			pt.res = append(pt.res, re)
		}
	}
	return nil
}

// Lookup returns the built-in profile for a language tag.
func Lookup(tag string) (*Profile, error) {
	all, err := builtins()
	if err != nil {
		return nil, err
	}
	lang := Canonical(tag)
	p, ok := all[lang]
	if !ok {
		return nil, fmt.Errorf("profile.Lookup: %w: %q", ErrUnknownLanguage, tag)
	}
	return p, nil
}

// Canonical normalizes a language tag, resolving the short aliases.
func Canonical(tag string) Language {
	switch t := strings.ToLower(strings.TrimSpace(tag)); t {
	case "js", "jsx":
		return JavaScript
	case "py":
		return Python
	default:
		return Language(t)
	}
}

// ForExtension returns the profile whose extensions include ext.
func ForExtension(ext string) (*Profile, bool) {
	all, err := builtins()
	if err != nil {
		return nil, false
	}
	ext = strings.ToLower(ext)
	for _, name := range sortedLanguages(all) {
		p := all[name]
		for _, e := range p.Extensions {
			if e == ext {
				return p, true
			}
		}
	}
	return nil, false
}

// List returns the names of all built-in profiles.
func List() ([]string, error) {
	all, err := builtins()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, l := range sortedLanguages(all) {
		names = append(names, string(l))
	}
	return names, nil
}

func sortedLanguages(all map[Language]*Profile) []Language {
	langs := make([]Language, 0, len(all))
	for l := range all {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Syntax returns the lexical view of the profile's comment rules.
func (p *Profile) Syntax() lexical.Syntax {
	return lexical.Syntax{
		LineComments: p.Comments.Line,
		BlockStart:   p.Comments.BlockStart,
		BlockEnd:     p.Comments.BlockEnd,
		DocStart:     p.Comments.DocStart,
		StringBlocks: p.Comments.StringBlocks,
		Docstrings:   p.Comments.Docstrings,
	}
}

// IsKeyword reports whether name is reserved and never an identifier.
func (p *Profile) IsKeyword(name string) bool {
	return p.keywords[name]
}

// Convention returns the naming convention for a declaration kind.
func (p *Profile) Convention(k Kind) Convention {
	switch k {
	case KindClass:
		return p.Naming.Class
	case KindFunction, KindMethod:
		return p.Naming.Function
	default:
		return p.Naming.Variable
	}
}

// Accepts reports whether name satisfies the convention.
func (c Convention) Accepts(name string) bool {
	for _, re := range c.accept {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Match returns the declared name when the line matches the declaration.
func (d Declaration) Match(line string) (string, bool) {
	m := d.re.FindStringSubmatch(line)
	if m == nil || len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// Match returns the captured name and the byte offset just past the match.
func (b Boundary) Match(line string) (name string, end int, ok bool) {
	loc := b.re.FindStringSubmatchIndex(line)
	if loc == nil {
		return "", 0, false
	}
	if len(loc) >= 4 && loc[2] >= 0 {
		name = line[loc[2]:loc[3]]
	}
	return name, loc[1], true
}

// FindAll returns the byte ranges of every opening tag of the element. A
// range ends just past the closing '>' outside any {} expression.
func (e Element) FindAll(text string) [][]int {
	locs := e.re.FindAllStringIndex(text, -1)
	for _, loc := range locs {
		loc[1] = tagEnd(text, loc[1]-1)
	}
	return locs
}

func tagEnd(text string, from int) int {
	depth := 0
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '>':
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(text)
}
