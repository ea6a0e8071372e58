package engine

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codecritic/internal/recommend"
	"github.com/dshills/codecritic/internal/score"
)

const untypedPython = "def foo():\n    return 1\n"

var samples = []struct {
	name string
	lang string
	src  string
}{
	{"python function", "python", untypedPython},
	{"python class", "python", "class Store:\n    \"\"\"Holds items.\"\"\"\n\n    def add(self, item: str) -> None:\n        \"\"\"Add one item.\"\"\"\n        self.items.append(item)\n"},
	{"js arrow", "javascript", "const add = (a, b) => a + b;\n"},
	{"jsx component", "javascript", "function Card(props) {\n  return <img src={props.src} />;\n}\n"},
	{"js messy", "javascript", "var user_name = 'x';\nif (user_name == 'y') { console.log(user_name) }\n"},
	{"whitespace only", "python", "  \n\n\t\n"},
	{"comments only", "javascript", "// nothing to see\n/* still nothing */\n"},
}

func TestAnalyzeInvariants(t *testing.T) {
	for _, s := range samples {
		t.Run(s.name, func(t *testing.T) {
			res, err := Analyze(s.src, s.lang)
			require.NoError(t, err)

			assert.Equal(t, res.Breakdown.Sum(), res.OverallScore, "overall must equal the sum of categories")
			assert.GreaterOrEqual(t, res.OverallScore, 0)
			assert.LessOrEqual(t, res.OverallScore, score.MaxTotal)
			for _, c := range score.Categories {
				got := res.Breakdown.Get(c)
				assert.GreaterOrEqual(t, got, 0, c)
				assert.LessOrEqual(t, got, c.Max(), c)
			}
			assert.GreaterOrEqual(t, len(res.Recommendations), recommend.MinRecommendations)
			assert.LessOrEqual(t, len(res.Recommendations), recommend.MaxRecommendations)
			for _, r := range res.Recommendations {
				assert.NotEmpty(t, strings.TrimSpace(r))
			}
		})
	}
}

func TestAnalyzeUntypedFunction(t *testing.T) {
	res, err := Analyze(untypedPython, "python")
	require.NoError(t, err)

	want := Breakdown{
		Naming:        10,
		Modularity:    20,
		Comments:      2,
		Formatting:    15,
		Reusability:   15,
		BestPractices: 17,
	}
	assert.Equal(t, want, res.Breakdown)
	assert.Equal(t, 79, res.OverallScore)
	require.Len(t, res.Recommendations, 3)
	assert.Contains(t, res.Recommendations[1], "type hints")
	assert.Contains(t, res.Recommendations[2], "foo")
}

func TestAnalyzeEmpty(t *testing.T) {
	for _, src := range []string{"", " \n\t\n"} {
		res, err := Analyze(src, "javascript")
		require.NoError(t, err)
		assert.Equal(t, 100, res.OverallScore)
		require.NotEmpty(t, res.Recommendations)
		assert.Equal(t, recommend.EmptyMessage, res.Recommendations[0])
		assert.Len(t, res.Recommendations, recommend.MinRecommendations)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	src := "function load_data(file_path) {\n  var x = fetch(file_path);\n  return x;\n}\n"
	first, err := Analyze(src, "javascript")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Analyze(src, "javascript")
		require.NoError(t, err)
		assert.Equal(t, first.OverallScore, again.OverallScore)
		assert.Equal(t, first.Breakdown, again.Breakdown)
		assert.Equal(t, first.Recommendations, again.Recommendations)
	}
}

func TestAnalyzeConcurrent(t *testing.T) {
	want, err := Analyze(untypedPython, "python")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := Analyze(untypedPython, "python")
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()
	for i, res := range results {
		require.NotNil(t, res, "goroutine %d failed", i)
		assert.Equal(t, want.Breakdown, res.Breakdown)
		assert.Equal(t, want.Recommendations, res.Recommendations)
	}
}

func TestAnalyzeLanguageSensitivity(t *testing.T) {
	src := "function load_data(file_path) {\n  return file_path;\n}\n"
	asJS, err := Analyze(src, "javascript")
	require.NoError(t, err)
	asPy, err := Analyze(src, "python")
	require.NoError(t, err)

	assert.Less(t, asJS.Breakdown.Naming, 10, "snake_case function names break JavaScript conventions")
	assert.Equal(t, 10, asPy.Breakdown.Naming)
	assert.NotEqual(t, asJS.Breakdown, asPy.Breakdown)
}

func TestAnalyzeDocstringNeverLowersComments(t *testing.T) {
	before, err := Analyze(untypedPython, "python")
	require.NoError(t, err)
	after, err := Analyze("def foo():\n    \"\"\"Return one.\"\"\"\n    return 1\n", "python")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, after.Breakdown.Comments, before.Breakdown.Comments)
	assert.GreaterOrEqual(t, after.OverallScore, before.OverallScore)
}

func TestAnalyzeRejectsAliases(t *testing.T) {
	for _, tag := range []string{"py", "js", "jsx", "JS", "Python", " python "} {
		res, err := Analyze("x = 1\n", tag)
		assert.Nil(t, res, tag)
		require.Error(t, err, tag)
		assert.True(t, errors.Is(err, ErrUnsupportedLanguage), tag)
	}
}

func TestAnalyzeUnsupportedLanguage(t *testing.T) {
	_, err := Analyze("fn main() {}", "rust")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedLanguage))

	var ule *UnsupportedLanguageError
	require.True(t, errors.As(err, &ule))
	assert.Equal(t, "rust", ule.Tag)
	assert.Contains(t, err.Error(), "rust")
}

func TestAnalyzeWithInvalidThresholds(t *testing.T) {
	th := score.DefaultThresholds()
	th.MaxLineLength = 0
	_, err := AnalyzeWith("x = 1\n", "python", th)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedLanguage))
}

func TestAnalyzeWithStricterLineLength(t *testing.T) {
	src := "def foo() -> int:\n    \"\"\"Return a value.\"\"\"\n    return 1 + 1 + 1 + 1 + 1\n"
	loose, err := Analyze(src, "python")
	require.NoError(t, err)

	th := score.DefaultThresholds()
	th.MaxLineLength = 20
	strict, err := AnalyzeWith(src, "python", th)
	require.NoError(t, err)
	assert.Less(t, strict.Breakdown.Formatting, loose.Breakdown.Formatting)
}

func TestResultJSONShape(t *testing.T) {
	res, err := Analyze(untypedPython, "python")
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	assert.Len(t, top, 3)
	for _, key := range []string{"overall_score", "breakdown", "recommendations"} {
		assert.Contains(t, top, key)
	}

	var breakdown map[string]int
	require.NoError(t, json.Unmarshal(top["breakdown"], &breakdown))
	assert.Equal(t, map[string]int{
		"naming":         10,
		"modularity":     20,
		"comments":       2,
		"formatting":     15,
		"reusability":    15,
		"best_practices": 17,
	}, breakdown)
}

func TestResultCarriesFindings(t *testing.T) {
	res, err := Analyze(untypedPython, "python")
	require.NoError(t, err)
	assert.Equal(t, "python", string(res.Language))
	require.Len(t, res.Categories, len(score.Categories))

	lost := 0
	for _, f := range res.Findings {
		lost += f.Points
	}
	assert.Equal(t, score.MaxTotal-res.OverallScore, lost)
}
