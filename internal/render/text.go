package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/codecritic/internal/engine"
	"github.com/dshills/codecritic/internal/score"
)

// barWidth is the number of cells in a full category bar.
const barWidth = 20

// Score bands for the overall badge.
const (
	goodScore = 80
	fairScore = 50
)

type palette struct {
	title  lipgloss.Style
	good   lipgloss.Style
	fair   lipgloss.Style
	poor   lipgloss.Style
	label  lipgloss.Style
	filled lipgloss.Style
	empty  lipgloss.Style
	item   lipgloss.Style
}

// newPalette binds styles to w so colour is only emitted for terminals.
func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	return palette{
		title:  r.NewStyle().Bold(true),
		good:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		fair:   r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		poor:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		label:  r.NewStyle().Width(26),
		filled: r.NewStyle().Foreground(lipgloss.Color("6")),
		empty:  r.NewStyle().Foreground(lipgloss.Color("240")),
		item:   r.NewStyle().PaddingLeft(2),
	}
}

// band picks the style for a score out of top.
func (p palette) band(points, top int) lipgloss.Style {
	switch {
	case points*100 >= goodScore*top:
		return p.good
	case points*100 >= fairScore*top:
		return p.fair
	default:
		return p.poor
	}
}

// Text writes a terminal report: the overall badge, one bar per category
// and the recommendations.
func Text(w io.Writer, r *engine.Result, file string) error {
	p := newPalette(w)
	var b strings.Builder

	heading := "CodeCritic"
	if file != "" {
		heading += " · " + file
	}
	b.WriteString(p.title.Render(heading) + "\n\n")
	overall := fmt.Sprintf("%d / %d", r.OverallScore, score.MaxTotal)
	fmt.Fprintf(&b, "Overall  %s\n\n", p.band(r.OverallScore, score.MaxTotal).Render(overall))

	for _, c := range score.Categories {
		points := r.Breakdown.Get(c)
		fmt.Fprintf(&b, "%s %s %s\n",
			p.label.Render(c.Title()),
			bar(p, points, c.Max()),
			p.band(points, c.Max()).Render(fmt.Sprintf("%2d/%d", points, c.Max())))
	}

	b.WriteString("\n" + p.title.Render("Recommendations") + "\n")
	for i, rec := range r.Recommendations {
		b.WriteString(p.item.Render(fmt.Sprintf("%d. %s", i+1, rec)) + "\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("render.Text: %w", err)
	}
	return nil
}

func bar(p palette, points, top int) string {
	filled := 0
	if top > 0 {
		filled = points * barWidth / top
	}
	filled = max(0, min(filled, barWidth))
	return p.filled.Render(strings.Repeat("█", filled)) + p.empty.Render(strings.Repeat("░", barWidth-filled))
}
