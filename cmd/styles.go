package cmd

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/eslsoft/kovoc/internal/entity"
)

type styles struct {
	header  lipgloss.Style
	prompt  lipgloss.Style
	hint    lipgloss.Style
	choice  lipgloss.Style
	correct lipgloss.Style
	wrong   lipgloss.Style
	muted   lipgloss.Style
	status  map[entity.MasteryStatus]lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		prompt:  r.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder()),
		hint:    r.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		choice:  r.NewStyle().PaddingLeft(2),
		correct: r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		wrong:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
		status: map[entity.MasteryStatus]lipgloss.Style{
			entity.StatusUnlearned: r.NewStyle().Foreground(lipgloss.Color("245")),
			entity.StatusLearning:  r.NewStyle().Foreground(lipgloss.Color("214")),
			entity.StatusMastered:  r.NewStyle().Foreground(lipgloss.Color("42")),
		},
	}
}

func (s styles) statusText(status entity.MasteryStatus) string {
	style, ok := s.status[status]
	if !ok {
		return string(status)
	}
	return style.Render(string(status))
}
