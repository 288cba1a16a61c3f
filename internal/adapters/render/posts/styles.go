package posts

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	section lipgloss.Style
	post    lipgloss.Style
	byline  lipgloss.Style
	date    lipgloss.Style
	summary lipgloss.Style
	body    lipgloss.Style
	empty   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		header:  lipgloss.NewStyle().Faint(true),
		section: lipgloss.NewStyle().MarginTop(1),
		post:    lipgloss.NewStyle().Bold(true),
		byline:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		date:    lipgloss.NewStyle().Faint(true),
		summary: lipgloss.NewStyle(),
		body:    lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true).Italic(true),
	}
}
