package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	activeTab lipgloss.Style
	tab       lipgloss.Style
	header    lipgloss.Style
	selected  lipgloss.Style
	muted     lipgloss.Style
	errBlock  lipgloss.Style
	toast     lipgloss.Style
	toastErr  lipgloss.Style
}

func newStyles(dark bool) styles {
	fg, accent, muted := lipgloss.Color("0"), lipgloss.Color("25"), lipgloss.Color("244")
	if dark {
		fg, accent, muted = lipgloss.Color("252"), lipgloss.Color("75"), lipgloss.Color("241")
	}
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(fg),
		activeTab: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(accent).Padding(0, 1),
		tab:       lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		header:    lipgloss.NewStyle().Bold(true).Foreground(fg),
		selected:  lipgloss.NewStyle().Foreground(accent),
		muted:     lipgloss.NewStyle().Foreground(muted),
		errBlock: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(0, 1),
		toast:    lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
		toastErr: lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	}
}
