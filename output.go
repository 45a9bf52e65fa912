package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"io"
	"os"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

// styler applies lipgloss styles only when writing to a terminal.
type styler struct {
	enabled bool
}

func newStyler(w io.Writer) styler {
	f, ok := w.(*os.File)
	if !ok {
		return styler{}
	}
	fd := f.Fd()
	return styler{enabled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

func (s styler) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}
