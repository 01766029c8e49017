package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// The neon palette: cyan for playback, violet for chrome, near-black
// background left to the terminal.
var styles = NewPalette("#9B5DE5", "#00F5FF", "#FF5D8F", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	accent lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	dim    lipgloss.Style
}

func NewPalette(t, a, e, w, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		accent: NewBold(a),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		dim:    NewStyle(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
