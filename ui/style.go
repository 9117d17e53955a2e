package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/peco/liveview/config"
)

func colorFor(c config.Color) tcell.Color {
	if rgb, ok := c.RGB(); ok {
		return tcell.NewHexColor(rgb)
	}
	if n, ok := c.Palette(); ok {
		return tcell.PaletteColor(n)
	}
	return tcell.ColorDefault
}

func tcellStyle(s config.Style) tcell.Style {
	return tcell.StyleDefault.
		Foreground(colorFor(s.Fg)).
		Background(colorFor(s.Bg)).
		Bold(s.Bold).
		Underline(s.Underline).
		Reverse(s.Reverse)
}
