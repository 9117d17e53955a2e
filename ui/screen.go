package ui

import (
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const tabWidth = 4

// printString draws msg at (x, y) without going past maxX, and returns
// the column after the last cell drawn. Tabs advance to the next tab
// stop and invalid bytes are drawn as '?'.
func printString(s tcell.Screen, x, y, maxX int, msg string, style tcell.Style) int {
	for len(msg) > 0 && x < maxX {
		c, n := utf8.DecodeRuneInString(msg)
		if c == utf8.RuneError && n <= 1 {
			c = '?'
		}
		msg = msg[n:]

		if c == '\t' {
			next := min(maxX, (x/tabWidth+1)*tabWidth)
			for ; x < next; x++ {
				s.SetContent(x, y, ' ', nil, style)
			}
			continue
		}

		w := runewidth.RuneWidth(c)
		if w == 0 {
			continue
		}
		if x+w > maxX {
			break
		}
		s.SetContent(x, y, c, nil, style)
		x += w
	}
	return x
}

// fillRow paints the row from x to the right edge.
func fillRow(s tcell.Screen, x, y int, style tcell.Style) {
	w, _ := s.Size()
	for ; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}
