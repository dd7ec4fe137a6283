package output

import "strings"

// boxRunes is the character set used to outline rectangles
type boxRunes struct {
	corner [4]rune // top-left, top-right, bottom-left, bottom-right
	h, v   rune
}

var (
	asciiBox   = boxRunes{corner: [4]rune{'+', '+', '+', '+'}, h: '-', v: '|'}
	unicodeBox = boxRunes{corner: [4]rune{'┌', '┐', '└', '┘'}, h: '─', v: '│'}
)

// canvas is a fixed-size character grid. Writes outside it are ignored.
type canvas struct {
	w, h  int
	cells [][]rune
	box   boxRunes
}

func newCanvas(w, h int, unicode bool) *canvas {
	cells := make([][]rune, h)
	for y := range cells {
		cells[y] = []rune(strings.Repeat(" ", w))
	}
	box := asciiBox
	if unicode {
		box = unicodeBox
	}
	return &canvas{w: w, h: h, cells: cells, box: box}
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = r
	}
}

// rect outlines a rectangle and blanks its interior so later windows
// drawn on top hide the ones beneath.
func (c *canvas) rect(x, y, w, h int) {
	if w < 2 || h < 2 {
		return
	}
	for dy := 1; dy < h-1; dy++ {
		for dx := 1; dx < w-1; dx++ {
			c.set(x+dx, y+dy, ' ')
		}
	}
	for dx := 1; dx < w-1; dx++ {
		c.set(x+dx, y, c.box.h)
		c.set(x+dx, y+h-1, c.box.h)
	}
	for dy := 1; dy < h-1; dy++ {
		c.set(x, y+dy, c.box.v)
		c.set(x+w-1, y+dy, c.box.v)
	}
	c.set(x, y, c.box.corner[0])
	c.set(x+w-1, y, c.box.corner[1])
	c.set(x, y+h-1, c.box.corner[2])
	c.set(x+w-1, y+h-1, c.box.corner[3])
}

func (c *canvas) text(x, y int, s string) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r)
	}
}

func (c *canvas) String() string {
	lines := make([]string, c.h)
	for y, row := range c.cells {
		lines[y] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}
