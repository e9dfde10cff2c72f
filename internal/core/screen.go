package core

import "strings"

// Screen is a fixed-size rune canvas. Snapshots draw into it and the
// terminal layer turns it into a string once per frame.
type Screen struct {
	w, h  int
	cells []rune
}

// NewScreen returns a blank canvas. Negative sizes are treated as zero.
func NewScreen(width, height int) *Screen {
	s := &Screen{}
	s.Resize(width, height)
	return s
}

func (s *Screen) Width() int  { return s.w }
func (s *Screen) Height() int { return s.h }

// Resize reallocates the canvas and blanks it. The caller redraws
// everything on the next frame, so old content is not carried over.
func (s *Screen) Resize(width, height int) {
	s.w, s.h = max(width, 0), max(height, 0)
	if cap(s.cells) >= s.w*s.h {
		s.cells = s.cells[:s.w*s.h]
	} else {
		s.cells = make([]rune, s.w*s.h)
	}
	s.Clear()
}

// Clear blanks every cell.
func (s *Screen) Clear() {
	for i := range s.cells {
		s.cells[i] = ' '
	}
}

func (s *Screen) inside(x, y int) bool {
	return x >= 0 && x < s.w && y >= 0 && y < s.h
}

// Set writes r at (x, y). Writes outside the canvas are dropped.
func (s *Screen) Set(x, y int, r rune) {
	if s.inside(x, y) {
		s.cells[y*s.w+x] = r
	}
}

// Get reads the cell at (x, y), or a space outside the canvas.
func (s *Screen) Get(x, y int) rune {
	if !s.inside(x, y) {
		return ' '
	}
	return s.cells[y*s.w+x]
}

// DrawText writes text left to right from (x, y), clipping at the edges.
func (s *Screen) DrawText(x, y int, text string) {
	col := x
	for _, r := range text {
		s.Set(col, y, r)
		col++
	}
}

// DrawTextCentered writes text on row y, centred horizontally.
func (s *Screen) DrawTextCentered(y int, text string) {
	s.DrawText((s.w-len([]rune(text)))/2, y, text)
}

// DrawRect fills r with fill.
func (s *Screen) DrawRect(r Rect, fill rune) {
	for y := max(r.Y, 0); y < min(r.Bottom(), s.h); y++ {
		for x := max(r.X, 0); x < min(r.Right(), s.w); x++ {
			s.cells[y*s.w+x] = fill
		}
	}
}

// DrawBox outlines r with single-line box characters.
func (s *Screen) DrawBox(r Rect) {
	if r.W < 2 || r.H < 2 {
		return
	}
	right, bottom := r.Right()-1, r.Bottom()-1
	s.DrawHLine(r.X+1, r.Y, r.W-2, '─')
	s.DrawHLine(r.X+1, bottom, r.W-2, '─')
	for y := r.Y + 1; y < bottom; y++ {
		s.Set(r.X, y, '│')
		s.Set(right, y, '│')
	}
	s.Set(r.X, r.Y, '┌')
	s.Set(right, r.Y, '┐')
	s.Set(r.X, bottom, '└')
	s.Set(right, bottom, '┘')
}

// DrawHLine writes n copies of r starting at (x, y).
func (s *Screen) DrawHLine(x, y, n int, r rune) {
	for i := 0; i < n; i++ {
		s.Set(x+i, y, r)
	}
}

// Row returns row y as a string. Rows outside the canvas are blank.
func (s *Screen) Row(y int) string {
	if y < 0 || y >= s.h {
		return strings.Repeat(" ", s.w)
	}
	return string(s.cells[y*s.w : (y+1)*s.w])
}

// String joins all rows with newlines.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow(len(s.cells) + s.h)
	for y := 0; y < s.h; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Row(y))
	}
	return sb.String()
}
