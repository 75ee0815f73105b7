package nkklcd

import "math"

// DrawLine draws a line from (x0, y0) to (x1, y1), both ends included.
// Pixels off the display are skipped.
func (d *Dev) DrawLine(x0, y0, x1, y1 int, on bool) {
	// Bresenham
	dx, sx := abs(x1-x0), 1
	if x0 >= x1 {
		sx = -1
	}
	dy, sy := -abs(y1-y0), 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		d.SetPixel(x0, y0, on)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCenteredHLine draws a centered horizontal line through (cx, cy),
// extending half pixels to each side.
func (d *Dev) DrawCenteredHLine(cx, cy, half int, on bool) {
	d.DrawLine(cx-half, cy, cx+half, cy, on)
}

// DrawCenteredVLine draws a centered vertical line through (cx, cy),
// extending half pixels up and down.
func (d *Dev) DrawCenteredVLine(cx, cy, half int, on bool) {
	d.DrawLine(cx, cy-half, cx, cy+half, on)
}

// DrawCross draws a + centered on (cx, cy).
func (d *Dev) DrawCross(cx, cy, half int, on bool) {
	d.DrawCenteredHLine(cx, cy, half, on)
	d.DrawCenteredVLine(cx, cy, half, on)
}

// DrawRect draws the outline of the w by h rectangle at (x, y).
func (d *Dev) DrawRect(x, y, w, h int, on bool) {
	if w <= 0 || h <= 0 {
		return
	}
	d.DrawLine(x, y, x+w-1, y, on)
	d.DrawLine(x, y+h-1, x+w-1, y+h-1, on)
	d.DrawLine(x, y, x, y+h-1, on)
	d.DrawLine(x+w-1, y, x+w-1, y+h-1, on)
}

// FillRect fills the w by h rectangle at (x, y).
func (d *Dev) FillRect(x, y, w, h int, on bool) {
	if w <= 0 || h <= 0 {
		return
	}
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			d.SetPixel(xx, yy, on)
		}
	}
}

// DrawCircle draws a circle of radius r centered on (cx, cy).
func (d *Dev) DrawCircle(cx, cy, r int, on bool) {
	if r < 0 {
		return
	}
	// Midpoint circle, one octant mirrored eight ways.
	x, y := r, 0
	err := 1 - x
	for x >= y {
		d.SetPixel(cx+x, cy+y, on)
		d.SetPixel(cx+y, cy+x, on)
		d.SetPixel(cx-y, cy+x, on)
		d.SetPixel(cx-x, cy+y, on)
		d.SetPixel(cx-x, cy-y, on)
		d.SetPixel(cx-y, cy-x, on)
		d.SetPixel(cx+y, cy-x, on)
		d.SetPixel(cx+x, cy-y, on)

		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

// FillCircle fills a disc of radius r centered on (cx, cy).
func (d *Dev) FillCircle(cx, cy, r int, on bool) {
	if r < 0 {
		return
	}
	for y := -r; y <= r; y++ {
		span := int(math.Sqrt(float64(r*r-y*y)) + 0.5)
		d.DrawLine(cx-span, cy+y, cx+span, cy+y, on)
	}
}

// DrawDiagonalTest clears the display and draws a diagonal from the top left
// corner.
func (d *Dev) DrawDiagonalTest() {
	d.Clear()
	n := min(d.rect.Dx(), d.rect.Dy())
	for i := 0; i < n; i++ {
		d.SetPixel(i, i, true)
	}
}

// DrawBarsTest fills the display with vertical bars two pixels wide.
func (d *Dev) DrawBarsTest() {
	d.Clear()
	for y := 0; y < d.rect.Dy(); y++ {
		for x := 0; x < d.rect.Dx(); x++ {
			d.SetPixel(x, y, (x/2)%2 == 0)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
