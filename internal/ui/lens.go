package ui

import (
	"image"
	"image/color"
)

// LensMask builds the alpha mask applied to the magnified crop. With a
// cornerTrim of zero the inscribed circle is opaque and everything outside
// it transparent. Otherwise the four cornerTrim x cornerTrim corner
// triangles are cut away.
func LensMask(size image.Point, cornerTrim int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, size.X, size.Y))
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			if lensCovers(size, cornerTrim, x, y) {
				mask.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	return mask
}

func lensCovers(size image.Point, cornerTrim, x, y int) bool {
	if cornerTrim > 0 {
		rx, by := size.X-1-x, size.Y-1-y
		return x+y >= cornerTrim && rx+y >= cornerTrim &&
			x+by >= cornerTrim && rx+by >= cornerTrim
	}

	d := size.X
	if size.Y < d {
		d = size.Y
	}
	r := float64(d) / 2
	dx := float64(x) + 0.5 - float64(size.X)/2
	dy := float64(y) + 0.5 - float64(size.Y)/2
	return dx*dx+dy*dy <= r*r
}
