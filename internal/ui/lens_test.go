package ui

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func opaque(m *image.Alpha, x, y int) bool {
	return m.AlphaAt(x, y).A == 0xff
}

func TestLensMask_Circle(t *testing.T) {
	m := LensMask(image.Pt(100, 100), 0)

	assert.Equal(t, image.Rect(0, 0, 100, 100), m.Bounds())
	assert.True(t, opaque(m, 50, 50), "center")
	assert.True(t, opaque(m, 0, 50), "left edge midpoint")
	assert.True(t, opaque(m, 99, 50), "right edge midpoint")
	assert.False(t, opaque(m, 0, 0), "top-left corner")
	assert.False(t, opaque(m, 99, 99), "bottom-right corner")
	assert.False(t, opaque(m, 10, 10))
}

func TestLensMask_CircleIsSymmetric(t *testing.T) {
	m := LensMask(image.Pt(64, 64), 0)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			assert.Equal(t, opaque(m, x, y), opaque(m, 63-x, y))
			assert.Equal(t, opaque(m, x, y), opaque(m, x, 63-y))
		}
	}
}

func TestLensMask_CornerTrim(t *testing.T) {
	m := LensMask(image.Pt(40, 30), 5)

	for _, p := range []image.Point{{0, 0}, {4, 0}, {0, 4}, {39, 0}, {35, 0}, {0, 29}, {39, 29}, {37, 27}} {
		assert.False(t, opaque(m, p.X, p.Y), "corner pixel %v should be cut", p)
	}
	for _, p := range []image.Point{{5, 0}, {0, 5}, {34, 0}, {20, 15}, {39, 5}, {20, 29}} {
		assert.True(t, opaque(m, p.X, p.Y), "pixel %v should be kept", p)
	}
}

func TestLensMask_Empty(t *testing.T) {
	m := LensMask(image.Point{}, 0)
	assert.True(t, m.Bounds().Empty())
}
