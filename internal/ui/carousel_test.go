package ui

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarousel(t *testing.T) {
	_, err := NewCarousel(0)
	assert.Error(t, err)

	c, err := NewCarousel(3)
	require.NoError(t, err)
	assert.Equal(t, 0, c.GetCurrentIndex())
	assert.Equal(t, 3, c.Total())
}

func TestCarousel_PreviousWrapsToLast(t *testing.T) {
	c, err := NewCarousel(21)
	require.NoError(t, err)

	c.Previous()
	assert.Equal(t, 20, c.GetCurrentIndex())

	c.Next()
	assert.Equal(t, 0, c.GetCurrentIndex())
}

func TestCarousel_NextTotalTimesIsIdentity(t *testing.T) {
	for total := 1; total <= 25; total++ {
		c, err := NewCarousel(total)
		require.NoError(t, err)
		c.SetIndex(total / 2)
		start := c.GetCurrentIndex()

		for i := 0; i < total; i++ {
			c.Next()
		}
		assert.Equal(t, start, c.GetCurrentIndex(), "total=%d", total)
	}
}

func TestCarousel_IndexStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, total := range []int{1, 2, 7, 21} {
		c, err := NewCarousel(total)
		require.NoError(t, err)

		for i := 0; i < 500; i++ {
			if rng.Intn(2) == 0 {
				c.Next()
			} else {
				c.Previous()
			}
			idx := c.GetCurrentIndex()
			assert.True(t, idx >= 0 && idx < total, "index %d out of [0,%d)", idx, total)
		}
	}
}

func TestCarousel_SetIndexAndReset(t *testing.T) {
	c, err := NewCarousel(5)
	require.NoError(t, err)

	c.SetIndex(-1)
	assert.Equal(t, 4, c.GetCurrentIndex())
	c.SetIndex(12)
	assert.Equal(t, 2, c.GetCurrentIndex())

	c.Reset()
	assert.Equal(t, 0, c.GetCurrentIndex())
	assert.Equal(t, "Carousel{Index:0 Total:5}", c.String())
}

func TestKeyState_Step(t *testing.T) {
	assert.Equal(t, 1, KeyState{NextImage: true}.Step())
	assert.Equal(t, -1, KeyState{PrevImage: true}.Step())
	assert.Equal(t, 0, KeyState{NextImage: true, PrevImage: true}.Step())
	assert.Equal(t, 0, KeyState{}.Step())
}
