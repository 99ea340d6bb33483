package main

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGame_FrameDelta(t *testing.T) {
	clock := time.Unix(1000, 0)
	g := NewGame(context.Background(), nil, nil, nil, image.Pt(1920, 1080))
	g.now = func() time.Time { return clock }

	assert.Equal(t, time.Duration(0), g.frameDelta(), "first tick has no history")

	clock = clock.Add(16 * time.Millisecond)
	assert.Equal(t, 16*time.Millisecond, g.frameDelta())

	clock = clock.Add(10 * time.Second)
	assert.Equal(t, maxFrameDelta, g.frameDelta(), "stalls are capped")

	clock = clock.Add(-time.Second)
	assert.Equal(t, time.Duration(0), g.frameDelta(), "clock steps back")
}

func TestGame_Layout(t *testing.T) {
	g := NewGame(context.Background(), nil, nil, nil, image.Pt(1920, 1080))
	w, h := g.Layout(800, 600)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}
