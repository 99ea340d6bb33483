package ui

import "fmt"

// Carousel holds the current position in a fixed, wrap-around set of images.
type Carousel struct {
	index int
	total int
}

// NewCarousel creates a carousel over total images, starting at index 0.
func NewCarousel(total int) (*Carousel, error) {
	if total < 1 {
		return nil, fmt.Errorf("carousel needs at least one image, got %d", total)
	}
	return &Carousel{total: total}, nil
}

// GetCurrentIndex returns the current image index.
func (c *Carousel) GetCurrentIndex() int {
	return c.index
}

// Total returns the number of images.
func (c *Carousel) Total() int {
	return c.total
}

// SetIndex moves to index i, wrapping it into range.
func (c *Carousel) SetIndex(i int) {
	c.index = c.wrap(i)
}

func (c *Carousel) Next() {
	c.navigate(1)
}

func (c *Carousel) Previous() {
	c.navigate(-1)
}

func (c *Carousel) Reset() {
	c.index = 0
}

// navigate moves the index by delta, wrapping around the set.
func (c *Carousel) navigate(delta int) {
	c.index = c.wrap(c.index + delta)
}

func (c *Carousel) wrap(i int) int {
	// (a % n + n) % n keeps negative values in range.
	return (i%c.total + c.total) % c.total
}

func (c *Carousel) String() string {
	return fmt.Sprintf("Carousel{Index:%d Total:%d}", c.index, c.total)
}
