package ui

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/jerusalem-science-museum/leonardo-browser/internal/logger"
)

// ImageStore provides decoded carousel images by index.
type ImageStore interface {
	LoadBase(index int) (image.Image, error)
	LoadZoom(index int) (image.Image, error)
	TotalCount() int
}

// Assets is the decoded base and zoom image pair for one carousel entry.
type Assets struct {
	Index int
	Base  image.Image
	Zoom  image.Image
}

// BaseSize returns the size of the base image.
func (a *Assets) BaseSize() image.Point {
	return a.Base.Bounds().Size()
}

// ZoomSize returns the size of the zoom image.
func (a *Assets) ZoomSize() image.Point {
	return a.Zoom.Bounds().Size()
}

type assetResult struct {
	assets *Assets
	index  int
	err    error
}

const (
	assetLoaders    = 2
	assetRetryDelay = 2 * time.Second
)

// AssetCache keeps the current image and its neighbours decoded. Loading
// happens on background goroutines; results are only taken in by Update,
// which the update loop calls every tick.
type AssetCache struct {
	store  ImageStore
	radius int

	cache map[int]*Assets
	mu    sync.RWMutex

	pending  map[int]bool
	failedAt map[int]time.Time
	now      func() time.Time

	jobQueue    chan int
	resultQueue chan assetResult
	done        chan struct{}
	closeOnce   sync.Once
}

// NewAssetCache starts the loader goroutines. radius is the number of
// neighbours kept on each side of the current index.
func NewAssetCache(store ImageStore, radius int) *AssetCache {
	c := &AssetCache{
		store:       store,
		radius:      radius,
		cache:       make(map[int]*Assets),
		pending:     make(map[int]bool),
		failedAt:    make(map[int]time.Time),
		now:         time.Now,
		jobQueue:    make(chan int, 2*radius+1),
		resultQueue: make(chan assetResult, 2*radius+1),
		done:        make(chan struct{}),
	}
	for i := 0; i < assetLoaders; i++ {
		go c.loader()
	}
	return c
}

// loader is a background worker that decodes image pairs.
func (c *AssetCache) loader() {
	for index := range c.jobQueue {
		result := assetResult{index: index}
		base, err := c.store.LoadBase(index)
		if err != nil {
			result.err = fmt.Errorf("loading base image %d: %w", index, err)
		} else if zoom, err := c.store.LoadZoom(index); err != nil {
			result.err = fmt.Errorf("loading zoom image %d: %w", index, err)
		} else {
			result.assets = &Assets{Index: index, Base: base, Zoom: zoom}
		}

		select {
		case c.resultQueue <- result:
		case <-c.done:
			return
		}
	}
}

// Update takes in finished loads, evicts entries outside the window around
// current and queues the missing ones. It never blocks.
func (c *AssetCache) Update(current int) {
	total := c.store.TotalCount()
	if total <= 0 {
		return
	}

	// 1. Process results that came back from the loaders.
	processing := true
	for processing {
		select {
		case result := <-c.resultQueue:
			delete(c.pending, result.index)
			if result.err != nil {
				logger.Error("Failed to load image", "index", result.index, "err", result.err)
				c.failedAt[result.index] = c.now()
				continue
			}
			delete(c.failedAt, result.index)
			c.mu.Lock()
			c.cache[result.index] = result.assets
			c.mu.Unlock()
		default:
			processing = false
		}
	}

	// 2. Determine which entries are needed around the current one.
	wanted := c.window(current, total)

	c.mu.Lock()
	for index := range c.cache {
		if !wanted[index] {
			delete(c.cache, index)
		}
	}
	c.mu.Unlock()

	// 3. Queue jobs for anything missing, current index first.
	for _, index := range c.order(current, total) {
		c.mu.RLock()
		_, inCache := c.cache[index]
		c.mu.RUnlock()
		if inCache || c.pending[index] {
			continue
		}
		if at, failed := c.failedAt[index]; failed && c.now().Sub(at) < assetRetryDelay {
			continue
		}

		select {
		case c.jobQueue <- index:
			c.pending[index] = true
		default:
			// Queue is full, try again on the next tick.
			return
		}
	}
}

// window returns the set of indices within radius of current, wrapped.
func (c *AssetCache) window(current, total int) map[int]bool {
	wanted := make(map[int]bool, 2*c.radius+1)
	for _, index := range c.order(current, total) {
		wanted[index] = true
	}
	return wanted
}

// order lists the window starting at current, then alternating outwards.
func (c *AssetCache) order(current, total int) []int {
	seen := make(map[int]bool, 2*c.radius+1)
	out := make([]int, 0, 2*c.radius+1)
	add := func(i int) {
		i = (i%total + total) % total
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	add(current)
	for d := 1; d <= c.radius; d++ {
		add(current + d)
		add(current - d)
	}
	return out
}

// Get returns the decoded pair for index if it is loaded.
func (c *AssetCache) Get(index int) (*Assets, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.cache[index]
	return a, ok
}

// Loading reports whether index has a load in flight.
func (c *AssetCache) Loading(index int) bool {
	return c.pending[index]
}

// Failed reports whether the last load of index failed and is waiting to
// be retried.
func (c *AssetCache) Failed(index int) bool {
	_, failed := c.failedAt[index]
	return failed
}

// Close stops the loader goroutines.
func (c *AssetCache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		close(c.jobQueue)
	})
}
