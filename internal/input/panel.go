package input

import (
	"context"
	"errors"
	"image"
	"sync"
	"syscall"
	"time"

	"github.com/jerusalem-science-museum/leonardo-browser/internal/logger"
)

// Linux input event codes the panel decoder cares about.
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	synReport  = 0x00
	synDropped = 0x03

	btnTouch = 0x14a

	absX            = 0x00
	absY            = 0x01
	absMTSlot       = 0x2f
	absMTPositionX  = 0x35
	absMTPositionY  = 0x36
	absMTTrackingID = 0x39
)

// maxQueuedTransitions bounds the panel queue when the consumer stalls.
const maxQueuedTransitions = 64

// closeTimeout bounds how long Close waits for the reader goroutine.
const closeTimeout = 500 * time.Millisecond

// rawEvent is one kernel input_event without its timestamp.
type rawEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// panelDevice is the read side of an opened touch panel.
type panelDevice interface {
	// Read waits for at least one event. It may return EAGAIN when
	// nothing arrived within a short timeout.
	Read() ([]rawEvent, error)
	Close() error
}

// touchState is the contact state read back from a device.
type touchState struct {
	down   bool
	raw    image.Point
	hasRaw bool
}

// stateQuerier is implemented by devices that can report their current
// contact state, used to recover from SYN_DROPPED.
type stateQuerier interface {
	queryState() (touchState, error)
}

// panelDecoder folds a raw event stream into committed contact state. It
// follows the first contact only: slot 0 of the multi-touch protocol, or
// the legacy single-touch axes.
type panelDecoder struct {
	touchMax image.Point
	screen   image.Point

	slot     int32
	dropping bool
	query    func() (touchState, error)

	down       bool
	pending    bool
	raw        image.Point
	pendingRaw image.Point
}

func newPanelDecoder(touchMax, screen image.Point) *panelDecoder {
	return &panelDecoder{touchMax: touchMax, screen: screen}
}

// feed consumes one raw event. On a committed report it returns the
// screen position and, if the contact went up or down, the transition.
func (d *panelDecoder) feed(ev rawEvent) (pos image.Point, tr Event, hasTr, committed bool) {
	if d.dropping {
		if ev.Type != evSyn || ev.Code != synReport {
			return image.Point{}, Event{}, false, false
		}
		d.resync()
		return d.commit()
	}

	switch ev.Type {
	case evSyn:
		switch ev.Code {
		case synDropped:
			logger.Debug("touch panel dropped events, resyncing on next report")
			d.dropping = true
		case synReport:
			return d.commit()
		}
	case evKey:
		if ev.Code == btnTouch {
			d.pending = ev.Value != 0
		}
	case evAbs:
		switch ev.Code {
		case absMTSlot:
			d.slot = ev.Value
		case absMTTrackingID:
			if d.slot == 0 {
				d.pending = ev.Value >= 0
			}
		case absMTPositionX:
			if d.slot == 0 {
				d.pendingRaw.X = int(ev.Value)
			}
		case absMTPositionY:
			if d.slot == 0 {
				d.pendingRaw.Y = int(ev.Value)
			}
		case absX:
			d.pendingRaw.X = int(ev.Value)
		case absY:
			d.pendingRaw.Y = int(ev.Value)
		}
	}
	return image.Point{}, Event{}, false, false
}

// commit publishes the pending contact state.
func (d *panelDecoder) commit() (pos image.Point, tr Event, hasTr, committed bool) {
	d.raw = d.pendingRaw
	pos = d.scale(d.raw)
	if d.pending != d.down {
		d.down = d.pending
		kind := Release
		if d.down {
			kind = Press
		}
		tr, hasTr = Event{Kind: kind, Pos: pos}, true
	}
	return pos, tr, hasTr, true
}

// resync ends a SYN_DROPPED gap. The events in the gap are lost, so the
// contact state is re-read from the device when it supports that and is
// otherwise kept as last committed.
func (d *panelDecoder) resync() {
	d.dropping = false
	d.pending, d.pendingRaw = d.down, d.raw
	if d.query == nil {
		return
	}
	st, err := d.query()
	if err != nil {
		logger.Warn("Touch panel state query failed after dropped events", "err", err)
		return
	}
	d.pending = st.down
	if st.hasRaw {
		d.pendingRaw = st.raw
	}
}

// scale maps raw panel coordinates into screen pixels.
func (d *panelDecoder) scale(raw image.Point) image.Point {
	p := raw
	if d.touchMax.X > 0 {
		p.X = raw.X * d.screen.X / d.touchMax.X
	}
	if d.touchMax.Y > 0 {
		p.Y = raw.Y * d.screen.Y / d.touchMax.Y
	}
	return image.Pt(clampInt(p.X, 0, d.screen.X), clampInt(p.Y, 0, d.screen.Y))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PanelSource reads a touch panel on a background goroutine. Transitions
// are queued and drained in order, so a quick tap never loses its release.
type PanelSource struct {
	mu      sync.Mutex
	queue   []Event
	pos     image.Point
	decoder *panelDecoder

	device panelDevice
	cancel context.CancelFunc
	done   chan struct{}
}

func newPanelSource(dev panelDevice, touchMax, screen image.Point) *PanelSource {
	p := &PanelSource{
		decoder: newPanelDecoder(touchMax, screen),
		device:  dev,
		done:    make(chan struct{}),
	}
	if q, ok := dev.(stateQuerier); ok {
		p.decoder.query = q.queryState
	}
	return p
}

// start launches the reader goroutine.
func (p *PanelSource) start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	go p.run(ctx)
}

func (p *PanelSource) run(ctx context.Context) {
	defer close(p.done)
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Touch panel reader panic: %v", r)
		}
	}()

	logger.Debug("Starting touch panel capture")
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Touch panel capture context cancelled")
			return
		default:
		}

		events, err := p.device.Read()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, syscall.EAGAIN) {
				continue
			}
			logger.Errorf("Error reading touch panel events, stopping capture: %v", err)
			return
		}
		for _, ev := range events {
			p.push(ev)
		}
	}
}

// push feeds one raw event and publishes committed state. It never blocks
// on the consumer.
func (p *PanelSource) push(ev rawEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos, tr, hasTr, committed := p.decoder.feed(ev)
	if !committed {
		return
	}
	p.pos = pos
	if !hasTr {
		return
	}
	if len(p.queue) >= maxQueuedTransitions {
		logger.Debug("touch panel queue full, dropping oldest transition", "kind", p.queue[0].Kind)
		p.queue = p.queue[1:]
	}
	p.queue = append(p.queue, tr)
}

func (p *PanelSource) PollTransition() (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 {
		return Event{}, false
	}
	ev := p.queue[0]
	p.queue = p.queue[1:]
	return ev, true
}

func (p *PanelSource) PollPosition() image.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// Close stops the reader goroutine and releases the device. It gives up
// waiting for the reader after closeTimeout.
func (p *PanelSource) Close() error {
	if p.cancel != nil {
		p.cancel()
	}
	err := p.device.Close()
	if p.cancel != nil {
		select {
		case <-p.done:
		case <-time.After(closeTimeout):
			logger.Warn("Touch panel reader did not stop, abandoning it", "timeout", closeTimeout)
		}
	}
	return err
}
