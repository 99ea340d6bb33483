//go:build linux

package input

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"syscall"
	"unsafe"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/jerusalem-science-museum/leonardo-browser/internal/logger"
	"golang.org/x/sys/unix"
)

// pollTimeout bounds how long Read waits, so the reader notices
// cancellation even when the panel is silent.
const pollTimeout = 100 // ms

// evdevPanel adapts an evdev device to panelDevice.
type evdevPanel struct {
	dev *evdev.InputDevice
	fd  int32
}

func newEvdevPanel(dev *evdev.InputDevice) *evdevPanel {
	return &evdevPanel{dev: dev, fd: int32(dev.File.Fd())}
}

// Read waits up to pollTimeout for input. It returns EAGAIN when the panel
// stays silent; the descriptor is in blocking mode and closing the file
// does not wake a pending read.
func (e *evdevPanel) Read() ([]rawEvent, error) {
	fds := []unix.PollFd{{Fd: e.fd, Events: unix.POLLIN}}
	n, err := unix.Poll(fds, pollTimeout)
	switch {
	case errors.Is(err, unix.EINTR):
		return nil, syscall.EAGAIN
	case err != nil:
		return nil, fmt.Errorf("polling touch panel: %w", err)
	case n == 0:
		return nil, syscall.EAGAIN
	case fds[0].Revents&unix.POLLNVAL != 0:
		return nil, fmt.Errorf("polling touch panel: %w", unix.EBADF)
	}

	events, err := e.dev.Read()
	if err != nil {
		return nil, err
	}
	out := make([]rawEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, rawEvent{Type: ev.Type, Code: ev.Code, Value: ev.Value})
	}
	return out, nil
}

func (e *evdevPanel) Close() error {
	return e.dev.File.Close()
}

// OpenPanel opens the touch panel named by identifier, either a device node
// path or the device name reported by the kernel, and starts capturing.
// A zero touchMax axis is probed from the device's ABS range.
func OpenPanel(ctx context.Context, identifier string, touchMax, screen image.Point) (*PanelSource, error) {
	dev, err := findPanel(identifier)
	if err != nil {
		return nil, err
	}

	if touchMax.X == 0 || touchMax.Y == 0 {
		probed := probeTouchMax(dev)
		if touchMax.X == 0 {
			touchMax.X = probed.X
		}
		if touchMax.Y == 0 {
			touchMax.Y = probed.Y
		}
		logger.Info("Probed touch panel range", "maxX", touchMax.X, "maxY", touchMax.Y)
	}

	logger.Info("Using touch panel", "name", dev.Name, "path", dev.Fn)
	p := newPanelSource(newEvdevPanel(dev), touchMax, screen)
	p.start(ctx)
	return p, nil
}

func findPanel(identifier string) (*evdev.InputDevice, error) {
	if identifier == "" {
		return nil, fmt.Errorf("%w: no device configured", ErrDeviceUnavailable)
	}

	if strings.HasPrefix(identifier, "/dev/") {
		dev, err := evdev.Open(identifier)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open %s: %v", ErrDeviceUnavailable, identifier, err)
		}
		return dev, nil
	}

	devices, err := evdev.ListInputDevices("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list input devices: %v", ErrDeviceUnavailable, err)
	}

	var found *evdev.InputDevice
	for _, dev := range devices {
		if found == nil && dev.Name == identifier {
			found = dev
			continue
		}
		dev.File.Close()
	}
	if found == nil {
		return nil, fmt.Errorf("%w: no input device named %q", ErrDeviceUnavailable, identifier)
	}
	return found, nil
}

// absInfo mirrors struct input_absinfo.
type absInfo struct {
	Value      int32
	Min        int32
	Max        int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// Linux ioctl request encoding for the 'E' (evdev) family.
const (
	iocRead      = 2
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

func evioc(nr, size uint32) uintptr {
	return uintptr(iocRead<<iocDirShift | uint32('E')<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift)
}

// evioCGAbs encodes EVIOCGABS(code) = _IOR('E', 0x40 + code, struct input_absinfo).
func evioCGAbs(code int) uintptr {
	return evioc(uint32(0x40+code), uint32(unsafe.Sizeof(absInfo{})))
}

// evioCGKey encodes EVIOCGKEY(len) = _IOC(_IOC_READ, 'E', 0x18, len).
func evioCGKey(size int) uintptr {
	return evioc(0x18, uint32(size))
}

// evioCGMTSlots encodes EVIOCGMTSLOTS(len) = _IOC(_IOC_READ, 'E', 0x0a, len).
func evioCGMTSlots(size int) uintptr {
	return evioc(0x0a, uint32(size))
}

func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func readAbs(fd uintptr, code int) (absInfo, bool) {
	var info absInfo
	if err := ioctl(fd, evioCGAbs(code), unsafe.Pointer(&info)); err != nil {
		return absInfo{}, false
	}
	return info, true
}

func absMax(fd uintptr, code int) (int, bool) {
	info, ok := readAbs(fd, code)
	if !ok || info.Max <= 0 {
		return 0, false
	}
	return int(info.Max), true
}

// keyBytes holds the KEY_MAX+1 bits of the EVIOCGKEY state.
const keyBytes = (0x2ff + 1) / 8

// mtSlotsQueried is the number of slots read by EVIOCGMTSLOTS; only slot 0
// is used.
const mtSlotsQueried = 16

// mtSlotValue returns slot 0's value of an ABS_MT_* axis.
func mtSlotValue(fd uintptr, code int) (int32, error) {
	// struct input_mt_request_layout { __u32 code; __s32 values[num_slots]; }
	var req [1 + mtSlotsQueried]int32
	req[0] = int32(code)
	if err := ioctl(fd, evioCGMTSlots(len(req)*4), unsafe.Pointer(&req[0])); err != nil {
		return 0, err
	}
	return req[1], nil
}

// queryState reads the contact state back from the kernel. Multi-touch
// panels report slot 0; single-touch panels report BTN_TOUCH and ABS_X/Y.
func (e *evdevPanel) queryState() (touchState, error) {
	fd := uintptr(e.fd)

	if _, mt := readAbs(fd, absMTPositionX); mt {
		id, err := mtSlotValue(fd, absMTTrackingID)
		if err != nil {
			return touchState{}, fmt.Errorf("reading multi-touch slots: %w", err)
		}
		st := touchState{down: id >= 0}
		x, errX := mtSlotValue(fd, absMTPositionX)
		y, errY := mtSlotValue(fd, absMTPositionY)
		if errX == nil && errY == nil {
			st.raw, st.hasRaw = image.Pt(int(x), int(y)), true
		}
		return st, nil
	}

	var keys [keyBytes]byte
	if err := ioctl(fd, evioCGKey(len(keys)), unsafe.Pointer(&keys[0])); err != nil {
		return touchState{}, fmt.Errorf("reading key state: %w", err)
	}
	st := touchState{down: keys[btnTouch/8]&(1<<(btnTouch%8)) != 0}
	x, okX := readAbs(fd, absX)
	y, okY := readAbs(fd, absY)
	if okX && okY {
		st.raw, st.hasRaw = image.Pt(int(x.Value), int(y.Value)), true
	}
	return st, nil
}

// probeTouchMax reads the X/Y ranges, preferring the multi-touch axes.
func probeTouchMax(dev *evdev.InputDevice) image.Point {
	fd := dev.File.Fd()
	var p image.Point
	if x, ok := absMax(fd, absMTPositionX); ok {
		p.X = x
	} else if x, ok := absMax(fd, absX); ok {
		p.X = x
	}
	if y, ok := absMax(fd, absMTPositionY); ok {
		p.Y = y
	} else if y, ok := absMax(fd, absY); ok {
		p.Y = y
	}
	return p
}
