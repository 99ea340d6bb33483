//go:build !linux

package input

import (
	"context"
	"fmt"
	"image"
)

// OpenPanel is only supported on Linux, where panels are evdev devices.
func OpenPanel(ctx context.Context, identifier string, touchMax, screen image.Point) (*PanelSource, error) {
	return nil, fmt.Errorf("%w: touch panels require linux evdev", ErrDeviceUnavailable)
}
