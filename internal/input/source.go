package input

import (
	"context"
	"errors"
	"image"

	"github.com/jerusalem-science-museum/leonardo-browser/internal/config"
	"github.com/jerusalem-science-museum/leonardo-browser/internal/logger"
)

// Open selects the input source for cfg. A touch configuration whose panel
// cannot be opened degrades to the system pointer instead of failing.
func Open(ctx context.Context, cfg *config.Config) Source {
	return open(ctx, cfg, OpenPanel, nil)
}

type panelOpener func(ctx context.Context, identifier string, touchMax, screen image.Point) (*PanelSource, error)

func open(ctx context.Context, cfg *config.Config, openPanel panelOpener, pointer Pointer) Source {
	if !cfg.Touch {
		return NewPointerSource(pointer)
	}

	panel, err := openPanel(ctx, cfg.TouchDevice, cfg.TouchBounds(), cfg.ScreenSize())
	if err != nil {
		if !errors.Is(err, ErrDeviceUnavailable) {
			logger.Error("Unexpected touch panel failure", "err", err)
		}
		logger.Warn("Touch panel unavailable, falling back to pointer input", "device", cfg.TouchDevice, "err", err)
		return NewPointerSource(pointer)
	}
	return panel
}

// IsTouch reports whether src reads a touch panel.
func IsTouch(src Source) bool {
	_, ok := src.(*PanelSource)
	return ok
}
