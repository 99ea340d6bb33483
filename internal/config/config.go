// Package config loads the kiosk configuration document using Viper.
package config

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultPath is where the kiosk looks for its configuration when no
// override is given.
const DefaultPath = "assets/config/config.json"

// ErrMissingField is wrapped by Load when a required key is absent.
var ErrMissingField = errors.New("missing required configuration field")

// Config is the resolved, immutable kiosk configuration.
type Config struct {
	// Touch panel
	Touch       bool   `mapstructure:"touch"`
	TouchDevice string `mapstructure:"touchDevice"`
	TouchMaxX   int    `mapstructure:"touchMaxX"`
	TouchMaxY   int    `mapstructure:"touchMaxY"`

	// Magnifier overlay
	MagnifierWidth       int  `mapstructure:"magnifierWidth"`
	MagnifierHeight      int  `mapstructure:"magnifierHeight"`
	MagnifierCenterX     int  `mapstructure:"magnifierImageCenterX"`
	MagnifierCenterY     int  `mapstructure:"magnifierImageCenterY"`
	MagnifierInitialX    int  `mapstructure:"magnifierInitialX"`
	MagnifierInitialY    int  `mapstructure:"magnifierInitialY"`
	MagnifierWindowSize  int  `mapstructure:"magnifierWindowSize"`
	MagnifierCornerTrim  int  `mapstructure:"magnifierCornerTrim"`
	MagnifierOpenOnStart bool `mapstructure:"magnifierOpenOnStart"`

	// Display
	ScreenWidth           int  `mapstructure:"screenWidth"`
	ScreenHeight          int  `mapstructure:"screenHeight"`
	Fullscreen            bool `mapstructure:"fullscreen"`
	ShowCursor            bool `mapstructure:"showCursor"`
	ShowDiagnosticOverlay bool `mapstructure:"showDiagnosticOverlay"`

	// Session
	IdleTimeoutSeconds float64 `mapstructure:"idleTimeoutSeconds"`

	// Assets
	AssetDir          string  `mapstructure:"assetDir"`
	ImageCount        int     `mapstructure:"imageCount"`
	DefaultZoomFactor float64 `mapstructure:"defaultZoomFactor"`

	LogLevel string `mapstructure:"logLevel"`

	Buttons ButtonsConfig `mapstructure:"buttons"`
}

// ButtonsConfig holds the screen rectangles of the on-screen buttons.
type ButtonsConfig struct {
	Prev   Rect `mapstructure:"prev"`
	Next   Rect `mapstructure:"next"`
	Toggle Rect `mapstructure:"toggle"`
}

// Rect is a screen rectangle given by its top-left corner and size.
type Rect struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
	W int `mapstructure:"w"`
	H int `mapstructure:"h"`
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

var (
	// DefaultConfig provides the optional values. Required fields are left
	// zero and must come from the document.
	DefaultConfig = Config{
		MagnifierWindowSize:   420,
		ScreenWidth:           1920,
		ScreenHeight:          1080,
		Fullscreen:            true,
		ShowCursor:            true,
		ShowDiagnosticOverlay: false,
		IdleTimeoutSeconds:    60,
		AssetDir:              "assets/images",
		DefaultZoomFactor:     2.0,
		Buttons: ButtonsConfig{
			Prev:   Rect{X: 70, Y: 1080/2 - 102/2, W: 56, H: 102},
			Next:   Rect{X: 1800, Y: 1080/2 - 102/2, W: 56, H: 102},
			Toggle: Rect{X: 1790, Y: 950, W: 100, H: 100},
		},
	}

	requiredKeys = []string{
		"touch",
		"magnifierWidth",
		"magnifierHeight",
		"magnifierImageCenterX",
		"magnifierImageCenterY",
	}

	requiredTouchKeys = []string{
		"touchDevice",
		"touchMaxX",
		"touchMaxY",
	}
)

// Load reads the JSON document at path, applies defaults and validates it.
// A document with missing required fields is rejected as a whole.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig
	v.SetDefault("magnifierInitialX", d.MagnifierInitialX)
	v.SetDefault("magnifierInitialY", d.MagnifierInitialY)
	v.SetDefault("magnifierWindowSize", d.MagnifierWindowSize)
	v.SetDefault("magnifierCornerTrim", d.MagnifierCornerTrim)
	v.SetDefault("magnifierOpenOnStart", d.MagnifierOpenOnStart)

	v.SetDefault("screenWidth", d.ScreenWidth)
	v.SetDefault("screenHeight", d.ScreenHeight)
	v.SetDefault("fullscreen", d.Fullscreen)
	v.SetDefault("showCursor", d.ShowCursor)
	v.SetDefault("showDiagnosticOverlay", d.ShowDiagnosticOverlay)

	v.SetDefault("idleTimeoutSeconds", d.IdleTimeoutSeconds)

	v.SetDefault("assetDir", d.AssetDir)
	v.SetDefault("imageCount", d.ImageCount)
	v.SetDefault("defaultZoomFactor", d.DefaultZoomFactor)
	v.SetDefault("logLevel", d.LogLevel)

	// Individual fields so a partial rectangle in the document still merges.
	setRectDefault(v, "buttons.prev", d.Buttons.Prev)
	setRectDefault(v, "buttons.next", d.Buttons.Next)
	setRectDefault(v, "buttons.toggle", d.Buttons.Toggle)
}

func setRectDefault(v *viper.Viper, key string, r Rect) {
	v.SetDefault(key+".x", r.X)
	v.SetDefault(key+".y", r.Y)
	v.SetDefault(key+".w", r.W)
	v.SetDefault(key+".h", r.H)
}

func decode(v *viper.Viper) (*Config, error) {
	var missing []string
	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			missing = append(missing, key)
		}
	}
	if v.GetBool("touch") {
		for _, key := range requiredTouchKeys {
			if !v.IsSet(key) {
				missing = append(missing, key)
			}
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges that the document cannot express by type.
func (c *Config) Validate() error {
	switch {
	case c.MagnifierWidth <= 0 || c.MagnifierHeight <= 0:
		return fmt.Errorf("magnifier size must be positive, got %dx%d", c.MagnifierWidth, c.MagnifierHeight)
	case c.MagnifierWindowSize <= 0:
		return fmt.Errorf("magnifierWindowSize must be positive, got %d", c.MagnifierWindowSize)
	case c.MagnifierCornerTrim < 0 || 2*c.MagnifierCornerTrim > c.MagnifierWindowSize:
		return fmt.Errorf("magnifierCornerTrim %d out of range for window %d", c.MagnifierCornerTrim, c.MagnifierWindowSize)
	case c.ScreenWidth <= 0 || c.ScreenHeight <= 0:
		return fmt.Errorf("screen size must be positive, got %dx%d", c.ScreenWidth, c.ScreenHeight)
	case c.TouchMaxX < 0 || c.TouchMaxY < 0:
		return fmt.Errorf("touch bounds must not be negative, got %dx%d", c.TouchMaxX, c.TouchMaxY)
	case c.ImageCount < 0:
		return fmt.Errorf("imageCount must not be negative, got %d", c.ImageCount)
	case c.DefaultZoomFactor <= 0:
		return fmt.Errorf("defaultZoomFactor must be positive, got %g", c.DefaultZoomFactor)
	}
	return nil
}

// IdleTimeout returns the idle threshold. Zero disables the watchdog.
func (c *Config) IdleTimeout() time.Duration {
	if c.IdleTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.IdleTimeoutSeconds * float64(time.Second))
}

// ScreenSize returns the logical screen size in pixels.
func (c *Config) ScreenSize() image.Point {
	return image.Pt(c.ScreenWidth, c.ScreenHeight)
}

// MagnifierSize returns the size of the magnifier bezel asset.
func (c *Config) MagnifierSize() image.Point {
	return image.Pt(c.MagnifierWidth, c.MagnifierHeight)
}

// MagnifierCenter returns the offset from the magnifier top-left to its
// visual center.
func (c *Config) MagnifierCenter() image.Point {
	return image.Pt(c.MagnifierCenterX, c.MagnifierCenterY)
}

// MagnifierInitial returns the magnifier position at session start.
func (c *Config) MagnifierInitial() image.Point {
	return image.Pt(c.MagnifierInitialX, c.MagnifierInitialY)
}

// TouchBounds returns the touch panel's raw coordinate range. A zero axis
// means the range is probed from the device.
func (c *Config) TouchBounds() image.Point {
	return image.Pt(c.TouchMaxX, c.TouchMaxY)
}
