package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jerusalem-science-museum/leonardo-browser/internal/config"
	"github.com/jerusalem-science-museum/leonardo-browser/internal/input"
	"github.com/jerusalem-science-museum/leonardo-browser/internal/logger"
	"github.com/jerusalem-science-museum/leonardo-browser/internal/service"
	"github.com/jerusalem-science-museum/leonardo-browser/internal/ui"
	"github.com/spf13/cobra"
)

// Version is set during build
var Version = "0.1.0-dev"

// assetRadius is the number of neighbours kept decoded on each side of the
// current image.
const assetRadius = 1

var (
	configPath string
	logLevel   string
	windowed   bool

	rootCmd = &cobra.Command{
		Use:   "leonardo",
		Short: "Leonardo - kiosk image browser",
		Long: `Leonardo is a full-screen image browser for museum kiosks. Visitors
page through a carousel of scans with on-screen arrows and inspect details
with a draggable magnifier. The session resets itself after a period of
inactivity.`,
		SilenceUsage: true,
		RunE:         run,
	}
)

func init() {
	rootCmd.Version = Version
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the JSON configuration file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	rootCmd.Flags().BoolVar(&windowed, "windowed", false, "run in a window even if the config asks for fullscreen")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	switch {
	case logLevel != "":
		logger.SetLevel(logLevel)
	case cfg.LogLevel != "":
		logger.SetLevel(cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fsys := os.DirFS(cfg.AssetDir)
	scanner := service.NewAssetScanner(fsys, cfg.DefaultZoomFactor)

	count := cfg.ImageCount
	if count == 0 {
		if count, err = scanner.Count(); err != nil {
			return err
		}
	}
	if count == 0 {
		return fmt.Errorf("no images found in %s", cfg.AssetDir)
	}

	infos, err := scanner.Probe(ctx, count)
	if err != nil {
		return fmt.Errorf("checking assets: %w", err)
	}
	captions := make(map[int]string, len(infos))
	for _, info := range infos {
		if info.Zoom == nil {
			logger.Warn("Zoom asset missing, it will be synthesized", "image", service.BasePath(info.Index), "factor", info.Factor)
		}
		logger.Debug("Asset found", "image", service.BasePath(info.Index), "width", info.Base.Width, "height", info.Base.Height, "factor", info.Factor)
		captions[info.Index] = info.Caption()
	}
	logger.Info("Assets ready", "dir", cfg.AssetDir, "count", count)

	src := input.Open(ctx, cfg)
	touch := input.IsTouch(src)

	session, err := ui.NewSession(src, ui.SessionOptions{
		Total: count,
		Magnifier: ui.MagnifierOptions{
			Screen:     cfg.ScreenSize(),
			Size:       cfg.MagnifierSize(),
			Center:     cfg.MagnifierCenter(),
			WindowSize: cfg.MagnifierWindowSize,
			Initial:    cfg.MagnifierInitial(),
		},
		OpenOnStart:  cfg.MagnifierOpenOnStart,
		PrevButton:   cfg.Buttons.Prev.Image(),
		NextButton:   cfg.Buttons.Next.Image(),
		ToggleButton: cfg.Buttons.Toggle.Image(),
		IdleTimeout:  cfg.IdleTimeout(),
	})
	if err != nil {
		src.Close()
		return err
	}
	defer session.Close()

	cache := ui.NewAssetCache(service.NewImageService(fsys, count, cfg.DefaultZoomFactor), assetRadius)
	defer cache.Close()

	renderer := ui.NewRenderer(cache, ui.LoadSprites(cfg.AssetDir), ui.RendererOptions{
		Screen:      cfg.ScreenSize(),
		CornerTrim:  cfg.MagnifierCornerTrim,
		ShowCursor:  cfg.ShowCursor && !touch,
		Diagnostics: cfg.ShowDiagnosticOverlay,
		Captions:    captions,
	})
	defer renderer.Close()

	ebiten.SetWindowSize(cfg.ScreenWidth, cfg.ScreenHeight)
	ebiten.SetWindowTitle("Leonardo")
	ebiten.SetFullscreen(cfg.Fullscreen && !windowed)
	ebiten.SetTPS(ebiten.DefaultTPS)
	if touch || cfg.ShowCursor {
		// The pointer is either absent or drawn as a sprite.
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
	}

	game := NewGame(ctx, session, cache, renderer, cfg.ScreenSize())
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("running game loop: %w", err)
	}
	logger.Info("Shutting down")
	return nil
}
