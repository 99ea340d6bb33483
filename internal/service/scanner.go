package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sync/errgroup"
)

// probeConcurrency bounds the number of assets inspected at once.
const probeConcurrency = 4

// AssetInfo describes one carousel entry found on disk.
type AssetInfo struct {
	Index int
	Base  *ImageInfo
	// Zoom is nil when the zoom asset is missing and will be synthesized.
	Zoom *ImageInfo
	// Factor is the zoom to base width ratio.
	Factor float64
}

// Caption returns a short description for diagnostics, from EXIF when present.
func (a AssetInfo) Caption() string {
	if a.Base == nil {
		return ""
	}
	if d := a.Base.EXIFData["Description"]; d != "" {
		return d
	}
	return a.Base.EXIFData["Camera Model"]
}

// AssetScanner discovers and inspects the carousel assets.
type AssetScanner struct {
	fsys   fs.FS
	images *ImageService
}

// NewAssetScanner constructs a new AssetScanner over fsys.
func NewAssetScanner(fsys fs.FS, defaultZoom float64) *AssetScanner {
	return &AssetScanner{
		fsys:   fsys,
		images: NewImageService(fsys, 0, defaultZoom),
	}
}

// Count returns the number of consecutive base images "1.png", "2.png", ...
func (s *AssetScanner) Count() (int, error) {
	n := 0
	for {
		_, err := fs.Stat(s.fsys, BasePath(n))
		if errors.Is(err, fs.ErrNotExist) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("scanning assets: %w", err)
		}
		n++
	}
}

// Probe inspects the first count entries in parallel and reports their
// sizes and zoom factors. A missing base image is an error; a missing zoom
// asset is reported with a nil Zoom and the default factor.
func (s *AssetScanner) Probe(ctx context.Context, count int) ([]AssetInfo, error) {
	infos := make([]AssetInfo, count)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			base, err := s.images.GetImageInfo(BasePath(i))
			if err != nil {
				return fmt.Errorf("probing %s: %w", BasePath(i), err)
			}
			info := AssetInfo{Index: i, Base: base, Factor: s.images.defaultZoom}

			zoom, err := s.images.GetImageInfo(ZoomPath(i))
			switch {
			case err == nil:
				info.Zoom = zoom
				if base.Width > 0 {
					info.Factor = float64(zoom.Width) / float64(base.Width)
				}
			case errors.Is(err, fs.ErrNotExist):
			default:
				return fmt.Errorf("probing %s: %w", ZoomPath(i), err)
			}

			infos[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}
