// Package service provides image loading and metadata extraction services.
package service

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	xdraw "golang.org/x/image/draw"
)

// ImageInfo holds metadata about an image.
type ImageInfo struct {
	Width    int
	Height   int
	Size     int64
	ModTime  time.Time
	EXIFData map[string]string
}

// ImageService loads the carousel images from an asset directory. Entry i
// is stored as "<i+1>.png" with its zoom asset as "<i+1>-big.png".
type ImageService struct {
	fsys        fs.FS
	count       int
	defaultZoom float64
}

// NewImageService creates an ImageService over fsys holding count images.
// defaultZoom scales the base image when a zoom asset is missing.
func NewImageService(fsys fs.FS, count int, defaultZoom float64) *ImageService {
	return &ImageService{fsys: fsys, count: count, defaultZoom: defaultZoom}
}

// BasePath returns the asset name of the base image for index.
func BasePath(index int) string {
	return fmt.Sprintf("%d.png", index+1)
}

// ZoomPath returns the asset name of the zoom image for index.
func ZoomPath(index int) string {
	return fmt.Sprintf("%d-big.png", index+1)
}

func (is *ImageService) TotalCount() int {
	return is.count
}

func (is *ImageService) LoadBase(index int) (image.Image, error) {
	if err := is.checkIndex(index); err != nil {
		return nil, err
	}
	return is.decode(BasePath(index))
}

// LoadZoom loads the zoom asset for index. When the file does not exist the
// base image is upscaled by the default zoom factor instead.
func (is *ImageService) LoadZoom(index int) (image.Image, error) {
	if err := is.checkIndex(index); err != nil {
		return nil, err
	}
	img, err := is.decode(ZoomPath(index))
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	base, err := is.decode(BasePath(index))
	if err != nil {
		return nil, err
	}
	return Upscale(base, is.defaultZoom), nil
}

func (is *ImageService) checkIndex(index int) error {
	if index < 0 || index >= is.count {
		return fmt.Errorf("image index %d out of range [0,%d)", index, is.count)
	}
	return nil
}

func (is *ImageService) decode(name string) (image.Image, error) {
	file, err := is.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, nil
}

// Upscale resizes img by factor with Catmull-Rom resampling.
func Upscale(img image.Image, factor float64) image.Image {
	b := img.Bounds()
	w := int(float64(b.Dx())*factor + 0.5)
	h := int(float64(b.Dy())*factor + 0.5)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// GetImageInfo reads an image file and extracts metadata without decoding the full image,
// which is significantly more performant.
func (is *ImageService) GetImageInfo(name string) (*ImageInfo, error) {
	file, err := is.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	// Efficiently get image dimensions without decoding the entire image.
	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("decoding image config: %w", err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("getting file stats: %w", err)
	}

	info := &ImageInfo{
		Width:    config.Width,
		Height:   config.Height,
		Size:     fileInfo.Size(),
		ModTime:  fileInfo.ModTime(),
		EXIFData: make(map[string]string),
	}

	// Reopen to read EXIF data; fs.File is not guaranteed to seek.
	exifFile, err := is.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("reopening file for exif: %w", err)
	}
	defer exifFile.Close()

	exifData, _ := exif.Decode(exifFile) // Ignore error, EXIF might not be present
	if exifData != nil {
		if camModel, err := exifData.Get(exif.Model); err == nil {
			info.EXIFData["Camera Model"] = camModel.String()
		}
		if artist, err := exifData.Get(exif.Artist); err == nil {
			info.EXIFData["Artist"] = artist.String()
		}
		if desc, err := exifData.Get(exif.ImageDescription); err == nil {
			info.EXIFData["Description"] = desc.String()
		}
	}

	return info, nil
}
