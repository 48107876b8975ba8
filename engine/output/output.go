// Package output writes rendered RGBA8 pixel buffers to image files.
package output

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an image file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// ErrPixelCount is returned when a pixel buffer does not hold exactly width*height RGBA8 pixels.
var ErrPixelCount = errors.New("pixel buffer length does not match image size")

// FormatFromPath selects a Format from a file extension (.png, .bmp, .tif or .tiff).
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Format: the detected format
//   - error: an error for an unrecognized extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported image file extension %q", filepath.Ext(path))
	}
}

// Image wraps a tightly packed RGBA8 buffer in an image.RGBA without copying.
//
// Parameters:
//   - pixels: width*height*4 bytes, row-major
//   - width: image width in pixels
//   - height: image height in pixels
//
// Returns:
//   - *image.RGBA: the image sharing pixels
//   - error: ErrPixelCount if the length is wrong
func Image(pixels []byte, width, height uint32) (*image.RGBA, error) {
	want := uint64(width) * uint64(height) * 4
	if uint64(len(pixels)) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrPixelCount, len(pixels), want)
	}
	return &image.RGBA{
		Pix:    pixels,
		Stride: int(width) * 4,
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}, nil
}

// Encode writes pixels in the given format.
//
// Parameters:
//   - w: the destination
//   - f: the image format
//   - pixels: width*height*4 RGBA8 bytes, row-major
//   - width: image width in pixels
//   - height: image height in pixels
//
// Returns:
//   - error: a size or encode error
func Encode(w io.Writer, f Format, pixels []byte, width, height uint32) error {
	img, err := Image(pixels, width, height)
	if err != nil {
		return err
	}
	switch f {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported image format %q", f)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// Write saves pixels to a file, picking the format from its extension.
//
// Parameters:
//   - path: the output file path
//   - pixels: width*height*4 RGBA8 bytes, row-major
//   - width: image width in pixels
//   - height: image height in pixels
//
// Returns:
//   - error: a create, size or encode error
func Write(path string, pixels []byte, width, height uint32) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close image: %w", cerr)
		}
	}()
	return Encode(file, f, pixels, width, height)
}
