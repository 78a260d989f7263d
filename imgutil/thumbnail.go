// Package imgutil provides small image manipulation helpers for saved
// generations: decoding, aspect-preserving downscaling, and JPEG
// re-encoding.
package imgutil

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// DefaultThumbnailEdge is the bounding box edge for thumbnails.
const DefaultThumbnailEdge = 256

// thumbnailQuality trades file size for fidelity; thumbnails are
// previews, not archives.
const thumbnailQuality = 80

// ThumbnailSize computes the dimensions of a thumbnail that fits within
// a maxEdge bounding box while preserving the source aspect ratio. A
// source already within the box keeps its dimensions.
func ThumbnailSize(width, height, maxEdge int) (int, int) {
	if width <= 0 || height <= 0 || maxEdge <= 0 {
		return 0, 0
	}
	if width <= maxEdge && height <= maxEdge {
		return width, height
	}

	if width >= height {
		h := height * maxEdge / width
		if h < 1 {
			h = 1
		}
		return maxEdge, h
	}

	w := width * maxEdge / height
	if w < 1 {
		w = 1
	}
	return w, maxEdge
}

// Thumbnail decodes an image from r and returns a copy scaled to fit
// within a maxEdge bounding box, preserving aspect ratio. Sources
// already within the box are returned decoded but unscaled.
func Thumbnail(r io.Reader, maxEdge int) (image.Image, error) {
	if maxEdge <= 0 {
		return nil, fmt.Errorf("imgutil: max edge must be positive, got %d", maxEdge)
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imgutil: decoding image: %w", err)
	}

	bounds := src.Bounds()
	w, h := ThumbnailSize(bounds.Dx(), bounds.Dy(), maxEdge)
	if w == bounds.Dx() && h == bounds.Dy() {
		return src, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	return dst, nil
}

// WriteThumbnail reads an image from srcPath and writes a JPEG thumbnail
// to dstPath, scaled to fit within a maxEdge bounding box. The write
// goes through a temporary file so a crash never leaves a partial
// thumbnail at dstPath.
func WriteThumbnail(srcPath, dstPath string, maxEdge int) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("imgutil: opening source: %w", err)
	}
	defer src.Close()

	thumb, err := Thumbnail(src, maxEdge)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".thumb-*.tmp")
	if err != nil {
		return fmt.Errorf("imgutil: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := jpeg.Encode(tmp, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("imgutil: encoding thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("imgutil: closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, dstPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("imgutil: placing thumbnail: %w", err)
	}

	return nil
}
