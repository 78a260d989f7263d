package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func TestThumbnailSize(t *testing.T) {
	tests := []struct {
		name          string
		w, h, maxEdge int
		wantW, wantH  int
	}{
		{"landscape scales by width", 1920, 1080, 256, 256, 144},
		{"portrait scales by height", 1080, 1920, 256, 144, 256},
		{"square scales evenly", 1024, 1024, 256, 256, 256},
		{"already small untouched", 100, 80, 256, 100, 80},
		{"extreme ratio never hits zero", 10000, 10, 256, 256, 1},
		{"zero input yields zero", 0, 100, 256, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ThumbnailSize(tt.w, tt.h, tt.maxEdge)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("ThumbnailSize(%d, %d, %d) = %dx%d, want %dx%d",
					tt.w, tt.h, tt.maxEdge, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThumbnail_ScalesDownPreservingRatio(t *testing.T) {
	src := encodePNG(t, 640, 480)

	thumb, err := Thumbnail(bytes.NewReader(src), 64)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	bounds := thumb.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 48 {
		t.Errorf("thumbnail is %dx%d, want 64x48", bounds.Dx(), bounds.Dy())
	}
}

func TestThumbnail_SmallSourceUnscaled(t *testing.T) {
	src := encodePNG(t, 32, 20)

	thumb, err := Thumbnail(bytes.NewReader(src), 64)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	bounds := thumb.Bounds()
	if bounds.Dx() != 32 || bounds.Dy() != 20 {
		t.Errorf("small source was scaled to %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestThumbnail_RejectsGarbage(t *testing.T) {
	if _, err := Thumbnail(bytes.NewReader([]byte("not an image")), 64); err == nil {
		t.Error("garbage input decoded without error")
	}
}

func TestWriteThumbnail(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.png")
	dstPath := filepath.Join(dir, "thumb.jpg")

	if err := os.WriteFile(srcPath, encodePNG(t, 512, 256), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if err := WriteThumbnail(srcPath, dstPath, 128); err != nil {
		t.Fatalf("WriteThumbnail failed: %v", err)
	}

	f, err := os.Open(dstPath)
	if err != nil {
		t.Fatalf("thumbnail missing: %v", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("thumbnail is not valid JPEG: %v", err)
	}
	if img.Bounds().Dx() != 128 || img.Bounds().Dy() != 64 {
		t.Errorf("thumbnail is %dx%d, want 128x64", img.Bounds().Dx(), img.Bounds().Dy())
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteThumbnail_MissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := WriteThumbnail(filepath.Join(dir, "absent.png"), filepath.Join(dir, "out.jpg"), 64); err == nil {
		t.Error("missing source reported success")
	}
}
