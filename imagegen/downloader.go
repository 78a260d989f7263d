package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"aistudio/collection"
	"aistudio/imgutil"
	"aistudio/logging"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// thumbnailDirName is the subdirectory of the downloads directory that
// holds generated thumbnails.
const thumbnailDirName = "thumbs"

// Downloader saves generated images: it transfers the image bytes to the
// downloads directory, then records the save in the collection. The
// transfer happens first so a record never points at bytes that were
// never fetched; if the final file placement fails the record is rolled
// back.
//
// Saved files are named ai-image-{id}.jpg where id is the collection
// record ID. A thumbnail is written alongside on a best-effort basis;
// thumbnail failures are logged and never fail the save.
type Downloader struct {
	client *http.Client
	store  *collection.Store
	dir    string
	logger *logging.Logger
}

// SaveOutcome describes the result of one save.
type SaveOutcome struct {
	// Image is the collection record, either newly created or the
	// pre-existing record when the URL was already saved.
	Image collection.SavedImage

	// Path is the saved file's path, empty when the save was skipped.
	Path string

	// Added reports whether a new record was created. False means the
	// URL was already in the collection and nothing was downloaded.
	Added bool
}

// NewDownloader creates a Downloader writing into dir.
//
// Parameters:
//   - client: HTTP client used for image transfers
//   - store: collection store that records saves
//   - dir: downloads directory, created if missing
//   - logger: structured logger
func NewDownloader(client *http.Client, store *collection.Store, dir string, logger *logging.Logger) (*Downloader, error) {
	if client == nil {
		return nil, fmt.Errorf("imagegen: http client cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("imagegen: collection store cannot be nil")
	}
	if dir == "" {
		return nil, fmt.Errorf("imagegen: downloads directory cannot be empty")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.MkdirAll(filepath.Join(dir, thumbnailDirName), 0o755); err != nil {
		return nil, fmt.Errorf("imagegen: creating downloads directory: %w", err)
	}

	return &Downloader{
		client: client,
		store:  store,
		dir:    dir,
		logger: logger.Named("downloader"),
	}, nil
}

// Dir returns the downloads directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// Save transfers the image behind res and records it in the collection
// with the submission's metadata. Saving a URL that is already in the
// collection is a no-op that returns the existing record with Added
// false; nothing is downloaded twice.
//
// The save is ordered transfer-first: bytes land in a temporary file
// before any record exists, the record is created, and the file is then
// renamed into place. If the rename fails the record is deleted again so
// the collection never lists an image whose file is missing.
func (d *Downloader) Save(ctx context.Context, res Result, params Parameters) (SaveOutcome, error) {
	if !res.OK || res.URL == "" {
		return SaveOutcome{}, fmt.Errorf("imagegen: cannot save a failed generation")
	}

	log := d.logger.With(zap.String("url", res.URL))

	exists, err := d.store.Has(ctx, res.URL)
	if err != nil {
		return SaveOutcome{}, fmt.Errorf("imagegen: checking for existing save: %w", err)
	}
	if exists {
		img, err := d.store.Add(ctx, collection.NewImage{URL: res.URL})
		if err != nil {
			return SaveOutcome{}, fmt.Errorf("imagegen: loading existing save: %w", err)
		}
		log.Debug("already saved, skipping download", zap.Int64("id", img.ID))
		return SaveOutcome{Image: img, Path: d.imagePath(img.ID), Added: false}, nil
	}

	// Transfer first: the bytes must exist before any record does.
	tmpPath, size, err := d.transfer(ctx, res.URL)
	if err != nil {
		return SaveOutcome{}, err
	}

	img, err := d.store.Add(ctx, collection.NewImage{
		URL:    res.URL,
		Prompt: params.Prompt,
		Model:  params.Model,
		Seed:   res.Seed,
		Width:  params.Width,
		Height: params.Height,
		Style:  params.Style,
	})
	if err != nil {
		os.Remove(tmpPath)
		return SaveOutcome{}, fmt.Errorf("imagegen: recording save: %w", err)
	}

	finalPath := d.imagePath(img.ID)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		// Roll back so the collection never lists a fileless image.
		os.Remove(tmpPath)
		if delErr := d.store.Delete(ctx, img.ID); delErr != nil {
			err = multierr.Append(err, delErr)
		}
		return SaveOutcome{}, fmt.Errorf("imagegen: placing saved image: %w", err)
	}

	if err := imgutil.WriteThumbnail(finalPath, d.thumbnailPath(img.ID), imgutil.DefaultThumbnailEdge); err != nil {
		log.Warn("thumbnail generation failed", zap.Int64("id", img.ID), zap.Error(err))
	}

	log.Info("image saved",
		zap.Int64("id", img.ID),
		zap.Int64("bytes", size),
		zap.String("path", finalPath))

	return SaveOutcome{Image: img, Path: finalPath, Added: true}, nil
}

// SaveAll saves every successful result in the batch. Individual save
// failures are collected and do not stop the remaining saves; the
// returned error aggregates every failure.
func (d *Downloader) SaveAll(ctx context.Context, batch Batch, params Parameters) ([]SaveOutcome, error) {
	outcomes := make([]SaveOutcome, 0, len(batch))
	var errs error

	for i, res := range batch {
		if !res.OK {
			continue
		}
		outcome, err := d.Save(ctx, res, params)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, errs
}

// transfer downloads url into a temporary file in the downloads
// directory and returns its path and size. The caller owns the file.
func (d *Downloader) transfer(ctx context.Context, url string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("imagegen: creating download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("imagegen: downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("imagegen: image download returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isImageContentType(ct) {
		return "", 0, fmt.Errorf("imagegen: image download returned %s content", ct)
	}

	tmp, err := os.CreateTemp(d.dir, ".download-*.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("imagegen: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	size, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("imagegen: writing image bytes: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("imagegen: closing temp file: %w", err)
	}

	return tmpPath, size, nil
}

func (d *Downloader) imagePath(id int64) string {
	return filepath.Join(d.dir, fmt.Sprintf("ai-image-%d.jpg", id))
}

func (d *Downloader) thumbnailPath(id int64) string {
	return filepath.Join(d.dir, thumbnailDirName, fmt.Sprintf("ai-image-%d-thumb.jpg", id))
}
