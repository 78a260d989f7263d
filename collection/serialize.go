package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Export writes the whole collection as a JSON array, newest-first.
// The format matches the SavedImage JSON field names and round-trips
// through Import.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	images, err := s.List(ctx, ListOptions{Sort: SortNewestFirst})
	if err != nil {
		return fmt.Errorf("collection: export failed: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(images); err != nil {
		return fmt.Errorf("collection: failed to encode export: %w", err)
	}
	return nil
}

// ImportResult summarizes an Import call.
type ImportResult struct {
	Added   int // Records inserted
	Skipped int // Records skipped because their URL was already present
}

// Import reads a JSON array of saved images (as produced by Export) and
// adds each record to the store. Records whose URL already exists are
// skipped, matching Add's dedup behavior. Original IDs are not preserved;
// the store assigns fresh monotonic IDs in input order, so a newest-first
// export imports into an empty store with its relative order intact.
func (s *Store) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult

	var images []SavedImage
	if err := json.NewDecoder(r).Decode(&images); err != nil {
		return result, fmt.Errorf("collection: failed to decode import: %w", err)
	}

	// A newest-first export is walked backwards so the oldest record is
	// inserted first and receives the smallest fresh ID.
	for i := len(images) - 1; i >= 0; i-- {
		img := images[i]
		if img.URL == "" {
			continue
		}

		exists, err := s.Has(ctx, img.URL)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
			continue
		}

		if _, err := s.Add(ctx, NewImage{
			URL:    img.URL,
			Prompt: img.Prompt,
			Model:  img.Model,
			Seed:   img.Seed,
			Width:  img.Width,
			Height: img.Height,
			Tags:   img.Tags,
			Style:  img.Style,
		}); err != nil {
			return result, fmt.Errorf("collection: failed to import %q: %w", img.URL, err)
		}
		result.Added++
	}

	return result, nil
}
