package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Store provides CRUD operations over the saved_images table.
//
// Thread-Safety: Store serializes mutations through a mutex so the
// url-dedup and merge-update invariants hold under concurrent callers;
// reads go straight to the database.
type Store struct {
	conn *sql.DB

	// mu guards mutations and lastID
	mu sync.Mutex

	// lastID is the most recently assigned image ID. IDs are creation
	// timestamps in milliseconds, bumped on collision so they stay
	// strictly monotonic within a process and sortable across restarts.
	lastID int64

	now func() time.Time // injectable clock for tests
}

// NewStore creates a Store over an open database connection.
// The connection is expected to be migrated already (db.Open does this).
func NewStore(conn *sql.DB) (*Store, error) {
	if conn == nil {
		return nil, fmt.Errorf("collection: database connection cannot be nil")
	}

	s := &Store{
		conn: conn,
		now:  time.Now,
	}

	// Seed the ID watermark from existing rows so restarts keep IDs monotonic.
	var maxID sql.NullInt64
	if err := conn.QueryRow("SELECT MAX(id) FROM saved_images").Scan(&maxID); err != nil {
		return nil, fmt.Errorf("collection: failed to read id watermark: %w", err)
	}
	if maxID.Valid {
		s.lastID = maxID.Int64
	}

	return s, nil
}

// Add saves an image to the collection. Adding a URL that is already
// present is a no-op that returns the existing record unchanged.
//
// New records get a unique monotonic ID derived from the creation time.
func (s *Store) Add(ctx context.Context, img NewImage) (SavedImage, error) {
	if img.URL == "" {
		return SavedImage{}, fmt.Errorf("collection: image URL cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Dedup by URL
	existing, err := s.getByURL(ctx, img.URL)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return SavedImage{}, fmt.Errorf("collection: dedup lookup failed: %w", err)
	}

	now := s.now()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	tags := img.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return SavedImage{}, fmt.Errorf("collection: failed to encode tags: %w", err)
	}

	saved := SavedImage{
		ID:        id,
		URL:       img.URL,
		Prompt:    img.Prompt,
		Model:     img.Model,
		Seed:      img.Seed,
		Width:     img.Width,
		Height:    img.Height,
		Tags:      tags,
		Style:     img.Style,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO saved_images (id, url, prompt, model, seed, width, height, tags, style, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.URL, saved.Prompt, saved.Model, nullableSeed(saved.Seed),
		saved.Width, saved.Height, string(tagsJSON), saved.Style, saved.CreatedAt,
	)
	if err != nil {
		return SavedImage{}, fmt.Errorf("collection: failed to insert image: %w", err)
	}

	return saved, nil
}

// Get returns the image with the given ID.
// Returns sql.ErrNoRows wrapped if the ID is absent.
func (s *Store) Get(ctx context.Context, id int64) (SavedImage, error) {
	row := s.conn.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	img, err := scanImage(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return SavedImage{}, fmt.Errorf("collection: image %d: %w", id, err)
		}
		return SavedImage{}, fmt.Errorf("collection: failed to load image %d: %w", id, err)
	}
	return img, nil
}

// Delete removes the image with the given ID. No-op if the ID is absent.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.ExecContext(ctx, "DELETE FROM saved_images WHERE id = ?", id); err != nil {
		return fmt.Errorf("collection: failed to delete image %d: %w", id, err)
	}
	return nil
}

// Update merges the given partial fields into the image's metadata.
// No-op if the ID is absent. Fields left nil are not modified.
func (s *Store) Update(ctx context.Context, id int64, fields UpdateFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fields.Prompt == nil && fields.Tags == nil {
		return nil
	}

	if fields.Prompt != nil {
		if _, err := s.conn.ExecContext(ctx,
			"UPDATE saved_images SET prompt = ? WHERE id = ?", *fields.Prompt, id); err != nil {
			return fmt.Errorf("collection: failed to update prompt for %d: %w", id, err)
		}
	}

	if fields.Tags != nil {
		tags := *fields.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("collection: failed to encode tags: %w", err)
		}
		if _, err := s.conn.ExecContext(ctx,
			"UPDATE saved_images SET tags = ? WHERE id = ?", string(tagsJSON), id); err != nil {
			return fmt.Errorf("collection: failed to update tags for %d: %w", id, err)
		}
	}

	return nil
}

// Count returns the number of saved images.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM saved_images").Scan(&n); err != nil {
		return 0, fmt.Errorf("collection: failed to count images: %w", err)
	}
	return n, nil
}

// Has reports whether an image with the given URL is already saved.
func (s *Store) Has(ctx context.Context, url string) (bool, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM saved_images WHERE url = ?", url).Scan(&n); err != nil {
		return false, fmt.Errorf("collection: url lookup failed: %w", err)
	}
	return n > 0, nil
}

// getByURL returns the image with the given URL, or sql.ErrNoRows.
// Caller must hold s.mu for mutation-path consistency.
func (s *Store) getByURL(ctx context.Context, url string) (SavedImage, error) {
	row := s.conn.QueryRowContext(ctx, selectColumns+" WHERE url = ?", url)
	return scanImage(row)
}

const selectColumns = `SELECT id, url, prompt, model, seed, width, height, tags, style, created_at FROM saved_images`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanImage(row rowScanner) (SavedImage, error) {
	var img SavedImage
	var seed sql.NullInt64
	var tagsJSON string

	err := row.Scan(&img.ID, &img.URL, &img.Prompt, &img.Model, &seed,
		&img.Width, &img.Height, &tagsJSON, &img.Style, &img.CreatedAt)
	if err != nil {
		return SavedImage{}, err
	}

	if seed.Valid {
		v := seed.Int64
		img.Seed = &v
	}

	if err := json.Unmarshal([]byte(tagsJSON), &img.Tags); err != nil {
		// A corrupt tags column should not make the record unreadable
		img.Tags = []string{}
	}
	if img.Tags == nil {
		img.Tags = []string{}
	}

	return img, nil
}

func nullableSeed(seed *int64) interface{} {
	if seed == nil {
		return nil
	}
	return *seed
}
