package collection

import (
	"context"
	"fmt"
	"strings"
)

// SortOrder controls the creation-order sort of List results.
type SortOrder int

const (
	// SortNewestFirst returns the most recently saved images first (default).
	SortNewestFirst SortOrder = iota

	// SortOldestFirst returns images in creation order.
	SortOldestFirst
)

// ListOptions filters and sorts a List call. Zero value lists everything
// newest-first.
type ListOptions struct {
	// PromptContains keeps images whose prompt contains this substring
	// (case-insensitive). Empty matches all.
	PromptContains string

	// TagContains keeps images where any tag contains this substring
	// (case-insensitive). Empty matches all.
	TagContains string

	// Sort is the creation-order direction.
	Sort SortOrder
}

// List returns a read-only view over the collection. It never mutates
// the store.
//
// Prompt filtering and sorting happen in SQL; the tag-substring filter is
// applied in Go because tags are stored as a JSON array.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]SavedImage, error) {
	query := selectColumns
	var args []interface{}

	if opts.PromptContains != "" {
		// LIKE is case-insensitive for ASCII in SQLite
		query += " WHERE prompt LIKE ?"
		args = append(args, "%"+opts.PromptContains+"%")
	}

	if opts.Sort == SortOldestFirst {
		query += " ORDER BY id ASC"
	} else {
		query += " ORDER BY id DESC"
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("collection: list query failed: %w", err)
	}
	defer rows.Close()

	images := []SavedImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("collection: failed to scan image row: %w", err)
		}
		if opts.TagContains != "" && !img.HasTagSubstring(opts.TagContains) {
			continue
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collection: list iteration failed: %w", err)
	}

	return images, nil
}

// anyContainsFold reports whether any element contains sub, case-insensitively.
func anyContainsFold(values []string, sub string) bool {
	lowered := strings.ToLower(sub)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), lowered) {
			return true
		}
	}
	return false
}
