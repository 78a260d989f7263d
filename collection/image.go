// Package collection implements the durable store of saved images and
// their metadata. State lives in SQLite and survives restarts; every
// mutation is committed before the call returns.
package collection

import (
	"time"
)

// SavedImage is one saved (downloaded) image with its generation metadata.
// The JSON field names match the export format produced by Export.
type SavedImage struct {
	ID        int64    `json:"id"`             // Monotonic creation timestamp (ms)
	URL       string   `json:"url"`            // Remote image URL, unique per store
	Prompt    string   `json:"prompt"`         // User prompt (without style text)
	Model     string   `json:"model"`          // Model identifier
	Seed      *int64   `json:"seed"`           // Seed used, nil when randomized
	Width     int      `json:"width"`          // Pixel width
	Height    int      `json:"height"`         // Pixel height
	Tags      []string `json:"tags"`           // User tags, empty slice when none
	Style     string   `json:"style"`          // Style preset name, "" when none
	CreatedAt string   `json:"createdAt"`      // RFC3339 creation time
}

// NewImage describes an image being added to the store. The store assigns
// the ID and creation time.
type NewImage struct {
	URL    string
	Prompt string
	Model  string
	Seed   *int64
	Width  int
	Height int
	Tags   []string
	Style  string
}

// UpdateFields holds a partial metadata update. Nil fields are left
// untouched; non-nil fields replace the stored value.
type UpdateFields struct {
	Prompt *string
	Tags   *[]string
}

// CreatedTime parses the image's creation timestamp.
// Falls back to the ID (creation millis) if the string does not parse.
func (img *SavedImage) CreatedTime() time.Time {
	if t, err := time.Parse(time.RFC3339, img.CreatedAt); err == nil {
		return t
	}
	return time.UnixMilli(img.ID)
}

// HasTagSubstring reports whether any tag contains the given substring,
// case-insensitively.
func (img *SavedImage) HasTagSubstring(sub string) bool {
	return anyContainsFold(img.Tags, sub)
}
