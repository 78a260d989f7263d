// Package imagegen implements the image generation core: building
// request URLs from a parameter set, fetching batches of variations with
// per-item timeouts and isolated failure, memoizing finished batches by
// parameter fingerprint, and saving previewed images to the collection.
package imagegen

// Parameters describes one generation submission.
type Parameters struct {
	// Prompt is the user's prompt text. Never mutated by style
	// application; the style descriptor is appended only in the
	// effective prompt sent to the service.
	Prompt string

	// Model is the model identifier (e.g. "flux").
	Model string

	// Width and Height are the requested image dimensions in pixels.
	Width  int
	Height int

	// Seed pins the base seed for the batch. Item i uses Seed + i.
	// Nil means no seed is sent and the service randomizes each item.
	Seed *int64

	// Style names a style preset whose descriptor text is appended to
	// the prompt. Empty means no style.
	Style string
}

// Result is the outcome of one batch item.
type Result struct {
	// URL is the image URL on success, empty on failure.
	URL string

	// Seed is the seed this item was requested with, or nil when the
	// submission was unseeded and the remote service randomized.
	Seed *int64

	// OK reports whether the image loaded before its deadline.
	OK bool
}

// Batch is the ordered, fixed-size result set of one submission.
// Index i always corresponds to attempt i. A batch is immutable once
// produced; the cache hands out copies.
type Batch []Result

// Succeeded returns the number of items that loaded.
func (b Batch) Succeeded() int {
	n := 0
	for _, r := range b {
		if r.OK {
			n++
		}
	}
	return n
}

// RatioPreset is a named aspect-ratio preset mapping to fixed dimensions.
type RatioPreset struct {
	Name   string
	Width  int
	Height int
}

// RatioPresets are the selectable aspect-ratio presets, in display order.
var RatioPresets = []RatioPreset{
	{Name: "1:1", Width: 1024, Height: 1024},
	{Name: "16:9", Width: 1920, Height: 1080},
	{Name: "4:3", Width: 1600, Height: 1200},
	{Name: "3:2", Width: 1200, Height: 800},
}

// LookupRatio returns the preset with the given name.
func LookupRatio(name string) (RatioPreset, bool) {
	for _, r := range RatioPresets {
		if r.Name == name {
			return r, true
		}
	}
	return RatioPreset{}, false
}
