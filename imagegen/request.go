package imagegen

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Canonical fingerprint values for absent optional fields. Using explicit
// sentinels (instead of empty strings) keeps "no seed" and "no style"
// distinct from user-supplied values that happen to be empty.
const (
	fingerprintRandomSeed = "random"
	fingerprintNoStyle    = "none"
)

// Fingerprint is the canonical composite key identifying one generation
// request for caching. It is a comparable struct, so prompts containing
// delimiter characters cannot collide the way concatenated string keys
// would.
type Fingerprint struct {
	Prompt string // effective prompt
	Seed   string // decimal base seed, or "random"
	Model  string
	Width  int
	Height int
	Style  string // style preset name, or "none"
}

// NewFingerprint builds the cache fingerprint for a parameter set.
// effectivePrompt must be the style-expanded prompt for the same
// parameters. Deterministic: identical inputs yield equal fingerprints.
func NewFingerprint(p Parameters, effectivePrompt string) Fingerprint {
	fp := Fingerprint{
		Prompt: effectivePrompt,
		Seed:   fingerprintRandomSeed,
		Model:  p.Model,
		Width:  p.Width,
		Height: p.Height,
		Style:  fingerprintNoStyle,
	}
	if p.Seed != nil {
		fp.Seed = strconv.FormatInt(*p.Seed, 10)
	}
	if p.Style != "" {
		fp.Style = p.Style
	}
	return fp
}

// String renders the fingerprint for logging.
func (fp Fingerprint) String() string {
	return fmt.Sprintf("%s|%s|%dx%d|seed=%s|style=%s",
		truncateText(fp.Prompt, 40), fp.Model, fp.Width, fp.Height, fp.Seed, fp.Style)
}

// BuildURL constructs the generation request URL for one batch item.
//
// The remote service takes the prompt (with the model tag appended) as a
// path segment and the remaining parameters as a query string:
//
//	{base}/prompt/{escaped-prompt,model:flux}?width=1024&height=1024&seed=42&nologo=true
//
// The seed parameter is omitted when seed is nil, letting the service
// randomize. Pure and deterministic: identical inputs yield byte-identical
// URLs.
func BuildURL(baseURL string, effectivePrompt string, p Parameters, seed *int64) string {
	segment := effectivePrompt
	if p.Model != "" {
		segment += ",model:" + p.Model
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	b.WriteString("/prompt/")
	b.WriteString(url.PathEscape(segment))
	b.WriteString("?width=")
	b.WriteString(strconv.Itoa(p.Width))
	b.WriteString("&height=")
	b.WriteString(strconv.Itoa(p.Height))
	if seed != nil {
		b.WriteString("&seed=")
		b.WriteString(strconv.FormatInt(*seed, 10))
	}
	b.WriteString("&nologo=true")

	return b.String()
}
