package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"aistudio/logging"

	"go.uber.org/zap"
)

// maxModelListBytes caps how much of the model list response is read.
// The real list is a few hundred bytes; anything larger is garbage.
const maxModelListBytes = 1 << 20

// DefaultModels returns the built-in model list used when the remote
// catalog cannot be fetched.
func DefaultModels() []string {
	return []string{"flux", "turbo"}
}

// ModelCatalog fetches the list of available generation models from the
// remote service, falling back to a built-in list when the service is
// unreachable or returns something unusable.
type ModelCatalog struct {
	client *http.Client
	url    string
	logger *logging.Logger
}

// NewModelCatalog creates a ModelCatalog.
//
// Parameters:
//   - client: HTTP client used for catalog requests
//   - url: the model list endpoint
//   - logger: structured logger
func NewModelCatalog(client *http.Client, url string, logger *logging.Logger) (*ModelCatalog, error) {
	if client == nil {
		return nil, fmt.Errorf("imagegen: http client cannot be nil")
	}
	if url == "" {
		return nil, fmt.Errorf("imagegen: model list URL cannot be empty")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &ModelCatalog{
		client: client,
		url:    url,
		logger: logger.Named("models"),
	}, nil
}

// List returns the available model names, sorted.
//
// On any failure — transport error, bad status, malformed body, empty
// list — it returns DefaultModels together with a *ModelListError so
// callers can warn without aborting. The returned list is always
// non-empty.
func (c *ModelCatalog) List(ctx context.Context) ([]string, error) {
	names, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("model list unavailable, using defaults", zap.Error(err))
		return DefaultModels(), &ModelListError{Err: err}
	}

	sort.Strings(names)
	c.logger.Debug("model list fetched", zap.Int("count", len(names)))
	return names, nil
}

func (c *ModelCatalog) fetch(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating model list request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching model list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model list returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxModelListBytes))
	if err != nil {
		return nil, fmt.Errorf("reading model list: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing model list: %w", err)
	}

	// Entries are plain name strings, but newer catalog revisions use
	// objects with a "name" field; accept both.
	names := make([]string, 0, len(raw))
	for _, entry := range raw {
		var name string
		if err := json.Unmarshal(entry, &name); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
			continue
		}

		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(entry, &obj); err == nil {
			if name = strings.TrimSpace(obj.Name); name != "" {
				names = append(names, name)
			}
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("model list is empty")
	}

	c.logger.Debug("model list request complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(body)))

	return names, nil
}
