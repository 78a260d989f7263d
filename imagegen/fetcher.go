package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"aistudio/logging"

	"go.uber.org/zap"
)

// Fetcher performs one bounded image load per call: a GET raced against a
// per-attempt deadline. Exactly one of three outcomes settles each call:
// the image loads in time (success), the load errors (failure), or the
// deadline elapses first (failure). The deadline timer is released as
// soon as either side settles, and a failure is always a tagged Result,
// never an error surfaced to batch assembly.
//
// Thread Safety: Fetcher is safe for concurrent use; each call owns its
// own request and deadline.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	logger  *logging.Logger
}

// NewFetcher creates a Fetcher.
//
// Parameters:
//   - client: HTTP client used for loads. Should not carry its own
//     timeout; the fetcher applies a per-attempt deadline instead.
//   - timeout: per-attempt deadline for a single image load.
//   - logger: structured logger.
func NewFetcher(client *http.Client, timeout time.Duration, logger *logging.Logger) (*Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("imagegen: http client cannot be nil")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("imagegen: fetch timeout must be positive, got %v", timeout)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Fetcher{
		client:  client,
		timeout: timeout,
		logger:  logger.Named("fetcher"),
	}, nil
}

// Timeout returns the per-attempt deadline.
func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

// Fetch attempts to load the image at url, tagging the result with seed.
// A nil seed marks an unseeded attempt where the remote service chose
// its own randomization.
//
// Success requires the response to arrive with a 2xx status and an image
// content type, and the body to be fully read, all before the deadline.
// Every failure mode (transport error, bad status, wrong content type,
// timeout, cancelled parent context) settles as Result{OK: false} with
// the seed preserved so batch assembly stays uniform.
func (f *Fetcher) Fetch(ctx context.Context, url string, seed *int64) Result {
	failed := Result{Seed: seed}

	if url == "" {
		f.logger.Warn("empty image url", zap.Int64p("seed", seed))
		return failed
	}

	// The deadline owns this attempt; cancel releases its timer as soon
	// as the load settles, whichever side wins the race.
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		f.logger.Warn("failed to create image request", zap.Error(err), zap.Int64p("seed", seed))
		return failed
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("image load failed",
			zap.Error(err),
			zap.Int64p("seed", seed),
			zap.Duration("elapsed", time.Since(start)))
		return failed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Debug("image load returned bad status",
			zap.Int("status", resp.StatusCode),
			zap.Int64p("seed", seed))
		return failed
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !isImageContentType(ct) {
		f.logger.Debug("image load returned non-image content",
			zap.String("content_type", ct),
			zap.Int64p("seed", seed))
		return failed
	}

	// The load only counts once the full body arrives within the deadline,
	// mirroring a browser image element's onload
	size, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		f.logger.Debug("image body truncated",
			zap.Error(err),
			zap.Int64p("seed", seed))
		return failed
	}

	f.logger.Debug("image loaded",
		zap.Int64p("seed", seed),
		zap.Int64("bytes", size),
		zap.Duration("elapsed", time.Since(start)))

	return Result{URL: url, Seed: seed, OK: true}
}
