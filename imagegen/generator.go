package imagegen

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"aistudio/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Generator orchestrates one submission end to end: validate, consult the
// cache, run N bounded fetches with index-aligned seeds, and memoize the
// completed batch.
//
// Submission supersession: a new Generate call cancels the in-flight one.
// The superseded call returns ErrSuperseded and its partial results are
// discarded, never cached. Callers that want strict serialization can
// simply avoid overlapping calls.
//
// Thread-Safety: Generator is safe for concurrent use; the supersession
// handoff is serialized by a mutex.
type Generator struct {
	fetcher *Fetcher
	cache   *Cache
	styles  *StyleSet
	logger  *logging.Logger
	config  GeneratorConfig

	// mu guards inFlight
	mu       sync.Mutex
	inFlight *submission
}

// GeneratorConfig holds configuration for the batch generator.
type GeneratorConfig struct {
	// BaseURL is the generation endpoint root.
	BaseURL string

	// BatchSize is the number of variations per submission.
	BatchSize int

	// MaxConcurrent bounds in-flight image loads within one batch.
	MaxConcurrent int
}

// DefaultGeneratorConfig returns sensible defaults: nine variations with
// three loads in flight.
func DefaultGeneratorConfig(baseURL string) GeneratorConfig {
	return GeneratorConfig{
		BaseURL:       baseURL,
		BatchSize:     9,
		MaxConcurrent: 3,
	}
}

// NewGenerator creates a batch generator.
//
// Parameters:
//   - fetcher: the bounded image fetcher
//   - cache: session cache consulted before any network work
//   - styles: style preset set used to expand prompts
//   - logger: structured logger
//   - config: generator configuration
//
// Returns an error if any required component is nil or the config is
// invalid.
func NewGenerator(fetcher *Fetcher, cache *Cache, styles *StyleSet, logger *logging.Logger, config GeneratorConfig) (*Generator, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("imagegen: fetcher cannot be nil")
	}
	if cache == nil {
		return nil, fmt.Errorf("imagegen: cache cannot be nil")
	}
	if styles == nil {
		return nil, fmt.Errorf("imagegen: style set cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("imagegen: base URL cannot be empty")
	}
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("imagegen: batch size must be positive, got %d", config.BatchSize)
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}

	return &Generator{
		fetcher: fetcher,
		cache:   cache,
		styles:  styles,
		logger:  logger.Named("generator"),
		config:  config,
	}, nil
}

// Config returns the generator configuration.
func (g *Generator) Config() GeneratorConfig {
	return g.config
}

// Styles returns the generator's style preset set.
func (g *Generator) Styles() *StyleSet {
	return g.styles
}

// Generate produces a batch of exactly BatchSize results for one
// submission.
//
// The flow is:
//  1. Validate: an empty effective prompt fails with ErrEmptyPrompt
//     before the cache or network is touched.
//  2. Consult the cache; a hit returns the memoized batch with zero
//     network calls.
//  3. Cancel any in-flight submission (supersession).
//  4. Fetch all items with bounded concurrency. Item i keeps slot i
//     regardless of completion order; a pinned seed gives item i seed
//     base+i, otherwise no seed is sent and the remote service
//     randomizes each item. Item failures are isolated: they settle as
//     Result{OK: false} without aborting the batch.
//  5. Store the completed batch in the cache, unless this submission
//     was itself superseded meanwhile.
//
// Returns ErrSuperseded if a newer submission cancelled this one, or the
// parent context's error if it was cancelled from outside.
func (g *Generator) Generate(ctx context.Context, params Parameters) (Batch, error) {
	batchID := uuid.NewString()
	log := g.logger.With(zap.String("batch_id", batchID))

	// Step 1: validate
	effectivePrompt, err := g.styles.EffectivePrompt(params)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(effectivePrompt) == "" {
		return nil, ErrEmptyPrompt
	}

	// Step 2: cache
	fp := NewFingerprint(params, effectivePrompt)
	if batch, ok := g.cache.Lookup(fp); ok {
		log.Debug("cache hit", zap.String("fingerprint", fp.String()))
		return batch, nil
	}

	// Step 3: supersede any in-flight submission
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	token := g.takeOver(cancel, log)

	log.Info("starting batch generation",
		zap.String("prompt_preview", truncateText(effectivePrompt, 50)),
		zap.String("model", params.Model),
		zap.Int("count", g.config.BatchSize),
		zap.Bool("seeded", params.Seed != nil))

	// Step 4: fetch with bounded, index-preserving concurrency
	results := make(Batch, g.config.BatchSize)
	sem := make(chan struct{}, g.config.MaxConcurrent)
	var wg sync.WaitGroup

	for i := 0; i < g.config.BatchSize; i++ {
		var itemSeed *int64
		if params.Seed != nil {
			s := *params.Seed + int64(i)
			itemSeed = &s
		}

		url := BuildURL(g.config.BaseURL, effectivePrompt, params, itemSeed)

		wg.Add(1)
		go func(slot int, url string, seed *int64) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-batchCtx.Done():
				results[slot] = Result{Seed: seed}
				return
			}

			results[slot] = g.fetcher.Fetch(batchCtx, url, seed)
		}(i, url, itemSeed)
	}
	wg.Wait()

	// Step 5: resolve outcome
	if batchCtx.Err() != nil {
		if ctx.Err() != nil {
			log.Info("batch cancelled by caller")
			return nil, ctx.Err()
		}
		log.Info("batch superseded by newer submission")
		return nil, ErrSuperseded
	}

	g.cache.Store(fp, results)
	g.release(token)

	log.Info("batch complete",
		zap.Int("succeeded", results.Succeeded()),
		zap.Int("failed", len(results)-results.Succeeded()))

	return results, nil
}

// submission identifies one in-flight Generate call so releases can be
// matched to the registration they belong to.
type submission struct {
	cancel context.CancelFunc
}

// takeOver cancels the previous in-flight submission and registers this
// one.
func (g *Generator) takeOver(cancel context.CancelFunc, log *logging.Logger) *submission {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight != nil {
		log.Debug("cancelling superseded submission")
		g.inFlight.cancel()
	}
	token := &submission{cancel: cancel}
	g.inFlight = token
	return token
}

// release clears the in-flight slot, but only if it still belongs to
// this submission; a newer registration is left alone.
func (g *Generator) release(token *submission) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight == token {
		g.inFlight = nil
	}
}
