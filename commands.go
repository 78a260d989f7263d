package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"aistudio/collection"
	"aistudio/core"
	"aistudio/db"
	"aistudio/imagegen"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// openCollection opens the collection database and store. The returned
// closer must be called when the command is done.
func (a *app) openCollection() (*collection.Store, func(), error) {
	database, err := db.Open(a.config.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening collection database: %w", err)
	}

	store, err := collection.NewStore(database.Conn())
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("opening collection store: %w", err)
	}

	return store, func() { database.Close() }, nil
}

// newDownloader wires a Downloader against the configured downloads
// directory.
func (a *app) newDownloader(store *collection.Store) (*imagegen.Downloader, error) {
	return imagegen.NewDownloader(core.GetDefaultHTTPClient(), store, a.config.DownloadsDir, a.logger)
}

func (a *app) loadStyles() (*imagegen.StyleSet, error) {
	return imagegen.LoadStylesOrBuiltin(a.config.StylesFile)
}

// cmdGenerate runs one generation submission and prints the batch.
func (a *app) cmdGenerate(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	prompt := fs.String("prompt", "", "prompt text (required)")
	model := fs.String("model", a.config.DefaultModel, "generation model")
	width := fs.Int("width", a.config.DefaultWidth, "image width in pixels")
	height := fs.Int("height", a.config.DefaultHeight, "image height in pixels")
	ratio := fs.String("ratio", "", "aspect ratio preset (1:1, 16:9, 4:3, 3:2); overrides width/height")
	seed := fs.Int64("seed", -1, "base seed; item i uses seed+i (negative picks a random base)")
	noSeed := fs.Bool("no-seed", false, "send no seed and let the service randomize each image")
	style := fs.String("style", "", "style preset name")
	count := fs.Int("count", a.config.BatchSize, "number of variations")
	save := fs.String("save", "", "save results after generation: \"all\" or comma-separated indices")
	if err := fs.Parse(args); err != nil {
		return core.ExitCodeUsage
	}

	if *ratio != "" {
		preset, ok := imagegen.LookupRatio(*ratio)
		if !ok {
			color.Red("Unknown ratio preset: %s", *ratio)
			return core.ExitCodeUsage
		}
		*width, *height = preset.Width, preset.Height
	}

	params := imagegen.Parameters{
		Prompt: *prompt,
		Model:  *model,
		Width:  *width,
		Height: *height,
		Style:  *style,
	}
	if !*noSeed {
		base := *seed
		if base < 0 {
			base = imagegen.RandomSeed()
			fmt.Printf("Base seed: %d\n", base)
		}
		params.Seed = &base
	}

	styles, err := a.loadStyles()
	if err != nil {
		color.Red("Failed to load styles: %v", err)
		return core.ExitCodeError
	}

	fetcher, err := imagegen.NewFetcher(core.GetHTTPClient(0), a.config.FetchTimeout, a.logger)
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}

	generator, err := imagegen.NewGenerator(fetcher, imagegen.NewCache(), styles, a.logger, imagegen.GeneratorConfig{
		BaseURL:       a.config.BaseURL,
		BatchSize:     *count,
		MaxConcurrent: a.config.MaxConcurrentFetches,
	})
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}

	batch, err := generator.Generate(ctx, params)
	switch {
	case errors.Is(err, imagegen.ErrEmptyPrompt):
		color.Red("Prompt cannot be empty (use -prompt, or -style for a style-only prompt)")
		return core.ExitCodeUsage
	case err != nil:
		var unknown *imagegen.UnknownStyleError
		if errors.As(err, &unknown) {
			color.Red("%v", unknown)
			color.Yellow("  Run 'aistudio styles' to list available presets")
			return core.ExitCodeUsage
		}
		color.Red("Generation failed: %v", err)
		return core.ExitCodeError
	}

	printBatch(batch)

	if *save != "" {
		return a.saveFromBatch(ctx, batch, params, *save)
	}
	return core.ExitCodeSuccess
}

func printBatch(batch imagegen.Batch) {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	for i, res := range batch {
		seedText := "random"
		if res.Seed != nil {
			seedText = strconv.FormatInt(*res.Seed, 10)
		}
		if res.OK {
			ok.Printf("  [%d] seed=%-10s %s\n", i, seedText, res.URL)
		} else {
			bad.Printf("  [%d] seed=%-10s failed\n", i, seedText)
		}
	}

	fmt.Printf("%d of %d images generated\n", batch.Succeeded(), len(batch))
}

// saveFromBatch saves the selected batch items to the collection.
// selection is "all" or comma-separated zero-based indices.
func (a *app) saveFromBatch(ctx context.Context, batch imagegen.Batch, params imagegen.Parameters, selection string) int {
	selected, err := parseSelection(selection, len(batch))
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeUsage
	}

	store, closeStore, err := a.openCollection()
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}
	defer closeStore()

	downloader, err := a.newDownloader(store)
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}

	code := core.ExitCodeSuccess
	for _, i := range selected {
		if !batch[i].OK {
			color.Yellow("  [%d] skipped: generation failed", i)
			continue
		}
		outcome, err := downloader.Save(ctx, batch[i], params)
		if err != nil {
			color.Red("  [%d] save failed: %v", i, err)
			code = core.ExitCodeError
			continue
		}
		if outcome.Added {
			color.Green("  [%d] saved as %s (id %d)", i, outcome.Path, outcome.Image.ID)
		} else {
			color.Yellow("  [%d] already in collection (id %d)", i, outcome.Image.ID)
		}
	}
	return code
}

// parseSelection expands "all" or a comma-separated index list against a
// batch of n items.
func parseSelection(selection string, n int) ([]int, error) {
	if selection == "all" {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	var indices []int
	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q in -save", part)
		}
		if i < 0 || i >= n {
			return nil, fmt.Errorf("index %d out of range [0, %d)", i, n)
		}
		indices = append(indices, i)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("-save selected nothing")
	}
	return indices, nil
}

// cmdModels lists the available generation models.
func (a *app) cmdModels(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return core.ExitCodeUsage
	}

	catalog, err := imagegen.NewModelCatalog(core.GetDefaultHTTPClient(), a.config.ModelsURL, a.logger)
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}

	models, err := catalog.List(ctx)
	if err != nil {
		color.Yellow("Model list unavailable, showing built-in defaults (%v)", err)
	}

	for _, name := range models {
		if name == a.config.DefaultModel {
			color.Green("  %s (default)", name)
		} else {
			fmt.Printf("  %s\n", name)
		}
	}
	return core.ExitCodeSuccess
}

// cmdStyles lists the style presets.
func (a *app) cmdStyles(args []string) int {
	fs := flag.NewFlagSet("styles", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return core.ExitCodeUsage
	}

	styles, err := a.loadStyles()
	if err != nil {
		color.Red("Failed to load styles: %v", err)
		return core.ExitCodeError
	}

	for _, s := range styles.Styles() {
		color.New(color.Bold).Printf("  %-12s", s.Name)
		fmt.Printf(" %s\n", s.Prompt)
	}
	return core.ExitCodeSuccess
}

// cmdSave downloads one image by URL and records it in the collection.
func (a *app) cmdSave(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	url := fs.String("url", "", "image URL (required)")
	prompt := fs.String("prompt", "", "prompt the image was generated from")
	model := fs.String("model", a.config.DefaultModel, "model the image was generated with")
	seed := fs.Int64("seed", -1, "seed the image was generated with (negative for unknown)")
	width := fs.Int("width", a.config.DefaultWidth, "image width in pixels")
	height := fs.Int("height", a.config.DefaultHeight, "image height in pixels")
	style := fs.String("style", "", "style preset the image was generated with")
	tags := fs.String("tags", "", "comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return core.ExitCodeUsage
	}

	if *url == "" {
		color.Red("-url is required")
		return core.ExitCodeUsage
	}

	store, closeStore, err := a.openCollection()
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}
	defer closeStore()

	downloader, err := a.newDownloader(store)
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}

	res := imagegen.Result{URL: *url, OK: true}
	if *seed >= 0 {
		res.Seed = seed
	}

	outcome, err := downloader.Save(ctx, res, imagegen.Parameters{
		Prompt: *prompt,
		Model:  *model,
		Width:  *width,
		Height: *height,
		Style:  *style,
	})
	if err != nil {
		color.Red("Save failed: %v", err)
		return core.ExitCodeError
	}

	if !outcome.Added {
		color.Yellow("Already in collection (id %d)", outcome.Image.ID)
		return core.ExitCodeSuccess
	}

	if *tags != "" {
		tagList := splitTags(*tags)
		if err := store.Update(ctx, outcome.Image.ID, collection.UpdateFields{Tags: &tagList}); err != nil {
			color.Red("Saved, but tagging failed: %v", err)
			return core.ExitCodeError
		}
	}

	color.Green("Saved as %s (id %d)", outcome.Path, outcome.Image.ID)
	a.logger.Info("Image saved via CLI",
		zap.Int64("id", outcome.Image.ID),
		zap.String("path", outcome.Path))
	return core.ExitCodeSuccess
}

// splitTags parses a comma-separated tag list, dropping empty entries.
func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if tags == nil {
		tags = []string{}
	}
	return tags
}
