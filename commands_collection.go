package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"aistudio/collection"
	"aistudio/core"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// cmdList prints the saved collection, filtered and sorted.
func (a *app) cmdList(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	promptFilter := fs.String("prompt", "", "only images whose prompt contains this text")
	tagFilter := fs.String("tag", "", "only images with a tag containing this text")
	oldest := fs.Bool("oldest", false, "oldest first instead of newest first")
	asJSON := fs.Bool("json", false, "print as JSON")
	if err := fs.Parse(args); err != nil {
		return core.ExitCodeUsage
	}

	store, closeStore, err := a.openCollection()
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}
	defer closeStore()

	opts := collection.ListOptions{
		PromptContains: *promptFilter,
		TagContains:    *tagFilter,
	}
	if *oldest {
		opts.Sort = collection.SortOldestFirst
	}

	images, err := store.List(ctx, opts)
	if err != nil {
		color.Red("List failed: %v", err)
		return core.ExitCodeError
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(images); err != nil {
			color.Red("Encoding failed: %v", err)
			return core.ExitCodeError
		}
		return core.ExitCodeSuccess
	}

	if len(images) == 0 {
		fmt.Println("Collection is empty.")
		return core.ExitCodeSuccess
	}

	for _, img := range images {
		printImage(img)
	}
	fmt.Printf("%d image(s)\n", len(images))
	return core.ExitCodeSuccess
}

func printImage(img collection.SavedImage) {
	id := color.New(color.Bold).Sprintf("%d", img.ID)
	seedText := "random"
	if img.Seed != nil {
		seedText = strconv.FormatInt(*img.Seed, 10)
	}

	fmt.Printf("%s  %s  %s  %dx%d  seed=%s", id, img.CreatedAt, img.Model, img.Width, img.Height, seedText)
	if img.Style != "" {
		fmt.Printf("  style=%s", img.Style)
	}
	if len(img.Tags) > 0 {
		fmt.Printf("  [%s]", strings.Join(img.Tags, ", "))
	}
	fmt.Printf("\n    %s\n    %s\n", img.Prompt, img.URL)
}

// cmdTag adds tags to a saved image, or removes them when remove is true.
func (a *app) cmdTag(ctx context.Context, args []string, remove bool) int {
	if len(args) < 2 {
		verb := "tag"
		if remove {
			verb = "untag"
		}
		color.Red("Usage: aistudio %s <id> <tag> [tag...]", verb)
		return core.ExitCodeUsage
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		color.Red("Invalid image ID: %s", args[0])
		return core.ExitCodeUsage
	}

	store, closeStore, err := a.openCollection()
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}
	defer closeStore()

	img, err := store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			color.Red("No image with ID %d", id)
			return core.ExitCodeError
		}
		color.Red("Lookup failed: %v", err)
		return core.ExitCodeError
	}

	var tags []string
	if remove {
		drop := make(map[string]bool, len(args)-1)
		for _, t := range args[1:] {
			drop[strings.ToLower(strings.TrimSpace(t))] = true
		}
		tags = []string{}
		for _, t := range img.Tags {
			if !drop[strings.ToLower(t)] {
				tags = append(tags, t)
			}
		}
	} else {
		seen := make(map[string]bool, len(img.Tags))
		tags = append(tags, img.Tags...)
		for _, t := range img.Tags {
			seen[strings.ToLower(t)] = true
		}
		for _, t := range args[1:] {
			t = strings.TrimSpace(t)
			if t == "" || seen[strings.ToLower(t)] {
				continue
			}
			seen[strings.ToLower(t)] = true
			tags = append(tags, t)
		}
	}

	if err := store.Update(ctx, id, collection.UpdateFields{Tags: &tags}); err != nil {
		color.Red("Update failed: %v", err)
		return core.ExitCodeError
	}

	if len(tags) == 0 {
		color.Green("Image %d now has no tags", id)
	} else {
		color.Green("Image %d tags: %s", id, strings.Join(tags, ", "))
	}
	return core.ExitCodeSuccess
}

// cmdEditPrompt rewrites the stored prompt of a saved image. Only the
// metadata changes; the saved file and URL stay as generated.
func (a *app) cmdEditPrompt(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("edit-prompt", flag.ContinueOnError)
	id := fs.Int64("id", 0, "image ID (required)")
	prompt := fs.String("prompt", "", "new prompt text (required)")
	if err := fs.Parse(args); err != nil {
		return core.ExitCodeUsage
	}

	if *id == 0 || *prompt == "" {
		color.Red("Both -id and -prompt are required")
		return core.ExitCodeUsage
	}

	store, closeStore, err := a.openCollection()
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}
	defer closeStore()

	if _, err := store.Get(ctx, *id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			color.Red("No image with ID %d", *id)
		} else {
			color.Red("Lookup failed: %v", err)
		}
		return core.ExitCodeError
	}

	if err := store.Update(ctx, *id, collection.UpdateFields{Prompt: prompt}); err != nil {
		color.Red("Update failed: %v", err)
		return core.ExitCodeError
	}

	color.Green("Image %d prompt updated", *id)
	return core.ExitCodeSuccess
}

// cmdDelete removes saved images by ID. Deleting an absent ID is
// reported but does not fail the command.
func (a *app) cmdDelete(ctx context.Context, args []string) int {
	if len(args) == 0 {
		color.Red("Usage: aistudio delete <id> [id...]")
		return core.ExitCodeUsage
	}

	store, closeStore, err := a.openCollection()
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}
	defer closeStore()

	code := core.ExitCodeSuccess
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			color.Red("Invalid image ID: %s", arg)
			code = core.ExitCodeUsage
			continue
		}

		if _, err := store.Get(ctx, id); errors.Is(err, sql.ErrNoRows) {
			color.Yellow("No image with ID %d, nothing deleted", id)
			continue
		}

		if err := store.Delete(ctx, id); err != nil {
			color.Red("Delete of %d failed: %v", id, err)
			code = core.ExitCodeError
			continue
		}
		color.Green("Deleted image %d", id)
		a.logger.Info("Image deleted via CLI", zap.Int64("id", id))
	}
	return code
}

// cmdExport writes the collection as JSON, to a file or stdout.
func (a *app) cmdExport(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return core.ExitCodeUsage
	}

	store, closeStore, err := a.openCollection()
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}
	defer closeStore()

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			color.Red("Cannot create %s: %v", *out, err)
			return core.ExitCodeError
		}
		defer f.Close()
		w = f
	}

	if err := store.Export(ctx, w); err != nil {
		color.Red("Export failed: %v", err)
		return core.ExitCodeError
	}

	if *out != "" {
		count, _ := store.Count(ctx)
		color.Green("Exported %d image(s) to %s", count, *out)
	}
	return core.ExitCodeSuccess
}

// cmdImport reads a previously exported collection and merges it in.
func (a *app) cmdImport(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	in := fs.String("in", "", "input file (required)")
	if err := fs.Parse(args); err != nil {
		return core.ExitCodeUsage
	}

	if *in == "" {
		color.Red("-in is required")
		return core.ExitCodeUsage
	}

	f, err := os.Open(*in)
	if err != nil {
		color.Red("Cannot open %s: %v", *in, err)
		return core.ExitCodeError
	}
	defer f.Close()

	store, closeStore, err := a.openCollection()
	if err != nil {
		color.Red("%v", err)
		return core.ExitCodeError
	}
	defer closeStore()

	result, err := store.Import(ctx, f)
	if err != nil {
		color.Red("Import failed: %v", err)
		return core.ExitCodeError
	}

	color.Green("Imported %d image(s), skipped %d duplicate(s)", result.Added, result.Skipped)
	a.logger.Info("Collection imported",
		zap.String("file", *in),
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped))
	return core.ExitCodeSuccess
}
