package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestExportImport_RoundTrip(t *testing.T) {
	src := newTestStore(t)
	ctx := context.Background()

	src.Add(ctx, NewImage{
		URL: "https://example.com/a.jpg", Prompt: "a red fox", Model: "flux",
		Seed: seedPtr(42), Width: 1024, Height: 1024, Tags: []string{"fox", "snow"}, Style: "Realistic",
	})
	src.Add(ctx, NewImage{
		URL: "https://example.com/b.jpg", Prompt: "city skyline", Model: "turbo",
	})

	var buf bytes.Buffer
	if err := src.Export(ctx, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := newTestStore(t)
	result, err := dst.Import(ctx, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Added != 2 || result.Skipped != 0 {
		t.Errorf("Import = %+v, want 2 added", result)
	}

	// Set equality by URL, metadata preserved
	images, _ := dst.List(ctx, ListOptions{})
	if len(images) != 2 {
		t.Fatalf("got %d images after import, want 2", len(images))
	}
	byURL := map[string]SavedImage{}
	for _, img := range images {
		byURL[img.URL] = img
	}
	fox := byURL["https://example.com/a.jpg"]
	if fox.Prompt != "a red fox" || fox.Model != "flux" || fox.Style != "Realistic" {
		t.Errorf("metadata lost: %+v", fox)
	}
	if fox.Seed == nil || *fox.Seed != 42 {
		t.Errorf("seed lost: %v", fox.Seed)
	}
	if len(fox.Tags) != 2 {
		t.Errorf("tags lost: %v", fox.Tags)
	}

	// Newest-first order reproduces from fresh IDs
	if images[0].URL != "https://example.com/b.jpg" {
		t.Errorf("import did not preserve relative order: first is %s", images[0].URL)
	}
}

func TestImport_DedupAgainstExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Add(ctx, NewImage{URL: "X", Prompt: "kept"})

	input := `[{"id": 1, "url": "X", "prompt": "clobbered"}, {"id": 2, "url": "Y"}]`
	result, err := store.Import(ctx, strings.NewReader(input))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Added != 1 || result.Skipped != 1 {
		t.Errorf("Import = %+v, want 1 added 1 skipped", result)
	}

	images, _ := store.List(ctx, ListOptions{PromptContains: "kept"})
	if len(images) != 1 {
		t.Errorf("existing record was clobbered by import")
	}
}

func TestImport_MalformedJSON(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Import(context.Background(), strings.NewReader("{not json")); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

func TestExport_EmptyTagsAsEmptyArray(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Add(ctx, NewImage{URL: "X"})

	var buf bytes.Buffer
	if err := store.Export(ctx, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var records []map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if string(records[0]["tags"]) != "[]" {
		t.Errorf("tags = %s, want []", records[0]["tags"])
	}
	if string(records[0]["seed"]) != "null" {
		t.Errorf("seed = %s, want null for randomized", records[0]["seed"])
	}
}
