package collection

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"aistudio/db"
)

// newTestStore creates a Store over a fresh temp database.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store, err := NewStore(database.Conn())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func seedPtr(v int64) *int64 { return &v }

func TestAdd_AssignsIDAndTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	before := time.Now().UnixMilli()
	img, err := store.Add(ctx, NewImage{
		URL:    "https://example.com/a.jpg",
		Prompt: "a red fox",
		Model:  "flux",
		Seed:   seedPtr(42),
		Width:  1024,
		Height: 1024,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if img.ID < before {
		t.Errorf("ID %d predates the call (%d)", img.ID, before)
	}
	if img.Seed == nil || *img.Seed != 42 {
		t.Errorf("Seed = %v, want 42", img.Seed)
	}
	if img.Tags == nil || len(img.Tags) != 0 {
		t.Errorf("Tags = %v, want empty non-nil slice", img.Tags)
	}
	if _, err := time.Parse(time.RFC3339, img.CreatedAt); err != nil {
		t.Errorf("CreatedAt %q is not RFC3339: %v", img.CreatedAt, err)
	}
}

func TestAdd_DedupByURL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Add(ctx, NewImage{URL: "X", Prompt: "one"})
	if err != nil {
		t.Fatalf("first Add failed: %v", err)
	}

	// Second add with the same URL must be a no-op returning the original
	second, err := store.Add(ctx, NewImage{URL: "X", Prompt: "two"})
	if err != nil {
		t.Fatalf("second Add failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("dedup returned different ID: %d vs %d", second.ID, first.ID)
	}
	if second.Prompt != "one" {
		t.Errorf("dedup modified the record: prompt = %q", second.Prompt)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("store size = %d, want 1", count)
	}
}

func TestAdd_MonotonicIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Pin the clock so consecutive adds would collide without the bump
	fixed := time.Now()
	store.now = func() time.Time { return fixed }

	var prev int64
	for i := 0; i < 5; i++ {
		img, err := store.Add(ctx, NewImage{URL: string(rune('a' + i))})
		if err != nil {
			t.Fatalf("Add %d failed: %v", i, err)
		}
		if img.ID <= prev {
			t.Errorf("ID %d not strictly greater than previous %d", img.ID, prev)
		}
		prev = img.ID
	}
}

func TestAdd_EmptyURL(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Add(context.Background(), NewImage{URL: ""}); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestDelete_RemovesAndIgnoresAbsent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	img, err := store.Add(ctx, NewImage{URL: "X"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := store.Delete(ctx, img.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if count, _ := store.Count(ctx); count != 0 {
		t.Errorf("store size = %d after delete, want 0", count)
	}

	// Absent ID is a no-op
	if err := store.Delete(ctx, 999999); err != nil {
		t.Errorf("Delete of absent ID returned error: %v", err)
	}
}

func TestUpdate_MergesFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	img, err := store.Add(ctx, NewImage{
		URL:    "X",
		Prompt: "original",
		Tags:   []string{"sunset"},
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	newPrompt := "edited"
	if err := store.Update(ctx, img.ID, UpdateFields{Prompt: &newPrompt}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Get(ctx, img.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Prompt != "edited" {
		t.Errorf("Prompt = %q, want edited", got.Prompt)
	}
	// Tags untouched by a prompt-only update
	if len(got.Tags) != 1 || got.Tags[0] != "sunset" {
		t.Errorf("Tags = %v, want [sunset]", got.Tags)
	}

	newTags := []string{"sunset", "golden hour"}
	if err := store.Update(ctx, img.ID, UpdateFields{Tags: &newTags}); err != nil {
		t.Fatalf("tag Update failed: %v", err)
	}
	got, _ = store.Get(ctx, img.ID)
	if len(got.Tags) != 2 {
		t.Errorf("Tags = %v, want two entries", got.Tags)
	}
	if got.Prompt != "edited" {
		t.Errorf("tag update clobbered prompt: %q", got.Prompt)
	}
}

func TestUpdate_AbsentIDIsNoOp(t *testing.T) {
	store := newTestStore(t)
	p := "whatever"
	if err := store.Update(context.Background(), 12345, UpdateFields{Prompt: &p}); err != nil {
		t.Errorf("Update of absent ID returned error: %v", err)
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	ctx := context.Background()

	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store, err := NewStore(database.Conn())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	img, err := store.Add(ctx, NewImage{URL: "X", Prompt: "persisted", Tags: []string{"keep"}})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	database.Close()

	// Reopen: state must be intact and the ID watermark restored
	database, err = db.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer database.Close()

	store, err = NewStore(database.Conn())
	if err != nil {
		t.Fatalf("NewStore after reopen failed: %v", err)
	}

	got, err := store.Get(ctx, img.ID)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got.Prompt != "persisted" || len(got.Tags) != 1 {
		t.Errorf("record corrupted across reopen: %+v", got)
	}

	// New IDs must sort after pre-restart ones
	next, err := store.Add(ctx, NewImage{URL: "Y"})
	if err != nil {
		t.Fatalf("Add after reopen failed: %v", err)
	}
	if next.ID <= img.ID {
		t.Errorf("post-restart ID %d not greater than pre-restart %d", next.ID, img.ID)
	}
}
