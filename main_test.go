package main

import (
	"context"
	"reflect"
	"testing"

	"aistudio/core"
	"aistudio/logging"
)

func newTestApp(t *testing.T) *app {
	t.Helper()

	return &app{
		config: &core.Config{
			BaseURL:              "https://example.com",
			ModelsURL:            "https://example.com/models",
			DefaultModel:         core.DefaultModel,
			DefaultWidth:         core.DefaultWidth,
			DefaultHeight:        core.DefaultHeight,
			BatchSize:            core.DefaultBatchSize,
			FetchTimeout:         core.DefaultFetchTimeout,
			MaxConcurrentFetches: core.DefaultMaxConcurrentFetches,
			DataDir:              t.TempDir(),
			DownloadsDir:         t.TempDir(),
		},
		logger: logging.NewNop(),
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		n         int
		want      []int
		wantErr   bool
	}{
		{"all expands to every index", "all", 3, []int{0, 1, 2}, false},
		{"comma-separated list", "0,2", 3, []int{0, 2}, false},
		{"whitespace tolerated", " 1 , 2 ", 3, []int{1, 2}, false},
		{"out of range rejected", "3", 3, nil, true},
		{"negative rejected", "-1", 3, nil, true},
		{"garbage rejected", "one", 3, nil, true},
		{"empty selection rejected", ",", 3, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.selection, tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSelection(%q, %d) error = %v, wantErr %v", tt.selection, tt.n, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSelection(%q, %d) = %v, want %v", tt.selection, tt.n, got, tt.want)
			}
		})
	}
}

func TestSplitTags(t *testing.T) {
	if got := splitTags("fox, forest , "); !reflect.DeepEqual(got, []string{"fox", "forest"}) {
		t.Errorf("splitTags = %v, want [fox forest]", got)
	}
	if got := splitTags(""); len(got) != 0 || got == nil {
		t.Errorf("splitTags of empty input = %#v, want empty non-nil slice", got)
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	app := newTestApp(t)

	if code := app.dispatch(context.Background(), "frobnicate", nil); code != core.ExitCodeUsage {
		t.Errorf("unknown command exit code = %d, want %d", code, core.ExitCodeUsage)
	}
}

func TestDispatch_Help(t *testing.T) {
	app := newTestApp(t)

	if code := app.dispatch(context.Background(), "help", nil); code != core.ExitCodeSuccess {
		t.Errorf("help exit code = %d, want %d", code, core.ExitCodeSuccess)
	}
}

func TestDispatch_DeleteWithoutArgs(t *testing.T) {
	app := newTestApp(t)

	if code := app.dispatch(context.Background(), "delete", nil); code != core.ExitCodeUsage {
		t.Errorf("bare delete exit code = %d, want %d", code, core.ExitCodeUsage)
	}
}
