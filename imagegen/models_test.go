package imagegen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"aistudio/logging"
)

func newTestCatalog(t *testing.T, handler http.HandlerFunc) *ModelCatalog {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	catalog, err := NewModelCatalog(&http.Client{}, server.URL, logging.NewNop())
	if err != nil {
		t.Fatalf("NewModelCatalog failed: %v", err)
	}
	return catalog
}

func TestModelList_ParsesNameStrings(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["turbo", "flux", "kontext"]`))
	})

	models, err := catalog.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if want := []string{"flux", "kontext", "turbo"}; !reflect.DeepEqual(models, want) {
		t.Errorf("models = %v, want %v sorted", models, want)
	}
}

func TestModelList_ParsesObjectEntries(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name": "flux", "tier": "free"}, {"name": "turbo"}]`))
	})

	models, err := catalog.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if want := []string{"flux", "turbo"}; !reflect.DeepEqual(models, want) {
		t.Errorf("models = %v, want %v", models, want)
	}
}

func TestModelList_FallsBackOnServerError(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	models, err := catalog.List(context.Background())

	var listErr *ModelListError
	if !errors.As(err, &listErr) {
		t.Fatalf("err = %v, want ModelListError", err)
	}
	if !reflect.DeepEqual(models, DefaultModels()) {
		t.Errorf("models = %v, want defaults %v", models, DefaultModels())
	}
}

func TestModelList_FallsBackOnMalformedBody(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"oops": "not a list"}`))
	})

	models, err := catalog.List(context.Background())
	if err == nil {
		t.Fatal("malformed body reported no error")
	}
	if len(models) == 0 {
		t.Error("fallback list is empty")
	}
}

func TestModelList_FallsBackOnEmptyList(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	models, err := catalog.List(context.Background())
	if err == nil {
		t.Fatal("empty list reported no error")
	}
	if !reflect.DeepEqual(models, DefaultModels()) {
		t.Errorf("models = %v, want defaults", models)
	}
}

func TestDefaultModels_NonEmpty(t *testing.T) {
	if len(DefaultModels()) == 0 {
		t.Fatal("default model list is empty")
	}
}
