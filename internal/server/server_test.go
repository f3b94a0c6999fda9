package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/warehouse"
)

func openTestDB(t *testing.T) *warehouse.DB {
	t.Helper()
	db, err := warehouse.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }

func seedTestDB(t *testing.T, db *warehouse.DB) {
	t.Helper()
	batch, err := db.Begin()
	if err != nil {
		t.Fatalf("failed to begin batch: %v", err)
	}

	lab, err := batch.GetOrCreate(warehouse.BreedDim("Labrador Retriever", "dog", ptr("Sporting"), nil, warehouse.SourceDogAPI))
	if err != nil {
		t.Fatalf("failed to create breed: %v", err)
	}
	vomiting, _ := batch.GetOrCreate(warehouse.ReactionDim("Vomiting"))
	recovered, _ := batch.GetOrCreate(warehouse.OutcomeDim("Recovered/Normal"))
	ibuprofen, _ := batch.GetOrCreate(warehouse.IngredientDim("Ibuprofen"))

	key, _, err := batch.InsertEvent(warehouse.Event{
		ReportID: "R1", BreedKey: &lab, Species: ptr("Dog"), WeightKg: ptr(30.0),
	})
	if err != nil {
		t.Fatalf("failed to insert event: %v", err)
	}
	batch.LinkReaction(key, vomiting)
	batch.LinkOutcome(key, recovered)
	batch.LinkIngredient(key, ibuprofen)

	if err := batch.Commit(); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexRoute(t *testing.T) {
	db := openTestDB(t)
	seedTestDB(t, db)
	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := get(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Warehouse Dashboard") {
		t.Error("expected 'Warehouse Dashboard' in response body")
	}
	if !strings.Contains(body, "Recovered/Normal") {
		t.Error("expected seeded outcome in dashboard")
	}
	if !strings.Contains(body, "Ibuprofen") {
		t.Error("expected seeded ingredient in dashboard")
	}
}

func TestIndexRouteEmptyWarehouse(t *testing.T) {
	srv, err := New(openTestDB(t))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := get(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for empty warehouse, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No outcome data loaded yet") {
		t.Error("expected empty-state message")
	}
}

func TestReportRoute(t *testing.T) {
	db := openTestDB(t)
	seedTestDB(t, db)
	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := get(t, srv, "/report")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Executive Summary") {
		t.Error("expected 'Executive Summary' in response")
	}
	// Markdown headings must come out as HTML.
	if !strings.Contains(body, "<h2") {
		t.Error("expected rendered markdown headings")
	}
}

func TestBreedRoute(t *testing.T) {
	db := openTestDB(t)
	seedTestDB(t, db)
	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := get(t, srv, "/breed?name=Labrador+Retriever&species=dog")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Labrador Retriever") {
		t.Error("expected breed name in response")
	}
	if !strings.Contains(body, "Vomiting") {
		t.Error("expected breed reactions in response")
	}
}

func TestBreedRouteMissingParamsRedirects(t *testing.T) {
	srv, err := New(openTestDB(t))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := get(t, srv, "/breed")
	if rec.Code != http.StatusFound {
		t.Errorf("expected 302 redirect, got %d", rec.Code)
	}
}

func TestHealthRoute(t *testing.T) {
	db := openTestDB(t)
	seedTestDB(t, db)
	srv, err := New(db)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := get(t, srv, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok: 1 events") {
		t.Errorf("unexpected health body: %q", rec.Body.String())
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv, err := New(openTestDB(t))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := get(t, srv, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
