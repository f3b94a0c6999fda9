package fetch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/config"
)

func testConfig(eventsURL string) *config.Config {
	return &config.Config{
		Sources: config.Sources{
			OpenFDA: config.OpenFDASource{
				URL:      eventsURL,
				Limit:    5,
				PageSize: 2,
			},
		},
	}
}

func TestFetchEventsPaginates(t *testing.T) {
	var requests []string
	total := 5
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		var results []map[string]string
		for i := skip; i < skip+limit && i < total; i++ {
			results = append(results, map[string]string{"unique_number": fmt.Sprintf("R%d", i)})
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	dataDir := t.TempDir()
	f := New(cfg, dataDir)

	n, err := f.FetchEvents()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 events, got %d", n)
	}
	if len(requests) != 3 {
		t.Errorf("expected 3 pages (2+2+1), got %d: %v", len(requests), requests)
	}

	data, err := os.ReadFile(EventsPath(dataDir))
	if err != nil {
		t.Fatalf("failed to read events file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Errorf("expected 5 JSONL lines, got %d", len(lines))
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("line 0 is not valid JSON: %v", err)
	}
	if record["unique_number"] != "R0" {
		t.Errorf("expected first record R0, got %v", record["unique_number"])
	}
}

func TestFetchEventsStopsOnEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		results := []map[string]string{}
		if skip == 0 {
			results = append(results, map[string]string{"unique_number": "R1"})
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer srv.Close()

	f := New(testConfig(srv.URL), t.TempDir())
	n, err := f.FetchEvents()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 event before the empty page, got %d", n)
	}
}

func TestFetchBreedsWritesArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name": "Labrador Retriever"}, {"name": "Beagle"}]`)
	}))
	defer srv.Close()

	dataDir := t.TempDir()
	f := New(&config.Config{}, dataDir)
	path := DogBreedsPath(dataDir)

	n, err := f.FetchBreeds(config.BreedSource{URL: srv.URL}, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 breeds, got %d", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read breeds file: %v", err)
	}
	var breeds []map[string]any
	if err := json.Unmarshal(data, &breeds); err != nil {
		t.Fatalf("breeds file is not a JSON array: %v", err)
	}
	if len(breeds) != 2 || breeds[0]["name"] != "Labrador Retriever" {
		t.Errorf("unexpected breeds content: %v", breeds)
	}
}

func TestFetchBreedsSkipsOnForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dataDir := t.TempDir()
	f := New(&config.Config{}, dataDir)
	path := CatBreedsPath(dataDir)

	n, err := f.FetchBreeds(config.BreedSource{URL: srv.URL, APIKeyEnv: "CAT_API_KEY"}, path)
	if err != nil {
		t.Fatalf("403 must not be fatal: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 breeds on 403, got %d", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected empty array file after 403: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("expected empty JSON array, got %q", string(data))
	}
}

func TestFetchBreedsOtherErrorsAreFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(&config.Config{}, t.TempDir())
	if _, err := f.FetchBreeds(config.BreedSource{URL: srv.URL}, DogBreedsPath(t.TempDir())); err == nil {
		t.Error("expected error for HTTP 500")
	}
}

func TestAPIKeyHeaderFromEnv(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	t.Setenv("TEST_BREED_KEY", "secret-key")
	f := New(&config.Config{}, t.TempDir())
	dataDir := t.TempDir()
	if _, err := f.FetchBreeds(config.BreedSource{URL: srv.URL, APIKeyEnv: "TEST_BREED_KEY"}, DogBreedsPath(dataDir)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "secret-key" {
		t.Errorf("expected x-api-key header from env, got %q", gotKey)
	}
}
