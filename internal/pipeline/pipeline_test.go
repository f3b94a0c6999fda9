package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/config"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/fetch"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/staging"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/warehouse"
)

const rawEvents = `{"unique_number": "P1", "animal": {"species": "Dog", "breed": {"breed_component": "Labrador Retriever"}}, "reaction": [{"veddra_term_name": "Vomiting"}], "outcome": [{"medical_status": "Recovered/Normal"}]}
{"unique_number": "P2", "animal": {"species": "Cat"}, "reaction": [{"veddra_term_name": "Lethargy"}]}
`

const rawDogBreeds = `[{"name": "Labrador Retriever", "breed_group": "Sporting", "bred_for": "Retrieving"}]`
const rawCatBreeds = `[{"name": "Siamese", "origin": "Thailand"}]`

func writeRawFiles(t *testing.T, dataDir string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dataDir, "raw"), 0o755); err != nil {
		t.Fatalf("failed to create raw dir: %v", err)
	}
	for path, content := range map[string]string{
		fetch.EventsPath(dataDir):    rawEvents,
		fetch.DogBreedsPath(dataDir): rawDogBreeds,
		fetch.CatBreedsPath(dataDir): rawCatBreeds,
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

func testPipeline(t *testing.T, dataDir string) (*Pipeline, *warehouse.DB) {
	t.Helper()
	st, err := staging.Open(filepath.Join(dataDir, "staging.db"))
	if err != nil {
		t.Fatalf("failed to open staging db: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	wh, err := warehouse.Open(filepath.Join(dataDir, "warehouse.db"))
	if err != nil {
		t.Fatalf("failed to open warehouse: %v", err)
	}
	t.Cleanup(func() { wh.Close() })

	cfg := &config.Config{Load: config.LoadConfig{Checkpoint: 100, FuzzyThreshold: 0.6}}
	return New(cfg, st, wh, dataDir), wh
}

func TestRunSkipFetch(t *testing.T) {
	dataDir := t.TempDir()
	writeRawFiles(t, dataDir)
	p, wh := testPipeline(t, dataDir)

	result := p.Run(true)
	if result.Failed() {
		t.Fatalf("pipeline failed: %+v", result.Steps)
	}
	if len(result.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(result.Steps))
	}
	if result.Steps[0].Summary != "Skipped; using raw files already on disk" {
		t.Errorf("unexpected fetch step summary: %q", result.Steps[0].Summary)
	}

	stats, err := wh.Stats()
	if err != nil {
		t.Fatalf("failed to read stats: %v", err)
	}
	if stats.Events != 2 {
		t.Errorf("expected 2 fact rows, got %d", stats.Events)
	}
	// 2 reference breeds + matched Labrador reuses its reference row.
	if stats.Breeds != 2 {
		t.Errorf("expected 2 breed rows, got %d", stats.Breeds)
	}
	if stats.Reactions != 2 {
		t.Errorf("expected 2 reactions, got %d", stats.Reactions)
	}
}

func TestRunIsRepeatable(t *testing.T) {
	dataDir := t.TempDir()
	writeRawFiles(t, dataDir)
	p, wh := testPipeline(t, dataDir)

	if result := p.Run(true); result.Failed() {
		t.Fatalf("first run failed: %+v", result.Steps)
	}
	first, err := wh.Stats()
	if err != nil {
		t.Fatalf("failed to read stats: %v", err)
	}

	if result := p.Run(true); result.Failed() {
		t.Fatalf("second run failed: %+v", result.Steps)
	}
	second, err := wh.Stats()
	if err != nil {
		t.Fatalf("failed to read stats: %v", err)
	}

	if *first != *second {
		t.Errorf("re-run changed the warehouse: %+v vs %+v", first, second)
	}
}

func TestRunWithMissingRawFiles(t *testing.T) {
	dataDir := t.TempDir()
	p, wh := testPipeline(t, dataDir)

	// No raw files on disk: staging treats them as empty sources.
	result := p.Run(true)
	if result.Failed() {
		t.Fatalf("pipeline must tolerate missing raw files: %+v", result.Steps)
	}

	stats, err := wh.Stats()
	if err != nil {
		t.Fatalf("failed to read stats: %v", err)
	}
	if stats.Events != 0 {
		t.Errorf("expected empty warehouse, got %d events", stats.Events)
	}
}
