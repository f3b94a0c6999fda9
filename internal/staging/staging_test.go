package staging

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "staging.db"))
	if err != nil {
		t.Fatalf("failed to open test staging store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadJSONL(t *testing.T) {
	db := openTestDB(t)
	path := writeFile(t, "events.jsonl", `{"unique_number":"R1"}

{"unique_number":"R2"}
`)

	n, err := db.LoadJSONL(TableEvents, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 staged rows, got %d", n)
	}

	var payloads []string
	err = db.ForEachPayload(TableEvents, func(p []byte) error {
		payloads = append(payloads, string(p))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payloads) != 2 || payloads[0] != `{"unique_number":"R1"}` {
		t.Errorf("unexpected payloads %v", payloads)
	}
}

func TestLoadJSONLReplacesExisting(t *testing.T) {
	db := openTestDB(t)
	first := writeFile(t, "a.jsonl", `{"unique_number":"R1"}`)
	second := writeFile(t, "b.jsonl", `{"unique_number":"R2"}`)

	db.LoadJSONL(TableEvents, first)
	db.LoadJSONL(TableEvents, second)

	n, _ := db.Count(TableEvents)
	if n != 1 {
		t.Errorf("expected restage to replace rows, got %d", n)
	}
}

func TestLoadJSONLMissingFile(t *testing.T) {
	db := openTestDB(t)
	n, err := db.LoadJSONL(TableEvents, filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows, got %d", n)
	}
}

func TestLoadJSONArray(t *testing.T) {
	db := openTestDB(t)
	path := writeFile(t, "breeds.json", `[{"name":"Beagle"},{"name":"Boxer"}]`)

	n, err := db.LoadJSONArray(TableDogBreeds, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 staged breeds, got %d", n)
	}
}

func TestLoadJSONArraySingleObject(t *testing.T) {
	db := openTestDB(t)
	path := writeFile(t, "breeds.json", `{"name":"Beagle"}`)

	n, err := db.LoadJSONArray(TableCatBreeds, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 staged row, got %d", n)
	}
}

func TestUnknownTableRejected(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadJSONL("staging_bogus", "x.jsonl"); err == nil {
		t.Error("expected error for unknown table")
	}
	if err := db.ForEachPayload("fact_event", func([]byte) error { return nil }); err == nil {
		t.Error("expected error for unknown table")
	}
}
