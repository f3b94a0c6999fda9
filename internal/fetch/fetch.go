package fetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/config"
)

// Result holds the results of a raw-data fetch run.
type Result struct {
	Events    int
	DogBreeds int
	CatBreeds int
}

// Fetcher pulls raw payloads from openFDA and the breed reference APIs
// and writes them under the data directory for staging.
type Fetcher struct {
	cfg     *config.Config
	dataDir string
	client  *http.Client
}

// New creates a fetcher writing raw files under dataDir.
func New(cfg *config.Config, dataDir string) *Fetcher {
	return &Fetcher{
		cfg:     cfg,
		dataDir: dataDir,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// EventsPath returns the raw adverse-event JSONL path under dataDir.
func EventsPath(dataDir string) string {
	return filepath.Join(dataDir, "raw", "fda_events.jsonl")
}

// DogBreedsPath returns the raw dog breed JSON path under dataDir.
func DogBreedsPath(dataDir string) string {
	return filepath.Join(dataDir, "raw", "dog_breeds.json")
}

// CatBreedsPath returns the raw cat breed JSON path under dataDir.
func CatBreedsPath(dataDir string) string {
	return filepath.Join(dataDir, "raw", "cat_breeds.json")
}

// FetchAll pulls adverse events and both breed references.
func (f *Fetcher) FetchAll() (*Result, error) {
	result := &Result{}

	events, err := f.FetchEvents()
	if err != nil {
		return nil, err
	}
	result.Events = events

	dogs, err := f.FetchBreeds(f.cfg.Sources.DogBreeds, DogBreedsPath(f.dataDir))
	if err != nil {
		return nil, err
	}
	result.DogBreeds = dogs

	cats, err := f.FetchBreeds(f.cfg.Sources.CatBreeds, CatBreedsPath(f.dataDir))
	if err != nil {
		return nil, err
	}
	result.CatBreeds = cats

	return result, nil
}

// FetchEvents pages through the openFDA endpoint with limit/skip until the
// configured limit is reached or a page comes back empty, writing one JSON
// record per line.
func (f *Fetcher) FetchEvents() (int, error) {
	src := f.cfg.Sources.OpenFDA
	path := EventsPath(f.dataDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating raw dir: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	throttle := time.Duration(src.ThrottleSeconds * float64(time.Second))
	total := 0
	skip := 0
	for total < src.Limit {
		batchSize := src.PageSize
		if remaining := src.Limit - total; remaining < batchSize {
			batchSize = remaining
		}

		params := url.Values{}
		params.Set("limit", strconv.Itoa(batchSize))
		params.Set("skip", strconv.Itoa(skip))

		var page struct {
			Results []json.RawMessage `json:"results"`
		}
		if err := f.getJSON(src.URL, params, src.APIKeyEnv, &page); err != nil {
			return total, fmt.Errorf("fetching events (skip=%d): %w", skip, err)
		}
		if len(page.Results) == 0 {
			break
		}

		for _, record := range page.Results {
			if _, err := out.Write(append(record, '\n')); err != nil {
				return total, fmt.Errorf("writing %s: %w", path, err)
			}
		}
		total += len(page.Results)
		skip += len(page.Results)

		if throttle > 0 && total < src.Limit {
			time.Sleep(throttle)
		}
	}

	log.Printf("Fetched %d adverse event records", total)
	return total, nil
}

// FetchBreeds pulls a breed reference list and writes it as a JSON array.
// A 403 response is treated as a skip so breed sources without an API key
// do not fail the whole run.
func (f *Fetcher) FetchBreeds(src config.BreedSource, path string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating raw dir: %w", err)
	}

	var breeds []json.RawMessage
	err := f.getJSON(src.URL, nil, src.APIKeyEnv, &breeds)
	if err != nil {
		var httpErr *statusError
		if errors.As(err, &httpErr) && httpErr.code == http.StatusForbidden {
			log.Printf("Skipping breed source %s due to HTTP 403; set %s if the API requires a key", src.URL, src.APIKeyEnv)
			if writeErr := os.WriteFile(path, []byte("[]\n"), 0o644); writeErr != nil {
				return 0, fmt.Errorf("writing %s: %w", path, writeErr)
			}
			return 0, nil
		}
		return 0, fmt.Errorf("fetching breeds from %s: %w", src.URL, err)
	}

	data, err := json.MarshalIndent(breeds, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encoding breeds: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}

	log.Printf("Fetched %d breed records from %s", len(breeds), src.URL)
	return len(breeds), nil
}

func (f *Fetcher) getJSON(rawURL string, params url.Values, apiKeyEnv string, target any) error {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "vetdw/1.0 (veterinary BI pipeline)")
	if apiKeyEnv != "" {
		if key := os.Getenv(apiKeyEnv); key != "" {
			req.Header.Set("x-api-key", key)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, target)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.code, http.StatusText(e.code))
}
