package pipeline

import (
	"fmt"
	"log"

	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/config"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/fetch"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/load"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/staging"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/warehouse"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Steps []StepResult
}

// Failed reports whether any step errored.
func (r *Result) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Pipeline orchestrates the fetch → stage → load ETL run.
type Pipeline struct {
	cfg     *config.Config
	staging *staging.DB
	wh      *warehouse.DB
	dataDir string
}

// New creates a new pipeline over open staging and warehouse databases.
func New(cfg *config.Config, st *staging.DB, wh *warehouse.DB, dataDir string) *Pipeline {
	return &Pipeline{cfg: cfg, staging: st, wh: wh, dataDir: dataDir}
}

// Run executes the full pipeline. With skipFetch the raw files already on
// disk are staged and loaded without touching the network.
func (p *Pipeline) Run(skipFetch bool) *Result {
	r := &Result{}

	if skipFetch {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Fetch",
			Summary: "Skipped; using raw files already on disk",
		})
	} else {
		step := p.runFetch()
		r.Steps = append(r.Steps, step)
		if step.Err != nil {
			return r
		}
	}

	step := p.runStage()
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	step = p.runLoadBreeds()
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	step = p.runLoadEvents()
	r.Steps = append(r.Steps, step)
	return r
}

func (p *Pipeline) runFetch() StepResult {
	log.Println("Step 1/4: Fetching raw data...")
	fetcher := fetch.New(p.cfg, p.dataDir)
	result, err := fetcher.FetchAll()
	if err != nil {
		return StepResult{Name: "Fetch", Err: err}
	}
	return StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("Fetched %d events, %d dog breeds, %d cat breeds", result.Events, result.DogBreeds, result.CatBreeds),
	}
}

func (p *Pipeline) runStage() StepResult {
	log.Println("Step 2/4: Staging raw payloads...")
	events, err := p.staging.LoadJSONL(staging.TableEvents, fetch.EventsPath(p.dataDir))
	if err != nil {
		return StepResult{Name: "Stage", Err: err}
	}
	dogs, err := p.staging.LoadJSONArray(staging.TableDogBreeds, fetch.DogBreedsPath(p.dataDir))
	if err != nil {
		return StepResult{Name: "Stage", Err: err}
	}
	cats, err := p.staging.LoadJSONArray(staging.TableCatBreeds, fetch.CatBreedsPath(p.dataDir))
	if err != nil {
		return StepResult{Name: "Stage", Err: err}
	}
	return StepResult{
		Name:    "Stage",
		Summary: fmt.Sprintf("Staged %d events, %d dog breeds, %d cat breeds", events, dogs, cats),
	}
}

func (p *Pipeline) runLoadBreeds() StepResult {
	log.Println("Step 3/4: Loading breed reference dimension...")
	loader := p.newLoader()
	count, err := loader.LoadBreeds()
	if err != nil {
		return StepResult{Name: "Load breeds", Err: err}
	}
	return StepResult{
		Name:    "Load breeds",
		Summary: fmt.Sprintf("Loaded %d reference breeds", count),
	}
}

func (p *Pipeline) runLoadEvents() StepResult {
	log.Println("Step 4/4: Loading adverse events into star schema...")
	loader := p.newLoader()
	result, err := loader.LoadEvents()
	if err != nil {
		return StepResult{Name: "Load events", Err: err}
	}
	return StepResult{
		Name:    "Load events",
		Summary: fmt.Sprintf("Processed %d events (%d new, %d skipped)", result.Processed, result.Created, result.Skipped),
	}
}

func (p *Pipeline) newLoader() *load.Loader {
	return load.New(p.staging, p.wh, p.cfg.Load.Checkpoint, p.cfg.Load.FuzzyThreshold)
}
