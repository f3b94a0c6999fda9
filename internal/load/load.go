// Package load runs the warehouse load: breed reference rows first, then one
// sequential pass over staged adverse-event payloads, resolving dimension
// keys and writing fact and bridge rows. Every write path is idempotent, so
// the recovery story for an interrupted load is simply running it again.
package load

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/breedmatch"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/extract"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/normalize"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/staging"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/warehouse"
)

// DefaultCheckpoint is how many events load between commits.
const DefaultCheckpoint = 100

// Result summarizes one event-load pass.
type Result struct {
	Processed int // events loaded, including ones already present
	Created   int // new fact rows
	Skipped   int // malformed records (bad JSON, missing report_id)
}

// Loader drives the staging-to-warehouse load.
type Loader struct {
	staging    *staging.DB
	wh         *warehouse.DB
	checkpoint int
	threshold  float64
}

// New creates a Loader. checkpoint <= 0 uses DefaultCheckpoint; threshold
// <= 0 uses the breed matcher's default.
func New(st *staging.DB, wh *warehouse.DB, checkpoint int, threshold float64) *Loader {
	if checkpoint <= 0 {
		checkpoint = DefaultCheckpoint
	}
	return &Loader{staging: st, wh: wh, checkpoint: checkpoint, threshold: threshold}
}

// LoadBreeds loads the canonical breed reference from the staged dog and cat
// breed payloads. Returns the number of reference rows resolved.
func (l *Loader) LoadBreeds() (int, error) {
	batch, err := l.wh.Begin()
	if err != nil {
		return 0, err
	}
	defer batch.Rollback()

	count := 0
	load := func(table, species, source, purposeField string) error {
		return l.staging.ForEachPayload(table, func(payload []byte) error {
			var breed map[string]any
			if err := json.Unmarshal(payload, &breed); err != nil {
				log.Printf("skipping unparseable %s payload: %v", species, err)
				return nil
			}
			name, _ := breed["name"].(string)
			if strings.TrimSpace(name) == "" {
				return nil
			}
			dim := warehouse.BreedDim(
				strings.TrimSpace(name), species,
				optString(breed, "breed_group"),
				optString(breed, purposeField),
				source,
			)
			if _, err := batch.GetOrCreate(dim); err != nil {
				return fmt.Errorf("loading %s breed %q: %w", species, name, err)
			}
			count++
			return nil
		})
	}

	if err := load(staging.TableDogBreeds, "dog", warehouse.SourceDogAPI, "bred_for"); err != nil {
		return 0, err
	}
	if err := load(staging.TableCatBreeds, "cat", warehouse.SourceCatAPI, "origin"); err != nil {
		return 0, err
	}

	if err := batch.Commit(); err != nil {
		return 0, fmt.Errorf("committing breed reference: %w", err)
	}
	return count, nil
}

// LoadEvents runs the fact load over every staged event. Malformed records
// are counted and skipped; the pass aborts only on warehouse failures.
func (l *Loader) LoadEvents() (*Result, error) {
	refNames, err := l.wh.ReferenceBreedNames()
	if err != nil {
		return nil, fmt.Errorf("reading breed reference: %w", err)
	}
	matcher := breedmatch.New(refNames, l.threshold)

	batch, err := l.wh.Begin()
	if err != nil {
		return nil, err
	}
	defer func() {
		if batch != nil {
			batch.Rollback()
		}
	}()

	result := &Result{}
	err = l.staging.ForEachPayload(staging.TableEvents, func(payload []byte) error {
		var record extract.Record
		if err := json.Unmarshal(payload, &record); err != nil {
			result.Skipped++
			log.Printf("skipping unparseable event payload: %v", err)
			return nil
		}
		if record.ReportID() == "" {
			result.Skipped++
			log.Printf("skipping event without report id")
			return nil
		}

		created, skipped, err := l.loadEvent(batch, matcher, record)
		if err != nil {
			return err
		}
		if skipped {
			result.Skipped++
			return nil
		}
		result.Processed++
		if created {
			result.Created++
		}

		if result.Processed%l.checkpoint == 0 {
			if err := batch.Commit(); err != nil {
				return fmt.Errorf("checkpoint commit: %w", err)
			}
			next, err := l.wh.Begin()
			if err != nil {
				return err
			}
			batch = next
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := batch.Commit(); err != nil {
		return nil, fmt.Errorf("final commit: %w", err)
	}
	batch = nil
	return result, nil
}

// loadEvent resolves all dimension keys for one record and writes the fact
// plus its bridge rows. skipped reports a soft failure on the fact insert.
func (l *Loader) loadEvent(batch *warehouse.Batch, matcher *breedmatch.Matcher, record extract.Record) (created, skipped bool, err error) {
	reportID := record.ReportID()

	geoKey, err := batch.GetOrCreate(warehouse.GeoDim(
		emptyToNil(record.State()), emptyToNil(record.Country()),
	))
	if err != nil {
		return false, false, fmt.Errorf("event %s: %w", reportID, err)
	}

	var breedKey *int64
	species := record.Species()
	if breedName := record.BreedName(); breedName != "" && species != "" {
		// Canonicalize against the reference list when possible; otherwise
		// keep the raw free-text name under the openfda source.
		if canonical, ok := matcher.Match(breedName); ok {
			breedName = canonical
		}
		key, err := batch.GetOrCreate(warehouse.BreedDim(
			breedName, strings.ToLower(species), nil, nil, warehouse.SourceOpenFDA,
		))
		if err != nil {
			return false, false, fmt.Errorf("event %s: %w", reportID, err)
		}
		breedKey = &key
	}

	weightValue, weightUnit := record.WeightValue()
	ageValue, ageUnit := record.AgeValue()
	eventKey, created, err := batch.InsertEvent(warehouse.Event{
		ReportID:           reportID,
		BreedKey:           breedKey,
		GeoKey:             &geoKey,
		Species:            emptyToNil(species),
		Sex:                emptyToNil(record.Sex()),
		ReproductiveStatus: emptyToNil(record.ReproductiveStatus()),
		WeightKg:           normalize.Weight(weightValue, weightUnit),
		AgeMonths:          normalize.Age(ageValue, ageUnit),
		DaysToReaction:     normalize.DaysToReaction(record),
		EventDate:          emptyToNil(record.EventDate()),
	})
	if err != nil {
		// Neither inserted nor found; soft-skip per failure policy.
		log.Printf("skipping event %s: %v", reportID, err)
		return false, true, nil
	}

	for _, reaction := range record.Reactions() {
		key, err := batch.GetOrCreate(warehouse.ReactionDim(reaction))
		if err != nil {
			return false, false, fmt.Errorf("event %s: %w", reportID, err)
		}
		if err := batch.LinkReaction(eventKey, key); err != nil {
			return false, false, fmt.Errorf("event %s: %w", reportID, err)
		}
	}
	for _, outcome := range record.Outcomes() {
		key, err := batch.GetOrCreate(warehouse.OutcomeDim(outcome))
		if err != nil {
			return false, false, fmt.Errorf("event %s: %w", reportID, err)
		}
		if err := batch.LinkOutcome(eventKey, key); err != nil {
			return false, false, fmt.Errorf("event %s: %w", reportID, err)
		}
	}
	for _, ingredient := range record.ActiveIngredients() {
		key, err := batch.GetOrCreate(warehouse.IngredientDim(ingredient))
		if err != nil {
			return false, false, fmt.Errorf("event %s: %w", reportID, err)
		}
		if err := batch.LinkIngredient(eventKey, key); err != nil {
			return false, false, fmt.Errorf("event %s: %w", reportID, err)
		}
	}

	return created, false, nil
}

func optString(m map[string]any, key string) *string {
	s, ok := m[key].(string)
	if !ok {
		return nil
	}
	return emptyToNil(strings.TrimSpace(s))
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
