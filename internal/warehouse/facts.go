package warehouse

import (
	"database/sql"
	"fmt"
)

// Event is one fact row. Nil pointer fields persist as NULL.
type Event struct {
	ReportID           string
	BreedKey           *int64
	GeoKey             *int64
	Species            *string
	Sex                *string
	ReproductiveStatus *string
	WeightKg           *float64
	AgeMonths          *float64
	DaysToReaction     *int64
	EventDate          *string
}

// InsertEvent inserts a fact row keyed by report_id. If a row with that
// report_id already exists the existing surrogate key is returned and
// created is false; re-processing a report never duplicates the fact.
func (b *Batch) InsertEvent(ev Event) (key int64, created bool, err error) {
	result, err := b.tx.Exec(
		`INSERT OR IGNORE INTO fact_event (
			report_id, breed_key, geo_key, species, sex, reproductive_status,
			weight_kg, age_min, days_to_reaction, event_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ReportID, ev.BreedKey, ev.GeoKey, ev.Species, ev.Sex,
		ev.ReproductiveStatus, ev.WeightKg, ev.AgeMonths, ev.DaysToReaction,
		ev.EventDate,
	)
	if err != nil {
		return 0, false, fmt.Errorf("inserting fact: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("checking fact insert: %w", err)
	}
	if affected == 0 {
		err = b.tx.QueryRow(
			"SELECT event_key FROM fact_event WHERE report_id = ?", ev.ReportID,
		).Scan(&key)
		if err == sql.ErrNoRows {
			return 0, false, fmt.Errorf("fact %s: insert ignored but row not found", ev.ReportID)
		}
		if err != nil {
			return 0, false, fmt.Errorf("finding existing fact: %w", err)
		}
		return key, false, nil
	}

	key, err = result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("reading fact key: %w", err)
	}
	return key, true, nil
}

// LinkReaction records an (event, reaction) bridge pair; duplicates are no-ops.
func (b *Batch) LinkReaction(eventKey, reactionKey int64) error {
	return b.link("bridge_event_reaction", "reaction_key", eventKey, reactionKey)
}

// LinkOutcome records an (event, outcome) bridge pair; duplicates are no-ops.
func (b *Batch) LinkOutcome(eventKey, outcomeKey int64) error {
	return b.link("bridge_event_outcome", "outcome_key", eventKey, outcomeKey)
}

// LinkIngredient records an (event, ingredient) bridge pair; duplicates are no-ops.
func (b *Batch) LinkIngredient(eventKey, ingredientKey int64) error {
	return b.link("bridge_event_ingredient", "ingredient_key", eventKey, ingredientKey)
}

func (b *Batch) link(table, targetCol string, eventKey, targetKey int64) error {
	_, err := b.tx.Exec(
		fmt.Sprintf("INSERT OR IGNORE INTO %s (event_key, %s) VALUES (?, ?)", table, targetCol),
		eventKey, targetKey,
	)
	if err != nil {
		return fmt.Errorf("linking %s: %w", table, err)
	}
	return nil
}
