package analytics

import (
	"fmt"

	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/warehouse"
)

// Analytics runs decision-support queries against the star schema.
type Analytics struct {
	db *warehouse.DB
}

// New creates an analytics layer over an open warehouse.
func New(db *warehouse.DB) *Analytics {
	return &Analytics{db: db}
}

// Summary holds the overall warehouse statistics.
type Summary struct {
	TotalEvents      int
	TotalBreeds      int
	TotalReactions   int
	TotalOutcomes    int
	TotalIngredients int
	TotalLocations   int
	EventsWithWeight int
	EventsWithTiming int
}

// Summary returns overall counts across the warehouse.
func (a *Analytics) Summary() (*Summary, error) {
	s := &Summary{}
	err := a.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM fact_event),
			(SELECT COUNT(*) FROM dim_breed),
			(SELECT COUNT(*) FROM dim_reaction),
			(SELECT COUNT(*) FROM dim_outcome),
			(SELECT COUNT(*) FROM dim_active_ingredient),
			(SELECT COUNT(DISTINCT geo_key) FROM fact_event WHERE geo_key IS NOT NULL),
			(SELECT COUNT(*) FROM fact_event WHERE weight_kg IS NOT NULL),
			(SELECT COUNT(*) FROM fact_event WHERE days_to_reaction IS NOT NULL)
	`).Scan(
		&s.TotalEvents, &s.TotalBreeds, &s.TotalReactions, &s.TotalOutcomes,
		&s.TotalIngredients, &s.TotalLocations, &s.EventsWithWeight, &s.EventsWithTiming,
	)
	if err != nil {
		return nil, fmt.Errorf("summary statistics: %w", err)
	}
	return s, nil
}

// BreedReaction is one (breed, reaction) pair with its share of the
// breed's events.
type BreedReaction struct {
	BreedName     string
	Species       string
	ReactionName  string
	ReactionCount int
	Percentage    float64
}

// ReactionsByBreed returns the most common reactions per breed.
func (a *Analytics) ReactionsByBreed(limit int) ([]BreedReaction, error) {
	rows, err := a.db.Query(`
		SELECT
			b.breed_name,
			b.species,
			r.reaction_name,
			COUNT(*) AS reaction_count,
			ROUND(COUNT(*) * 100.0 / breed_totals.total_events, 2) AS percentage
		FROM fact_event e
		JOIN dim_breed b ON e.breed_key = b.breed_key
		JOIN bridge_event_reaction ber ON e.event_key = ber.event_key
		JOIN dim_reaction r ON ber.reaction_key = r.reaction_key
		JOIN (
			SELECT breed_key, COUNT(*) AS total_events
			FROM fact_event
			GROUP BY breed_key
		) breed_totals ON b.breed_key = breed_totals.breed_key
		GROUP BY b.breed_name, b.species, r.reaction_name
		ORDER BY b.breed_name, reaction_count DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("reactions by breed: %w", err)
	}
	defer rows.Close()

	var results []BreedReaction
	for rows.Next() {
		var br BreedReaction
		if err := rows.Scan(&br.BreedName, &br.Species, &br.ReactionName, &br.ReactionCount, &br.Percentage); err != nil {
			return nil, err
		}
		results = append(results, br)
	}
	return results, rows.Err()
}

// ReactionShare is a reaction with a count and percentage of some total.
type ReactionShare struct {
	ReactionName  string
	ReactionCount int
	Percentage    float64
}

// TopReactionsForBreed returns the most common reactions for one breed.
func (a *Analytics) TopReactionsForBreed(breedName, species string, limit int) ([]ReactionShare, error) {
	rows, err := a.db.Query(`
		SELECT
			r.reaction_name,
			COUNT(*) AS reaction_count,
			ROUND(COUNT(*) * 100.0 / breed_totals.total, 2) AS percentage
		FROM fact_event e
		JOIN dim_breed b ON e.breed_key = b.breed_key
		JOIN bridge_event_reaction ber ON e.event_key = ber.event_key
		JOIN dim_reaction r ON ber.reaction_key = r.reaction_key
		JOIN (
			SELECT COUNT(*) AS total
			FROM fact_event e2
			JOIN dim_breed b2 ON e2.breed_key = b2.breed_key
			WHERE b2.breed_name = ? AND b2.species = ?
		) breed_totals
		WHERE b.breed_name = ? AND b.species = ?
		GROUP BY r.reaction_name
		ORDER BY reaction_count DESC
		LIMIT ?
	`, breedName, species, breedName, species, limit)
	if err != nil {
		return nil, fmt.Errorf("top reactions for breed: %w", err)
	}
	defer rows.Close()

	var results []ReactionShare
	for rows.Next() {
		var rs ReactionShare
		if err := rows.Scan(&rs.ReactionName, &rs.ReactionCount, &rs.Percentage); err != nil {
			return nil, err
		}
		results = append(results, rs)
	}
	return results, rows.Err()
}

// IngredientRisk is an active ingredient ranked by the events it appears in.
type IngredientRisk struct {
	IngredientName  string
	EventCount      int
	UniqueReactions int
}

// DangerousIngredients returns active ingredients ranked by how many
// adverse events they appear in.
func (a *Analytics) DangerousIngredients(limit int) ([]IngredientRisk, error) {
	rows, err := a.db.Query(`
		SELECT
			ai.ingredient_name,
			COUNT(DISTINCT e.event_key) AS event_count,
			COUNT(DISTINCT ber.reaction_key) AS unique_reactions
		FROM dim_active_ingredient ai
		JOIN bridge_event_ingredient bei ON ai.ingredient_key = bei.ingredient_key
		JOIN fact_event e ON bei.event_key = e.event_key
		JOIN bridge_event_reaction ber ON e.event_key = ber.event_key
		GROUP BY ai.ingredient_name
		ORDER BY event_count DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("dangerous ingredients: %w", err)
	}
	defer rows.Close()

	var results []IngredientRisk
	for rows.Next() {
		var ir IngredientRisk
		if err := rows.Scan(&ir.IngredientName, &ir.EventCount, &ir.UniqueReactions); err != nil {
			return nil, err
		}
		results = append(results, ir)
	}
	return results, rows.Err()
}

// WeightBand groups events by weight category.
type WeightBand struct {
	Category        string
	EventCount      int
	UniqueReactions int
	UniqueOutcomes  int
	AvgWeightKg     *float64
}

// WeightReactionCorrelation buckets events into weight bands and counts
// distinct reactions and outcomes per band.
func (a *Analytics) WeightReactionCorrelation() ([]WeightBand, error) {
	rows, err := a.db.Query(`
		SELECT
			CASE
				WHEN e.weight_kg IS NULL THEN 'Unknown'
				WHEN e.weight_kg < 5 THEN 'Very Small (<5kg)'
				WHEN e.weight_kg < 10 THEN 'Small (5-10kg)'
				WHEN e.weight_kg < 25 THEN 'Medium (10-25kg)'
				WHEN e.weight_kg < 50 THEN 'Large (25-50kg)'
				ELSE 'Very Large (>50kg)'
			END AS weight_category,
			COUNT(DISTINCT e.event_key) AS event_count,
			COUNT(DISTINCT ber.reaction_key) AS unique_reactions,
			COUNT(DISTINCT beo.outcome_key) AS unique_outcomes,
			ROUND(AVG(e.weight_kg), 2) AS avg_weight_kg
		FROM fact_event e
		LEFT JOIN bridge_event_reaction ber ON e.event_key = ber.event_key
		LEFT JOIN bridge_event_outcome beo ON e.event_key = beo.event_key
		GROUP BY weight_category
		ORDER BY avg_weight_kg
	`)
	if err != nil {
		return nil, fmt.Errorf("weight correlation: %w", err)
	}
	defer rows.Close()

	var results []WeightBand
	for rows.Next() {
		var wb WeightBand
		if err := rows.Scan(&wb.Category, &wb.EventCount, &wb.UniqueReactions, &wb.UniqueOutcomes, &wb.AvgWeightKg); err != nil {
			return nil, err
		}
		results = append(results, wb)
	}
	return results, rows.Err()
}

// SexGroup groups events by sex and reproductive status.
type SexGroup struct {
	Sex                string
	ReproductiveStatus string
	EventCount         int
	UniqueReactions    int
	UniqueOutcomes     int
}

// SexReproductiveAnalysis groups events by sex and reproductive status.
func (a *Analytics) SexReproductiveAnalysis() ([]SexGroup, error) {
	rows, err := a.db.Query(`
		SELECT
			COALESCE(e.sex, 'Unknown') AS sex,
			COALESCE(e.reproductive_status, 'Unknown') AS reproductive_status,
			COUNT(DISTINCT e.event_key) AS event_count,
			COUNT(DISTINCT ber.reaction_key) AS unique_reactions,
			COUNT(DISTINCT beo.outcome_key) AS unique_outcomes
		FROM fact_event e
		LEFT JOIN bridge_event_reaction ber ON e.event_key = ber.event_key
		LEFT JOIN bridge_event_outcome beo ON e.event_key = beo.event_key
		GROUP BY sex, reproductive_status
		ORDER BY event_count DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("sex and reproductive analysis: %w", err)
	}
	defer rows.Close()

	var results []SexGroup
	for rows.Next() {
		var sg SexGroup
		if err := rows.Scan(&sg.Sex, &sg.ReproductiveStatus, &sg.EventCount, &sg.UniqueReactions, &sg.UniqueOutcomes); err != nil {
			return nil, err
		}
		results = append(results, sg)
	}
	return results, rows.Err()
}

// GeoGroup groups events by state and country.
type GeoGroup struct {
	State           string
	Country         string
	EventCount      int
	UniqueBreeds    int
	UniqueReactions int
}

// GeographicDistribution groups events by state and country.
func (a *Analytics) GeographicDistribution() ([]GeoGroup, error) {
	rows, err := a.db.Query(`
		SELECT
			COALESCE(g.state, 'Unknown') AS state,
			COALESCE(g.country, 'Unknown') AS country,
			COUNT(DISTINCT e.event_key) AS event_count,
			COUNT(DISTINCT e.breed_key) AS unique_breeds,
			COUNT(DISTINCT ber.reaction_key) AS unique_reactions
		FROM fact_event e
		LEFT JOIN dim_geo g ON e.geo_key = g.geo_key
		LEFT JOIN bridge_event_reaction ber ON e.event_key = ber.event_key
		GROUP BY state, country
		ORDER BY event_count DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("geographic distribution: %w", err)
	}
	defer rows.Close()

	var results []GeoGroup
	for rows.Next() {
		var gg GeoGroup
		if err := rows.Scan(&gg.State, &gg.Country, &gg.EventCount, &gg.UniqueBreeds, &gg.UniqueReactions); err != nil {
			return nil, err
		}
		results = append(results, gg)
	}
	return results, rows.Err()
}

// TimingBand groups events by how long after exposure the reaction appeared.
type TimingBand struct {
	Category   string
	EventCount int
	AvgDays    *float64
	MinDays    *int64
	MaxDays    *int64
}

// ReactionTimingDistribution buckets events by days to reaction.
func (a *Analytics) ReactionTimingDistribution() ([]TimingBand, error) {
	rows, err := a.db.Query(`
		SELECT
			CASE
				WHEN e.days_to_reaction IS NULL THEN 'Unknown'
				WHEN e.days_to_reaction = 0 THEN 'Same Day'
				WHEN e.days_to_reaction <= 3 THEN '1-3 Days'
				WHEN e.days_to_reaction <= 7 THEN '4-7 Days'
				WHEN e.days_to_reaction <= 14 THEN '1-2 Weeks'
				WHEN e.days_to_reaction <= 30 THEN '2-4 Weeks'
				ELSE 'Over 1 Month'
			END AS timing_category,
			COUNT(*) AS event_count,
			ROUND(AVG(e.days_to_reaction), 2) AS avg_days,
			MIN(e.days_to_reaction) AS min_days,
			MAX(e.days_to_reaction) AS max_days
		FROM fact_event e
		GROUP BY timing_category
		ORDER BY avg_days
	`)
	if err != nil {
		return nil, fmt.Errorf("reaction timing distribution: %w", err)
	}
	defer rows.Close()

	var results []TimingBand
	for rows.Next() {
		var tb TimingBand
		if err := rows.Scan(&tb.Category, &tb.EventCount, &tb.AvgDays, &tb.MinDays, &tb.MaxDays); err != nil {
			return nil, err
		}
		results = append(results, tb)
	}
	return results, rows.Err()
}

// BreedGroupStats groups dog events by kennel-club breeding group.
type BreedGroupStats struct {
	GroupName       string
	EventCount      int
	BreedCount      int
	UniqueReactions int
	UniqueOutcomes  int
}

// BreedingGroupAnalysis groups dog events by breeding group. Only breeds
// matched to the dog reference carry a group.
func (a *Analytics) BreedingGroupAnalysis() ([]BreedGroupStats, error) {
	rows, err := a.db.Query(`
		SELECT
			COALESCE(b.group_name, 'Unknown') AS breeding_group,
			COUNT(DISTINCT e.event_key) AS event_count,
			COUNT(DISTINCT b.breed_key) AS breed_count,
			COUNT(DISTINCT ber.reaction_key) AS unique_reactions,
			COUNT(DISTINCT beo.outcome_key) AS unique_outcomes
		FROM fact_event e
		JOIN dim_breed b ON e.breed_key = b.breed_key
		LEFT JOIN bridge_event_reaction ber ON e.event_key = ber.event_key
		LEFT JOIN bridge_event_outcome beo ON e.event_key = beo.event_key
		WHERE b.species = 'dog' AND b.source = ?
		GROUP BY breeding_group
		ORDER BY event_count DESC
	`, warehouse.SourceDogAPI)
	if err != nil {
		return nil, fmt.Errorf("breeding group analysis: %w", err)
	}
	defer rows.Close()

	var results []BreedGroupStats
	for rows.Next() {
		var bg BreedGroupStats
		if err := rows.Scan(&bg.GroupName, &bg.EventCount, &bg.BreedCount, &bg.UniqueReactions, &bg.UniqueOutcomes); err != nil {
			return nil, err
		}
		results = append(results, bg)
	}
	return results, rows.Err()
}

// BreedPurposeStats groups dog events by the purpose a breed was bred for.
type BreedPurposeStats struct {
	Purpose         string
	EventCount      int
	BreedCount      int
	UniqueReactions int
}

// BreedingPurposeAnalysis groups dog events by breeding purpose.
func (a *Analytics) BreedingPurposeAnalysis() ([]BreedPurposeStats, error) {
	rows, err := a.db.Query(`
		SELECT
			COALESCE(b.purpose, 'Unknown') AS breeding_purpose,
			COUNT(DISTINCT e.event_key) AS event_count,
			COUNT(DISTINCT b.breed_key) AS breed_count,
			COUNT(DISTINCT ber.reaction_key) AS unique_reactions
		FROM fact_event e
		JOIN dim_breed b ON e.breed_key = b.breed_key
		LEFT JOIN bridge_event_reaction ber ON e.event_key = ber.event_key
		WHERE b.species = 'dog' AND b.source = ?
		GROUP BY breeding_purpose
		ORDER BY event_count DESC
	`, warehouse.SourceDogAPI)
	if err != nil {
		return nil, fmt.Errorf("breeding purpose analysis: %w", err)
	}
	defer rows.Close()

	var results []BreedPurposeStats
	for rows.Next() {
		var bp BreedPurposeStats
		if err := rows.Scan(&bp.Purpose, &bp.EventCount, &bp.BreedCount, &bp.UniqueReactions); err != nil {
			return nil, err
		}
		results = append(results, bp)
	}
	return results, rows.Err()
}

// OutcomeShare is an outcome with its share of all outcome links.
type OutcomeShare struct {
	OutcomeName     string
	OccurrenceCount int
	Percentage      float64
}

// TopOutcomes returns the most common outcomes across all events.
func (a *Analytics) TopOutcomes(limit int) ([]OutcomeShare, error) {
	rows, err := a.db.Query(`
		SELECT
			o.outcome_name,
			COUNT(*) AS occurrence_count,
			ROUND(COUNT(*) * 100.0 / (SELECT COUNT(*) FROM bridge_event_outcome), 2) AS percentage
		FROM bridge_event_outcome beo
		JOIN dim_outcome o ON beo.outcome_key = o.outcome_key
		GROUP BY o.outcome_name
		ORDER BY occurrence_count DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top outcomes: %w", err)
	}
	defer rows.Close()

	var results []OutcomeShare
	for rows.Next() {
		var os OutcomeShare
		if err := rows.Scan(&os.OutcomeName, &os.OccurrenceCount, &os.Percentage); err != nil {
			return nil, err
		}
		results = append(results, os)
	}
	return results, rows.Err()
}

// NameCount is a generic name/count pair used in risk profiles.
type NameCount struct {
	Name  string
	Count int
}

// RiskProfile is the combined risk picture for one breed.
type RiskProfile struct {
	BreedName        string
	Species          string
	TotalEvents      int
	TopReactions     []ReactionShare
	TopOutcomes      []NameCount
	RiskyIngredients []NameCount
}

// BreedRiskProfile builds a combined risk profile for one breed.
func (a *Analytics) BreedRiskProfile(breedName, species string) (*RiskProfile, error) {
	profile := &RiskProfile{BreedName: breedName, Species: species}

	err := a.db.QueryRow(`
		SELECT COUNT(*)
		FROM fact_event e
		JOIN dim_breed b ON e.breed_key = b.breed_key
		WHERE b.breed_name = ? AND b.species = ?
	`, breedName, species).Scan(&profile.TotalEvents)
	if err != nil {
		return nil, fmt.Errorf("breed event count: %w", err)
	}

	profile.TopReactions, err = a.TopReactionsForBreed(breedName, species, 5)
	if err != nil {
		return nil, err
	}

	profile.TopOutcomes, err = a.nameCounts(`
		SELECT o.outcome_name, COUNT(*) AS count
		FROM fact_event e
		JOIN dim_breed b ON e.breed_key = b.breed_key
		JOIN bridge_event_outcome beo ON e.event_key = beo.event_key
		JOIN dim_outcome o ON beo.outcome_key = o.outcome_key
		WHERE b.breed_name = ? AND b.species = ?
		GROUP BY o.outcome_name
		ORDER BY count DESC
		LIMIT 5
	`, breedName, species)
	if err != nil {
		return nil, fmt.Errorf("breed top outcomes: %w", err)
	}

	profile.RiskyIngredients, err = a.nameCounts(`
		SELECT ai.ingredient_name, COUNT(*) AS count
		FROM fact_event e
		JOIN dim_breed b ON e.breed_key = b.breed_key
		JOIN bridge_event_ingredient bei ON e.event_key = bei.event_key
		JOIN dim_active_ingredient ai ON bei.ingredient_key = ai.ingredient_key
		WHERE b.breed_name = ? AND b.species = ?
		GROUP BY ai.ingredient_name
		ORDER BY count DESC
		LIMIT 5
	`, breedName, species)
	if err != nil {
		return nil, fmt.Errorf("breed risky ingredients: %w", err)
	}

	return profile, nil
}

func (a *Analytics) nameCounts(query string, args ...any) ([]NameCount, error) {
	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []NameCount
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		results = append(results, nc)
	}
	return results, rows.Err()
}
