package warehouse

// Stats contains row counts across the star schema.
type Stats struct {
	Events          int
	Breeds          int
	Reactions       int
	Outcomes        int
	Ingredients     int
	Geographies     int
	ReactionLinks   int
	OutcomeLinks    int
	IngredientLinks int
}

// Stats returns row counts for every warehouse table.
func (db *DB) Stats() (*Stats, error) {
	var s Stats
	err := db.conn.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM fact_event),
			(SELECT COUNT(*) FROM dim_breed),
			(SELECT COUNT(*) FROM dim_reaction),
			(SELECT COUNT(*) FROM dim_outcome),
			(SELECT COUNT(*) FROM dim_active_ingredient),
			(SELECT COUNT(*) FROM dim_geo),
			(SELECT COUNT(*) FROM bridge_event_reaction),
			(SELECT COUNT(*) FROM bridge_event_outcome),
			(SELECT COUNT(*) FROM bridge_event_ingredient)`,
	).Scan(&s.Events, &s.Breeds, &s.Reactions, &s.Outcomes, &s.Ingredients,
		&s.Geographies, &s.ReactionLinks, &s.OutcomeLinks, &s.IngredientLinks)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ReferenceBreedNames returns the canonical breed names loaded from the
// breed APIs, in insertion order. The breed matcher uses these as its
// reference list; openfda-sourced rows are excluded so free-text breeds
// never become canonical by accident.
func (db *DB) ReferenceBreedNames() ([]string, error) {
	rows, err := db.conn.Query(
		"SELECT breed_name FROM dim_breed WHERE source IN (?, ?) ORDER BY breed_key",
		SourceDogAPI, SourceCatAPI,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
