package warehouse

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "star schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS dim_breed (
    breed_key INTEGER PRIMARY KEY AUTOINCREMENT,
    breed_name TEXT NOT NULL,
    species TEXT NOT NULL,
    group_name TEXT,
    purpose TEXT,
    source TEXT,
    UNIQUE (breed_name, species)
);

CREATE TABLE IF NOT EXISTS dim_reaction (
    reaction_key INTEGER PRIMARY KEY AUTOINCREMENT,
    reaction_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS dim_outcome (
    outcome_key INTEGER PRIMARY KEY AUTOINCREMENT,
    outcome_name TEXT NOT NULL UNIQUE,
    severity TEXT
);

CREATE TABLE IF NOT EXISTS dim_active_ingredient (
    ingredient_key INTEGER PRIMARY KEY AUTOINCREMENT,
    ingredient_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS dim_geo (
    geo_key INTEGER PRIMARY KEY AUTOINCREMENT,
    state TEXT,
    country TEXT,
    UNIQUE (state, country)
);

CREATE TABLE IF NOT EXISTS fact_event (
    event_key INTEGER PRIMARY KEY AUTOINCREMENT,
    report_id TEXT NOT NULL UNIQUE,
    breed_key INTEGER,
    geo_key INTEGER,
    species TEXT,
    sex TEXT,
    reproductive_status TEXT,
    weight_kg REAL,
    age_min REAL,
    days_to_reaction INTEGER,
    event_date TEXT,
    FOREIGN KEY (breed_key) REFERENCES dim_breed(breed_key),
    FOREIGN KEY (geo_key) REFERENCES dim_geo(geo_key)
);

CREATE TABLE IF NOT EXISTS bridge_event_reaction (
    event_key INTEGER NOT NULL,
    reaction_key INTEGER NOT NULL,
    PRIMARY KEY (event_key, reaction_key),
    FOREIGN KEY (event_key) REFERENCES fact_event(event_key),
    FOREIGN KEY (reaction_key) REFERENCES dim_reaction(reaction_key)
);

CREATE TABLE IF NOT EXISTS bridge_event_outcome (
    event_key INTEGER NOT NULL,
    outcome_key INTEGER NOT NULL,
    PRIMARY KEY (event_key, outcome_key),
    FOREIGN KEY (event_key) REFERENCES fact_event(event_key),
    FOREIGN KEY (outcome_key) REFERENCES dim_outcome(outcome_key)
);

CREATE TABLE IF NOT EXISTS bridge_event_ingredient (
    event_key INTEGER NOT NULL,
    ingredient_key INTEGER NOT NULL,
    PRIMARY KEY (event_key, ingredient_key),
    FOREIGN KEY (event_key) REFERENCES fact_event(event_key),
    FOREIGN KEY (ingredient_key) REFERENCES dim_active_ingredient(ingredient_key)
);

CREATE INDEX IF NOT EXISTS idx_fact_report ON fact_event(report_id);
CREATE INDEX IF NOT EXISTS idx_fact_breed ON fact_event(breed_key);
CREATE INDEX IF NOT EXISTS idx_fact_geo ON fact_event(geo_key);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
