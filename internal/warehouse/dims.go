package warehouse

import "strings"

// Breed source labels recorded on dim_breed rows.
const (
	SourceDogAPI  = "thedogapi"
	SourceCatAPI  = "thecatapi"
	SourceOpenFDA = "openfda"
)

// BreedDim builds the dim_breed get-or-create target. Natural key is
// (breed_name, species); group, purpose, and source are only written when
// the row is created.
func BreedDim(name, species string, group, purpose *string, source string) Dimension {
	return Dimension{
		Table:  "dim_breed",
		KeyCol: "breed_key",
		Keys: []Column{
			{Name: "breed_name", Value: name},
			{Name: "species", Value: species},
		},
		Attrs: []Column{
			{Name: "group_name", Value: nullable(group)},
			{Name: "purpose", Value: nullable(purpose)},
			{Name: "source", Value: source},
		},
	}
}

// ReactionDim builds the dim_reaction get-or-create target.
func ReactionDim(name string) Dimension {
	return Dimension{
		Table:  "dim_reaction",
		KeyCol: "reaction_key",
		Keys:   []Column{{Name: "reaction_name", Value: name}},
	}
}

// OutcomeDim builds the dim_outcome get-or-create target. Severity is a
// creation-time classification; the natural key is the name alone.
func OutcomeDim(name string) Dimension {
	return Dimension{
		Table:  "dim_outcome",
		KeyCol: "outcome_key",
		Keys:   []Column{{Name: "outcome_name", Value: name}},
		Attrs:  []Column{{Name: "severity", Value: OutcomeSeverity(name)}},
	}
}

// IngredientDim builds the dim_active_ingredient get-or-create target.
func IngredientDim(name string) Dimension {
	return Dimension{
		Table:  "dim_active_ingredient",
		KeyCol: "ingredient_key",
		Keys:   []Column{{Name: "ingredient_name", Value: name}},
	}
}

// GeoDim builds the dim_geo get-or-create target. Both columns are
// nullable and NULL-matched.
func GeoDim(state, country *string) Dimension {
	return Dimension{
		Table:  "dim_geo",
		KeyCol: "geo_key",
		Keys: []Column{
			{Name: "state", Value: nullable(state)},
			{Name: "country", Value: nullable(country)},
		},
	}
}

// OutcomeSeverity classifies an outcome name: fatal outcomes are Critical,
// everything else Normal.
func OutcomeSeverity(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "died", "euthanized":
		return "Critical"
	default:
		return "Normal"
	}
}

// nullable converts a *string into a driver value, mapping nil and empty
// pointers to SQL NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
