// Package extract pulls structured entities out of the loosely-typed JSON
// shapes the openFDA animal & veterinary endpoint returns. Field names and
// nesting vary between report vintages, so every accessor walks an ordered
// list of candidate keys and silently omits anything missing or mistyped.
package extract

import "strings"

// Record wraps one decoded adverse-event payload.
type Record map[string]any

// ReportID returns the report's natural key, or "" when absent.
func (r Record) ReportID() string {
	return firstString(r, "unique_number", "report_id")
}

// Animal returns the nested animal object, which may be absent.
func (r Record) Animal() map[string]any {
	animal, _ := r["animal"].(map[string]any)
	return animal
}

// Species returns the animal species, or "".
func (r Record) Species() string {
	return firstString(r.Animal(), "species")
}

// Sex returns the animal's gender field, or "".
func (r Record) Sex() string {
	return firstString(r.Animal(), "gender")
}

// ReproductiveStatus returns the reproductive status, or "".
func (r Record) ReproductiveStatus() string {
	return firstString(r.Animal(), "reproductive_status")
}

// WeightValue returns the raw weight value and unit for normalization.
func (r Record) WeightValue() (value, unit any) {
	animal := r.Animal()
	if animal == nil {
		return nil, nil
	}
	return animal["weight"], animal["weight_unit"]
}

// AgeValue returns the raw age value and unit for normalization.
func (r Record) AgeValue() (value, unit any) {
	animal := r.Animal()
	if animal == nil {
		return nil, nil
	}
	return animal["age"], animal["age_unit"]
}

// BreedName extracts the breed as free text. The breed field is either a
// plain string or an object; objects are probed in priority order.
func (r Record) BreedName() string {
	animal := r.Animal()
	if animal == nil {
		return ""
	}
	switch breed := animal["breed"].(type) {
	case string:
		return strings.TrimSpace(breed)
	case map[string]any:
		return firstString(breed, "breed_name", "breed_component", "name")
	default:
		return ""
	}
}

// Reactions extracts reaction names from the record's reaction list.
func (r Record) Reactions() []string {
	return namesFromList(r["reaction"], "veddra_term_name", "veddra_term", "reaction_name", "name")
}

// Outcomes extracts outcome names from the record's outcome list.
func (r Record) Outcomes() []string {
	return namesFromList(r["outcome"], "medical_status", "outcome", "outcome_name", "name")
}

// ActiveIngredients extracts ingredient names across all drug entries.
// Source payloads use both active_ingredients and active_ingredient.
func (r Record) ActiveIngredients() []string {
	drugs, ok := r["drug"].([]any)
	if !ok {
		return nil
	}
	var names []string
	for _, entry := range drugs {
		drug, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		ingredients, ok := drug["active_ingredients"].([]any)
		if !ok || len(ingredients) == 0 {
			ingredients, _ = drug["active_ingredient"].([]any)
		}
		names = append(names, namesFromList(ingredients, "name")...)
	}
	return names
}

// State returns the report's state field, or "".
func (r Record) State() string {
	return firstString(r, "state")
}

// Country returns the report's country field, or "".
func (r Record) Country() string {
	return firstString(r, "country")
}

// EventDate returns the original receive date string, or "".
func (r Record) EventDate() string {
	return firstString(r, "original_receive_date")
}

// namesFromList pulls names from a JSON list whose entries are either objects
// (probed with the candidate keys in order) or plain strings. Entries that
// yield nothing are skipped.
func namesFromList(list any, keys ...string) []string {
	items, ok := list.([]any)
	if !ok {
		return nil
	}
	var names []string
	for _, item := range items {
		switch entry := item.(type) {
		case map[string]any:
			if name := firstString(entry, keys...); name != "" {
				names = append(names, name)
			}
		case string:
			if trimmed := strings.TrimSpace(entry); trimmed != "" {
				names = append(names, trimmed)
			}
		}
	}
	return names
}

// firstString returns the first non-empty string value found trying keys in
// priority order.
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
