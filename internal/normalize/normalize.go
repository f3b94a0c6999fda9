// Package normalize converts the mixed units found in openFDA adverse-event
// payloads into canonical units: weight in kilograms, age in months, and
// drug-to-reaction duration in days. Every function degrades to nil on
// unparseable input; conversion never fails a record.
package normalize

import (
	"math"
	"strconv"
	"strings"
)

const poundsToKilograms = 0.45359237

// Weight converts a raw weight value plus optional unit to kilograms.
// The value may be a plain number, a numeric string, or an object carrying
// one of min/max/value/weight. Unrecognized units pass through unchanged
// (the payloads that omit a unit already report kilograms).
func Weight(value, unit any) *float64 {
	v, u := unwrap(value, unit, []string{"min", "max", "value", "weight"})
	num, ok := toFloat(v)
	if !ok {
		return nil
	}
	switch unitString(u) {
	case "lb", "lbs", "pound", "pounds":
		num *= poundsToKilograms
	}
	return &num
}

// Age converts a raw age value plus optional unit to months. Years multiply
// by 12, days divide by 30, anything else passes through.
func Age(value, unit any) *float64 {
	v, u := unwrap(value, unit, []string{"min", "max", "value", "age"})
	num, ok := toFloat(v)
	if !ok {
		return nil
	}
	switch unitString(u) {
	case "year", "years":
		num *= 12
	case "day", "days":
		num /= 30
	}
	return &num
}

// DaysToReaction converts the time_between_drug_administration_and_reaction
// object into whole days. Units other than day/week/month yield nil rather
// than a guess.
func DaysToReaction(record map[string]any) *int64 {
	timing, ok := record["time_between_drug_administration_and_reaction"].(map[string]any)
	if !ok {
		return nil
	}
	num, ok := toFloat(timing["time_value"])
	if !ok {
		return nil
	}
	var days int64
	switch unitString(timing["time_unit"]) {
	case "day", "days":
		days = int64(math.Round(num))
	case "week", "weeks":
		days = int64(math.Round(num * 7))
	case "month", "months":
		days = int64(math.Round(num * 30))
	default:
		return nil
	}
	return &days
}

// unwrap resolves object-shaped values to a scalar by trying keys in priority
// order, and lets a unit embedded in the object stand in for a missing outer
// unit.
func unwrap(value, unit any, keys []string) (any, any) {
	obj, ok := value.(map[string]any)
	if !ok {
		return value, unit
	}
	var scalar any
	for _, key := range keys {
		if v, present := obj[key]; present && !isEmpty(v) {
			scalar = v
			break
		}
	}
	if unit == nil || unitString(unit) == "" {
		unit = obj["unit"]
	}
	return scalar, unit
}

// toFloat coerces numbers and numeric strings. JSON decoding yields float64
// for numbers, but staged payloads frequently carry numbers as strings.
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0, false
		}
		num, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return num, true
	default:
		return 0, false
	}
}

func unitString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
