package breedmatch

import "testing"

var reference = []string{
	"Labrador Retriever",
	"German Shepherd",
	"Golden Retriever",
	"Beagle",
	"Siamese",
}

func TestExactMatchCaseInsensitive(t *testing.T) {
	m := New(reference, 0)
	got, ok := m.Match("  labrador retriever ")
	if !ok || got != "Labrador Retriever" {
		t.Errorf("expected Labrador Retriever, got %q (ok=%v)", got, ok)
	}
}

func TestHyphenSwapHeuristic(t *testing.T) {
	m := New(reference, 0)
	got, ok := m.Match("Retriever - Labrador")
	if !ok || got != "Labrador Retriever" {
		t.Errorf("expected swap match, got %q (ok=%v)", got, ok)
	}
}

func TestSwapOnlyAppliesToTwoParts(t *testing.T) {
	m := New(reference, 0)
	if got, ok := m.Match("a - b - c"); ok {
		t.Errorf("expected no match for three-part string, got %q", got)
	}
}

func TestFuzzyMatchAboveThreshold(t *testing.T) {
	m := New(reference, 0)
	got, ok := m.Match("labrador retreiver")
	if !ok || got != "Labrador Retriever" {
		t.Errorf("expected fuzzy match, got %q (ok=%v)", got, ok)
	}
}

func TestFuzzyMatchBelowThreshold(t *testing.T) {
	m := New(reference, 0)
	got, ok := m.Match("zzqx")
	if ok || got != Unknown {
		t.Errorf("expected Unknown, got %q (ok=%v)", got, ok)
	}
}

func TestEmptyInput(t *testing.T) {
	m := New(reference, 0)
	if got := m.Resolve("   "); got != Unknown {
		t.Errorf("expected Unknown for blank input, got %q", got)
	}
}

func TestEmptyReferenceList(t *testing.T) {
	m := New(nil, 0)
	if got := m.Resolve("Labrador"); got != Unknown {
		t.Errorf("expected Unknown with empty reference, got %q", got)
	}
}

func TestDeterministicFirstBestTieBreak(t *testing.T) {
	// Two reference entries equally similar to the input; the earlier one
	// must win every time.
	m := New([]string{"pointer a", "pointer b"}, 0)
	for i := 0; i < 5; i++ {
		got, ok := m.Match("pointer x")
		if !ok || got != "pointer a" {
			t.Fatalf("expected first-best pointer a, got %q (ok=%v)", got, ok)
		}
	}
}

func TestCanonicalCasingPreserved(t *testing.T) {
	m := New(reference, 0)
	if got := m.Resolve("BEAGLE"); got != "Beagle" {
		t.Errorf("expected reference casing, got %q", got)
	}
}
