package samples

import (
	"context"
	"sort"
	"testing"

	"github.com/ludo-technologies/greenscan/internal/parser"
)

func TestGetKnownSamples(t *testing.T) {
	for _, name := range []string{"inefficient", "efficient", "insecure", "nested"} {
		s, ok := Get(name)
		if !ok {
			t.Errorf("Get(%q) should find a sample", name)
			continue
		}
		if s.Name != name {
			t.Errorf("Sample name = %q, expected %q", s.Name, name)
		}
		if s.Description == "" {
			t.Errorf("Sample %q has no description", name)
		}
		if s.Source == "" {
			t.Errorf("Sample %q has no source", name)
		}
	}
}

func TestGetUnknownSample(t *testing.T) {
	if _, ok := Get("nonexistent"); ok {
		t.Error("Get should report false for an unknown name")
	}
}

func TestNamesAreSorted(t *testing.T) {
	names := Names()
	if len(names) != 4 {
		t.Fatalf("Expected 4 samples, got %d", len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("Names should be sorted, got %v", names)
	}
}

func TestAllMatchesNames(t *testing.T) {
	all := All()
	names := Names()

	if len(all) != len(names) {
		t.Fatalf("All returned %d samples, Names returned %d", len(all), len(names))
	}
	for i, s := range all {
		if s.Name != names[i] {
			t.Errorf("All()[%d].Name = %q, expected %q", i, s.Name, names[i])
		}
	}
}

func TestSampleSourcesParse(t *testing.T) {
	p := parser.NewParser()
	defer p.Close()

	for _, s := range All() {
		unit, err := p.ParseString(context.Background(), s.Source)
		if err != nil {
			t.Fatalf("ParseString(%q) failed: %v", s.Name, err)
		}
		if unit.Failed() {
			t.Errorf("Sample %q does not parse: %s", s.Name, unit.ParseError)
		}
	}
}
