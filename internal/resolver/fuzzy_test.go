package resolver

import (
	"testing"
)

func TestTokenizeFoldsAccentsAndDropsShortTokens(t *testing.T) {
	got := tokenize("Hélène D. Lefèvre-Dupré")
	want := []string{"helene", "lefevre", "dupre"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokenize = %v, want %v", got, want)
		}
	}
}

func TestTokenDistance(t *testing.T) {
	if d := tokenDistance("jean", "jean"); d != 0 {
		t.Fatalf("identical tokens should score 0, got %f", d)
	}
	if d := tokenDistance("jean", "jeanne"); d <= 0 || d > 0.1 {
		t.Fatalf("prefix should score in (0, 0.1], got %f", d)
	}
	if d := tokenDistance("dupont", "dupond"); d <= 0 || d >= 0.3 {
		t.Fatalf("one typo should stay under threshold, got %f", d)
	}
	if d := tokenDistance("marie", "xyz"); d != 1 {
		t.Fatalf("unrelated tokens should score 1, got %f", d)
	}
}

func TestScoreIgnoresTokenPosition(t *testing.T) {
	fields := []Field{{Value: "Jean Dupont", Weight: 0.5}}
	if a, b := Score("dupont jean", fields), Score("jean dupont", fields); a != b || a != 0 {
		t.Fatalf("expected position-independent exact match, got %f and %f", a, b)
	}
}

func TestScorePrefersHeavierFields(t *testing.T) {
	heavy := Score("lyon", []Field{{Value: "Lyon", Weight: 0.5}, {Value: "Paris", Weight: 0.1}})
	light := Score("lyon", []Field{{Value: "Paris", Weight: 0.5}, {Value: "Lyons", Weight: 0.1}})
	if heavy >= light {
		t.Fatalf("expected heavy-field hit to score lower, got heavy=%f light=%f", heavy, light)
	}
}

func TestScoreWithoutUsableTokens(t *testing.T) {
	if s := Score("a", []Field{{Value: "a", Weight: 1}}); s != 1 {
		t.Fatalf("single-letter query should not match, got %f", s)
	}
}

func TestRankIsMonotonicInSimilarity(t *testing.T) {
	candidates := []string{"Jules Dumas", "Jeanne Dupond", "Jean Dupont"}
	fields := func(name string) []Field { return []Field{{Value: name, Weight: 1}} }

	pool := rank("jean dupont", candidates, fields, 1)
	if len(pool) != 3 {
		t.Fatalf("expected all candidates in pool, got %d", len(pool))
	}
	if pool[0].item != "Jean Dupont" || pool[1].item != "Jeanne Dupond" {
		t.Fatalf("unexpected order: %+v", pool)
	}
	for i := 1; i < len(pool); i++ {
		if pool[i-1].score > pool[i].score {
			t.Fatalf("pool not sorted by score: %+v", pool)
		}
	}
}

func TestRankDropsCandidatesAboveCutoff(t *testing.T) {
	fields := func(name string) []Field { return []Field{{Value: name, Weight: 1}} }
	pool := rank("jean", []string{"Jean", "Zorro"}, fields, 0.6)
	if len(pool) != 1 || pool[0].item != "Jean" {
		t.Fatalf("expected only the close match, got %+v", pool)
	}
}
