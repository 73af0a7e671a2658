package dates

import (
	"context"
	"errors"
	"testing"
	"time"
)

func paris(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	return loc
}

func TestParseFixedLayouts(t *testing.T) {
	loc := paris(t)
	s := NewService(loc)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)

	cases := map[string]time.Time{
		"2026-04-02":       time.Date(2026, 4, 2, 0, 0, 0, 0, loc),
		"2026-04-02T14:30": time.Date(2026, 4, 2, 14, 30, 0, 0, loc),
		"02/04/2026":       time.Date(2026, 4, 2, 0, 0, 0, 0, loc),
		"02/04/2026 15h45": time.Date(2026, 4, 2, 15, 45, 0, 0, loc),
	}
	for input, want := range cases {
		got, err := s.Parse(context.Background(), input, base)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %v", input, err)
		}
		if !got.Equal(want) {
			t.Fatalf("Parse(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseFrenchRelativeDays(t *testing.T) {
	loc := paris(t)
	s := NewService(loc)
	base := time.Date(2026, 3, 10, 18, 20, 0, 0, loc)

	cases := map[string]time.Time{
		"aujourd'hui":          time.Date(2026, 3, 10, 0, 0, 0, 0, loc),
		"Demain":               time.Date(2026, 3, 11, 0, 0, 0, 0, loc),
		"après-demain à 10h30": time.Date(2026, 3, 12, 10, 30, 0, 0, loc),
		"demain 9h":            time.Date(2026, 3, 11, 9, 0, 0, 0, loc),
	}
	for input, want := range cases {
		got, err := s.Parse(context.Background(), input, base)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %v", input, err)
		}
		if !got.Equal(want) {
			t.Fatalf("Parse(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseEnglishFallback(t *testing.T) {
	loc := paris(t)
	s := NewService(loc)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)

	got, err := s.Parse(context.Background(), "tomorrow", base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if y, m, d := got.Date(); y != 2026 || m != time.March || d != 11 {
		t.Fatalf("expected March 11, got %v", got)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	s := NewService(time.UTC)
	_, err := s.Parse(context.Background(), "whenever works", time.Now())

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Input != "whenever works" {
		t.Fatalf("unexpected input in error: %q", perr.Input)
	}
}

func TestParseOutOfRangeTime(t *testing.T) {
	s := NewService(time.UTC)
	_, err := s.Parse(context.Background(), "demain 25h", time.Now())
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestParseHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewService(time.UTC).Parse(ctx, "2026-01-01", time.Now())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
