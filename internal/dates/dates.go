// Package dates parses free-text dates and times for workflow inputs.
package dates

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Parser turns free text into a point in time relative to base.
type Parser interface {
	Parse(ctx context.Context, text string, base time.Time) (time.Time, error)
}

// ParseError reports input that could not be understood as a date.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse date %q: %s", e.Input, e.Reason)
}

var layouts = []struct {
	layout   string
	dateOnly bool
}{
	{time.RFC3339, false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04", false},
	{"2006-01-02", true},
	{"02/01/2006 15:04", false},
	{"02/01/2006 15h04", false},
	{"02/01/2006", true},
}

// French relative day words. Keys are folded to plain ASCII without apostrophes.
var relativeDays = map[string]int{
	"aujourdhui":   0,
	"today":        0,
	"demain":       1,
	"apres-demain": 2,
	"apres demain": 2,
}

var (
	frenchTime = regexp.MustCompile(`^(?:a\s+)?(\d{1,2})\s*h\s*(\d{2})?$`)
	accents    = strings.NewReplacer("à", "a", "â", "a", "è", "e", "é", "e", "ê", "e", "'", "", "’", "")
)

// Service is the Parser used in production: fixed layouts first, then French
// relative days, then the English rule set of github.com/olebedev/when.
type Service struct {
	w   *when.Parser
	loc *time.Location
}

var _ Parser = (*Service)(nil)

// NewService creates a parser that interprets wall-clock input in loc.
func NewService(loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Service{w: w, loc: loc}
}

// Parse interprets text relative to base. Date-only input yields midnight in
// the service location.
func (s *Service) Parse(ctx context.Context, text string, base time.Time) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	input := strings.TrimSpace(text)
	if input == "" {
		return time.Time{}, &ParseError{Input: text, Reason: "empty input"}
	}
	base = base.In(s.loc)

	for _, l := range layouts {
		if t, err := time.ParseInLocation(l.layout, input, s.loc); err == nil {
			return t, nil
		}
	}

	if t, ok, err := s.parseRelativeDay(input, base); ok {
		return t, err
	}

	result, err := s.w.Parse(input, base)
	if err != nil {
		return time.Time{}, &ParseError{Input: text, Reason: err.Error()}
	}
	if result == nil {
		return time.Time{}, &ParseError{Input: text, Reason: "no date found"}
	}
	return result.Time.In(s.loc), nil
}

// parseRelativeDay handles "demain", "après-demain à 14h30" and friends.
func (s *Service) parseRelativeDay(input string, base time.Time) (time.Time, bool, error) {
	folded := accents.Replace(strings.ToLower(input))
	for word, offset := range relativeDays {
		if !strings.HasPrefix(folded, word) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(folded, word))
		day := StartOfDay(base.AddDate(0, 0, offset))
		if rest == "" {
			return day, true, nil
		}
		m := frenchTime.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour > 23 || minute > 59 {
			return time.Time{}, true, &ParseError{Input: input, Reason: "time of day out of range"}
		}
		return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), true, nil
	}
	return time.Time{}, false, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
