// Package dateutil holds the calendar helpers shared by the crawl and report
// pipelines. Every value it returns is a UTC midnight; time-of-day and zone
// information from the source are discarded.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

const (
	DateLayout  = time.DateOnly
	MonthLayout = "2006-01"
)

var ErrInvalidDate = errors.New("invalid date")

// Window is an inclusive range of calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the calendar day of t lies in [Start, End].
func (w Window) Contains(t time.Time) bool {
	d := Truncate(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s]", w.Start.Format(DateLayout), w.End.Format(DateLayout))
}

// ParseDate accepts YYYY-MM-DD or YYYY/MM/DD, optionally followed by a time
// part separated by a space or "T" which is ignored.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	day := strings.Fields(s)[0]
	if i := strings.IndexByte(day, 'T'); i > 0 {
		day = day[:i]
	}
	layout := DateLayout
	if strings.Contains(day, "/") {
		layout = "2006/01/02"
	}
	t, err := time.ParseInLocation(layout, day, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseOptionalDate is ParseDate for nullable fields; nil and blank map to nil.
func ParseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseMonth parses YYYY-MM and returns the first day of that month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Truncate drops the time of day, keeping the calendar date as seen in t's location.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Today() time.Time {
	return Truncate(time.Now())
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

// MonthWindow returns the first and last calendar day of the month containing t.
func MonthWindow(t time.Time) Window {
	n := now.With(Truncate(t))
	return Window{
		Start: n.BeginningOfMonth(),
		End:   Truncate(n.EndOfMonth()),
	}
}

// Days lists every date in [from, to]. It fails when to is before from.
func Days(from, to time.Time) ([]time.Time, error) {
	from, to = Truncate(from), Truncate(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s before start %s", ErrInvalidDate, FormatDate(to), FormatDate(from))
	}
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out, nil
}

// Months lists the first day of every month touched by [from, to].
func Months(from, to time.Time) ([]time.Time, error) {
	first := MonthWindow(from).Start
	last := MonthWindow(to).Start
	if last.Before(first) {
		return nil, fmt.Errorf("%w: range end %s before start %s", ErrInvalidDate, FormatMonth(last), FormatMonth(first))
	}
	var out []time.Time
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, m)
	}
	return out, nil
}
