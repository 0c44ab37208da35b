package domain

import (
	"iter"
	"time"

	"github.com/teambition/rrule-go"
)

// RecurrenceUnit is the step unit of a recurrent pattern.
type RecurrenceUnit string

const (
	EveryDay  RecurrenceUnit = "day"
	EveryWeek RecurrenceUnit = "week"
)

// ClockTime is a wall-clock time of day without a date.
type ClockTime struct {
	Hour, Minute, Second int
}

// ParseClockTime parses "HH:MM:SS".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return ClockTime{}, err
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

// Before reports whether c is earlier in the day than o.
func (c ClockTime) Before(o ClockTime) bool {
	if c.Hour != o.Hour {
		return c.Hour < o.Hour
	}
	if c.Minute != o.Minute {
		return c.Minute < o.Minute
	}
	return c.Second < o.Second
}

// On places the clock time on the calendar day of d, in d's location.
func (c ClockTime) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, c.Second, 0, d.Location())
}

// Interval is a concrete [Start, End) occurrence of a pattern.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two intervals intersect under half-open
// semantics: [s1,e1) and [s2,e2) overlap iff s1 < e2 && s2 < e1.
// Touching intervals (e1 == s2) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// RecurrencePattern describes how a scheduling request expands into event
// instances. It is transient: consumed once by expansion, never persisted.
//
// StartDate and EndDate are civil dates (midnight in the event timezone);
// StartTime and EndTime are the daily window applied to every produced day.
type RecurrencePattern struct {
	StartDate      time.Time
	EndDate        time.Time
	StartTime      ClockTime
	EndTime        ClockTime
	Recurrent      bool
	EveryAfter     int
	EveryAfterUnit RecurrenceUnit
}

// Validate checks the pattern before expansion. Both the date range and the
// daily time window are checked once, against the pattern itself, so an
// invalid request fails before any instance is produced.
func (p *RecurrencePattern) Validate() error {
	if p.EndDate.Before(p.StartDate) {
		return ErrInvalidRange
	}
	if !p.StartTime.Before(p.EndTime) {
		return ErrInvalidRange
	}
	if p.Recurrent {
		if p.EveryAfter < 1 {
			return ErrInvalidRange
		}
		if p.EveryAfterUnit != EveryDay && p.EveryAfterUnit != EveryWeek {
			return ErrInvalidRange
		}
	}
	return nil
}

// Occurrences expands the pattern into its concrete intervals, in calendar
// order. The sequence is lazy and restartable; callers persist nothing by
// iterating. Validate must have passed first.
//
// A single-day pattern yields one interval. A non-recurrent range yields one
// interval per calendar day, inclusive. A recurrent pattern steps by
// EveryAfter days (or weeks) while the day is still on or before EndDate.
func (p *RecurrencePattern) Occurrences() iter.Seq[Interval] {
	return func(yield func(Interval) bool) {
		freq := rrule.DAILY
		interval := 1
		if p.Recurrent {
			interval = p.EveryAfter
			if p.EveryAfterUnit == EveryWeek {
				freq = rrule.WEEKLY
			}
		}
		r, err := rrule.NewRRule(rrule.ROption{
			Freq:     freq,
			Interval: interval,
			Dtstart:  p.StartTime.On(p.StartDate),
			// EndTime on the final day is always after that day's start,
			// so the last occurrence is included and no later one fits.
			Until: p.EndTime.On(p.EndDate),
		})
		if err != nil {
			return
		}
		next := r.Iterator()
		for {
			day, ok := next()
			if !ok {
				return
			}
			// Recompute both bounds from the calendar day so wall-clock
			// times survive DST transitions.
			if !yield(Interval{Start: p.StartTime.On(day), End: p.EndTime.On(day)}) {
				return
			}
		}
	}
}
