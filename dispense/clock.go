/*
clock.go - Wall-clock resolution to dosing slots

PURPOSE:
  Maps wall-clock time to the discrete (day-of-week, time-of-day) grid the
  schedule is keyed on, and to the ordered set of slots still ahead today.

BANDS:
  hour <  12  -> morning
  hour <  18  -> afternoon
  otherwise   -> evening

  Lower bound inclusive, upper bound exclusive: 11:59 is morning, 12:00 is
  afternoon, 18:00 is evening.

DETERMINISM:
  Everything here is a pure function of a time.Time. Components hold a
  Resolver bound to a Clock so tests can pin the clock to a fixed instant.
*/
package dispense

import "time"

// Clock abstracts time.Now for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// =============================================================================
// PURE SLOT FUNCTIONS
// =============================================================================

// TimeOfDayForHour maps an hour (0..23) to its dosing slot.
func TimeOfDayForHour(hour int) TimeOfDay {
	switch {
	case hour < 12:
		return Morning
	case hour < 18:
		return Afternoon
	default:
		return Evening
	}
}

// RemainingSlotsForHour returns the current slot plus all later slots, in
// chronological order. The result is always a suffix of
// [morning, afternoon, evening].
func RemainingSlotsForHour(hour int) []TimeOfDay {
	switch {
	case hour < 12:
		return []TimeOfDay{Morning, Afternoon, Evening}
	case hour < 18:
		return []TimeOfDay{Afternoon, Evening}
	default:
		return []TimeOfDay{Evening}
	}
}

// DayOfWeekAt maps a time to its lowercase three-letter day name.
func DayOfWeekAt(t time.Time) DayOfWeek {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// =============================================================================
// RESOLVER - Clock-bound convenience wrapper
// =============================================================================

// Resolver answers "what slot is it right now" questions against an
// injectable clock.
type Resolver struct {
	Clock Clock
}

// NewResolver returns a resolver on the system clock.
func NewResolver() Resolver {
	return Resolver{Clock: SystemClock{}}
}

func (r Resolver) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock.Now()
}

// CurrentDayOfWeek returns today's day-of-week key.
func (r Resolver) CurrentDayOfWeek() DayOfWeek {
	return DayOfWeekAt(r.now())
}

// CurrentTimeOfDay returns the dosing slot the clock currently falls in.
func (r Resolver) CurrentTimeOfDay() TimeOfDay {
	return TimeOfDayForHour(r.now().Hour())
}

// RemainingSlotsToday returns the current slot and all later slots.
func (r Resolver) RemainingSlotsToday() []TimeOfDay {
	return RemainingSlotsForHour(r.now().Hour())
}
