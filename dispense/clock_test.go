package dispense_test

import (
	"testing"
	"time"

	"github.com/carebox/dispense-engine/dispense"
)

// =============================================================================
// SLOT BAND TESTS
// =============================================================================

func TestTimeOfDayForHour_BandBoundaries(t *testing.T) {
	// GIVEN: The three dosing bands with inclusive lower bounds
	// WHEN: Mapping hours at and around each boundary
	// THEN: 11 is still morning, 12 flips to afternoon, 18 flips to evening

	cases := []struct {
		hour int
		want dispense.TimeOfDay
	}{
		{0, dispense.Morning},
		{7, dispense.Morning},
		{11, dispense.Morning},
		{12, dispense.Afternoon},
		{15, dispense.Afternoon},
		{17, dispense.Afternoon},
		{18, dispense.Evening},
		{21, dispense.Evening},
		{23, dispense.Evening},
	}

	for _, c := range cases {
		if got := dispense.TimeOfDayForHour(c.hour); got != c.want {
			t.Errorf("hour %d: expected %s, got %s", c.hour, c.want, got)
		}
	}
}

func TestRemainingSlotsForHour_IsChronologicalSuffix(t *testing.T) {
	// GIVEN: Any hour of the day
	// WHEN: Asking which slots are still ahead
	// THEN: The result is a suffix of [morning, afternoon, evening] that
	//       starts with the current slot

	full := []dispense.TimeOfDay{dispense.Morning, dispense.Afternoon, dispense.Evening}

	for hour := 0; hour < 24; hour++ {
		got := dispense.RemainingSlotsForHour(hour)
		if len(got) == 0 {
			t.Fatalf("hour %d: empty slot list", hour)
		}
		if got[0] != dispense.TimeOfDayForHour(hour) {
			t.Errorf("hour %d: expected first slot %s, got %s",
				hour, dispense.TimeOfDayForHour(hour), got[0])
		}
		suffix := full[len(full)-len(got):]
		for i := range got {
			if got[i] != suffix[i] {
				t.Errorf("hour %d: expected suffix %v, got %v", hour, suffix, got)
				break
			}
		}
	}
}

func TestRemainingSlotsForHour_Counts(t *testing.T) {
	if n := len(dispense.RemainingSlotsForHour(8)); n != 3 {
		t.Errorf("morning hour: expected 3 remaining slots, got %d", n)
	}
	if n := len(dispense.RemainingSlotsForHour(14)); n != 2 {
		t.Errorf("afternoon hour: expected 2 remaining slots, got %d", n)
	}
	if n := len(dispense.RemainingSlotsForHour(20)); n != 1 {
		t.Errorf("evening hour: expected 1 remaining slot, got %d", n)
	}
}

// =============================================================================
// DAY-OF-WEEK TESTS
// =============================================================================

func TestDayOfWeekAt_FullWeek(t *testing.T) {
	// 2026-08-31 is a Monday
	start := time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)
	want := []dispense.DayOfWeek{
		dispense.Monday, dispense.Tuesday, dispense.Wednesday, dispense.Thursday,
		dispense.Friday, dispense.Saturday, dispense.Sunday,
	}

	for i, day := range want {
		at := start.AddDate(0, 0, i)
		if got := dispense.DayOfWeekAt(at); got != day {
			t.Errorf("%s: expected %s, got %s", at.Format("2006-01-02"), day, got)
		}
	}
}

// =============================================================================
// RESOLVER TESTS
// =============================================================================

func TestResolver_FixedClock(t *testing.T) {
	// GIVEN: A resolver pinned to Tuesday 13:30
	// WHEN: Asking for the current grid cell and remaining slots
	// THEN: tue/afternoon, with [afternoon, evening] still ahead

	r := dispense.Resolver{Clock: dispense.FixedClock{
		T: time.Date(2026, time.September, 1, 13, 30, 0, 0, time.UTC),
	}}

	if got := r.CurrentDayOfWeek(); got != dispense.Tuesday {
		t.Errorf("expected tue, got %s", got)
	}
	if got := r.CurrentTimeOfDay(); got != dispense.Afternoon {
		t.Errorf("expected afternoon, got %s", got)
	}
	slots := r.RemainingSlotsToday()
	if len(slots) != 2 || slots[0] != dispense.Afternoon || slots[1] != dispense.Evening {
		t.Errorf("expected [afternoon evening], got %v", slots)
	}
}

func TestResolver_NilClockFallsBackToWallClock(t *testing.T) {
	var r dispense.Resolver
	// The value itself depends on when the test runs; it only has to be a
	// real slot.
	switch r.CurrentTimeOfDay() {
	case dispense.Morning, dispense.Afternoon, dispense.Evening:
	default:
		t.Errorf("unexpected slot %q", r.CurrentTimeOfDay())
	}
}

func TestSlotOrder_Chronological(t *testing.T) {
	if !(dispense.SlotOrder(dispense.Morning) < dispense.SlotOrder(dispense.Afternoon) &&
		dispense.SlotOrder(dispense.Afternoon) < dispense.SlotOrder(dispense.Evening)) {
		t.Error("slot order is not chronological")
	}
	// Lexicographic comparison would invert morning and afternoon.
	if dispense.SlotOrder(dispense.Morning) > dispense.SlotOrder(dispense.Afternoon) {
		t.Error("morning must sort before afternoon")
	}
}
