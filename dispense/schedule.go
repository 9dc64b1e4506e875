/*
schedule.go - Due-dose lookups over the schedule

PURPOSE:
  The schedule index answers "which doses are due" for a household or a
  single member given a (day-of-week, time-of-day) cell, or a set of
  slots for upcoming-today views.

ORDERING:
  The store makes no ordering promise, so the index sorts: chronological
  slot order first, then member id ascending. Sorting by the raw slot
  string would be wrong ("afternoon" collates before "morning").

FAILURE:
  No matches is an empty slice, never an error.
*/
package dispense

import (
	"context"
	"sort"
)

// ScheduleIndex serves due-dose queries.
type ScheduleIndex struct {
	store ScheduleStore
}

func NewScheduleIndex(store ScheduleStore) *ScheduleIndex {
	return &ScheduleIndex{store: store}
}

// DueForGroup returns the household's doses due at one day/slot cell.
func (ix *ScheduleIndex) DueForGroup(ctx context.Context, groupID GroupID, day DayOfWeek, slot TimeOfDay) ([]DueDose, error) {
	doses, err := ix.store.FindDueForGroup(ctx, groupID, day, []TimeOfDay{slot})
	if err != nil {
		return nil, err
	}
	sortDoses(doses)
	return doses, nil
}

// DueForMember returns one member's doses due at one day/slot cell.
func (ix *ScheduleIndex) DueForMember(ctx context.Context, memberID MemberID, day DayOfWeek, slot TimeOfDay) ([]DueDose, error) {
	doses, err := ix.store.FindDueForMember(ctx, memberID, day, []TimeOfDay{slot})
	if err != nil {
		return nil, err
	}
	sortDoses(doses)
	return doses, nil
}

// DueForMemberAcrossSlots returns one member's doses matching any of the
// given slots. Used with Resolver.RemainingSlotsToday for the
// "what is still ahead today" dispense query.
func (ix *ScheduleIndex) DueForMemberAcrossSlots(ctx context.Context, memberID MemberID, day DayOfWeek, slots []TimeOfDay) ([]DueDose, error) {
	if len(slots) == 0 {
		return []DueDose{}, nil
	}
	doses, err := ix.store.FindDueForMember(ctx, memberID, day, slots)
	if err != nil {
		return nil, err
	}
	sortDoses(doses)
	return doses, nil
}

// DueForGroupAcrossSlots returns a household's doses matching any of the
// given slots.
func (ix *ScheduleIndex) DueForGroupAcrossSlots(ctx context.Context, groupID GroupID, day DayOfWeek, slots []TimeOfDay) ([]DueDose, error) {
	if len(slots) == 0 {
		return []DueDose{}, nil
	}
	doses, err := ix.store.FindDueForGroup(ctx, groupID, day, slots)
	if err != nil {
		return nil, err
	}
	sortDoses(doses)
	return doses, nil
}

// =============================================================================
// FULL-DAY OVERVIEW
// =============================================================================

// SlotGroup is one time-of-day bucket of a full-day overview.
type SlotGroup struct {
	Slot  TimeOfDay
	Doses []DueDose
}

// DayOverview returns all of a household's doses for a day, grouped by
// time-of-day in chronological order, member id ascending within each
// group. Entries without a slot land in a trailing bucket.
func (ix *ScheduleIndex) DayOverview(ctx context.Context, groupID GroupID, day DayOfWeek) ([]SlotGroup, error) {
	doses, err := ix.store.FindByGroupDay(ctx, groupID, day)
	if err != nil {
		return nil, err
	}
	sortDoses(doses)

	var groups []SlotGroup
	for _, d := range doses {
		if len(groups) == 0 || groups[len(groups)-1].Slot != d.Slot {
			groups = append(groups, SlotGroup{Slot: d.Slot})
		}
		last := &groups[len(groups)-1]
		last.Doses = append(last.Doses, d)
	}
	return groups, nil
}

// sortDoses orders by chronological slot, then member id, then schedule id
// for a stable tie-break.
func sortDoses(doses []DueDose) {
	sort.SliceStable(doses, func(i, j int) bool {
		if SlotOrder(doses[i].Slot) != SlotOrder(doses[j].Slot) {
			return SlotOrder(doses[i].Slot) < SlotOrder(doses[j].Slot)
		}
		if doses[i].MemberID != doses[j].MemberID {
			return doses[i].MemberID < doses[j].MemberID
		}
		return doses[i].ScheduleID < doses[j].ScheduleID
	})
}
