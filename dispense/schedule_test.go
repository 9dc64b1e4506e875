package dispense_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebox/dispense-engine/dispense"
	"github.com/carebox/dispense-engine/dispense/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestIndex(t *testing.T) (*dispense.ScheduleIndex, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return dispense.NewScheduleIndex(mem), mem
}

func seedEntry(t *testing.T, mem *store.Memory, id string, member dispense.MemberID, med dispense.MedicationID, day dispense.DayOfWeek, slot dispense.TimeOfDay, dose int) {
	t.Helper()
	require.NoError(t, mem.SaveScheduleEntry(context.Background(), dispense.ScheduleEntry{
		ID:           id,
		GroupID:      "grp-1",
		MemberID:     member,
		MedicationID: med,
		Day:          day,
		Slot:         slot,
		Dose:         dose,
		CreatedAt:    time.Now().UTC(),
	}))
}

// =============================================================================
// DUE-DOSE LOOKUP TESTS
// =============================================================================

func TestDueForGroup_MatchesOnlyTheRequestedCell(t *testing.T) {
	// GIVEN: Entries across several day/slot cells
	// WHEN: Querying mon/morning for the group
	// THEN: Only the mon/morning entries come back

	index, mem := newTestIndex(t)
	seedEntry(t, mem, "s1", "mem-a", "med-1", dispense.Monday, dispense.Morning, 1)
	seedEntry(t, mem, "s2", "mem-b", "med-1", dispense.Monday, dispense.Morning, 2)
	seedEntry(t, mem, "s3", "mem-a", "med-1", dispense.Monday, dispense.Evening, 1)
	seedEntry(t, mem, "s4", "mem-a", "med-1", dispense.Tuesday, dispense.Morning, 1)

	doses, err := index.DueForGroup(context.Background(), "grp-1", dispense.Monday, dispense.Morning)
	require.NoError(t, err)
	require.Len(t, doses, 2)
	assert.Equal(t, dispense.MemberID("mem-a"), doses[0].MemberID)
	assert.Equal(t, dispense.MemberID("mem-b"), doses[1].MemberID)
}

func TestDueForMember_NoMatches_EmptyNotError(t *testing.T) {
	index, _ := newTestIndex(t)

	doses, err := index.DueForMember(context.Background(), "mem-nobody", dispense.Monday, dispense.Morning)
	require.NoError(t, err)
	assert.Empty(t, doses)
}

func TestDueForMemberAcrossSlots_EmptySlotSet(t *testing.T) {
	index, mem := newTestIndex(t)
	seedEntry(t, mem, "s1", "mem-a", "med-1", dispense.Monday, dispense.Morning, 1)

	doses, err := index.DueForMemberAcrossSlots(context.Background(), "mem-a", dispense.Monday, nil)
	require.NoError(t, err)
	assert.Empty(t, doses)
}

func TestDueForMemberAcrossSlots_ChronologicalOrder(t *testing.T) {
	// GIVEN: Afternoon and morning entries for the same member
	// WHEN: Querying all three slots
	// THEN: Morning sorts before afternoon despite the reverse string order

	index, mem := newTestIndex(t)
	seedEntry(t, mem, "s1", "mem-a", "med-1", dispense.Monday, dispense.Afternoon, 1)
	seedEntry(t, mem, "s2", "mem-a", "med-2", dispense.Monday, dispense.Morning, 1)
	seedEntry(t, mem, "s3", "mem-a", "med-3", dispense.Monday, dispense.Evening, 1)

	doses, err := index.DueForMemberAcrossSlots(context.Background(), "mem-a", dispense.Monday,
		[]dispense.TimeOfDay{dispense.Morning, dispense.Afternoon, dispense.Evening})
	require.NoError(t, err)
	require.Len(t, doses, 3)
	assert.Equal(t, dispense.Morning, doses[0].Slot)
	assert.Equal(t, dispense.Afternoon, doses[1].Slot)
	assert.Equal(t, dispense.Evening, doses[2].Slot)
}

func TestDueDose_JoinsMemberAndMedicationDetails(t *testing.T) {
	index, mem := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, mem.SaveMember(ctx, dispense.Member{
		ID: "mem-a", GroupID: "grp-1", Name: "Anna", Role: dispense.RoleParent,
	}))
	require.NoError(t, mem.SaveMedication(ctx, dispense.Medication{
		ID: "med-1", GroupID: "grp-1", Name: "Vitamin D3",
		TargetMembers: []dispense.MemberID{"mem-a"},
	}))
	seedEntry(t, mem, "s1", "mem-a", "med-1", dispense.Monday, dispense.Morning, 2)

	doses, err := index.DueForMember(ctx, "mem-a", dispense.Monday, dispense.Morning)
	require.NoError(t, err)
	require.Len(t, doses, 1)
	assert.Equal(t, "Anna", doses[0].MemberName)
	assert.Equal(t, dispense.RoleParent, doses[0].MemberRole)
	assert.Equal(t, "Vitamin D3", doses[0].MedicationName)
	assert.Equal(t, []dispense.MemberID{"mem-a"}, doses[0].Targets)
	assert.Equal(t, 2, doses[0].Dose)
}

// =============================================================================
// DAY OVERVIEW TESTS
// =============================================================================

func TestDayOverview_GroupsBySlotInChronologicalOrder(t *testing.T) {
	// GIVEN: A day with doses in all three slots, inserted out of order
	// WHEN: Building the overview
	// THEN: Buckets appear morning, afternoon, evening; members sorted
	//       ascending within each bucket

	index, mem := newTestIndex(t)
	seedEntry(t, mem, "s1", "mem-b", "med-1", dispense.Wednesday, dispense.Evening, 1)
	seedEntry(t, mem, "s2", "mem-b", "med-2", dispense.Wednesday, dispense.Morning, 1)
	seedEntry(t, mem, "s3", "mem-a", "med-2", dispense.Wednesday, dispense.Morning, 1)
	seedEntry(t, mem, "s4", "mem-a", "med-3", dispense.Wednesday, dispense.Afternoon, 1)

	groups, err := index.DayOverview(context.Background(), "grp-1", dispense.Wednesday)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, dispense.Morning, groups[0].Slot)
	require.Len(t, groups[0].Doses, 2)
	assert.Equal(t, dispense.MemberID("mem-a"), groups[0].Doses[0].MemberID)
	assert.Equal(t, dispense.MemberID("mem-b"), groups[0].Doses[1].MemberID)

	assert.Equal(t, dispense.Afternoon, groups[1].Slot)
	assert.Equal(t, dispense.Evening, groups[2].Slot)
}

func TestDayOverview_EmptyDay(t *testing.T) {
	index, _ := newTestIndex(t)

	groups, err := index.DayOverview(context.Background(), "grp-1", dispense.Sunday)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

// =============================================================================
// AUDIENCE FILTER TESTS
// =============================================================================

func TestIsRecipient(t *testing.T) {
	// Empty target list means everyone in the household.
	assert.True(t, dispense.IsRecipient(nil, "mem-a"))
	assert.True(t, dispense.IsRecipient([]dispense.MemberID{}, "mem-a"))

	targets := []dispense.MemberID{"mem-a", "mem-b"}
	assert.True(t, dispense.IsRecipient(targets, "mem-a"))
	assert.True(t, dispense.IsRecipient(targets, "mem-b"))
	assert.False(t, dispense.IsRecipient(targets, "mem-c"))
}

func TestFilterForMember_DropsOutOfAudienceDoses(t *testing.T) {
	// GIVEN: One dose open to everyone, one restricted to another member
	// WHEN: Filtering for mem-b
	// THEN: Only the unrestricted dose survives

	doses := []dispense.DueDose{
		{ScheduleID: "s1", MemberID: "mem-b", MedicationID: "med-open"},
		{ScheduleID: "s2", MemberID: "mem-b", MedicationID: "med-restricted",
			Targets: []dispense.MemberID{"mem-a"}},
	}

	got := dispense.FilterForMember(doses, "mem-b")
	require.Len(t, got, 1)
	assert.Equal(t, dispense.MedicationID("med-open"), got[0].MedicationID)
}
