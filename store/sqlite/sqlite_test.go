package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebox/dispense-engine/dispense"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedMember(t *testing.T, s *Store, id dispense.MemberID, token, device string) {
	t.Helper()
	require.NoError(t, s.SaveMember(context.Background(), dispense.Member{
		ID: id, GroupID: "grp-1", Name: string(id), Role: dispense.RoleParent,
		TokenUID: token, DeviceUID: device,
	}))
}

// =============================================================================
// MEMBER TESTS
// =============================================================================

func TestMemberLookup_ByTokenAndDevice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedMember(t, s, "mem-b", "tok-b", "device-1")
	seedMember(t, s, "mem-a", "tok-a", "device-1")

	byToken, err := s.GetMemberByTokenUID(ctx, "tok-b")
	require.NoError(t, err)
	require.NotNil(t, byToken)
	assert.Equal(t, dispense.MemberID("mem-b"), byToken.ID)

	// Device lookup picks the lowest member id deterministically.
	byDevice, err := s.GetMemberByDeviceUID(ctx, "device-1")
	require.NoError(t, err)
	require.NotNil(t, byDevice)
	assert.Equal(t, dispense.MemberID("mem-a"), byDevice.ID)
}

func TestMemberLookup_Missing_NilNotError(t *testing.T) {
	s := newTestStore(t)

	m, err := s.GetMemberByTokenUID(context.Background(), "tok-ghost")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestSaveMember_UpsertOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedMember(t, s, "mem-a", "tok-a", "device-1")

	require.NoError(t, s.SaveMember(ctx, dispense.Member{
		ID: "mem-a", GroupID: "grp-1", Name: "Renamed", Role: dispense.RoleChild,
		TokenUID: "tok-a2", DeviceUID: "device-2", Age: 12,
	}))

	m, err := s.GetMember(ctx, "mem-a")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Renamed", m.Name)
	assert.Equal(t, dispense.RoleChild, m.Role)
	assert.Equal(t, "tok-a2", m.TokenUID)
	assert.Equal(t, 12, m.Age)
}

func TestListMembersByGroup_OrderedByRoleThenID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveMember(ctx, dispense.Member{
		ID: "mem-c", GroupID: "grp-1", Name: "C", Role: dispense.RoleParent,
	}))
	require.NoError(t, s.SaveMember(ctx, dispense.Member{
		ID: "mem-a", GroupID: "grp-1", Name: "A", Role: dispense.RoleChild,
	}))
	require.NoError(t, s.SaveMember(ctx, dispense.Member{
		ID: "mem-b", GroupID: "grp-2", Name: "B", Role: dispense.RoleParent,
	}))

	members, err := s.ListMembersByGroup(ctx, "grp-1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, dispense.MemberID("mem-a"), members[0].ID)
	assert.Equal(t, dispense.MemberID("mem-c"), members[1].ID)
}

func TestMarkTookToday_TransitionOnce(t *testing.T) {
	// GIVEN: A member with the taken-today marker clear
	// WHEN: Marking twice
	// THEN: The first call reports the transition, the second reports
	//       already-set; an unknown member is an error

	s := newTestStore(t)
	ctx := context.Background()
	seedMember(t, s, "mem-a", "tok-a", "device-1")

	first, err := s.MarkTookToday(ctx, "mem-a")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := s.MarkTookToday(ctx, "mem-a")
	require.NoError(t, err)
	assert.False(t, second)

	_, err = s.MarkTookToday(ctx, "mem-ghost")
	assert.ErrorIs(t, err, dispense.ErrMemberNotFound)
}

func TestResetTookToday_ClearsAllMarkers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedMember(t, s, "mem-a", "tok-a", "device-1")
	seedMember(t, s, "mem-b", "tok-b", "device-1")

	_, err := s.MarkTookToday(ctx, "mem-a")
	require.NoError(t, err)

	n, err := s.ResetTookToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	again, err := s.MarkTookToday(ctx, "mem-a")
	require.NoError(t, err)
	assert.True(t, again, "marker should be markable again after reset")
}

// =============================================================================
// MEDICATION TESTS
// =============================================================================

func TestMedication_RoundTripWithTargetsAndDates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveMedication(ctx, dispense.Medication{
		ID: "med-a", GroupID: "grp-1", Name: "Vitamin D3",
		StartDate: &start, EndDate: &end,
		TargetMembers: []dispense.MemberID{"mem-a", "mem-b"},
	}))

	med, err := s.GetMedication(ctx, "grp-1", "med-a")
	require.NoError(t, err)
	require.NotNil(t, med)
	assert.Equal(t, "Vitamin D3", med.Name)
	assert.False(t, med.Warning)
	require.NotNil(t, med.StartDate)
	assert.Equal(t, start, *med.StartDate)
	assert.Equal(t, []dispense.MemberID{"mem-a", "mem-b"}, med.TargetMembers)

	// Same id under another household is a distinct record.
	other, err := s.GetMedication(ctx, "grp-2", "med-a")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestSetWarning_StickyTransition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveMedication(ctx, dispense.Medication{
		ID: "med-a", GroupID: "grp-1", Name: "Vitamin D3",
	}))

	raised, err := s.SetWarning(ctx, "grp-1", "med-a")
	require.NoError(t, err)
	assert.True(t, raised)

	raised, err = s.SetWarning(ctx, "grp-1", "med-a")
	require.NoError(t, err)
	assert.False(t, raised, "second set must not report a transition")

	med, err := s.GetMedication(ctx, "grp-1", "med-a")
	require.NoError(t, err)
	assert.True(t, med.Warning)

	_, err = s.SetWarning(ctx, "grp-1", "med-ghost")
	assert.ErrorIs(t, err, dispense.ErrMedicationNotFound)
}

// =============================================================================
// SLOT TESTS
// =============================================================================

func seedStockedSlot(t *testing.T, s *Store, med dispense.MedicationID, remaining int) {
	t.Helper()
	require.NoError(t, s.SaveSlot(context.Background(), dispense.MachineSlot{
		DeviceUID: "device-1", MedicationID: med, GroupID: "grp-1",
		Slot: 1, MaxSlot: 3, Total: 30, Remaining: remaining,
	}))
}

func TestDecrementRemaining_Success(t *testing.T) {
	s := newTestStore(t)
	seedStockedSlot(t, s, "med-a", 20)

	remaining, err := s.DecrementRemaining(context.Background(), "grp-1", "med-a", 3)
	require.NoError(t, err)
	assert.Equal(t, 17, remaining)
}

func TestDecrementRemaining_ExactDepletion(t *testing.T) {
	s := newTestStore(t)
	seedStockedSlot(t, s, "med-a", 2)

	remaining, err := s.DecrementRemaining(context.Background(), "grp-1", "med-a", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestDecrementRemaining_Insufficient(t *testing.T) {
	// GIVEN: 1 remaining
	// WHEN: Decrementing by 2
	// THEN: Structured insufficiency error; stored count unchanged

	s := newTestStore(t)
	seedStockedSlot(t, s, "med-a", 1)
	ctx := context.Background()

	_, err := s.DecrementRemaining(ctx, "grp-1", "med-a", 2)
	require.Error(t, err)

	var stockErr *dispense.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Remaining)
	assert.Equal(t, 2, stockErr.Requested)

	slot, err := s.GetSlot(ctx, "grp-1", "med-a")
	require.NoError(t, err)
	assert.Equal(t, 1, slot.Remaining)
}

func TestDecrementRemaining_MissingSlot(t *testing.T) {
	s := newTestStore(t)

	_, err := s.DecrementRemaining(context.Background(), "grp-1", "med-ghost", 1)
	assert.ErrorIs(t, err, dispense.ErrSlotNotFound)
}

func TestListSlotsByGroup_OrderedByPhysicalIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveSlot(ctx, dispense.MachineSlot{
		DeviceUID: "device-1", MedicationID: "med-b", GroupID: "grp-1",
		Slot: 2, MaxSlot: 3, Total: 30, Remaining: 30,
	}))
	require.NoError(t, s.SaveSlot(ctx, dispense.MachineSlot{
		DeviceUID: "device-1", MedicationID: "med-a", GroupID: "grp-1",
		Slot: 1, MaxSlot: 3, Total: 30, Remaining: 30,
	}))

	slots, err := s.ListSlotsByGroup(ctx, "grp-1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, 1, slots[0].Slot)
	assert.Equal(t, 2, slots[1].Slot)
}

// =============================================================================
// SCHEDULE TESTS
// =============================================================================

func TestFindDueForMember_JoinsDisplayData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedMember(t, s, "mem-a", "tok-a", "device-1")
	require.NoError(t, s.SaveMedication(ctx, dispense.Medication{
		ID: "med-a", GroupID: "grp-1", Name: "Vitamin D3",
		TargetMembers: []dispense.MemberID{"mem-a"},
	}))
	require.NoError(t, s.SaveScheduleEntry(ctx, dispense.ScheduleEntry{
		ID: "s1", GroupID: "grp-1", MemberID: "mem-a", MedicationID: "med-a",
		Day: dispense.Monday, Slot: dispense.Morning, Dose: 2,
	}))

	doses, err := s.FindDueForMember(ctx, "mem-a", dispense.Monday,
		[]dispense.TimeOfDay{dispense.Morning})
	require.NoError(t, err)
	require.Len(t, doses, 1)
	assert.Equal(t, "Vitamin D3", doses[0].MedicationName)
	assert.Equal(t, "mem-a", doses[0].MemberName)
	assert.Equal(t, 2, doses[0].Dose)
	assert.Equal(t, []dispense.MemberID{"mem-a"}, doses[0].Targets)
}

func TestFindDueForGroup_SlotSetFiltering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entries := []dispense.ScheduleEntry{
		{ID: "s1", GroupID: "grp-1", MemberID: "mem-a", MedicationID: "med-a",
			Day: dispense.Monday, Slot: dispense.Morning, Dose: 1},
		{ID: "s2", GroupID: "grp-1", MemberID: "mem-a", MedicationID: "med-a",
			Day: dispense.Monday, Slot: dispense.Afternoon, Dose: 1},
		{ID: "s3", GroupID: "grp-1", MemberID: "mem-a", MedicationID: "med-a",
			Day: dispense.Monday, Slot: dispense.Evening, Dose: 1},
	}
	for _, e := range entries {
		require.NoError(t, s.SaveScheduleEntry(ctx, e))
	}

	doses, err := s.FindDueForGroup(ctx, "grp-1", dispense.Monday,
		[]dispense.TimeOfDay{dispense.Afternoon, dispense.Evening})
	require.NoError(t, err)
	assert.Len(t, doses, 2)

	doses, err = s.FindDueForGroup(ctx, "grp-1", dispense.Monday, nil)
	require.NoError(t, err)
	assert.Empty(t, doses, "empty slot set matches nothing")
}

func TestFindByGroupDay_ReturnsWholeDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveScheduleEntry(ctx, dispense.ScheduleEntry{
		ID: "s1", GroupID: "grp-1", MemberID: "mem-a", MedicationID: "med-a",
		Day: dispense.Friday, Slot: dispense.Morning, Dose: 1,
	}))
	require.NoError(t, s.SaveScheduleEntry(ctx, dispense.ScheduleEntry{
		ID: "s2", GroupID: "grp-1", MemberID: "mem-a", MedicationID: "med-a",
		Day: dispense.Friday, Slot: dispense.Evening, Dose: 1,
	}))
	require.NoError(t, s.SaveScheduleEntry(ctx, dispense.ScheduleEntry{
		ID: "s3", GroupID: "grp-1", MemberID: "mem-a", MedicationID: "med-a",
		Day: dispense.Saturday, Slot: dispense.Morning, Dose: 1,
	}))

	doses, err := s.FindByGroupDay(ctx, "grp-1", dispense.Friday)
	require.NoError(t, err)
	assert.Len(t, doses, 2)
}

// =============================================================================
// RESET
// =============================================================================

func TestReset_ClearsAllTables(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedMember(t, s, "mem-a", "tok-a", "device-1")
	require.NoError(t, s.SaveMedication(ctx, dispense.Medication{
		ID: "med-a", GroupID: "grp-1", Name: "Vitamin D3",
	}))
	seedStockedSlot(t, s, "med-a", 10)

	require.NoError(t, s.Reset(ctx))

	m, err := s.GetMember(ctx, "mem-a")
	require.NoError(t, err)
	assert.Nil(t, m)

	med, err := s.GetMedication(ctx, "grp-1", "med-a")
	require.NoError(t, err)
	assert.Nil(t, med)

	slot, err := s.GetSlot(ctx, "grp-1", "med-a")
	require.NoError(t, err)
	assert.Nil(t, slot)
}
