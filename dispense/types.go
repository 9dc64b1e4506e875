/*
Package dispense provides the core dispense-decision and inventory engine.

PURPOSE:
  This package contains the decision logic for a shared household medication
  dispenser: which doses are due for which household member at the current
  day/time slot, which of those the authenticated member should actually
  receive, and how machine stock is decremented and reconciled after a
  dispense run.

KEY CONCEPTS IN THIS FILE (types.go):
  - GroupID: the household tenant key; one physical dispenser and its
    members belong to exactly one group
  - Member: a household member carrying an RFID token
  - Medication: a medication definition scoped to one household
  - MachineSlot: the inventory record for one medication in one device slot
  - ScheduleEntry: one dose on one day-of-week/time-of-day
  - DueDose: a schedule entry enriched with display names for responses

DESIGN PRINCIPLES:
  1. Tenant Scoping: medications and slots are keyed by (GroupID, local id);
     every lookup takes the group id explicitly, never the local id alone
  2. Type Safety: strong typing for IDs prevents mixing member/medication ids
  3. Unidirectional References: entities hold foreign keys, never live
     back-references; joins happen in the store

SEE ALSO:
  - clock.go: day-of-week / time-of-day resolution
  - schedule.go: due-dose lookups
  - ledger.go: stock decrements and low-stock warnings
  - orchestrator.go: the device-facing use cases
*/
package dispense

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type GroupID string
type MemberID string
type MedicationID string

// Role of a household member.
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// =============================================================================
// DAY-OF-WEEK AND TIME-OF-DAY SLOTS
// =============================================================================

// DayOfWeek is a lowercase three-letter day name, matching how schedule
// entries are stored.
type DayOfWeek string

const (
	Monday    DayOfWeek = "mon"
	Tuesday   DayOfWeek = "tue"
	Wednesday DayOfWeek = "wed"
	Thursday  DayOfWeek = "thu"
	Friday    DayOfWeek = "fri"
	Saturday  DayOfWeek = "sat"
	Sunday    DayOfWeek = "sun"
)

// TimeOfDay is one of three fixed daily dosing windows. The empty string
// means a schedule entry has no slot assigned.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
)

// SlotOrder returns the chronological rank of a time-of-day slot.
// Unknown/empty slots sort last. Do not rely on string collation for
// ordering: "afternoon" < "morning" alphabetically.
func SlotOrder(t TimeOfDay) int {
	switch t {
	case Morning:
		return 0
	case Afternoon:
		return 1
	case Evening:
		return 2
	default:
		return 3
	}
}

// =============================================================================
// ENTITIES
// =============================================================================

// Member is one person in a household. All members of a household share a
// single DeviceUID (the physical dispenser) and each carries a personal
// RFID token (TokenUID).
type Member struct {
	ID        MemberID
	GroupID   GroupID
	Name      string
	Role      Role
	TokenUID  string // RFID kit token presented at the device
	DeviceUID string // dispenser identity, same value for the whole household
	TookToday int    // 0 or 1; reset to 0 once a day
	Age       int
}

// Medication is a medication definition scoped to one household.
// (ID, GroupID) is the composite key; the same medication id may exist in
// other households without any relation to this one.
type Medication struct {
	ID      MedicationID
	GroupID GroupID
	Name    string

	// Warning is the sticky low-stock flag. It is set by the inventory
	// ledger when a decrement lands at or below the threshold and cleared
	// only by an external refill.
	Warning bool

	// Optional validity window. Stored and surfaced; not consulted by the
	// schedule index.
	StartDate *time.Time
	EndDate   *time.Time

	// TargetMembers restricts which household members this medication
	// applies to. Nil or empty means every member of the household.
	TargetMembers []MemberID
}

// MachineSlot is the inventory record for one medication loaded into one
// physical slot of one device. (DeviceUID, MedicationID) is the composite
// key; GroupID scopes all lookups.
//
// INVARIANT: 0 <= Remaining <= Total.
type MachineSlot struct {
	DeviceUID    string
	MedicationID MedicationID
	GroupID      GroupID
	Slot         int // physical slot index, 1..MaxSlot
	MaxSlot      int
	Total        int
	Remaining    int
}

// ScheduleEntry is one planned dose: a medication, a dose quantity, and a
// (day-of-week, time-of-day) cell. MemberID may be empty for household-wide
// entries.
type ScheduleEntry struct {
	ID           string
	GroupID      GroupID
	MemberID     MemberID
	MedicationID MedicationID
	Day          DayOfWeek
	Slot         TimeOfDay // empty = no slot assigned
	Dose         int
	CreatedAt    time.Time
}

// =============================================================================
// DUE DOSE - Schedule entry enriched for display
// =============================================================================

// DueDose is a schedule entry joined with medication and member names.
// The names are display data owned by their entities; the join happens in
// the store, not by navigating object references.
type DueDose struct {
	ScheduleID     string
	GroupID        GroupID
	MemberID       MemberID
	MemberName     string
	MemberRole     Role
	MedicationID   MedicationID
	MedicationName string
	Dose           int
	Slot           TimeOfDay

	// Targets carries the medication's audience restriction so the
	// dispense-candidate path can filter without a second lookup.
	// Nil means the medication applies to everyone.
	Targets []MemberID
}
