/*
store.go - Persistence interfaces for the dispense engine

PURPOSE:
  Defines the boundary between the decision logic and durable storage.
  Implementations: store/sqlite (production) and dispense/store (memory,
  for tests and dev).

LOOKUP CONVENTION:
  Point lookups return (nil, nil) when no record matches. The caller
  decides whether absence is a domain error (ErrMemberNotFound) or a
  non-fatal anomaly (unknown medication reported by a device).

TENANT SCOPING:
  Every medication and slot operation takes the GroupID explicitly.
  There is deliberately no way to look up a slot by medication id alone,
  which rules out cross-household leakage by construction.

CONDITIONAL UPDATES:
  DecrementRemaining and MarkTookToday are conditional at the storage
  level (compare-and-swap semantics), not guarded by in-process locks,
  so multiple process instances stay safe.

SEE ALSO:
  - store/sqlite/sqlite.go: SQLite implementation
  - dispense/store/memory.go: in-memory implementation
*/
package dispense

import "context"

// =============================================================================
// MEMBER STORE
// =============================================================================

// MemberStore persists household members and their daily intake marker.
type MemberStore interface {
	// GetMemberByTokenUID resolves an RFID kit token to its member.
	GetMemberByTokenUID(ctx context.Context, tokenUID string) (*Member, error)

	// GetMemberByDeviceUID resolves a dispenser uid to one of the members
	// sharing it. All members of a household carry the same device uid.
	GetMemberByDeviceUID(ctx context.Context, deviceUID string) (*Member, error)

	GetMember(ctx context.Context, id MemberID) (*Member, error)

	// ListMembersByGroup returns the household roster, role ascending then
	// member id ascending.
	ListMembersByGroup(ctx context.Context, groupID GroupID) ([]Member, error)

	SaveMember(ctx context.Context, m Member) error

	// MarkTookToday sets the taken-today marker to 1 if it is currently 0.
	// Returns true when this call performed the transition, false when the
	// marker was already set. Conditional at the storage level so two
	// racing confirmations resolve to exactly one.
	MarkTookToday(ctx context.Context, id MemberID) (bool, error)

	// ResetTookToday zeroes the marker for every member in one bulk
	// operation and returns the number of rows touched.
	ResetTookToday(ctx context.Context) (int64, error)
}

// =============================================================================
// MEDICATION STORE
// =============================================================================

// MedicationStore persists per-household medication definitions.
type MedicationStore interface {
	GetMedication(ctx context.Context, groupID GroupID, id MedicationID) (*Medication, error)

	SaveMedication(ctx context.Context, m Medication) error

	// SetWarning sets the sticky low-stock flag. Returns true when the flag
	// transitioned false->true, false when it was already set. The flag is
	// never cleared here; only an external refill clears it.
	SetWarning(ctx context.Context, groupID GroupID, id MedicationID) (bool, error)
}

// =============================================================================
// SLOT STORE
// =============================================================================

// SlotStore persists machine inventory slots.
type SlotStore interface {
	GetSlot(ctx context.Context, groupID GroupID, id MedicationID) (*MachineSlot, error)

	// ListSlotsByGroup returns the household's slots, physical slot index
	// ascending.
	ListSlotsByGroup(ctx context.Context, groupID GroupID) ([]MachineSlot, error)

	SaveSlot(ctx context.Context, s MachineSlot) error

	// DecrementRemaining atomically applies `remaining -= dose` iff
	// remaining >= dose, and returns the new remaining count.
	// Returns ErrSlotNotFound when no slot matches, or an
	// *InsufficientStockError (leaving the slot untouched) when the dose
	// exceeds remaining stock. The read-compare-decrement cycle is a single
	// conditional update with respect to concurrent callers.
	DecrementRemaining(ctx context.Context, groupID GroupID, id MedicationID, dose int) (int, error)
}

// =============================================================================
// SCHEDULE STORE
// =============================================================================

// ScheduleStore persists schedule entries and serves enriched due-dose
// lookups. Results are joined with medication and member names and carry
// the medication's target-audience list; no ordering is guaranteed here —
// the schedule index sorts.
type ScheduleStore interface {
	SaveScheduleEntry(ctx context.Context, e ScheduleEntry) error

	// FindDueForGroup returns entries for a household matching the day and
	// any of the given slots.
	FindDueForGroup(ctx context.Context, groupID GroupID, day DayOfWeek, slots []TimeOfDay) ([]DueDose, error)

	// FindDueForMember returns entries for a single member matching the day
	// and any of the given slots.
	FindDueForMember(ctx context.Context, memberID MemberID, day DayOfWeek, slots []TimeOfDay) ([]DueDose, error)

	// FindByGroupDay returns all of a household's entries for a day,
	// regardless of slot.
	FindByGroupDay(ctx context.Context, groupID GroupID, day DayOfWeek) ([]DueDose, error)
}

// =============================================================================
// COMBINED STORE
// =============================================================================

// Store is the full persistence boundary the engine and HTTP layer use.
type Store interface {
	MemberStore
	MedicationStore
	SlotStore
	ScheduleStore

	// Reset clears all data. Dev/demo scenarios only.
	Reset(ctx context.Context) error
}
