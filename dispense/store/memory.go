// Package store provides an in-memory dispense.Store implementation
// for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/carebox/dispense-engine/dispense"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	members   map[dispense.MemberID]dispense.Member
	meds      map[medKey]dispense.Medication
	slots     map[medKey]dispense.MachineSlot
	schedules map[string]dispense.ScheduleEntry
}

type medKey struct {
	GroupID      dispense.GroupID
	MedicationID dispense.MedicationID
}

func NewMemory() *Memory {
	m := &Memory{}
	m.reset()
	return m
}

func (m *Memory) reset() {
	m.members = make(map[dispense.MemberID]dispense.Member)
	m.meds = make(map[medKey]dispense.Medication)
	m.slots = make(map[medKey]dispense.MachineSlot)
	m.schedules = make(map[string]dispense.ScheduleEntry)
}

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return nil
}

// =============================================================================
// MEMBERS
// =============================================================================

func (m *Memory) GetMemberByTokenUID(_ context.Context, tokenUID string) (*dispense.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mem := range m.members {
		if mem.TokenUID == tokenUID {
			out := mem
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetMemberByDeviceUID(_ context.Context, deviceUID string) (*dispense.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Any member sharing the device uid identifies the household; pick the
	// lowest member id for determinism.
	var found *dispense.Member
	for _, mem := range m.members {
		if mem.DeviceUID != deviceUID {
			continue
		}
		if found == nil || mem.ID < found.ID {
			out := mem
			found = &out
		}
	}
	return found, nil
}

func (m *Memory) GetMember(_ context.Context, id dispense.MemberID) (*dispense.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mem, ok := m.members[id]; ok {
		out := mem
		return &out, nil
	}
	return nil, nil
}

func (m *Memory) ListMembersByGroup(_ context.Context, groupID dispense.GroupID) ([]dispense.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []dispense.Member
	for _, mem := range m.members {
		if mem.GroupID == groupID {
			out = append(out, mem)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) SaveMember(_ context.Context, mem dispense.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[mem.ID] = mem
	return nil
}

func (m *Memory) MarkTookToday(_ context.Context, id dispense.MemberID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[id]
	if !ok {
		return false, dispense.ErrMemberNotFound
	}
	if mem.TookToday == 1 {
		return false, nil
	}
	mem.TookToday = 1
	m.members[id] = mem
	return true, nil
}

func (m *Memory) ResetTookToday(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, mem := range m.members {
		mem.TookToday = 0
		m.members[id] = mem
		n++
	}
	return n, nil
}

// =============================================================================
// MEDICATIONS
// =============================================================================

func (m *Memory) GetMedication(_ context.Context, groupID dispense.GroupID, id dispense.MedicationID) (*dispense.Medication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if med, ok := m.meds[medKey{groupID, id}]; ok {
		out := med
		return &out, nil
	}
	return nil, nil
}

func (m *Memory) SaveMedication(_ context.Context, med dispense.Medication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meds[medKey{med.GroupID, med.ID}] = med
	return nil
}

func (m *Memory) SetWarning(_ context.Context, groupID dispense.GroupID, id dispense.MedicationID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := medKey{groupID, id}
	med, ok := m.meds[k]
	if !ok {
		return false, dispense.ErrMedicationNotFound
	}
	if med.Warning {
		return false, nil
	}
	med.Warning = true
	m.meds[k] = med
	return true, nil
}

// =============================================================================
// SLOTS
// =============================================================================

func (m *Memory) GetSlot(_ context.Context, groupID dispense.GroupID, id dispense.MedicationID) (*dispense.MachineSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.slots[medKey{groupID, id}]; ok {
		out := s
		return &out, nil
	}
	return nil, nil
}

func (m *Memory) ListSlotsByGroup(_ context.Context, groupID dispense.GroupID) ([]dispense.MachineSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []dispense.MachineSlot
	for _, s := range m.slots {
		if s.GroupID == groupID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (m *Memory) SaveSlot(_ context.Context, s dispense.MachineSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[medKey{s.GroupID, s.MedicationID}] = s
	return nil
}

// DecrementRemaining applies the compare-and-decrement under the store
// lock, mirroring the conditional UPDATE the SQLite store issues.
func (m *Memory) DecrementRemaining(_ context.Context, groupID dispense.GroupID, id dispense.MedicationID, dose int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := medKey{groupID, id}
	s, ok := m.slots[k]
	if !ok {
		return 0, dispense.ErrSlotNotFound
	}
	if s.Remaining < dose {
		return 0, &dispense.InsufficientStockError{
			GroupID:      groupID,
			MedicationID: id,
			Remaining:    s.Remaining,
			Requested:    dose,
		}
	}
	s.Remaining -= dose
	m.slots[k] = s
	return s.Remaining, nil
}

// =============================================================================
// SCHEDULES
// =============================================================================

func (m *Memory) SaveScheduleEntry(_ context.Context, e dispense.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[e.ID] = e
	return nil
}

func (m *Memory) FindDueForGroup(_ context.Context, groupID dispense.GroupID, day dispense.DayOfWeek, slots []dispense.TimeOfDay) ([]dispense.DueDose, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(e dispense.ScheduleEntry) bool {
		return e.GroupID == groupID && e.Day == day && slotMatch(e.Slot, slots)
	}), nil
}

func (m *Memory) FindDueForMember(_ context.Context, memberID dispense.MemberID, day dispense.DayOfWeek, slots []dispense.TimeOfDay) ([]dispense.DueDose, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(e dispense.ScheduleEntry) bool {
		return e.MemberID == memberID && e.Day == day && slotMatch(e.Slot, slots)
	}), nil
}

func (m *Memory) FindByGroupDay(_ context.Context, groupID dispense.GroupID, day dispense.DayOfWeek) ([]dispense.DueDose, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(e dispense.ScheduleEntry) bool {
		return e.GroupID == groupID && e.Day == day
	}), nil
}

// collect materializes matching entries as DueDose, joining names and
// audience from the member and medication tables. Caller holds the lock.
func (m *Memory) collect(match func(dispense.ScheduleEntry) bool) []dispense.DueDose {
	out := []dispense.DueDose{}
	for _, e := range m.schedules {
		if !match(e) {
			continue
		}
		d := dispense.DueDose{
			ScheduleID:   e.ID,
			GroupID:      e.GroupID,
			MemberID:     e.MemberID,
			MedicationID: e.MedicationID,
			Dose:         e.Dose,
			Slot:         e.Slot,
		}
		if mem, ok := m.members[e.MemberID]; ok {
			d.MemberName = mem.Name
			d.MemberRole = mem.Role
		}
		if med, ok := m.meds[medKey{e.GroupID, e.MedicationID}]; ok {
			d.MedicationName = med.Name
			d.Targets = med.TargetMembers
		}
		out = append(out, d)
	}
	return out
}

func slotMatch(s dispense.TimeOfDay, slots []dispense.TimeOfDay) bool {
	for _, candidate := range slots {
		if s == candidate {
			return true
		}
	}
	return false
}
