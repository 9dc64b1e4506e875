/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	household data for testing and demos. Each scenario creates members,
	medications, machine slots, and schedule entries that demonstrate
	specific dispensing behaviors.

AVAILABLE SCENARIOS:

	family-household:    Two-parent, one-child household with a full week
	                     of schedules across all three time slots
	low-stock:           Remaining stock close to the warning threshold so
	                     the next dispense raises the low-stock flag
	restricted-audience: Medication targeted at a subset of members

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create members with RFID token and device pairings
 3. Register medications and machine slots
 4. Add schedule entries for every relevant day/slot

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "family-household"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, h)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: dispensing endpoints exercised by the scenarios
  - dispense/types.go: entity definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/carebox/dispense-engine/dispense"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "family-household",
		Name:        "Family Household",
		Description: "Two parents and a child sharing one dispenser, full weekly schedule",
		Category:    "household",
	},
	{
		ID:          "low-stock",
		Name:        "Low Stock",
		Description: "Slot stocked just above the warning threshold; the next dispense trips it",
		Category:    "inventory",
	},
	{
		ID:          "restricted-audience",
		Name:        "Restricted Audience",
		Description: "Medication limited to specific members via target lists",
		Category:    "household",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	// Find the scenario details
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = "" // Clear current scenario on reset

	var err error
	switch req.ScenarioID {
	case "family-household":
		err = h.loadFamilyHouseholdScenario(ctx)
	case "low-stock":
		err = h.loadLowStockScenario(ctx)
	case "restricted-audience":
		err = h.loadRestrictedAudienceScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	// Track the loaded scenario
	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data without loading a scenario.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFamilyHouseholdScenario(ctx context.Context) error {
	const group = dispense.GroupID("grp-miller")
	const device = "device-kitchen-01"

	members := []dispense.Member{
		{ID: "mem-anna", GroupID: group, Name: "Anna Miller", Role: dispense.RoleParent,
			TokenUID: "04A1B2C3D4", DeviceUID: device, Age: 41},
		{ID: "mem-ben", GroupID: group, Name: "Ben Miller", Role: dispense.RoleParent,
			TokenUID: "04E5F6A7B8", DeviceUID: device, Age: 43},
		{ID: "mem-lena", GroupID: group, Name: "Lena Miller", Role: dispense.RoleChild,
			TokenUID: "04C9D0E1F2", DeviceUID: device, Age: 9},
	}
	for _, m := range members {
		if err := h.Store.SaveMember(ctx, m); err != nil {
			return err
		}
	}

	start := time.Now().AddDate(0, -1, 0)
	end := time.Now().AddDate(0, 2, 0)
	medications := []dispense.Medication{
		{ID: "med-vitamin-d", GroupID: group, Name: "Vitamin D3", StartDate: &start, EndDate: &end},
		{ID: "med-omega", GroupID: group, Name: "Omega-3", StartDate: &start, EndDate: &end},
		{ID: "med-allergy", GroupID: group, Name: "Cetirizine", StartDate: &start, EndDate: &end},
	}
	for _, med := range medications {
		if err := h.Store.SaveMedication(ctx, med); err != nil {
			return err
		}
	}

	slots := []dispense.MachineSlot{
		{DeviceUID: device, MedicationID: "med-vitamin-d", GroupID: group, Slot: 1, MaxSlot: 3, Total: 60, Remaining: 48},
		{DeviceUID: device, MedicationID: "med-omega", GroupID: group, Slot: 2, MaxSlot: 3, Total: 90, Remaining: 71},
		{DeviceUID: device, MedicationID: "med-allergy", GroupID: group, Slot: 3, MaxSlot: 3, Total: 30, Remaining: 22},
	}
	for _, s := range slots {
		if err := h.Store.SaveSlot(ctx, s); err != nil {
			return err
		}
	}

	// Weekly schedule: vitamin D every morning for everyone, omega-3 in the
	// evening for the parents, allergy medication morning and evening for Lena.
	allDays := []dispense.DayOfWeek{
		dispense.Monday, dispense.Tuesday, dispense.Wednesday, dispense.Thursday,
		dispense.Friday, dispense.Saturday, dispense.Sunday,
	}
	for _, day := range allDays {
		for _, m := range members {
			if err := h.saveScheduleEntry(ctx, group, m.ID, "med-vitamin-d", day, dispense.Morning, 1); err != nil {
				return err
			}
		}
		for _, parent := range []dispense.MemberID{"mem-anna", "mem-ben"} {
			if err := h.saveScheduleEntry(ctx, group, parent, "med-omega", day, dispense.Evening, 2); err != nil {
				return err
			}
		}
		if err := h.saveScheduleEntry(ctx, group, "mem-lena", "med-allergy", day, dispense.Morning, 1); err != nil {
			return err
		}
		if err := h.saveScheduleEntry(ctx, group, "mem-lena", "med-allergy", day, dispense.Evening, 1); err != nil {
			return err
		}
	}

	return nil
}

func (h *Handler) loadLowStockScenario(ctx context.Context) error {
	const group = dispense.GroupID("grp-solo")
	const device = "device-bedside-01"

	member := dispense.Member{
		ID: "mem-otto", GroupID: group, Name: "Otto Keller", Role: dispense.RoleParent,
		TokenUID: "04DEADBEEF", DeviceUID: device, Age: 67,
	}
	if err := h.Store.SaveMember(ctx, member); err != nil {
		return err
	}

	med := dispense.Medication{ID: "med-bp", GroupID: group, Name: "Lisinopril"}
	if err := h.Store.SaveMedication(ctx, med); err != nil {
		return err
	}

	// Remaining sits one dose of 2 above the warning threshold: dispensing
	// the evening dose drops it to 4 and raises the sticky warning.
	slot := dispense.MachineSlot{
		DeviceUID: device, MedicationID: "med-bp", GroupID: group,
		Slot: 1, MaxSlot: 3, Total: 30, Remaining: 6,
	}
	if err := h.Store.SaveSlot(ctx, slot); err != nil {
		return err
	}

	for _, day := range []dispense.DayOfWeek{
		dispense.Monday, dispense.Tuesday, dispense.Wednesday, dispense.Thursday,
		dispense.Friday, dispense.Saturday, dispense.Sunday,
	} {
		if err := h.saveScheduleEntry(ctx, group, member.ID, "med-bp", day, dispense.Evening, 2); err != nil {
			return err
		}
	}

	return nil
}

func (h *Handler) loadRestrictedAudienceScenario(ctx context.Context) error {
	const group = dispense.GroupID("grp-nguyen")
	const device = "device-kitchen-02"

	members := []dispense.Member{
		{ID: "mem-mai", GroupID: group, Name: "Mai Nguyen", Role: dispense.RoleParent,
			TokenUID: "04AA11BB22", DeviceUID: device, Age: 38},
		{ID: "mem-kim", GroupID: group, Name: "Kim Nguyen", Role: dispense.RoleChild,
			TokenUID: "04CC33DD44", DeviceUID: device, Age: 12},
	}
	for _, m := range members {
		if err := h.Store.SaveMember(ctx, m); err != nil {
			return err
		}
	}

	// Iron supplement is restricted to Mai; the multivitamin has no target
	// list and is dispensable for anyone scheduled.
	medications := []dispense.Medication{
		{ID: "med-iron", GroupID: group, Name: "Iron Supplement",
			TargetMembers: []dispense.MemberID{"mem-mai"}},
		{ID: "med-multi", GroupID: group, Name: "Multivitamin"},
	}
	for _, med := range medications {
		if err := h.Store.SaveMedication(ctx, med); err != nil {
			return err
		}
	}

	slots := []dispense.MachineSlot{
		{DeviceUID: device, MedicationID: "med-iron", GroupID: group, Slot: 1, MaxSlot: 3, Total: 60, Remaining: 55},
		{DeviceUID: device, MedicationID: "med-multi", GroupID: group, Slot: 2, MaxSlot: 3, Total: 100, Remaining: 80},
	}
	for _, s := range slots {
		if err := h.Store.SaveSlot(ctx, s); err != nil {
			return err
		}
	}

	for _, day := range []dispense.DayOfWeek{
		dispense.Monday, dispense.Tuesday, dispense.Wednesday, dispense.Thursday,
		dispense.Friday, dispense.Saturday, dispense.Sunday,
	} {
		// Both members carry a morning schedule for the iron supplement, but
		// the target list keeps it off Kim's dispense list.
		for _, m := range members {
			if err := h.saveScheduleEntry(ctx, group, m.ID, "med-iron", day, dispense.Morning, 1); err != nil {
				return err
			}
			if err := h.saveScheduleEntry(ctx, group, m.ID, "med-multi", day, dispense.Morning, 1); err != nil {
				return err
			}
		}
	}

	return nil
}

func (h *Handler) saveScheduleEntry(ctx context.Context, group dispense.GroupID, member dispense.MemberID, med dispense.MedicationID, day dispense.DayOfWeek, slot dispense.TimeOfDay, dose int) error {
	return h.Store.SaveScheduleEntry(ctx, dispense.ScheduleEntry{
		ID:           uuid.NewString(),
		GroupID:      group,
		MemberID:     member,
		MedicationID: med,
		Day:          day,
		Slot:         slot,
		Dose:         dose,
		CreatedAt:    time.Now().UTC(),
	})
}
