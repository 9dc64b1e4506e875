/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import "github.com/carebox/dispense-engine/dispense"

// =============================================================================
// AUTHENTICATION
// =============================================================================

// MemberDTO represents a household member in API responses.
type MemberDTO struct {
	MemberID  string `json:"member_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	GroupID   string `json:"group_id"`
	TokenUID  string `json:"token_uid,omitempty"`
	TookToday int    `json:"took_today"`
	Age       int    `json:"age,omitempty"`
}

// VerifyUIDRequest carries an RFID token uid read at the device.
type VerifyUIDRequest struct {
	UID string `json:"uid"`
}

// PairingPayload is the QR payload shown for an unregistered token.
type PairingPayload struct {
	Type      string `json:"type"`
	TokenUID  string `json:"k_uid"`
	PairingID string `json:"pairing_id"`
	CreatedAt string `json:"created_at"`
}

// AuthResponse is the result of token authentication.
type AuthResponse struct {
	Status  string          `json:"status"` // "ok" or "unregistered"
	Member  *MemberDTO      `json:"member,omitempty"`
	QRData  *PairingPayload `json:"qr_data,omitempty"`
}

// ConfirmResponse is the result of an intake confirmation.
type ConfirmResponse struct {
	Status   string `json:"status"` // "confirmed" or "already_confirmed"
	MemberID string `json:"member_id,omitempty"`
	Message  string `json:"message"`
}

// =============================================================================
// MEDICATIONS AND SCHEDULES
// =============================================================================

// MedicationItemDTO is one row of the household medication list.
type MedicationItemDTO struct {
	MedicationID string `json:"medication_id"`
	Name         string `json:"name"`
	Remain       int    `json:"remain"`
	Total        int    `json:"total"`
	Slot         int    `json:"slot"`
	Warning      bool   `json:"warning"`
	DeviceUID    string `json:"device_uid"`
}

// DueDoseDTO is one due dose for schedule views.
type DueDoseDTO struct {
	ScheduleID     string `json:"schedule_id"`
	MedicationID   string `json:"medication_id"`
	MedicationName string `json:"medication_name"`
	Dose           int    `json:"dose"`
	TimeOfDay      string `json:"time_of_day"`
	MemberID       string `json:"member_id"`
	MemberName     string `json:"member_name"`
}

// OverviewDoseDTO is one dose inside the full-day overview.
type OverviewDoseDTO struct {
	Member         MemberRefDTO `json:"member"`
	MedicationID   string       `json:"medication_id"`
	MedicationName string       `json:"medication_name"`
	Dose           int          `json:"dose"`
}

// MemberRefDTO is a compact member reference.
type MemberRefDTO struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// SlotGroupDTO is one time-of-day bucket of the full-day overview.
type SlotGroupDTO struct {
	TimeOfDay string            `json:"time_of_day"`
	Doses     []OverviewDoseDTO `json:"doses"`
}

// DayOverviewDTO is the full-day grouped schedule for a household.
type DayOverviewDTO struct {
	GroupID   string         `json:"group_id"`
	DayOfWeek string         `json:"day_of_week"`
	Schedules []SlotGroupDTO `json:"schedules"`
}

// =============================================================================
// DISPENSE FLOWS
// =============================================================================

// DispenseListRequest asks what the device should dispense for a token.
type DispenseListRequest struct {
	TokenUID string `json:"k_uid"`
}

// CandidateDTO is one dose the device should dispense.
type CandidateDTO struct {
	MedicationID   string `json:"medication_id"`
	MedicationName string `json:"medication_name"`
	Dose           int    `json:"dose"`
	TimeOfDay      string `json:"time_of_day"`
}

// DispenseItemDTO is one (medication, dose) outcome reported by the device.
type DispenseItemDTO struct {
	MedicationID string `json:"medication_id"`
	Dose         int    `json:"dose"`
}

// DispenseResultRequest reports what the device actually released.
type DispenseResultRequest struct {
	TokenUID     string            `json:"k_uid"`
	DispenseList []DispenseItemDTO `json:"dispense_list"`
}

// DispenseReportDTO is the aggregated dispense accounting.
type DispenseReportDTO struct {
	Status       string   `json:"status"`
	Processed    []string `json:"processed"`
	Insufficient []string `json:"insufficient"`
	Message      string   `json:"message"`
}

// =============================================================================
// DEVICE STATUS
// =============================================================================

// SlotStatusItemDTO is one slot of the machine status view.
type SlotStatusItemDTO struct {
	Slot         int    `json:"slot"`
	Remain       int    `json:"remain"`
	Total        int    `json:"total"`
	MedicationID string `json:"medication_id"`
	Name         string `json:"name"`
	Warning      bool   `json:"warning"`
	UsageRate    int    `json:"usage_rate"`
}

// MachineStatusDTO is the per-slot status of one dispenser.
type MachineStatusDTO struct {
	DeviceUID string              `json:"device_uid"`
	GroupID   string              `json:"group_id"`
	Slots     []SlotStatusItemDTO `json:"slots"`
}

// MembersByDeviceDTO lists the household behind a device uid.
type MembersByDeviceDTO struct {
	GroupID string      `json:"group_id"`
	Members []MemberDTO `json:"members"`
}

// SlotMedicationDTO describes the medication loaded in an occupied slot.
type SlotMedicationDTO struct {
	MedicationID string `json:"medication_id"`
	Name         string `json:"name"`
	Remain       int    `json:"remain"`
	Total        int    `json:"total"`
	Warning      bool   `json:"warning"`
}

// SlotOccupancyDTO is one physical slot in the occupancy summary.
type SlotOccupancyDTO struct {
	Slot       int                `json:"slot"`
	Occupied   bool               `json:"occupied"`
	Medication *SlotMedicationDTO `json:"medication"`
}

// SlotStatusDTO is the occupancy summary for one dispenser.
type SlotStatusDTO struct {
	DeviceUID     string             `json:"device_uid"`
	MaxSlot       int                `json:"max_slot"`
	OccupiedSlots int                `json:"occupied_slots"`
	Slots         []SlotOccupancyDTO `json:"slots"`
}

// =============================================================================
// ADMIN AND SCENARIOS
// =============================================================================

// ResetTakenResponse reports a daily-reset run triggered via the API.
type ResetTakenResponse struct {
	Status       string `json:"status"`
	MembersReset int64  `json:"members_reset"`
}

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toMemberDTO(m dispense.Member) MemberDTO {
	return MemberDTO{
		MemberID:  string(m.ID),
		Name:      m.Name,
		Role:      string(m.Role),
		GroupID:   string(m.GroupID),
		TokenUID:  m.TokenUID,
		TookToday: m.TookToday,
		Age:       m.Age,
	}
}

func toDueDoseDTO(d dispense.DueDose) DueDoseDTO {
	return DueDoseDTO{
		ScheduleID:     d.ScheduleID,
		MedicationID:   string(d.MedicationID),
		MedicationName: d.MedicationName,
		Dose:           d.Dose,
		TimeOfDay:      string(d.Slot),
		MemberID:       string(d.MemberID),
		MemberName:     d.MemberName,
	}
}
