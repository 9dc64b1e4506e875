/*
handlers.go - HTTP API handlers for the dispense engine

PURPOSE:
  Exposes the dispense engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the domain logic in the dispense
  package.

ENDPOINTS:
  Device:
    POST   /api/dispenser/verify-uid        Authenticate an RFID token
    POST   /api/dispenser/confirm           Confirm today's intake
    POST   /api/dispenser/dispense-list     Candidates for a token
    POST   /api/dispenser/dispense-result   Reconcile reported dispenses

  Household views:
    GET    /api/dispenser/medications/{groupID}       Medication list
    GET    /api/dispenser/schedules/group/{groupID}   Current-slot doses
    GET    /api/dispenser/schedules/member/{memberID} Current-slot doses
    GET    /api/dispenser/schedules/today/{deviceUID} Full-day overview
    GET    /api/dispenser/machine-status/{deviceUID}  Slot inventory
    GET    /api/dispenser/members/by-device/{deviceUID}
    GET    /api/dispenser/slots/status/{deviceUID}    Occupancy summary

  Admin:
    POST   /api/admin/reset-taken           Trigger the daily reset now

ERROR HANDLING:
  - 400: invalid request body or dose amounts
  - 404: unknown token, member, or device
  - 500: storage/unexpected failures; logged with context, the response
         carries a generic message only

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
  - ../dispense: the decision logic these handlers delegate to
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/carebox/dispense-engine/dispense"
)

// defaultMaxSlot mirrors the hardware default for devices that have never
// reported a slot count.
const defaultMaxSlot = 3

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        dispense.Store
	Index        *dispense.ScheduleIndex
	Ledger       *dispense.InventoryLedger
	Orchestrator *dispense.Orchestrator
	Clock        dispense.Resolver
	Logger       *zap.Logger

	// DispenseTimeout bounds one dispense-result invocation.
	DispenseTimeout time.Duration

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler wires the engine components over the given store.
func NewHandler(store dispense.Store, clock dispense.Resolver, log *zap.Logger, dispenseTimeout time.Duration) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if dispenseTimeout <= 0 {
		dispenseTimeout = 10 * time.Second
	}

	index := dispense.NewScheduleIndex(store)
	ledger := dispense.NewInventoryLedger(store, store, log)

	return &Handler{
		Store:           store,
		Index:           index,
		Ledger:          ledger,
		Orchestrator:    dispense.NewOrchestrator(store, index, ledger, clock, log),
		Clock:           clock,
		Logger:          log,
		DispenseTimeout: dispenseTimeout,
	}
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// VerifyUID authenticates an RFID token read at the device.
// Unregistered tokens get a pairing payload instead of an error.
func (h *Handler) VerifyUID(w http.ResponseWriter, r *http.Request) {
	var req VerifyUIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UID == "" {
		writeError(w, http.StatusBadRequest, "uid is required", nil)
		return
	}

	member, err := h.Store.GetMemberByTokenUID(r.Context(), req.UID)
	if err != nil {
		h.internalError(w, "token authentication failed", err)
		return
	}

	if member == nil {
		h.Logger.Info("unregistered token", zap.String("token_uid", req.UID))
		writeJSON(w, http.StatusOK, AuthResponse{
			Status: "unregistered",
			QRData: &PairingPayload{
				Type:      "register",
				TokenUID:  req.UID,
				PairingID: uuid.NewString(),
				CreatedAt: time.Now().UTC().Format(time.RFC3339),
			},
		})
		return
	}

	h.Logger.Info("token authenticated",
		zap.String("member_id", string(member.ID)),
		zap.String("role", string(member.Role)))

	dto := toMemberDTO(*member)
	writeJSON(w, http.StatusOK, AuthResponse{Status: "ok", Member: &dto})
}

// ConfirmIntake marks today's intake for the token's member. Idempotent
// per day: the second call reports already_confirmed and changes nothing.
func (h *Handler) ConfirmIntake(w http.ResponseWriter, r *http.Request) {
	var req VerifyUIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	member, err := h.Store.GetMemberByTokenUID(r.Context(), req.UID)
	if err != nil {
		h.internalError(w, "intake confirmation failed", err)
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "Unregistered token", nil)
		return
	}

	confirmed, err := h.Store.MarkTookToday(r.Context(), member.ID)
	if err != nil {
		h.internalError(w, "intake confirmation failed", err)
		return
	}

	if !confirmed {
		writeJSON(w, http.StatusOK, ConfirmResponse{
			Status:  "already_confirmed",
			Message: "Intake already confirmed today.",
		})
		return
	}

	h.Logger.Info("intake confirmed", zap.String("member_id", string(member.ID)))
	writeJSON(w, http.StatusOK, ConfirmResponse{
		Status:   "confirmed",
		MemberID: string(member.ID),
		Message:  "Intake confirmed.",
	})
}

// =============================================================================
// HOUSEHOLD VIEWS
// =============================================================================

// MedicationList returns the household's loaded medications with stock.
func (h *Handler) MedicationList(w http.ResponseWriter, r *http.Request) {
	groupID := dispense.GroupID(chi.URLParam(r, "groupID"))

	slots, err := h.Store.ListSlotsByGroup(r.Context(), groupID)
	if err != nil {
		h.internalError(w, "medication list failed", err)
		return
	}

	items := make([]MedicationItemDTO, 0, len(slots))
	for _, slot := range slots {
		item := MedicationItemDTO{
			MedicationID: string(slot.MedicationID),
			Remain:       slot.Remaining,
			Total:        slot.Total,
			Slot:         slot.Slot,
			DeviceUID:    slot.DeviceUID,
		}
		med, err := h.Store.GetMedication(r.Context(), groupID, slot.MedicationID)
		if err != nil {
			h.internalError(w, "medication list failed", err)
			return
		}
		if med != nil {
			item.Name = med.Name
			item.Warning = med.Warning
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, items)
}

// GroupSchedule returns the household's doses due at the current slot.
func (h *Handler) GroupSchedule(w http.ResponseWriter, r *http.Request) {
	groupID := dispense.GroupID(chi.URLParam(r, "groupID"))

	doses, err := h.Index.DueForGroup(r.Context(), groupID,
		h.Clock.CurrentDayOfWeek(), h.Clock.CurrentTimeOfDay())
	if err != nil {
		h.internalError(w, "schedule query failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toDueDoseDTOs(doses))
}

// MemberSchedule returns one member's doses due at the current slot.
func (h *Handler) MemberSchedule(w http.ResponseWriter, r *http.Request) {
	memberID := dispense.MemberID(chi.URLParam(r, "memberID"))

	doses, err := h.Index.DueForMember(r.Context(), memberID,
		h.Clock.CurrentDayOfWeek(), h.Clock.CurrentTimeOfDay())
	if err != nil {
		h.internalError(w, "schedule query failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toDueDoseDTOs(doses))
}

// TodayOverview returns the full-day grouped schedule for the household
// behind a device uid.
func (h *Handler) TodayOverview(w http.ResponseWriter, r *http.Request) {
	member, ok := h.memberByDevice(w, r)
	if !ok {
		return
	}

	day := h.Clock.CurrentDayOfWeek()
	groups, err := h.Index.DayOverview(r.Context(), member.GroupID, day)
	if err != nil {
		h.internalError(w, "schedule overview failed", err)
		return
	}

	overview := DayOverviewDTO{
		GroupID:   string(member.GroupID),
		DayOfWeek: string(day),
		Schedules: make([]SlotGroupDTO, 0, len(groups)),
	}
	for _, g := range groups {
		slotGroup := SlotGroupDTO{TimeOfDay: string(g.Slot)}
		for _, d := range g.Doses {
			slotGroup.Doses = append(slotGroup.Doses, OverviewDoseDTO{
				Member: MemberRefDTO{
					MemberID: string(d.MemberID),
					Name:     d.MemberName,
					Role:     string(d.MemberRole),
				},
				MedicationID:   string(d.MedicationID),
				MedicationName: d.MedicationName,
				Dose:           d.Dose,
			})
		}
		overview.Schedules = append(overview.Schedules, slotGroup)
	}

	writeJSON(w, http.StatusOK, overview)
}

// MembersByDevice lists the household sharing a device uid.
func (h *Handler) MembersByDevice(w http.ResponseWriter, r *http.Request) {
	member, ok := h.memberByDevice(w, r)
	if !ok {
		return
	}

	members, err := h.Store.ListMembersByGroup(r.Context(), member.GroupID)
	if err != nil {
		h.internalError(w, "member list failed", err)
		return
	}

	dtos := make([]MemberDTO, len(members))
	for i, m := range members {
		dtos[i] = toMemberDTO(m)
	}

	writeJSON(w, http.StatusOK, MembersByDeviceDTO{
		GroupID: string(member.GroupID),
		Members: dtos,
	})
}

// =============================================================================
// DISPENSE FLOWS
// =============================================================================

// DispenseList returns what the device should dispense for an RFID token:
// today's remaining-slot doses, filtered by target audience.
func (h *Handler) DispenseList(w http.ResponseWriter, r *http.Request) {
	var req DispenseListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	candidates, err := h.Orchestrator.DispenseCandidates(r.Context(), req.TokenUID)
	if err != nil {
		if errors.Is(err, dispense.ErrMemberNotFound) {
			writeError(w, http.StatusNotFound, "Unregistered token", nil)
			return
		}
		h.internalError(w, "dispense list failed", err)
		return
	}

	dtos := make([]CandidateDTO, len(candidates))
	for i, c := range candidates {
		dtos[i] = CandidateDTO{
			MedicationID:   string(c.MedicationID),
			MedicationName: c.MedicationName,
			Dose:           c.Dose,
			TimeOfDay:      string(c.Slot),
		}
	}

	writeJSON(w, http.StatusOK, dtos)
}

// DispenseResult reconciles the stock for a reported dispense run.
func (h *Handler) DispenseResult(w http.ResponseWriter, r *http.Request) {
	var req DispenseResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	outcomes := make([]dispense.DispenseOutcome, len(req.DispenseList))
	for i, item := range req.DispenseList {
		if item.Dose < 0 {
			writeError(w, http.StatusBadRequest, "Dose must not be negative", nil)
			return
		}
		outcomes[i] = dispense.DispenseOutcome{
			MedicationID: dispense.MedicationID(item.MedicationID),
			Dose:         item.Dose,
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.DispenseTimeout)
	defer cancel()

	report, err := h.Orchestrator.HandleDispenseResult(ctx, req.TokenUID, outcomes)
	if err != nil {
		if errors.Is(err, dispense.ErrMemberNotFound) {
			writeError(w, http.StatusNotFound, "Unregistered token", nil)
			return
		}
		h.internalError(w, "dispense result processing failed", err)
		return
	}

	writeJSON(w, http.StatusOK, DispenseReportDTO{
		Status:       report.Status,
		Processed:    report.Processed,
		Insufficient: report.Insufficient,
		Message:      report.Message,
	})
}

// =============================================================================
// DEVICE STATUS
// =============================================================================

// MachineStatus returns per-slot inventory for one dispenser.
func (h *Handler) MachineStatus(w http.ResponseWriter, r *http.Request) {
	member, ok := h.memberByDevice(w, r)
	if !ok {
		return
	}

	slots, err := h.Store.ListSlotsByGroup(r.Context(), member.GroupID)
	if err != nil {
		h.internalError(w, "machine status failed", err)
		return
	}

	status := MachineStatusDTO{
		DeviceUID: chi.URLParam(r, "deviceUID"),
		GroupID:   string(member.GroupID),
		Slots:     make([]SlotStatusItemDTO, 0, len(slots)),
	}
	for _, slot := range slots {
		item := SlotStatusItemDTO{
			Slot:         slot.Slot,
			Remain:       slot.Remaining,
			Total:        slot.Total,
			MedicationID: string(slot.MedicationID),
			UsageRate:    usageRatePercent(slot.Total, slot.Remaining),
		}
		med, err := h.Store.GetMedication(r.Context(), member.GroupID, slot.MedicationID)
		if err != nil {
			h.internalError(w, "machine status failed", err)
			return
		}
		if med != nil {
			item.Name = med.Name
			item.Warning = med.Warning
		}
		status.Slots = append(status.Slots, item)
	}

	writeJSON(w, http.StatusOK, status)
}

// SlotStatus returns the occupancy summary 1..max_slot for one dispenser.
func (h *Handler) SlotStatus(w http.ResponseWriter, r *http.Request) {
	member, ok := h.memberByDevice(w, r)
	if !ok {
		return
	}

	slots, err := h.Store.ListSlotsByGroup(r.Context(), member.GroupID)
	if err != nil {
		h.internalError(w, "slot status failed", err)
		return
	}

	maxSlot := defaultMaxSlot
	if len(slots) > 0 && slots[0].MaxSlot > 0 {
		maxSlot = slots[0].MaxSlot
	}

	bySlot := make(map[int]dispense.MachineSlot, len(slots))
	for _, slot := range slots {
		bySlot[slot.Slot] = slot
	}

	status := SlotStatusDTO{
		DeviceUID:     chi.URLParam(r, "deviceUID"),
		MaxSlot:       maxSlot,
		OccupiedSlots: len(slots),
		Slots:         make([]SlotOccupancyDTO, 0, maxSlot),
	}

	for i := 1; i <= maxSlot; i++ {
		occ := SlotOccupancyDTO{Slot: i}
		if slot, ok := bySlot[i]; ok {
			occ.Occupied = true
			medDTO := &SlotMedicationDTO{
				MedicationID: string(slot.MedicationID),
				Remain:       slot.Remaining,
				Total:        slot.Total,
			}
			med, err := h.Store.GetMedication(r.Context(), member.GroupID, slot.MedicationID)
			if err != nil {
				h.internalError(w, "slot status failed", err)
				return
			}
			if med != nil {
				medDTO.Name = med.Name
				medDTO.Warning = med.Warning
			}
			occ.Medication = medDTO
		}
		status.Slots = append(status.Slots, occ)
	}

	writeJSON(w, http.StatusOK, status)
}

// =============================================================================
// ADMIN
// =============================================================================

// ResetTaken triggers the daily taken-today reset immediately.
func (h *Handler) ResetTaken(w http.ResponseWriter, r *http.Request) {
	n, err := h.Store.ResetTookToday(r.Context())
	if err != nil {
		h.internalError(w, "taken-today reset failed", err)
		return
	}

	h.Logger.Info("taken-today reset via admin endpoint", zap.Int64("members", n))
	writeJSON(w, http.StatusOK, ResetTakenResponse{Status: "completed", MembersReset: n})
}

// =============================================================================
// HELPERS
// =============================================================================

// memberByDevice resolves the {deviceUID} route param to a household
// member, writing the 404/500 response itself on failure.
func (h *Handler) memberByDevice(w http.ResponseWriter, r *http.Request) (*dispense.Member, bool) {
	deviceUID := chi.URLParam(r, "deviceUID")

	member, err := h.Store.GetMemberByDeviceUID(r.Context(), deviceUID)
	if err != nil {
		h.internalError(w, "device lookup failed", err)
		return nil, false
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "No member linked to this device", nil)
		return nil, false
	}
	return member, true
}

// usageRatePercent is (total-remain)/total as a rounded percentage.
// Decimal arithmetic keeps the rounding exact; zero capacity reads 0.
func usageRatePercent(total, remain int) int {
	if total <= 0 {
		return 0
	}
	used := decimal.NewFromInt(int64(total - remain))
	rate := used.Div(decimal.NewFromInt(int64(total))).Mul(decimal.NewFromInt(100))
	return int(rate.Round(0).IntPart())
}

func toDueDoseDTOs(doses []dispense.DueDose) []DueDoseDTO {
	dtos := make([]DueDoseDTO, len(doses))
	for i, d := range doses {
		dtos[i] = toDueDoseDTO(d)
	}
	return dtos
}

// internalError logs the full failure and answers with a generic message;
// internal detail never reaches the caller.
func (h *Handler) internalError(w http.ResponseWriter, context string, err error) {
	h.Logger.Error(context, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal error", nil)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
