/*
orchestrator.go - Device-facing dispense use cases

PURPOSE:
  Two top-level flows triggered by the dispenser hardware:

  1. DispenseCandidates: an RFID token was presented — which doses should
     the device release for the rest of today, for this member only?
  2. HandleDispenseResult: the device reports what it actually released —
     reconcile machine stock per item and return the accounting.

PARTIAL-FAILURE SEMANTICS:
  HandleDispenseResult is best-effort per item. One insufficient or
  unknown medication never aborts the remaining items. Items are
  processed strictly in input order with no parallel fan-out, so a later
  item's classification reflects the slot state after all earlier items
  of the same call. Unknown medications are logged and excluded from both
  result lists: that is device/firmware drift, not a system error.

SEE ALSO:
  - ledger.go: per-item decrement and warning derivation
  - schedule.go / audience.go: candidate resolution
  - api/handlers.go: HTTP boundary with timeout and error mapping
*/
package dispense

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DispenseOutcome is one (medication, dose) pair reported by the device.
type DispenseOutcome struct {
	MedicationID MedicationID
	Dose         int
}

// Candidate is one dose the device should dispense.
type Candidate struct {
	MedicationID   MedicationID
	MedicationName string
	Dose           int
	Slot           TimeOfDay
}

// DispenseReport is the aggregated result of one reported dispense run.
type DispenseReport struct {
	Status       string
	Processed    []string // medication names successfully decremented
	Insufficient []string // medication names (or ids) short on stock
	Message      string
}

// Orchestrator wires the clock, schedule index, audience filter, and
// inventory ledger into the device-facing flows.
type Orchestrator struct {
	members MemberStore
	index   *ScheduleIndex
	ledger  *InventoryLedger
	clock   Resolver
	logger  *zap.Logger
}

func NewOrchestrator(members MemberStore, index *ScheduleIndex, ledger *InventoryLedger, clock Resolver, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		members: members,
		index:   index,
		ledger:  ledger,
		clock:   clock,
		logger:  logger,
	}
}

// =============================================================================
// CANDIDATE RESOLUTION
// =============================================================================

// DispenseCandidates resolves which doses the device should release for
// the member holding the given RFID token: today's entries in the current
// and later slots, filtered by each medication's target audience.
func (o *Orchestrator) DispenseCandidates(ctx context.Context, tokenUID string) ([]Candidate, error) {
	member, err := o.members.GetMemberByTokenUID(ctx, tokenUID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token %q: %w", tokenUID, err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	day := o.clock.CurrentDayOfWeek()
	slots := o.clock.RemainingSlotsToday()

	doses, err := o.index.DueForMemberAcrossSlots(ctx, member.ID, day, slots)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule for member %s: %w", member.ID, err)
	}

	doses = FilterForMember(doses, member.ID)

	candidates := make([]Candidate, 0, len(doses))
	for _, d := range doses {
		candidates = append(candidates, Candidate{
			MedicationID:   d.MedicationID,
			MedicationName: d.MedicationName,
			Dose:           d.Dose,
			Slot:           d.Slot,
		})
	}
	return candidates, nil
}

// =============================================================================
// RESULT RECONCILIATION
// =============================================================================

// HandleDispenseResult applies each reported outcome to the inventory
// ledger in input order and aggregates the accounting.
func (o *Orchestrator) HandleDispenseResult(ctx context.Context, tokenUID string, outcomes []DispenseOutcome) (*DispenseReport, error) {
	member, err := o.members.GetMemberByTokenUID(ctx, tokenUID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token %q: %w", tokenUID, err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	processed := []string{}
	insufficient := []string{}

	for _, item := range outcomes {
		slot, err := o.ledger.LookupSlot(ctx, member.GroupID, item.MedicationID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up slot for %s: %w", item.MedicationID, err)
		}
		if slot == nil {
			// Device reported a medication the system has no record of.
			o.logger.Warn("unknown medication reported by device",
				zap.String("group_id", string(member.GroupID)),
				zap.String("medication_id", string(item.MedicationID)),
			)
			continue
		}

		name := o.medicationName(ctx, member.GroupID, item.MedicationID)

		_, err = o.ledger.ApplyDose(ctx, member.GroupID, item.MedicationID, item.Dose)
		switch {
		case err == nil:
			processed = append(processed, name)
		case errors.Is(err, ErrInsufficientStock):
			insufficient = append(insufficient, name)
		case errors.Is(err, ErrSlotNotFound):
			// Slot removed between lookup and decrement; treat like unknown.
			o.logger.Warn("slot vanished during dispense",
				zap.String("group_id", string(member.GroupID)),
				zap.String("medication_id", string(item.MedicationID)),
			)
		default:
			return nil, fmt.Errorf("failed to apply dose for %s: %w", item.MedicationID, err)
		}
	}

	message := fmt.Sprintf("%d medications dispensed", len(processed))
	if len(insufficient) > 0 {
		message += fmt.Sprintf(", %d insufficient", len(insufficient))
	}

	return &DispenseReport{
		Status:       "completed",
		Processed:    processed,
		Insufficient: insufficient,
		Message:      message,
	}, nil
}

// medicationName resolves a display name, falling back to the raw id when
// the definition is missing or unreadable.
func (o *Orchestrator) medicationName(ctx context.Context, groupID GroupID, id MedicationID) string {
	med, err := o.ledger.meds.GetMedication(ctx, groupID, id)
	if err != nil || med == nil {
		return string(id)
	}
	return med.Name
}
