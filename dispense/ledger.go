/*
ledger.go - Machine inventory ledger

PURPOSE:
  Tracks per-(household, medication) stock in the dispenser and applies
  post-dispense decrements. This is the one place with a real invariant
  to protect under concurrency: Remaining must never go negative, even
  with two devices or retries racing on the same slot.

HOW THE INVARIANT IS PROTECTED:
  The read-compare-decrement cycle is pushed down into the store as a
  single conditional update (SlotStore.DecrementRemaining). The ledger
  never reads a count, compares it in memory, and writes it back.

LOW-STOCK WARNING:
  A decrement landing at Remaining <= 5 sets the medication's warning
  flag. The flag is sticky: setting it when already set is a no-op, and
  nothing in this engine ever clears it. Clearing happens only through an
  external refill operation.

SEE ALSO:
  - store.go: DecrementRemaining contract
  - orchestrator.go: per-item accounting during a dispense run
*/
package dispense

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// LowStockThreshold is the remaining count at or below which a
// medication's warning flag is raised.
const LowStockThreshold = 5

// ApplyResult reports the outcome of a successful decrement.
type ApplyResult struct {
	// Remaining is the slot's count after the decrement.
	Remaining int

	// WarningRaised is true when this decrement transitioned the
	// medication's warning flag from false to true. A decrement that lands
	// at or below the threshold while the flag is already set reports
	// false here.
	WarningRaised bool
}

// InventoryLedger applies dose decrements and derives low-stock warnings.
type InventoryLedger struct {
	slots  SlotStore
	meds   MedicationStore
	logger *zap.Logger
}

func NewInventoryLedger(slots SlotStore, meds MedicationStore, logger *zap.Logger) *InventoryLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryLedger{slots: slots, meds: meds, logger: logger}
}

// LookupSlot returns the slot for a (household, medication) key, or
// (nil, nil) when the device holds no such medication.
func (l *InventoryLedger) LookupSlot(ctx context.Context, groupID GroupID, id MedicationID) (*MachineSlot, error) {
	return l.slots.GetSlot(ctx, groupID, id)
}

// ApplyDose decrements a slot by one dispensed dose.
//
// Outcomes:
//   - dose < 0: ErrInvalidDose
//   - dose exceeds remaining: *InsufficientStockError, slot untouched
//   - no slot for the key: ErrSlotNotFound
//   - otherwise: slot persisted with the new count; warning flag raised
//     when the count lands at or below LowStockThreshold
func (l *InventoryLedger) ApplyDose(ctx context.Context, groupID GroupID, id MedicationID, dose int) (ApplyResult, error) {
	if dose < 0 {
		return ApplyResult{}, ErrInvalidDose
	}

	remaining, err := l.slots.DecrementRemaining(ctx, groupID, id, dose)
	if err != nil {
		var insufficient *InsufficientStockError
		if errors.As(err, &insufficient) {
			l.logger.Warn("insufficient stock",
				zap.String("group_id", string(groupID)),
				zap.String("medication_id", string(id)),
				zap.Int("remaining", insufficient.Remaining),
				zap.Int("requested", insufficient.Requested),
			)
		}
		return ApplyResult{}, err
	}

	result := ApplyResult{Remaining: remaining}

	if remaining <= LowStockThreshold {
		raised, err := l.meds.SetWarning(ctx, groupID, id)
		if err != nil {
			// The decrement is already durable; a failed warning write must
			// not report the dispense itself as failed.
			l.logger.Error("failed to set low-stock warning",
				zap.String("group_id", string(groupID)),
				zap.String("medication_id", string(id)),
				zap.Error(err),
			)
		} else {
			result.WarningRaised = raised
			if raised {
				l.logger.Warn("low-stock warning raised",
					zap.String("group_id", string(groupID)),
					zap.String("medication_id", string(id)),
					zap.Int("remaining", remaining),
				)
			}
		}
	}

	l.logger.Info("dose applied",
		zap.String("group_id", string(groupID)),
		zap.String("medication_id", string(id)),
		zap.Int("dose", dose),
		zap.Int("remaining", remaining),
	)

	return result, nil
}
