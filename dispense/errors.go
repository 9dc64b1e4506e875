/*
errors.go - Centralized error types for the dispense engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers branch with errors.Is/errors.As; the HTTP layer maps these to
  status codes.

ERROR CATEGORIES:
  1. Not-found errors - referenced member/slot/medication has no record
  2. Stock errors - per-item dispense conditions, part of normal flow
  3. Input errors - malformed doses and the like

PROPAGATION POLICY:
  Domain conditions (not-found, insufficient stock) are normal control
  flow and produce structured responses. Storage failures are wrapped with
  context, logged at the orchestration boundary, and surfaced to callers
  as one generic internal failure.

SEE ALSO:
  - ledger.go: produces InsufficientStockError
  - orchestrator.go: accumulates per-item conditions into the report
*/
package dispense

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMemberNotFound is returned when no member matches a token uid,
	// device uid, or member id.
	ErrMemberNotFound = errors.New("member not found")

	// ErrSlotNotFound is returned when a (group, medication) pair has no
	// machine slot. On the dispense path this is a non-fatal anomaly: the
	// device reported a medication the system has no record of.
	ErrSlotNotFound = errors.New("machine slot not found")

	// ErrMedicationNotFound is returned when a (group, medication) pair has
	// no medication definition.
	ErrMedicationNotFound = errors.New("medication not found")

	// ErrInsufficientStock is returned when a decrement would drive a
	// slot's remaining count negative. The slot is never mutated.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidDose is returned for negative dose amounts.
	ErrInvalidDose = errors.New("invalid dose amount")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError reports a decrement that exceeds remaining stock.
type InsufficientStockError struct {
	GroupID      GroupID
	MedicationID MedicationID
	Remaining    int
	Requested    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: remaining %d, requested %d",
		e.MedicationID, e.Remaining, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrMedicationNotFound)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDose)
}
