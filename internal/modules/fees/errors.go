package fees

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// The engine never converts an error into a zero or clamped value; the only
// documented clamp is the minimum-fee floor in the commission and custody
// calculators. Everything else surfaces as one of the typed errors below so
// the HTTP layer can map error kinds to envelope codes.

// InvalidInputError indicates a caller-supplied value outside the contract
// (negative amount, zero where a positive value is required, unknown
// operation type).
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// ConfigurationError indicates a fee schedule outside its invariants
// (rates out of [0,1], negative currency fields) or a missing active
// schedule when one is required.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid fee schedule: %s %s", e.Field, e.Reason)
}

// NoSolutionError is returned by the minimum-investment solver when the
// requested threshold is at or below the schedule's own percentage-rate
// floor: no finite amount can beat the rate itself, so the closed-form
// inversion does not apply.
type NoSolutionError struct {
	ThresholdPercent decimal.Decimal
	FloorPercent     decimal.Decimal
}

func (e *NoSolutionError) Error() string {
	return fmt.Sprintf(
		"no solution: threshold %s%% is at or below the schedule's rate floor %s%%",
		e.ThresholdPercent.String(), e.FloorPercent.String(),
	)
}

// ErrNoActiveSchedule is returned when a calculation needs the active
// schedule but none is configured.
var ErrNoActiveSchedule = &ConfigurationError{
	Field:  "schedule",
	Reason: "no active fee schedule configured",
}

// ErrScheduleNotFound is returned when an operation names a broker id
// with no stored schedule. Handlers match it with errors.Is to keep
// not-found distinct from storage failures.
var ErrScheduleNotFound = errors.New("schedule not found")
