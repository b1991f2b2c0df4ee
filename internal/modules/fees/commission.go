package fees

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
)

// CommissionCalculator computes the commission charged for a single
// buy or sell operation under a broker fee schedule.
type CommissionCalculator struct {
	log zerolog.Logger
}

// NewCommissionCalculator creates a new commission calculator
func NewCommissionCalculator(log zerolog.Logger) *CommissionCalculator {
	return &CommissionCalculator{
		log: log.With().Str("calculator", "commission").Logger(),
	}
}

// Calculate computes the commission for one operation.
//
// The percentage commission is clamped to the schedule's flat minimum, IVA
// is applied on top of the clamped base, and the net amount is the total
// cash movement: amount plus commission on a BUY, amount minus commission
// on a SELL.
//
// A zero amount is valid and yields the minimum commission (the clamp
// always applies). A negative amount or an out-of-range schedule is an
// error, never clamped.
func (c *CommissionCalculator) Calculate(
	opType domain.OperationType,
	totalAmount decimal.Decimal,
	schedule BrokerFeeSchedule,
) (*OperationCommissionResult, error) {
	if !opType.IsValid() {
		return nil, &InvalidInputError{Field: "operationType", Reason: "must be BUY or SELL"}
	}
	if totalAmount.IsNegative() {
		return nil, &InvalidInputError{Field: "totalAmount", Reason: "must not be negative"}
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	rates := schedule.RatesFor(opType)

	percentageCommission := totalAmount.Mul(rates.Percentage)

	baseCommission := percentageCommission
	minimumApplied := percentageCommission.LessThan(rates.Minimum)
	if minimumApplied {
		baseCommission = rates.Minimum
	}

	ivaAmount := baseCommission.Mul(rates.IVARate)
	totalCommission := baseCommission.Add(ivaAmount)

	netAmount := totalAmount.Add(totalCommission)
	if opType == domain.OperationSell {
		netAmount = totalAmount.Sub(totalCommission)
	}

	c.log.Debug().
		Str("operation", string(opType)).
		Str("amount", totalAmount.String()).
		Str("total_commission", totalCommission.String()).
		Bool("minimum_applied", minimumApplied).
		Msg("Commission calculated")

	return &OperationCommissionResult{
		BaseCommission:  baseCommission,
		IVAAmount:       ivaAmount,
		TotalCommission: totalCommission,
		NetAmount:       netAmount,
		Breakdown: CommissionBreakdown{
			OperationType:  opType,
			TotalAmount:    totalAmount,
			CommissionRate: rates.Percentage,
			MinimumApplied: minimumApplied,
			IVARate:        rates.IVARate,
		},
	}, nil
}
