package fees

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
)

// MinimumInvestmentSolver inverse-solves the smallest trade amount whose
// total commission stays at or below a target percentage of the amount.
//
// As a fraction of the amount, the total commission is
//
//	max(rate, minimum/amount) × (1+ivaRate) × 100
//
// In the minimum regime (minimum/amount > rate) this is strictly
// decreasing in the amount, so it inverts to
//
//	amount = minimum × (1+ivaRate) × 100 / threshold
//
// The inversion is only valid while that amount is still inside the
// minimum regime, which holds exactly when the threshold is above the
// schedule's own rate floor rate×(1+ivaRate)×100.
type MinimumInvestmentSolver struct {
	commission *CommissionCalculator
	log        zerolog.Logger
}

// NewMinimumInvestmentSolver creates a new minimum-investment solver
func NewMinimumInvestmentSolver(commission *CommissionCalculator, log zerolog.Logger) *MinimumInvestmentSolver {
	return &MinimumInvestmentSolver{
		commission: commission,
		log:        log.With().Str("engine", "solver").Logger(),
	}
}

// Solve returns the minimum trade amount keeping the total commission at or
// below thresholdPercent (expressed in percent, 0 < x <= 100).
//
// When the threshold is at or below the rate floor, no finite amount
// satisfies it via clamp avoidance and a *NoSolutionError is returned
// carrying both the threshold and the floor.
func (s *MinimumInvestmentSolver) Solve(
	thresholdPercent decimal.Decimal,
	opType domain.OperationType,
	schedule BrokerFeeSchedule,
) (*MinimumInvestmentResult, error) {
	if !thresholdPercent.IsPositive() || thresholdPercent.GreaterThan(hundred) {
		return nil, &InvalidInputError{Field: "thresholdPercent", Reason: "must be in (0, 100]"}
	}
	if !opType.IsValid() {
		return nil, &InvalidInputError{Field: "operationType", Reason: "must be BUY or SELL"}
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	rates := schedule.RatesFor(opType)
	onePlusIVA := one.Add(rates.IVARate)

	// The floor is the commission percentage of an arbitrarily large trade:
	// below it, the percentage rate alone already exceeds the target.
	floorPercent := rates.Percentage.Mul(onePlusIVA).Mul(hundred)
	if thresholdPercent.LessThanOrEqual(floorPercent) {
		return nil, &NoSolutionError{
			ThresholdPercent: thresholdPercent,
			FloorPercent:     floorPercent,
		}
	}

	// Closed-form inversion inside the minimum regime, rounded up to the
	// cent so the achieved percentage never exceeds the threshold.
	minimumAmount := rates.Minimum.Mul(onePlusIVA).Mul(hundred).
		Div(thresholdPercent).
		RoundUp(2)

	commissionPercentage := thresholdPercent
	if minimumAmount.IsPositive() {
		// Recompute through the forward calculator so the reported
		// percentage reflects the rounded amount exactly.
		result, err := s.commission.Calculate(opType, minimumAmount, schedule)
		if err != nil {
			return nil, err
		}
		commissionPercentage = result.TotalCommission.Div(minimumAmount).Mul(hundred)
	}

	recommendation := fmt.Sprintf(
		"Operate with at least %s ARS per %s so total commission stays at or below %s%% (effective %s%%).",
		minimumAmount.StringFixed(2),
		opType,
		thresholdPercent.String(),
		commissionPercentage.Round(4).String(),
	)

	s.log.Debug().
		Str("threshold_percent", thresholdPercent.String()).
		Str("minimum_amount", minimumAmount.String()).
		Msg("Minimum investment solved")

	return &MinimumInvestmentResult{
		MinimumAmount:        minimumAmount,
		CommissionPercentage: commissionPercentage,
		Recommendation:       recommendation,
	}, nil
}
