package fees

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
)

// ProjectionEngine combines the commission and custody calculators into a
// total first-year cost and a break-even-impact percentage.
type ProjectionEngine struct {
	commission *CommissionCalculator
	custody    *CustodyCalculator
	log        zerolog.Logger
}

// NewProjectionEngine creates a new projection engine
func NewProjectionEngine(
	commission *CommissionCalculator,
	custody *CustodyCalculator,
	log zerolog.Logger,
) *ProjectionEngine {
	return &ProjectionEngine{
		commission: commission,
		custody:    custody,
		log:        log.With().Str("engine", "projection").Logger(),
	}
}

// Project computes the total first-year cost of an operation: the one-off
// commission plus twelve months of custody on the resulting portfolio
// value. BreakEvenImpact is the extra percentage return the position must
// earn solely to offset those fees.
//
// The amount must be strictly positive here (break-even impact divides by
// it), unlike the commission calculator, which accepts zero.
func (p *ProjectionEngine) Project(
	opType domain.OperationType,
	totalAmount decimal.Decimal,
	portfolioValueAfter decimal.Decimal,
	schedule BrokerFeeSchedule,
) (*ProjectionResult, error) {
	if !totalAmount.IsPositive() {
		return nil, &InvalidInputError{Field: "totalAmount", Reason: "must be greater than zero"}
	}

	operation, err := p.commission.Calculate(opType, totalAmount, schedule)
	if err != nil {
		return nil, err
	}

	custody, err := p.custody.Calculate(portfolioValueAfter, schedule)
	if err != nil {
		return nil, err
	}

	totalFirstYearCost := operation.TotalCommission.Add(custody.AnnualFee)
	breakEvenImpact := totalFirstYearCost.Div(totalAmount).Mul(hundred)

	return &ProjectionResult{
		Operation:          *operation,
		Custody:            *custody,
		TotalFirstYearCost: totalFirstYearCost,
		BreakEvenImpact:    breakEvenImpact,
	}, nil
}
