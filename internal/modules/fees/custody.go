package fees

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CustodyCalculator computes the monthly and annual custody (holding) fee
// for a portfolio value under a broker fee schedule.
type CustodyCalculator struct {
	log zerolog.Logger
}

// NewCustodyCalculator creates a new custody fee calculator
func NewCustodyCalculator(log zerolog.Logger) *CustodyCalculator {
	return &CustodyCalculator{
		log: log.With().Str("calculator", "custody").Logger(),
	}
}

// Calculate computes the custody fee for a portfolio value.
//
// Portfolios at or under the exemption threshold pay exactly zero. The
// monthly minimum only kicks in once the portfolio exceeds the threshold:
// at portfolioValue == exemptAmount the fee is 0, not the minimum.
func (c *CustodyCalculator) Calculate(
	portfolioValue decimal.Decimal,
	schedule BrokerFeeSchedule,
) (*CustodyFeeResult, error) {
	if portfolioValue.IsNegative() {
		return nil, &InvalidInputError{Field: "portfolioValue", Reason: "must not be negative"}
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	custody := schedule.Custody

	isExempt := portfolioValue.LessThanOrEqual(custody.ExemptAmount)

	applicableAmount := decimal.Zero
	monthlyFee := decimal.Zero
	if !isExempt {
		applicableAmount = portfolioValue.Sub(custody.ExemptAmount)
		monthlyFee = applicableAmount.Mul(custody.MonthlyPercentage)
		if monthlyFee.LessThan(custody.MonthlyMinimum) {
			monthlyFee = custody.MonthlyMinimum
		}
	}

	ivaAmount := monthlyFee.Mul(custody.IVARate)
	totalMonthlyCost := monthlyFee.Add(ivaAmount)
	annualFee := totalMonthlyCost.Mul(twelve)

	c.log.Debug().
		Str("portfolio_value", portfolioValue.String()).
		Str("monthly_fee", monthlyFee.String()).
		Bool("exempt", isExempt).
		Msg("Custody fee calculated")

	return &CustodyFeeResult{
		ApplicableAmount: applicableAmount,
		MonthlyFee:       monthlyFee,
		AnnualFee:        annualFee,
		IVAAmount:        ivaAmount,
		TotalMonthlyCost: totalMonthlyCost,
		IsExempt:         isExempt,
	}, nil
}
