// Package fees implements the commission and custody fee calculation engine.
//
// All components are pure and stateless: every calculation is a complete,
// independent computation over an immutable BrokerFeeSchedule snapshot and
// the caller's figures. Rates are fractional (0.005 = 0.5%), amounts are
// decimal currency values in ARS.
package fees

import (
	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// OperationRates holds the rate card for one operation side (buy or sell)
type OperationRates struct {
	Percentage decimal.Decimal `json:"percentage"` // Fractional rate in [0,1]
	Minimum    decimal.Decimal `json:"minimum"`    // Flat minimum commission in ARS
	IVARate    decimal.Decimal `json:"ivaRate"`    // VAT applied on top of the base commission
}

// CustodyRates holds the custody (holding) fee rate card
type CustodyRates struct {
	ExemptAmount      decimal.Decimal `json:"exemptAmount"`      // Portfolio value at or under which custody is free
	MonthlyPercentage decimal.Decimal `json:"monthlyPercentage"` // Fractional monthly rate on the amount above the exemption
	MonthlyMinimum    decimal.Decimal `json:"monthlyMinimum"`    // Minimum monthly fee once above the exemption
	IVARate           decimal.Decimal `json:"ivaRate"`
}

// BrokerFeeSchedule is an immutable snapshot of one broker's rate card.
// The engine never mutates it; persistence and the single-active invariant
// belong to the schedule repository.
type BrokerFeeSchedule struct {
	BrokerID string         `json:"brokerId"`
	Name     string         `json:"name"`
	IsActive bool           `json:"isActive"`
	Buy      OperationRates `json:"buy"`
	Sell     OperationRates `json:"sell"`
	Custody  CustodyRates   `json:"custody"`
}

// RatesFor returns the rate card for the given operation side
func (s BrokerFeeSchedule) RatesFor(opType domain.OperationType) OperationRates {
	if opType == domain.OperationSell {
		return s.Sell
	}
	return s.Buy
}

// Validate checks the schedule invariants: rates finite and within [0,1],
// currency fields non-negative. Violations are never silently clamped.
func (s BrokerFeeSchedule) Validate() error {
	checks := []struct {
		field string
		value decimal.Decimal
		rate  bool // true = must be in [0,1], false = must be >= 0
	}{
		{"buy.percentage", s.Buy.Percentage, true},
		{"buy.ivaRate", s.Buy.IVARate, true},
		{"buy.minimum", s.Buy.Minimum, false},
		{"sell.percentage", s.Sell.Percentage, true},
		{"sell.ivaRate", s.Sell.IVARate, true},
		{"sell.minimum", s.Sell.Minimum, false},
		{"custody.monthlyPercentage", s.Custody.MonthlyPercentage, true},
		{"custody.ivaRate", s.Custody.IVARate, true},
		{"custody.exemptAmount", s.Custody.ExemptAmount, false},
		{"custody.monthlyMinimum", s.Custody.MonthlyMinimum, false},
	}

	for _, c := range checks {
		if c.value.IsNegative() {
			return &ConfigurationError{Field: c.field, Reason: "must not be negative"}
		}
		if c.rate && c.value.GreaterThan(one) {
			return &ConfigurationError{Field: c.field, Reason: "must be a fractional rate in [0,1]"}
		}
	}

	return nil
}

// CommissionBreakdown explains how an operation commission was computed.
// A closed struct rather than an open map so consumers get exhaustiveness.
type CommissionBreakdown struct {
	OperationType  domain.OperationType `json:"operationType"`
	TotalAmount    decimal.Decimal      `json:"totalAmount"`
	CommissionRate decimal.Decimal      `json:"commissionRate"`
	MinimumApplied bool                 `json:"minimumApplied"`
	IVARate        decimal.Decimal      `json:"ivaRate"`
}

// OperationCommissionResult is the transient result of a single buy/sell
// commission calculation. Created fresh per call, no identity.
type OperationCommissionResult struct {
	BaseCommission  decimal.Decimal     `json:"baseCommission"`
	IVAAmount       decimal.Decimal     `json:"ivaAmount"`
	TotalCommission decimal.Decimal     `json:"totalCommission"`
	NetAmount       decimal.Decimal     `json:"netAmount"`
	Breakdown       CommissionBreakdown `json:"breakdown"`
}

// CustodyFeeResult is the transient result of a custody fee calculation
type CustodyFeeResult struct {
	ApplicableAmount decimal.Decimal `json:"applicableAmount"`
	MonthlyFee       decimal.Decimal `json:"monthlyFee"`
	AnnualFee        decimal.Decimal `json:"annualFee"`
	IVAAmount        decimal.Decimal `json:"ivaAmount"`
	TotalMonthlyCost decimal.Decimal `json:"totalMonthlyCost"`
	IsExempt         bool            `json:"isExempt"`
}

// ProjectionResult combines one operation commission with a year of custody
type ProjectionResult struct {
	Operation          OperationCommissionResult `json:"operation"`
	Custody            CustodyFeeResult          `json:"custody"`
	TotalFirstYearCost decimal.Decimal           `json:"totalFirstYearCost"`
	BreakEvenImpact    decimal.Decimal           `json:"breakEvenImpact"` // Extra % return needed to offset first-year fees
}

// BrokerComparison is one row of a broker ranking, ascending by cost
type BrokerComparison struct {
	Broker              string          `json:"broker"`
	Name                string          `json:"name"`
	Ranking             int             `json:"ranking"`
	OperationCommission decimal.Decimal `json:"operationCommission"`
	CustodyFee          decimal.Decimal `json:"custodyFee"` // Annual custody cost, IVA included
	TotalFirstYearCost  decimal.Decimal `json:"totalFirstYearCost"`
}

// MinimumInvestmentResult is the output of the minimum-investment solver
type MinimumInvestmentResult struct {
	MinimumAmount        decimal.Decimal `json:"minimumAmount"`
	CommissionPercentage decimal.Decimal `json:"commissionPercentage"`
	Recommendation       string          `json:"recommendation"`
}
