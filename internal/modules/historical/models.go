// Package historical aggregates the recorded trade history into commission
// and tax breakdowns. It is deliberately separate from the fees engine: it
// sums what was actually charged, never recomputing commissions against the
// live schedule.
package historical

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
)

// TradeRecord is one executed operation with the commission and IVA the
// broker actually charged.
type TradeRecord struct {
	ID             int64                `json:"id"`
	OperationType  domain.OperationType `json:"type"`
	Amount         decimal.Decimal      `json:"amount"`
	CommissionPaid decimal.Decimal      `json:"commissionPaid"`
	IVAPaid        decimal.Decimal      `json:"ivaPaid"`
	BrokerID       string               `json:"brokerId,omitempty"`
	ExecutedAt     time.Time            `json:"date"`
}

// Filter narrows an analysis. Nil fields mean no restriction.
type Filter struct {
	From          *time.Time
	To            *time.Time
	OperationType *domain.OperationType
}

// MonthlyCommissions is the per-calendar-month slice of an analysis
type MonthlyCommissions struct {
	Commissions decimal.Decimal `json:"commissions"`
	Taxes       decimal.Decimal `json:"taxes"`
	Trades      int             `json:"trades"`
}

// CommissionAnalysis summarizes commissions and taxes paid over a trade
// history. Monthly keys are "2006-01" calendar months of the trade date.
type CommissionAnalysis struct {
	TotalCommissionsPaid      decimal.Decimal               `json:"totalCommissionsPaid"`
	TotalTaxesPaid            decimal.Decimal               `json:"totalTaxesPaid"`
	AverageCommissionPerTrade decimal.Decimal               `json:"averageCommissionPerTrade"`
	TradeCount                int                           `json:"tradeCount"`
	BuyCount                  int                           `json:"buyCount"`
	SellCount                 int                           `json:"sellCount"`
	Monthly                   map[string]MonthlyCommissions `json:"monthly"`
}
