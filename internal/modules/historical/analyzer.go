package historical

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
)

const monthKeyLayout = "2006-01"

// Analyzer aggregates a trade history into a commission analysis.
// Pure aggregation over the records it is handed: no storage access, no
// recomputation of commission rules.
type Analyzer struct {
	log zerolog.Logger
}

// NewAnalyzer creates a new historical commission analyzer
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{
		log: log.With().Str("analyzer", "historical").Logger(),
	}
}

// Analyze sums commissions and taxes over the given trades, applying the
// filter, and groups them by calendar month of the trade date. An empty
// (or fully filtered) history yields a zero analysis with an empty monthly
// map.
func (a *Analyzer) Analyze(trades []TradeRecord, filter Filter) CommissionAnalysis {
	analysis := CommissionAnalysis{
		TotalCommissionsPaid:      decimal.Zero,
		TotalTaxesPaid:            decimal.Zero,
		AverageCommissionPerTrade: decimal.Zero,
		Monthly:                   make(map[string]MonthlyCommissions),
	}

	for _, trade := range trades {
		if !matches(trade, filter) {
			continue
		}

		analysis.TotalCommissionsPaid = analysis.TotalCommissionsPaid.Add(trade.CommissionPaid)
		analysis.TotalTaxesPaid = analysis.TotalTaxesPaid.Add(trade.IVAPaid)
		analysis.TradeCount++

		switch trade.OperationType {
		case domain.OperationBuy:
			analysis.BuyCount++
		case domain.OperationSell:
			analysis.SellCount++
		}

		key := trade.ExecutedAt.Format(monthKeyLayout)
		month := analysis.Monthly[key]
		month.Commissions = month.Commissions.Add(trade.CommissionPaid)
		month.Taxes = month.Taxes.Add(trade.IVAPaid)
		month.Trades++
		analysis.Monthly[key] = month
	}

	if analysis.TradeCount > 0 {
		analysis.AverageCommissionPerTrade = analysis.TotalCommissionsPaid.
			Div(decimal.NewFromInt(int64(analysis.TradeCount)))
	}

	a.log.Debug().
		Int("trades", analysis.TradeCount).
		Str("total_commissions", analysis.TotalCommissionsPaid.String()).
		Msg("Trade history analyzed")

	return analysis
}

func matches(trade TradeRecord, filter Filter) bool {
	if filter.From != nil && trade.ExecutedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && trade.ExecutedAt.After(*filter.To) {
		return false
	}
	if filter.OperationType != nil && trade.OperationType != *filter.OperationType {
		return false
	}
	return true
}
