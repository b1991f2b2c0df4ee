package fees

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
)

// BrokerComparator ranks competing fee schedules for the same operation
// and portfolio, ascending by total first-year cost.
type BrokerComparator struct {
	commission *CommissionCalculator
	custody    *CustodyCalculator
	log        zerolog.Logger
}

// NewBrokerComparator creates a new broker comparator
func NewBrokerComparator(
	commission *CommissionCalculator,
	custody *CustodyCalculator,
	log zerolog.Logger,
) *BrokerComparator {
	return &BrokerComparator{
		commission: commission,
		custody:    custody,
		log:        log.With().Str("engine", "comparator").Logger(),
	}
}

// Compare evaluates each schedule independently and returns comparisons
// ordered ascending by total first-year cost (one operation commission plus
// a year of custody). Ties break by name ascending, case-insensitive, then
// by broker id, so the ranking is total and independent of input order.
// Ranking is the 1-based position after sort.
//
// A zero amount is a valid ranking input: each broker's minimum commission
// still applies, so the ordering remains meaningful. An empty schedule
// slice yields an empty result, not an error.
func (c *BrokerComparator) Compare(
	opType domain.OperationType,
	totalAmount decimal.Decimal,
	portfolioValue decimal.Decimal,
	schedules []BrokerFeeSchedule,
) ([]BrokerComparison, error) {
	comparisons := make([]BrokerComparison, 0, len(schedules))

	for _, schedule := range schedules {
		commission, err := c.commission.Calculate(opType, totalAmount, schedule)
		if err != nil {
			return nil, err
		}

		custody, err := c.custody.Calculate(portfolioValue, schedule)
		if err != nil {
			return nil, err
		}

		comparisons = append(comparisons, BrokerComparison{
			Broker:              schedule.BrokerID,
			Name:                schedule.Name,
			OperationCommission: commission.TotalCommission,
			CustodyFee:          custody.AnnualFee,
			TotalFirstYearCost:  commission.TotalCommission.Add(custody.AnnualFee),
		})
	}

	sort.Slice(comparisons, func(i, j int) bool {
		if !comparisons[i].TotalFirstYearCost.Equal(comparisons[j].TotalFirstYearCost) {
			return comparisons[i].TotalFirstYearCost.LessThan(comparisons[j].TotalFirstYearCost)
		}
		ni, nj := strings.ToLower(comparisons[i].Name), strings.ToLower(comparisons[j].Name)
		if ni != nj {
			return ni < nj
		}
		return comparisons[i].Broker < comparisons[j].Broker
	})

	for i := range comparisons {
		comparisons[i].Ranking = i + 1
	}

	c.log.Debug().
		Int("schedules", len(schedules)).
		Str("operation", string(opType)).
		Msg("Broker comparison completed")

	return comparisons, nil
}
