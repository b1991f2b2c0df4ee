package fees

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
)

// testSchedule returns a typical retail rate card: 0.5% per operation with
// a 150 ARS minimum, 21% IVA, and custody free up to 1,000,000 ARS.
func testSchedule() BrokerFeeSchedule {
	return BrokerFeeSchedule{
		BrokerID: "galicia",
		Name:     "Banco Galicia",
		IsActive: true,
		Buy: OperationRates{
			Percentage: decimal.RequireFromString("0.005"),
			Minimum:    decimal.NewFromInt(150),
			IVARate:    decimal.RequireFromString("0.21"),
		},
		Sell: OperationRates{
			Percentage: decimal.RequireFromString("0.005"),
			Minimum:    decimal.NewFromInt(150),
			IVARate:    decimal.RequireFromString("0.21"),
		},
		Custody: CustodyRates{
			ExemptAmount:      decimal.NewFromInt(1000000),
			MonthlyPercentage: decimal.RequireFromString("0.0025"),
			MonthlyMinimum:    decimal.NewFromInt(500),
			IVARate:           decimal.RequireFromString("0.21"),
		},
	}
}

// assertDecimal compares by decimal value, not string representation, so
// "181.5" and "181.50" are the same number.
func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)),
		"expected %s, got %s", want, got.String())
}

func TestCommissionCalculator_SmallBuyHitsMinimum(t *testing.T) {
	calc := NewCommissionCalculator(zerolog.Nop())

	result, err := calc.Calculate(domain.OperationBuy, decimal.NewFromInt(10000), testSchedule())
	require.NoError(t, err)

	// 0.5% of 10,000 is 50, under the 150 minimum
	assertDecimal(t, "150", result.BaseCommission)
	assertDecimal(t, "31.5", result.IVAAmount)
	assertDecimal(t, "181.5", result.TotalCommission)
	assertDecimal(t, "10181.5", result.NetAmount)
	assert.True(t, result.Breakdown.MinimumApplied)
	assert.Equal(t, domain.OperationBuy, result.Breakdown.OperationType)
}

func TestCommissionCalculator_LargeBuyUsesPercentage(t *testing.T) {
	calc := NewCommissionCalculator(zerolog.Nop())

	result, err := calc.Calculate(domain.OperationBuy, decimal.NewFromInt(100000), testSchedule())
	require.NoError(t, err)

	assertDecimal(t, "500", result.BaseCommission)
	assertDecimal(t, "105", result.IVAAmount)
	assertDecimal(t, "605", result.TotalCommission)
	assertDecimal(t, "100605", result.NetAmount)
	assert.False(t, result.Breakdown.MinimumApplied)
}

func TestCommissionCalculator_SellDeductsCommission(t *testing.T) {
	calc := NewCommissionCalculator(zerolog.Nop())

	result, err := calc.Calculate(domain.OperationSell, decimal.NewFromInt(50000), testSchedule())
	require.NoError(t, err)

	assertDecimal(t, "250", result.BaseCommission)
	assertDecimal(t, "52.5", result.IVAAmount)
	assertDecimal(t, "302.5", result.TotalCommission)
	// On a sell, commission comes out of the proceeds
	assertDecimal(t, "49697.5", result.NetAmount)
}

func TestCommissionCalculator_ZeroAmountStillChargesMinimum(t *testing.T) {
	calc := NewCommissionCalculator(zerolog.Nop())

	result, err := calc.Calculate(domain.OperationBuy, decimal.Zero, testSchedule())
	require.NoError(t, err)

	assertDecimal(t, "150", result.BaseCommission)
	assertDecimal(t, "181.5", result.TotalCommission)
	assertDecimal(t, "181.5", result.NetAmount)
	assert.True(t, result.Breakdown.MinimumApplied)
}

func TestCommissionCalculator_NegativeAmountRejected(t *testing.T) {
	calc := NewCommissionCalculator(zerolog.Nop())

	_, err := calc.Calculate(domain.OperationBuy, decimal.NewFromInt(-1), testSchedule())

	var invalidErr *InvalidInputError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "totalAmount", invalidErr.Field)
}

func TestCommissionCalculator_InvalidOperationTypeRejected(t *testing.T) {
	calc := NewCommissionCalculator(zerolog.Nop())

	_, err := calc.Calculate(domain.OperationType("SHORT"), decimal.NewFromInt(10000), testSchedule())

	var invalidErr *InvalidInputError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "operationType", invalidErr.Field)
}

func TestCommissionCalculator_BadScheduleRejected(t *testing.T) {
	calc := NewCommissionCalculator(zerolog.Nop())

	schedule := testSchedule()
	schedule.Buy.Percentage = decimal.NewFromInt(2) // 200%, not a fraction

	_, err := calc.Calculate(domain.OperationBuy, decimal.NewFromInt(10000), schedule)

	var configErr *ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "buy.percentage", configErr.Field)
}

func TestCommissionCalculator_TotalNeverBelowMinimumPlusIVA(t *testing.T) {
	calc := NewCommissionCalculator(zerolog.Nop())
	schedule := testSchedule()

	// Minimum with IVA is the floor of the total, whatever the amount
	floor := decimal.RequireFromString("181.5")

	for _, amount := range []string{"0", "1", "150", "29999.99", "30000", "500000"} {
		result, err := calc.Calculate(domain.OperationBuy, decimal.RequireFromString(amount), schedule)
		require.NoError(t, err)
		assert.True(t, result.TotalCommission.GreaterThanOrEqual(floor),
			"amount %s: total %s below floor", amount, result.TotalCommission)
	}
}

func TestCommissionCalculator_NetAmountIdentity(t *testing.T) {
	calc := NewCommissionCalculator(zerolog.Nop())
	schedule := testSchedule()
	amount := decimal.RequireFromString("123456.78")

	buy, err := calc.Calculate(domain.OperationBuy, amount, schedule)
	require.NoError(t, err)
	assert.True(t, buy.NetAmount.Equal(amount.Add(buy.TotalCommission)))

	sell, err := calc.Calculate(domain.OperationSell, amount, schedule)
	require.NoError(t, err)
	assert.True(t, sell.NetAmount.Equal(amount.Sub(sell.TotalCommission)))

	// Same rate card on both sides, so the commission matches
	assert.True(t, buy.TotalCommission.Equal(sell.TotalCommission))
}
