package fees

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
)

func newProjectionEngine() *ProjectionEngine {
	log := zerolog.Nop()
	return NewProjectionEngine(NewCommissionCalculator(log), NewCustodyCalculator(log), log)
}

func TestProjectionEngine_ExemptPortfolio(t *testing.T) {
	engine := newProjectionEngine()

	result, err := engine.Project(
		domain.OperationBuy,
		decimal.NewFromInt(10000),
		decimal.NewFromInt(800000),
		testSchedule(),
	)
	require.NoError(t, err)

	// Commission only: custody is exempt, so the year costs the one-off fee
	assertDecimal(t, "181.5", result.Operation.TotalCommission)
	assert.True(t, result.Custody.IsExempt)
	assertDecimal(t, "181.5", result.TotalFirstYearCost)
	assertDecimal(t, "1.815", result.BreakEvenImpact)
}

func TestProjectionEngine_WithCustody(t *testing.T) {
	engine := newProjectionEngine()

	result, err := engine.Project(
		domain.OperationBuy,
		decimal.NewFromInt(100000),
		decimal.NewFromInt(2000000),
		testSchedule(),
	)
	require.NoError(t, err)

	assertDecimal(t, "605", result.Operation.TotalCommission)
	assertDecimal(t, "36300", result.Custody.AnnualFee)
	assertDecimal(t, "36905", result.TotalFirstYearCost)
	// 36,905 on a 100,000 trade: the position must earn 36.905% just to break even
	assertDecimal(t, "36.905", result.BreakEvenImpact)
}

func TestProjectionEngine_CostIsCommissionPlusAnnualCustody(t *testing.T) {
	engine := newProjectionEngine()

	result, err := engine.Project(
		domain.OperationSell,
		decimal.NewFromInt(50000),
		decimal.NewFromInt(1500000),
		testSchedule(),
	)
	require.NoError(t, err)

	expected := result.Operation.TotalCommission.Add(result.Custody.AnnualFee)
	assert.True(t, result.TotalFirstYearCost.Equal(expected))
}

func TestProjectionEngine_ZeroAmountRejected(t *testing.T) {
	engine := newProjectionEngine()

	_, err := engine.Project(
		domain.OperationBuy,
		decimal.Zero,
		decimal.NewFromInt(800000),
		testSchedule(),
	)

	var invalidErr *InvalidInputError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "totalAmount", invalidErr.Field)
}

func TestProjectionEngine_NegativeAmountRejected(t *testing.T) {
	engine := newProjectionEngine()

	_, err := engine.Project(
		domain.OperationBuy,
		decimal.NewFromInt(-5000),
		decimal.NewFromInt(800000),
		testSchedule(),
	)

	var invalidErr *InvalidInputError
	require.ErrorAs(t, err, &invalidErr)
}

func TestProjectionEngine_PropagatesScheduleErrors(t *testing.T) {
	engine := newProjectionEngine()

	schedule := testSchedule()
	schedule.Custody.IVARate = decimal.RequireFromString("1.5")

	_, err := engine.Project(
		domain.OperationBuy,
		decimal.NewFromInt(10000),
		decimal.NewFromInt(2000000),
		schedule,
	)

	var configErr *ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "custody.ivaRate", configErr.Field)
}
