package fees

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
)

// ScheduleRepositoryInterface defines the interface for schedule persistence
type ScheduleRepositoryInterface interface {
	// GetActive retrieves the active schedule, nil when none is active
	GetActive() (*BrokerFeeSchedule, error)

	// GetByBrokerID retrieves a schedule by broker id, nil when not found
	GetByBrokerID(brokerID string) (*BrokerFeeSchedule, error)

	// List retrieves all schedules ordered by name
	List() ([]BrokerFeeSchedule, error)

	// Save validates and upserts a schedule
	Save(schedule BrokerFeeSchedule) (*BrokerFeeSchedule, error)

	// SetActive marks one schedule active, clearing every other active flag
	SetActive(brokerID string) error
}

// Compile-time check that ScheduleRepository implements the interface
var _ ScheduleRepositoryInterface = (*ScheduleRepository)(nil)

// Service orchestrates the fee calculation engine.
//
// It resolves which schedule a calculation runs against (an explicit broker
// id, or the active schedule when none is given) and delegates the math to
// the stateless calculators. The service holds no mutable state; concurrent
// calls are safe.
type Service struct {
	log        zerolog.Logger
	schedules  ScheduleRepositoryInterface
	commission *CommissionCalculator
	custody    *CustodyCalculator
	projection *ProjectionEngine
	comparator *BrokerComparator
	solver     *MinimumInvestmentSolver
}

// NewService creates a new fees service wired to its calculators
func NewService(schedules ScheduleRepositoryInterface, log zerolog.Logger) *Service {
	commission := NewCommissionCalculator(log)
	custody := NewCustodyCalculator(log)
	projection := NewProjectionEngine(commission, custody, log)

	return &Service{
		log:        log.With().Str("service", "fees").Logger(),
		schedules:  schedules,
		commission: commission,
		custody:    custody,
		projection: projection,
		comparator: NewBrokerComparator(commission, custody, log),
		solver:     NewMinimumInvestmentSolver(commission, log),
	}
}

// resolveSchedule returns the schedule for an explicit broker id, or the
// active schedule when brokerID is empty. A missing schedule is a
// configuration error, not a silent default.
func (s *Service) resolveSchedule(brokerID string) (*BrokerFeeSchedule, error) {
	if brokerID == "" {
		schedule, err := s.schedules.GetActive()
		if err != nil {
			return nil, err
		}
		if schedule == nil {
			return nil, ErrNoActiveSchedule
		}
		return schedule, nil
	}

	schedule, err := s.schedules.GetByBrokerID(brokerID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, &ConfigurationError{Field: "brokerId", Reason: "unknown broker: " + brokerID}
	}
	return schedule, nil
}

// CalculateCommission computes the commission for one operation against the
// resolved schedule
func (s *Service) CalculateCommission(
	opType domain.OperationType,
	totalAmount decimal.Decimal,
	brokerID string,
) (*OperationCommissionResult, error) {
	schedule, err := s.resolveSchedule(brokerID)
	if err != nil {
		return nil, err
	}
	return s.commission.Calculate(opType, totalAmount, *schedule)
}

// CalculateCustody computes the custody fee for a portfolio value against
// the resolved schedule
func (s *Service) CalculateCustody(
	portfolioValue decimal.Decimal,
	brokerID string,
) (*CustodyFeeResult, error) {
	schedule, err := s.resolveSchedule(brokerID)
	if err != nil {
		return nil, err
	}
	return s.custody.Calculate(portfolioValue, *schedule)
}

// Project computes first-year cost and break-even impact for one operation
func (s *Service) Project(
	opType domain.OperationType,
	totalAmount decimal.Decimal,
	portfolioValueAfter decimal.Decimal,
	brokerID string,
) (*ProjectionResult, error) {
	schedule, err := s.resolveSchedule(brokerID)
	if err != nil {
		return nil, err
	}
	return s.projection.Project(opType, totalAmount, portfolioValueAfter, *schedule)
}

// CompareBrokers ranks every stored schedule for the same operation and
// portfolio value
func (s *Service) CompareBrokers(
	opType domain.OperationType,
	totalAmount decimal.Decimal,
	portfolioValue decimal.Decimal,
) ([]BrokerComparison, error) {
	schedules, err := s.schedules.List()
	if err != nil {
		return nil, err
	}
	return s.comparator.Compare(opType, totalAmount, portfolioValue, schedules)
}

// SolveMinimumInvestment finds the smallest trade amount keeping commission
// at or below thresholdPercent under the resolved schedule
func (s *Service) SolveMinimumInvestment(
	thresholdPercent decimal.Decimal,
	opType domain.OperationType,
	brokerID string,
) (*MinimumInvestmentResult, error) {
	schedule, err := s.resolveSchedule(brokerID)
	if err != nil {
		return nil, err
	}
	return s.solver.Solve(thresholdPercent, opType, *schedule)
}

// Schedules lists all stored fee schedules
func (s *Service) Schedules() ([]BrokerFeeSchedule, error) {
	return s.schedules.List()
}

// SaveSchedule validates and stores a schedule
func (s *Service) SaveSchedule(schedule BrokerFeeSchedule) (*BrokerFeeSchedule, error) {
	return s.schedules.Save(schedule)
}

// ActivateSchedule flips the active schedule to the given broker id
func (s *Service) ActivateSchedule(brokerID string) error {
	return s.schedules.SetActive(brokerID)
}
