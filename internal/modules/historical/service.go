package historical

import (
	"time"

	"github.com/rs/zerolog"
)

// TradeRepositoryInterface defines the interface for trade persistence
type TradeRepositoryInterface interface {
	// Create inserts a new trade record
	Create(trade TradeRecord) (*TradeRecord, error)

	// GetHistory retrieves recent trades, most recent first
	GetHistory(limit int) ([]TradeRecord, error)

	// GetAllInRange retrieves all trades within [from, to], oldest first
	GetAllInRange(from, to time.Time) ([]TradeRecord, error)

	// GetAll retrieves the complete ledger, oldest first
	GetAll() ([]TradeRecord, error)
}

// Compile-time check that TradeRepository implements the interface
var _ TradeRepositoryInterface = (*TradeRepository)(nil)

// Service coordinates the trade ledger and the commission analyzer
type Service struct {
	log      zerolog.Logger
	trades   TradeRepositoryInterface
	analyzer *Analyzer
}

// NewService creates a new historical analysis service
func NewService(trades TradeRepositoryInterface, log zerolog.Logger) *Service {
	return &Service{
		log:      log.With().Str("service", "historical").Logger(),
		trades:   trades,
		analyzer: NewAnalyzer(log),
	}
}

// RecordTrade appends an executed operation to the ledger
func (s *Service) RecordTrade(trade TradeRecord) (*TradeRecord, error) {
	return s.trades.Create(trade)
}

// History returns recent trades, most recent first
func (s *Service) History(limit int) ([]TradeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.trades.GetHistory(limit)
}

// Analyze aggregates the ledger into a commission analysis. When the
// filter carries a date range the ledger query is narrowed to it (the
// executed_at index does the work); the analyzer then applies the full
// filter over whatever it receives.
func (s *Service) Analyze(filter Filter) (*CommissionAnalysis, error) {
	var trades []TradeRecord
	var err error

	if filter.From != nil && filter.To != nil {
		trades, err = s.trades.GetAllInRange(*filter.From, *filter.To)
	} else {
		trades, err = s.trades.GetAll()
	}
	if err != nil {
		return nil, err
	}

	analysis := s.analyzer.Analyze(trades, filter)
	return &analysis, nil
}
