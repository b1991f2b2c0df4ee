package historical

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
)

// tradesColumns is the list of columns for the trades table
// Column order must match the scan helpers below
const tradesColumns = `id, operation_type, amount, commission_paid, iva_paid, broker_id, executed_at`

// TradeRepository handles trade ledger database operations.
// The ledger is append-only; amounts are stored as decimal strings and
// timestamps as Unix seconds.
type TradeRepository struct {
	ledgerDB *sql.DB // ledger.db - trades table
	log      zerolog.Logger
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(ledgerDB *sql.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "trade").Logger(),
	}
}

// Create inserts a new trade record and returns it with its assigned id
func (r *TradeRepository) Create(trade TradeRecord) (*TradeRecord, error) {
	if !trade.OperationType.IsValid() {
		return nil, fmt.Errorf("failed to create trade: invalid operation type %q", trade.OperationType)
	}
	if trade.Amount.IsNegative() || trade.CommissionPaid.IsNegative() || trade.IVAPaid.IsNegative() {
		return nil, fmt.Errorf("failed to create trade: negative amount or fees")
	}
	if trade.ExecutedAt.IsZero() {
		trade.ExecutedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO trades
		(operation_type, amount, commission_paid, iva_paid, broker_id, executed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.ledgerDB.Exec(query,
		string(trade.OperationType),
		trade.Amount.String(),
		trade.CommissionPaid.String(),
		trade.IVAPaid.String(),
		nullString(trade.BrokerID),
		trade.ExecutedAt.Unix(),
		time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get trade id: %w", err)
	}
	trade.ID = id

	r.log.Info().
		Int64("id", trade.ID).
		Str("operation", string(trade.OperationType)).
		Str("amount", trade.Amount.String()).
		Msg("Trade recorded")

	return &trade, nil
}

// GetHistory retrieves trade history, most recent first
func (r *TradeRepository) GetHistory(limit int) ([]TradeRecord, error) {
	query := `
		SELECT ` + tradesColumns + ` FROM trades
		ORDER BY executed_at DESC
		LIMIT ?
	`

	rows, err := r.ledgerDB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade history: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// GetAllInRange retrieves all trades within [from, to], oldest first
func (r *TradeRepository) GetAllInRange(from, to time.Time) ([]TradeRecord, error) {
	query := `
		SELECT ` + tradesColumns + ` FROM trades
		WHERE executed_at >= ? AND executed_at <= ?
		ORDER BY executed_at ASC
	`

	rows, err := r.ledgerDB.Query(query, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get trades in range: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// GetAll retrieves the complete ledger, oldest first
func (r *TradeRepository) GetAll() ([]TradeRecord, error) {
	query := "SELECT " + tradesColumns + " FROM trades ORDER BY executed_at ASC"

	rows, err := r.ledgerDB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get trades: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// Helper functions

func collectTrades(rows *sql.Rows) ([]TradeRecord, error) {
	var trades []TradeRecord
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, *trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

func scanTrade(rows *sql.Rows) (*TradeRecord, error) {
	var trade TradeRecord
	var opType string
	var amount, commission, iva string
	var brokerID sql.NullString
	var executedAt int64

	err := rows.Scan(
		&trade.ID,
		&opType,
		&amount,
		&commission,
		&iva,
		&brokerID,
		&executedAt,
	)
	if err != nil {
		return nil, err
	}

	parsedType, err := domain.OperationTypeFromString(opType)
	if err != nil {
		return nil, err
	}
	trade.OperationType = parsedType

	if trade.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("corrupt amount: %w", err)
	}
	if trade.CommissionPaid, err = decimal.NewFromString(commission); err != nil {
		return nil, fmt.Errorf("corrupt commission_paid: %w", err)
	}
	if trade.IVAPaid, err = decimal.NewFromString(iva); err != nil {
		return nil, fmt.Errorf("corrupt iva_paid: %w", err)
	}

	if brokerID.Valid {
		trade.BrokerID = brokerID.String
	}
	trade.ExecutedAt = time.Unix(executedAt, 0).UTC()

	return &trade, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
