package fees

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/database"
)

// scheduleColumns is the list of columns for the broker_fee_schedules table
// Used to avoid SELECT * which can break when schema changes
// Column order must match scanSchedule() expectations
const scheduleColumns = `broker_id, name, is_active,
	buy_percentage, buy_minimum, buy_iva_rate,
	sell_percentage, sell_minimum, sell_iva_rate,
	custody_exempt_amount, custody_monthly_percentage, custody_monthly_minimum, custody_iva_rate`

// ScheduleRepository handles broker fee schedule database operations.
// Decimal fields are stored as TEXT so rates survive round-trips exactly.
//
// The repository owns the single-active invariant: at most one schedule
// has is_active = 1, enforced transactionally on Save and SetActive.
type ScheduleRepository struct {
	db  *sql.DB // config.db - broker_fee_schedules table
	log zerolog.Logger
}

// NewScheduleRepository creates a new fee schedule repository
func NewScheduleRepository(configDB *sql.DB, log zerolog.Logger) *ScheduleRepository {
	return &ScheduleRepository{
		db:  configDB,
		log: log.With().Str("repo", "fee_schedule").Logger(),
	}
}

// Save validates and upserts a schedule. A missing broker id is generated.
// When the saved schedule is active, every other active flag is cleared in
// the same transaction. Returns the stored schedule (with its broker id).
func (r *ScheduleRepository) Save(schedule BrokerFeeSchedule) (*BrokerFeeSchedule, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	// Trim once so the returned schedule matches what List/GetActive will
	// read back later
	schedule.Name = strings.TrimSpace(schedule.Name)
	if schedule.Name == "" {
		return nil, &ConfigurationError{Field: "name", Reason: "must not be empty"}
	}
	if schedule.BrokerID == "" {
		schedule.BrokerID = uuid.New().String()
	}

	now := time.Now().Unix()

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if schedule.IsActive {
			if _, err := tx.Exec(
				"UPDATE broker_fee_schedules SET is_active = 0, updated_at = ? WHERE broker_id != ?",
				now, schedule.BrokerID,
			); err != nil {
				return fmt.Errorf("failed to clear active schedules: %w", err)
			}
		}

		_, err := tx.Exec(`
			INSERT INTO broker_fee_schedules
			(broker_id, name, is_active,
			 buy_percentage, buy_minimum, buy_iva_rate,
			 sell_percentage, sell_minimum, sell_iva_rate,
			 custody_exempt_amount, custody_monthly_percentage, custody_monthly_minimum, custody_iva_rate,
			 created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(broker_id) DO UPDATE SET
				name = excluded.name,
				is_active = excluded.is_active,
				buy_percentage = excluded.buy_percentage,
				buy_minimum = excluded.buy_minimum,
				buy_iva_rate = excluded.buy_iva_rate,
				sell_percentage = excluded.sell_percentage,
				sell_minimum = excluded.sell_minimum,
				sell_iva_rate = excluded.sell_iva_rate,
				custody_exempt_amount = excluded.custody_exempt_amount,
				custody_monthly_percentage = excluded.custody_monthly_percentage,
				custody_monthly_minimum = excluded.custody_monthly_minimum,
				custody_iva_rate = excluded.custody_iva_rate,
				updated_at = excluded.updated_at
		`,
			schedule.BrokerID,
			schedule.Name,
			boolToInt(schedule.IsActive),
			schedule.Buy.Percentage.String(),
			schedule.Buy.Minimum.String(),
			schedule.Buy.IVARate.String(),
			schedule.Sell.Percentage.String(),
			schedule.Sell.Minimum.String(),
			schedule.Sell.IVARate.String(),
			schedule.Custody.ExemptAmount.String(),
			schedule.Custody.MonthlyPercentage.String(),
			schedule.Custody.MonthlyMinimum.String(),
			schedule.Custody.IVARate.String(),
			now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to save schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Str("broker_id", schedule.BrokerID).
		Str("name", schedule.Name).
		Bool("active", schedule.IsActive).
		Msg("Fee schedule saved")

	return &schedule, nil
}

// SetActive marks one schedule active and clears every other active flag
// in the same transaction. Returns an error if the broker id is unknown.
func (r *ScheduleRepository) SetActive(brokerID string) error {
	now := time.Now().Unix()

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			"UPDATE broker_fee_schedules SET is_active = 0, updated_at = ? WHERE is_active = 1",
			now,
		); err != nil {
			return fmt.Errorf("failed to clear active schedules: %w", err)
		}

		result, err := tx.Exec(
			"UPDATE broker_fee_schedules SET is_active = 1, updated_at = ? WHERE broker_id = ?",
			now, brokerID,
		)
		if err != nil {
			return fmt.Errorf("failed to activate schedule: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check activation result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrScheduleNotFound, brokerID)
		}
		return nil
	})
}

// GetActive retrieves the active schedule. Returns nil, nil when no
// schedule is active (not an error - callers decide what that means).
func (r *ScheduleRepository) GetActive() (*BrokerFeeSchedule, error) {
	query := "SELECT " + scheduleColumns + " FROM broker_fee_schedules WHERE is_active = 1 LIMIT 1"

	schedule, err := r.scanSchedule(r.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active schedule: %w", err)
	}

	return schedule, nil
}

// GetByBrokerID retrieves a schedule by broker id. Returns nil, nil when
// not found.
func (r *ScheduleRepository) GetByBrokerID(brokerID string) (*BrokerFeeSchedule, error) {
	query := "SELECT " + scheduleColumns + " FROM broker_fee_schedules WHERE broker_id = ?"

	schedule, err := r.scanSchedule(r.db.QueryRow(query, brokerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule by broker_id: %w", err)
	}

	return schedule, nil
}

// List retrieves all schedules ordered by name
func (r *ScheduleRepository) List() ([]BrokerFeeSchedule, error) {
	query := "SELECT " + scheduleColumns + " FROM broker_fee_schedules ORDER BY name COLLATE NOCASE ASC"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []BrokerFeeSchedule
	for rows.Next() {
		schedule, err := r.scanScheduleFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, *schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return schedules, nil
}

// Delete removes a schedule. Idempotent - no error when the id is unknown.
func (r *ScheduleRepository) Delete(brokerID string) error {
	_, err := r.db.Exec("DELETE FROM broker_fee_schedules WHERE broker_id = ?", brokerID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule %s: %w", brokerID, err)
	}
	return nil
}

// Helper methods

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ScheduleRepository) scanSchedule(row *sql.Row) (*BrokerFeeSchedule, error) {
	return scanScheduleFrom(row)
}

func (r *ScheduleRepository) scanScheduleFromRows(rows *sql.Rows) (*BrokerFeeSchedule, error) {
	return scanScheduleFrom(rows)
}

func scanScheduleFrom(row rowScanner) (*BrokerFeeSchedule, error) {
	var schedule BrokerFeeSchedule
	var isActive int
	var buyPct, buyMin, buyIVA string
	var sellPct, sellMin, sellIVA string
	var exempt, monthlyPct, monthlyMin, custodyIVA string

	err := row.Scan(
		&schedule.BrokerID,
		&schedule.Name,
		&isActive,
		&buyPct, &buyMin, &buyIVA,
		&sellPct, &sellMin, &sellIVA,
		&exempt, &monthlyPct, &monthlyMin, &custodyIVA,
	)
	if err != nil {
		return nil, err
	}

	schedule.IsActive = isActive != 0

	fields := []struct {
		name string
		dst  *decimal.Decimal
		raw  string
	}{
		{"buy_percentage", &schedule.Buy.Percentage, buyPct},
		{"buy_minimum", &schedule.Buy.Minimum, buyMin},
		{"buy_iva_rate", &schedule.Buy.IVARate, buyIVA},
		{"sell_percentage", &schedule.Sell.Percentage, sellPct},
		{"sell_minimum", &schedule.Sell.Minimum, sellMin},
		{"sell_iva_rate", &schedule.Sell.IVARate, sellIVA},
		{"custody_exempt_amount", &schedule.Custody.ExemptAmount, exempt},
		{"custody_monthly_percentage", &schedule.Custody.MonthlyPercentage, monthlyPct},
		{"custody_monthly_minimum", &schedule.Custody.MonthlyMinimum, monthlyMin},
		{"custody_iva_rate", &schedule.Custody.IVARate, custodyIVA},
	}
	for _, f := range fields {
		value, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt decimal in column %s: %w", f.name, err)
		}
		*f.dst = value
	}

	return &schedule, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
