// Package handlers provides HTTP handlers for the trade history API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/api"
	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/modules/historical"
)

// HistoricalHandlers contains HTTP handlers for the trade history API
type HistoricalHandlers struct {
	log     zerolog.Logger
	service *historical.Service
}

// NewHistoricalHandlers creates a new historical handlers instance
func NewHistoricalHandlers(service *historical.Service, log zerolog.Logger) *HistoricalHandlers {
	return &HistoricalHandlers{
		service: service,
		log:     log.With().Str("handler", "historical").Logger(),
	}
}

type recordTradeRequest struct {
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	CommissionPaid decimal.Decimal `json:"commissionPaid"`
	IVAPaid        decimal.Decimal `json:"ivaPaid"`
	BrokerID       string          `json:"brokerId"`
	Date           string          `json:"date"` // RFC3339, defaults to now
}

// HandleGetTrades returns trade history
// GET /api/trades?limit=
func (h *HistoricalHandlers) HandleGetTrades(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil {
			limit = parsed
		}
	}

	trades, err := h.service.History(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get trade history")
		api.WriteError(w, h.log, http.StatusInternalServerError, "failed to get trade history", nil)
		return
	}

	if trades == nil {
		trades = []historical.TradeRecord{}
	}
	api.WriteData(w, h.log, http.StatusOK, trades)
}

// HandleRecordTrade appends an executed operation to the ledger
// POST /api/trades
func (h *HistoricalHandlers) HandleRecordTrade(w http.ResponseWriter, r *http.Request) {
	var req recordTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, h.log, http.StatusBadRequest, "invalid request body", map[string]string{
			"reason": err.Error(),
		})
		return
	}

	opType, err := domain.OperationTypeFromString(req.Type)
	if err != nil {
		api.WriteError(w, h.log, http.StatusBadRequest, err.Error(), nil)
		return
	}

	executedAt := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			api.WriteError(w, h.log, http.StatusBadRequest, "invalid date (expected RFC3339)", nil)
			return
		}
		executedAt = parsed
	}

	trade, err := h.service.RecordTrade(historical.TradeRecord{
		OperationType:  opType,
		Amount:         req.Amount,
		CommissionPaid: req.CommissionPaid,
		IVAPaid:        req.IVAPaid,
		BrokerID:       req.BrokerID,
		ExecutedAt:     executedAt,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to record trade")
		api.WriteError(w, h.log, http.StatusBadRequest, err.Error(), nil)
		return
	}

	api.WriteData(w, h.log, http.StatusCreated, trade)
}

// HandleAnalysis aggregates the ledger into a commission analysis
// GET /api/trades/analysis?from=YYYY-MM-DD&to=YYYY-MM-DD&type=BUY|SELL
func (h *HistoricalHandlers) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		api.WriteError(w, h.log, http.StatusBadRequest, err.Error(), nil)
		return
	}

	analysis, err := h.service.Analyze(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to analyze trade history")
		api.WriteError(w, h.log, http.StatusInternalServerError, "failed to analyze trade history", nil)
		return
	}

	api.WriteData(w, h.log, http.StatusOK, analysis)
}

func parseFilter(r *http.Request) (historical.Filter, error) {
	var filter historical.Filter

	if from := r.URL.Query().Get("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, err
		}
		start := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		filter.From = &start
	}

	if to := r.URL.Query().Get("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, err
		}
		// End date is inclusive: extend to end of day
		end := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, 0, time.UTC)
		filter.To = &end
	}

	if typeParam := r.URL.Query().Get("type"); typeParam != "" {
		opType, err := domain.OperationTypeFromString(typeParam)
		if err != nil {
			return filter, err
		}
		filter.OperationType = &opType
	}

	return filter, nil
}
