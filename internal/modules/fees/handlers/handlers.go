// Package handlers provides HTTP handlers for the fee calculation API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/api"
	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/domain"
	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/modules/fees"
)

// FeesHandlers contains HTTP handlers for the fees API
type FeesHandlers struct {
	log     zerolog.Logger
	service *fees.Service
}

// NewFeesHandlers creates a new fees handlers instance
func NewFeesHandlers(service *fees.Service, log zerolog.Logger) *FeesHandlers {
	return &FeesHandlers{
		service: service,
		log:     log.With().Str("handler", "fees").Logger(),
	}
}

// Request shapes. Rates and amounts arrive as JSON decimal numbers;
// fractional 0..1 rates only - percent-to-fraction conversion is the
// caller's job. thresholdPercent is the one field expressed in percent.

type commissionRequest struct {
	Type        string          `json:"type"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	BrokerID    string          `json:"brokerId"`
}

type custodyRequest struct {
	PortfolioValue decimal.Decimal `json:"portfolioValue"`
	BrokerID       string          `json:"brokerId"`
}

type projectionRequest struct {
	Type                string          `json:"type"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	PortfolioValueAfter decimal.Decimal `json:"portfolioValueAfter"`
	BrokerID            string          `json:"brokerId"`
}

type compareRequest struct {
	Type           string          `json:"type"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PortfolioValue decimal.Decimal `json:"portfolioValue"`
}

type minimumInvestmentRequest struct {
	ThresholdPercent decimal.Decimal `json:"thresholdPercent"`
	Type             string          `json:"type"`
	BrokerID         string          `json:"brokerId"`
}

// HandleCalculateCommission computes the commission for one operation
// POST /api/fees/commission
func (h *FeesHandlers) HandleCalculateCommission(w http.ResponseWriter, r *http.Request) {
	var req commissionRequest
	if !h.decode(w, r, &req) {
		return
	}

	opType, err := domain.OperationTypeFromString(req.Type)
	if err != nil {
		api.WriteError(w, h.log, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := h.service.CalculateCommission(opType, req.TotalAmount, req.BrokerID)
	if err != nil {
		api.WriteEngineError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, http.StatusOK, result)
}

// HandleCalculateCustody computes the custody fee for a portfolio value
// POST /api/fees/custody
func (h *FeesHandlers) HandleCalculateCustody(w http.ResponseWriter, r *http.Request) {
	var req custodyRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.CalculateCustody(req.PortfolioValue, req.BrokerID)
	if err != nil {
		api.WriteEngineError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, http.StatusOK, result)
}

// HandleProjection computes first-year cost and break-even impact
// POST /api/fees/projection
func (h *FeesHandlers) HandleProjection(w http.ResponseWriter, r *http.Request) {
	var req projectionRequest
	if !h.decode(w, r, &req) {
		return
	}

	opType, err := domain.OperationTypeFromString(req.Type)
	if err != nil {
		api.WriteError(w, h.log, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := h.service.Project(opType, req.TotalAmount, req.PortfolioValueAfter, req.BrokerID)
	if err != nil {
		api.WriteEngineError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, http.StatusOK, result)
}

// HandleCompare ranks every stored schedule for the same operation
// POST /api/fees/compare
func (h *FeesHandlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !h.decode(w, r, &req) {
		return
	}

	opType, err := domain.OperationTypeFromString(req.Type)
	if err != nil {
		api.WriteError(w, h.log, http.StatusBadRequest, err.Error(), nil)
		return
	}

	comparisons, err := h.service.CompareBrokers(opType, req.TotalAmount, req.PortfolioValue)
	if err != nil {
		api.WriteEngineError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, http.StatusOK, comparisons)
}

// HandleMinimumInvestment solves the minimum trade size for a commission %
// POST /api/fees/minimum-investment
func (h *FeesHandlers) HandleMinimumInvestment(w http.ResponseWriter, r *http.Request) {
	var req minimumInvestmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	opType, err := domain.OperationTypeFromString(req.Type)
	if err != nil {
		api.WriteError(w, h.log, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := h.service.SolveMinimumInvestment(req.ThresholdPercent, opType, req.BrokerID)
	if err != nil {
		api.WriteEngineError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, http.StatusOK, result)
}

// HandleListSchedules lists all stored fee schedules
// GET /api/fees/schedules
func (h *FeesHandlers) HandleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.service.Schedules()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list schedules")
		api.WriteError(w, h.log, http.StatusInternalServerError, "failed to list schedules", nil)
		return
	}

	if schedules == nil {
		schedules = []fees.BrokerFeeSchedule{}
	}
	api.WriteData(w, h.log, http.StatusOK, schedules)
}

// HandleSaveSchedule validates and upserts a fee schedule
// POST /api/fees/schedules
func (h *FeesHandlers) HandleSaveSchedule(w http.ResponseWriter, r *http.Request) {
	var schedule fees.BrokerFeeSchedule
	if !h.decode(w, r, &schedule) {
		return
	}

	saved, err := h.service.SaveSchedule(schedule)
	if err != nil {
		api.WriteEngineError(w, h.log, err)
		return
	}

	api.WriteData(w, h.log, http.StatusCreated, saved)
}

// HandleActivateSchedule flips the active schedule
// POST /api/fees/schedules/{brokerID}/activate
func (h *FeesHandlers) HandleActivateSchedule(w http.ResponseWriter, r *http.Request) {
	brokerID := chi.URLParam(r, "brokerID")
	if brokerID == "" {
		api.WriteError(w, h.log, http.StatusBadRequest, "missing broker id", nil)
		return
	}

	if err := h.service.ActivateSchedule(brokerID); err != nil {
		if errors.Is(err, fees.ErrScheduleNotFound) {
			api.WriteError(w, h.log, http.StatusNotFound, "schedule not found", nil)
			return
		}
		h.log.Error().Err(err).Str("broker_id", brokerID).Msg("Failed to activate schedule")
		api.WriteError(w, h.log, http.StatusInternalServerError, "failed to activate schedule", nil)
		return
	}

	api.WriteData(w, h.log, http.StatusOK, map[string]string{"activated": brokerID})
}

// decode parses the JSON body, writing a 400 envelope on failure
func (h *FeesHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.WriteError(w, h.log, http.StatusBadRequest, "invalid request body", map[string]string{
			"reason": err.Error(),
		})
		return false
	}
	return true
}
