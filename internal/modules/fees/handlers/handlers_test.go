package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/modules/fees"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

type stubScheduleRepo struct {
	active       *fees.BrokerFeeSchedule
	byID         map[string]*fees.BrokerFeeSchedule
	list         []fees.BrokerFeeSchedule
	setActiveErr error
}

func (s *stubScheduleRepo) GetActive() (*fees.BrokerFeeSchedule, error) { return s.active, nil }
func (s *stubScheduleRepo) GetByBrokerID(id string) (*fees.BrokerFeeSchedule, error) {
	return s.byID[id], nil
}
func (s *stubScheduleRepo) List() ([]fees.BrokerFeeSchedule, error) { return s.list, nil }
func (s *stubScheduleRepo) Save(schedule fees.BrokerFeeSchedule) (*fees.BrokerFeeSchedule, error) {
	// Mirror the real repository's contract: invalid schedules never persist
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return &schedule, nil
}
func (s *stubScheduleRepo) SetActive(string) error { return s.setActiveErr }

func retailSchedule() fees.BrokerFeeSchedule {
	return fees.BrokerFeeSchedule{
		BrokerID: "galicia",
		Name:     "Banco Galicia",
		IsActive: true,
		Buy: fees.OperationRates{
			Percentage: decimal.RequireFromString("0.005"),
			Minimum:    decimal.NewFromInt(150),
			IVARate:    decimal.RequireFromString("0.21"),
		},
		Sell: fees.OperationRates{
			Percentage: decimal.RequireFromString("0.005"),
			Minimum:    decimal.NewFromInt(150),
			IVARate:    decimal.RequireFromString("0.21"),
		},
		Custody: fees.CustodyRates{
			ExemptAmount:      decimal.NewFromInt(1000000),
			MonthlyPercentage: decimal.RequireFromString("0.0025"),
			MonthlyMinimum:    decimal.NewFromInt(500),
			IVARate:           decimal.RequireFromString("0.21"),
		},
	}
}

func newTestRouter(repo fees.ScheduleRepositoryInterface) *chi.Mux {
	service := fees.NewService(repo, zerolog.Nop())
	handlers := NewFeesHandlers(service, zerolog.Nop())

	router := chi.NewRouter()
	handlers.RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var env envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &env))
	return recorder, env
}

func TestHandleCalculateCommission_OK(t *testing.T) {
	schedule := retailSchedule()
	router := newTestRouter(&stubScheduleRepo{active: &schedule})

	rec, env := doRequest(t, router, http.MethodPost, "/fees/commission",
		`{"type":"BUY","totalAmount":10000}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)

	var result fees.OperationCommissionResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.TotalCommission.Equal(decimal.RequireFromString("181.5")))
	assert.True(t, result.NetAmount.Equal(decimal.RequireFromString("10181.5")))
}

func TestHandleCalculateCommission_NegativeAmount(t *testing.T) {
	schedule := retailSchedule()
	router := newTestRouter(&stubScheduleRepo{active: &schedule})

	rec, env := doRequest(t, router, http.MethodPost, "/fees/commission",
		`{"type":"BUY","totalAmount":-5}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "totalAmount")
}

func TestHandleCalculateCommission_InvalidType(t *testing.T) {
	schedule := retailSchedule()
	router := newTestRouter(&stubScheduleRepo{active: &schedule})

	rec, env := doRequest(t, router, http.MethodPost, "/fees/commission",
		`{"type":"SWAP","totalAmount":10000}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestHandleCalculateCommission_MalformedBody(t *testing.T) {
	schedule := retailSchedule()
	router := newTestRouter(&stubScheduleRepo{active: &schedule})

	rec, env := doRequest(t, router, http.MethodPost, "/fees/commission", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestHandleCalculateCommission_NoActiveSchedule(t *testing.T) {
	router := newTestRouter(&stubScheduleRepo{})

	rec, env := doRequest(t, router, http.MethodPost, "/fees/commission",
		`{"type":"BUY","totalAmount":10000}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "no active fee schedule")
}

func TestHandleCalculateCustody_OK(t *testing.T) {
	schedule := retailSchedule()
	router := newTestRouter(&stubScheduleRepo{active: &schedule})

	rec, env := doRequest(t, router, http.MethodPost, "/fees/custody",
		`{"portfolioValue":2000000}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var result fees.CustodyFeeResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.IsExempt)
	assert.True(t, result.AnnualFee.Equal(decimal.NewFromInt(36300)))
}

func TestHandleProjection_OK(t *testing.T) {
	schedule := retailSchedule()
	router := newTestRouter(&stubScheduleRepo{active: &schedule})

	rec, env := doRequest(t, router, http.MethodPost, "/fees/projection",
		`{"type":"BUY","totalAmount":10000,"portfolioValueAfter":800000}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result fees.ProjectionResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.TotalFirstYearCost.Equal(decimal.RequireFromString("181.5")))
	assert.True(t, result.BreakEvenImpact.Equal(decimal.RequireFromString("1.815")))
}

func TestHandleCompare_OK(t *testing.T) {
	cheap := retailSchedule()
	cheap.BrokerID = "cheap"
	cheap.Name = "Cheap"
	cheap.Buy.Minimum = decimal.NewFromInt(100)

	costly := retailSchedule()
	costly.BrokerID = "costly"
	costly.Name = "Costly"
	costly.Buy.Minimum = decimal.NewFromInt(400)

	router := newTestRouter(&stubScheduleRepo{list: []fees.BrokerFeeSchedule{costly, cheap}})

	rec, env := doRequest(t, router, http.MethodPost, "/fees/compare",
		`{"type":"BUY","totalAmount":10000,"portfolioValue":500000}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var comparisons []fees.BrokerComparison
	require.NoError(t, json.Unmarshal(env.Data, &comparisons))
	require.Len(t, comparisons, 2)
	assert.Equal(t, "cheap", comparisons[0].Broker)
	assert.Equal(t, 1, comparisons[0].Ranking)
}

func TestHandleMinimumInvestment_NoSolution(t *testing.T) {
	schedule := retailSchedule()
	router := newTestRouter(&stubScheduleRepo{active: &schedule})

	rec, env := doRequest(t, router, http.MethodPost, "/fees/minimum-investment",
		`{"type":"BUY","thresholdPercent":0.5}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "thresholdPercent")
	assert.Contains(t, env.Error.Details, "floorPercent")
}

func TestHandleMinimumInvestment_OK(t *testing.T) {
	schedule := retailSchedule()
	router := newTestRouter(&stubScheduleRepo{active: &schedule})

	rec, env := doRequest(t, router, http.MethodPost, "/fees/minimum-investment",
		`{"type":"BUY","thresholdPercent":1}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result fees.MinimumInvestmentResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.MinimumAmount.Equal(decimal.NewFromInt(18150)))
}

func TestHandleListSchedules_EmptyIsArray(t *testing.T) {
	router := newTestRouter(&stubScheduleRepo{})

	rec, env := doRequest(t, router, http.MethodGet, "/fees/schedules", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "[]", strings.TrimSpace(string(env.Data)))
}

func TestHandleActivateSchedule_OK(t *testing.T) {
	router := newTestRouter(&stubScheduleRepo{})

	rec, env := doRequest(t, router, http.MethodPost, "/fees/schedules/galicia/activate", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestHandleActivateSchedule_UnknownBrokerIs404(t *testing.T) {
	repo := &stubScheduleRepo{
		setActiveErr: fmt.Errorf("%w: ghost", fees.ErrScheduleNotFound),
	}
	router := newTestRouter(repo)

	rec, env := doRequest(t, router, http.MethodPost, "/fees/schedules/ghost/activate", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "schedule not found", env.Error.Message)
}

func TestHandleActivateSchedule_StorageFailureIs500(t *testing.T) {
	repo := &stubScheduleRepo{setActiveErr: errors.New("disk I/O error")}
	router := newTestRouter(repo)

	rec, env := doRequest(t, router, http.MethodPost, "/fees/schedules/galicia/activate", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	// The storage cause is logged, not leaked
	assert.NotContains(t, env.Error.Message, "disk")
}

func TestHandleSaveSchedule_InvalidRates(t *testing.T) {
	router := newTestRouter(&stubScheduleRepo{})

	rec, env := doRequest(t, router, http.MethodPost, "/fees/schedules",
		`{"name":"Broken","buy":{"percentage":2,"minimum":150,"ivaRate":0.21}}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, env.Success)
}
