package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/api"
	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/database"
)

// SystemHandlers provides system status endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	configDB  *database.DB
	ledgerDB  *database.DB
	startedAt time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, configDB, ledgerDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		configDB:  configDB,
		ledgerDB:  ledgerDB,
		startedAt: time.Now(),
	}
}

// DatabaseStatus is the per-database slice of the system status
type DatabaseStatus struct {
	Name         string `json:"name"`
	OK           bool   `json:"ok"`
	SizeBytes    int64  `json:"sizeBytes"`
	WALSizeBytes int64  `json:"walSizeBytes"`
	PageCount    int64  `json:"pageCount"`
}

// SystemStatusResponse is the system status payload
type SystemStatusResponse struct {
	UptimeSeconds int64            `json:"uptimeSeconds"`
	CPUPercent    float64          `json:"cpuPercent"`
	RAMPercent    float64          `json:"ramPercent"`
	Databases     []DatabaseStatus `json:"databases"`
}

// HandleSystemStatus reports process and database health
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, ramPct := h.getSystemStats()

	response := SystemStatusResponse{
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPct,
		RAMPercent:    ramPct,
		Databases: []DatabaseStatus{
			h.databaseStatus(r.Context(), h.configDB),
			h.databaseStatus(r.Context(), h.ledgerDB),
		},
	}

	api.WriteData(w, h.log, http.StatusOK, response)
}

func (h *SystemHandlers) databaseStatus(ctx context.Context, db *database.DB) DatabaseStatus {
	status := DatabaseStatus{Name: db.Name()}

	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	status.OK = db.QuickCheck(checkCtx) == nil

	stats, err := db.GetStats()
	if err != nil {
		h.log.Warn().Err(err).Str("db", db.Name()).Msg("Failed to get database stats")
		return status
	}

	status.SizeBytes = stats.SizeBytes
	status.WALSizeBytes = stats.WALSizeBytes
	status.PageCount = stats.PageCount
	return status
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short interval (100ms) so the status endpoint stays responsive
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
