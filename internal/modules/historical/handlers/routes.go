package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trade history routes
func (h *HistoricalHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/trades", func(r chi.Router) {
		r.Get("/", h.HandleGetTrades)          // Trade history
		r.Post("/", h.HandleRecordTrade)       // Record an executed trade
		r.Get("/analysis", h.HandleAnalysis)   // Commission analysis
	})
}
