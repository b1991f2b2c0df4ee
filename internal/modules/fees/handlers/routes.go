package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all fees routes
func (h *FeesHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/fees", func(r chi.Router) {
		r.Get("/schedules", h.HandleListSchedules)                        // List rate cards
		r.Post("/schedules", h.HandleSaveSchedule)                        // Save (upsert) a rate card
		r.Post("/schedules/{brokerID}/activate", h.HandleActivateSchedule) // Flip the active rate card

		r.Post("/commission", h.HandleCalculateCommission)         // Single-operation commission
		r.Post("/custody", h.HandleCalculateCustody)               // Custody fee for a portfolio value
		r.Post("/projection", h.HandleProjection)                  // First-year cost + break-even impact
		r.Post("/compare", h.HandleCompare)                        // Rank all rate cards
		r.Post("/minimum-investment", h.HandleMinimumInvestment)   // Inverse solve for trade size
	})
}
