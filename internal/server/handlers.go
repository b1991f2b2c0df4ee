package server

import (
	"net/http"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/api"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.WriteData(w, s.log, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "cedears-manager",
	})
}
