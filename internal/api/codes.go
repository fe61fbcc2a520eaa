package api

import (
	"net/http"

	"github.com/meur/unitvalues/internal/models"
)

// handleGetCodes returns redemption codes grouped by status
func (s *Server) handleGetCodes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.GroupCodes(s.codes))
}
