package http

import (
	"net/http"
)

// DefaultAnalyticsDays is the reporting window when none is given.
const DefaultAnalyticsDays = 30

func (s *Server) handleUserAnalytics(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", DefaultAnalyticsDays, 1, 365)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	a, err := s.MetricService.UserAnalytics(r.Context(), userID(r), days)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleSystemAnalytics(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", DefaultAnalyticsDays, 1, 365)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	a, err := s.MetricService.SystemAnalytics(r.Context(), days)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
