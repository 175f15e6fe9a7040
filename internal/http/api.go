package http

import (
	"errors"
	"net/http"

	"covidboard/internal/core"
	applog "covidboard/internal/log"
)

type summaryResponse struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Recovered int `json:"recovered"`
	Deaths    int `json:"deaths"`
}

type regionsResponse struct {
	Title  string   `json:"title"`
	Filter string   `json:"filter"`
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	sum := s.dashboard.Summary()
	writeJSON(w, http.StatusOK, summaryResponse{
		Total:     sum.Total,
		Active:    sum.Active,
		Recovered: sum.Recovered,
		Deaths:    sum.Deaths,
	})
}

func (s *Server) handleAPIRegions(w http.ResponseWriter, r *http.Request) {
	chart, err := s.dashboard.Chart(r.Context(), statusParam(r))
	if err != nil {
		if errors.Is(err, core.ErrInvalidFilter) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Chart aggregation failed", applog.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, regionsResponse{
		Title:  chart.Title,
		Filter: string(chart.Filter),
		Labels: chart.Labels(),
		Counts: chart.Counts(),
	})
}
