package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"covidboard/internal/core"
	applog "covidboard/internal/log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.templates == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready: templates not loaded"))
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "ready\nrows: %d\n", s.dashboard.Rows())
}

// handleMetrics writes counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	tm := s.traceMiddleware.GetMetrics()

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", tm.TotalRequests)

	fmt.Fprintf(w, "# HELP http_request_duration_avg_ms Average request duration\n")
	fmt.Fprintf(w, "# TYPE http_request_duration_avg_ms gauge\n")
	fmt.Fprintf(w, "http_request_duration_avg_ms %.3f\n\n", float64(tm.AverageResponseTime.Microseconds())/1000)

	fmt.Fprintf(w, "# HELP dataset_rows Rows in the loaded table\n")
	fmt.Fprintf(w, "# TYPE dataset_rows gauge\n")
	fmt.Fprintf(w, "dataset_rows %d\n\n", s.dashboard.Rows())

	fmt.Fprintf(w, "# HELP chart_cache_entries Cached aggregation results\n")
	fmt.Fprintf(w, "# TYPE chart_cache_entries gauge\n")
	fmt.Fprintf(w, "chart_cache_entries %d\n\n", s.dashboard.CachedCharts())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.started).Seconds())
}

// handleIndex renders the full dashboard. A status query preselects the
// chart so the page also works without htmx.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	chart, err := s.dashboard.Chart(r.Context(), statusParam(r))
	if err != nil {
		if errors.Is(err, core.ErrInvalidFilter) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.ErrorContext(r.Context(), "Chart aggregation failed", applog.FieldError, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := newPageView(s.dashboard.Summary(), chart)
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		logger.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err, "template", "index.html")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleChart returns the chart partial for the dropdown's htmx request.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())
	chart, err := s.dashboard.Chart(r.Context(), statusParam(r))
	if err != nil {
		if errors.Is(err, core.ErrInvalidFilter) {
			logger.WarnContext(r.Context(), "Invalid status filter", applog.FieldError, err)
			BadRequestError("Unknown status filter").
				TriggerErrorNotification("Unknown status filter: choose one of All, Hospitalized, Recovered, Deceased").
				Write(w)
			return
		}
		logger.ErrorContext(r.Context(), "Chart aggregation failed", applog.FieldError, err)
		InternalServerError("Chart unavailable").Write(w)
		return
	}
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "chart", newChartView(chart)); err != nil {
		logger.ErrorContext(r.Context(), "Chart template execution failed", applog.FieldError, err, "template", "chart")
		InternalServerError("Chart rendering failed").Write(w)
		return
	}
	NewHTMXResponse().
		Header("Content-Type", "text/html; charset=utf-8").
		TriggerFilterChanged(chart.Filter, chart.Rows).
		Body(buf.Bytes()).
		Write(w)
}
