package http

import (
	"encoding/json"
	"net/http"

	"covidboard/internal/core"
)

// statusParam reads the status query value verbatim. Missing means All;
// anything else is left for core.ParseFilter to judge, so padded or
// mis-cased values are rejected rather than repaired.
func statusParam(r *http.Request) string {
	q := r.URL.Query()
	if !q.Has("status") {
		return string(core.FilterAll)
	}
	return q.Get("status")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// barWidth scales count against max as a rounded percentage, keeping
// non-zero bars visible.
func barWidth(count, max int) int {
	if max <= 0 || count <= 0 {
		return 0
	}
	width := (count*100 + max/2) / max
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}
