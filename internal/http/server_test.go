package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"covidboard/internal/core"
	applog "covidboard/internal/log"
	"covidboard/internal/services"
)

func testTable() *core.Table {
	return core.NewTable([]core.Record{
		{Status: core.Hospitalized, State: "Kerala"},
		{Status: core.Recovered, State: "Kerala"},
		{Status: core.Hospitalized, State: "Delhi"},
		{Status: core.Deceased, State: "Maharashtra"},
		{Status: core.Hospitalized, State: "Kerala"},
	})
}

func newTestServer(t *testing.T, table *core.Table) *Server {
	t.Helper()
	svc := services.NewDashboardService(table, nil, services.Options{CacheSize: 8, CacheTTL: time.Minute})
	logger := applog.New(applog.Config{Level: slog.LevelError, Output: io.Discard})
	srv := NewServer(":0", svc, logger)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		_ = svc.Close()
	})
	return srv
}

func do(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(t, testTable())

	rr := do(t, srv, http.MethodGet, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{
		"Corona Virus Pandemic",
		"Total Cases", "Active Cases", "Recovered", "Deaths",
		`<p class="card__value">5</p>`,
		`<p class="card__value">3</p>`,
		"State Total Count",
		`hx-get="/ui/chart"`,
		`<option value="All" selected>All</option>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("missing X-Request-ID")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("missing security headers")
	}

	rr = do(t, srv, http.MethodGet, "/healthz")
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz status=%d body=%q", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodGet, "/readyz")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "rows: 5") {
		t.Fatalf("readyz status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestIndexPreselectsStatus(t *testing.T) {
	srv := newTestServer(t, testTable())

	rr := do(t, srv, http.MethodGet, "/?status=Recovered")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `<option value="Recovered" selected>Recovered</option>`) {
		t.Fatalf("Recovered not selected")
	}

	rr = do(t, srv, http.MethodGet, "/?status=bogus")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid status code=%d", rr.Code)
	}
}

func TestUnknownPathAndMethod(t *testing.T) {
	srv := newTestServer(t, testTable())

	if rr := do(t, srv, http.MethodGet, "/nope"); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path code=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/ui/chart"); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST code=%d", rr.Code)
	}
}

func TestChartPartial(t *testing.T) {
	srv := newTestServer(t, testTable())

	tests := []struct {
		name    string
		target  string
		code    int
		want    []string
		notWant []string
	}{
		{
			name:   "default is All",
			target: "/ui/chart",
			code:   http.StatusOK,
			want:   []string{"State Total Count", `data-filter="All"`, "Kerala", "Delhi", "Maharashtra", "width: 100%"},
		},
		{
			name:    "hospitalized",
			target:  "/ui/chart?status=Hospitalized",
			code:    http.StatusOK,
			want:    []string{`data-filter="Hospitalized"`, `data-rows="3"`, "Kerala", "Delhi"},
			notWant: []string{"Maharashtra"},
		},
		{
			name:   "empty subset",
			target: "/ui/chart?status=Deceased",
			code:   http.StatusOK,
			want:   []string{"Maharashtra"},
		},
		{
			name:   "case sensitive",
			target: "/ui/chart?status=recovered",
			code:   http.StatusBadRequest,
			want:   []string{`class="error"`},
		},
		{
			name:   "padded value",
			target: "/ui/chart?status=%20Recovered%20",
			code:   http.StatusBadRequest,
			want:   []string{`class="error"`},
		},
		{
			name:   "control character",
			target: "/ui/chart?status=Reco%01vered",
			code:   http.StatusBadRequest,
			want:   []string{`class="error"`},
		},
		{
			name:   "trailing tab",
			target: "/ui/chart?status=Recovered%09",
			code:   http.StatusBadRequest,
			want:   []string{`class="error"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, tt.target)
			if rr.Code != tt.code {
				t.Fatalf("code=%d want %d body=%s", rr.Code, tt.code, rr.Body.String())
			}
			body := rr.Body.String()
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("body missing %q: %s", w, body)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(body, w) {
					t.Errorf("body unexpectedly contains %q", w)
				}
			}
		})
	}
}

func TestChartPartialTriggersFilterChanged(t *testing.T) {
	srv := newTestServer(t, testTable())

	rr := do(t, srv, http.MethodGet, "/ui/chart?status=Recovered")
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"filter:changed"`) || !strings.Contains(trigger, `"filter":"Recovered"`) {
		t.Fatalf("HX-Trigger=%q", trigger)
	}
}

func TestChartPartialNoMatches(t *testing.T) {
	srv := newTestServer(t, core.NewTable([]core.Record{{Status: core.Hospitalized, State: "Goa"}}))

	rr := do(t, srv, http.MethodGet, "/ui/chart?status=Deceased")
	if rr.Code != http.StatusOK {
		t.Fatalf("code=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No cases for Deceased") {
		t.Fatalf("missing empty placeholder: %s", rr.Body.String())
	}
}

func TestAPISummary(t *testing.T) {
	srv := newTestServer(t, testTable())

	rr := do(t, srv, http.MethodGet, "/api/summary")
	if rr.Code != http.StatusOK {
		t.Fatalf("code=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type=%q", ct)
	}
	var got summaryResponse
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := summaryResponse{Total: 5, Active: 3, Recovered: 1, Deaths: 1}
	if got != want {
		t.Fatalf("summary=%+v want %+v", got, want)
	}
}

func TestAPIRegions(t *testing.T) {
	srv := newTestServer(t, testTable())

	tests := []struct {
		name   string
		target string
		code   int
		labels []string
		counts []int
	}{
		{"all", "/api/regions", http.StatusOK, []string{"Kerala", "Delhi", "Maharashtra"}, []int{3, 1, 1}},
		{"hospitalized", "/api/regions?status=Hospitalized", http.StatusOK, []string{"Kerala", "Delhi"}, []int{2, 1}},
		{"recovered", "/api/regions?status=Recovered", http.StatusOK, []string{"Kerala"}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, tt.target)
			if rr.Code != tt.code {
				t.Fatalf("code=%d", rr.Code)
			}
			var got regionsResponse
			if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Title != core.ChartTitle {
				t.Errorf("title=%q", got.Title)
			}
			if strings.Join(got.Labels, ",") != strings.Join(tt.labels, ",") {
				t.Errorf("labels=%v want %v", got.Labels, tt.labels)
			}
			if len(got.Counts) != len(tt.counts) {
				t.Fatalf("counts=%v want %v", got.Counts, tt.counts)
			}
			for i := range tt.counts {
				if got.Counts[i] != tt.counts[i] {
					t.Errorf("counts=%v want %v", got.Counts, tt.counts)
				}
			}
		})
	}
}

func TestAPIRegionsEmptyAndInvalid(t *testing.T) {
	srv := newTestServer(t, core.NewTable(nil))

	rr := do(t, srv, http.MethodGet, "/api/regions?status=Deceased")
	if rr.Code != http.StatusOK {
		t.Fatalf("code=%d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); !strings.Contains(body, `"labels":[]`) || !strings.Contains(body, `"counts":[]`) {
		t.Fatalf("empty result must encode empty arrays: %s", body)
	}

	for _, status := range []string{"Unknown", "%20Recovered%20", "Reco%01vered", "Recovered%09", "", "all"} {
		rr = do(t, srv, http.MethodGet, "/api/regions?status="+status)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status=%q code=%d", status, rr.Code)
		}
		var e errorResponse
		if err := json.NewDecoder(rr.Body).Decode(&e); err != nil || !strings.Contains(e.Error, "invalid filter") {
			t.Fatalf("status=%q error body=%+v err=%v", status, e, err)
		}
	}
}

func TestMetricsAndStatic(t *testing.T) {
	srv := newTestServer(t, testTable())
	do(t, srv, http.MethodGet, "/api/regions")

	rr := do(t, srv, http.MethodGet, "/metrics")
	body := rr.Body.String()
	for _, want := range []string{"http_requests_total 1", "dataset_rows 5", "chart_cache_entries 1"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q:\n%s", want, body)
		}
	}

	rr = do(t, srv, http.MethodGet, "/static/app.css")
	if rr.Code != http.StatusOK {
		t.Fatalf("static code=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Cache-Control"), "max-age=3600") {
		t.Fatalf("Cache-Control=%q", rr.Header().Get("Cache-Control"))
	}
}
