package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"covidboard/internal/cache"
	applog "covidboard/internal/log"
	"covidboard/internal/middleware/security"
	"covidboard/internal/middleware/trace"
	"covidboard/internal/services"
	appweb "covidboard/web"
)

const (
	cacheCleanupInterval = 10 * time.Minute
	staticMaxAge         = 3600
)

type Server struct {
	http.Server
	templates *template.Template
	dashboard *services.DashboardService
	logger    *applog.Logger

	traceMiddleware *trace.Middleware
	cacheManager    *cache.Manager
	started         time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, dashboard *services.DashboardService, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	mux := http.NewServeMux()

	s := &Server{
		dashboard:       dashboard,
		logger:          logger,
		traceMiddleware: trace.NewMiddleware(logger, trace.ClientIP),
		cacheManager:    cache.NewManager(),
		started:         time.Now(),
	}

	s.cacheManager.Register(dashboard.Charts())
	s.cacheManager.StartCleanup(cacheCleanupInterval)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/chart", s.handleChart)
	mux.HandleFunc("GET /api/summary", s.handleAPISummary)
	mux.HandleFunc("GET /api/regions", s.handleAPIRegions)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:    addr,
		Handler: headers.Middleware(s.traceMiddleware.Middleware(mux)),
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
