package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gofinances/internal/api"
	"gofinances/internal/core"
	"gofinances/internal/log"
	"gofinances/internal/middleware/ratelimit"
	"gofinances/internal/middleware/security"
	"gofinances/internal/middleware/trace"
	appweb "gofinances/web"
)

const (
	readyTimeout  = 5 * time.Second
	staticMaxAge  = 3600
	readHeaderMax = 10 * time.Second
)

// Options holds the server collaborators.
type Options struct {
	Reader    api.TransactionsReader
	Pinger    api.Pinger // optional; readiness skips the upstream check when nil
	Formatter *core.Formatter
	Logger    *log.Logger

	RateLimitPerMinute int
}

// Server serves the dashboard page and its partials.
type Server struct {
	http.Server
	templates *template.Template
	reader    api.TransactionsReader
	pinger    api.Pinger
	formatter *core.Formatter
	logger    *log.Logger

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	started time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
// Template parse failures are logged; page handlers then answer 500.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	formatter := opts.Formatter
	if formatter == nil {
		formatter = core.MustFormatter(core.DefaultFormatterConfig())
	}

	s := &Server{
		reader:    opts.Reader,
		pinger:    opts.Pinger,
		formatter: formatter,
		logger:    logger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerWindow: opts.RateLimitPerMinute,
			Window:            time.Minute,
		}),
		tracer:  trace.NewMiddleware(logger, extractClientIP),
		started: time.Now(),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderMax,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Handler)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(staticMaxAge)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	// Every dashboard request mounts a view and hits the upstream service.
	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware(extractClientIP, s.onRateLimited))
		r.Use(security.NoStore)
		r.Get("/", s.handleDashboard)
		r.Get("/ui/dashboard", s.handleDashboardPartial)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError(http.MethodGet).Write(w)
	})
	return r
}

func (s *Server) onRateLimited(r *http.Request, clientIP string) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, clientIP,
		log.FieldPath, r.URL.Path)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
