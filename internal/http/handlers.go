package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gofinances/internal/log"
	"gofinances/internal/view"
)

// mount runs one view lifecycle for the request. ok is false when the
// client went away before the load finished; nothing should be written then.
func (s *Server) mount(r *http.Request) (v *view.TransactionsView, ok bool) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	v = view.New(s.reader, s.formatter, logger)
	err := v.Mount(ctx)
	v.Unmount()
	if err != nil && ctx.Err() != nil {
		logger.DebugContext(ctx, "Client left before dashboard load completed",
			log.FieldOperation, log.OpMount,
			log.FieldError, ctx.Err())
		return nil, false
	}
	return v, true
}

// handleDashboard renders the full page. Load failures are part of the
// page as an error state.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	v, ok := s.mount(r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := v.RenderPage(&buf, s.templates); err != nil {
		log.LogError(r.Context(), log.FromContext(r.Context()), "Dashboard page render failed", err, log.ErrorTypeInternal, log.OpRender)
		InternalServerError("Erro ao renderizar a página").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(buf.Bytes()).Write(w)
}

// handleDashboardPartial re-mounts the view for htmx swaps and reports the
// outcome as an HX-Trigger event.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	v, ok := s.mount(r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := v.Render(&buf, s.templates); err != nil {
		log.LogError(r.Context(), log.FromContext(r.Context()), "Dashboard partial render failed", err, log.ErrorTypeInternal, log.OpRender)
		InternalServerError("Erro ao renderizar a página").Write(w)
		return
	}

	DashboardFragment(buf.Bytes(), v.State()).Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.pinger == nil:
		checks["transactions_api"] = "not_configured"
	default:
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			checks["transactions_api"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["transactions_api"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides request metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	m := s.tracer.GetMetrics()
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", m.TotalRequests)

	fmt.Fprintf(w, "# HELP http_requests_failed_total Requests answered with status >= 400\n")
	fmt.Fprintf(w, "# TYPE http_requests_failed_total counter\n")
	fmt.Fprintf(w, "http_requests_failed_total %d\n\n", m.FailedRequests)

	fmt.Fprintf(w, "# HELP http_response_time_microseconds Average response time\n")
	fmt.Fprintf(w, "# TYPE http_response_time_microseconds gauge\n")
	fmt.Fprintf(w, "http_response_time_microseconds %d\n\n", m.AverageResponseTime)

	fmt.Fprintf(w, "# HELP rate_limit_active_clients Clients tracked by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_active_clients gauge\n")
	fmt.Fprintf(w, "rate_limit_active_clients %d\n\n", s.limiter.ActiveClients())

	fmt.Fprintf(w, "# HELP uptime_seconds Seconds since the server started\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.started).Seconds())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
