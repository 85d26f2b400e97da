// Package http provides the dashboard HTTP server and its handlers.
//
// This file implements a builder for htmx responses: HX-Trigger events plus
// a status and body.
package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"gofinances/internal/view"
)

// HTMXResponseBuilder provides a fluent API for building htmx responses.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerDashboardLoaded reports a successful load with its row count.
func (b *HTMXResponseBuilder) TriggerDashboardLoaded(rows int) *HTMXResponseBuilder {
	return b.Trigger("dashboard:loaded", map[string]int{"rows": rows})
}

// TriggerDashboardFailed reports a failed load with a user-facing message.
func (b *HTMXResponseBuilder) TriggerDashboardFailed(message string) *HTMXResponseBuilder {
	return b.Trigger("dashboard:failed", map[string]string{"message": message})
}

// DashboardFragment wraps a rendered view fragment and reports the state it
// was rendered from. htmx only swaps 2xx responses, so a failed load stays
// 200 and carries the error state in the body.
func DashboardFragment(html []byte, st view.State) *HTMXResponseBuilder {
	b := NewHTMXResponse().BodyHTML(html)
	if st.Err != nil {
		return b.TriggerDashboardFailed(view.UserMessage(st.Err))
	}
	return b.TriggerDashboardLoaded(len(st.Dashboard.Transactions))
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html []byte) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = html
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates an error response with an escaped HTML message.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML([]byte(`<div class="error">` + escapedMsg + `</div>`))
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func MethodNotAllowedError(allowedMethods string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}
