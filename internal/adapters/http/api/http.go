// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/okian/eventpulse/internal/adapters/repository"
	"github.com/okian/eventpulse/internal/adapters/ticketing"
	service "github.com/okian/eventpulse/internal/app"
	"github.com/okian/eventpulse/internal/domain/filter"
	"github.com/okian/eventpulse/internal/domain/personality"
	"github.com/okian/eventpulse/internal/domain/scoring"
	"github.com/okian/eventpulse/internal/importer"
	"github.com/okian/eventpulse/pkg/logger"
)

// userHeader carries the caller's identity. Authentication happens upstream.
const userHeader = "X-User-ID"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider
	ViewDependencies
	EventDependencies
	PersonalityDependencies
	SessionDependencies
	CalendarDependencies
	ImportDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	viewHandler        *ViewHandler
	eventsHandler      *EventsHandler
	personalityHandler *PersonalityHandler
	sessionsHandler    *SessionsHandler
	calendarHandler    *CalendarHandler
	importHandler      *ImportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		viewHandler:        NewViewHandler(deps),
		eventsHandler:      NewEventsHandler(deps),
		personalityHandler: NewPersonalityHandler(deps),
		sessionsHandler:    NewSessionsHandler(deps),
		calendarHandler:    NewCalendarHandler(deps),
		importHandler:      NewImportHandler(deps, log),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/view", MetricsMiddleware(s.viewHandler.HandleView, "view"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleCollection, "events"))
	mux.HandleFunc("/events/", MetricsMiddleware(s.eventsHandler.HandleItem, "event"))
	mux.HandleFunc("/quiz", MetricsMiddleware(s.personalityHandler.HandleQuiz, "quiz"))
	mux.HandleFunc("/users/", MetricsMiddleware(s.routeUser, "users"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleCollection, "sessions"))
	mux.HandleFunc("/sessions/", MetricsMiddleware(s.sessionsHandler.HandleItem, "session"))
	mux.HandleFunc("/admin/import", MetricsMiddleware(s.importHandler.HandleImport, "import"))
}

// routeUser dispatches /users/{id}/personality... and /users/{id}/calendar...
func (s *Server) routeUser(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/users/")
	if len(parts) < 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	userID, rest := parts[0], parts[1:]
	switch rest[0] {
	case "personality":
		s.personalityHandler.HandleUser(w, r, userID, rest[1:])
	case "calendar":
		s.calendarHandler.HandleUser(w, r, userID, rest[1:])
	default:
		http.NotFound(w, r)
	}
}

// pathParts splits the path below prefix into its segments.
func pathParts(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps an error to its status code and writes it.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// classify maps error kinds from every layer to a status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, service.ErrMissingUser):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, ErrForbidden), errors.Is(err, repository.ErrForbidden),
		errors.Is(err, scoring.ErrPermissionDenied):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidEvent),
		errors.Is(err, service.ErrInvalidCriteria), errors.Is(err, filter.ErrInvalidRange),
		errors.Is(err, personality.ErrInvalidMBTI), errors.Is(err, personality.ErrInvalidAnswers):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrImportDisabled):
		return http.StatusNotImplemented, "not_configured"
	case errors.Is(err, ErrUnavailable), errors.Is(err, ticketing.ErrUnavailable),
		errors.Is(err, importer.ErrFetch):
		return http.StatusBadGateway, "upstream_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeJSON reads a bounded JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return WrapKind(op, ErrBadRequest, fmt.Errorf("decode body: %w", err))
	}
	if err := ValidateStruct(dst); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// requireMethod writes 405 and returns false unless r uses one of methods.
func requireMethod(w http.ResponseWriter, r *http.Request, op string, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeFailure(w, NewKind(op, ErrMethodNotAllowed))
	return false
}

// requesterID returns the caller identity from the X-User-ID header.
func requesterID(r *http.Request, op string) (string, error) {
	id := strings.TrimSpace(r.Header.Get(userHeader))
	if id == "" {
		return "", NewKind(op, ErrUnauthenticated)
	}
	return id, nil
}
