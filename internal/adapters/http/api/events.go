package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/eventpulse/internal/domain/types"
)

// EventDependencies defines the interface for event operations.
type EventDependencies interface {
	CreateEvent(ctx context.Context, userID string, req types.CreateEventRequest) (types.Event, error)
	GetEvent(ctx context.Context, id string, q types.EventQuery) (types.ScoredEvent, error)
	DeleteEvent(ctx context.Context, id, userID string) error
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleCollection handles POST /events.
func (h *EventsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_event"
	if !requireMethod(w, r, op, http.MethodPost) {
		return
	}
	userID, err := requesterID(r, op)
	if err != nil {
		writeFailure(w, err)
		return
	}
	var req types.CreateEventRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	ev, err := h.deps.CreateEvent(r.Context(), userID, req)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/events/"+ev.ID)
	writeJSON(w, http.StatusCreated, ev)
}

// HandleItem handles GET and DELETE /events/{id}.
func (h *EventsHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.event"
	parts := pathParts(r.URL.Path, "/events/")
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	switch r.Method {
	case http.MethodGet:
		loc, err := parseLocation(r.URL.Query())
		if err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		q := types.EventQuery{UserID: strings.TrimSpace(r.URL.Query().Get("user_id")), Location: loc}
		if q.UserID == "" {
			q.UserID = strings.TrimSpace(r.Header.Get(userHeader))
		}
		ev, err := h.deps.GetEvent(r.Context(), id, q)
		if err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, ev)
	case http.MethodDelete:
		userID, err := requesterID(r, op)
		if err != nil {
			writeFailure(w, err)
			return
		}
		if err := h.deps.DeleteEvent(r.Context(), id, userID); err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		requireMethod(w, r, op, http.MethodGet, http.MethodDelete)
	}
}
