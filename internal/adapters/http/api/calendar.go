package api

import (
	"context"
	"net/http"

	"github.com/okian/eventpulse/internal/domain/types"
)

// CalendarDependencies defines the calendar sharing operations.
type CalendarDependencies interface {
	GrantCalendar(userID string) error
	RevokeCalendar(userID string) error
	AddBusy(userID string, e types.CalendarEntry) error
	AddToCalendar(ctx context.Context, userID, eventID string) (types.CalendarAddResult, error)
	CalendarEntries(userID string) []types.CalendarEntry
}

// CalendarHandler handles /users/{id}/calendar routes. Every route acts on
// the caller's own calendar.
type CalendarHandler struct {
	deps CalendarDependencies
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(deps CalendarDependencies) *CalendarHandler {
	return &CalendarHandler{deps: deps}
}

// HandleUser serves:
//
//	PUT|DELETE /users/{id}/calendar/access      grant or revoke access
//	GET|POST   /users/{id}/calendar/entries     list or share busy intervals
//	POST       /users/{id}/calendar/events/{eventId}  add an event
func (h *CalendarHandler) HandleUser(w http.ResponseWriter, r *http.Request, userID string, rest []string) {
	const op = "api.calendar"
	if len(rest) == 0 {
		http.NotFound(w, r)
		return
	}
	if !sameUser(w, r, op, userID) {
		return
	}

	switch {
	case rest[0] == "access" && len(rest) == 1:
		var err error
		switch r.Method {
		case http.MethodPut:
			err = h.deps.GrantCalendar(userID)
		case http.MethodDelete:
			err = h.deps.RevokeCalendar(userID)
		default:
			requireMethod(w, r, op, http.MethodPut, http.MethodDelete)
			return
		}
		if err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case rest[0] == "entries" && len(rest) == 1:
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, h.deps.CalendarEntries(userID))
		case http.MethodPost:
			var entry types.CalendarEntry
			if err := decodeJSON(w, r, op, &entry); err != nil {
				writeFailure(w, err)
				return
			}
			if err := h.deps.AddBusy(userID, entry); err != nil {
				writeFailure(w, Wrap(op, err))
				return
			}
			writeJSON(w, http.StatusCreated, entry)
		default:
			requireMethod(w, r, op, http.MethodGet, http.MethodPost)
		}

	case rest[0] == "events" && len(rest) == 2:
		if !requireMethod(w, r, op, http.MethodPost) {
			return
		}
		res, err := h.deps.AddToCalendar(r.Context(), userID, rest[1])
		if err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, res)

	default:
		http.NotFound(w, r)
	}
}
