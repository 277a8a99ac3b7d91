package api

import (
	"context"
	"net/http"

	"github.com/okian/eventpulse/internal/domain/types"
)

// SessionDependencies defines the long-lived view session operations.
type SessionDependencies interface {
	CreateSession(ctx context.Context, req types.SessionRequest) (types.Session, error)
	GetSession(ctx context.Context, id string) (types.Session, error)
	UpdateSession(ctx context.Context, id string, req types.SessionRequest) (types.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// SessionsHandler handles /sessions routes.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleCollection handles POST /sessions. The session belongs to the
// X-User-ID caller when the body names no user.
func (h *SessionsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	if !requireMethod(w, r, op, http.MethodPost) {
		return
	}
	var req types.SessionRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if req.UserID == "" {
		req.UserID = r.Header.Get(userHeader)
	}
	sess, err := h.deps.CreateSession(r.Context(), req)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sess)
}

// HandleItem handles GET, PUT and DELETE /sessions/{id}.
func (h *SessionsHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.session"
	parts := pathParts(r.URL.Path, "/sessions/")
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	switch r.Method {
	case http.MethodGet:
		sess, err := h.deps.GetSession(r.Context(), id)
		if err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, sess)
	case http.MethodPut:
		var req types.SessionRequest
		if err := decodeJSON(w, r, op, &req); err != nil {
			writeFailure(w, err)
			return
		}
		sess, err := h.deps.UpdateSession(r.Context(), id, req)
		if err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, sess)
	case http.MethodDelete:
		if err := h.deps.DeleteSession(r.Context(), id); err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		requireMethod(w, r, op, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
