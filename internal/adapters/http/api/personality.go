package api

import (
	"context"
	"net/http"

	"github.com/okian/eventpulse/internal/domain/personality"
	"github.com/okian/eventpulse/internal/domain/types"
)

// PersonalityDependencies defines the profile operations.
type PersonalityDependencies interface {
	Quiz() []personality.Statement
	Profile(ctx context.Context, userID string) (*personality.Profile, error)
	SubmitQuiz(ctx context.Context, userID string, answers []bool) (*personality.Profile, error)
	SetManualProfile(ctx context.Context, userID, code string) (*personality.Profile, error)
	ResetProfile(ctx context.Context, userID string) error
}

// PersonalityHandler handles the quiz and profile routes.
type PersonalityHandler struct {
	deps PersonalityDependencies
}

// NewPersonalityHandler creates a new personality handler.
func NewPersonalityHandler(deps PersonalityDependencies) *PersonalityHandler {
	return &PersonalityHandler{deps: deps}
}

// HandleQuiz handles GET /quiz.
func (h *PersonalityHandler) HandleQuiz(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, "api.quiz", http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Quiz())
}

// HandleUser serves /users/{id}/personality, .../quiz and .../manual. Writes
// are only accepted from the user themself.
func (h *PersonalityHandler) HandleUser(w http.ResponseWriter, r *http.Request, userID string, rest []string) {
	const op = "api.personality"
	sub := ""
	if len(rest) == 1 {
		sub = rest[0]
	} else if len(rest) > 1 {
		http.NotFound(w, r)
		return
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			p, err := h.deps.Profile(r.Context(), userID)
			if err != nil {
				writeFailure(w, Wrap(op, err))
				return
			}
			writeJSON(w, http.StatusOK, types.ProfileResponse{UserID: userID, Profile: p})
		case http.MethodDelete:
			if !sameUser(w, r, op, userID) {
				return
			}
			if err := h.deps.ResetProfile(r.Context(), userID); err != nil {
				writeFailure(w, Wrap(op, err))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			requireMethod(w, r, op, http.MethodGet, http.MethodDelete)
		}
	case "quiz":
		if !requireMethod(w, r, op, http.MethodPost) || !sameUser(w, r, op, userID) {
			return
		}
		var req types.QuizRequest
		if err := decodeJSON(w, r, op, &req); err != nil {
			writeFailure(w, err)
			return
		}
		h.reply(w, op, userID)(h.deps.SubmitQuiz(r.Context(), userID, req.Answers))
	case "manual":
		if !requireMethod(w, r, op, http.MethodPut) || !sameUser(w, r, op, userID) {
			return
		}
		var req types.ManualPersonalityRequest
		if err := decodeJSON(w, r, op, &req); err != nil {
			writeFailure(w, err)
			return
		}
		h.reply(w, op, userID)(h.deps.SetManualProfile(r.Context(), userID, req.MBTI))
	default:
		http.NotFound(w, r)
	}
}

func (h *PersonalityHandler) reply(w http.ResponseWriter, op, userID string) func(*personality.Profile, error) {
	return func(p *personality.Profile, err error) {
		if err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, types.ProfileResponse{UserID: userID, Profile: p})
	}
}

// sameUser writes an error and returns false unless the X-User-ID header
// names userID.
func sameUser(w http.ResponseWriter, r *http.Request, op, userID string) bool {
	requester, err := requesterID(r, op)
	if err != nil {
		writeFailure(w, err)
		return false
	}
	if requester != userID {
		writeFailure(w, NewKind(op, ErrForbidden))
		return false
	}
	return true
}
