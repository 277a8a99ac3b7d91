package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/eventpulse/internal/domain/filter"
	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/personality"
	"github.com/okian/eventpulse/internal/domain/scoring"
	"github.com/okian/eventpulse/internal/domain/types"
	"github.com/okian/eventpulse/pkg/logger"
	"github.com/okian/eventpulse/pkg/metrics"
)

// session is a long-lived view whose inputs change over time. Every change
// bumps generation; an asynchronous recommendation result is kept only if
// the generation it was started for is still current.
type session struct {
	mu sync.Mutex

	id       string
	userID   string
	loc      *model.Coordinate
	criteria filter.Criteria
	profile  *personality.Profile

	generation uint64
	view       model.ViewModel
	pending    bool
	touched    time.Time
}

// CreateSession starts a session for req. The user's profile is loaded once
// and kept current by the profile operations.
func (s *Service) CreateSession(ctx context.Context, req types.SessionRequest) (types.Session, error) {
	sess := &session{id: uuid.NewString(), userID: strings.TrimSpace(req.UserID)}
	if err := applyRequest(sess, req); err != nil {
		return types.Session{}, err
	}
	p, err := s.Profile(ctx, sess.userID)
	if err != nil {
		return types.Session{}, err
	}
	sess.profile = p
	sess.touched = s.now()

	s.sessMu.Lock()
	s.sessions[sess.id] = sess
	n := len(s.sessions)
	s.sessMu.Unlock()
	metrics.UpdateActiveSessions(n)
	s.logger.Debug(ctx, "session created", logger.String("session_id", sess.id), logger.String("user_id", sess.userID))

	s.refresh(sess)
	return sess.snapshot(), nil
}

// GetSession returns the current state of a session.
func (s *Service) GetSession(_ context.Context, id string) (types.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return types.Session{}, err
	}
	return sess.snapshot(), nil
}

// UpdateSession applies changed inputs and recomputes the view.
func (s *Service) UpdateSession(ctx context.Context, id string, req types.SessionRequest) (types.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return types.Session{}, err
	}
	sess.mu.Lock()
	err = applyRequest(sess, req)
	sess.mu.Unlock()
	if err != nil {
		return types.Session{}, err
	}
	s.logger.Debug(ctx, "session updated", logger.String("session_id", id))
	s.refresh(sess)
	return sess.snapshot(), nil
}

// DeleteSession ends a session.
func (s *Service) DeleteSession(_ context.Context, id string) error {
	s.sessMu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.sessMu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	metrics.UpdateActiveSessions(n)
	return nil
}

func (s *Service) lookup(id string) (*session, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.mu.Lock()
	sess.touched = s.now()
	sess.mu.Unlock()
	return sess, nil
}

// applyRequest copies the set fields of req into sess. Caller holds sess.mu
// or owns sess exclusively.
func applyRequest(sess *session, req types.SessionRequest) error {
	r := sess.criteria.Range
	if req.Range != nil {
		parsed, err := filter.ParseDateRange(*req.Range)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCriteria, err)
		}
		r = parsed
	}
	if req.RadiusKm != nil && *req.RadiusKm <= 0 {
		return fmt.Errorf("%w: radius must be positive", ErrInvalidCriteria)
	}
	if req.Location != nil {
		lat, lng := req.Location.Latitude, req.Location.Longitude
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return fmt.Errorf("%w: coordinates out of range", ErrInvalidCriteria)
		}
	}

	sess.criteria.Range = r
	switch {
	case req.ClearLocation:
		sess.loc = nil
	case req.Location != nil:
		sess.loc = &model.Coordinate{Latitude: req.Location.Latitude, Longitude: req.Location.Longitude}
	}
	switch {
	case req.ClearRadius:
		sess.criteria.RadiusKm = nil
	case req.RadiusKm != nil:
		km := *req.RadiusKm
		sess.criteria.RadiusKm = &km
	}
	if req.Categories != nil {
		sess.criteria.Categories = append([]string(nil), (*req.Categories)...)
	}
	if req.Search != nil {
		sess.criteria.Search = *req.Search
	}
	return nil
}

// refresh recomputes the session view from the latest snapshot. The display
// part is synchronous; recommendations follow asynchronously because they
// consult the user's calendar.
func (s *Service) refresh(sess *session) {
	snap := s.current()
	now := s.now()

	sess.mu.Lock()
	sess.generation++
	gen := sess.generation
	userID, p, loc, c := sess.userID, sess.profile, sess.loc, sess.criteria
	vm := s.compute(s.ctx, snap.events, p, loc, c, now)
	eligible := scoring.Eligible(p, c)
	sess.view = vm
	sess.pending = eligible
	sess.mu.Unlock()

	if !eligible || s.ctx.Err() != nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		recs, err := s.recommend(s.ctx, userID, snap.events, p, loc, now, 0)

		sess.mu.Lock()
		defer sess.mu.Unlock()
		if sess.generation != gen {
			metrics.RecordStaleGeneration()
			s.logger.Debug(s.ctx, "discarding stale recommendations",
				logger.String("session_id", sess.id),
				logger.Uint64("generation", gen),
				logger.Uint64("current", sess.generation))
			return
		}
		sess.pending = false
		if err != nil {
			s.logger.Warn(s.ctx, "session recommendations failed", logger.String("session_id", sess.id), logger.Error(err))
			return
		}
		sess.view.Recommendations = recs
	}()
}

func (s *Service) sessionList() []*session {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	out := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

func (s *Service) refreshAll() {
	for _, sess := range s.sessionList() {
		s.refresh(sess)
	}
}

// refreshUser recomputes the user's sessions after a calendar change.
func (s *Service) refreshUser(userID string) {
	for _, sess := range s.sessionList() {
		if sess.userID == userID {
			s.refresh(sess)
		}
	}
}

// updateProfile swaps the profile of the user's sessions and recomputes them.
func (s *Service) updateProfile(userID string, p *personality.Profile) {
	for _, sess := range s.sessionList() {
		if sess.userID != userID {
			continue
		}
		sess.mu.Lock()
		sess.profile = p
		sess.mu.Unlock()
		s.refresh(sess)
	}
}

// reap drops sessions idle for longer than the TTL.
func (s *Service) reap(ctx context.Context) {
	defer s.wg.Done()
	interval := s.sessionTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.expire(ctx)
		}
	}
}

func (s *Service) expire(ctx context.Context) {
	cutoff := s.now().Add(-s.sessionTTL)
	s.sessMu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.touched.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.sessMu.Unlock()
	if removed > 0 {
		metrics.UpdateActiveSessions(n)
		s.logger.Debug(ctx, "expired idle sessions", logger.Int("removed", removed), logger.Int("active", n))
	}
}

func (sess *session) snapshot() types.Session {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return types.Session{
		ID:                     sess.id,
		UserID:                 sess.userID,
		Generation:             sess.generation,
		RecommendationsPending: sess.pending,
		View:                   types.FromView(&sess.view),
	}
}
