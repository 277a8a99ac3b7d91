package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/okian/eventpulse/internal/adapters/repository"
	"github.com/okian/eventpulse/internal/domain/personality"
	"github.com/okian/eventpulse/pkg/logger"
)

// Profile returns the user's personality profile, or nil when the user has
// none.
func (s *Service) Profile(ctx context.Context, userID string) (*personality.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	doc, err := s.store.Get(ctx, repository.CollectionUsers, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", userID, err)
	}
	p, err := repository.DecodeProfile(doc)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", userID, err)
	}
	return p, nil
}

// SubmitQuiz scores 16 yes/no answers and stores the resulting profile.
func (s *Service) SubmitQuiz(ctx context.Context, userID string, answers []bool) (*personality.Profile, error) {
	p, err := personality.ScoreQuiz(answers, s.now())
	if err != nil {
		return nil, err
	}
	return p, s.saveProfile(ctx, userID, p)
}

// SetManualProfile stores a profile built from a four-letter type code.
func (s *Service) SetManualProfile(ctx context.Context, userID, code string) (*personality.Profile, error) {
	p, err := personality.FromManual(code, s.now())
	if err != nil {
		return nil, err
	}
	return p, s.saveProfile(ctx, userID, p)
}

// ResetProfile clears the user's profile.
func (s *Service) ResetProfile(ctx context.Context, userID string) error {
	return s.saveProfile(ctx, userID, nil)
}

// saveProfile merges the personality field into the user document and
// refreshes the user's sessions.
func (s *Service) saveProfile(ctx context.Context, userID string, p *personality.Profile) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrMissingUser
	}
	data := map[string]any{}
	doc, err := s.store.Get(ctx, repository.CollectionUsers, userID)
	switch {
	case err == nil && doc.Data != nil:
		data = doc.Data
	case err == nil:
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("read user %s: %w", userID, err)
	}
	maps.Copy(data, repository.EncodeProfile(p))

	if err := s.store.Put(ctx, repository.CollectionUsers, repository.Document{ID: userID, Data: data}); err != nil {
		s.logger.Error(ctx, "save profile failed", logger.String("user_id", userID), logger.Error(err))
		return fmt.Errorf("save profile %s: %w", userID, err)
	}
	s.logger.Info(ctx, "profile saved",
		logger.String("user_id", userID),
		logger.String("mbti", p.Code()),
		logger.Bool("reset", p == nil))
	s.updateProfile(userID, p)
	return nil
}
