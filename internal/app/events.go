package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okian/eventpulse/internal/adapters/repository"
	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/pipeline"
	"github.com/okian/eventpulse/internal/domain/types"
	"github.com/okian/eventpulse/pkg/logger"
	"github.com/okian/eventpulse/pkg/metrics"
)

const (
	minDescriptionLength = 10
	dateLayout           = "2006-01-02"
	timeLayout           = "15:04"
)

// CreateEvent validates and stores a user-created event. Nothing is written
// when validation fails; store errors are returned as is.
func (s *Service) CreateEvent(ctx context.Context, userID string, req types.CreateEventRequest) (types.Event, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return types.Event{}, ErrMissingUser
	}
	e, err := s.eventFromRequest(userID, req)
	if err != nil {
		metrics.RecordEventWrite("create", "invalid")
		return types.Event{}, err
	}

	id, err := s.store.Add(ctx, repository.CollectionEvents, repository.EncodeEvent(&e))
	if err != nil {
		metrics.RecordEventWrite("create", "error")
		s.logger.Error(ctx, "create event failed", logger.String("user_id", userID), logger.Error(err))
		return types.Event{}, fmt.Errorf("create event: %w", err)
	}
	metrics.RecordEventWrite("create", "ok")
	s.logger.Info(ctx, "event created", logger.String("id", id), logger.String("user_id", userID))

	doc, err := s.store.Get(ctx, repository.CollectionEvents, id)
	if err != nil {
		e.ID = id
		return types.FromEvent(&e), nil
	}
	stored, err := repository.DecodeEvent(doc)
	if err != nil {
		e.ID = id
		return types.FromEvent(&e), nil
	}
	return types.FromEvent(&stored), nil
}

func (s *Service) eventFromRequest(userID string, req types.CreateEventRequest) (model.Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Event{}, fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	desc := strings.TrimSpace(req.Description)
	if utf8.RuneCountInString(desc) < minDescriptionLength {
		return model.Event{}, fmt.Errorf("%w: description must be at least %d characters", ErrInvalidEvent, minDescriptionLength)
	}
	e := model.Event{
		Title:       title,
		Description: desc,
		Category:    strings.TrimSpace(req.Category),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		UserID:      userID,
	}
	if e.Category == "" {
		e.Category = model.CategoryOther
	}
	if req.Location != nil {
		lat, lng := req.Location.Latitude, req.Location.Longitude
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return model.Event{}, fmt.Errorf("%w: coordinates out of range", ErrInvalidEvent)
		}
		e.Location = &model.Coordinate{Latitude: lat, Longitude: lng}
	}

	switch {
	case req.Date == "" && req.Time != "":
		return model.Event{}, fmt.Errorf("%w: time requires a date", ErrInvalidEvent)
	case req.Date != "":
		day, err := time.ParseInLocation(dateLayout, req.Date, s.now().Location())
		if err != nil {
			return model.Event{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidEvent)
		}
		if req.Time != "" {
			hm, err := time.Parse(timeLayout, req.Time)
			if err != nil {
				return model.Event{}, fmt.Errorf("%w: time must be HH:MM in 24-hour format", ErrInvalidEvent)
			}
			day = day.Add(time.Duration(hm.Hour())*time.Hour + time.Duration(hm.Minute())*time.Minute)
		}
		e.Date = &day
	}
	return e, nil
}

// GetEvent returns one stored event with its distance from q.Location, its
// energy and, when q.UserID has a profile, its personality match.
func (s *Service) GetEvent(ctx context.Context, id string, q types.EventQuery) (types.ScoredEvent, error) {
	doc, err := s.store.Get(ctx, repository.CollectionEvents, id)
	if err != nil {
		return types.ScoredEvent{}, fmt.Errorf("get event %s: %w", id, err)
	}
	e, err := repository.DecodeEvent(doc)
	if err != nil {
		return types.ScoredEvent{}, fmt.Errorf("get event %s: %w", id, err)
	}
	profile, err := s.Profile(ctx, q.UserID)
	if err != nil {
		return types.ScoredEvent{}, err
	}
	scored := pipeline.Decorate([]model.Event{e}, profile, q.Location)
	return types.FromScored(&scored[0]), nil
}

// DeleteEvent removes an event. The store's access rule decides whether
// userID may do so.
func (s *Service) DeleteEvent(ctx context.Context, id, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrMissingUser
	}
	if err := s.store.Delete(ctx, repository.CollectionEvents, id, userID); err != nil {
		metrics.RecordEventWrite("delete", "error")
		s.logger.Warn(ctx, "delete event rejected",
			logger.String("id", id), logger.String("user_id", userID), logger.Error(err))
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	metrics.RecordEventWrite("delete", "ok")
	s.logger.Info(ctx, "event deleted", logger.String("id", id), logger.String("user_id", userID))
	return nil
}
