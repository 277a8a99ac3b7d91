package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/eventpulse/internal/adapters/calendar"
	"github.com/okian/eventpulse/internal/adapters/repository"
	"github.com/okian/eventpulse/internal/domain/types"
	"github.com/okian/eventpulse/pkg/logger"
)

// GrantCalendar records the user's consent to calendar lookups.
func (s *Service) GrantCalendar(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrMissingUser
	}
	s.calendar.Grant(userID)
	s.refreshUser(userID)
	return nil
}

// RevokeCalendar withdraws consent and forgets the user's entries.
func (s *Service) RevokeCalendar(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrMissingUser
	}
	s.calendar.Revoke(userID)
	s.refreshUser(userID)
	return nil
}

// AddBusy stores a busy interval shared from the user's device calendar.
func (s *Service) AddBusy(userID string, e types.CalendarEntry) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrMissingUser
	}
	if !s.calendar.Granted(userID) {
		return fmt.Errorf("user %s: %w", userID, calendar.ErrPermissionDenied)
	}
	if err := s.calendar.Add(userID, calendar.Entry{Title: e.Title, Start: e.Start, End: e.End}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	s.refreshUser(userID)
	return nil
}

// AddToCalendar places a stored event in the user's calendar. Undated events
// get a default slot, reported by DefaultSlot.
func (s *Service) AddToCalendar(ctx context.Context, userID, eventID string) (types.CalendarAddResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return types.CalendarAddResult{}, ErrMissingUser
	}
	doc, err := s.store.Get(ctx, repository.CollectionEvents, eventID)
	if err != nil {
		return types.CalendarAddResult{}, fmt.Errorf("get event %s: %w", eventID, err)
	}
	e, err := repository.DecodeEvent(doc)
	if err != nil {
		return types.CalendarAddResult{}, fmt.Errorf("get event %s: %w", eventID, err)
	}
	entry, defaulted, err := s.calendar.AddEvent(userID, &e, s.now())
	if err != nil {
		return types.CalendarAddResult{}, err
	}
	s.logger.Info(ctx, "event added to calendar",
		logger.String("user_id", userID),
		logger.String("event_id", eventID),
		logger.Bool("default_slot", defaulted))
	s.refreshUser(userID)
	return types.CalendarAddResult{Entry: toEntry(entry), DefaultSlot: defaulted}, nil
}

// CalendarEntries returns the user's busy intervals in start order.
func (s *Service) CalendarEntries(userID string) []types.CalendarEntry {
	entries := s.calendar.Entries(userID)
	out := make([]types.CalendarEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntry(e))
	}
	return out
}

func toEntry(e calendar.Entry) types.CalendarEntry {
	return types.CalendarEntry{Title: e.Title, Start: e.Start, End: e.End}
}
