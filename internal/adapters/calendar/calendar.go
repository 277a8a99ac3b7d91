// Package calendar provides user calendar availability to the scorer. The
// device calendar lives outside this service; MemoryCalendar holds the busy
// intervals a client has shared.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/scoring"
)

const (
	addedEventDuration = time.Hour
	defaultEventHour   = 18
)

// ErrPermissionDenied is returned when the user has not granted access.
var ErrPermissionDenied = scoring.ErrPermissionDenied

// Entry is one busy interval.
type Entry struct {
	Title string
	Start time.Time
	End   time.Time
}

func (e Entry) overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && e.End.After(start)
}

// Provider resolves a per-user calendar.
type Provider interface {
	For(userID string) scoring.Calendar
}

// MemoryCalendar is a Provider backed by in-process entries.
type MemoryCalendar struct {
	mu      sync.RWMutex
	entries map[string][]Entry
	granted map[string]bool
}

var _ Provider = (*MemoryCalendar)(nil)

// NewMemoryCalendar creates an empty calendar store.
func NewMemoryCalendar() *MemoryCalendar {
	return &MemoryCalendar{
		entries: make(map[string][]Entry),
		granted: make(map[string]bool),
	}
}

// Grant records that userID allowed calendar access.
func (m *MemoryCalendar) Grant(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.granted[userID] = true
}

// Revoke withdraws access and drops the user's entries.
func (m *MemoryCalendar) Revoke(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.granted, userID)
	delete(m.entries, userID)
}

// Add stores a busy interval. End must be after Start.
func (m *MemoryCalendar) Add(userID string, e Entry) error {
	if !e.End.After(e.Start) {
		return fmt.Errorf("calendar entry %q: end must be after start", e.Title)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append(m.entries[userID], e)
	sort.Slice(list, func(i, j int) bool { return list[i].Start.Before(list[j].Start) })
	m.entries[userID] = list
	return nil
}

// AddEvent places an event in the user's calendar for one hour. Undated
// events are placed tomorrow at 18:00 and defaulted is true.
func (m *MemoryCalendar) AddEvent(userID string, e *model.Event, now time.Time) (entry Entry, defaulted bool, err error) {
	m.mu.RLock()
	granted := m.granted[userID]
	m.mu.RUnlock()
	if !granted {
		return Entry{}, false, fmt.Errorf("user %s: %w", userID, ErrPermissionDenied)
	}
	start, ok := e.EffectiveDate()
	if !ok {
		y, mo, d := now.AddDate(0, 0, 1).Date()
		start = time.Date(y, mo, d, defaultEventHour, 0, 0, 0, now.Location())
		defaulted = true
	}
	entry = Entry{Title: e.Title, Start: start, End: start.Add(addedEventDuration)}
	if err := m.Add(userID, entry); err != nil {
		return Entry{}, false, err
	}
	return entry, defaulted, nil
}

// Entries returns a copy of the user's entries in start order.
func (m *MemoryCalendar) Entries(userID string) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry(nil), m.entries[userID]...)
}

// Granted reports whether the user allowed calendar access.
func (m *MemoryCalendar) Granted(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.granted[userID]
}

// For returns the user's calendar view.
func (m *MemoryCalendar) For(userID string) scoring.Calendar {
	return userCalendar{m: m, userID: userID}
}

type userCalendar struct {
	m      *MemoryCalendar
	userID string
}

// Busy reports whether any entry overlaps [start, end).
func (u userCalendar) Busy(ctx context.Context, start, end time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()
	if !u.m.granted[u.userID] {
		return false, fmt.Errorf("user %s: %w", u.userID, ErrPermissionDenied)
	}
	for _, e := range u.m.entries[u.userID] {
		if !e.Start.Before(end) {
			break
		}
		if e.overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}
