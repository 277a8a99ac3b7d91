// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/eventpulse/internal/adapters/calendar"
	"github.com/okian/eventpulse/internal/adapters/repository"
	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/scoring"
	"github.com/okian/eventpulse/internal/domain/types"
	"github.com/okian/eventpulse/internal/importer"
	"github.com/okian/eventpulse/pkg/logger"
	"github.com/okian/eventpulse/pkg/metrics"
)

const (
	defaultLimit      = 5
	defaultWindow     = 2 * time.Hour
	defaultSessionTTL = 30 * time.Minute
)

// eventSnapshot is an immutable decoded copy of the events collection.
type eventSnapshot struct {
	events  []model.Event
	version uint64
	at      time.Time
}

// Service owns the latest event snapshot and the view sessions built on it.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	store     repository.Store
	ownsStore bool
	calendar  *calendar.MemoryCalendar
	importer  *importer.Importer

	// Configuration
	weights    scoring.Weights
	window     time.Duration
	limit      int
	sessionTTL time.Duration
	now        func() time.Time

	// State
	snap      atomic.Pointer[eventSnapshot]
	snapshots atomic.Uint64
	started   bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	sessMu   sync.Mutex
	sessions map[string]*session

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		weights:    scoring.DefaultWeights(),
		window:     defaultWindow,
		limit:      defaultLimit,
		sessionTTL: defaultSessionTTL,
		now:        time.Now,
		sessions:   make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithLogger(s.logger.Named("store")))
		s.ownsStore = true
	}
	if s.calendar == nil {
		s.calendar = calendar.NewMemoryCalendar()
	}
	return s
}

// Start subscribes to the events collection and starts background work. The
// first snapshot is applied before Start returns. A stopped service cannot be
// restarted.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.ctx.Err() != nil {
		return ErrStopped
	}
	s.logger.Info(ctx, "starting event service...")

	ch, err := s.store.Subscribe(s.ctx, repository.CollectionEvents)
	if err != nil {
		return fmt.Errorf("subscribe events: %w", err)
	}
	select {
	case snap, ok := <-ch:
		if ok {
			s.apply(ctx, snap)
		}
	case <-ctx.Done():
		return fmt.Errorf("await first snapshot: %w", ctx.Err())
	}

	s.wg.Add(2)
	go s.watch(s.ctx, ch)
	go s.reap(s.ctx)
	if s.importer != nil {
		done := s.importer.Start(s.ctx)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			<-done
		}()
	}

	s.started = true
	s.logger.Info(ctx, "event service started",
		logger.Int("events", len(s.current().events)),
		logger.Int("recommendation_limit", s.limit),
		logger.Duration("session_ttl", s.sessionTTL))
	return nil
}

// Stop cancels background work and waits for it to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping event service...")

	s.cancel()
	s.wg.Wait()
	if s.ownsStore {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "event service stopped")
}

// Started reports whether Start has completed.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// watch applies every snapshot and refreshes the sessions built on it.
func (s *Service) watch(ctx context.Context, ch <-chan repository.Snapshot) {
	defer s.wg.Done()
	for snap := range ch {
		s.apply(ctx, snap)
		s.refreshAll()
	}
	s.logger.Debug(ctx, "event subscription closed")
}

func (s *Service) apply(ctx context.Context, snap repository.Snapshot) {
	events := repository.DecodeEvents(ctx, snap, s.logger)
	at := snap.At
	if at.IsZero() {
		at = s.now()
	}
	s.snap.Store(&eventSnapshot{events: events, version: snap.Version, at: at})
	s.snapshots.Add(1)
	metrics.RecordSnapshot(len(events))
	s.logger.Debug(ctx, "event snapshot applied",
		logger.Int("events", len(events)),
		logger.Int("documents", len(snap.Documents)),
		logger.Uint64("version", snap.Version))
}

func (s *Service) current() *eventSnapshot {
	if p := s.snap.Load(); p != nil {
		return p
	}
	return &eventSnapshot{}
}

// Events returns the latest decoded events. Callers must not modify them.
func (s *Service) Events() []model.Event {
	return s.current().events
}

// scorer builds a scorer bound to the user's calendar.
func (s *Service) scorer(userID string) *scoring.Scorer {
	opts := []scoring.Option{
		scoring.WithWeights(s.weights),
		scoring.WithCalendarWindow(s.window),
		scoring.WithLimit(s.limit),
		scoring.WithLogger(s.logger.Named("scoring")),
	}
	if userID != "" {
		opts = append(opts, scoring.WithCalendar(s.calendar.For(userID)))
	}
	return scoring.New(opts...)
}

// Import runs one import job.
func (s *Service) Import(ctx context.Context) (importer.Stats, error) {
	if s.importer == nil {
		return importer.Stats{}, ErrImportDisabled
	}
	return s.importer.Run(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	snap := s.current()
	s.sessMu.Lock()
	sessions := len(s.sessions)
	s.sessMu.Unlock()
	return types.Stats{
		Events:         len(snap.events),
		Sessions:       sessions,
		SnapshotAt:     snap.at,
		SnapshotsTotal: s.snapshots.Load(),
	}
}
