package repository

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/eventpulse/pkg/logger"
)

type collection struct {
	docs    map[string]map[string]any
	order   []string
	version uint64
	subs    map[*subscriber]struct{}
}

type subscriber struct {
	ch   chan Snapshot
	done chan struct{}
}

// MemoryStore is an in-process Store. Each collection keeps its documents in
// insertion order and fans snapshots out to subscribers.
type MemoryStore struct {
	mu      sync.Mutex
	cols    map[string]*collection
	rules   map[string]AccessRule
	allowed map[string]bool // nil means any collection
	closed  bool
	wg      sync.WaitGroup

	now   func() time.Time
	newID func() string
	log   logger.Logger
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store with DefaultRules.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		cols:  make(map[string]*collection),
		rules: DefaultRules(),
		now:   time.Now,
		newID: uuid.NewString,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// col returns the named collection, creating it on first use.
// Caller holds s.mu.
func (s *MemoryStore) col(name string) (*collection, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if name == "" || (s.allowed != nil && !s.allowed[name]) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	c, ok := s.cols[name]
	if !ok {
		c = &collection{docs: make(map[string]map[string]any), subs: make(map[*subscriber]struct{})}
		s.cols[name] = c
	}
	return c, nil
}

// snapshot copies the collection. Caller holds s.mu.
func (s *MemoryStore) snapshot(name string, c *collection) Snapshot {
	docs := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, Document{ID: id, Data: cloneMap(c.docs[id])})
	}
	return Snapshot{Collection: name, Documents: docs, Version: c.version, At: s.now()}
}

// publish bumps the version and pushes a snapshot to every subscriber,
// replacing any snapshot still waiting in its buffer. Caller holds s.mu.
func (s *MemoryStore) publish(name string, c *collection) {
	c.version++
	if len(c.subs) == 0 {
		return
	}
	snap := s.snapshot(name, c)
	for sub := range c.subs {
		offer(sub.ch, snap)
	}
}

func offer(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (s *MemoryStore) Subscribe(ctx context.Context, name string) (<-chan Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.col(name)
	if err != nil {
		return nil, err
	}
	sub := &subscriber{ch: make(chan Snapshot, 1), done: make(chan struct{})}
	c.subs[sub] = struct{}{}
	sub.ch <- s.snapshot(name, c)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-ctx.Done():
		case <-sub.done:
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := c.subs[sub]; ok {
			delete(c.subs, sub)
			close(sub.ch)
		}
	}()

	s.log.Debug(ctx, "subscribed", logger.String("collection", name))
	return sub.ch, nil
}

func (s *MemoryStore) Get(_ context.Context, name, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.col(name)
	if err != nil {
		return Document{}, err
	}
	data, ok := c.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, name, id)
	}
	return Document{ID: id, Data: cloneMap(data)}, nil
}

func (s *MemoryStore) Put(ctx context.Context, name string, doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDocument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.col(name)
	if err != nil {
		return err
	}
	if _, exists := c.docs[doc.ID]; !exists {
		c.order = append(c.order, doc.ID)
	}
	c.docs[doc.ID] = cloneMap(doc.Data)
	s.publish(name, c)
	s.log.Debug(ctx, "document stored", logger.String("collection", name), logger.String("id", doc.ID))
	return nil
}

// Add stamps createdAt when the caller did not set it.
func (s *MemoryStore) Add(ctx context.Context, name string, data map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.col(name)
	if err != nil {
		return "", err
	}
	id := s.newID()
	if _, exists := c.docs[id]; exists {
		return "", fmt.Errorf("%w: duplicate id %s", ErrInvalidDocument, id)
	}
	stored := cloneMap(data)
	if stored == nil {
		stored = make(map[string]any)
	}
	if _, ok := stored["createdAt"]; !ok {
		stored["createdAt"] = s.now()
	}
	c.docs[id] = stored
	c.order = append(c.order, id)
	s.publish(name, c)
	s.log.Debug(ctx, "document added", logger.String("collection", name), logger.String("id", id))
	return id, nil
}

func (s *MemoryStore) Delete(ctx context.Context, name, id, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.col(name)
	if err != nil {
		return err
	}
	data, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, name, id)
	}
	if rule, ok := s.rules[name]; ok {
		if err := rule(Document{ID: id, Data: data}, requesterID); err != nil {
			s.log.Warn(ctx, "delete denied",
				logger.String("collection", name),
				logger.String("id", id),
				logger.String("requester", requesterID))
			return err
		}
	}
	delete(c.docs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	s.publish(name, c)
	return nil
}

func (s *MemoryStore) Find(_ context.Context, name, field string, value any) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.col(name)
	if err != nil {
		return nil, err
	}
	var out []Document
	for _, id := range c.order {
		data := c.docs[id]
		if v, ok := data[field]; ok && reflect.DeepEqual(v, value) {
			out = append(out, Document{ID: id, Data: cloneMap(data)})
		}
	}
	return out, nil
}

// Count returns the number of documents in a collection.
func (s *MemoryStore) Count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cols[name]; ok {
		return len(c.order)
	}
	return 0
}

// Close ends every subscription and rejects further calls.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, c := range s.cols {
		for sub := range c.subs {
			delete(c.subs, sub)
			close(sub.done)
			close(sub.ch)
		}
	}
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}
