// Package dedupe tracks external event identifiers already handled by an
// import run so the same upstream event is inserted at most once.
package dedupe

import (
	"container/list"
	"context"
	"strings"
	"sync"
)

// Deduper records seen external IDs.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. It returns true when id was already present.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a failed insert can be retried in a later run.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of recorded IDs.
	Size() int
}

type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // oldest at front
	maxSize int        // <= 0 means unbounded
	seed    []string
}

// NewInMemoryDeduper creates a deduper. IDs are compared after trimming
// whitespace; empty IDs are never recorded and always report as unseen.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		seen:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, id := range d.seed {
		d.record(strings.TrimSpace(id))
	}
	d.seed = nil
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[id]; ok {
		return true
	}
	d.record(id)
	return false
}

// record adds id, evicting the oldest entry when full. Caller holds mu or
// owns d exclusively.
func (d *inMemoryDeduper) record(id string) {
	if id == "" {
		return
	}
	if _, ok := d.seen[id]; ok {
		return
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(string))
	}
	d.seen[id] = d.order.PushBack(id)
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	id = strings.TrimSpace(id)
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.seen[id]; ok {
		d.order.Remove(el)
		delete(d.seen, id)
	}
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
