// Package repository defines the document store the service reads events and
// profiles from, an in-memory implementation with live subscriptions and
// per-collection access rules, and the decode step from schemaless documents
// to typed domain values.
package repository

import (
	"context"
	"time"
)

// Collection names.
const (
	CollectionEvents = "events"
	CollectionUsers  = "users"
)

// Document is a schemaless record.
type Document struct {
	ID   string
	Data map[string]any
}

// Snapshot is the full contents of a collection at one point in time.
// Documents are in insertion order.
type Snapshot struct {
	Collection string
	Documents  []Document
	Version    uint64
	At         time.Time
}

// Store is the data-access capability the service depends on.
type Store interface {
	// Subscribe delivers the current snapshot immediately and a fresh one
	// after every change. Slow consumers only ever see the latest snapshot.
	// The channel is closed when ctx ends or the store is closed.
	Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error)

	// Get returns one document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Put creates or replaces a document with the given ID.
	Put(ctx context.Context, collection string, doc Document) error

	// Add creates a document with a generated ID and returns the ID.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)

	// Delete removes a document after the collection's access rule allows
	// requesterID to do so.
	Delete(ctx context.Context, collection, id, requesterID string) error

	// Find returns documents whose top-level field equals value.
	Find(ctx context.Context, collection, field string, value any) ([]Document, error)
}
