package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("doc-%d", n)
	}
}

func receive(ch <-chan Snapshot) (Snapshot, bool) {
	select {
	case s, ok := <-ch:
		return s, ok
	case <-time.After(time.Second):
		return Snapshot{}, false
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	Convey("Given an empty memory store", t, func() {
		s := NewMemoryStore(WithIDGenerator(sequentialIDs()), WithClock(func() time.Time { return fixed }))
		defer s.Close()

		Convey("When a document is added", func() {
			id, err := s.Add(ctx, CollectionEvents, map[string]any{"title": "Gig", "userId": "u1"})

			Convey("Then it can be read back with a createdAt stamp", func() {
				So(err, ShouldBeNil)
				So(id, ShouldEqual, "doc-1")
				doc, err := s.Get(ctx, CollectionEvents, id)
				So(err, ShouldBeNil)
				So(doc.Data["title"], ShouldEqual, "Gig")
				So(doc.Data["createdAt"], ShouldEqual, fixed)
				So(s.Count(CollectionEvents), ShouldEqual, 1)
			})

			Convey("Then mutating the returned data does not affect the store", func() {
				doc, _ := s.Get(ctx, CollectionEvents, id)
				doc.Data["title"] = "changed"
				again, _ := s.Get(ctx, CollectionEvents, id)
				So(again.Data["title"], ShouldEqual, "Gig")
			})
		})

		Convey("When reading a missing document", func() {
			_, err := s.Get(ctx, CollectionEvents, "nope")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("When putting without an id", func() {
			err := s.Put(ctx, CollectionUsers, Document{Data: map[string]any{}})
			So(errors.Is(err, ErrInvalidDocument), ShouldBeTrue)
		})

		Convey("When finding by field", func() {
			_, _ = s.Add(ctx, CollectionEvents, map[string]any{"title": "a", "externalId": "tm-1"})
			_, _ = s.Add(ctx, CollectionEvents, map[string]any{"title": "b", "externalId": "tm-2"})

			docs, err := s.Find(ctx, CollectionEvents, "externalId", "tm-2")
			So(err, ShouldBeNil)
			So(len(docs), ShouldEqual, 1)
			So(docs[0].Data["title"], ShouldEqual, "b")
		})
	})
}

func TestMemoryStoreAccessRules(t *testing.T) {
	ctx := context.Background()

	Convey("Given an event owned by u1", t, func() {
		s := NewMemoryStore(WithIDGenerator(sequentialIDs()))
		defer s.Close()
		id, _ := s.Add(ctx, CollectionEvents, map[string]any{"title": "Gig", "userId": "u1"})

		Convey("When another user deletes it", func() {
			err := s.Delete(ctx, CollectionEvents, id, "u2")

			Convey("Then the store refuses and keeps the event", func() {
				So(errors.Is(err, ErrForbidden), ShouldBeTrue)
				So(s.Count(CollectionEvents), ShouldEqual, 1)
			})
		})

		Convey("When no requester is given", func() {
			So(errors.Is(s.Delete(ctx, CollectionEvents, id, ""), ErrForbidden), ShouldBeTrue)
		})

		Convey("When the owner deletes it", func() {
			So(s.Delete(ctx, CollectionEvents, id, "u1"), ShouldBeNil)
			So(s.Count(CollectionEvents), ShouldEqual, 0)
			So(errors.Is(s.Delete(ctx, CollectionEvents, id, "u1"), ErrNotFound), ShouldBeTrue)
		})

		Convey("When a user document is deleted", func() {
			_ = s.Put(ctx, CollectionUsers, Document{ID: "u1", Data: map[string]any{}})
			So(errors.Is(s.Delete(ctx, CollectionUsers, "u1", "u2"), ErrForbidden), ShouldBeTrue)
			So(s.Delete(ctx, CollectionUsers, "u1", "u1"), ShouldBeNil)
		})

		Convey("When a custom rule allows everything", func() {
			open := NewMemoryStore(WithAccessRule(CollectionEvents, AllowAll))
			defer open.Close()
			oid, _ := open.Add(ctx, CollectionEvents, map[string]any{"title": "x"})
			So(open.Delete(ctx, CollectionEvents, oid, "anyone"), ShouldBeNil)
		})
	})

	Convey("Given a store restricted to events", t, func() {
		s := NewMemoryStore(WithCollections(CollectionEvents))
		defer s.Close()
		_, err := s.Add(ctx, "other", map[string]any{})
		So(errors.Is(err, ErrUnknownCollection), ShouldBeTrue)
	})
}

func TestMemoryStoreSubscribe(t *testing.T) {
	Convey("Given a subscription", t, func() {
		s := NewMemoryStore(WithIDGenerator(sequentialIDs()))
		_, _ = s.Add(context.Background(), CollectionEvents, map[string]any{"title": "first"})
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := s.Subscribe(ctx, CollectionEvents)
		So(err, ShouldBeNil)

		Convey("Then the current snapshot arrives immediately", func() {
			snap, ok := receive(ch)
			So(ok, ShouldBeTrue)
			So(len(snap.Documents), ShouldEqual, 1)
			So(snap.Version, ShouldEqual, 1)
		})

		Convey("When several writes happen before the consumer reads", func() {
			_, _ = receive(ch)
			_, _ = s.Add(context.Background(), CollectionEvents, map[string]any{"title": "second"})
			_, _ = s.Add(context.Background(), CollectionEvents, map[string]any{"title": "third"})

			Convey("Then only the latest snapshot is delivered", func() {
				snap, ok := receive(ch)
				So(ok, ShouldBeTrue)
				So(len(snap.Documents), ShouldEqual, 3)
				So(snap.Documents[2].Data["title"], ShouldEqual, "third")
			})
		})

		Convey("When the context is cancelled", func() {
			cancel()
			_, _ = receive(ch)
			_, ok := receive(ch)
			So(ok, ShouldBeFalse)
		})

		Convey("When the store is closed", func() {
			_, _ = receive(ch)
			So(s.Close(), ShouldBeNil)
			_, ok := receive(ch)
			So(ok, ShouldBeFalse)

			_, err := s.Get(context.Background(), CollectionEvents, "doc-1")
			So(errors.Is(err, ErrClosed), ShouldBeTrue)
		})

		Reset(func() {
			cancel()
			_ = s.Close()
		})
	})
}
