// Package importer pulls events from the Discovery API into the event store.
// Each upstream event is inserted at most once, keyed by its external ID.
package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/eventpulse/internal/adapters/repository"
	"github.com/okian/eventpulse/internal/adapters/ticketing"
	"github.com/okian/eventpulse/internal/domain/dedupe"
	"github.com/okian/eventpulse/pkg/logger"
	"github.com/okian/eventpulse/pkg/metrics"
)

// Default import area: Eindhoven, 25 km.
const (
	DefaultLatitude  = 51.441642
	DefaultLongitude = 5.469722
	DefaultRadiusKm  = 25

	defaultPageSize = 50
	defaultMaxPages = 5
)

// Searcher fetches a page of upstream events.
type Searcher interface {
	Search(ctx context.Context, q ticketing.Query) (*ticketing.SearchResult, error)
}

// Stats summarises one run.
type Stats struct {
	Fetched    int           `json:"fetched"`
	Inserted   int           `json:"inserted"`
	Duplicates int           `json:"duplicates"`
	NoLocation int           `json:"noLocation"`
	Failed     int           `json:"failed"`
	Pages      int           `json:"pages"`
	Duration   time.Duration `json:"duration"`
}

// Importer runs import jobs. Runs are serialised.
type Importer struct {
	mu       sync.Mutex
	source   Searcher
	store    repository.Store
	shared   dedupe.Deduper // nil: a fresh set per run
	log      logger.Logger
	lat, lng float64
	radiusKm int
	pageSize int
	maxPages int
	interval time.Duration
	last     Stats
}

// New creates an importer writing into store.
func New(source Searcher, store repository.Store, opts ...Option) *Importer {
	im := &Importer{
		source:   source,
		store:    store,
		log:      logger.Nop(),
		lat:      DefaultLatitude,
		lng:      DefaultLongitude,
		radiusKm: DefaultRadiusKm,
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Run fetches up to the configured number of pages and inserts new events.
// Per-event failures are counted and logged; only a failed fetch of the
// first page fails the run.
func (im *Importer) Run(ctx context.Context) (Stats, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	start := time.Now()
	var st Stats
	seen := im.shared
	if seen == nil {
		seen = dedupe.NewInMemoryDeduper()
	}
	im.log.Info(ctx, "import started",
		logger.Float64("lat", im.lat),
		logger.Float64("lng", im.lng),
		logger.Int("radius_km", im.radiusKm))

	for page := 0; page < im.maxPages; page++ {
		res, err := im.source.Search(ctx, ticketing.Query{
			Latitude: im.lat, Longitude: im.lng, RadiusKm: im.radiusKm,
			Size: im.pageSize, Page: page,
		})
		if err != nil {
			if page == 0 {
				metrics.RecordImport("fetch_failed")
				return st, fmt.Errorf("%w: %w", ErrFetch, err)
			}
			im.log.Warn(ctx, "stopping import after page error", logger.Int("page", page), logger.Error(err))
			break
		}
		st.Pages++
		st.Fetched += len(res.Events)
		for i := range res.Events {
			im.importOne(ctx, seen, &res.Events[i], &st)
		}
		if page+1 >= res.Page.TotalPages {
			break
		}
	}

	st.Duration = time.Since(start)
	im.last = st
	im.log.Info(ctx, "import finished",
		logger.Int("fetched", st.Fetched),
		logger.Int("inserted", st.Inserted),
		logger.Int("duplicates", st.Duplicates),
		logger.Int("no_location", st.NoLocation),
		logger.Int("failed", st.Failed),
		logger.Duration("duration", st.Duration))
	return st, nil
}

func (im *Importer) importOne(ctx context.Context, seen dedupe.Deduper, ev *ticketing.Event, st *Stats) {
	e, ok := Convert(ev)
	if !ok {
		st.NoLocation++
		metrics.RecordImport("no_location")
		return
	}
	if seen.SeenAndRecord(ctx, e.ExternalID) {
		st.Duplicates++
		metrics.RecordImport("duplicate")
		return
	}
	existing, err := im.store.Find(ctx, repository.CollectionEvents, "externalId", e.ExternalID)
	if err != nil {
		seen.Unrecord(ctx, e.ExternalID)
		st.Failed++
		metrics.RecordImport("failed")
		im.log.Error(ctx, "dedupe lookup failed", logger.String("external_id", e.ExternalID), logger.Error(err))
		return
	}
	if len(existing) > 0 {
		st.Duplicates++
		metrics.RecordImport("duplicate")
		return
	}
	id, err := im.store.Add(ctx, repository.CollectionEvents, Record(&e))
	if err != nil {
		seen.Unrecord(ctx, e.ExternalID)
		st.Failed++
		metrics.RecordImport("failed")
		im.log.Error(ctx, "insert failed", logger.String("external_id", e.ExternalID), logger.Error(err))
		return
	}
	st.Inserted++
	metrics.RecordImport("inserted")
	im.log.Debug(ctx, "imported event", logger.String("id", id), logger.String("title", e.Title))
}

// Last returns the stats of the most recent completed run.
func (im *Importer) Last() Stats {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.last
}

// Start runs the importer every interval until ctx ends. The returned channel
// is closed once the loop has exited; it is closed at once when no interval is
// configured.
func (im *Importer) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if im.interval <= 0 {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(im.interval)
		defer ticker.Stop()
		for {
			if _, err := im.Run(ctx); err != nil {
				im.log.Warn(ctx, "scheduled import failed", logger.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return done
}
