package importer

import (
	"time"

	"github.com/okian/eventpulse/internal/domain/dedupe"
	"github.com/okian/eventpulse/pkg/logger"
)

// Option applies a configuration option to the Importer.
type Option func(*Importer)

// WithCenter sets the search centre and radius.
func WithCenter(lat, lng float64, radiusKm int) Option {
	return func(im *Importer) {
		if lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180 {
			im.lat, im.lng = lat, lng
		}
		if radiusKm > 0 {
			im.radiusKm = radiusKm
		}
	}
}

// WithPaging sets the page size and the maximum pages per run.
func WithPaging(size, maxPages int) Option {
	return func(im *Importer) {
		if size > 0 {
			im.pageSize = size
		}
		if maxPages > 0 {
			im.maxPages = maxPages
		}
	}
}

// WithInterval enables periodic runs from Start.
func WithInterval(d time.Duration) Option {
	return func(im *Importer) {
		im.interval = d
	}
}

// WithDeduper shares one dedupe set across runs instead of a fresh set per
// run.
func WithDeduper(d dedupe.Deduper) Option {
	return func(im *Importer) {
		im.shared = d
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.log = l
		}
	}
}
