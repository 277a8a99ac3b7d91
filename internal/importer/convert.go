package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/okian/eventpulse/internal/adapters/repository"
	"github.com/okian/eventpulse/internal/adapters/ticketing"
	"github.com/okian/eventpulse/internal/domain/model"
)

const (
	untitled      = "Untitled Event"
	noDescription = "No description available"
)

// Convert maps an upstream event to an event record. ok is false when the
// first venue has no usable location.
func Convert(ev *ticketing.Event) (model.Event, bool) {
	if len(ev.Embedded.Venues) == 0 || ev.Embedded.Venues[0].Location == nil {
		return model.Event{}, false
	}
	loc := ev.Embedded.Venues[0].Location
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(loc.Latitude), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(loc.Longitude), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return model.Event{}, false
	}

	e := model.Event{
		Title:       firstNonEmpty(ev.Name, untitled),
		Description: ImproveDescription(firstNonEmpty(ev.Info, ev.Description, noDescription)),
		Category:    model.CategoryOther,
		Location:    &model.Coordinate{Latitude: lat, Longitude: lng},
		ExternalID:  ev.ID,
		ExternalURL: ev.URL,
		External:    true,
	}
	if len(ev.Classifications) > 0 {
		if seg := strings.ToLower(strings.TrimSpace(ev.Classifications[0].Segment.Name)); seg != "" {
			e.Category = seg
		}
	}
	if len(ev.Images) > 0 {
		e.ImageURL = widestImage(ev.Images)
	}
	if start, ok := startOf(&ev.Dates); ok {
		e.StartDate = &start
	}
	return e, true
}

// Record returns the store data for an imported event.
func Record(e *model.Event) map[string]any {
	data := repository.EncodeEvent(e)
	// Imported events keep their date in startDate like the upstream feed.
	if e.StartDate != nil {
		delete(data, "date")
		data["startDate"] = *e.StartDate
	}
	return data
}

func startOf(d *ticketing.Dates) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, d.Start.DateTime); err == nil {
		return t, true
	}
	if d.Start.LocalDate == "" {
		return time.Time{}, false
	}
	v := d.Start.LocalDate
	layout := "2006-01-02"
	if d.Start.LocalTime != "" {
		v += "T" + d.Start.LocalTime
		layout = "2006-01-02T15:04:05"
	}
	t, err := time.ParseInLocation(layout, v, time.Local)
	return t, err == nil
}

func widestImage(images []ticketing.Image) string {
	best := images[0]
	for _, img := range images[1:] {
		if img.Width > best.Width {
			best = img
		}
	}
	return best.URL
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
