package repository

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/personality"
	"github.com/okian/eventpulse/pkg/logger"
	"github.com/okian/eventpulse/pkg/metrics"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime reads a date value from a document field. It accepts time.Time,
// strings in RFC 3339 or a local date/date-time layout, epoch milliseconds
// and {seconds, nanoseconds} timestamp maps. Anything else is absent.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	case map[string]any:
		sec, ok := toFloat(t["seconds"])
		if !ok {
			return time.Time{}, false
		}
		nsec, _ := toFloat(t["nanoseconds"])
		return time.Unix(int64(sec), int64(nsec)), true
	default:
		ms, ok := toFloat(v)
		if !ok || ms <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)), true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt(v any) int {
	f, ok := toFloat(v)
	if !ok || f < 0 {
		return 0
	}
	return int(f)
}

func str(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return strings.TrimSpace(s)
}

func timePtr(v any) *time.Time {
	if t, ok := ParseTime(v); ok {
		return &t
	}
	return nil
}

// DecodeCoordinate reads {latitude, longitude} (or lat/lng) and rejects
// out-of-range values.
func DecodeCoordinate(v any) (*model.Coordinate, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	lat, okLat := toFloat(m["latitude"])
	if !okLat {
		lat, okLat = toFloat(m["lat"])
	}
	lng, okLng := toFloat(m["longitude"])
	if !okLng {
		lng, okLng = toFloat(m["lng"])
	}
	if !okLat || !okLng || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, false
	}
	return &model.Coordinate{Latitude: lat, Longitude: lng}, true
}

// DecodeEvent builds a typed event from a document. A record without a title
// is invalid. Unparseable dates and locations are treated as absent.
func DecodeEvent(doc Document) (model.Event, error) {
	if doc.Data == nil {
		return model.Event{}, fmt.Errorf("%w: events/%s has no data", ErrInvalidDocument, doc.ID)
	}
	d := doc.Data
	e := model.Event{
		ID:          doc.ID,
		Title:       str(d, "title"),
		Description: str(d, "description"),
		Category:    str(d, "category"),
		ImageURL:    str(d, "imageUrl"),
		ExternalID:  str(d, "externalId"),
		ExternalURL: str(d, "externalUrl"),
		UserID:      str(d, "userId"),
		Date:        timePtr(d["date"]),
		StartDate:   timePtr(d["startDate"]),
		EventDate:   timePtr(d["eventDate"]),
	}
	if e.Title == "" {
		return model.Event{}, fmt.Errorf("%w: events/%s has no title", ErrInvalidDocument, doc.ID)
	}
	if e.Category == "" {
		e.Category = model.CategoryOther
	}
	if loc, ok := DecodeCoordinate(d["location"]); ok {
		e.Location = loc
	}
	if ext, ok := d["external"].(bool); ok {
		e.External = ext
	}
	if created, ok := ParseTime(d["createdAt"]); ok {
		e.CreatedAt = created
	}
	return e, nil
}

// DecodeEvents decodes a snapshot, logging and skipping invalid records.
func DecodeEvents(ctx context.Context, snap Snapshot, log logger.Logger) []model.Event {
	out := make([]model.Event, 0, len(snap.Documents))
	for _, doc := range snap.Documents {
		e, err := DecodeEvent(doc)
		if err != nil {
			metrics.RecordDecodeReject(snap.Collection)
			log.Warn(ctx, "skipping invalid event record", logger.String("id", doc.ID), logger.Error(err))
			continue
		}
		out = append(out, e)
	}
	return out
}

// EncodeEvent is the inverse of DecodeEvent. Only the primary date is
// written; the ID is not part of the data.
func EncodeEvent(e *model.Event) map[string]any {
	data := map[string]any{
		"title":       e.Title,
		"description": e.Description,
		"category":    e.Category,
		"userId":      e.UserID,
		"external":    e.External,
	}
	if e.Location != nil {
		data["location"] = map[string]any{"latitude": e.Location.Latitude, "longitude": e.Location.Longitude}
	}
	if d, ok := e.EffectiveDate(); ok {
		data["date"] = d
	}
	if !e.CreatedAt.IsZero() {
		data["createdAt"] = e.CreatedAt
	}
	for k, v := range map[string]string{"imageUrl": e.ImageURL, "externalId": e.ExternalID, "externalUrl": e.ExternalURL} {
		if v != "" {
			data[k] = v
		}
	}
	return data
}

// DecodeProfile reads the personality field of a user document. A missing or
// null personality yields a nil profile and no error.
func DecodeProfile(doc Document) (*personality.Profile, error) {
	raw, ok := doc.Data["personality"]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: users/%s personality is %T", ErrInvalidDocument, doc.ID, raw)
	}
	traits, _ := m["traits"].(map[string]any)
	interests, _ := m["interests"].(map[string]any)

	p := &personality.Profile{
		Traits: personality.Traits{
			E: toInt(traits["E"]), I: toInt(traits["I"]),
			N: toInt(traits["N"]), S: toInt(traits["S"]),
			T: toInt(traits["T"]), F: toInt(traits["F"]),
			J: toInt(traits["J"]), P: toInt(traits["P"]),
		},
		Interests: personality.Interests{
			Music:      toInt(interests["music"]),
			Sport:      toInt(interests["sport"]),
			Literature: toInt(interests["literature"]),
			Movies:     toInt(interests["movies"]),
			Calm:       toInt(interests["calm"]),
			Nightlife:  toInt(interests["nightlife"]),
			Culture:    toInt(interests["culture"]),
			Social:     toInt(interests["social"]),
		},
	}
	if ts, ok := toFloat(m["updatedAt"]); ok {
		p.UpdatedAt = int64(ts)
	}
	p.ManuallyEntered, _ = m["manuallyEntered"].(bool)

	// The stored code is informational; the traits are authoritative.
	p.MBTI = personality.DeriveMBTI(p.Traits)
	return p, nil
}

// EncodeProfile returns the user document data for a profile. A nil profile
// encodes as a null personality.
func EncodeProfile(p *personality.Profile) map[string]any {
	if p == nil {
		return map[string]any{"personality": nil}
	}
	t, i := p.Traits, p.Interests
	interests := map[string]any{
		"music": i.Music, "sport": i.Sport, "literature": i.Literature, "movies": i.Movies,
	}
	for k, v := range map[string]int{"calm": i.Calm, "nightlife": i.Nightlife, "culture": i.Culture, "social": i.Social} {
		if v > 0 {
			interests[k] = v
		}
	}
	body := map[string]any{
		"mbti": p.MBTI,
		"traits": map[string]any{
			"E": t.E, "I": t.I, "N": t.N, "S": t.S, "T": t.T, "F": t.F, "J": t.J, "P": t.P,
		},
		"interests": interests,
		"updatedAt": p.UpdatedAt,
	}
	if p.ManuallyEntered {
		body["manuallyEntered"] = true
	}
	return map[string]any{"personality": body}
}
