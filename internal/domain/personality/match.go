package personality

import (
	"slices"

	"github.com/okian/eventpulse/internal/domain/model"
)

// Dimension is a personality dimension used to match events by tag.
type Dimension string

// Matchable dimensions, in evaluation order.
const (
	DimensionCalm       Dimension = "calm"
	DimensionNightlife  Dimension = "nightlife"
	DimensionCulture    Dimension = "culture"
	DimensionSocial     Dimension = "social"
	DimensionMusic      Dimension = "music"
	DimensionSport      Dimension = "sport"
	DimensionLiterature Dimension = "literature"
)

var dimensionOrder = []Dimension{
	DimensionCalm, DimensionNightlife, DimensionCulture, DimensionSocial,
	DimensionMusic, DimensionSport, DimensionLiterature,
}

var dimensionTags = map[Dimension][]string{
	DimensionCalm:       {"calm", "yoga", "wellness", "relax", "nature"},
	DimensionNightlife:  {"nightlife", "party", "club", "festival"},
	DimensionCulture:    {"culture", "theatre", "museum", "art", "exhibition", "lecture"},
	DimensionSocial:     {"social", "meetup", "community", "food", "cooking"},
	DimensionMusic:      {"music", "concert", "live", "dj"},
	DimensionSport:      {"sport", "gym", "run", "fitness"},
	DimensionLiterature: {"books", "literature", "reading", "poetry"},
}

// Tags returns the tag list of a dimension.
func Tags(d Dimension) []string {
	return append([]string(nil), dimensionTags[d]...)
}

// DimensionScore returns the profile's score for a dimension.
func (p *Profile) DimensionScore(d Dimension) int {
	switch d {
	case DimensionCalm:
		return p.Interests.Calm
	case DimensionNightlife:
		return p.Interests.Nightlife
	case DimensionCulture:
		return p.Interests.Culture
	case DimensionSocial:
		return p.Interests.Social
	case DimensionMusic:
		return p.Interests.Music
	case DimensionSport:
		return p.Interests.Sport
	case DimensionLiterature:
		return p.Interests.Literature
	}
	return 0
}

// ActiveDimensions lists the dimensions with a positive score.
func (p *Profile) ActiveDimensions() []Dimension {
	var out []Dimension
	for _, d := range dimensionOrder {
		if p.DimensionScore(d) > 0 {
			out = append(out, d)
		}
	}
	return out
}

// MatchesPersonality reports whether the event's category is a tag of any
// dimension the profile scores above zero. The filter stage and the
// per-event badge both use it.
func MatchesPersonality(e *model.Event, p *Profile) bool {
	if p == nil {
		return false
	}
	cat := e.NormalizedCategory()
	if cat == "" {
		return false
	}
	for _, d := range p.ActiveDimensions() {
		if slices.Contains(dimensionTags[d], cat) {
			return true
		}
	}
	return false
}
