package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/okian/eventpulse/internal/domain/filter"
	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/personality"
)

// Breakdown aliases the model type so callers can build one without importing
// model.
type Breakdown = model.Breakdown

const neutral = 0.5

// interestScore returns the profile's interest in the category's own
// dimension. Categories without a dimension contribute nothing.
func interestScore(cat string, p *personality.Profile) int {
	if cat == "movies" {
		return p.Interests.Movies
	}
	return p.DimensionScore(personality.Dimension(cat))
}

// PersonalityScore rates how well the event category suits the profile. A nil
// profile scores 0.5.
func PersonalityScore(e *model.Event, p *personality.Profile) float64 {
	if p == nil {
		return neutral
	}
	cat := e.NormalizedCategory()
	score := float64(interestScore(cat, p)) / 8 * 0.4

	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(cat, w) {
				return true
			}
		}
		return false
	}
	switch {
	case has("social", "nightlife"):
		score += float64(p.Traits.E) / 4 * 0.2
	case has("calm", "culture"):
		score += float64(p.Traits.I) / 4 * 0.2
	}
	switch {
	case has("culture", "literature"):
		score += float64(p.Traits.N) / 4 * 0.2
	case has("sport", "social"):
		score += float64(p.Traits.S) / 4 * 0.2
	}

	return math.Min(score, 1)
}

// DistanceScore is a step function of kilometres. Unknown distances score 0.3.
func DistanceScore(km float64) float64 {
	switch {
	case math.IsInf(km, 1) || math.IsNaN(km):
		return 0.3
	case km <= 5:
		return 1.0
	case km <= 10:
		return 0.8
	case km <= 20:
		return 0.6
	case km <= 50:
		return 0.4
	default:
		return 0.2
	}
}

// ImminenceScore favours sooner events by local calendar-day delta. Past
// events count as today. Undated events score 0.5.
func ImminenceScore(e *model.Event, now time.Time) float64 {
	d, ok := e.EffectiveDate()
	if !ok {
		return neutral
	}
	today := filter.Midnight(now)
	day := filter.DayOf(d, now.Location())
	days := int(math.Round(day.Sub(today).Hours() / 24))
	switch {
	case days <= 0:
		return 1.0
	case days == 1:
		return 0.9
	case days <= 7:
		return 0.8
	case days <= 30:
		return 0.6
	default:
		return 0.4
	}
}

// CalendarScore converts a calendar status to its component score.
func CalendarScore(s model.CalendarStatus) float64 {
	switch s {
	case model.CalendarAvailable:
		return 1.0
	case model.CalendarBusy:
		return 0.3
	default:
		return neutral
	}
}

// MatchLabel returns the user-facing label for a composite score.
func MatchLabel(score float64) string {
	switch {
	case score >= 0.8:
		return "Perfect Match"
	case score >= 0.6:
		return "Great Match"
	case score >= 0.4:
		return "Good Match"
	default:
		return "Suggested"
	}
}
