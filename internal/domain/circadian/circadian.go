// Package circadian classifies event energy and scores how well an event's
// start time fits the energy the user is likely to have at that time of day.
package circadian

import (
	"strings"
	"time"

	"github.com/okian/eventpulse/internal/domain/model"
)

// Period is a coarse time of day.
type Period int

// Periods in proximity order.
const (
	Morning Period = iota
	Afternoon
	Evening
	Night
)

func (p Period) String() string {
	switch p {
	case Morning:
		return "morning"
	case Afternoon:
		return "afternoon"
	case Evening:
		return "evening"
	default:
		return "night"
	}
}

// Description returns a short user-facing description of the period.
func (p Period) Description() string {
	switch p {
	case Morning:
		return "Morning: a good time for calm or moderate activities"
	case Afternoon:
		return "Afternoon: energy is up, active events fit well"
	case Evening:
		return "Evening: social and lively events fit well"
	default:
		return "Night: only high-energy events fit"
	}
}

// PeriodOf maps a clock hour to its period: 05-12 morning, 12-17 afternoon,
// 17-22 evening and anything else night.
func PeriodOf(hour int) Period {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 22:
		return Evening
	default:
		return Night
	}
}

var optimal = map[Period][]model.Energy{
	Morning:   {model.EnergyLow, model.EnergyMedium},
	Afternoon: {model.EnergyMedium, model.EnergyHigh},
	Evening:   {model.EnergyMedium, model.EnergyHigh},
	Night:     {model.EnergyHigh},
}

// proximity by absolute period index difference.
var proximity = [...]float64{1.0, 0.7, 0.4, 0.2}

const (
	timeWeight   = 0.6
	energyWeight = 0.4

	fitScore    = 1.0
	misfitScore = 0.5

	// Used when the event has no time.
	estimateFit    = 0.7
	estimateMisfit = 0.4
)

// Fits reports whether energy e is optimal in period p.
func Fits(p Period, e model.Energy) bool {
	for _, o := range optimal[p] {
		if o == e {
			return true
		}
	}
	return false
}

// Score returns the circadian fit of an event with the given energy, in [0,1].
// now supplies the user's current period. Without an event time only the
// energy estimate for the current period is used.
func Score(e model.Energy, eventTime time.Time, hasTime bool, now time.Time) float64 {
	cur := PeriodOf(now.Hour())
	fits := Fits(cur, e)
	if !hasTime {
		if fits {
			return estimateFit
		}
		return estimateMisfit
	}

	diff := int(PeriodOf(eventTime.In(now.Location()).Hour())) - int(cur)
	if diff < 0 {
		diff = -diff
	}
	energy := misfitScore
	if fits {
		energy = fitScore
	}
	return timeWeight*proximity[diff] + energyWeight*energy
}

type keyword struct {
	word   string
	energy model.Energy
}

// Evaluated in order; first substring hit in the category wins.
var categoryTable = []keyword{
	{"calm", model.EnergyLow},
	{"yoga", model.EnergyLow},
	{"wellness", model.EnergyLow},
	{"meditation", model.EnergyLow},
	{"culture", model.EnergyLow},
	{"museum", model.EnergyLow},
	{"art", model.EnergyLow},
	{"literature", model.EnergyLow},
	{"reading", model.EnergyLow},
	{"social", model.EnergyMedium},
	{"meetup", model.EnergyMedium},
	{"food", model.EnergyMedium},
	{"cooking", model.EnergyMedium},
	{"sport", model.EnergyHigh},
	{"fitness", model.EnergyHigh},
	{"gym", model.EnergyHigh},
	{"music", model.EnergyHigh},
	{"concert", model.EnergyHigh},
	{"nightlife", model.EnergyHigh},
	{"party", model.EnergyHigh},
	{"club", model.EnergyHigh},
	{"festival", model.EnergyHigh},
}

var (
	highWords = []string{"party", "club", "festival", "concert", "sport", "fitness", "gym"}
	lowWords  = []string{"yoga", "meditation", "wellness", "calm", "museum", "reading", "art"}
)

// Classify assigns an energy level from the category, falling back to
// keywords in the title and description, then to medium.
func Classify(e *model.Event) model.Energy {
	if cat := e.NormalizedCategory(); cat != "" {
		for _, k := range categoryTable {
			if strings.Contains(cat, k.word) {
				return k.energy
			}
		}
	}
	text := strings.ToLower(e.Title + " " + e.Description)
	if containsAny(text, highWords) {
		return model.EnergyHigh
	}
	if containsAny(text, lowWords) {
		return model.EnergyLow
	}
	return model.EnergyMedium
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
