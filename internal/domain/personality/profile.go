// Package personality models a user's personality profile: MBTI-style trait
// scores, interest scores, the quiz that produces them and the tag matching
// used by filtering, scoring and per-event match badges.
package personality

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Traits holds the eight MBTI-style trait scores as complementary pairs.
type Traits struct {
	E int `json:"E"`
	I int `json:"I"`
	N int `json:"N"`
	S int `json:"S"`
	T int `json:"T"`
	F int `json:"F"`
	J int `json:"J"`
	P int `json:"P"`
}

// Interests holds interest scores. Music, Sport, Literature and Movies are
// produced by the quiz; the remaining dimensions are optional and default to 0.
type Interests struct {
	Music      int `json:"music"`
	Sport      int `json:"sport"`
	Literature int `json:"literature"`
	Movies     int `json:"movies"`
	Calm       int `json:"calm,omitempty"`
	Nightlife  int `json:"nightlife,omitempty"`
	Culture    int `json:"culture,omitempty"`
	Social     int `json:"social,omitempty"`
}

// Profile is a user's personality profile.
type Profile struct {
	MBTI            string    `json:"mbti"`
	Traits          Traits    `json:"traits"`
	Interests       Interests `json:"interests"`
	UpdatedAt       int64     `json:"updatedAt"`
	ManuallyEntered bool      `json:"manuallyEntered,omitempty"`
}

// manualTraitScore is the score given to each chosen letter on manual entry.
const manualTraitScore = 4

// manualInterestScore is the neutral interest score used on manual entry.
const manualInterestScore = 2

var mbtiPattern = regexp.MustCompile(`^[EI][NS][TF][JP]$`)

// DeriveMBTI builds the 4-letter code from trait scores, picking the higher
// member of each pair. Ties resolve to E, N, T and J.
func DeriveMBTI(t Traits) string {
	pick := func(a, b int, la, lb byte) byte {
		if a >= b {
			return la
		}
		return lb
	}
	return string([]byte{
		pick(t.E, t.I, 'E', 'I'),
		pick(t.N, t.S, 'N', 'S'),
		pick(t.T, t.F, 'T', 'F'),
		pick(t.J, t.P, 'J', 'P'),
	})
}

// NormalizeMBTI upper-cases and validates a type code.
func NormalizeMBTI(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 4 {
		return "", fmt.Errorf("%w: %q must have 4 letters", ErrInvalidMBTI, code)
	}
	if !mbtiPattern.MatchString(c) {
		return "", fmt.Errorf("%w: %q must be E/I, N/S, T/F, J/P", ErrInvalidMBTI, code)
	}
	return c, nil
}

// FromManual builds a profile from a manually entered type code. Each chosen
// letter scores 4 and its complement 0; interests are set to a neutral 2.
//
// This encoding is coarser than the quiz: a quiz-derived profile and a manual
// profile with the same code generally have different trait vectors.
func FromManual(code string, now time.Time) (*Profile, error) {
	c, err := NormalizeMBTI(code)
	if err != nil {
		return nil, err
	}
	score := func(b, want byte) int {
		if b == want {
			return manualTraitScore
		}
		return 0
	}
	return &Profile{
		MBTI: c,
		Traits: Traits{
			E: score(c[0], 'E'), I: score(c[0], 'I'),
			N: score(c[1], 'N'), S: score(c[1], 'S'),
			T: score(c[2], 'T'), F: score(c[2], 'F'),
			J: score(c[3], 'J'), P: score(c[3], 'P'),
		},
		Interests: Interests{
			Music:      manualInterestScore,
			Sport:      manualInterestScore,
			Literature: manualInterestScore,
			Movies:     manualInterestScore,
		},
		UpdatedAt:       now.UnixMilli(),
		ManuallyEntered: true,
	}, nil
}

// Validate checks that all scores are non-negative.
func (p *Profile) Validate() error {
	t, i := p.Traits, p.Interests
	for _, v := range []int{t.E, t.I, t.N, t.S, t.T, t.F, t.J, t.P,
		i.Music, i.Sport, i.Literature, i.Movies, i.Calm, i.Nightlife, i.Culture, i.Social} {
		if v < 0 {
			return fmt.Errorf("%w: negative score", ErrInvalidProfile)
		}
	}
	return nil
}

// Code returns the type code derived from the trait scores. The stored MBTI
// field is informational; the traits are authoritative.
func (p *Profile) Code() string {
	if p == nil {
		return ""
	}
	return DeriveMBTI(p.Traits)
}
