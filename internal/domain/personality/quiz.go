package personality

import (
	"fmt"
	"time"
)

// Axis names the trait or interest a quiz statement contributes to.
type Axis string

// Quiz axes.
const (
	AxisE          Axis = "E"
	AxisI          Axis = "I"
	AxisN          Axis = "N"
	AxisS          Axis = "S"
	AxisT          Axis = "T"
	AxisF          Axis = "F"
	AxisJ          Axis = "J"
	AxisP          Axis = "P"
	AxisMusic      Axis = "music"
	AxisSport      Axis = "sport"
	AxisLiterature Axis = "literature"
	AxisMovies     Axis = "movies"
)

// Statement is one yes/no quiz card.
type Statement struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	Axis Axis   `json:"axis"`
	Yes  int    `json:"yes"`
	No   int    `json:"no"`
}

var statements = []Statement{
	{ID: 1, Axis: AxisE, Yes: 1, Text: "Spending time with other people leaves me energized."},
	{ID: 2, Axis: AxisI, Yes: 1, Text: "I would rather have quiet time alone than go to a big party."},
	{ID: 3, Axis: AxisN, Yes: 1, Text: "I enjoy thinking about abstract ideas and future possibilities."},
	{ID: 4, Axis: AxisS, Yes: 1, Text: "Practical details matter more to me than big concepts."},
	{ID: 5, Axis: AxisT, Yes: 1, Text: "I decide with logic more than with feelings."},
	{ID: 6, Axis: AxisF, Yes: 1, Text: "I think about how my decisions affect other people emotionally."},
	{ID: 7, Axis: AxisJ, Yes: 1, Text: "A clear plan for the week makes me comfortable."},
	{ID: 8, Axis: AxisP, Yes: 1, Text: "I like to keep options open and decide at the last minute."},
	{ID: 9, Axis: AxisMusic, Yes: 1, Text: "I really enjoy live music."},
	{ID: 10, Axis: AxisMusic, Yes: 1, Text: "Small, calm music venues appeal to me more than big concerts."},
	{ID: 11, Axis: AxisSport, Yes: 1, Text: "I like sports events or being active outdoors."},
	{ID: 12, Axis: AxisSport, Yes: 1, Text: "Watching live sports with others is fun for me."},
	{ID: 13, Axis: AxisLiterature, Yes: 1, Text: "Book clubs or literature readings sound interesting."},
	{ID: 14, Axis: AxisLiterature, Yes: 1, Text: "I like calm places where I can read or listen to a speaker."},
	{ID: 15, Axis: AxisMovies, Yes: 1, Text: "Going to the cinema is one of my favourite outings."},
	{ID: 16, Axis: AxisMovies, Yes: 1, Text: "I would attend a film festival or a special screening."},
}

// Statements returns a copy of the fixed quiz, in presentation order.
func Statements() []Statement {
	out := make([]Statement, len(statements))
	copy(out, statements)
	return out
}

// ScoreQuiz turns one yes/no answer per statement, in presentation order, into
// a profile.
func ScoreQuiz(answers []bool, now time.Time) (*Profile, error) {
	if len(answers) != len(statements) {
		return nil, fmt.Errorf("%w: got %d answers, want %d", ErrInvalidAnswers, len(answers), len(statements))
	}
	p := &Profile{UpdatedAt: now.UnixMilli()}
	for i, st := range statements {
		pts := st.No
		if answers[i] {
			pts = st.Yes
		}
		*p.slot(st.Axis) += pts
	}
	p.MBTI = DeriveMBTI(p.Traits)
	return p, nil
}

func (p *Profile) slot(a Axis) *int {
	switch a {
	case AxisE:
		return &p.Traits.E
	case AxisI:
		return &p.Traits.I
	case AxisN:
		return &p.Traits.N
	case AxisS:
		return &p.Traits.S
	case AxisT:
		return &p.Traits.T
	case AxisF:
		return &p.Traits.F
	case AxisJ:
		return &p.Traits.J
	case AxisP:
		return &p.Traits.P
	case AxisMusic:
		return &p.Interests.Music
	case AxisSport:
		return &p.Interests.Sport
	case AxisLiterature:
		return &p.Interests.Literature
	default:
		return &p.Interests.Movies
	}
}
