package personality

import "errors"

// Sentinel kinds for personality errors.
var (
	ErrInvalidMBTI    = errors.New("invalid mbti type")
	ErrInvalidAnswers = errors.New("invalid quiz answers")
	ErrInvalidProfile = errors.New("invalid personality profile")
)
