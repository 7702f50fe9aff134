package scoring

import "errors"

var (
	ErrInvalidDefinition = errors.New("invalid assessment definition")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrMalformedResponse = errors.New("malformed response")
	// ErrInsufficientData means no dimension received any scorable evidence,
	// which points at a broken definition mapping rather than a user error.
	ErrInsufficientData = errors.New("insufficient data: no dimension has scorable evidence")
)
