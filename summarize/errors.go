package summarize

import "errors"

var (
	// ErrEmptyContent indicates there is nothing to summarize.
	ErrEmptyContent = errors.New("content is empty")

	// ErrInvalidMaxPoints indicates a bullet count outside 1..MaxPoints.
	ErrInvalidMaxPoints = errors.New("max points out of range")
)
