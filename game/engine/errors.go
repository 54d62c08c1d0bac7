package engine

import "errors"

var (
	// ErrOutOfBounds is returned when a coordinate lies outside the board
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrInvalidArgument is returned for nil or malformed engine inputs
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStructuralViolation is returned when a level fails structural validation
	ErrStructuralViolation = errors.New("level structure violation")
)
