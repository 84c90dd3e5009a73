package game

import (
	"errors"
	"fmt"
)

// The error taxonomy below is the engine's whole contract with callers:
// every rejected operation surfaces one of these, nothing is retried
// internally, and a rejection always means no state changed. The
// transport layer maps each type to a stable wire code.

// ErrGameNotFound is returned by stores for unknown game IDs
var ErrGameNotFound = errors.New("game not found")

// ErrGameExists is returned when creating a game with a taken ID
var ErrGameExists = errors.New("game already exists")

// ConfigurationError means the game cannot be set up as requested,
// e.g. the selected decks assemble into a pile missing a color.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// InsufficientCardsError means the draw pile cannot cover a deal
type InsufficientCardsError struct {
	Needed    int
	Available int
}

func (e *InsufficientCardsError) Error() string {
	return fmt.Sprintf("insufficient cards: need %d, %d in draw pile", e.Needed, e.Available)
}

// InvalidStateError means the operation is not legal in the current
// game or round state (voting twice, submitting twice, starting a
// started game).
type InvalidStateError struct {
	Op     string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: invalid state: %s", e.Op, e.Reason)
}

// AuthorizationError means the acting player may not perform the
// operation (a non-czar judging, the czar submitting).
type AuthorizationError struct {
	Op     string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s: not allowed: %s", e.Op, e.Reason)
}

// ValidationError means the request itself is malformed for the current
// round: wrong card count, cards not held, duplicate cards.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Reason
}
