package match

import "errors"

var (
	// ErrInvalidState is returned when a lifecycle operation is requested
	// from a state that does not allow it.
	ErrInvalidState = errors.New("invalid match state")
	// ErrInvalidTransition is returned when SetState is asked to break the
	// LOADING -> WAITING -> STARTING -> PLAYING -> [DEATHMATCH] -> ENDED path.
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrAlreadyLoaded     = errors.New("match already loaded")
)
