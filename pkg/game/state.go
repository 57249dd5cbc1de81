package game

import "fmt"

// State is the lifecycle phase of a match. Exactly one is current at any
// time.
type State int

const (
	Loading State = iota
	Waiting
	Starting
	Playing
	Deathmatch
	Ended
)

var stateNames = map[State]string{
	Loading:    "LOADING",
	Waiting:    "WAITING",
	Starting:   "STARTING",
	Playing:    "PLAYING",
	Deathmatch: "DEATHMATCH",
	Ended:      "ENDED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// InMatch reports whether players are actually fighting.
func (s State) InMatch() bool {
	return s == Playing || s == Deathmatch
}

var transitions = map[State][]State{
	Loading:    {Waiting},
	Waiting:    {Starting},
	Starting:   {Playing},
	Playing:    {Deathmatch, Ended},
	Deathmatch: {Ended},
}

// CanTransition reports whether a match may move directly from one state to
// another. ENDED is terminal.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

const (
	StatusLoading  = "Loading..."
	StatusWaiting  = "Waiting for players"
	StatusStarting = "Starting"
	StatusPlaying  = "Playing"
	StatusEnded    = "Ended"
)

// ENDED is deliberately absent: it and any state not listed here use the
// "ended" presentation.
var statusText = map[State]string{
	Loading:    StatusLoading,
	Waiting:    StatusWaiting,
	Starting:   StatusStarting,
	Playing:    StatusPlaying,
	Deathmatch: StatusPlaying,
}

// Status returns the public presentation string for the state.
func (s State) Status() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return StatusEnded
}
