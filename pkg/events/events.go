// Package events holds the notifications a match publishes and the bus that
// carries them. Delivery is synchronous: by the time a Publish call returns
// every subscriber has seen the notification.
package events

import (
	"time"

	"github.com/cfoust/uhc/pkg/game"
	"github.com/cfoust/uhc/pkg/utils"
)

// StateChanged is published after the match state has been swapped.
// Subscribers cannot veto it.
type StateChanged struct {
	Old game.State
	New game.State
}

// Starting is published when an administrator starts the match, before
// teams are teleported.
type Starting struct{}

// Started is published once the match is live and its clocks are running.
type Started struct {
	At time.Time
}

type PlayerKill struct {
	Killer string
	Killed string
}

// EpisodeMarker is published each time an episode finishes.
type EpisodeMarker struct {
	Number  int
	Elapsed time.Duration
}

type Deathmatch struct{}

type PvPEnabled struct{}

type Bus struct {
	StateChanged  *utils.Topic[StateChanged]
	Starting      *utils.Topic[Starting]
	Started       *utils.Topic[Started]
	PlayerKill    *utils.Topic[PlayerKill]
	EpisodeMarker *utils.Topic[EpisodeMarker]
	Deathmatch    *utils.Topic[Deathmatch]
	PvPEnabled    *utils.Topic[PvPEnabled]
}

func NewBus() *Bus {
	return &Bus{
		StateChanged:  utils.NewTopic[StateChanged]("state-changed"),
		Starting:      utils.NewTopic[Starting]("starting"),
		Started:       utils.NewTopic[Started]("started"),
		PlayerKill:    utils.NewTopic[PlayerKill]("player-kill"),
		EpisodeMarker: utils.NewTopic[EpisodeMarker]("episode-marker"),
		Deathmatch:    utils.NewTopic[Deathmatch]("deathmatch"),
		PvPEnabled:    utils.NewTopic[PvPEnabled]("pvp-enabled"),
	}
}
