package match

import (
	"time"

	"github.com/cfoust/uhc/pkg/config"
	"github.com/cfoust/uhc/pkg/events"
)

type Sound string

const (
	SoundFinish Sound = "ENDERDRAGON_GROWL"
)

// Players manages who is in the match and how they are grouped into teams.
type Players interface {
	Broadcast(message string)
	// RandomTeleportTeams sends every team to its own start point.
	RandomTeleportTeams() error
	// TeleportToArena gathers the survivors for the deathmatch.
	TeleportToArena() error
	SetAllPlayersEndGame()
	PlaySoundToAll(sound Sound, volume, pitch float32)
	HealAll()
	OnlyOneTeamRemaining() bool
	// Ready returns the number of players ready to start.
	Ready() int
}

// Scenarios holds the optional rule set of a match.
type Scenarios interface {
	LoadDefaults()
	CountVotes()
	IsActivated(name string) bool
}

type Worlds interface {
	LoadWorlds(debug bool) error
	PrepareWorlds() error
	// GenerateChunks starts pre-generating the world and calls done once
	// it has finished.
	GenerateChunks(done func()) error
	SetWorldsStartGame()
	SetPermanentDay()
}

// Game describes a match when it goes live.
type Game struct {
	Server         string
	StartedAt      time.Time
	Deathmatch     bool
	EpisodeMarkers bool
	FinalHeal      bool
}

type Stats interface {
	StartRecording() error
	AddGame(game Game) error
}

// Host is the process the match runs inside of.
type Host interface {
	SetPresentationStatus(text string) error
	RegisterProxyChannel(name string) error
	// Shutdown stops or restarts the host once a match has finished.
	Shutdown()
}

type ConfigLoader func() (*config.Config, error)

// Subscriber is anything that wants to listen to a match's notifications.
type Subscriber interface {
	Subscribe(bus *events.Bus)
}
