// Package match drives a single last-survivor match through its lifecycle
// and owns the clocks that run while it is being played.
package match

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/cfoust/uhc/pkg/clock"
	"github.com/cfoust/uhc/pkg/commands"
	"github.com/cfoust/uhc/pkg/config"
	"github.com/cfoust/uhc/pkg/events"
	"github.com/cfoust/uhc/pkg/game"
	"github.com/cfoust/uhc/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

type Options struct {
	Players   Players
	Scenarios Scenarios
	Worlds    Worlds
	Stats     Stats
	// Host is optional. Without one there is no presentation status and
	// nothing is shut down once the match is over.
	Host Host
	// Config defaults to the built-in configuration.
	Config ConfigLoader
	// Scheduler defaults to a wall clock scheduler bound to the session.
	Scheduler   clock.Scheduler
	Subscribers []Subscriber
}

// Admin is whoever issues a command to the match.
type Admin struct {
	Name  string
	Reply func(message string)
}

type Session struct {
	utils.Session

	Events   *events.Bus
	Commands *commands.CommandGroup[Admin]

	players     Players
	scenarios   Scenarios
	worlds      Worlds
	stats       Stats
	host        Host
	loadConfig  ConfigLoader
	scheduler   clock.Scheduler
	subscribers []Subscriber

	tasks taskSet

	// held while pushing the presentation status
	statusMutex deadlock.Mutex

	// guards everything below
	mutex        deadlock.Mutex
	config       *config.Config
	loaded       bool
	state        game.State
	pvp          bool
	ending       bool
	episode      int
	elapsed      time.Duration
	remaining    time.Duration
	endCountdown int
}

// New creates the session for one match. It starts out LOADING; nothing
// happens until LoadNewGame is called.
func New(ctx context.Context, options Options) *Session {
	s := &Session{
		Session:     utils.NewSession(ctx),
		Events:      events.NewBus(),
		players:     options.Players,
		scenarios:   options.Scenarios,
		worlds:      options.Worlds,
		stats:       options.Stats,
		host:        options.Host,
		loadConfig:  options.Config,
		scheduler:   options.Scheduler,
		subscribers: options.Subscribers,
		state:       game.Loading,
	}

	if s.loadConfig == nil {
		s.loadConfig = config.Loader(nil)
	}

	if s.scheduler == nil {
		s.scheduler = clock.NewScheduler(s.Ctx())
	}

	s.Commands = commands.NewCommandGroup[Admin]("uhc", func(admin Admin, message string) {
		if admin.Reply != nil {
			admin.Reply(message)
		}
	})

	s.tasks = s.newTasks()

	// Registered before anyone else so no match clock outlives the match.
	s.Events.StateChanged.Subscribe(func(change events.StateChanged) {
		if change.New != game.Ended {
			return
		}
		for _, task := range s.tasks.match() {
			task.Cancel()
		}
	})

	return s
}

func (s *Session) Logger() zerolog.Logger {
	return log.With().Str("service", "match").Logger()
}

// Config returns the loaded configuration, or nil before LoadNewGame.
func (s *Session) Config() *config.Config {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.config
}

func (s *Session) settings() config.Config {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.settingsLocked()
}

func (s *Session) settingsLocked() config.Config {
	if s.config == nil {
		return config.Config{}
	}
	return *s.config
}

func (s *Session) State() game.State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

func (s *Session) PvP() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.pvp
}

// SetPvP toggles PvP by hand. It is only allowed while the match is being
// played.
func (s *Session) SetPvP(enabled bool) error {
	s.mutex.Lock()
	if !s.state.InMatch() {
		state := s.state
		s.mutex.Unlock()
		return fmt.Errorf("%w: cannot change pvp while %s", ErrInvalidState, state)
	}
	changed := s.pvp != enabled
	s.pvp = enabled
	s.mutex.Unlock()

	if changed && enabled {
		s.Events.PvPEnabled.Publish(events.PvPEnabled{})
	}
	return nil
}

// IsEnding reports whether the countdown to end the match has been armed.
func (s *Session) IsEnding() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.ending
}

func (s *Session) EpisodeNumber() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.episode
}

func (s *Session) SetEpisodeNumber(episode int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if episode < 0 {
		episode = 0
	}
	s.episode = episode
}

func (s *Session) ElapsedTime() time.Duration {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.elapsed
}

func (s *Session) SetElapsedTime(elapsed time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.elapsed = elapsed
}

func (s *Session) RemainingTime() time.Duration {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.remaining
}

func (s *Session) SetRemainingTime(remaining time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if remaining < 0 {
		remaining = 0
	}
	s.remaining = remaining
}

func (s *Session) FormattedRemainingTime() string {
	return FormatDuration(s.RemainingTime())
}

// TimeUntilNextEpisode is derived from the episode number and the elapsed
// time, read together so the two cannot drift apart mid-calculation.
func (s *Session) TimeUntilNextEpisode() time.Duration {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delay := s.settingsLocked().Match.EpisodeMarkers.Duration()
	return time.Duration(s.episode)*delay - s.elapsed
}

// Summary is a one-line description of the match for administrators.
func (s *Session) Summary() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return fmt.Sprintf(
		"state=%s elapsed=%s remaining=%s episode=%d pvp=%t ending=%t",
		s.state,
		FormatDuration(s.elapsed),
		FormatDuration(s.remaining),
		s.episode,
		s.pvp,
		s.ending,
	)
}

// SetState moves the match to state. Asking for the current state does
// nothing at all. Any move that breaks the lifecycle path is refused with
// ErrInvalidTransition.
func (s *Session) SetState(state game.State) error {
	s.mutex.Lock()
	old := s.state
	if old == state {
		s.mutex.Unlock()
		return nil
	}
	if !game.CanTransition(old, state) {
		s.mutex.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, old, state)
	}
	s.swap(state)
	s.mutex.Unlock()

	s.announce(old, state)
	return nil
}

// transition atomically moves the match to state if it is currently in one
// of from, applying mutate in the same critical section.
func (s *Session) transition(state game.State, mutate func(), from ...game.State) error {
	s.mutex.Lock()
	old := s.state
	if !slices.Contains(from, old) {
		s.mutex.Unlock()
		return fmt.Errorf("%w: cannot move to %s while %s", ErrInvalidState, state, old)
	}
	s.swap(state)
	if mutate != nil {
		mutate()
	}
	s.mutex.Unlock()

	s.announce(old, state)
	return nil
}

// swap must be called with the mutex held.
func (s *Session) swap(state game.State) {
	s.state = state
	if state == game.Ended {
		s.pvp = false
	}
}

func (s *Session) announce(old, state game.State) {
	logger := s.Logger()
	logger.Info().Msgf("match state %s -> %s", old, state)
	s.Events.StateChanged.Publish(events.StateChanged{Old: old, New: state})
	s.updateStatus()
}

// updateStatus pushes the presentation status of the current state to the
// host. Pushes are serialized and each one reads the state afresh, so the
// last status pushed always matches the last transition. Failures are
// logged and otherwise ignored.
func (s *Session) updateStatus() {
	if s.host == nil || s.settings().Server.DisableStatus {
		return
	}

	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	state := s.State()
	logger := s.Logger()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Err(fmt.Errorf("%v", r)).Msg("presentation status update panicked")
		}
	}()

	err := s.host.SetPresentationStatus(state.Status())
	if err != nil {
		logger.Error().Err(err).Msg("could not update presentation status")
	}
}

// BroadcastInfo sends a prefixed informational message to every player.
func (s *Session) BroadcastInfo(message string) {
	s.players.Broadcast(MessagePrefix + " " + message)
}

func (s *Session) PlayerKilled(killer, killed string) {
	s.Events.PlayerKill.Publish(events.PlayerKill{Killer: killer, Killed: killed})
}

// Close stops every clock the session owns and cancels its context.
func (s *Session) Close() {
	for _, task := range s.tasks.all() {
		task.Cancel()
	}
	s.Cancel()
}
