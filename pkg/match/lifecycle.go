package match

import (
	"fmt"
	"time"

	"github.com/cfoust/uhc/pkg/events"
	"github.com/cfoust/uhc/pkg/game"
)

// LoadNewGame prepares the match. It can only be called once. If the
// configuration or the worlds cannot be loaded the match stays LOADING.
func (s *Session) LoadNewGame() error {
	s.mutex.Lock()
	if s.loaded {
		s.mutex.Unlock()
		return ErrAlreadyLoaded
	}
	s.loaded = true
	s.mutex.Unlock()

	logger := s.Logger()

	if err := s.stats.StartRecording(); err != nil {
		logger.Warn().Err(err).Msg("could not start recording statistics")
	}

	cfg, err := s.loadConfig()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load configuration")
		return fmt.Errorf("could not load configuration: %w", err)
	}

	s.mutex.Lock()
	s.config = cfg
	if cfg.Match.Deathmatch.Enabled {
		s.remaining = cfg.Match.Deathmatch.Duration()
	}
	s.mutex.Unlock()

	s.tasks.configure(cfg.Match)

	// The session starts out LOADING, so there is no transition to
	// announce; only the presentation needs to catch up.
	s.updateStatus()

	for _, subscriber := range s.subscribers {
		subscriber.Subscribe(s.Events)
	}

	if err := s.registerCommands(); err != nil {
		return err
	}

	if cfg.Server.BungeeSupport && s.host != nil {
		if err := s.host.RegisterProxyChannel(ProxyChannel); err != nil {
			logger.Error().Err(err).Msgf("could not register %s channel", ProxyChannel)
		}
	}

	debug := cfg.Match.Debug
	if err := s.worlds.LoadWorlds(debug); err != nil {
		logger.Error().Err(err).Msg("failed to load worlds")
		return fmt.Errorf("could not load worlds: %w", err)
	}

	if cfg.Match.PreGenerateWorld && !debug {
		logger.Info().Msg("pre-generating world")
		return s.worlds.GenerateChunks(func() {
			if err := s.StartWaitingPlayers(); err != nil {
				logger.Error().Err(err).Msg("could not start waiting for players")
			}
		})
	}

	return s.StartWaitingPlayers()
}

// StartWaitingPlayers opens the match to players.
func (s *Session) StartWaitingPlayers() error {
	if state := s.State(); state != game.Loading {
		return fmt.Errorf("%w: cannot wait for players while %s", ErrInvalidState, state)
	}

	if err := s.worlds.PrepareWorlds(); err != nil {
		return fmt.Errorf("could not prepare worlds: %w", err)
	}

	err := s.transition(game.Waiting, func() { s.pvp = false }, game.Loading)
	if err != nil {
		return err
	}

	s.scenarios.LoadDefaults()

	logger := s.Logger()
	logger.Info().Msg("players are now allowed to join")
	s.tasks.preStart.Start(s.scheduler)
	return nil
}

// StartGame begins the match and teleports every team to its start point.
// The match goes live once they have had time to settle.
func (s *Session) StartGame() error {
	err := s.transition(game.Starting, nil, game.Waiting)
	if err != nil {
		return err
	}

	s.tasks.preStart.Cancel()

	if s.settings().Match.ScenarioVoting {
		s.scenarios.CountVotes()
	}

	s.Events.Starting.Publish(events.Starting{})

	s.BroadcastInfo(MessageStarting)
	s.BroadcastInfo(MessageTeleporting)

	if err := s.players.RandomTeleportTeams(); err != nil {
		logger := s.Logger()
		logger.Error().Err(err).Msg("could not teleport teams")
	}

	s.mutex.Lock()
	s.ending = false
	s.mutex.Unlock()

	s.tasks.settle.Start(s.scheduler)
	return nil
}

// StartWatchingEndOfGame makes the match live and starts its clocks.
func (s *Session) StartWatchingEndOfGame() error {
	err := s.transition(game.Playing, nil, game.Starting)
	if err != nil {
		return err
	}

	s.tasks.settle.Cancel()

	cfg := s.settings()
	settings := cfg.Match

	s.worlds.SetWorldsStartGame()

	s.tasks.watchdog.Start(s.scheduler)
	s.tasks.elapsed.Start(s.scheduler)
	s.tasks.pvp.Start(s.scheduler)

	if settings.EpisodeMarkers.Enabled {
		s.SetEpisodeNumber(1)
		s.tasks.episodes.Start(s.scheduler)
	}

	if settings.Deathmatch.Enabled {
		s.tasks.deathmatch.Start(s.scheduler)
	}

	if settings.PermanentDay() {
		s.tasks.permanentDay.Start(s.scheduler)
	}

	if settings.FinalHeal.Enabled {
		s.tasks.finalHeal.Start(s.scheduler)
	}

	startedAt := time.Now()
	s.Events.Started.Publish(events.Started{At: startedAt})

	err = s.stats.AddGame(Game{
		Server:         cfg.Server.Name,
		StartedAt:      startedAt,
		Deathmatch:     settings.Deathmatch.Enabled,
		EpisodeMarkers: settings.EpisodeMarkers.Enabled,
		FinalHeal:      settings.FinalHeal.Enabled,
	})
	if err != nil {
		logger := s.Logger()
		logger.Error().Err(err).Msg("could not record game")
	}

	return nil
}

// StartDeathmatch brings the survivors together to force a result.
func (s *Session) StartDeathmatch() error {
	err := s.transition(game.Deathmatch, func() {
		s.remaining = 0
		s.pvp = true
	}, game.Playing)
	if err != nil {
		return err
	}

	s.tasks.deathmatch.Cancel()

	// The match may have been ended while the transition was announced.
	if s.State() != game.Deathmatch {
		return nil
	}

	if err := s.players.TeleportToArena(); err != nil {
		logger := s.Logger()
		logger.Error().Err(err).Msg("could not teleport players to the arena")
	}

	s.BroadcastInfo(MessageDeathmatch)
	s.Events.Deathmatch.Publish(events.Deathmatch{})
	return nil
}

// EndGame finishes the match. It does nothing unless the match is being
// played, and reports whether it ended the match.
func (s *Session) EndGame() bool {
	err := s.transition(game.Ended, func() {
		s.pvp = false
		s.ending = true
	}, game.Playing, game.Deathmatch)
	if err != nil {
		logger := s.Logger()
		logger.Debug().Err(err).Msg("not ending match")
		return false
	}

	s.BroadcastInfo(MessageFinished)
	s.players.PlaySoundToAll(SoundFinish, 1, 2)
	s.players.SetAllPlayersEndGame()
	s.tasks.stopRestart.Start(s.scheduler)
	return true
}

// StartEndGameThread arms the countdown that ends the match.
func (s *Session) StartEndGameThread() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ending || !s.state.InMatch() {
		return false
	}

	s.ending = true
	s.endCountdown = s.settingsLocked().Match.EndCountdownSeconds
	s.tasks.endCountdown.Start(s.scheduler)
	return true
}

// StopEndGameThread disarms the end countdown, for example when a player
// is revived.
func (s *Session) StopEndGameThread() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.ending || !s.state.InMatch() {
		return false
	}

	s.ending = false
	s.tasks.endCountdown.Cancel()
	return true
}
