package match

import (
	"fmt"
	"time"

	"github.com/cfoust/uhc/pkg/clock"
	"github.com/cfoust/uhc/pkg/config"
	"github.com/cfoust/uhc/pkg/events"
	"github.com/cfoust/uhc/pkg/game"
)

const (
	tickInterval   = time.Second
	stopDelay      = time.Second
	preStartPeriod = time.Second
)

type taskSet struct {
	preStart     *clock.Task
	settle       *clock.Task
	watchdog     *clock.Task
	elapsed      *clock.Task
	pvp          *clock.Task
	episodes     *clock.Task
	deathmatch   *clock.Task
	permanentDay *clock.Task
	finalHeal    *clock.Task
	endCountdown *clock.Task
	stopRestart  *clock.Task
}

func (s *Session) newTasks() taskSet {
	return taskSet{
		preStart:     clock.NewTask("pre-start", 0, preStartPeriod, s.checkPreStart),
		settle:       clock.NewTask("settle", 0, 0, s.settle),
		watchdog:     clock.NewTask("watchdog", tickInterval, tickInterval, s.watchPlayers),
		elapsed:      clock.NewTask("elapsed", tickInterval, tickInterval, s.tickElapsed),
		pvp:          clock.NewTask("pvp", 0, 0, s.enablePvP),
		episodes:     clock.NewTask("episodes", 0, 0, s.markEpisode),
		deathmatch:   clock.NewTask("deathmatch", tickInterval, tickInterval, s.countDownDeathmatch),
		permanentDay: clock.NewTask("permanent-day", 0, 0, s.setPermanentDay),
		finalHeal:    clock.NewTask("final-heal", 0, 0, s.healAll),
		endCountdown: clock.NewTask("end-countdown", tickInterval, tickInterval, s.countDownEnd),
		stopRestart:  clock.NewTask("stop-restart", stopDelay, 0, s.stopRestart),
	}
}

// configure applies the configured delays. Flags that decide whether a task
// runs at all are read when the match goes live, not here.
func (t *taskSet) configure(settings config.MatchSettings) {
	t.settle.SetTiming(settings.StartDelay(), 0)
	t.pvp.SetTiming(settings.PvPDelay(), 0)
	episode := settings.EpisodeMarkers.Duration()
	t.episodes.SetTiming(episode, episode)
	t.permanentDay.SetTiming(settings.PermanentDayDelay(), 0)
	t.finalHeal.SetTiming(settings.FinalHeal.Duration(), 0)
}

// match returns every task that must not outlive the match.
func (t *taskSet) match() []*clock.Task {
	return []*clock.Task{
		t.preStart,
		t.settle,
		t.watchdog,
		t.elapsed,
		t.pvp,
		t.episodes,
		t.deathmatch,
		t.permanentDay,
		t.finalHeal,
		t.endCountdown,
	}
}

func (t *taskSet) all() []*clock.Task {
	return append(t.match(), t.stopRestart)
}

func (s *Session) checkPreStart() bool {
	if s.State() != game.Waiting {
		return false
	}

	settings := s.settings().Match
	if !settings.AutoStart {
		return false
	}

	ready := s.players.Ready()
	if ready == 0 || ready < settings.MinPlayers {
		return true
	}

	logger := s.Logger()
	logger.Info().Msgf("%d players ready, starting", ready)
	if err := s.StartGame(); err != nil {
		logger.Error().Err(err).Msg("could not start match")
	}
	return false
}

func (s *Session) settle() bool {
	if err := s.StartWatchingEndOfGame(); err != nil {
		logger := s.Logger()
		logger.Warn().Err(err).Msg("match did not go live")
	}
	return false
}

func (s *Session) watchPlayers() bool {
	if !s.State().InMatch() {
		return false
	}

	if s.players.OnlyOneTeamRemaining() {
		s.StartEndGameThread()
	} else {
		s.StopEndGameThread()
	}
	return true
}

func (s *Session) tickElapsed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state == game.Ended {
		return false
	}

	s.elapsed += tickInterval
	return true
}

func (s *Session) enablePvP() bool {
	s.mutex.Lock()
	if !s.state.InMatch() || s.pvp {
		s.mutex.Unlock()
		return false
	}
	s.pvp = true
	s.mutex.Unlock()

	s.BroadcastInfo(MessagePvP)
	s.Events.PvPEnabled.Publish(events.PvPEnabled{})
	return false
}

func (s *Session) markEpisode() bool {
	s.mutex.Lock()
	if !s.state.InMatch() {
		s.mutex.Unlock()
		return false
	}
	number := s.episode
	elapsed := s.elapsed
	s.episode++
	s.mutex.Unlock()

	s.BroadcastInfo(fmt.Sprintf(MessageEpisode, number))
	s.Events.EpisodeMarker.Publish(events.EpisodeMarker{
		Number:  number,
		Elapsed: elapsed,
	})
	return true
}

func (s *Session) countDownDeathmatch() bool {
	s.mutex.Lock()
	if s.state != game.Playing {
		s.mutex.Unlock()
		return false
	}
	s.remaining -= tickInterval
	if s.remaining < 0 {
		s.remaining = 0
	}
	remaining := s.remaining
	s.mutex.Unlock()

	if remaining == 0 {
		if err := s.StartDeathmatch(); err != nil {
			logger := s.Logger()
			logger.Warn().Err(err).Msg("could not start deathmatch")
		}
		return false
	}

	if remaining%time.Minute == 0 || remaining <= 10*time.Second {
		s.BroadcastInfo(fmt.Sprintf(MessageDeathmatchIn, FormatDuration(remaining)))
	}
	return true
}

func (s *Session) setPermanentDay() bool {
	if s.State().InMatch() {
		s.worlds.SetPermanentDay()
	}
	return false
}

func (s *Session) healAll() bool {
	if !s.State().InMatch() {
		return false
	}
	s.players.HealAll()
	s.BroadcastInfo(MessageFinalHeal)
	return false
}

func (s *Session) countDownEnd() bool {
	s.mutex.Lock()
	if !s.ending || !s.state.InMatch() {
		s.mutex.Unlock()
		return false
	}
	s.endCountdown--
	left := s.endCountdown
	s.mutex.Unlock()

	if left <= 0 {
		s.EndGame()
		return false
	}

	if left%10 == 0 || left <= 5 {
		s.BroadcastInfo(fmt.Sprintf(MessageEndingIn, left))
	}
	return true
}

func (s *Session) stopRestart() bool {
	logger := s.Logger()
	if s.host == nil {
		logger.Info().Msg("match over, no host to shut down")
		return false
	}

	logger.Info().Msg("shutting down after match end")
	s.host.Shutdown()
	return false
}
