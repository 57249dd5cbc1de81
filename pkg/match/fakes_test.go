package match

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/cfoust/uhc/pkg/clock"
	"github.com/cfoust/uhc/pkg/config"

	"github.com/sasha-s/go-deadlock"
	"github.com/stretchr/testify/require"
)

type fakePlayers struct {
	mutex     deadlock.Mutex
	messages  []string
	teleports int
	arena     int
	endGame   int
	sounds    []Sound
	heals     int
	oneTeam   bool
	ready     int
}

func (p *fakePlayers) Broadcast(message string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.messages = append(p.messages, message)
}

func (p *fakePlayers) RandomTeleportTeams() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.teleports++
	return nil
}

func (p *fakePlayers) TeleportToArena() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.arena++
	return nil
}

func (p *fakePlayers) SetAllPlayersEndGame() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.endGame++
}

func (p *fakePlayers) PlaySoundToAll(sound Sound, volume, pitch float32) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.sounds = append(p.sounds, sound)
}

func (p *fakePlayers) HealAll() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.heals++
}

func (p *fakePlayers) OnlyOneTeamRemaining() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.oneTeam
}

func (p *fakePlayers) Ready() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.ready
}

func (p *fakePlayers) setOneTeam(value bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.oneTeam = value
}

func (p *fakePlayers) setReady(ready int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.ready = ready
}

func (p *fakePlayers) Messages() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]string(nil), p.messages...)
}

type fakeScenarios struct {
	defaults int
	votes    int
	active   []string
}

func (s *fakeScenarios) LoadDefaults() { s.defaults++ }
func (s *fakeScenarios) CountVotes()   { s.votes++ }

func (s *fakeScenarios) IsActivated(name string) bool {
	return slices.Contains(s.active, name)
}

type fakeWorlds struct {
	loadErr     error
	loaded      int
	prepared    int
	started     int
	permanent   int
	generate    func()
	generations int
}

func (w *fakeWorlds) LoadWorlds(debug bool) error {
	w.loaded++
	return w.loadErr
}

func (w *fakeWorlds) PrepareWorlds() error {
	w.prepared++
	return nil
}

func (w *fakeWorlds) GenerateChunks(done func()) error {
	w.generations++
	w.generate = done
	return nil
}

func (w *fakeWorlds) SetWorldsStartGame() { w.started++ }
func (w *fakeWorlds) SetPermanentDay()    { w.permanent++ }

type fakeStats struct {
	recording int
	games     []Game
}

func (s *fakeStats) StartRecording() error {
	s.recording++
	return nil
}

func (s *fakeStats) AddGame(game Game) error {
	s.games = append(s.games, game)
	return nil
}

type fakeHost struct {
	mutex     deadlock.Mutex
	statuses  []string
	err       error
	panics    bool
	channels  []string
	shutdowns int
}

func (h *fakeHost) SetPresentationStatus(text string) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.panics {
		panic("host unavailable")
	}
	h.statuses = append(h.statuses, text)
	return h.err
}

func (h *fakeHost) RegisterProxyChannel(name string) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.channels = append(h.channels, name)
	return nil
}

func (h *fakeHost) Shutdown() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.shutdowns++
}

func (h *fakeHost) Statuses() []string {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return append([]string(nil), h.statuses...)
}

type harness struct {
	*Session
	clock     *clock.Manual
	players   *fakePlayers
	scenarios *fakeScenarios
	worlds    *fakeWorlds
	stats     *fakeStats
	host      *fakeHost
}

var errBrokenConfig = errors.New("broken config")

func newHarness(t *testing.T, configure func(*config.Config)) *harness {
	t.Helper()

	h := &harness{
		clock:     clock.NewManual(),
		players:   &fakePlayers{},
		scenarios: &fakeScenarios{},
		worlds:    &fakeWorlds{},
		stats:     &fakeStats{},
		host:      &fakeHost{},
	}

	h.Session = New(context.Background(), Options{
		Players:   h.players,
		Scenarios: h.scenarios,
		Worlds:    h.worlds,
		Stats:     h.stats,
		Host:      h.host,
		Scheduler: h.clock,
		Config: func() (*config.Config, error) {
			cfg, err := config.Process(nil)
			if err != nil {
				return nil, err
			}
			if configure != nil {
				configure(cfg)
			}
			return cfg, nil
		},
	})
	t.Cleanup(h.Close)

	return h
}

// playing loads the match and takes it all the way to PLAYING.
func playing(t *testing.T, configure func(*config.Config)) *harness {
	t.Helper()

	h := newHarness(t, configure)
	require.NoError(t, h.LoadNewGame())
	require.NoError(t, h.StartGame())
	require.NoError(t, h.StartWatchingEndOfGame())
	return h
}
