// Package headless implements the match collaborators entirely in memory so
// a match can be run and scripted without a game host attached.
package headless

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/cfoust/uhc/pkg/match"

	"github.com/repeale/fp-go"
	"github.com/repeale/fp-go/option"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

const MaxHealth = 20

type Point struct {
	X int
	Z int
}

type Player struct {
	Name   string
	Team   string
	Ready  bool
	Alive  bool
	Health int
	// Set once the match has finished for everyone
	Spectating bool
	Position   Point
}

type Players struct {
	mutex   deadlock.Mutex
	players map[string]*Player
	rng     *rand.Rand
	// Spawn points are picked within this distance of the origin
	radius int
	// Where broadcasts go
	out func(message string)
}

var _ match.Players = (*Players)(nil)

func NewPlayers(seed int64, radius int, out func(string)) *Players {
	return &Players{
		players: make(map[string]*Player),
		rng:     rand.New(rand.NewSource(seed)),
		radius:  radius,
		out:     out,
	}
}

func (p *Players) Logger() zerolog.Logger {
	return log.With().Str("service", "players").Logger()
}

// Join adds a player to team, or moves them there if they already joined.
func (p *Players) Join(name, team string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if player, ok := p.players[name]; ok {
		player.Team = team
		return
	}

	p.players[name] = &Player{
		Name:   name,
		Team:   team,
		Alive:  true,
		Health: MaxHealth,
	}
}

func (p *Players) Leave(name string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	delete(p.players, name)
}

func (p *Players) find(name string) (*Player, error) {
	player, ok := p.players[name]
	if !ok {
		return nil, fmt.Errorf("unknown player %s", name)
	}
	return player, nil
}

func (p *Players) SetReady(name string, ready bool) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	player, err := p.find(name)
	if err != nil {
		return err
	}
	player.Ready = ready
	return nil
}

// Kill marks killed as eliminated.
func (p *Players) Kill(killed string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	player, err := p.find(killed)
	if err != nil {
		return err
	}
	if !player.Alive {
		return fmt.Errorf("%s is already dead", killed)
	}
	player.Alive = false
	player.Health = 0
	return nil
}

func (p *Players) Revive(name string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	player, err := p.find(name)
	if err != nil {
		return err
	}
	player.Alive = true
	player.Health = MaxHealth
	return nil
}

// Get returns a copy of the named player.
func (p *Players) Get(name string) opt.Option[Player] {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	player, ok := p.players[name]
	if !ok {
		return opt.None[Player]()
	}
	return opt.Some[Player](*player)
}

func (p *Players) list() []*Player {
	players := make([]*Player, 0, len(p.players))
	for _, player := range p.players {
		players = append(players, player)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].Name < players[j].Name
	})
	return players
}

func (p *Players) alive() []*Player {
	return fp.Filter(func(player *Player) bool { return player.Alive })(p.list())
}

func teamsOf(players []*Player) []string {
	seen := make(map[string]struct{})
	teams := make([]string, 0)
	for _, team := range fp.Map(func(player *Player) string { return player.Team })(players) {
		if _, ok := seen[team]; ok {
			continue
		}
		seen[team] = struct{}{}
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams
}

// Teams returns the teams that still have someone alive.
func (p *Players) Teams() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return teamsOf(p.alive())
}

// LastTeam returns the winning team once only one is left.
func (p *Players) LastTeam() opt.Option[string] {
	teams := p.Teams()
	if len(teams) != 1 {
		return opt.None[string]()
	}
	return opt.Some[string](teams[0])
}

func (p *Players) Broadcast(message string) {
	if p.out != nil {
		p.out(message)
		return
	}
	logger := p.Logger()
	logger.Info().Msg(message)
}

// RandomTeleportTeams sends every team to its own spawn point. Members of
// a team always land together.
func (p *Players) RandomTeleportTeams() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	teams := teamsOf(p.list())
	if len(teams) == 0 {
		return fmt.Errorf("no teams to teleport")
	}

	side := 2*p.radius + 1
	if side*side < len(teams) {
		return fmt.Errorf("cannot fit %d teams within radius %d", len(teams), p.radius)
	}

	used := make(map[Point]struct{})
	spawns := make(map[string]Point)
	for _, team := range teams {
		var point Point
		for {
			point = Point{
				X: p.rng.Intn(side) - p.radius,
				Z: p.rng.Intn(side) - p.radius,
			}
			if _, taken := used[point]; !taken {
				break
			}
		}
		used[point] = struct{}{}
		spawns[team] = point
	}

	for _, player := range p.players {
		player.Position = spawns[player.Team]
	}

	logger := p.Logger()
	logger.Info().Msgf("teleported %d teams", len(teams))
	return nil
}

func (p *Players) TeleportToArena() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, player := range p.alive() {
		player.Position = Point{}
	}
	return nil
}

func (p *Players) SetAllPlayersEndGame() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, player := range p.players {
		player.Spectating = true
	}
}

func (p *Players) PlaySoundToAll(sound match.Sound, volume, pitch float32) {
	logger := p.Logger()
	logger.Debug().Msgf("playing %s (volume=%.1f pitch=%.1f)", sound, volume, pitch)
}

func (p *Players) HealAll() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, player := range p.alive() {
		player.Health = MaxHealth
	}
}

// Hurt lowers a player's health, never below one.
func (p *Players) Hurt(name string, damage int) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	player, err := p.find(name)
	if err != nil {
		return err
	}
	player.Health -= damage
	if player.Health < 1 {
		player.Health = 1
	}
	return nil
}

func (p *Players) OnlyOneTeamRemaining() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.players) == 0 {
		return false
	}
	return len(teamsOf(p.alive())) <= 1
}

func (p *Players) Ready() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	ready := fp.Filter(func(player *Player) bool { return player.Ready })(p.list())
	return len(ready)
}
