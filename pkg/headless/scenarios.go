package headless

import (
	"fmt"
	"sort"

	"github.com/cfoust/uhc/pkg/match"

	"github.com/sasha-s/go-deadlock"
)

// Scenarios is a set of named rule toggles that players can vote on before
// the match starts.
type Scenarios struct {
	mutex     deadlock.Mutex
	available map[string]bool
	defaults  []string
	active    map[string]bool
	// player -> scenario
	votes map[string]string
}

var _ match.Scenarios = (*Scenarios)(nil)

func NewScenarios(available []string, defaults []string) *Scenarios {
	s := &Scenarios{
		available: make(map[string]bool),
		defaults:  defaults,
		active:    make(map[string]bool),
		votes:     make(map[string]string),
	}
	for _, name := range available {
		s.available[name] = true
	}
	for _, name := range defaults {
		s.available[name] = true
	}
	return s
}

func (s *Scenarios) LoadDefaults() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.active = make(map[string]bool)
	for _, name := range s.defaults {
		s.active[name] = true
	}
}

// Vote records player's choice, replacing any earlier vote.
func (s *Scenarios) Vote(player, scenario string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.available[scenario] {
		return fmt.Errorf("unknown scenario %s", scenario)
	}
	s.votes[player] = scenario
	return nil
}

// CountVotes activates the scenario with the most votes. Ties go to the
// name that sorts first.
func (s *Scenarios) CountVotes() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tally := make(map[string]int)
	for _, scenario := range s.votes {
		tally[scenario]++
	}

	names := make([]string, 0, len(tally))
	for name := range tally {
		names = append(names, name)
	}
	sort.Strings(names)

	winner := ""
	for _, name := range names {
		if winner == "" || tally[name] > tally[winner] {
			winner = name
		}
	}

	if winner != "" {
		s.active[winner] = true
	}
	s.votes = make(map[string]string)
}

func (s *Scenarios) IsActivated(name string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.active[name]
}

func (s *Scenarios) Active() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	active := make([]string, 0, len(s.active))
	for name := range s.active {
		active = append(active, name)
	}
	sort.Strings(active)
	return active
}
