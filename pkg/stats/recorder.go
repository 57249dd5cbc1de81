// Package stats keeps a history of matches and the kills in them.
package stats

import (
	"fmt"
	"time"

	"github.com/cfoust/uhc/pkg/events"
	"github.com/cfoust/uhc/pkg/game"
	"github.com/cfoust/uhc/pkg/match"

	"github.com/repeale/fp-go/option"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"gorm.io/gorm"
)

type Recorder struct {
	db *gorm.DB

	mutex     deadlock.Mutex
	recording bool
	current   opt.Option[uint]
	startedAt time.Time
}

var (
	_ match.Stats      = (*Recorder)(nil)
	_ match.Subscriber = (*Recorder)(nil)
)

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{
		db:      db,
		current: opt.None[uint](),
	}
}

func (r *Recorder) Logger() zerolog.Logger {
	return log.With().Str("service", "stats").Logger()
}

// StartRecording checks that the database is usable. Nothing is written
// until a match goes live.
func (r *Recorder) StartRecording() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("statistics database unavailable: %w", err)
	}

	r.mutex.Lock()
	r.recording = true
	r.mutex.Unlock()
	return nil
}

func (r *Recorder) AddGame(started match.Game) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.recording {
		return fmt.Errorf("not recording")
	}

	row := Match{
		Server:         started.Server,
		StartedAt:      started.StartedAt,
		Deathmatch:     started.Deathmatch,
		EpisodeMarkers: started.EpisodeMarkers,
		FinalHeal:      started.FinalHeal,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}

	r.current = opt.Some[uint](row.ID)
	r.startedAt = started.StartedAt
	logger := r.Logger()
	logger.Info().Uint("match", row.ID).Msg("recording match")
	return nil
}

// Current returns the ID of the match being recorded, if there is one.
func (r *Recorder) Current() opt.Option[uint] {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.current
}

func (r *Recorder) Subscribe(bus *events.Bus) {
	logger := r.Logger()

	bus.PlayerKill.Subscribe(func(kill events.PlayerKill) {
		if err := r.addKill(kill, time.Now()); err != nil {
			logger.Error().Err(err).Msg("could not record kill")
		}
	})

	bus.StateChanged.Subscribe(func(change events.StateChanged) {
		if change.New != game.Ended {
			return
		}
		if err := r.finish(change.Old, time.Now()); err != nil {
			logger.Error().Err(err).Msg("could not finish match")
		}
	})
}

func (r *Recorder) addKill(kill events.PlayerKill, at time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if opt.IsNone(r.current) {
		logger := r.Logger()
		logger.Debug().Msgf("ignoring kill of %s outside of a match", kill.Killed)
		return nil
	}

	return r.db.Create(&Kill{
		MatchID: r.current.Value,
		Killer:  kill.Killer,
		Killed:  kill.Killed,
		At:      at,
	}).Error
}

func (r *Recorder) finish(last game.State, at time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if opt.IsNone(r.current) {
		return nil
	}

	id := r.current.Value
	r.current = opt.None[uint]()

	return r.db.Model(&Match{}).Where("id = ?", id).Updates(map[string]interface{}{
		"ended_at":            at,
		"seconds":             int64(at.Sub(r.startedAt) / time.Second),
		"ended_in_deathmatch": last == game.Deathmatch,
	}).Error
}

// Matches returns every recorded match with its kills, oldest first.
func (r *Recorder) Matches() ([]Match, error) {
	var matches []Match
	err := r.db.Preload("Kills").Order("id").Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}
