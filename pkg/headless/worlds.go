package headless

import (
	"context"
	"fmt"
	"time"

	"github.com/cfoust/uhc/pkg/match"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

var WorldNames = []string{"world", "world_nether", "world_arena"}

type Worlds struct {
	ctx context.Context
	// How many chunks pre-generation walks through, and how long each takes
	chunks int
	step   time.Duration

	mutex        deadlock.Mutex
	loaded       []string
	prepared     bool
	started      bool
	permanentDay bool
	generated    int
	generating   bool
}

var _ match.Worlds = (*Worlds)(nil)

func NewWorlds(ctx context.Context, chunks int, step time.Duration) *Worlds {
	return &Worlds{
		ctx:    ctx,
		chunks: chunks,
		step:   step,
	}
}

func (w *Worlds) Logger() zerolog.Logger {
	return log.With().Str("service", "worlds").Logger()
}

// LoadWorlds loads the match worlds. The arena is skipped in debug mode.
func (w *Worlds) LoadWorlds(debug bool) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.loaded = nil
	for _, name := range WorldNames {
		if debug && name == "world_arena" {
			continue
		}
		w.loaded = append(w.loaded, name)
	}

	logger := w.Logger()
	logger.Info().Msgf("loaded %d worlds", len(w.loaded))
	return nil
}

func (w *Worlds) PrepareWorlds() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if len(w.loaded) == 0 {
		return fmt.Errorf("no worlds loaded")
	}
	w.prepared = true
	return nil
}

// GenerateChunks walks through every chunk in the background and calls
// done once all of them are generated.
func (w *Worlds) GenerateChunks(done func()) error {
	w.mutex.Lock()
	if w.generating {
		w.mutex.Unlock()
		return fmt.Errorf("already generating")
	}
	w.generating = true
	w.generated = 0
	w.mutex.Unlock()

	logger := w.Logger()
	go func() {
		for i := 0; i < w.chunks; i++ {
			select {
			case <-w.ctx.Done():
				logger.Warn().Msg("chunk generation cancelled")
				return
			case <-time.After(w.step):
			}

			w.mutex.Lock()
			w.generated++
			w.mutex.Unlock()
		}

		w.mutex.Lock()
		w.generating = false
		w.mutex.Unlock()

		logger.Info().Msgf("generated %d chunks", w.chunks)
		done()
	}()

	return nil
}

func (w *Worlds) Generated() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.generated
}

func (w *Worlds) SetWorldsStartGame() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.started = true
}

func (w *Worlds) SetPermanentDay() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.permanentDay = true
	logger := w.Logger()
	logger.Info().Msg("it is now always day")
}

func (w *Worlds) Started() bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.started
}

func (w *Worlds) PermanentDay() bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.permanentDay
}

func (w *Worlds) Loaded() []string {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return append([]string(nil), w.loaded...)
}
