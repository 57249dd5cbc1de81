package stats

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Entity struct {
	ID uint `gorm:"primaryKey"`
}

// Match is one row per match that went live.
type Match struct {
	Entity

	// The configured server name
	Server    string `gorm:"size:32"`
	StartedAt time.Time
	// Zero until the match has ended
	EndedAt time.Time
	Seconds int64

	Deathmatch     bool
	EpisodeMarkers bool
	FinalHeal      bool
	// Whether the match was still in the deathmatch when it ended
	EndedInDeathmatch bool

	Kills []*Kill
}

type Kill struct {
	Entity

	MatchID uint   `gorm:"not null"`
	Killer  string `gorm:"size:32"`
	Killed  string `gorm:"size:32"`
	At      time.Time
}

// InitDB opens (or creates) the statistics database at path. ":memory:"
// gives a throwaway database.
func InitDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	for _, model := range []interface{}{&Match{}, &Kill{}} {
		if err := db.AutoMigrate(model); err != nil {
			return nil, fmt.Errorf("could not migrate %T: %w", model, err)
		}
	}

	return db, nil
}
