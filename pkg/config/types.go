package config

import (
	"fmt"
	"time"
)

type RedisSettings struct {
	Address  string `yaml:"address" json:"address" env:"UHC_REDIS_ADDRESS"`
	Password string `yaml:"password" json:"password" env:"UHC_REDIS_PASSWORD"`
	DB       int    `yaml:"db" json:"db" env:"UHC_REDIS_DB"`
}

type ServerSettings struct {
	// Name identifies this match server to the status store and the feed.
	Name   string `yaml:"name" json:"name" env:"UHC_SERVER_NAME"`
	DBPath string `yaml:"dbPath" json:"dbPath" env:"UHC_DB_PATH"`
	// When set, the presentation status is never pushed to the host.
	DisableStatus bool          `yaml:"disableStatus" json:"disableStatus" env:"UHC_DISABLE_STATUS"`
	BungeeSupport bool          `yaml:"bungeeSupport" json:"bungeeSupport" env:"UHC_BUNGEE_SUPPORT"`
	Redis         RedisSettings `yaml:"redis" json:"redis"`
	// 0 disables the websocket feed.
	FeedPort int `yaml:"feedPort" json:"feedPort" env:"UHC_FEED_PORT"`
}

type Toggle struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Seconds int  `yaml:"seconds" json:"seconds"`
}

func (t Toggle) Duration() time.Duration {
	return seconds(t.Seconds)
}

type MatchSettings struct {
	Debug            bool `yaml:"debug" json:"debug" env:"UHC_DEBUG"`
	PreGenerateWorld bool `yaml:"preGenerateWorld" json:"preGenerateWorld" env:"UHC_PRE_GENERATE_WORLD"`
	ScenarioVoting   bool `yaml:"scenarioVoting" json:"scenarioVoting" env:"UHC_SCENARIO_VOTING"`

	AutoStart  bool `yaml:"autoStart" json:"autoStart" env:"UHC_AUTO_START"`
	MinPlayers int  `yaml:"minPlayers" json:"minPlayers" env:"UHC_MIN_PLAYERS"`

	StartDelaySeconds   int `yaml:"startDelay" json:"startDelay"`
	PvPDelaySeconds     int `yaml:"pvpDelay" json:"pvpDelay" env:"UHC_PVP_DELAY"`
	EndCountdownSeconds int `yaml:"endCountdown" json:"endCountdown"`

	EpisodeMarkers Toggle `yaml:"episodeMarkers" json:"episodeMarkers"`
	Deathmatch     Toggle `yaml:"deathmatch" json:"deathmatch"`
	FinalHeal      Toggle `yaml:"finalHeal" json:"finalHeal"`

	DayNightCycle bool `yaml:"dayNightCycle" json:"dayNightCycle"`
	// -1 keeps the day/night cycle running for the whole match.
	PermanentDaySeconds int `yaml:"permanentDay" json:"permanentDay"`
}

func (m MatchSettings) StartDelay() time.Duration {
	return seconds(m.StartDelaySeconds)
}

func (m MatchSettings) PvPDelay() time.Duration {
	return seconds(m.PvPDelaySeconds)
}

func (m MatchSettings) PermanentDayDelay() time.Duration {
	return seconds(m.PermanentDaySeconds)
}

// PermanentDay reports whether the world should be locked to daytime at some
// point during the match.
func (m MatchSettings) PermanentDay() bool {
	return m.DayNightCycle && m.PermanentDaySeconds != -1
}

type Config struct {
	Server ServerSettings `yaml:"server" json:"server"`
	Match  MatchSettings  `yaml:"match" json:"match"`
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Validate checks the values a match cannot run with.
func (c *Config) Validate() error {
	m := c.Match

	if m.MinPlayers < 0 {
		return fmt.Errorf("match.minPlayers must not be negative")
	}

	nonNegative := map[string]int{
		"match.startDelay":   m.StartDelaySeconds,
		"match.pvpDelay":     m.PvPDelaySeconds,
		"match.endCountdown": m.EndCountdownSeconds,
	}
	for key, value := range nonNegative {
		if value < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	}

	if m.EpisodeMarkers.Enabled && m.EpisodeMarkers.Seconds <= 0 {
		return fmt.Errorf("match.episodeMarkers.seconds must be positive")
	}
	if m.Deathmatch.Enabled && m.Deathmatch.Seconds <= 0 {
		return fmt.Errorf("match.deathmatch.seconds must be positive")
	}
	if m.FinalHeal.Enabled && m.FinalHeal.Seconds < 0 {
		return fmt.Errorf("match.finalHeal.seconds must not be negative")
	}
	if m.PermanentDaySeconds < -1 {
		return fmt.Errorf("match.permanentDay must be -1 or a delay in seconds")
	}

	return nil
}
