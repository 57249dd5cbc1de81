package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/cfoust/uhc/pkg/config"
	"github.com/cfoust/uhc/pkg/feed"
	"github.com/cfoust/uhc/pkg/headless"
	"github.com/cfoust/uhc/pkg/match"
	"github.com/cfoust/uhc/pkg/stats"
	"github.com/cfoust/uhc/pkg/status"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	spawnRadius = 500
	chunkCount  = 256
	chunkStep   = 5 * time.Millisecond
)

var (
	scenarioNames    = []string{"cutclean", "timber", "nofall", "hastey boys", "fireless"}
	defaultScenarios = []string{"cutclean"}
)

type presenter interface {
	SetPresentationStatus(text string) error
	RegisterProxyChannel(name string) error
}

// host stops the process once the match is over.
type host struct {
	presenter
	shutdown func()
}

func (h *host) Shutdown() {
	log.Info().Msg("match over, shutting down")
	h.shutdown()
}

func snapshot(s *match.Session) feed.Message {
	return feed.Message{
		State:   s.State().String(),
		Episode: s.EpisodeNumber(),
		Elapsed: int64(s.ElapsedTime() / time.Second),
		PvP:     s.PvP(),
	}
}

func serveCommand(configs []string) error {
	cfg, err := config.Process(configs)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Match.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	serverConfig := cfg.Server

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	dbPath := serverConfig.DBPath
	if dbPath == "" {
		dbPath = ":memory:"
	}
	db, err := stats.InitDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open statistics database: %w", err)
	}
	recorder := stats.NewRecorder(db)

	var statusHost presenter = status.NewLog(serverConfig.Name)
	if serverConfig.Redis.Address != "" {
		redisStatus := status.NewRedis(serverConfig.Name, serverConfig.Redis)
		defer redisStatus.Close()
		statusHost = redisStatus
	}

	players := headless.NewPlayers(time.Now().UnixNano(), spawnRadius, func(message string) {
		fmt.Println(message)
	})
	scenarios := headless.NewScenarios(scenarioNames, defaultScenarios)
	worlds := headless.NewWorlds(ctx, chunkCount, chunkStep)

	subscribers := []match.Subscriber{recorder}

	var session *match.Session

	var liveFeed *feed.Feed
	if serverConfig.FeedPort != 0 {
		liveFeed = feed.New(serverConfig.Name, func() feed.Message {
			return snapshot(session)
		})
		subscribers = append(subscribers, liveFeed)
	}

	session = match.New(ctx, match.Options{
		Players:   players,
		Scenarios: scenarios,
		Worlds:    worlds,
		Stats:     recorder,
		Host: &host{
			presenter: statusHost,
			shutdown:  cancel,
		},
		Config:      config.Loader(configs),
		Subscribers: subscribers,
	})
	defer session.Close()

	// Only serve the feed once the session exists, the snapshot reads it.
	var httpServer *http.Server
	errc := make(chan error, 1)
	if liveFeed != nil {
		mux := http.NewServeMux()
		mux.Handle("/feed", liveFeed)
		httpServer = &http.Server{
			Addr:    fmt.Sprintf("0.0.0.0:%d", serverConfig.FeedPort),
			Handler: mux,
		}

		go func() {
			err := httpServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
		log.Info().Msgf("feed listening on :%d/feed", serverConfig.FeedPort)
	}

	err = session.LoadNewGame()
	if err != nil {
		return err
	}

	console := NewConsole(session, players, scenarios)
	go console.Run(ctx, os.Stdin)

	select {
	case err := <-errc:
		log.Error().Err(err).Msg("failed to serve feed")
	case <-ctx.Done():
		log.Info().Msg("terminating")
	}

	if httpServer != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		httpServer.Shutdown(shutdownCtx)
	}

	return nil
}
