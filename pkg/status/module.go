// Package status publishes the presentation status of a match so that
// lobbies and server lists can show what phase it is in.
package status

import (
	"context"
	"fmt"
	"time"

	"github.com/cfoust/uhc/pkg/config"

	"github.com/go-redis/redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	KEY_STATUS   = "uhc:%s:status"
	KEY_CHANNELS = "uhc:%s:channels"
	CHANNEL      = "uhc:status"

	writeTimeout = 2 * time.Second
)

// Update is what gets published on CHANNEL whenever the status changes.
type Update struct {
	Server string
	Status string
}

func (u Update) String() string {
	return fmt.Sprintf("%s %s", u.Server, u.Status)
}

// Redis stores the status of one server in Redis and notifies anyone
// subscribed to CHANNEL.
type Redis struct {
	server string
	client *redis.Client
}

func NewRedis(server string, settings config.RedisSettings) *Redis {
	return &Redis{
		server: server,
		client: redis.NewClient(&redis.Options{
			Addr:     settings.Address,
			Password: settings.Password,
			DB:       settings.DB,
		}),
	}
}

func (r *Redis) Key() string {
	return fmt.Sprintf(KEY_STATUS, r.server)
}

func (r *Redis) SetPresentationStatus(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.Key(), text, 0)
	pipe.Publish(ctx, CHANNEL, Update{Server: r.server, Status: text}.String())

	_, err := pipe.Exec(ctx)
	return err
}

// RegisterProxyChannel records that this server talks to the proxy over
// name.
func (r *Redis) RegisterProxyChannel(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	return r.client.SAdd(ctx, fmt.Sprintf(KEY_CHANNELS, r.server), name).Err()
}

// Status reads back the stored status of this server.
func (r *Redis) Status(ctx context.Context) (string, error) {
	return r.client.Get(ctx, r.Key()).Result()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Log only writes status changes to the log. It is used when no Redis
// server is configured.
type Log struct {
	server string
}

func NewLog(server string) *Log {
	return &Log{server: server}
}

func (l *Log) Logger() zerolog.Logger {
	return log.With().Str("service", "status").Str("server", l.server).Logger()
}

func (l *Log) SetPresentationStatus(text string) error {
	logger := l.Logger()
	logger.Info().Msgf("status: %s", text)
	return nil
}

func (l *Log) RegisterProxyChannel(name string) error {
	logger := l.Logger()
	logger.Info().Msgf("registered proxy channel %s", name)
	return nil
}
