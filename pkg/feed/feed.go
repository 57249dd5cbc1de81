// Package feed streams match notifications to websocket clients, for
// spectator pages and stream overlays.
package feed

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cfoust/uhc/pkg/events"
	"github.com/cfoust/uhc/pkg/match"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"nhooyr.io/websocket"
)

type Kind string

const (
	KindSnapshot   Kind = "snapshot"
	KindState      Kind = "state"
	KindStarting   Kind = "starting"
	KindStarted    Kind = "started"
	KindKill       Kind = "kill"
	KindEpisode    Kind = "episode"
	KindDeathmatch Kind = "deathmatch"
	KindPvP        Kind = "pvp"
)

// Message is the only thing ever written to a client. Fields that do not
// apply to a kind are left out.
type Message struct {
	Kind   Kind   `cbor:"kind"`
	Server string `cbor:"server"`

	State string `cbor:"state,omitempty"`
	Old   string `cbor:"old,omitempty"`

	Killer string `cbor:"killer,omitempty"`
	Killed string `cbor:"killed,omitempty"`

	Episode int `cbor:"episode,omitempty"`
	// In seconds
	Elapsed int64 `cbor:"elapsed,omitempty"`
	PvP     bool  `cbor:"pvp,omitempty"`
}

func Decode(data []byte) (Message, error) {
	var message Message
	err := cbor.Unmarshal(data, &message)
	return message, err
}

type client struct {
	send      chan []byte
	closeSlow func()
}

type Feed struct {
	server             string
	clientMessageLimit int
	writeTimeout       time.Duration
	snapshot           func() Message

	mutex   deadlock.Mutex
	clients map[*client]struct{}
}

var _ match.Subscriber = (*Feed)(nil)

// New creates a feed for server. snapshot describes the match as it is
// right now and is sent to every client when it connects.
func New(server string, snapshot func() Message) *Feed {
	return &Feed{
		server:             server,
		clientMessageLimit: 16,
		writeTimeout:       5 * time.Second,
		snapshot:           snapshot,
		clients:            make(map[*client]struct{}),
	}
}

func (f *Feed) Logger() zerolog.Logger {
	return log.With().Str("service", "feed").Logger()
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger := f.Logger()
		logger.Warn().Err(err).Msg("could not accept client")
		return
	}
	defer c.Close(websocket.StatusInternalError, "feed closed unexpectedly")

	err = f.serve(r.Context(), c)
	if errors.Is(err, context.Canceled) {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		logger := f.Logger()
		logger.Debug().Err(err).Msg("client disconnected")
	}
}

func (f *Feed) serve(ctx context.Context, c *websocket.Conn) error {
	ctx = c.CloseRead(ctx)

	client := &client{
		send: make(chan []byte, f.clientMessageLimit),
		closeSlow: func() {
			c.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
		},
	}

	f.addClient(client)
	defer f.removeClient(client)

	snapshot := Message{Kind: KindSnapshot}
	if f.snapshot != nil {
		snapshot = f.snapshot()
		snapshot.Kind = KindSnapshot
	}
	snapshot.Server = f.server

	data, err := cbor.Marshal(snapshot)
	if err != nil {
		return err
	}

	if err := f.write(ctx, c, data); err != nil {
		return err
	}

	for {
		select {
		case msg := <-client.send:
			if err := f.write(ctx, c, msg); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (f *Feed) write(ctx context.Context, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, f.writeTimeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageBinary, msg)
}

// Broadcast queues msg for every client. Clients whose queue is full are
// disconnected.
func (f *Feed) Broadcast(msg []byte) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for client := range f.clients {
		select {
		case client.send <- msg:
		default:
			go client.closeSlow()
		}
	}
}

func (f *Feed) NumClients() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.clients)
}

func (f *Feed) addClient(c *client) {
	f.mutex.Lock()
	f.clients[c] = struct{}{}
	f.mutex.Unlock()
}

func (f *Feed) removeClient(c *client) {
	f.mutex.Lock()
	delete(f.clients, c)
	f.mutex.Unlock()
}

func (f *Feed) publish(message Message) {
	message.Server = f.server
	data, err := cbor.Marshal(message)
	if err != nil {
		logger := f.Logger()
		logger.Error().Err(err).Msg("could not encode message")
		return
	}
	f.Broadcast(data)
}

func (f *Feed) Subscribe(bus *events.Bus) {
	bus.StateChanged.Subscribe(func(change events.StateChanged) {
		f.publish(Message{
			Kind:  KindState,
			State: change.New.String(),
			Old:   change.Old.String(),
		})
	})
	bus.Starting.Subscribe(func(events.Starting) {
		f.publish(Message{Kind: KindStarting})
	})
	bus.Started.Subscribe(func(events.Started) {
		f.publish(Message{Kind: KindStarted})
	})
	bus.PlayerKill.Subscribe(func(kill events.PlayerKill) {
		f.publish(Message{
			Kind:   KindKill,
			Killer: kill.Killer,
			Killed: kill.Killed,
		})
	})
	bus.EpisodeMarker.Subscribe(func(marker events.EpisodeMarker) {
		f.publish(Message{
			Kind:    KindEpisode,
			Episode: marker.Number,
			Elapsed: int64(marker.Elapsed / time.Second),
		})
	})
	bus.Deathmatch.Subscribe(func(events.Deathmatch) {
		f.publish(Message{Kind: KindDeathmatch})
	})
	bus.PvPEnabled.Subscribe(func(events.PvPEnabled) {
		f.publish(Message{Kind: KindPvP, PvP: true})
	})
}
