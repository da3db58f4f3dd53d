// Package lavalink is the client for the remote audio engine. It owns the
// node websocket, forwards Discord voice credentials, submits player
// operations and surfaces lifecycle events to the playback core.
package lavalink

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/beatframe/beatframe/internal/track"
	"github.com/beatframe/beatframe/pkg/reconnect"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Config holds connection settings for one engine node.
type Config struct {
	Host     string
	Port     int
	Password string
	Secure   bool
}

func (c Config) wsURL() string {
	scheme := "ws"
	if c.Secure {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/v4/websocket", scheme, c.Host, c.Port)
}

func (c Config) restURL(path string) string {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, c.Host, c.Port, path)
}

// Stats mirrors the engine's periodic server statistics payload.
type Stats struct {
	Players        int
	PlayingPlayers int
	Uptime         time.Duration
	MemoryUsed     int64
	MemoryFree     int64
	CPULoad        float64
}

// Client manages the connection to one engine node.
type Client struct {
	cfg    Config
	userID string

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	stats     Stats

	events chan Event

	httpClient *http.Client
	dialLimit  *rate.Limiter

	log  zerolog.Logger
	wire zerolog.Logger // chatty per-update wire log, file-backed
}

// New creates a client for the given node. The wire logger receives one line
// per position update and belongs in a rotated file, not the console.
func New(cfg Config, log, wire zerolog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		events:     make(chan Event, 64),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dialLimit:  rate.NewLimiter(rate.Every(time.Second), 1),
		log:        log,
		wire:       wire,
	}
}

// SetUserID sets the bot user identity required by the node handshake. Must
// be called before Start.
func (c *Client) SetUserID(id string) {
	c.mu.Lock()
	c.userID = id
	c.mu.Unlock()
}

// Events returns the lifecycle event stream. Closed when Start returns.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Stats returns the last statistics payload received from the node.
func (c *Client) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Start connects to the node and keeps reading until the context ends,
// reconnecting with backoff after any drop.
func (c *Client) Start(ctx context.Context) {
	defer close(c.events)

	for ctx.Err() == nil {
		err := reconnect.WithRetry(ctx, func() error {
			return c.connect(ctx)
		}, c.dialLimit, reconnect.DefaultConfig())
		if err != nil {
			c.log.Error().Err(err).Msg("engine node unreachable, giving up")
			return
		}

		c.readLoop(ctx)

		c.mu.Lock()
		c.connected = false
		if c.conn != nil {
			_ = c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()

		if ctx.Err() == nil {
			c.log.Warn().Msg("engine connection lost, reconnecting")
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	c.mu.RLock()
	userID := c.userID
	c.mu.RUnlock()
	if userID == "" {
		return &reconnect.FatalError{Err: fmt.Errorf("user id not set before connect")}
	}

	headers := http.Header{}
	headers.Set("Authorization", c.cfg.Password)
	headers.Set("User-Id", userID)
	headers.Set("Client-Name", "beatframe/1.0")

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.cfg.wsURL(), headers)
	if err != nil {
		return fmt.Errorf("failed to dial engine node: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.log.Info().Str("node", c.cfg.Host).Msg("connected to engine node")
	return nil
}

func (c *Client) readLoop(ctx context.Context) {
	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.log.Warn().Err(err).Msg("engine read failed")
			}
			return
		}
		c.handleMessage(message)
	}
}

// sendOp writes one operation frame to the node.
func (c *Client) sendOp(data map[string]any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.conn == nil {
		return fmt.Errorf("engine node not connected")
	}
	return c.conn.WriteJSON(data)
}

// Play submits a track to the guild's player.
func (c *Client) Play(guildID string, it *track.Item, paused bool) error {
	return c.sendOp(map[string]any{
		"op":      "play",
		"guildId": guildID,
		"track":   it.Encoded,
		"pause":   paused,
	})
}

// Stop unloads the guild's current track; the node answers with an end event.
func (c *Client) Stop(guildID string) error {
	return c.sendOp(map[string]any{
		"op":      "stop",
		"guildId": guildID,
	})
}

// Pause suspends or resumes the guild's player.
func (c *Client) Pause(guildID string, paused bool) error {
	return c.sendOp(map[string]any{
		"op":      "pause",
		"guildId": guildID,
		"pause":   paused,
	})
}

// SetVolume applies a volume in percent to the guild's player.
func (c *Client) SetVolume(guildID string, volume int) error {
	return c.sendOp(map[string]any{
		"op":      "volume",
		"guildId": guildID,
		"volume":  volume,
	})
}

// Destroy releases the guild's player on the node.
func (c *Client) Destroy(guildID string) error {
	return c.sendOp(map[string]any{
		"op":      "destroy",
		"guildId": guildID,
	})
}

// HandleVoiceStateUpdate forwards the Discord voice session for a guild.
func (c *Client) HandleVoiceStateUpdate(guildID, sessionID string) {
	err := c.sendOp(map[string]any{
		"op":        "voiceUpdate",
		"guildId":   guildID,
		"sessionId": sessionID,
	})
	if err != nil {
		c.log.Debug().Err(err).Str("guild", guildID).Msg("voice state forward failed")
	}
}

// HandleVoiceServerUpdate forwards Discord voice server credentials.
func (c *Client) HandleVoiceServerUpdate(guildID, token, endpoint string) {
	err := c.sendOp(map[string]any{
		"op":      "voiceUpdate",
		"guildId": guildID,
		"event": map[string]any{
			"token":    token,
			"endpoint": endpoint,
			"guild_id": guildID,
		},
	})
	if err != nil {
		c.log.Debug().Err(err).Str("guild", guildID).Msg("voice server forward failed")
	}
}

// emit delivers an event without blocking the read loop; a full consumer
// drops the event with a log line.
func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.log.Warn().Str("guild", ev.GuildID).Msg("engine event dropped (channel full)")
	}
}
