package lavalink

import (
	"encoding/json"
	"time"
)

// EventType enumerates lifecycle events surfaced to the playback core.
type EventType int

const (
	EventTrackEnd EventType = iota
	EventTrackException
	EventTrackStuck
	EventPlayerUpdate
)

// Event is one decoded lifecycle event from the node.
type Event struct {
	Type     EventType
	GuildID  string
	Reason   string
	Message  string
	Position time.Duration
}

type rawMessage struct {
	Op      string `json:"op"`
	Type    string `json:"type"`
	GuildID string `json:"guildId"`
	Reason  string `json:"reason"`
	State   *struct {
		Position int64 `json:"position"`
		Time     int64 `json:"time"`
	} `json:"state"`
	Exception *struct {
		Message  string `json:"message"`
		Severity string `json:"severity"`
	} `json:"exception"`
	ThresholdMs int64 `json:"thresholdMs"`

	Players        int     `json:"players"`
	PlayingPlayers int     `json:"playingPlayers"`
	Uptime         int64   `json:"uptime"`
	Memory         *memory `json:"memory"`
	CPU            *cpu    `json:"cpu"`
}

type memory struct {
	Used int64 `json:"used"`
	Free int64 `json:"free"`
}

type cpu struct {
	SystemLoad float64 `json:"systemLoad"`
}

// handleMessage decodes one websocket frame and dispatches it.
func (c *Client) handleMessage(data []byte) {
	var raw rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		c.log.Debug().Err(err).Msg("undecodable engine frame")
		return
	}

	switch raw.Op {
	case "ready":
		c.log.Info().Msg("engine node ready")
	case "playerUpdate":
		ev, ok := decodePlayerUpdate(&raw)
		if !ok {
			return
		}
		c.wire.Info().
			Str("guild", ev.GuildID).
			Dur("position", ev.Position).
			Msg("player update")
		c.emit(ev)
	case "event":
		if ev, ok := decodeEvent(&raw); ok {
			c.emit(ev)
		}
	case "stats":
		c.mu.Lock()
		c.stats = decodeStats(&raw)
		c.mu.Unlock()
	}
}

func decodePlayerUpdate(raw *rawMessage) (Event, bool) {
	if raw.GuildID == "" || raw.State == nil {
		return Event{}, false
	}
	return Event{
		Type:     EventPlayerUpdate,
		GuildID:  raw.GuildID,
		Position: time.Duration(raw.State.Position) * time.Millisecond,
	}, true
}

func decodeEvent(raw *rawMessage) (Event, bool) {
	if raw.GuildID == "" {
		return Event{}, false
	}

	switch raw.Type {
	case "TrackEndEvent":
		return Event{Type: EventTrackEnd, GuildID: raw.GuildID, Reason: raw.Reason}, true
	case "TrackExceptionEvent":
		ev := Event{Type: EventTrackException, GuildID: raw.GuildID}
		if raw.Exception != nil {
			ev.Message = raw.Exception.Message
		}
		return ev, true
	case "TrackStuckEvent":
		return Event{Type: EventTrackStuck, GuildID: raw.GuildID, Message: "track stuck"}, true
	default:
		// WebSocketClosedEvent and friends are connection-level noise.
		return Event{}, false
	}
}

func decodeStats(raw *rawMessage) Stats {
	s := Stats{
		Players:        raw.Players,
		PlayingPlayers: raw.PlayingPlayers,
		Uptime:         time.Duration(raw.Uptime) * time.Millisecond,
	}
	if raw.Memory != nil {
		s.MemoryUsed = raw.Memory.Used
		s.MemoryFree = raw.Memory.Free
	}
	if raw.CPU != nil {
		s.CPULoad = raw.CPU.SystemLoad
	}
	return s
}
