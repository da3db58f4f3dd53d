package player

import (
	"context"
	"time"

	"github.com/beatframe/beatframe/internal/track"
	"github.com/bwmarrin/discordgo"
)

// Engine is the remote audio engine as the orchestrator sees it. The concrete
// implementation lives in internal/lavalink; tests substitute a fake.
type Engine interface {
	Play(guildID string, it *track.Item, paused bool) error
	Stop(guildID string) error
	Pause(guildID string, paused bool) error
	SetVolume(guildID string, volume int) error
	Destroy(guildID string) error
	Stats() EngineStats
}

// EngineStats mirrors the engine's periodic server statistics.
type EngineStats struct {
	Players        int
	PlayingPlayers int
	Uptime         time.Duration
	MemoryUsed     int64
	MemoryFree     int64
	CPULoad        float64
}

// EngineEventType enumerates lifecycle events delivered by the engine.
type EngineEventType int

const (
	EventTrackEnd EngineEventType = iota
	EventTrackException
	EventTrackStuck
	EventPlayerUpdate
)

// EngineEvent is one lifecycle event for a guild's player. Events for a
// single guild arrive in real-time order and are processed in arrival order.
type EngineEvent struct {
	Type     EngineEventType
	GuildID  string
	Reason   string // end reason, e.g. "finished", "stopped", "loadFailed"
	Message  string // exception detail, when present
	Position time.Duration
}

// VoiceGateway joins and leaves guild voice channels on the chat transport.
type VoiceGateway interface {
	Join(guildID, channelID string) error
	Leave(guildID string) error
}

// Messenger sends, edits and deletes the control messages the orchestrator
// owns. All calls are I/O boundaries and must not be made while holding a
// session lock longer than the single logical operation.
type Messenger interface {
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) (messageID string, err error)
	EditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed) error
	DeleteMessage(channelID, messageID string) error
}

// Notifier emits ephemeral success/warning notices that are not part of the
// control message lifecycle. Delivery failures are handled by the sink.
type Notifier interface {
	Success(channelID, title, body string)
	Warning(channelID, title, body string)
}

// LyricsProvider answers on-demand lyrics lookups. Failures are degraded to
// placeholders by the caller, never surfaced as hard errors.
type LyricsProvider interface {
	Lyrics(ctx context.Context, author, title string) (string, error)
}

// VoiceStateResolver reports which voice channel a user currently occupies.
type VoiceStateResolver interface {
	UserVoiceChannel(guildID, userID string) (string, bool)
}
