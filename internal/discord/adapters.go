package discord

import (
	"time"

	"github.com/beatframe/beatframe/internal/lavalink"
	"github.com/beatframe/beatframe/internal/player"
	"github.com/beatframe/beatframe/internal/track"
	"github.com/bwmarrin/discordgo"
)

// engineAdapter narrows the engine client to what the playback core needs.
type engineAdapter struct {
	lava *lavalink.Client
}

func (e *engineAdapter) Play(guildID string, it *track.Item, paused bool) error {
	return e.lava.Play(guildID, it, paused)
}

func (e *engineAdapter) Stop(guildID string) error {
	return e.lava.Stop(guildID)
}

func (e *engineAdapter) Pause(guildID string, paused bool) error {
	return e.lava.Pause(guildID, paused)
}

func (e *engineAdapter) SetVolume(guildID string, volume int) error {
	return e.lava.SetVolume(guildID, volume)
}

func (e *engineAdapter) Destroy(guildID string) error {
	return e.lava.Destroy(guildID)
}

func (e *engineAdapter) Stats() player.EngineStats {
	s := e.lava.Stats()
	return player.EngineStats{
		Players:        s.Players,
		PlayingPlayers: s.PlayingPlayers,
		Uptime:         s.Uptime,
		MemoryUsed:     s.MemoryUsed,
		MemoryFree:     s.MemoryFree,
		CPULoad:        s.CPULoad,
	}
}

// voiceGateway joins and leaves voice channels on the gateway connection. The
// engine plays audio itself, so the bot connects muted and deafened.
type voiceGateway struct {
	dg *discordgo.Session
}

func (v *voiceGateway) Join(guildID, channelID string) error {
	return v.dg.ChannelVoiceJoinManual(guildID, channelID, false, true)
}

func (v *voiceGateway) Leave(guildID string) error {
	return v.dg.ChannelVoiceJoinManual(guildID, "", false, true)
}

// messenger sends the control messages the playback core owns.
type messenger struct {
	dg *discordgo.Session
}

func (m *messenger) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (string, error) {
	msg, err := m.dg.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (m *messenger) EditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed) error {
	_, err := m.dg.ChannelMessageEditEmbed(channelID, messageID, embed)
	return err
}

func (m *messenger) DeleteMessage(channelID, messageID string) error {
	return m.dg.ChannelMessageDelete(channelID, messageID)
}

// voiceResolver answers which voice channel a user occupies, from gateway
// state cache.
type voiceResolver struct {
	dg *discordgo.Session
}

func (r *voiceResolver) UserVoiceChannel(guildID, userID string) (string, bool) {
	guild, err := r.dg.State.Guild(guildID)
	if err != nil {
		return "", false
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, true
		}
	}
	return "", false
}

// attachReactions adds the control glyphs to a fresh control message in the
// background. Each add is rate limited by Discord, so the whole pass can take
// a few seconds; failures only cost the glyph.
func (b *Bot) attachReactions(channelID, messageID string) {
	go func() {
		for _, emoji := range player.ControlEmojis {
			if err := b.dg.MessageReactionAdd(channelID, messageID, emoji); err != nil {
				b.log.Debug().Err(err).Str("emoji", emoji).Msg("could not attach control reaction")
			}
			time.Sleep(250 * time.Millisecond)
		}
	}()
}
