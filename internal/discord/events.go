package discord

import (
	"context"
	"fmt"

	"github.com/beatframe/beatframe/internal/command"
	"github.com/beatframe/beatframe/internal/lavalink"
	"github.com/beatframe/beatframe/internal/player"
	"github.com/bwmarrin/discordgo"
)

// pumpEngineEvents forwards engine lifecycle events into the playback core
// until the context ends or the engine stream closes.
func (b *Bot) pumpEngineEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-b.lava.Events():
			if !ok {
				return
			}
			b.orch.HandleEngineEvent(convertEngineEvent(ev))
		}
	}
}

func convertEngineEvent(ev lavalink.Event) player.EngineEvent {
	out := player.EngineEvent{
		GuildID:  ev.GuildID,
		Reason:   ev.Reason,
		Message:  ev.Message,
		Position: ev.Position,
	}
	switch ev.Type {
	case lavalink.EventTrackEnd:
		out.Type = player.EventTrackEnd
	case lavalink.EventTrackException:
		out.Type = player.EventTrackException
	case lavalink.EventTrackStuck:
		out.Type = player.EventTrackStuck
	case lavalink.EventPlayerUpdate:
		out.Type = player.EventPlayerUpdate
	}
	return out
}

// onMessageReactionAdd routes control reactions and removes the user's glyph
// so the control message stays clean for the next press.
func (b *Bot) onMessageReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.routeReaction(s, r.MessageReaction)
}

// onMessageReactionRemove routes exactly like an add: a user toggling their
// reaction off is the same press.
func (b *Bot) onMessageReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	b.routeReaction(s, r.MessageReaction)
}

func (b *Bot) routeReaction(s *discordgo.Session, r *discordgo.MessageReaction) {
	ev := player.ReactionEvent{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		Emoji:     r.Emoji.Name,
		UserID:    r.UserID,
		DM:        r.GuildID == "",
	}

	if member, err := s.State.Member(r.GuildID, r.UserID); err == nil && member.User != nil {
		ev.UserResolved = true
		ev.UserIsBot = member.User.Bot
		ev.UserIsWebhook = member.User.Discriminator == "0000"
	}

	b.orch.HandleReaction(ev)
}

// onVoiceStateUpdate forwards the bot's own voice session to the engine and
// applies the empty-channel auto-disconnect rule for everyone else.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.UserID == s.State.User.ID {
		if v.ChannelID != "" {
			b.lava.HandleVoiceStateUpdate(v.GuildID, v.SessionID)
		}
		return
	}

	// A user leaving or moving may have emptied the channel the bot plays in.
	if v.BeforeUpdate != nil && v.BeforeUpdate.ChannelID != "" && v.BeforeUpdate.ChannelID != v.ChannelID {
		left := v.BeforeUpdate.ChannelID
		b.orch.HandleVoiceMembership(v.GuildID, left, b.countListeners(v.GuildID, left))
	}
}

// countListeners counts non-bot members currently in a voice channel.
func (b *Bot) countListeners(guildID, channelID string) int {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return 0
	}

	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		if member, err := b.dg.State.Member(guildID, vs.UserID); err == nil && member.User != nil && member.User.Bot {
			continue
		}
		count++
	}
	return count
}

// onVoiceServerUpdate forwards voice server credentials to the engine.
func (b *Bot) onVoiceServerUpdate(s *discordgo.Session, v *discordgo.VoiceServerUpdate) {
	b.lava.HandleVoiceServerUpdate(v.GuildID, v.Token, v.Endpoint)
}

// FindUserVoiceState finds the voice state of a user.
func (b *Bot) FindUserVoiceState(guildID, userID string) (*command.VoiceState, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return &command.VoiceState{
				ChannelID: vs.ChannelID,
				UserID:    vs.UserID,
			}, nil
		}
	}
	return nil, fmt.Errorf("user not in any voice channel")
}
