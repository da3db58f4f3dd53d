// Package music contains the slash commands that drive the playback
// orchestrator.
package music

import (
	"github.com/beatframe/beatframe/internal/command"
	"github.com/beatframe/beatframe/internal/lavalink"
	"github.com/beatframe/beatframe/internal/player"
	"github.com/bwmarrin/discordgo"
)

const (
	groupMusic    = "music"
	categoryMusic = "🎵 Music"
)

// Bot is what music commands need from the Discord bot.
type Bot interface {
	Players() *player.Orchestrator
	Engine() *lavalink.Client
	FindUserVoiceState(guildID, userID string) (*command.VoiceState, error)
}

// target resolves the invoking user's voice channel. When the user is not in
// a voice channel, an ephemeral notice is sent and ok is false.
func target(bot Bot, ctx *command.SlashContext) (guildID, voiceChannelID, textChannelID string, ok bool) {
	event := ctx.Event
	guildID = event.GuildID
	textChannelID = event.ChannelID

	if event.Member == nil || event.Member.User == nil {
		_ = command.RespondEphemeral(ctx.Session, event, "🎵 Could not resolve your user")
		return "", "", "", false
	}

	vs, err := bot.FindUserVoiceState(guildID, event.Member.User.ID)
	if err != nil {
		_ = command.RespondEphemeral(ctx.Session, event, "🎵 You need to be in a voice channel")
		return "", "", "", false
	}
	return guildID, vs.ChannelID, textChannelID, true
}

func stringOption(event *discordgo.InteractionCreate, name string) string {
	for _, opt := range event.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func intOption(event *discordgo.InteractionCreate, name string) (int, bool) {
	for _, opt := range event.ApplicationCommandData().Options {
		if opt.Name == name {
			return int(opt.IntValue()), true
		}
	}
	return 0, false
}
