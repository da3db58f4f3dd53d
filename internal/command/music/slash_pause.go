package music

import (
	"github.com/beatframe/beatframe/internal/command"
	"github.com/bwmarrin/discordgo"
)

type PauseCommand struct {
	Bot Bot
}

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause playback" }
func (c *PauseCommand) Aliases() []string   { return []string{} }
func (c *PauseCommand) Group() string       { return groupMusic }
func (c *PauseCommand) Category() string    { return categoryMusic }

func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *PauseCommand) Run(ctx any) error {
	sctx, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	guildID, voiceChannelID, textChannelID, ok := target(c.Bot, sctx)
	if !ok {
		return nil
	}

	if err := c.Bot.Players().Pause(guildID, voiceChannelID, textChannelID); err != nil {
		return command.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Could not pause playback")
	}
	return command.RespondEphemeral(sctx.Session, sctx.Event, "⏸ Paused")
}

type ResumeCommand struct {
	Bot Bot
}

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return "Resume paused playback" }
func (c *ResumeCommand) Aliases() []string   { return []string{} }
func (c *ResumeCommand) Group() string       { return groupMusic }
func (c *ResumeCommand) Category() string    { return categoryMusic }

func (c *ResumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ResumeCommand) Run(ctx any) error {
	sctx, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	guildID, voiceChannelID, textChannelID, ok := target(c.Bot, sctx)
	if !ok {
		return nil
	}

	if err := c.Bot.Players().Resume(guildID, voiceChannelID, textChannelID); err != nil {
		return command.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Could not resume playback")
	}
	return command.RespondEphemeral(sctx.Session, sctx.Event, "▶️ Resumed")
}
