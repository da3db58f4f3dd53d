package music

import (
	"github.com/beatframe/beatframe/internal/command"
	"github.com/bwmarrin/discordgo"
)

type ShuffleCommand struct {
	Bot Bot
}

func (c *ShuffleCommand) Name() string        { return "shuffle" }
func (c *ShuffleCommand) Description() string { return "Shuffle the pending queue" }
func (c *ShuffleCommand) Aliases() []string   { return []string{} }
func (c *ShuffleCommand) Group() string       { return groupMusic }
func (c *ShuffleCommand) Category() string    { return categoryMusic }

func (c *ShuffleCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ShuffleCommand) Run(ctx any) error {
	sctx, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	guildID, voiceChannelID, textChannelID, ok := target(c.Bot, sctx)
	if !ok {
		return nil
	}

	if err := c.Bot.Players().Shuffle(guildID, voiceChannelID, textChannelID); err != nil {
		return command.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Could not shuffle the queue")
	}
	return command.RespondEphemeral(sctx.Session, sctx.Event, "🔀 Queue shuffled")
}

type ClearCommand struct {
	Bot Bot
}

func (c *ClearCommand) Name() string        { return "clear" }
func (c *ClearCommand) Description() string { return "Clear the queue and stop the current track" }
func (c *ClearCommand) Aliases() []string   { return []string{} }
func (c *ClearCommand) Group() string       { return groupMusic }
func (c *ClearCommand) Category() string    { return categoryMusic }

func (c *ClearCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ClearCommand) Run(ctx any) error {
	sctx, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	guildID, voiceChannelID, textChannelID, ok := target(c.Bot, sctx)
	if !ok {
		return nil
	}

	if err := c.Bot.Players().Clear(guildID, voiceChannelID, textChannelID); err != nil {
		return command.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Could not clear the queue")
	}
	return command.RespondEphemeral(sctx.Session, sctx.Event, "⏹ Queue cleared")
}
