package music

import (
	"github.com/beatframe/beatframe/internal/command"
	"github.com/bwmarrin/discordgo"
)

type QueueCommand struct {
	Bot Bot
}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show the pending track queue" }
func (c *QueueCommand) Aliases() []string   { return []string{} }
func (c *QueueCommand) Group() string       { return groupMusic }
func (c *QueueCommand) Category() string    { return categoryMusic }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *QueueCommand) Run(ctx any) error {
	sctx, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	guildID, voiceChannelID, textChannelID, ok := target(c.Bot, sctx)
	if !ok {
		return nil
	}

	if err := c.Bot.Players().SendQueueView(guildID, voiceChannelID, textChannelID); err != nil {
		return command.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Could not render the queue")
	}
	return command.RespondEphemeral(sctx.Session, sctx.Event, "🎶 Queue posted")
}
