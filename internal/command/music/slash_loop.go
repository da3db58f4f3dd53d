package music

import (
	"github.com/beatframe/beatframe/internal/command"
	"github.com/bwmarrin/discordgo"
)

type LoopCommand struct {
	Bot Bot
}

func (c *LoopCommand) Name() string        { return "loop" }
func (c *LoopCommand) Description() string { return "Toggle looping of the current track" }
func (c *LoopCommand) Aliases() []string   { return []string{} }
func (c *LoopCommand) Group() string       { return groupMusic }
func (c *LoopCommand) Category() string    { return categoryMusic }

func (c *LoopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *LoopCommand) Run(ctx any) error {
	sctx, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	guildID, voiceChannelID, textChannelID, ok := target(c.Bot, sctx)
	if !ok {
		return nil
	}

	looping, err := c.Bot.Players().ToggleLoop(guildID, voiceChannelID, textChannelID)
	if err != nil {
		return command.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Could not toggle looping")
	}
	if looping {
		return command.RespondEphemeral(sctx.Session, sctx.Event, "🔁 Looping enabled")
	}
	return command.RespondEphemeral(sctx.Session, sctx.Event, "🔁 Looping disabled")
}
