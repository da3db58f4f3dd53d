package music

import (
	"github.com/beatframe/beatframe/internal/command"
	"github.com/bwmarrin/discordgo"
)

type SkipCommand struct {
	Bot Bot
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip the current track" }
func (c *SkipCommand) Aliases() []string   { return []string{"next"} }
func (c *SkipCommand) Group() string       { return groupMusic }
func (c *SkipCommand) Category() string    { return categoryMusic }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *SkipCommand) Run(ctx any) error {
	sctx, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	guildID, voiceChannelID, textChannelID, ok := target(c.Bot, sctx)
	if !ok {
		return nil
	}

	if err := c.Bot.Players().Skip(guildID, voiceChannelID, textChannelID); err != nil {
		return command.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Could not skip the current track")
	}
	return command.RespondEphemeral(sctx.Session, sctx.Event, "⏭ Skipped")
}
