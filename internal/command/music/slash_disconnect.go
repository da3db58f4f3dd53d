package music

import (
	"github.com/beatframe/beatframe/internal/command"
	"github.com/bwmarrin/discordgo"
)

type DisconnectCommand struct {
	Bot Bot
}

func (c *DisconnectCommand) Name() string        { return "disconnect" }
func (c *DisconnectCommand) Description() string { return "Stop playback and leave the voice channel" }
func (c *DisconnectCommand) Aliases() []string   { return []string{"leave", "dc"} }
func (c *DisconnectCommand) Group() string       { return groupMusic }
func (c *DisconnectCommand) Category() string    { return categoryMusic }

func (c *DisconnectCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *DisconnectCommand) Run(ctx any) error {
	sctx, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	c.Bot.Players().Disconnect(sctx.Event.GuildID)
	return command.RespondEphemeral(sctx.Session, sctx.Event, "👋 Disconnected")
}
