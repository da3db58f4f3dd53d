package music

import (
	"fmt"

	"github.com/beatframe/beatframe/internal/command"
	"github.com/beatframe/beatframe/internal/player"
	"github.com/bwmarrin/discordgo"
)

type VolumeCommand struct {
	Bot Bot
}

func (c *VolumeCommand) Name() string        { return "volume" }
func (c *VolumeCommand) Description() string { return "Set the playback volume" }
func (c *VolumeCommand) Aliases() []string   { return []string{} }
func (c *VolumeCommand) Group() string       { return groupMusic }
func (c *VolumeCommand) Category() string    { return categoryMusic }

func (c *VolumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	minVolume := float64(player.MinVolume)
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "percent",
				Description: fmt.Sprintf("Volume in percent (%d-%d)", player.MinVolume, player.MaxVolume),
				Required:    true,
				MinValue:    &minVolume,
				MaxValue:    float64(player.MaxVolume),
			},
		},
	}
}

func (c *VolumeCommand) Run(ctx any) error {
	sctx, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	percent, found := intOption(sctx.Event, "percent")
	if !found {
		return command.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Error: percent is required")
	}

	guildID, voiceChannelID, textChannelID, ok := target(c.Bot, sctx)
	if !ok {
		return nil
	}

	if err := c.Bot.Players().SetVolume(guildID, voiceChannelID, textChannelID, percent); err != nil {
		return command.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Could not change the volume")
	}
	return command.RespondEphemeral(sctx.Session, sctx.Event, fmt.Sprintf("🔊 Volume set to %d%%", percent))
}
