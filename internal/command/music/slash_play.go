package music

import (
	"context"
	"fmt"
	"time"

	"github.com/beatframe/beatframe/internal/command"
	"github.com/bwmarrin/discordgo"
)

type PlayCommand struct {
	Bot Bot
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a track, playlist or search result" }
func (c *PlayCommand) Aliases() []string   { return []string{} }
func (c *PlayCommand) Group() string       { return groupMusic }
func (c *PlayCommand) Category() string    { return categoryMusic }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "input",
				Description: "Link or search query",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx any) error {
	sctx, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	input := stringOption(sctx.Event, "input")
	if input == "" {
		return command.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Error: input is required")
	}

	guildID, voiceChannelID, textChannelID, ok := target(c.Bot, sctx)
	if !ok {
		return nil
	}

	if err := command.RespondDeferred(sctx.Session, sctx.Event); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := c.Bot.Engine().LoadTracks(loadCtx, input)
	if err != nil {
		return command.FollowupEphemeral(sctx.Session, sctx.Event, "🎵 The audio engine could not resolve that input")
	}

	players := c.Bot.Players()
	switch result.Kind {
	case "empty", "error":
		return command.FollowupEphemeral(sctx.Session, sctx.Event, "🎵 Nothing found for that input")
	case "playlist":
		if err := players.AddPlaylist(guildID, voiceChannelID, textChannelID, result.Items); err != nil {
			return command.FollowupEphemeral(sctx.Session, sctx.Event, "🎵 Could not start the playlist")
		}
		return command.Followup(sctx.Session, sctx.Event,
			fmt.Sprintf("🎶 Loaded playlist **%s** (%d tracks)", result.PlaylistName, len(result.Items)))
	default:
		if len(result.Items) == 0 {
			return command.FollowupEphemeral(sctx.Session, sctx.Event, "🎵 Nothing found for that input")
		}
		it := result.Items[0]
		if err := players.AddTrack(guildID, voiceChannelID, textChannelID, it); err != nil {
			return command.FollowupEphemeral(sctx.Session, sctx.Event,
				fmt.Sprintf("🎵 Could not start **%s**", it.Title))
		}
		return command.Followup(sctx.Session, sctx.Event,
			fmt.Sprintf("🎶 **%s** by **%s**", it.Title, it.Author))
	}
}
