package music

import (
	"context"
	"time"

	"github.com/beatframe/beatframe/internal/command"
	"github.com/bwmarrin/discordgo"
)

// Discord caps embed descriptions at 4096 runes.
const lyricsLimit = 4000

type LyricsCommand struct {
	Bot Bot
}

func (c *LyricsCommand) Name() string        { return "lyrics" }
func (c *LyricsCommand) Description() string { return "Show lyrics for the current track" }
func (c *LyricsCommand) Aliases() []string   { return []string{} }
func (c *LyricsCommand) Group() string       { return groupMusic }
func (c *LyricsCommand) Category() string    { return categoryMusic }

func (c *LyricsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *LyricsCommand) Run(ctx any) error {
	sctx, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	guildID, voiceChannelID, textChannelID, ok := target(c.Bot, sctx)
	if !ok {
		return nil
	}

	if err := command.RespondDeferred(sctx.Session, sctx.Event); err != nil {
		return err
	}

	lookupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	text, err := c.Bot.Players().GetLyrics(lookupCtx, guildID, voiceChannelID, textChannelID)
	if err != nil {
		return command.FollowupEphemeral(sctx.Session, sctx.Event, "🎵 Could not look up lyrics")
	}

	runes := []rune(text)
	if len(runes) > lyricsLimit {
		text = string(runes[:lyricsLimit]) + "…"
	}
	return command.FollowupEmbed(sctx.Session, sctx.Event, &discordgo.MessageEmbed{
		Title:       "🎤 Lyrics",
		Description: text,
		Color:       0x2ECC71,
		Footer:      &discordgo.MessageEmbedFooter{Text: "music player"},
	})
}
