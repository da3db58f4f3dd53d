package music

import (
	"fmt"
	"time"

	"github.com/beatframe/beatframe/internal/command"
	"github.com/bwmarrin/discordgo"
)

type StatsCommand struct {
	Bot Bot
}

func (c *StatsCommand) Name() string        { return "stats" }
func (c *StatsCommand) Description() string { return "Show audio engine statistics" }
func (c *StatsCommand) Aliases() []string   { return []string{} }
func (c *StatsCommand) Group() string       { return groupMusic }
func (c *StatsCommand) Category() string    { return categoryMusic }

func (c *StatsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *StatsCommand) Run(ctx any) error {
	sctx, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	stats := c.Bot.Players().GetEngineStats()
	embed := &discordgo.MessageEmbed{
		Title: "📊 Engine Stats",
		Color: 0x2ECC71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Players", Value: fmt.Sprintf("%d", stats.Players), Inline: true},
			{Name: "Playing", Value: fmt.Sprintf("%d", stats.PlayingPlayers), Inline: true},
			{Name: "Uptime", Value: stats.Uptime.Round(time.Second).String(), Inline: true},
			{Name: "Memory Used", Value: fmt.Sprintf("%d MiB", stats.MemoryUsed/(1024*1024)), Inline: true},
			{Name: "Memory Free", Value: fmt.Sprintf("%d MiB", stats.MemoryFree/(1024*1024)), Inline: true},
			{Name: "CPU Load", Value: fmt.Sprintf("%.1f%%", stats.CPULoad*100), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "music player"},
	}
	return command.RespondEmbed(sctx.Session, sctx.Event, embed)
}
