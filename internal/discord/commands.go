package discord

import (
	"sync"
	"time"

	"github.com/beatframe/beatframe/internal/command"
	"github.com/beatframe/beatframe/internal/command/music"
	"github.com/bwmarrin/discordgo"
)

// registerMusicCommands registers every music command in the global registry.
func (b *Bot) registerMusicCommands() {
	cmds := []command.Command{
		&music.PlayCommand{Bot: b},
		&music.SkipCommand{Bot: b},
		&music.PauseCommand{Bot: b},
		&music.ResumeCommand{Bot: b},
		&music.LoopCommand{Bot: b},
		&music.ShuffleCommand{Bot: b},
		&music.ClearCommand{Bot: b},
		&music.VolumeCommand{Bot: b},
		&music.QueueCommand{Bot: b},
		&music.LyricsCommand{Bot: b},
		&music.StatsCommand{Bot: b},
		&music.DisconnectCommand{Bot: b},
	}
	for _, cmd := range cmds {
		command.Register(command.Apply(cmd,
			command.WithGuildOnly(),
			command.WithCommandLogger(),
		))
	}
}

// registerCommands reconciles the guild's slash commands with the registry:
// obsolete ones are deleted, the rest created or updated.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	wanted := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range command.All() {
		if slash, ok := cmd.(command.SlashProvider); ok {
			if def := slash.SlashDefinition(); def != nil {
				wanted[def.Name] = def
			}
		}
	}

	existing, _ := b.dg.ApplicationCommands(appID, guildID)
	for _, old := range existing {
		if _, ok := wanted[old.Name]; !ok {
			b.log.Info().Str("guild", guildID).Str("command", old.Name).Msg("deleting obsolete command")
			if err := b.dg.ApplicationCommandDelete(appID, guildID, old.ID); err != nil {
				b.log.Error().Err(err).Str("command", old.Name).Msg("failed to delete command")
			}
		}
	}

	defs := make([]*discordgo.ApplicationCommand, 0, len(wanted))
	for _, def := range wanted {
		defs = append(defs, def)
	}
	b.createCommandsWithRateLimit(appID, guildID, defs)
	return nil
}

// createCommandsWithRateLimit upserts command definitions, pacing the creates
// to stay under Discord's global request rate.
func (b *Bot) createCommandsWithRateLimit(appID, guildID string, cmds []*discordgo.ApplicationCommand) {
	rateLimit := time.Second / 40
	ticker := time.NewTicker(rateLimit)
	defer ticker.Stop()

	var wg sync.WaitGroup
	for _, job := range cmds {
		wg.Add(1)
		go func(cmd *discordgo.ApplicationCommand) {
			defer wg.Done()
			<-ticker.C

			_, err := b.dg.ApplicationCommandCreate(appID, guildID, cmd)
			if err != nil {
				b.log.Error().Err(err).Str("command", cmd.Name).Msg("can't create command")
			}
		}(job)
	}
	wg.Wait()
}
