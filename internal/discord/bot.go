// Package discord wires the chat transport to the playback core: session
// lifecycle, slash command registration, interaction dispatch, reaction
// routing and voice credential forwarding.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/beatframe/beatframe/internal/command"
	"github.com/beatframe/beatframe/internal/config"
	"github.com/beatframe/beatframe/internal/lavalink"
	"github.com/beatframe/beatframe/internal/logging"
	"github.com/beatframe/beatframe/internal/lyrics"
	"github.com/beatframe/beatframe/internal/notify"
	"github.com/beatframe/beatframe/internal/player"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Bot is the Discord bot.
type Bot struct {
	dg   *discordgo.Session
	cfg  *config.Config
	lava *lavalink.Client
	orch *player.Orchestrator
	log  zerolog.Logger

	ctx       context.Context
	startOnce sync.Once
}

// StartBot runs the Discord bot until the context ends.
func StartBot(ctx context.Context, cfg *config.Config) error {
	b := &Bot{
		cfg: cfg,
		ctx: ctx,
		log: logging.WithComponent("discord"),
	}
	if err := b.run(ctx); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	b.lava = lavalink.New(lavalink.Config{
		Host:     b.cfg.LavalinkHost,
		Port:     b.cfg.LavalinkPort,
		Password: b.cfg.LavalinkPassword,
		Secure:   b.cfg.LavalinkSecure,
	}, logging.WithComponent("lavalink"), logging.EngineFileLogger(b.cfg.EngineLogPath))

	b.orch = player.NewOrchestrator(player.Deps{
		Engine:          &engineAdapter{lava: b.lava},
		Voice:           &voiceGateway{dg: dg},
		Messenger:       &messenger{dg: dg},
		Notifier:        notify.New(dg, logging.WithComponent("notify")),
		Lyrics:          lyrics.New(),
		Resolver:        &voiceResolver{dg: dg},
		AttachReactions: b.attachReactions,
		Log:             logging.WithComponent("player"),
		DefaultVolume:   b.cfg.DefaultVolume,
	})

	b.registerMusicCommands()

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onMessageReactionAdd)
	dg.AddHandler(b.onMessageReactionRemove)
	dg.AddHandler(b.onVoiceStateUpdate)
	dg.AddHandler(b.onVoiceServerUpdate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	go b.pumpEngineEvents(ctx)

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, cleaning up")
	b.orch.DisconnectAll()
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildVoiceStates
}

// Players returns the playback orchestrator.
func (b *Bot) Players() *player.Orchestrator {
	return b.orch
}

// Engine returns the audio engine client.
func (b *Bot) Engine() *lavalink.Client {
	return b.lava
}

// onReady is called when the gateway session becomes ready. The engine
// connection needs the bot's user id, so it only starts here.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.startOnce.Do(func() {
		b.lava.SetUserID(r.User.ID)
		go b.lava.Start(b.ctx)
	})

	for _, g := range r.Guilds {
		if err := b.registerCommands(g.ID); err != nil {
			b.log.Error().Err(err).Str("guild", g.ID).Msg("slash command registration failed")
		}
	}

	b.log.Info().Str("user", r.User.Username).Msg("discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Info().Str("guild", g.Guild.ID).Str("name", g.Guild.Name).Msg("guild available")
	if err := b.registerCommands(g.Guild.ID); err != nil {
		b.log.Error().Err(err).Str("guild", g.Guild.ID).Msg("slash command registration failed")
	}
}

// onInteractionCreate dispatches slash interactions to the registry.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name

	cmd, ok := command.Get(name)
	if !ok {
		b.log.Warn().Str("command", name).Msg("unknown command")
		return
	}

	ctx := &command.SlashContext{Session: s, Event: i}
	if err := cmd.Run(ctx); err != nil {
		b.log.Error().Err(err).Str("command", name).Msg("command run failed")
		_ = command.RespondEphemeral(s, i, fmt.Sprintf("Error running command: %v", err))
	}
}
