package command

import (
	"github.com/beatframe/beatframe/internal/logging"
	"github.com/bwmarrin/discordgo"
)

// Middleware wraps a command with a cross-cutting concern.
type Middleware func(Command) Command

// Apply wraps cmd with the given middlewares, first listed runs outermost.
func Apply(cmd Command, mws ...Middleware) Command {
	for i := len(mws) - 1; i >= 0; i-- {
		cmd = mws[i](cmd)
	}
	return cmd
}

type wrapped struct {
	Command
	run func(ctx any) error
}

func (w *wrapped) Run(ctx any) error { return w.run(ctx) }

// SlashDefinition passes through to the wrapped command when it provides one.
func (w *wrapped) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// WithGuildOnly drops invocations from outside a guild (direct messages).
func WithGuildOnly() Middleware {
	return func(next Command) Command {
		return &wrapped{Command: next, run: func(ctx any) error {
			if sctx, ok := ctx.(*SlashContext); ok && sctx.Event.GuildID == "" {
				return RespondEphemeral(sctx.Session, sctx.Event, "This command only works in a server")
			}
			return next.Run(ctx)
		}}
	}
}

// WithCommandLogger logs every invocation with its guild and user.
func WithCommandLogger() Middleware {
	log := logging.WithComponent("command")
	return func(next Command) Command {
		return &wrapped{Command: next, run: func(ctx any) error {
			if sctx, ok := ctx.(*SlashContext); ok {
				user := ""
				if sctx.Event.Member != nil && sctx.Event.Member.User != nil {
					user = sctx.Event.Member.User.Username
				}
				log.Info().
					Str("command", next.Name()).
					Str("guild", sctx.Event.GuildID).
					Str("user", user).
					Msg("command invoked")
			}
			err := next.Run(ctx)
			if err != nil {
				log.Error().Err(err).Str("command", next.Name()).Msg("command failed")
			}
			return err
		}}
	}
}
