package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/beatframe/beatframe/internal/config"
	"github.com/beatframe/beatframe/internal/discord"
	"github.com/beatframe/beatframe/internal/logging"
	v "github.com/beatframe/beatframe/internal/version"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fail := logging.WithComponent("main")
		fail.Fatal().Err(err).Msg("configuration error")
	}

	logging.Configure(cfg.LogLevel, v.AppName)
	log := logging.WithComponent("main")
	log.Info().Str("version", v.Version).Msgf("starting %s", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := discord.StartBot(ctx, cfg); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("discord bot error")
		}
		cancel()
	}
	<-errCh

	log.Info().Msg("discord bot exited cleanly")
}
