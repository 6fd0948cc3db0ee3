package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/gophtodo/internal/todoctl"
	"github.com/rs/zerolog"
)

func main() {
	app := todoctl.NewApp(os.Stdin, os.Stdout, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		log.Error().Err(err).Msg("todoctl failed")
		cancel()
		os.Exit(1)
	}
}
