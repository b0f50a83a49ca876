package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/tomz197/snakes/internal/config"
	"github.com/tomz197/snakes/internal/loop"
	"github.com/tomz197/snakes/internal/round"
	"github.com/tomz197/snakes/internal/store"
)

func main() {
	logger, closeLog, err := newLogger(config.GetEnv("SNAKES_LOG", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	difficulty, err := round.ParseDifficulty(config.GetEnv("SNAKES_DIFFICULTY", "normal"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	settings, err := loop.SettingsFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := loop.Options{
		Sessions:   store.SessionStore{Path: config.GetEnv("SNAKES_SESSION_FILE", loop.DefaultSessionFile)},
		Scores:     store.ScoreStore{Path: config.GetEnv("SNAKES_SCORES_FILE", loop.DefaultScoresFile)},
		Logger:     logger,
		Difficulty: difficulty,
		Settings:   settings,
	}

	reader := bufio.NewReader(os.Stdin)
	runErr := loop.Run(ctx, reader, os.Stdout, opts)
	_ = term.Restore(fd, oldState)
	if runErr != nil {
		logger.Error().Err(runErr).Msg("Game error")
		fmt.Fprintf(os.Stderr, "game error: %v\n", runErr)
		closeLog()
		os.Exit(1)
	}
}

// newLogger writes JSON logs to path. The terminal belongs to the game, so
// an empty path disables logging.
func newLogger(path string) (zerolog.Logger, func(), error) {
	if path == "" {
		return zerolog.Nop(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}
	logger := zerolog.New(f).With().Timestamp().Str("mode", "local").Logger()
	return logger, func() { _ = f.Close() }, nil
}
