// Package loop provides the main game loop and state management.
package loop

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomz197/snakes/internal/draw"
	"github.com/tomz197/snakes/internal/input"
	"github.com/tomz197/snakes/internal/round"
	"github.com/tomz197/snakes/internal/store"
)

// Options configures a game session.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Sessions     store.SessionStore
	Scores       store.ScoreStore
	Logger       zerolog.Logger
	Difficulty   round.Difficulty
	Settings     round.Settings // Zero value uses round.DefaultSettings on the view
	IdleTimeout  time.Duration  // Zero disables the idle disconnect
}

// Run starts the main game loop with the standard Input → Update → Draw
// cycle. It returns when the player quits, the input closes or ctx is
// done; the session and high scores are saved on the way out.
func Run(ctx context.Context, r io.Reader, w io.Writer, opts Options) error {
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = draw.DefaultTermSizeFunc
	}

	scores, err := opts.Scores.Load()
	if err != nil {
		return fmt.Errorf("high scores: %w", err)
	}

	game := NewGame(opts, scores)
	stream := input.StartStream(r)
	cw := draw.NewChunkWriter(w, 0, 0)
	rend := newRenderer(cw, opts.TermSizeFunc)

	draw.HideCursor(w)
	defer func() {
		draw.ClearScreen(w)
		draw.ShowCursor(w)
	}()

	for game.Running {
		frameStart := time.Now()

		// ===== INPUT PHASE =====
		select {
		case <-ctx.Done():
			game.quit("context done")
			continue
		default:
		}
		in := input.ReadInput(stream)

		// ===== UPDATE PHASE =====
		game.Update(in, frameStart)
		if !game.Running {
			break
		}

		// ===== DRAW PHASE =====
		if err := rend.draw(game); err != nil {
			game.fail(fmt.Errorf("draw: %w", err))
			break
		}

		// ===== FRAME TIMING =====
		elapsed := time.Since(frameStart)
		if elapsed < targetFrameTime {
			time.Sleep(targetFrameTime - elapsed)
		}
	}

	return game.Close()
}
