package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tomz197/snakes/internal/config"
	"github.com/tomz197/snakes/internal/draw"
	"github.com/tomz197/snakes/internal/loop"
	"github.com/tomz197/snakes/internal/round"
	"github.com/tomz197/snakes/internal/store"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultDataDir     = "/app/data"
	defaultIdleTimeout = 5 * time.Minute
)

// sessionConfig is shared by every SSH session.
type sessionConfig struct {
	settings    round.Settings
	dataDir     string
	difficulty  round.Difficulty
	idleTimeout time.Duration
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)

	difficulty, err := round.ParseDifficulty(config.GetEnv("SNAKES_DIFFICULTY", "normal"))
	if err != nil {
		log.Fatal().Err(err).Msg("Bad difficulty")
	}
	settings, err := loop.SettingsFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Bad settings")
	}
	cfg := sessionConfig{
		settings:    settings,
		dataDir:     config.GetEnv("SNAKES_DATA_DIR", defaultDataDir),
		difficulty:  difficulty,
		idleTimeout: config.GetEnvDuration("SNAKES_IDLE_TIMEOUT", defaultIdleTimeout),
	}
	if err := os.MkdirAll(cfg.dataDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.dataDir).Msg("Create data directory")
	}
	log.Info().
		Str("host", host).
		Str("port", port).
		Str("host_key", hostKeyPath).
		Str("data_dir", cfg.dataDir).
		Dur("idle_timeout", cfg.idleTimeout).
		Msg("SSH config")

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware(cfg),
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Create server")
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Str("addr", net.JoinHostPort(host, port)).Msg("Starting SSH server")
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-done
	log.Info().Msg("Shutting down server")

	// Session contexts are cancelled on shutdown, so every game saves its
	// round before the connection closes.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown error")
	}
}

// gameMiddleware runs one local game per SSH session. Each user gets a
// saved session of their own; the high score table is shared.
func gameMiddleware(cfg sessionConfig) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			logger := log.With().
				Str("user", sess.User()).
				Str("remote", sess.RemoteAddr().String()).
				Logger()
			logger.Info().
				Str("terminal", pty.Term).
				Int("width", pty.Window.Width).
				Int("height", pty.Window.Height).
				Msg("New game session")

			// Create a terminal size tracker that updates on window changes
			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

			// Listen for window size changes in a goroutine
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			opts := loop.Options{
				TermSizeFunc: sizeTracker.getSize,
				Sessions:     store.SessionStore{Path: filepath.Join(cfg.dataDir, userFile(sess.User())+"-"+loop.DefaultSessionFile)},
				Scores:       store.ScoreStore{Path: filepath.Join(cfg.dataDir, loop.DefaultScoresFile)},
				Logger:       logger,
				Difficulty:   cfg.difficulty,
				Settings:     cfg.settings,
				IdleTimeout:  cfg.idleTimeout,
			}

			reader := bufio.NewReader(sess)
			if err := loop.Run(sess.Context(), reader, sess, opts); err != nil {
				logger.Error().Err(err).Msg("Game error")
				fmt.Fprintf(sess, "\r\nGame error: %v\r\n", err)
			}

			logger.Info().Msg("Session ended")
			next(sess)
		}
	}
}

// userFile makes an SSH user name safe to use in a file name.
func userFile(user string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, user)
	if name == "" {
		return "anonymous"
	}
	return name
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
