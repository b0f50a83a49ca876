package main

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tomz197/snakes/internal/config"
	"github.com/tomz197/snakes/internal/loop"
	"github.com/tomz197/snakes/internal/store"
)

const (
	defaultHost    = "0.0.0.0"
	defaultPort    = "8080"
	defaultDataDir = "/app/data"
)

//go:embed index.html
var htmlPage string

var page = template.Must(template.New("index").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(htmlPage))

// pageData fills index.html.
type pageData struct {
	SSHHost string
	Scores  []store.Entry
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	scores := store.ScoreStore{
		Path: filepath.Join(config.GetEnv("SNAKES_DATA_DIR", defaultDataDir), loop.DefaultScoresFile),
	}

	addr := net.JoinHostPort(host, port)
	log.Info().Str("addr", addr).Str("scores", scores.Path).Msg("Starting web server")
	if err := http.ListenAndServe(addr, newHandler(sshHost, scores)); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}

// newHandler serves the landing page with the high score table and the
// table as JSON.
func newHandler(sshHost string, scores store.ScoreStore) http.Handler {
	mux := http.NewServeMux()

	index := func(w http.ResponseWriter, r *http.Request) {
		hs, ok := loadScores(w, scores)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(w, pageData{SSHHost: sshHost, Scores: hs.Entries}); err != nil {
			log.Error().Err(err).Msg("Render page")
		}
	}
	mux.HandleFunc("GET /{$}", index)
	mux.HandleFunc("GET /scores", index)

	mux.HandleFunc("GET /scores.json", func(w http.ResponseWriter, r *http.Request) {
		hs, ok := loadScores(w, scores)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(hs.Entries); err != nil {
			log.Error().Err(err).Msg("Encode scores")
		}
	})

	return mux
}

// loadScores reads the table and answers 500 when it cannot.
func loadScores(w http.ResponseWriter, scores store.ScoreStore) (*store.HighScores, bool) {
	hs, err := scores.Load()
	if err != nil {
		log.Error().Err(err).Msg("Load high scores")
		http.Error(w, "high scores unavailable", http.StatusInternalServerError)
		return nil, false
	}
	return hs, true
}
