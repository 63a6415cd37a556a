// Command taskdeck is a terminal client for the task-management
// backend. It keeps a local SQLite snapshot for instant startup and
// offline reads, and reconciles it with the backend in the background.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/minhng/taskdeck/internal/api"
	"github.com/minhng/taskdeck/internal/app"
	"github.com/minhng/taskdeck/internal/model"
	"github.com/minhng/taskdeck/internal/session"
	"github.com/minhng/taskdeck/internal/store"
	appsync "github.com/minhng/taskdeck/internal/sync"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskdeck: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the config file")
	stateDir := flag.String("state-dir", model.DefaultStateDir(), "directory for the snapshot database and log file")
	memorySession := flag.Bool("memory-session", false, "keep the session token in memory only (skip the system keyring)")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory %s: %w", *stateDir, err)
	}

	// The terminal belongs to the UI; logs go to a file.
	logFile, err := os.OpenFile(
		filepath.Join(*stateDir, "taskdeck.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0o644,
	)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	log := zerolog.New(logFile).With().Timestamp().Logger()
	log.Info().Str("base_url", cfg.Server.BaseURL).Msg("starting")

	s, err := store.NewSQLiteStore(filepath.Join(*stateDir, "snapshot.db"))
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	defer s.Close()

	var sess session.Store
	if *memorySession {
		sess = session.NewMemoryStore()
	} else {
		sess = session.NewKeyringStore()
	}

	client := api.New(cfg.Server.BaseURL, sess, log)

	if cfg.Server.HealthOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := client.Health(ctx); err != nil {
			log.Warn().Err(err).Msg("backend health check failed")
		}
		cancel()
	}

	poller := appsync.New(client, s, time.Duration(cfg.Sync.IntervalSec)*time.Second, cfg.Sync.PageSize, log)
	defer poller.Stop()

	root := app.New(cfg, *configPath, client, s, sess, poller, log)

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("ui exited with error")
		return err
	}

	log.Info().Msg("exiting")
	return nil
}
