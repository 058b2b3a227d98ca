package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/bkyoung/comment-dedup/internal/adapter/cli"
	gitadapter "github.com/bkyoung/comment-dedup/internal/adapter/git"
	"github.com/bkyoung/comment-dedup/internal/adapter/observability"
	"github.com/bkyoung/comment-dedup/internal/adapter/store/sqlite"
	"github.com/bkyoung/comment-dedup/internal/config"
	"github.com/bkyoung/comment-dedup/internal/similarity"
	"github.com/bkyoung/comment-dedup/internal/usecase/dedup"
)

func main() {
	err := run()
	if err == nil {
		return
	}
	if errors.Is(err, cli.ErrOriginalComment) {
		os.Exit(1)
	}
	log.Println(err)
	os.Exit(1)
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "cdd",
		EnvPrefix:   "CDD",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	var logger dedup.Logger
	if cfg.Observability.Logging.Enabled {
		logger = observability.NewDefaultLogger(
			observability.ParseLevel(cfg.Observability.Logging.Level),
			observability.ParseFormat(cfg.Observability.Logging.Format),
		)
	}

	scorer := similarity.NewJaccard()

	// Create store directory if it doesn't exist
	if cfg.Store.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	fingerprintStore, err := sqlite.NewStore(cfg.Store.Path, scorer)
	if err != nil {
		return fmt.Errorf("open fingerprint store: %w", err)
	}
	defer fingerprintStore.Close()

	engine, err := dedup.NewEngine(dedup.Dependencies{
		Store:  fingerprintStore,
		Scorer: scorer,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	// Repository identity from the local checkout; commands can override
	// with --repo, so a failure here is not fatal.
	defaultRepo, err := gitadapter.RepositoryID(".")
	if err != nil {
		defaultRepo = ""
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Engine:              engine,
		OutWriter:           os.Stdout,
		ErrWriter:           os.Stderr,
		DefaultRepositoryID: defaultRepo,
		DefaultOptions:      engineOptions(cfg.Dedup),
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		},
	})

	return root.ExecuteContext(ctx)
}

// engineOptions maps config values onto per-call engine options.
func engineOptions(cfg config.DedupConfig) dedup.Options {
	opts := dedup.DefaultOptions()
	if cfg.SimilarityThreshold > 0 {
		opts.SimilarityThreshold = cfg.SimilarityThreshold
	}
	opts.IncludeResolved = cfg.IncludeResolved
	opts.IncludeAcknowledged = cfg.IncludeAcknowledged
	if cfg.RecencyWindow != "" {
		if window, err := time.ParseDuration(cfg.RecencyWindow); err == nil {
			opts.RecencyWindow = window
		}
	}
	return opts
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cdd"))
	}
	return paths
}
