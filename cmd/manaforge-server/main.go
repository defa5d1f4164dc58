// Package main runs the ManaForge API server: deck forging, card lookups,
// the saved-deck library, and the voice session bridge.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sheljulian96-lab/ManaForge/internal/api"
	"github.com/sheljulian96-lab/ManaForge/internal/cards"
	"github.com/sheljulian96-lab/ManaForge/internal/config"
	"github.com/sheljulian96-lab/ManaForge/internal/deck"
	"github.com/sheljulian96-lab/ManaForge/internal/forge"
	"github.com/sheljulian96-lab/ManaForge/internal/library"
	"github.com/sheljulian96-lab/ManaForge/internal/live"
	"github.com/sheljulian96-lab/ManaForge/internal/scryfall"
)

var port = flag.Int("port", 0, "override the configured server port")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.App.DebugMode {
		level.SetLevel(zapcore.DebugLevel)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = level
	log, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Gemini.APIKey == "" {
		log.Fatal("GEMINI_API_KEY is not set")
	}

	ctx := context.Background()

	genaiClient, err := forge.NewGenAIClient(ctx, cfg.Gemini.APIKey)
	if err != nil {
		log.Fatal("failed to create gemini client", zap.Error(err))
	}

	scry := scryfall.NewClient()
	directory := cards.NewDirectory(scry, log)
	forger := forge.NewService(genaiClient, cfg.Gemini.Model, directory, log)
	parser := deck.NewParser(scry)
	dial := live.NewGenAIDialer(genaiClient, cfg.Gemini.LiveModel)

	libPath, err := cfg.LibraryPath()
	if err != nil {
		log.Fatal("failed to resolve library path", zap.Error(err))
	}
	var storeOpts []library.StoreOption
	if cfg.Library.Passphrase != "" {
		storeOpts = append(storeOpts, library.WithEncryption(cfg.Library.Passphrase))
	}
	store, err := library.Open(library.DefaultDBConfig(libPath), log, storeOpts...)
	if err != nil {
		log.Fatal("failed to open deck library", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("error closing deck library", zap.Error(err))
		}
	}()

	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DefaultFormat:  cfg.App.DefaultFormat,
	}, &api.Deps{
		Forge:   forger,
		Cards:   directory,
		Library: store,
		Parser:  parser,
		Dial:    dial,
	}, log)

	if err := server.Start(); err != nil {
		log.Fatal("failed to start api server", zap.Error(err))
	}

	// Pick up log-level changes without a restart.
	if cfgPath, err := config.Path(); err == nil {
		watcher, err := config.NewWatcher(cfgPath, log, func(next *config.Config) {
			if next.App.DebugMode {
				level.SetLevel(zapcore.DebugLevel)
			} else {
				level.SetLevel(zapcore.InfoLevel)
			}
		})
		if err != nil {
			log.Warn("config watcher unavailable", zap.Error(err))
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	log.Info("manaforge ready", zap.Int("port", server.Port()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("error during shutdown", zap.Error(err))
	}
}
