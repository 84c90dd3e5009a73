package main

import (
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/cardczar/cmd/cardczar/shared"
	"github.com/lox/cardczar/internal/game"
	"github.com/lox/cardczar/internal/server"
	"github.com/lox/cardczar/internal/store"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Addr   string `kong:"help='Listen address, overrides the config file'"`
	Config string `kong:"default='cardczar.hcl',help='Path to HCL config file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	JSON   bool   `kong:"help='Structured JSON log output'"`
}

func (c *ServerCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)
	if c.JSON {
		logger = shared.SetupStructuredLogger(c.Debug)
	}

	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	addr := cfg.Addr()
	if c.Addr != "" {
		addr = c.Addr
	}

	decks := cfg.CardDecks()
	engine := game.NewEngine(store.NewMemory(), quartz.NewReal(), logger)
	service := server.NewGameService(engine, decks, cfg.Game.WinningScore, logger)
	service.SetHandSize(cfg.Game.HandSize)
	srv := server.NewServer(addr, service, logger)

	logger.Info("Starting cardczar server",
		"address", addr,
		"decks", len(decks),
		"hand_size", cfg.Game.HandSize,
		"winning_score", cfg.Game.WinningScore)

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		return srv.Stop()
	})
	return g.Wait()
}
