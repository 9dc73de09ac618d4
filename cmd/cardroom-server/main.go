package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"cardroom/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"cardroom.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Listen address (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Seed     int64  `long:"seed" help:"Deterministic RNG seed for all tables (0 = random)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		kctx.Exit(1)
	}

	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Seed != 0 {
		for i := range cfg.Tables {
			cfg.Tables[i].Seed = CLI.Seed + int64(i)
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	addr := cfg.ListenAddress()
	if CLI.Addr != "" {
		addr = CLI.Addr
	}

	logger.Info("starting cardroom",
		"addr", addr,
		"tables", len(cfg.Tables),
		"bots", len(cfg.Bots))

	service := server.NewService(cfg, logger, quartz.NewReal(), CLI.Seed)
	wsServer := server.NewServer(addr, logger, service)

	if err := service.Setup(); err != nil {
		logger.Error("setup failed", "error", err)
		kctx.Exit(1)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(wsServer.Start)
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case received := <-sig:
			logger.Info("shutting down", "signal", received)
			return wsServer.Stop()
		case <-ctx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", "error", err)
		kctx.Exit(1)
	}
}
