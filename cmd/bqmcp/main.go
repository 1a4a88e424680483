package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bqmcp/bqmcp/internal/config"
	"github.com/bqmcp/bqmcp/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const appVersion = "0.1.0"

var (
	transport = flag.String("transport", "", "MCP transport: stdio, sse or http (overrides BQMCP_TRANSPORT)")
	projectID = flag.String("project", "", "BigQuery project ID (defaults to the credentials' project)")
	version   = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("bqmcp version %s\n", appVersion)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *projectID != "" {
		cfg.GCPProjectID = *projectID
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, appVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

// setupLogging writes to stderr; stdout carries the stdio transport.
func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", "bqmcp").Logger()
	}
}
