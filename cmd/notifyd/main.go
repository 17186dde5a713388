package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"notifyd/internal/broker"
	"notifyd/internal/common/fsutil"
	"notifyd/internal/config"
	"notifyd/internal/httpapi"
)

func main() {
	// Flags with environment variable defaults
	defaultAddr := ":8080"
	if v := os.Getenv("NOTIFYD_ADDR"); v != "" {
		defaultAddr = v
	}
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	configPath := flag.String("config", os.Getenv("NOTIFYD_CONFIG"), "Optional config file (.yaml/.yml/.json/.toml)")
	topicsCSV := flag.String("topics", "", "Comma-separated topics to create up front")
	strictTopics := flag.Bool("strict-topics", false, "Reject publishes/subscribes to undeclared topics")
	maxSubscribers := flag.Int("max-subscribers", 0, "Per-topic subscriber cap (0=default)")
	historySize := flag.Int("history-size", 0, "Retained events per topic (0=default, negative disables)")
	logLevel := flag.String("log-level", os.Getenv("NOTIFYD_LOG_LEVEL"), "Log level: debug|info|warn|error")
	flag.Parse()

	logger := newLogger(*logLevel)

	var cfg config.Config
	if *configPath != "" {
		if p, err := fsutil.ExpandHome(*configPath); err == nil && !fsutil.PathExists(p) {
			logger.Fatal().Str("path", *configPath).Msg("config file does not exist")
		}
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
	}
	// Flags fill in whatever the config file left unspecified; an explicit
	// flag wins over the file.
	if cfg.Addr == "" || *addr != defaultAddr {
		cfg.Addr = *addr
	}
	if ts := splitCSV(*topicsCSV); len(ts) > 0 {
		cfg.Topics = append(cfg.Topics, ts...)
	}
	if *strictTopics {
		cfg.StrictTopics = true
	}
	if *maxSubscribers != 0 {
		cfg.MaxSubscribers = *maxSubscribers
	}
	if *historySize != 0 {
		cfg.HistorySize = *historySize
	}

	b := broker.NewWithConfig(broker.BrokerConfig{
		Topics:         cfg.Topics,
		StrictTopics:   cfg.StrictTopics,
		MaxSubscribers: cfg.MaxSubscribers,
		HistorySize:    cfg.HistorySize,
	})
	b.SetLogger(logger)

	httpapi.SetLogger(logger)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)

	// Base context canceled on shutdown so open subscribe streams end.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	mux := httpapi.NewMux(b)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Strs("topics", cfg.Topics).Msg("notifyd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

// splitCSV splits a comma-separated list, trimming spaces and dropping empty
// entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
