package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/topi314/campfire-sync/internal/xslog"
	"github.com/topi314/campfire-sync/server"
)

func main() {
	cfgPath := flag.String("config", "config.toml", "path to the config file")
	flag.Parse()

	cfg, err := server.LoadConfig(*cfgPath)
	if err != nil {
		slog.Error("Failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	setupLogger(cfg.Log)
	slog.Info("Starting campfire-sync", slog.String("config", cfg.String()))

	srv, err := server.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize server", slog.Any("err", err))
		os.Exit(1)
	}

	srv.Start()
	defer srv.Stop()

	slog.Info("Server started", slog.String("addr", cfg.Server.Addr))

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGTERM, syscall.SIGINT)
	<-s
}

func setupLogger(cfg server.LogConfig) {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case server.LogFormatJSON:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	// health checks would flood the access log
	slog.SetDefault(slog.New(xslog.NewFilterHandler(handler, func(ctx context.Context, record slog.Record) bool {
		var path string
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == "path" {
				path = attr.Value.String()
				return false
			}
			return true
		})
		return path != "/api/health"
	})))
}
