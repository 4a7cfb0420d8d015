package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/pollroom/internal/adapters/handler/http"
	"github.com/vncsmyrnk/pollroom/internal/adapters/realtime"
	"github.com/vncsmyrnk/pollroom/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/pollroom/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/pollroom/internal/config"
	"github.com/vncsmyrnk/pollroom/internal/core/ports"
	"github.com/vncsmyrnk/pollroom/internal/core/services"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pollRepo, voteRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	hub := realtime.NewHub(logger)
	pollService := services.NewPollService(pollRepo)
	voteService := services.NewVoteService(pollRepo, voteRepo, hub)

	handler := http.NewHandler(
		http.NewPollHandler(pollService, logger),
		http.NewVoteHandler(voteService, logger),
		realtime.NewHandler(hub, pollService, cfg.AllowedOrigins, logger),
		cfg.AllowedOrigins,
	)
	server := &stdhttp.Server{Addr: cfg.Addr, Handler: handler}
	server.RegisterOnShutdown(hub.Close)

	go func() {
		logger.Info("listening", "addr", cfg.Addr, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (ports.PollRepository, ports.VoteRepository, func(), error) {
	if cfg.Storage == config.StorageMemory {
		return memory.NewPollRepository(), memory.NewVoteRepository(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if err := postgres.Migrate(ctx, db, postgres.DirectionUp); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	return postgres.NewPollRepository(db), postgres.NewVoteRepository(db), func() { db.Close() }, nil
}
