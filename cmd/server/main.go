package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/promptparty/backend/internal/config"
	"github.com/promptparty/backend/internal/httpapi"
	"github.com/promptparty/backend/internal/hub"
	"github.com/promptparty/backend/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Select(cfg.DatabaseURL, cfg.RoomsFile)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	if cfg.DatabaseURL != "" {
		logger.Info("using postgres store")
	} else {
		logger.Info("using snapshot store", zap.String("path", cfg.RoomsFile))
	}

	keeper, err := store.NewKeeper(ctx, st, logger)
	if err != nil {
		logger.Fatal("load room snapshots", zap.Error(err))
	}

	h := hub.NewHub(ctx, keeper, logger)
	handler := httpapi.SetupRoutes(h, keeper, cfg.HandshakeTimeout, logger)

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		h.Inbox() <- hub.ShutdownHub{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
