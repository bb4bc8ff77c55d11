package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"posfront/internal/backend"
	"posfront/internal/broadcast"
	"posfront/internal/cart"
	"posfront/internal/config"
	"posfront/internal/infra"
	"posfront/internal/masterdata"
	"posfront/internal/plans"
	"posfront/internal/router"
	"posfront/internal/simulator"
	"posfront/internal/state"
	"posfront/internal/syncer"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Composition root ─────────────────────────────────────────────────────
	breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	csrf := func() string { return cfg.CSRFToken }
	client := backend.New(cfg.BackendBaseURL, csrf, breaker)

	idx := masterdata.New(client)
	catalog := plans.NewCatalog(idx, client)
	pipeline := simulator.NewPipeline(idx, client, cfg.TerminalID)

	bus := broadcast.NewBus()
	broadcaster := broadcast.NewBroadcaster(
		broadcast.NewChannelSink(rdb),
		broadcast.NewStoredSink(rdb),
		broadcast.NewBusSink(bus),
	)

	cartStore := cart.NewStore()
	debounce := time.Duration(cfg.CartSyncDebounceMs) * time.Millisecond
	cartSyncer := syncer.New(cartStore, client, cfg.UserID, debounce)
	stateStore := state.NewStore(state.NewRedisKV(rdb), cfg.StateRootKey)

	// Master data loads in the background so a slow backend does not block
	// startup; /health exposes readiness.
	go func() {
		if err := idx.Load(ctx); err != nil {
			log.Error().Err(err).Msg("initial master data load failed")
		}
	}()

	go cartSyncer.Run(ctx)
	go broadcast.ListenCommands(ctx, rdb, pipeline)

	r := router.New(cfg, rdb, router.Deps{
		Client:      client,
		Breaker:     breaker,
		Index:       idx,
		Catalog:     catalog,
		Pipeline:    pipeline,
		Broadcaster: broadcaster,
		CartStore:   cartStore,
		Syncer:      cartSyncer,
		StateStore:  stateStore,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("posfront gateway listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
