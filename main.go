package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/escaperoom/internal/config"
	"github.com/robalobadob/escaperoom/internal/httpserver"
	"github.com/robalobadob/escaperoom/internal/ledger"
	"github.com/robalobadob/escaperoom/internal/manor"
	"github.com/robalobadob/escaperoom/internal/metrics"
	"github.com/robalobadob/escaperoom/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	m := metrics.New(mem.Len)

	var (
		engineOpts []manor.Option
		serverOpts = []httpserver.Option{
			httpserver.WithDefaultPlayer(cfg.DefaultPlayerID),
			httpserver.WithClientOrigin(cfg.ClientOrigin),
			httpserver.WithRequestTimeout(cfg.RequestTimeout),
		}
	)
	if cfg.LedgerPath != "" {
		l, err := ledger.Open(ctx, cfg.LedgerPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.LedgerPath).Msg("failed to open escape ledger")
		}
		defer l.Close()
		engineOpts = append(engineOpts, manor.WithRecorder(l))
		serverOpts = append(serverOpts, httpserver.WithLedger(l))
		log.Info().Str("path", cfg.LedgerPath).Msg("escape ledger enabled")
	}

	srv := httpserver.New(manor.New(mem, engineOpts...), m, serverOpts...)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting manor server")
		errc <- srv.Start(cfg.Addr())
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}
