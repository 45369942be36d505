package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"erc20/sender/internal/api"
	"erc20/sender/internal/app"
	"erc20/sender/internal/config"
	"erc20/sender/internal/constants"
	"erc20/sender/internal/services"
	"erc20/sender/internal/utils/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(constants.LogLevel)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel)

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("close failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := a.Form.Resume(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to resume pending transfers")
	} else if n > 0 {
		log.Info().Int("count", n).Msg("resumed pending transfers")
	}

	if err := services.VerifyTokenDecimals(ctx, a.Wallet, a.Form.Tokens()); err != nil {
		log.Warn().Err(err).Msg("token decimals check failed")
	}

	srv := api.NewApiService(cfg.APIAddr, a.Form, a.Store, a.Feed, log)
	log.Info().Str("sender", a.Wallet.Address().Hex()).Str("rpc", cfg.RPCURL).Msg("transfer service starting")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("signal received, shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}
