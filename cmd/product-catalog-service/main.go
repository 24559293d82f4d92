// Package main boots the Product Catalog Service HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fairyhunter13/product-catalog-service/internal/auth"
	"github.com/fairyhunter13/product-catalog-service/internal/config"
	httpapi "github.com/fairyhunter13/product-catalog-service/internal/http"
	"github.com/fairyhunter13/product-catalog-service/internal/hub"
	"github.com/fairyhunter13/product-catalog-service/internal/obs"
	"github.com/fairyhunter13/product-catalog-service/internal/store"
	"github.com/fairyhunter13/product-catalog-service/internal/vault"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		obs.InitLogger("info")
		obs.Logger.Fatal().Err(err).Msg("config_error")
	}
	obs.InitLogger(cfg.LogLevel)
	obs.Logger.Info().Msg("service_starting")

	au, err := auth.New(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenLifetime())
	if err != nil {
		obs.Logger.Fatal().Err(err).Msg("auth_config_error")
	}
	v := vault.New(cfg.ImageDir)
	h := hub.New(cfg.SubscriberBuffer)
	st := store.New(cfg.ProductsFile, v, h, cfg.ImageURLPrefix)

	app := httpapi.NewApp(cfg, st, v, h, au)
	mux := httpapi.NewRouter(app)

	// No WriteTimeout: /products/updates holds its response open indefinitely.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info().Str("addr", cfg.HTTPAddr).Msg("http_listen")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Fatal().Err(err).Msg("http_server_error")
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info().Str("signal", s.String()).Msg("shutdown_signal")

	// Closing the hub ends every update stream so Shutdown is not held up
	// by long-lived SSE connections.
	h.Close()

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error().Err(err).Msg("http_shutdown_error")
	}
	obs.Logger.Info().Msg("service_stopped")
}
