package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sulbao/community/pkg/api"
	"github.com/sulbao/community/pkg/config"
)

func registerRoutes(r chi.Router, cfg *config.ServerConfig, services *config.Services, logger *slog.Logger) {
	r.Get("/healthz/services", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := services.Ready(ctx); err != nil {
			logger.WarnContext(ctx, "Readiness check failed", "err", err)
			render.Status(r, http.StatusServiceUnavailable)
			render.PlainText(w, r, http.StatusText(http.StatusServiceUnavailable))
			return
		}
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})

	api.Register(r, api.Config{
		Board:          services.Board,
		Members:        services.Members,
		Auth:           api.NewAuth(cfg.JWTSecret, cfg.TokenTTL),
		Metrics:        api.NewMetrics(),
		Logger:         logger,
		FeedCategoryID: cfg.FeedCategoryID,
	})
}
