// Package api exposes the board and member services over HTTP.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/sulbao/community/pkg/board"
	"github.com/sulbao/community/pkg/member"
)

// Config wires the services into the HTTP API
type Config struct {
	Board          board.Service
	Members        member.Service
	Auth           *Auth
	Metrics        *Metrics
	Logger         *slog.Logger
	FeedCategoryID int64
}

// Register adds every API route to r:
//
//	/metrics  Prometheus metrics
//	/files    stored uploads
//	/api/v1   posts, feeds, members and admin pages
func Register(r chi.Router, cfg Config) {
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}
	if cfg.FeedCategoryID == 0 {
		cfg.FeedCategoryID = board.DefaultFeedCategoryID
	}

	posts := NewPostHandler(cfg.Board, cfg.FeedCategoryID)
	members := NewMemberHandler(cfg.Members, cfg.Auth)
	admin := NewAdminHandler(cfg.Members)
	files := NewFilesHandler(cfg.Board)

	r.Handle("/metrics", cfg.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RequestLogger(cfg.Logger))
		r.Use(cfg.Metrics.Middleware)

		r.Mount("/files", files.Routes())

		r.Route("/api/v1", func(r chi.Router) {
			posts.PublicRoutes(r)
			members.PublicRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(cfg.Auth.Verifier())
				posts.AuthorRoutes(r)
				members.MemberRoutes(r)

				r.Route("/admin", func(r chi.Router) {
					r.Use(RequireAdmin)
					admin.Routes(r)
				})
			})
		})
	})
}
