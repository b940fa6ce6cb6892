// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clipstream/clipstream/internal/admin"
	"github.com/clipstream/clipstream/internal/auth"
	"github.com/clipstream/clipstream/internal/middleware"
)

// Router assembles the full HTTP surface.
type Router struct {
	handlers *Handlers
	authMW   *auth.Middleware
	chiMW    *ChiMiddleware
	// admin is nil when no admin emails are configured.
	admin *admin.Handler
}

// NewRouter wires the route groups. adminHandler may be nil to disable the
// admin surface.
func NewRouter(handlers *Handlers, authMW *auth.Middleware, chiMW *ChiMiddleware, adminHandler *admin.Handler) *Router {
	return &Router{
		handlers: handlers,
		authMW:   authMW,
		chiMW:    chiMW,
		admin:    adminHandler,
	}
}

// Setup builds the chi router. Middleware order: request id and real-IP
// extraction first, panic recovery, then CORS globally so OPTIONS preflight
// never hits auth or throttling.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMW.CORS())
	r.Use(router.chiMW.GlobalLimit())

	h := router.handlers

	r.Route("/api/v1/healthcheck", func(r chi.Router) {
		r.Use(router.chiMW.Throttle(RateLimitHealth))
		r.Get("/", h.Healthcheck)
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		r.With(router.chiMW.Throttle(RateLimitAuth)).Post("/register", h.Register)
		r.With(router.chiMW.Throttle(RateLimitLogin)).Post("/login", h.Login)
		r.With(router.chiMW.Throttle(RateLimitAuth)).Post("/refresh-token", h.RefreshToken)

		// Channel pages are public; Optional auth personalizes isSubscribed.
		r.With(router.chiMW.Throttle(RateLimitRead), router.authMW.Optional).
			Get("/c/{username}", h.ChannelProfile)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMW.Throttle(RateLimitRead))
			r.Use(router.authMW.Authenticate)
			r.Post("/logout", h.Logout)
			r.Get("/current-user", h.CurrentUser)
			r.Get("/history", h.WatchHistory)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMW.Throttle(RateLimitWrite))
			r.Use(router.authMW.Authenticate)
			r.Patch("/update-account", h.UpdateAccount)
			r.Post("/change-password", h.ChangePassword)
			r.Patch("/avatar", h.UpdateAvatar)
			r.Patch("/cover-image", h.UpdateCoverImage)
		})
	})

	r.Route("/api/v1/videos", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		r.With(router.chiMW.Throttle(RateLimitRead), router.authMW.Optional).
			Get("/", h.ListVideos)

		r.Group(func(r chi.Router) {
			r.Use(router.authMW.Authenticate)
			r.With(router.chiMW.Throttle(RateLimitRead)).Get("/{videoId}", h.GetVideo)
			r.With(router.chiMW.Throttle(RateLimitWrite)).Post("/", h.PublishVideo)
			r.With(router.chiMW.Throttle(RateLimitWrite)).Patch("/{videoId}", h.UpdateVideo)
			r.With(router.chiMW.Throttle(RateLimitWrite)).Delete("/{videoId}", h.DeleteVideo)
			r.With(router.chiMW.Throttle(RateLimitWrite)).Patch("/toggle/publish/{videoId}", h.TogglePublish)
		})
	})

	r.Route("/api/v1/comments", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authMW.Authenticate)

		r.With(router.chiMW.Throttle(RateLimitRead)).Get("/{videoId}", h.ListComments)
		r.With(router.chiMW.Throttle(RateLimitWrite)).Post("/{videoId}", h.CreateComment)
		r.With(router.chiMW.Throttle(RateLimitWrite)).Patch("/c/{commentId}", h.UpdateComment)
		r.With(router.chiMW.Throttle(RateLimitWrite)).Delete("/c/{commentId}", h.DeleteComment)
	})

	r.Route("/api/v1/likes", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authMW.Authenticate)
		r.Use(router.chiMW.Throttle(RateLimitWrite))

		r.Post("/toggle/v/{videoId}", h.ToggleVideoLike)
		r.Post("/toggle/c/{commentId}", h.ToggleCommentLike)
		r.Post("/toggle/t/{tweetId}", h.ToggleTweetLike)
		r.Get("/videos", h.ListLikedVideos)
	})

	r.Route("/api/v1/subscriptions", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authMW.Authenticate)

		r.With(router.chiMW.Throttle(RateLimitWrite)).Post("/c/{channelId}", h.ToggleSubscription)
		r.With(router.chiMW.Throttle(RateLimitRead)).Get("/c/{channelId}", h.ListSubscribers)
		r.With(router.chiMW.Throttle(RateLimitRead)).Get("/u/{subscriberId}", h.ListSubscribedChannels)
	})

	r.Route("/api/v1/playlist", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authMW.Authenticate)

		r.With(router.chiMW.Throttle(RateLimitWrite)).Post("/", h.CreatePlaylist)
		r.With(router.chiMW.Throttle(RateLimitRead)).Get("/{playlistId}", h.GetPlaylist)
		r.With(router.chiMW.Throttle(RateLimitRead)).Get("/user/{userId}", h.ListUserPlaylists)
		r.With(router.chiMW.Throttle(RateLimitWrite)).Patch("/{playlistId}", h.UpdatePlaylist)
		r.With(router.chiMW.Throttle(RateLimitWrite)).Delete("/{playlistId}", h.DeletePlaylist)
		r.With(router.chiMW.Throttle(RateLimitWrite)).Patch("/add/{videoId}/{playlistId}", h.AddPlaylistVideo)
		r.With(router.chiMW.Throttle(RateLimitWrite)).Patch("/remove/{videoId}/{playlistId}", h.RemovePlaylistVideo)
	})

	r.Route("/api/v1/tweets", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authMW.Authenticate)

		r.With(router.chiMW.Throttle(RateLimitWrite)).Post("/", h.CreateTweet)
		r.With(router.chiMW.Throttle(RateLimitRead)).Get("/user/{userId}", h.ListUserTweets)
		r.With(router.chiMW.Throttle(RateLimitWrite)).Patch("/{tweetId}", h.UpdateTweet)
		r.With(router.chiMW.Throttle(RateLimitWrite)).Delete("/{tweetId}", h.DeleteTweet)
	})

	r.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authMW.Authenticate)
		r.Use(router.chiMW.Throttle(RateLimitRead))

		r.Get("/stats", h.ChannelStats)
		r.Get("/videos", h.ChannelVideos)
	})

	if router.admin != nil {
		// Operator upload pass-through rides the admin session, not JWT.
		r.Route("/api/v1/admin", func(r chi.Router) {
			r.Use(middleware.PrometheusMetrics)
			r.Use(router.chiMW.Throttle(RateLimitWrite))
			r.Use(router.admin.RequireSession)
			r.Post("/upload", h.AdminUpload)
		})

		r.Mount("/admin", router.admin.Routes())
	}

	r.Handle("/metrics", promhttp.Handler())

	return r
}
