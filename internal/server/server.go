// Package server wires the router, middleware, and all route definitions.
// It is the composition root: handlers, services, and the storage backend
// are assembled here and nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/haidang/referral-hub/internal/auth"
	"github.com/haidang/referral-hub/internal/config"
	"github.com/haidang/referral-hub/internal/handler"
	"github.com/haidang/referral-hub/internal/middleware"
	"github.com/haidang/referral-hub/internal/repository"
	"github.com/haidang/referral-hub/internal/service"
)

// rateLimitWindow matches the window the dashboard's retry logic assumes.
const rateLimitWindow = 15 * time.Minute

// Server owns the router and the storage backend. The store is closed
// during graceful shutdown so pending writes are flushed.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	store  repository.Store
	logger *slog.Logger
}

// New assembles the full dependency chain: store → services → handlers →
// routes. The store is injected so main can pick the backend (sqlite or
// flatfile) and tests can pass a fake.
func New(cfg *config.Config, store repository.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Router exposes the configured router for httptest-based tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()

	var google *auth.GoogleProvider
	if s.cfg.GoogleClientID != "" && s.cfg.GoogleClientSecret != "" {
		google = auth.NewGoogleProvider(s.cfg.GoogleClientID, s.cfg.GoogleClientSecret, s.cfg.GoogleCallbackURL)
	}

	// Global middleware, in execution order: request id, real client IP,
	// panic recovery, request logging, CORS, then (production only) the
	// per-IP rate limit.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.cfg.Env == "production" && s.cfg.RateLimit > 0 {
		s.router.Use(httprate.LimitByIP(s.cfg.RateLimit, rateLimitWindow))
	}

	// Services.
	activities := service.NewActivityService(s.store, s.logger)
	auths := service.NewAuthService(s.store, passwords, tokens, s.logger)
	users := service.NewUserService(s.store, passwords, s.logger)
	jobs := service.NewJobService(s.store, activities, s.logger)
	referrals := service.NewReferralService(s.store, s.store, s.store, activities, s.logger)
	comments := service.NewCommentService(s.store, activities, s.logger)
	messaging := service.NewMessagingService(s.store, s.store, activities, s.logger)

	// Handlers.
	authHandler := handler.NewAuthHandler(auths, google, s.logger)
	userHandler := handler.NewUserHandler(users, s.logger)
	jobHandler := handler.NewJobHandler(jobs, s.logger)
	referralHandler := handler.NewReferralHandler(referrals, s.logger)
	commentHandler := handler.NewCommentHandler(comments, s.logger)
	activityHandler := handler.NewActivityHandler(activities, s.logger)
	messagingHandler := handler.NewMessagingHandler(messaging, s.logger)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The /local group is the dashboard's original wire surface: accounts,
	// jobs, and referrals.
	s.router.Route("/local", func(r chi.Router) {
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/users/reset", authHandler.HandleResetPassword)
		r.Get("/user-status", authHandler.HandleUserStatus)

		r.Get("/users", userHandler.HandleList)
		r.Post("/users", userHandler.HandleCreate)
		r.Get("/users/{userId}", userHandler.HandleGet)
		r.Get("/users/profile/{userId}", userHandler.HandleGet)
		r.Put("/users/updateBasicInfo/{userId}", userHandler.HandleUpdateBasicInfo)
		r.Post("/users/update-status", userHandler.HandleUpdateStatus)
		r.Delete("/users/{userId}/remove", userHandler.HandleRemove)

		r.Get("/jobs", jobHandler.HandleList)
		r.Get("/job/{jobId}", jobHandler.HandleGet)
		r.Get("/jobs/status/{status}", jobHandler.HandleListByStatus)
		r.Get("/jobs/reset", jobHandler.HandleReset)
		r.Post("/jobs", jobHandler.HandleCreate)
		r.Put("/jobs/update/{jobId}", jobHandler.HandleUpdate)
		r.Put("/jobs/{jobId}/save", jobHandler.HandleSave)
		r.Put("/jobs/{jobId}/unsave", jobHandler.HandleUnsave)
		r.Delete("/jobs/{jobId}/remove", jobHandler.HandleDelete)

		r.Get("/referrals", referralHandler.HandleList)
		r.Get("/referrals/reset", referralHandler.HandleReset)
		r.Post("/referrals", referralHandler.HandleCreate)
		r.Put("/referrals/update/{referralId}", referralHandler.HandleUpdate)
		r.Delete("/referrals/{referralId}/remove", referralHandler.HandleDelete)
	})

	// Comments and the activity feed keep the pre-auth trust model: actor
	// identity travels in the request body and is checked server-side. The
	// doubled /comments segment is the wire surface the dashboard already
	// calls (a sub-router mounted under its own prefix).
	s.router.Route("/api/comments", func(r chi.Router) {
		r.Get("/comments/{jobId}", commentHandler.HandleList)
		r.Post("/comments/{jobId}", commentHandler.HandleAdd)
		r.Put("/comments/{jobId}/{commentId}", commentHandler.HandleEdit)
		r.Delete("/comments/{jobId}/{commentId}", commentHandler.HandleDelete)
		r.Post("/comments/{jobId}/{commentId}/replies", commentHandler.HandleAddReply)
		r.Delete("/comments/{jobId}/{commentId}/replies/{replyId}", commentHandler.HandleDeleteReply)

		r.Get("/activities", activityHandler.HandleList)
		r.Post("/activities", activityHandler.HandleRecord)
	})

	// Messaging requires a bearer token; the acting user comes from the JWT.
	s.router.Route("/api/messaging", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/conversations", messagingHandler.HandleConversations)
		r.Get("/conversations/{conversationId}", messagingHandler.HandleMessages)
		r.Delete("/conversations/{conversationId}", messagingHandler.HandleDeleteConversation)
		r.Post("/send-message", messagingHandler.HandleSend)
		r.Put("/messages/read/{messageId}", messagingHandler.HandleMarkRead)
		r.Get("/unread-count", messagingHandler.HandleUnreadCount)
		r.Get("/notifications", messagingHandler.HandleNotifications)
		r.Put("/notifications/{notificationId}/read", messagingHandler.HandleNotificationRead)
	})

	// Google OAuth routes are registered only when credentials are
	// configured; without them the dashboard falls back to password login.
	if google != nil {
		s.router.Get("/auth/google/login", authHandler.HandleGoogleLogin)
		s.router.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s
// budget), close the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("store", s.cfg.Store),
			slog.String("env", s.cfg.Env),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
