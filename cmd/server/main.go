package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/christianmesinas/famplan/internal/config"
	"github.com/christianmesinas/famplan/internal/cron"
	"github.com/christianmesinas/famplan/internal/database"
	"github.com/christianmesinas/famplan/internal/handlers"
	"github.com/christianmesinas/famplan/internal/repository"
	"github.com/christianmesinas/famplan/internal/security"
	"github.com/christianmesinas/famplan/internal/service"
	"github.com/christianmesinas/famplan/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	logger.Info().Str("type", cfg.DatabaseType).Msg("Database connection established")

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	postRepo := repository.NewPostRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)

	// Services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.BaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize email service")
	}
	authService := service.NewAuthService(userRepo, cfg.SessionDuration)
	familyService := service.NewFamilyService(familyRepo)
	inviteService := service.NewInviteService(inviteRepo, familyRepo, familyService, emailService, cfg.InviteTTL)
	feedService := service.NewFeedService(postRepo, userRepo, familyRepo, familyService, cfg.PostsPerPage)
	messageService := service.NewMessageService(messageRepo, notificationRepo, userRepo, cfg.PostsPerPage)
	calendarService := service.NewCalendarService(calendarRepo,
		cfg.GoogleClientID, cfg.GoogleClientSecret,
		strings.TrimRight(cfg.BaseURL, "/")+"/auth/calendar/callback")

	// Handlers
	middleware := handlers.NewMiddleware(authService, calendarService)
	authHandler := handlers.NewAuthHandler(authService, cfg.AuthDomain, cfg.AuthClientID, cfg.AuthClientSecret, cfg.BaseURL)
	familyHandler := handlers.NewFamilyHandler(familyService)
	inviteHandler := handlers.NewInviteHandler(inviteService)
	feedHandler := handlers.NewFeedHandler(feedService)
	messageHandler := handlers.NewMessageHandler(messageService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)

	loginLimiter := security.NewRateLimiter(10, time.Minute)

	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("GET /login", handlers.RateLimit(loginLimiter, authHandler.Login))
	mux.HandleFunc("GET /auth/callback", handlers.RateLimit(loginLimiter, authHandler.Callback))
	mux.HandleFunc("POST /logout", middleware.RequireAuth(authHandler.Logout))
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("PUT /api/me", middleware.RequireAuth(authHandler.UpdateMe))

	// Families
	mux.HandleFunc("POST /api/families", middleware.RequireAuth(familyHandler.Create))
	mux.HandleFunc("GET /api/families", middleware.RequireAuth(familyHandler.List))
	mux.HandleFunc("GET /api/families/{id}", middleware.RequireAuth(familyHandler.Get))
	mux.HandleFunc("PUT /api/families/{id}", middleware.RequireAuth(familyHandler.Rename))
	mux.HandleFunc("DELETE /api/families/{id}", middleware.RequireAuth(familyHandler.Delete))
	mux.HandleFunc("GET /api/families/{id}/members", middleware.RequireAuth(familyHandler.Members))
	mux.HandleFunc("POST /api/families/{id}/leave", middleware.RequireAuth(familyHandler.Leave))

	// Invites
	mux.HandleFunc("POST /api/families/{id}/invites", middleware.RequireAuth(inviteHandler.Issue))
	mux.HandleFunc("GET /api/families/{id}/invites", middleware.RequireAuth(inviteHandler.List))
	mux.HandleFunc("POST /api/invites/{token}/redeem", middleware.RequireAuth(inviteHandler.Redeem))
	mux.HandleFunc("DELETE /api/invites/{id}", middleware.RequireAuth(inviteHandler.Revoke))

	// Posts and feeds
	mux.HandleFunc("POST /api/posts", middleware.RequireAuth(feedHandler.CreatePost))
	mux.HandleFunc("PUT /api/posts/{id}", middleware.RequireAuth(feedHandler.EditPost))
	mux.HandleFunc("DELETE /api/posts/{id}", middleware.RequireAuth(feedHandler.DeletePost))
	mux.HandleFunc("GET /api/families/{id}/feed", middleware.RequireAuth(feedHandler.FamilyFeed))
	mux.HandleFunc("GET /api/feed", middleware.RequireAuth(feedHandler.FollowingFeed))
	mux.HandleFunc("GET /api/explore", middleware.RequireAuth(feedHandler.Explore))
	mux.HandleFunc("GET /api/home", middleware.RequireAuth(feedHandler.Home))

	// Users and follows
	mux.HandleFunc("GET /api/users/{username}", middleware.RequireAuth(feedHandler.Profile))
	mux.HandleFunc("GET /api/users/{username}/posts", middleware.RequireAuth(feedHandler.UserPosts))
	mux.HandleFunc("POST /api/users/{username}/follow", middleware.RequireAuth(feedHandler.Follow))
	mux.HandleFunc("DELETE /api/users/{username}/follow", middleware.RequireAuth(feedHandler.Unfollow))

	// Messages and notifications
	mux.HandleFunc("POST /api/messages", middleware.RequireAuth(messageHandler.Send))
	mux.HandleFunc("GET /api/messages", middleware.RequireAuth(messageHandler.Inbox))
	mux.HandleFunc("GET /api/messages/unread", middleware.RequireAuth(messageHandler.UnreadCount))
	mux.HandleFunc("GET /api/notifications", middleware.RequireAuth(messageHandler.Notifications))

	// Calendar bridge
	mux.HandleFunc("GET /api/calendar/connect", middleware.RequireAuth(calendarHandler.Connect))
	mux.HandleFunc("GET /auth/calendar/callback", middleware.RequireAuth(calendarHandler.ConnectCallback))
	mux.HandleFunc("GET /api/calendar/status", middleware.RequireAuth(calendarHandler.Status))
	mux.HandleFunc("DELETE /api/calendar", middleware.RequireAuth(calendarHandler.Disconnect))
	mux.HandleFunc("GET /api/calendar/events", middleware.RequireAuth(middleware.RequireCalendarAuth(calendarHandler.ListEvents)))
	mux.HandleFunc("POST /api/calendar/events", middleware.RequireAuth(middleware.RequireCalendarAuth(calendarHandler.CreateEvent)))
	mux.HandleFunc("PUT /api/calendar/events/{id}", middleware.RequireAuth(middleware.RequireCalendarAuth(calendarHandler.UpdateEvent)))
	mux.HandleFunc("DELETE /api/calendar/events/{id}", middleware.RequireAuth(middleware.RequireCalendarAuth(calendarHandler.DeleteEvent)))

	handler := handlers.Logging(mux)

	scheduler := cron.NewScheduler(authService, inviteService, messageService)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	scheduler.Stop()
}
