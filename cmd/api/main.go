package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/carfix/carfix-api/internal/config"
	"github.com/carfix/carfix-api/internal/domain/auth"
	"github.com/carfix/carfix-api/internal/domain/booking"
	"github.com/carfix/carfix-api/internal/domain/message"
	"github.com/carfix/carfix-api/internal/domain/notification"
	"github.com/carfix/carfix-api/internal/domain/profile"
	"github.com/carfix/carfix-api/internal/domain/review"
	"github.com/carfix/carfix-api/internal/domain/user"
	"github.com/carfix/carfix-api/internal/domain/vehicle"
	"github.com/carfix/carfix-api/internal/domain/wallet"
	"github.com/carfix/carfix-api/internal/middleware"
	"github.com/carfix/carfix-api/internal/pkg/cache"
	"github.com/carfix/carfix-api/internal/pkg/database"
	"github.com/carfix/carfix-api/internal/pkg/jwt"
	"github.com/carfix/carfix-api/internal/pkg/logger"
	"github.com/carfix/carfix-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	// money amounts serialize as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting CarFix API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	walletCache := cache.New(redisClient)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	profileRepo := profile.NewRepository(db)
	vehicleRepo := vehicle.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	messageRepo := message.NewRepository(db)
	reviewRepo := review.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	walletRepo := wallet.NewRepository(db)

	// ---------- WebSocket hub ----------
	hub := message.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Services ----------
	notificationService := notification.NewService(notificationRepo)
	authService := auth.NewService(userRepo, jwtService)
	walletService := wallet.NewService(walletRepo, walletCache, cfg.WalletCacheTTL, notificationService)
	bookingService := booking.NewService(bookingRepo, userRepo, vehicleRepo, walletService, notificationService)
	messageService := message.NewService(messageRepo, bookingRepo, hub, notificationService)
	reviewService := review.NewService(reviewRepo, bookingRepo)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	profileHandler := profile.NewHandler(profileRepo)
	vehicleHandler := vehicle.NewHandler(vehicleRepo)
	bookingHandler := booking.NewHandler(bookingService)
	messageHandler := message.NewHandler(messageService, hub)
	reviewHandler := review.NewHandler(reviewService)
	notificationHandler := notification.NewHandler(notificationService)
	walletHandler := wallet.NewHandler(walletService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (before Compress)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(messageHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/profiles", profileHandler.Routes(authMiddleware))
		r.Mount("/mechanics", profileHandler.MechanicRoutes(reviewHandler.MechanicRoutes()))
		r.Mount("/vehicles", vehicleHandler.Routes(authMiddleware))
		r.Mount("/bookings", bookingHandler.Routes(authMiddleware,
			messageHandler.BookingRoutes(),
			reviewHandler.BookingRoutes(),
		))
		r.Mount("/messages", messageHandler.Routes(authMiddleware))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
