package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/Friends_Manager/internal/config"
	"github.com/Dias221467/Friends_Manager/internal/database"
	"github.com/Dias221467/Friends_Manager/internal/handlers"
	"github.com/Dias221467/Friends_Manager/internal/ratelimit"
	"github.com/Dias221467/Friends_Manager/internal/repository"
	"github.com/Dias221467/Friends_Manager/internal/scheduler"
	"github.com/Dias221467/Friends_Manager/internal/seed"
	"github.com/Dias221467/Friends_Manager/internal/services"
	"github.com/Dias221467/Friends_Manager/pkg/logger"
	"github.com/rs/cors"
)

type userStore interface {
	services.UserDirectory
	services.UserSearcher
	seed.UserCreator
}

// backend is the set of stores selected by STORAGE_BACKEND.
type backend struct {
	friends       services.FriendStore
	users         userStore
	notifications services.NotificationStore
	counters      ratelimit.Store
	sweeper       scheduler.CounterSweeper
	ping          func(ctx context.Context) error
	close         func(ctx context.Context) error
}

func openBackend(cfg *config.Config) (*backend, error) {
	switch cfg.StorageBackend {
	case "memory":
		logger.Log.Warn("Using in-memory storage; data is lost on restart")
		counters := ratelimit.NewMemoryStore(time.Now)
		return &backend{
			friends:       repository.NewMemoryFriendRepository(),
			users:         repository.NewMemoryUserRepository(),
			notifications: repository.NewMemoryNotificationRepository(),
			counters:      counters,
			sweeper:       counters,
			close:         func(context.Context) error { return nil },
		}, nil

	case "mongo":
		db, err := database.ConnectDB(cfg)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DBTimeout)
		defer cancel()
		if err := database.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		return &backend{
			friends:       repository.NewFriendRepository(db),
			users:         repository.NewUserRepository(db),
			notifications: repository.NewNotificationRepository(db),
			counters:      repository.NewRateLimitRepository(db),
			ping:          func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
			close:         db.Client().Disconnect,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	rate, err := ratelimit.ParseRate(cfg.FriendRequestRate)
	if err != nil {
		logger.Log.Fatalf("Invalid FRIEND_REQUEST_RATE: %v", err)
	}

	store, err := openBackend(cfg)
	if err != nil {
		logger.Log.Fatalf("Storage initialization error: %v", err)
	}

	if cfg.SeedUsersFile != "" {
		if _, err := seed.Load(context.Background(), store.users, cfg.SeedUsersFile); err != nil {
			logger.Log.Fatalf("Seeding users failed: %v", err)
		}
	}

	// --- Services ---
	hub := handlers.NewNotificationHub(cfg.JWTSecret)
	notificationService := services.NewNotificationService(store.notifications, hub)
	friendService := services.NewFriendService(store.friends, store.users, notificationService)
	userService := services.NewUserService(store.users, cfg.SearchPageSize, cfg.SearchMaxPageSize)

	// --- Handlers ---
	router := handlers.NewRouter(handlers.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		Limiter:        ratelimit.NewLimiter(store.counters, rate),
		Friends:        handlers.NewFriendHandler(friendService),
		Users:          handlers.NewUserHandler(userService),
		Notifications:  handlers.NewNotificationHandler(notificationService),
		Hub:            hub,
		RequestTimeout: cfg.DBTimeout,
		Ping:           store.ping,
	})

	// --- Cron jobs ---
	jobs, err := scheduler.NewCleanupCron(notificationService, store.sweeper)
	if err != nil {
		logger.Log.Fatalf("Scheduler initialization error: %v", err)
	}
	jobs.Start()

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s (storage: %s, rate: %s)", cfg.Port, cfg.StorageBackend, cfg.FriendRequestRate)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	<-jobs.Stop().Done()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("HTTP server shutdown failed")
	}
	if err := store.close(ctx); err != nil {
		logger.Log.WithError(err).Error("Storage shutdown failed")
	}
}
