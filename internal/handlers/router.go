package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dias221467/Friends_Manager/internal/ratelimit"
	"github.com/Dias221467/Friends_Manager/pkg/metrics"
	"github.com/Dias221467/Friends_Manager/pkg/middleware"
	"github.com/gorilla/mux"
)

// RouterConfig carries what NewRouter wires together.
type RouterConfig struct {
	JWTSecret     string
	Limiter       *ratelimit.Limiter
	Friends       *FriendHandler
	Users         *UserHandler
	Notifications *NotificationHandler
	Hub           *NotificationHub
	// RequestTimeout bounds API requests. Zero disables it.
	RequestTimeout time.Duration
	// Ping checks the storage backend for /health. Optional.
	Ping func(ctx context.Context) error
}

// NewRouter registers every route of the service.
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	auth := middleware.AuthMiddleware(cfg.JWTSecret)
	timeout := middleware.TimeoutMiddleware(cfg.RequestTimeout)

	// Friend routes
	friendRoutes := router.PathPrefix("/friends").Subrouter()
	friendRoutes.Use(timeout, auth)
	friendRoutes.HandleFunc("/list", cfg.Friends.ListFriendsHandler).Methods("GET")
	friendRoutes.HandleFunc("/list/{status}", cfg.Friends.ListFriendsHandler).Methods("GET")
	friendRoutes.Handle("/requests",
		middleware.RateLimit(cfg.Limiter, ratelimit.ScopeFriendRequest)(http.HandlerFunc(cfg.Friends.CreateFriendRequestHandler)),
	).Methods("POST")
	friendRoutes.HandleFunc("/requests", cfg.Friends.AcceptFriendRequestHandler).Methods("PUT")
	friendRoutes.HandleFunc("/requests", cfg.Friends.RejectFriendRequestHandler).Methods("DELETE")
	friendRoutes.HandleFunc("/requests/outgoing/{id}", cfg.Friends.CancelFriendRequestHandler).Methods("DELETE")

	// User routes
	userRoutes := router.PathPrefix("/users").Subrouter()
	userRoutes.Use(timeout, auth)
	userRoutes.HandleFunc("/search", cfg.Users.SearchUsersHandler).Methods("GET")

	// Notification routes
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(timeout, auth)
	notificationRoutes.HandleFunc("", cfg.Notifications.GetUserNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/{id}/read", cfg.Notifications.MarkAsReadHandler).Methods("POST")
	notificationRoutes.HandleFunc("/{id}", cfg.Notifications.DeleteNotificationHandler).Methods("DELETE")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(timeout, auth)
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/notifications/cleanup", cfg.Notifications.CleanupExpiredHandler).Methods("POST")

	router.HandleFunc("/ws/notifications", cfg.Hub.ServeWS).Methods("GET")
	router.HandleFunc("/health", healthHandler(cfg.Ping)).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	router.Use(middleware.LoggingMiddleware)
	return router
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
