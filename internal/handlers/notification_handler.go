package handlers

import (
	"net/http"

	"github.com/Dias221467/Friends_Manager/internal/services"
	"github.com/Dias221467/Friends_Manager/pkg/logger"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// GET /notifications
func (h *NotificationHandler) GetUserNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	notifications, err := h.Service.GetUserNotifications(r.Context(), userID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch notifications: %v", err)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// POST /notifications/{id}/read
func (h *NotificationHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	notifID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid notification ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.MarkNotificationAsRead(r.Context(), userID, notifID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Notification marked as read"})
}

// DELETE /notifications/{id}
func (h *NotificationHandler) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	notifID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid notification ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteNotification(r.Context(), userID, notifID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Notification deleted"})
}

// POST /admin/notifications/cleanup
func (h *NotificationHandler) CleanupExpiredHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteExpiredNotifications(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Expired notifications deleted"})
}
