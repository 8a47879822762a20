package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Dias221467/Friends_Manager/internal/apperrors"
	"github.com/Dias221467/Friends_Manager/internal/services"
	"github.com/Dias221467/Friends_Manager/pkg/logger"
	"github.com/Dias221467/Friends_Manager/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendHandler manages HTTP endpoints related to friend requests.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// friendRequestBody names the other user of a request.
type friendRequestBody struct {
	Friend string `json:"friend"`
}

// callerID returns the authenticated user's id, writing 401 when there is none.
func callerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.WithField("path", r.URL.Path).Warn("Unauthorized request")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warnf("Token carries a malformed user id: %s", claims.UserID)
		return primitive.NilObjectID, false
	}
	return id, true
}

func decodeFriendID(r *http.Request) (primitive.ObjectID, error) {
	var body friendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return primitive.NilObjectID, apperrors.ErrInvalidFriendID
	}
	return parseFriendID(body.Friend)
}

func parseFriendID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrInvalidFriendID
	}
	return id, nil
}

// ListFriendsHandler handles GET /friends/list/{status}.
func (h *FriendHandler) ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	status := mux.Vars(r)["status"]
	friends, err := h.Service.ListFriends(r.Context(), userID, status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if len(friends) == 0 {
		writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("You have no %s friend requests", status)})
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// CreateFriendRequestHandler handles POST /friends/requests.
func (h *FriendHandler) CreateFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	friendID, err := decodeFriendID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	edge, err := h.Service.CreateRequest(r.Context(), userID, friendID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Log.Infof("User %s sent a friend request to %s", userID.Hex(), friendID.Hex())
	writeJSON(w, http.StatusCreated, edge)
}

// AcceptFriendRequestHandler handles PUT /friends/requests.
func (h *FriendHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	friendID, err := decodeFriendID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg, err := h.Service.AcceptRequest(r.Context(), userID, friendID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// RejectFriendRequestHandler handles DELETE /friends/requests.
func (h *FriendHandler) RejectFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	friendID, err := decodeFriendID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Service.RejectRequest(r.Context(), userID, friendID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CancelFriendRequestHandler handles DELETE /friends/requests/outgoing/{id}.
func (h *FriendHandler) CancelFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	targetID, err := parseFriendID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Service.CancelRequest(r.Context(), userID, targetID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
