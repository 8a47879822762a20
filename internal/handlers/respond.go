package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/Friends_Manager/internal/apperrors"
	"github.com/Dias221467/Friends_Manager/pkg/logger"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindPolicy:
		return http.StatusBadRequest
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

// writeError renders domain errors with their message and kind. Anything
// else is logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		logger.Log.WithFields(logrus.Fields{
			"path": r.URL.Path,
			"code": appErr.Code,
		}).Info("Request rejected")
		writeJSON(w, statusFor(appErr.Kind), errorResponse{Error: appErr.Message, Code: string(appErr.Kind)})
		return
	}

	logger.Log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error", Code: "internal"})
}
