package handlers

import (
	"net/http"
	"net/url"

	"github.com/Dias221467/Friends_Manager/internal/services"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user search.
type UserHandler struct {
	Service *services.UserService
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

// SearchUsersHandler handles GET /users/search?email=&name=&page=&page_size=.
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}

	q := r.URL.Query()
	criteria := services.SearchCriteria{
		Page:     q.Get("page"),
		PageSize: q.Get("page_size"),
	}
	if q.Has("email") {
		email := q.Get("email")
		criteria.Email = &email
	}
	if q.Has("name") {
		name := q.Get("name")
		criteria.Name = &name
	}

	page, err := h.Service.SearchUsers(r.Context(), criteria, requestURL(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.WithField("count", page.Count).Debug("User search served")
	writeJSON(w, http.StatusOK, page)
}

// requestURL rebuilds the absolute URL the client used.
func requestURL(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}
}
