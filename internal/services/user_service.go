package services

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/Dias221467/Friends_Manager/internal/apperrors"
	"github.com/Dias221467/Friends_Manager/internal/models"
	"github.com/Dias221467/Friends_Manager/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 10000
)

// UserSearcher finds directory users one page at a time.
type UserSearcher interface {
	SearchUsers(ctx context.Context, q repository.UserQuery, offset, limit int64) ([]models.User, int64, error)
}

// SearchCriteria carries raw search input. A nil or blank Email or Name is
// treated as absent. Page and PageSize are the unparsed query values.
type SearchCriteria struct {
	Email    *string
	Name     *string
	Page     string
	PageSize string
}

// UserService serves user search.
type UserService struct {
	repo            UserSearcher
	defaultPageSize int
	maxPageSize     int
}

// NewUserService creates a new instance of UserService. Non-positive sizes fall back to the defaults.
func NewUserService(repo UserSearcher, defaultPageSize, maxPageSize int) *UserService {
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if defaultPageSize > maxPageSize {
		defaultPageSize = maxPageSize
	}
	return &UserService{
		repo:            repo,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// SearchUsers matches by exact email, or when no email is given by a
// case-insensitive substring of first or last name. base is the request URL
// used to build the next and previous links; it may be nil.
func (s *UserService) SearchUsers(ctx context.Context, c SearchCriteria, base *url.URL) (*models.UserPage, error) {
	q, err := buildQuery(c)
	if err != nil {
		return nil, err
	}

	page, err := parsePage(c.Page)
	if err != nil {
		return nil, err
	}
	size := s.pageSize(c.PageSize)

	// no page that far can exist, and the offset would overflow
	if int64(page-1) > math.MaxInt64/int64(size) {
		return nil, apperrors.ErrInvalidPage
	}
	offset := int64(page-1) * int64(size)
	users, total, err := s.repo.SearchUsers(ctx, q, offset, int64(size))
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	// page 1 of an empty result is still a valid page
	lastPage := (total + int64(size) - 1) / int64(size)
	if int64(page) > lastPage && page != 1 {
		logrus.WithFields(logrus.Fields{
			"page":  page,
			"total": total,
		}).Warn("Requested page out of range")
		return nil, apperrors.ErrInvalidPage
	}

	results := make([]models.PublicUser, 0, len(users))
	for i := range users {
		results = append(results, users[i].ToPublic())
	}

	result := &models.UserPage{Count: total, Results: results}
	if base != nil {
		if int64(page) < lastPage {
			result.Next = pageLink(base, page+1)
		}
		if page > 1 {
			result.Previous = pageLink(base, page-1)
		}
	}
	return result, nil
}

func buildQuery(c SearchCriteria) (repository.UserQuery, error) {
	if c.Email != nil && strings.TrimSpace(*c.Email) != "" {
		return repository.UserQuery{ByEmail: true, Email: strings.TrimSpace(*c.Email)}, nil
	}
	if c.Name != nil && strings.TrimSpace(*c.Name) != "" {
		return repository.UserQuery{Name: strings.TrimSpace(*c.Name)}, nil
	}
	return repository.UserQuery{}, apperrors.ErrMissingSearchCriteria
}

func parsePage(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, apperrors.ErrInvalidPage
	}
	return page, nil
}

func (s *UserService) pageSize(raw string) int {
	if raw == "" {
		return s.defaultPageSize
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 {
		return s.defaultPageSize
	}
	if size > s.maxPageSize {
		return s.maxPageSize
	}
	return size
}

// pageLink rewrites the page parameter of base. The first page drops it.
func pageLink(base *url.URL, page int) *string {
	u := *base
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}
