package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Dias221467/Friends_Manager/internal/apperrors"
	"github.com/Dias221467/Friends_Manager/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository is an in-process user directory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *MemoryUserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, fmt.Errorf("failed to insert user: email %s already exists", user.Email)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = *user
	return user, nil
}

func (r *MemoryUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []models.User{}
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *MemoryUserRepository) SearchUsers(ctx context.Context, q UserQuery, offset, limit int64) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(q.Name)
	matched := []models.User{}
	for _, user := range r.users {
		if q.ByEmail {
			if user.Email == q.Email {
				matched = append(matched, user)
			}
			continue
		}
		if strings.Contains(strings.ToLower(user.FirstName), needle) ||
			strings.Contains(strings.ToLower(user.LastName), needle) {
			matched = append(matched, user)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID.Hex() < matched[j].ID.Hex()
	})

	total := int64(len(matched))
	if offset < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("invalid search window: offset %d, limit %d", offset, limit)
	}
	if offset >= total {
		return []models.User{}, total, nil
	}
	end := offset + limit
	if end > total || end < offset {
		end = total
	}
	return matched[offset:end], total, nil
}
