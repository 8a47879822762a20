package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/Friends_Manager/internal/apperrors"
	"github.com/Dias221467/Friends_Manager/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type edgeKey struct {
	requester primitive.ObjectID
	target    primitive.ObjectID
}

// MemoryFriendRepository is an in-process edge store used by the memory
// storage backend and by tests. Each method holds the lock for its whole
// check-then-write, matching the atomicity of the Mongo store.
type MemoryFriendRepository struct {
	mu    sync.RWMutex
	edges map[edgeKey]*models.FriendEdge
}

func NewMemoryFriendRepository() *MemoryFriendRepository {
	return &MemoryFriendRepository{edges: make(map[edgeKey]*models.FriendEdge)}
}

func (r *MemoryFriendRepository) FindEdge(ctx context.Context, requester, target primitive.ObjectID) (*models.FriendEdge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	edge, ok := r.edges[edgeKey{requester, target}]
	if !ok {
		return nil, nil
	}
	cp := *edge
	return &cp, nil
}

func (r *MemoryFriendRepository) InsertEdge(ctx context.Context, edge *models.FriendEdge) (*models.FriendEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := edgeKey{edge.RequesterID, edge.TargetID}
	if _, exists := r.edges[key]; exists {
		return nil, apperrors.ErrDuplicateRequest
	}
	if edge.ID.IsZero() {
		edge.ID = primitive.NewObjectID()
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now()
	}
	cp := *edge
	r.edges[key] = &cp
	return edge, nil
}

func (r *MemoryFriendRepository) AcceptEdge(ctx context.Context, requester, target primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	edge, ok := r.edges[edgeKey{requester, target}]
	if !ok || !edge.Pending {
		return false, nil
	}
	edge.Pending = false
	return true, nil
}

func (r *MemoryFriendRepository) DeletePendingEdge(ctx context.Context, requester, target primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := edgeKey{requester, target}
	edge, ok := r.edges[key]
	if !ok || !edge.Pending {
		return false, nil
	}
	delete(r.edges, key)
	return true, nil
}

func (r *MemoryFriendRepository) ListEdgesByRequester(ctx context.Context, requester primitive.ObjectID, pending bool) ([]models.FriendEdge, error) {
	return r.list(func(e *models.FriendEdge) bool {
		return e.RequesterID == requester && e.Pending == pending
	}), nil
}

func (r *MemoryFriendRepository) ListEdgesByTarget(ctx context.Context, target primitive.ObjectID, pending bool) ([]models.FriendEdge, error) {
	return r.list(func(e *models.FriendEdge) bool {
		return e.TargetID == target && e.Pending == pending
	}), nil
}

func (r *MemoryFriendRepository) list(match func(*models.FriendEdge) bool) []models.FriendEdge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	edges := []models.FriendEdge{}
	for _, edge := range r.edges {
		if match(edge) {
			edges = append(edges, *edge)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].CreatedAt.Equal(edges[j].CreatedAt) {
			return edges[i].ID.Hex() < edges[j].ID.Hex()
		}
		return edges[i].CreatedAt.Before(edges[j].CreatedAt)
	})
	return edges
}
