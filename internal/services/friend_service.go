package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dias221467/Friends_Manager/internal/apperrors"
	"github.com/Dias221467/Friends_Manager/internal/models"
	"github.com/Dias221467/Friends_Manager/pkg/metrics"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AcceptedMessage is returned to the acceptor after a successful accept.
const AcceptedMessage = "Friend request is accepted."

// FriendStore persists directed friend edges. Accept and delete only match
// edges that are still pending.
type FriendStore interface {
	FindEdge(ctx context.Context, requester, target primitive.ObjectID) (*models.FriendEdge, error)
	InsertEdge(ctx context.Context, edge *models.FriendEdge) (*models.FriendEdge, error)
	AcceptEdge(ctx context.Context, requester, target primitive.ObjectID) (bool, error)
	DeletePendingEdge(ctx context.Context, requester, target primitive.ObjectID) (bool, error)
	ListEdgesByRequester(ctx context.Context, requester primitive.ObjectID, pending bool) ([]models.FriendEdge, error)
	ListEdgesByTarget(ctx context.Context, target primitive.ObjectID, pending bool) ([]models.FriendEdge, error)
}

// UserDirectory looks up users owned by the identity system.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// Notifier delivers friend request events to a user.
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error
}

// FriendService handles the friend request lifecycle.
type FriendService struct {
	friends  FriendStore
	users    UserDirectory
	notifier Notifier
}

// NewFriendService creates a new FriendService. notifier may be nil.
func NewFriendService(friends FriendStore, users UserDirectory, notifier Notifier) *FriendService {
	return &FriendService{
		friends:  friends,
		users:    users,
		notifier: notifier,
	}
}

// CreateRequest sends a friend request from requester to target.
func (s *FriendService) CreateRequest(ctx context.Context, requester, target primitive.ObjectID) (*models.FriendEdge, error) {
	log := logrus.WithFields(logrus.Fields{
		"requester": requester.Hex(),
		"target":    target.Hex(),
	})

	if requester == target {
		s.observe("create", apperrors.ErrInvalidTarget)
		return nil, apperrors.ErrInvalidTarget
	}

	targetUser, err := s.users.GetUserByID(ctx, target)
	if err != nil {
		s.observe("create", err)
		return nil, err
	}

	existing, err := s.friends.FindEdge(ctx, requester, target)
	if err != nil {
		s.observe("create", err)
		return nil, fmt.Errorf("failed to look up friend request: %w", err)
	}
	if existing != nil {
		log.Warn("Duplicate friend request")
		s.observe("create", apperrors.ErrDuplicateRequest)
		return nil, apperrors.ErrDuplicateRequest
	}

	// a concurrent insert still loses on the unique index
	edge, err := s.friends.InsertEdge(ctx, &models.FriendEdge{
		RequesterID: requester,
		TargetID:    target,
		Pending:     true,
	})
	if err != nil {
		s.observe("create", err)
		if errors.Is(err, apperrors.ErrDuplicateRequest) {
			log.Warn("Duplicate friend request lost the insert race")
			return nil, err
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	log.Info("Friend request created")
	s.observe("create", nil)

	s.notify(ctx, targetUser.ID, models.NotificationFriendRequestReceived,
		"New friend request",
		"Someone wants to be your friend.",
		requester)

	return edge, nil
}

// AcceptRequest lets acceptor approve the pending request originator sent them.
func (s *FriendService) AcceptRequest(ctx context.Context, acceptor, originator primitive.ObjectID) (string, error) {
	log := logrus.WithFields(logrus.Fields{
		"acceptor":   acceptor.Hex(),
		"originator": originator.Hex(),
	})

	// checked first: the acceptor's own outgoing request must not be accepted by swapping roles
	own, err := s.friends.FindEdge(ctx, acceptor, originator)
	if err != nil {
		s.observe("accept", err)
		return "", fmt.Errorf("failed to look up friend request: %w", err)
	}
	if own != nil {
		log.Warn("Attempt to accept own friend request")
		s.observe("accept", apperrors.ErrSelfAcceptNotAllowed)
		return "", apperrors.ErrSelfAcceptNotAllowed
	}

	accepted, err := s.friends.AcceptEdge(ctx, originator, acceptor)
	if err != nil {
		s.observe("accept", err)
		return "", fmt.Errorf("failed to accept friend request: %w", err)
	}
	if !accepted {
		s.observe("accept", apperrors.ErrRequestNotFound)
		return "", apperrors.ErrRequestNotFound
	}

	log.Info("Friend request accepted")
	s.observe("accept", nil)

	s.notify(ctx, originator, models.NotificationFriendRequestAccepted,
		"Friend request accepted",
		"Your friend request was accepted.",
		acceptor)

	return AcceptedMessage, nil
}

// RejectRequest lets rejector decline the pending request originator sent them.
func (s *FriendService) RejectRequest(ctx context.Context, rejector, originator primitive.ObjectID) error {
	err := s.deletePending(ctx, originator, rejector)
	s.observe("reject", err)
	if err == nil {
		logrus.WithFields(logrus.Fields{
			"rejector":   rejector.Hex(),
			"originator": originator.Hex(),
		}).Info("Friend request rejected")
	}
	return err
}

// CancelRequest withdraws requester's own pending request to target.
func (s *FriendService) CancelRequest(ctx context.Context, requester, target primitive.ObjectID) error {
	err := s.deletePending(ctx, requester, target)
	s.observe("cancel", err)
	if err == nil {
		logrus.WithFields(logrus.Fields{
			"requester": requester.Hex(),
			"target":    target.Hex(),
		}).Info("Friend request cancelled")
	}
	return err
}

// deletePending removes the pending edge requester -> target. Accepted edges are never removed.
func (s *FriendService) deletePending(ctx context.Context, requester, target primitive.ObjectID) error {
	if requester == target {
		return apperrors.ErrInvalidTarget
	}

	edge, err := s.friends.FindEdge(ctx, requester, target)
	if err != nil {
		return fmt.Errorf("failed to look up friend request: %w", err)
	}
	if edge == nil {
		return apperrors.ErrRequestNotFound
	}
	if !edge.Pending {
		return apperrors.ErrAlreadyAccepted
	}

	deleted, err := s.friends.DeletePendingEdge(ctx, requester, target)
	if err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	if deleted {
		return nil
	}

	// lost a race with an accept or another delete
	edge, err = s.friends.FindEdge(ctx, requester, target)
	if err != nil {
		return fmt.Errorf("failed to look up friend request: %w", err)
	}
	if edge != nil && !edge.Pending {
		return apperrors.ErrAlreadyAccepted
	}
	return apperrors.ErrRequestNotFound
}

// ListAccepted returns accepted edges in either direction, one per counterpart.
func (s *FriendService) ListAccepted(ctx context.Context, userID primitive.ObjectID) ([]models.FriendEdge, error) {
	sent, err := s.friends.ListEdgesByRequester(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	received, err := s.friends.ListEdgesByTarget(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}

	seen := make(map[primitive.ObjectID]struct{}, len(sent)+len(received))
	edges := make([]models.FriendEdge, 0, len(sent)+len(received))
	for _, e := range append(sent, received...) {
		other := e.Counterpart(userID)
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		edges = append(edges, e)
	}
	return edges, nil
}

// ListPendingReceived returns requests waiting for userID to decide.
func (s *FriendService) ListPendingReceived(ctx context.Context, userID primitive.ObjectID) ([]models.FriendEdge, error) {
	edges, err := s.friends.ListEdgesByTarget(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return edges, nil
}

// ListFriends resolves the counterparts of userID's accepted friends or
// pending incoming requests. status is matched case-insensitively.
func (s *FriendService) ListFriends(ctx context.Context, userID primitive.ObjectID, status string) ([]models.PublicUser, error) {
	var (
		edges []models.FriendEdge
		err   error
	)
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "":
		return nil, apperrors.ErrMissingStatus
	case models.StatusAccepted:
		edges, err = s.ListAccepted(ctx, userID)
	case models.StatusPending:
		edges, err = s.ListPendingReceived(ctx, userID)
	default:
		return nil, apperrors.ErrInvalidStatus
	}
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return []models.PublicUser{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(edges))
	for i := range edges {
		ids = append(ids, edges[i].Counterpart(userID))
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	// keep edge order; skip users the directory no longer knows
	result := make([]models.PublicUser, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			result = append(result, u.ToPublic())
		}
	}
	return result, nil
}

func (s *FriendService) notify(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, other primitive.ObjectID) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, notifType, title, message, &other); err != nil {
		logrus.WithError(err).WithField("user_id", userID.Hex()).Warn("Failed to send friend request notification")
	}
}

func (s *FriendService) observe(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case apperrors.KindOf(err) != "":
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	metrics.FriendTransitions.WithLabelValues(operation, outcome).Inc()
}
